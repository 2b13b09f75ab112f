// Package scheduler arms one-shot callbacks at absolute instants and hands
// back a cancellation token for each of them.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Token identifies one armed callback.
type Token struct {
	id     uint64
	key    string
	fireAt time.Time
	timer  Timer
	owner  *Scheduler
}

// Key returns the key the callback was armed under.
func (t *Token) Key() string {
	if t == nil {
		return ""
	}
	return t.key
}

// FireAt returns the instant the callback is due.
func (t *Token) FireAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.fireAt
}

// Cancel disarms the callback. It reports whether the callback was still
// pending.
func (t *Token) Cancel() bool {
	if t == nil || t.owner == nil {
		return false
	}
	return t.owner.cancelToken(t)
}

// Entry describes a pending callback.
type Entry struct {
	Key    string
	FireAt time.Time
}

// Scheduler keeps every armed callback indexed by key.
type Scheduler struct {
	clock Clock

	mu     sync.Mutex
	seq    uint64
	armed  map[string]map[uint64]*Token
	closed bool
}

// New returns a Scheduler driven by clock. A nil clock means SystemClock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		clock: clock,
		armed: make(map[string]map[uint64]*Token),
	}
}

// Now returns the scheduler's notion of the current instant.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule arms fn to run once at the given instant, next to any callback
// already armed under key. Instants that are not in the future arm nothing
// and report false.
func (s *Scheduler) Schedule(key string, at time.Time, fn func()) (*Token, bool) {
	return s.arm(key, at, fn, false)
}

// Replace cancels every callback armed under key, then behaves like Schedule.
func (s *Scheduler) Replace(key string, at time.Time, fn func()) (*Token, bool) {
	return s.arm(key, at, fn, true)
}

// Cancel disarms every callback armed under key and returns how many were
// still pending.
func (s *Scheduler) Cancel(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelKeyLocked(key)
}

// Pending lists armed callbacks ordered by due time.
func (s *Scheduler) Pending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0)
	for key, tokens := range s.armed {
		for _, token := range tokens {
			entries = append(entries, Entry{Key: key, FireAt: token.fireAt})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FireAt.Equal(entries[j].FireAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].FireAt.Before(entries[j].FireAt)
	})
	return entries
}

// Close disarms everything. Later calls to Schedule arm nothing.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.armed {
		s.cancelKeyLocked(key)
	}
	s.closed = true
}

func (s *Scheduler) arm(key string, at time.Time, fn func(), replace bool) (*Token, bool) {
	delay := at.Sub(s.clock.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if replace {
		s.cancelKeyLocked(key)
	}
	if delay <= 0 || s.closed || fn == nil {
		return nil, false
	}

	s.seq++
	token := &Token{id: s.seq, key: key, fireAt: at, owner: s}
	if s.armed[key] == nil {
		s.armed[key] = make(map[uint64]*Token)
	}
	s.armed[key][token.id] = token

	// The callback takes the lock in release, so it cannot observe the
	// token before timer is assigned below.
	token.timer = s.clock.AfterFunc(delay, func() {
		if s.release(token) {
			fn()
		}
	})
	return token, true
}

// release removes a due token. It reports false when the token was
// cancelled in the meantime.
func (s *Scheduler) release(token *Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, ok := s.armed[token.key]
	if !ok {
		return false
	}
	if _, ok := tokens[token.id]; !ok {
		return false
	}
	delete(tokens, token.id)
	if len(tokens) == 0 {
		delete(s.armed, token.key)
	}
	return true
}

func (s *Scheduler) cancelToken(token *Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, ok := s.armed[token.key]
	if !ok {
		return false
	}
	if _, ok := tokens[token.id]; !ok {
		return false
	}
	delete(tokens, token.id)
	if len(tokens) == 0 {
		delete(s.armed, token.key)
	}
	if token.timer != nil {
		token.timer.Stop()
	}
	return true
}

func (s *Scheduler) cancelKeyLocked(key string) int {
	tokens := s.armed[key]
	for _, token := range tokens {
		if token.timer != nil {
			token.timer.Stop()
		}
	}
	delete(s.armed, key)
	return len(tokens)
}
