package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/event-calendar/internal/application"
)

const basicAuthRealm = `Basic realm="event-calendar"`

// BasicAuth guards every route except /health with a single argon2id
// credential. The digest of the last accepted credential is remembered so
// repeat requests skip the hash.
func BasicAuth(user, passwordHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)
	var (
		mu       sync.RWMutex
		verified [sha256.Size]byte
		cached   bool
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok || subtle.ConstantTimeCompare([]byte(username), []byte(user)) != 1 {
				w.Header().Set("WWW-Authenticate", basicAuthRealm)
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errUnauthorized)
				return
			}

			digest := sha256.Sum256([]byte(username + ":" + password))
			mu.RLock()
			hit := cached && subtle.ConstantTimeCompare(digest[:], verified[:]) == 1
			mu.RUnlock()

			if !hit {
				if err := application.VerifyPassword(passwordHash, password); err != nil {
					if !errors.Is(err, application.ErrInvalidCredentials) {
						responder.loggerFor(r.Context()).ErrorContext(r.Context(), "password verification failed", "error", err)
					}
					w.Header().Set("WWW-Authenticate", basicAuthRealm)
					responder.writeError(r.Context(), w, http.StatusUnauthorized, errUnauthorized)
					return
				}
				mu.Lock()
				verified, cached = digest, true
				mu.Unlock()
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
