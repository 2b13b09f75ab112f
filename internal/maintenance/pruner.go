// Package maintenance runs periodic housekeeping on a cron schedule.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/event-calendar/internal/logging"
)

// Pruner drops fired notifications older than retention.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) int
}

// FiredPruner prunes fired notifications on a cron schedule.
type FiredPruner struct {
	pruner    Pruner
	retention time.Duration
	logger    *slog.Logger
	cron      *cron.Cron
	entry     cron.EntryID
}

// NewFiredPruner validates schedule and prepares a pruner. Nothing runs
// until Start.
func NewFiredPruner(pruner Pruner, schedule string, retention time.Duration, logger *slog.Logger) (*FiredPruner, error) {
	if pruner == nil {
		return nil, errors.New("maintenance: pruner is required")
	}
	if retention <= 0 {
		return nil, errors.New("maintenance: retention must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &FiredPruner{
		pruner:    pruner,
		retention: retention,
		logger:    logger.With("component", "maintenance", "job", "prune_fired"),
		cron:      cron.New(),
	}

	entry, err := p.cron.AddFunc(schedule, func() { p.RunOnce(context.Background()) })
	if err != nil {
		return nil, fmt.Errorf("maintenance: schedule %q: %w", schedule, err)
	}
	p.entry = entry
	return p, nil
}

// Start begins running the job in the background.
func (p *FiredPruner) Start() {
	p.cron.Start()
	p.logger.Info("prune job started", "retention", p.retention.String(), "next_run", p.cron.Entry(p.entry).Next)
}

// Stop halts the schedule and waits for a running job to finish or ctx to
// end.
func (p *FiredPruner) Stop(ctx context.Context) error {
	done := p.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce prunes immediately and returns how many records were removed.
func (p *FiredPruner) RunOnce(ctx context.Context) int {
	ctx = logging.ContextWithLogger(ctx, p.logger)
	removed := p.pruner.Prune(ctx, p.retention)
	p.logger.DebugContext(ctx, "prune job finished", "removed", removed)
	return removed
}
