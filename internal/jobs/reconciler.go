// Package jobs holds the background loops started by the serve command.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

// Reconciler periodically completes failed questionnaire cleanups and reports
// questionnaires that stay locked without an artifact.
type Reconciler struct {
	log        *logger.Logger
	cleanup    services.CleanupCoordinator
	interval   time.Duration
	staleAfter time.Duration
}

func NewReconciler(baseLog *logger.Logger, cleanup services.CleanupCoordinator, interval, staleAfter time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &Reconciler{
		log:        baseLog.With("component", "Reconciler"),
		cleanup:    cleanup,
		interval:   interval,
		staleAfter: staleAfter,
	}
}

// Run blocks until ctx is cancelled, reconciling once per interval.
func (r *Reconciler) Run(ctx context.Context) error {
	r.log.Info("Starting reconciler", "interval", r.interval.String(), "stale_after", r.staleAfter.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Reconciler stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.log.Warn("Reconcile pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single pass. A panic inside the pass is recovered and
// returned as an error.
func (r *Reconciler) RunOnce(ctx context.Context) (report *services.ReconcileReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Reconcile panic", "panic", rec)
			err = &panicError{Val: rec}
		}
	}()
	return r.cleanup.Reconcile(ctx, r.staleAfter)
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
