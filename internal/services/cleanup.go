package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	"github.com/yungbote/nexovate-backend/internal/observability"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
)

type ReconcileReport struct {
	Locked int `json:"locked"`
	Purged int `json:"purged"`
	Stale  int `json:"stale"`
	Failed int `json:"failed"`
}

// CleanupCoordinator clears a user's questionnaire cycle once an artifact exists.
type CleanupCoordinator interface {
	// Purge deletes answers, template selections, the finalization row and the draft.
	// Failures come back as *ConsistencyError and are already logged and counted.
	Purge(ctx context.Context, userID uuid.UUID) error
	// Reconcile completes purges that failed after a successful save and reports
	// questionnaires locked longer than staleAfter with no artifact.
	Reconcile(ctx context.Context, staleAfter time.Duration) (*ReconcileReport, error)
}

type cleanupCoordinator struct {
	db            *gorm.DB
	log           *logger.Logger
	locker        userlock.Locker
	cache         DraftCache
	answerRepo    repos.AnswerRepo
	selectionRepo repos.TemplateSelectionRepo
	finalRepo     repos.FinalizationRepo
	artifactRepo  repos.ArtifactRepo
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewCleanupCoordinator(
	db *gorm.DB,
	log *logger.Logger,
	locker userlock.Locker,
	cache DraftCache,
	answerRepo repos.AnswerRepo,
	selectionRepo repos.TemplateSelectionRepo,
	finalRepo repos.FinalizationRepo,
	artifactRepo repos.ArtifactRepo,
	metrics *observability.Metrics,
) CleanupCoordinator {
	return &cleanupCoordinator{
		db:            db,
		log:           log.With("service", "CleanupCoordinator"),
		locker:        locker,
		cache:         cache,
		answerRepo:    answerRepo,
		selectionRepo: selectionRepo,
		finalRepo:     finalRepo,
		artifactRepo:  artifactRepo,
		metrics:       metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (c *cleanupCoordinator) Purge(ctx context.Context, userID uuid.UUID) error {
	var answers int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := c.answerRepo.DeleteByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		answers = n
		if err := c.selectionRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		// The draft goes before the unlock commits; a failure leaves the cycle
		// locked so the reconciler retries it.
		if err := c.deleteDraft(ctx, tx, userID); err != nil {
			return err
		}
		return c.finalRepo.Delete(ctx, tx, userID)
	})
	if err != nil {
		cerr := &apperrors.ConsistencyError{Op: "purge questionnaire", Err: err}
		c.metrics.IncCleanupFailure()
		c.log.Error("Questionnaire cleanup failed", "user_id", userID, "error", cerr)
		return cerr
	}
	c.log.Info("Questionnaire purged", "user_id", userID, "answers", answers)
	return nil
}

func (c *cleanupCoordinator) deleteDraft(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if d, ok := c.cache.(txDraftDeleter); ok {
		return d.DeleteTx(ctx, tx, userID)
	}
	return c.cache.Delete(ctx, userID)
}

func (c *cleanupCoordinator) Reconcile(ctx context.Context, staleAfter time.Duration) (*ReconcileReport, error) {
	states, err := c.finalRepo.ListLocked(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("list locked questionnaires", err)
	}
	report := &ReconcileReport{Locked: len(states)}
	now := c.now()
	for _, st := range states {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if st.LockedAt == nil {
			continue
		}
		purged, err := c.reconcileOne(ctx, st.UserID, *st.LockedAt)
		switch {
		case err != nil:
			report.Failed++
		case purged:
			report.Purged++
		case staleAfter > 0 && now.Sub(*st.LockedAt) > staleAfter:
			report.Stale++
			c.log.Warn("Questionnaire locked without artifact", "user_id", st.UserID, "locked_at", st.LockedAt.Format(time.RFC3339))
		}
	}
	c.metrics.SetStaleLocked(report.Stale)
	c.log.Info("Reconcile finished", "locked", report.Locked, "purged", report.Purged, "stale", report.Stale, "failed", report.Failed)
	return report, nil
}

func (c *cleanupCoordinator) reconcileOne(ctx context.Context, userID uuid.UUID, lockedAt time.Time) (bool, error) {
	exists, err := c.artifactRepo.ExistsForOwnerSince(ctx, nil, userID, lockedAt)
	if err != nil {
		c.log.Warn("Reconcile artifact lookup failed", "user_id", userID, "error", err)
		return false, err
	}
	if !exists {
		return false, nil
	}

	unlock, err := c.locker.Lock(ctx, userID.String())
	if err != nil {
		return false, err
	}
	defer unlock()

	// A generate call may have finished the purge while we waited.
	locked, err := c.finalRepo.IsLocked(ctx, nil, userID)
	if err != nil {
		return false, err
	}
	if !locked {
		return true, nil
	}
	if err := c.Purge(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}
