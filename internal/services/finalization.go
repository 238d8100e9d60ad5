package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

// FinalizationGate moves a questionnaire from editable to locked. Callers hold
// the user's lock and have already checked that the questionnaire is unlocked.
type FinalizationGate interface {
	Finalize(ctx context.Context, tx *gorm.DB, userID uuid.UUID, templateIDs []uint) error
	Unanswered(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type finalizationGate struct {
	log           *logger.Logger
	questionRepo  repos.QuestionRepo
	templateRepo  repos.TemplateRepo
	selectionRepo repos.TemplateSelectionRepo
	finalRepo     repos.FinalizationRepo
	now           func() time.Time
}

func NewFinalizationGate(
	log *logger.Logger,
	questionRepo repos.QuestionRepo,
	templateRepo repos.TemplateRepo,
	selectionRepo repos.TemplateSelectionRepo,
	finalRepo repos.FinalizationRepo,
) FinalizationGate {
	return &finalizationGate{
		log:           log.With("service", "FinalizationGate"),
		questionRepo:  questionRepo,
		templateRepo:  templateRepo,
		selectionRepo: selectionRepo,
		finalRepo:     finalRepo,
		now:           time.Now,
	}
}

// Finalize validates every template id before writing anything, records the
// selections, then locks only if no required question is unanswered. The
// selections persist even when the completeness check fails.
func (g *finalizationGate) Finalize(ctx context.Context, tx *gorm.DB, userID uuid.UUID, templateIDs []uint) error {
	if len(templateIDs) == 0 {
		return &apperrors.InvalidTemplateSelectionError{Empty: true}
	}
	for _, id := range templateIDs {
		ok, err := g.templateRepo.Exists(ctx, tx, id)
		if err != nil {
			return apperrors.Persistence("check template", err)
		}
		if !ok {
			return &apperrors.InvalidTemplateSelectionError{TemplateID: id}
		}
	}

	if err := g.selectionRepo.Add(ctx, tx, userID, templateIDs); err != nil {
		return apperrors.Persistence("save template selection", err)
	}

	unanswered, err := g.Unanswered(ctx, tx, userID)
	if err != nil {
		return err
	}
	if unanswered > 0 {
		g.log.Debug("Finalize rejected, questionnaire incomplete", "user_id", userID, "unanswered", unanswered)
		return &apperrors.IncompleteQuestionnaireError{Unanswered: unanswered}
	}

	if err := g.finalRepo.Lock(ctx, tx, userID, g.now()); err != nil {
		return apperrors.Persistence("lock questionnaire", err)
	}
	g.log.Info("Questionnaire finalized", "user_id", userID, "templates", len(templateIDs))
	return nil
}

func (g *finalizationGate) Unanswered(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	required, err := g.questionRepo.CountRequired(ctx, tx)
	if err != nil {
		return 0, apperrors.Persistence("count required questions", err)
	}
	answered, err := g.questionRepo.CountAnsweredRequired(ctx, tx, userID)
	if err != nil {
		return 0, apperrors.Persistence("count answered questions", err)
	}
	if answered >= required {
		return 0, nil
	}
	return required - answered, nil
}

// finalizeUnlocked runs the gate in its own transaction after the is-locked
// pre-check. Selections recorded before an incomplete-questionnaire rejection
// are committed. The caller holds the user's lock.
func finalizeUnlocked(ctx context.Context, db *gorm.DB, finalRepo repos.FinalizationRepo, gate FinalizationGate, userID uuid.UUID, templateIDs []uint) error {
	var gateErr error
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := finalRepo.IsLocked(ctx, tx, userID)
		if err != nil {
			return apperrors.Persistence("read finalization state", err)
		}
		if locked {
			return apperrors.ErrAlreadyFinalized
		}
		gateErr = gate.Finalize(ctx, tx, userID, templateIDs)
		if apperrors.KindOf(gateErr) == apperrors.KindValidation {
			return nil
		}
		return gateErr
	})
	if err != nil {
		return err
	}
	return gateErr
}
