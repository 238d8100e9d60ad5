package questionnaire

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type AnswerRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, answer *types.Answer) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Answer, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

// Upsert overwrites the user's previous answer to the same question, clearing
// whichever of option/text the new answer does not carry.
func (r *answerRepo) Upsert(ctx context.Context, tx *gorm.DB, answer *types.Answer) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := answer.Validate(); err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "custom_text", "updated_at"}),
		}).
		Create(answer).Error
}

func (r *answerRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Answer
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("question_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *answerRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("user_id = ?", userID).Delete(&types.Answer{})
	return res.RowsAffected, res.Error
}
