package questionnaire

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type QuestionRepo interface {
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Question, error)
	GetActiveByID(ctx context.Context, tx *gorm.DB, questionID uint) (*types.Question, error)
	GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Question, error)
	GetOption(ctx context.Context, tx *gorm.DB, questionID, optionID uint) (*types.QuestionOption, error)
	CountRequired(ctx context.Context, tx *gorm.DB) (int64, error)
	CountAnsweredRequired(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *questionRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Question, error) {
	var out []*types.Question
	err := r.tx(tx).WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questionRepo) GetActiveByID(ctx context.Context, tx *gorm.DB, questionID uint) (*types.Question, error) {
	var q types.Question
	err := r.tx(tx).WithContext(ctx).
		Where("id = ? AND active = ?", questionID, true).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Question, error) {
	var q types.Question
	err := r.tx(tx).WithContext(ctx).Where("question_key = ?", key).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) GetOption(ctx context.Context, tx *gorm.DB, questionID, optionID uint) (*types.QuestionOption, error) {
	var o types.QuestionOption
	err := r.tx(tx).WithContext(ctx).
		Where("id = ? AND question_id = ?", optionID, questionID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *questionRepo) CountRequired(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := r.tx(tx).WithContext(ctx).
		Model(&types.Question{}).
		Where("active = ? AND required = ?", true, true).
		Count(&n).Error
	return n, err
}

func (r *questionRepo) CountAnsweredRequired(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.tx(tx).WithContext(ctx).
		Model(&types.Answer{}).
		Joins("JOIN question ON question.id = answer.question_id").
		Where("answer.user_id = ? AND question.active = ? AND question.required = ?", userID, true, true).
		Count(&n).Error
	return n, err
}
