package questionnaire

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type TemplateSelectionRepo interface {
	Add(ctx context.Context, tx *gorm.DB, userID uuid.UUID, templateIDs []uint) error
	ListTemplateIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uint, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type templateSelectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateSelectionRepo(db *gorm.DB, baseLog *logger.Logger) TemplateSelectionRepo {
	return &templateSelectionRepo{db: db, log: baseLog.With("repo", "TemplateSelectionRepo")}
}

// Add records (user, template) pairs; pairs that already exist are left as they are.
func (r *templateSelectionRepo) Add(ctx context.Context, tx *gorm.DB, userID uuid.UUID, templateIDs []uint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(templateIDs) == 0 {
		return nil
	}
	rows := make([]*types.TemplateSelection, 0, len(templateIDs))
	seen := make(map[uint]bool, len(templateIDs))
	for _, id := range templateIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, &types.TemplateSelection{UserID: userID, TemplateID: id})
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *templateSelectionRepo) ListTemplateIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uint
	if err := transaction.WithContext(ctx).
		Model(&types.TemplateSelection{}).
		Where("user_id = ?", userID).
		Order("template_id ASC").
		Pluck("template_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *templateSelectionRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("user_id = ?", userID).Delete(&types.TemplateSelection{}).Error
}
