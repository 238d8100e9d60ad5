package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type DraftRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Draft, error)
	Put(ctx context.Context, tx *gorm.DB, userID uuid.UUID, text string) error
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type draftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDraftRepo(db *gorm.DB, baseLog *logger.Logger) DraftRepo {
	return &draftRepo{db: db, log: baseLog.With("repo", "DraftRepo")}
}

func (r *draftRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Draft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var d types.Draft
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Put blindly overwrites; the last writer wins.
func (r *draftRepo) Put(ctx context.Context, tx *gorm.DB, userID uuid.UUID, text string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
		}).
		Create(&types.Draft{UserID: userID, Text: text, UpdatedAt: time.Now().UTC()}).Error
}

func (r *draftRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("user_id = ?", userID).Delete(&types.Draft{}).Error
}
