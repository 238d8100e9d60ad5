package questionnaire

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

type FinalizationRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.FinalizationState, error)
	IsLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
	Lock(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	ListLocked(ctx context.Context, tx *gorm.DB) ([]*types.FinalizationState, error)
}

type finalizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFinalizationRepo(db *gorm.DB, baseLog *logger.Logger) FinalizationRepo {
	return &finalizationRepo{db: db, log: baseLog.With("repo", "FinalizationRepo")}
}

func (r *finalizationRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *finalizationRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.FinalizationState, error) {
	var st types.FinalizationState
	err := r.tx(tx).WithContext(ctx).Where("user_id = ?", userID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *finalizationRepo) IsLocked(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.tx(tx).WithContext(ctx).
		Model(&types.FinalizationState{}).
		Where("user_id = ? AND locked = ?", userID, true).
		Count(&n).Error
	return n > 0, err
}

func (r *finalizationRepo) Lock(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error {
	at = at.UTC()
	st := &types.FinalizationState{UserID: userID, Locked: true, LockedAt: &at}
	return r.tx(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"locked", "locked_at", "updated_at"}),
		}).
		Create(st).Error
}

func (r *finalizationRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return r.tx(tx).WithContext(ctx).Where("user_id = ?", userID).Delete(&types.FinalizationState{}).Error
}

func (r *finalizationRepo) ListLocked(ctx context.Context, tx *gorm.DB) ([]*types.FinalizationState, error) {
	var out []*types.FinalizationState
	if err := r.tx(tx).WithContext(ctx).
		Where("locked = ?", true).
		Order("locked_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
