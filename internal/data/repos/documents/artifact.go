package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type ArtifactRepo interface {
	Create(ctx context.Context, tx *gorm.DB, artifact *types.Artifact) error
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Artifact, error)
	GetByFileName(ctx context.Context, tx *gorm.DB, fileName string) (*types.Artifact, error)
	ExistsForOwnerSince(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, since time.Time) (bool, error)
}

type artifactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArtifactRepo(db *gorm.DB, baseLog *logger.Logger) ArtifactRepo {
	return &artifactRepo{db: db, log: baseLog.With("repo", "ArtifactRepo")}
}

func (r *artifactRepo) Create(ctx context.Context, tx *gorm.DB, artifact *types.Artifact) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(artifact).Error
}

func (r *artifactRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Artifact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Artifact
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, file_name DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *artifactRepo) GetByFileName(ctx context.Context, tx *gorm.DB, fileName string) (*types.Artifact, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var a types.Artifact
	err := transaction.WithContext(ctx).Where("file_name = ?", fileName).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *artifactRepo) ExistsForOwnerSince(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, since time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Artifact{}).
		Where("owner_id = ? AND created_at >= ?", ownerID, since.UTC()).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
