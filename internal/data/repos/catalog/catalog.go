package catalog

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type TemplateRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, templateID uint) (bool, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, templateIDs []uint) ([]*types.Template, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Template, error)
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

func (r *templateRepo) Exists(ctx context.Context, tx *gorm.DB, templateID uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Template{}).
		Where("id = ? AND active = ?", templateID, true).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *templateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, templateIDs []uint) ([]*types.Template, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Template
	if len(templateIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", templateIDs).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *templateRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Template, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Template
	if err := transaction.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type FAQRepo interface {
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.FAQ, error)
}

type faqRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFAQRepo(db *gorm.DB, baseLog *logger.Logger) FAQRepo {
	return &faqRepo{db: db, log: baseLog.With("repo", "FAQRepo")}
}

func (r *faqRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.FAQ, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FAQ
	if err := transaction.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
