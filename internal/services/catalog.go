package services

import (
	"context"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type CatalogService interface {
	ListTemplates(ctx context.Context) ([]*types.Template, error)
	ListFAQs(ctx context.Context) ([]*types.FAQ, error)
}

type catalogService struct {
	log          *logger.Logger
	templateRepo repos.TemplateRepo
	faqRepo      repos.FAQRepo
}

func NewCatalogService(log *logger.Logger, templateRepo repos.TemplateRepo, faqRepo repos.FAQRepo) CatalogService {
	return &catalogService{
		log:          log.With("service", "CatalogService"),
		templateRepo: templateRepo,
		faqRepo:      faqRepo,
	}
}

func (s *catalogService) ListTemplates(ctx context.Context) ([]*types.Template, error) {
	out, err := s.templateRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("list templates", err)
	}
	return out, nil
}

func (s *catalogService) ListFAQs(ctx context.Context) ([]*types.FAQ, error) {
	out, err := s.faqRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("list faqs", err)
	}
	return out, nil
}
