package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
)

const DownloadPathPrefix = "/api/documents/download/"

type GenerateRequest struct {
	ExtraNotes  string
	RefinedText string
	Templates   []uint
}

type GenerateResult struct {
	Success     bool   `json:"success"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
}

type DocumentService interface {
	Draft(ctx context.Context, userID uuid.UUID, extraNotes string) (string, error)
	Refine(ctx context.Context, userID uuid.UUID, existingText, modifications string) (*Refinement, error)
	// Generate renders, stores and then purges the questionnaire cycle. It keeps
	// running when the caller's context is cancelled once the user lock is held.
	Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*GenerateResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Artifact, error)
	Open(ctx context.Context, userID uuid.UUID, fileName string) (*types.Artifact, io.ReadCloser, error)
}

type documentService struct {
	db        *gorm.DB
	log       *logger.Logger
	locker    userlock.Locker
	gate      FinalizationGate
	finalRepo repos.FinalizationRepo
	assembler DocumentAssembler
	artifacts ArtifactStore
	cleanup   CleanupCoordinator
	notifier  DocumentNotifier
	notifyTTL time.Duration
}

func NewDocumentService(
	db *gorm.DB,
	log *logger.Logger,
	locker userlock.Locker,
	gate FinalizationGate,
	finalRepo repos.FinalizationRepo,
	assembler DocumentAssembler,
	artifacts ArtifactStore,
	cleanup CleanupCoordinator,
	notifier DocumentNotifier,
) DocumentService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &documentService{
		db:        db,
		log:       log.With("service", "DocumentService"),
		locker:    locker,
		gate:      gate,
		finalRepo: finalRepo,
		assembler: assembler,
		artifacts: artifacts,
		cleanup:   cleanup,
		notifier:  notifier,
		notifyTTL: 30 * time.Second,
	}
}

func (s *documentService) Draft(ctx context.Context, userID uuid.UUID, extraNotes string) (string, error) {
	unlock, err := s.locker.Lock(ctx, userID.String())
	if err != nil {
		return "", err
	}
	defer unlock()
	return s.assembler.GenerateDraft(context.WithoutCancel(ctx), userID, extraNotes)
}

func (s *documentService) Refine(ctx context.Context, userID uuid.UUID, existingText, modifications string) (*Refinement, error) {
	unlock, err := s.locker.Lock(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.assembler.RefineDraft(context.WithoutCancel(ctx), userID, existingText, modifications)
}

func (s *documentService) Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*GenerateResult, error) {
	unlock, err := s.locker.Lock(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()
	ctx = context.WithoutCancel(ctx)

	if err := s.ensureFinalized(ctx, userID, req.Templates); err != nil {
		return nil, err
	}

	doc, err := s.assembler.RenderDocument(ctx, userID, req.RefinedText, req.ExtraNotes)
	if err != nil {
		return nil, err
	}

	artifact, err := s.artifacts.Save(ctx, userID, doc.Data, &doc.Meta)
	if err != nil {
		return nil, err
	}

	// The artifact is durable from here on; cleanup failures are logged and
	// left to the reconciler.
	_ = s.cleanup.Purge(ctx, userID)

	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTTL)
	if err := s.notifier.DocumentReady(notifyCtx, userID, artifact, doc.Data); err != nil {
		s.log.Warn("Document notification failed", "user_id", userID, "file_name", artifact.FileName, "error", err)
	}
	cancel()

	return &GenerateResult{
		Success:     true,
		FileName:    artifact.FileName,
		DownloadURL: DownloadPathPrefix + artifact.FileName,
	}, nil
}

func (s *documentService) ensureFinalized(ctx context.Context, userID uuid.UUID, templates []uint) error {
	locked, err := s.finalRepo.IsLocked(ctx, nil, userID)
	if err != nil {
		return apperrors.Persistence("read finalization state", err)
	}
	if locked {
		return nil
	}
	if len(templates) > 0 {
		return finalizeUnlocked(ctx, s.db, s.finalRepo, s.gate, userID, templates)
	}
	unanswered, err := s.gate.Unanswered(ctx, nil, userID)
	if err != nil {
		return err
	}
	if unanswered > 0 {
		return &apperrors.IncompleteQuestionnaireError{Unanswered: unanswered}
	}
	return apperrors.ErrNotFinalized
}

func (s *documentService) List(ctx context.Context, userID uuid.UUID) ([]*types.Artifact, error) {
	return s.artifacts.List(ctx, userID)
}

func (s *documentService) Open(ctx context.Context, userID uuid.UUID, fileName string) (*types.Artifact, io.ReadCloser, error) {
	return s.artifacts.Fetch(ctx, userID, fileName)
}
