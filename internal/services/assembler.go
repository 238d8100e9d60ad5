package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/observability"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/generator"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

// RenderedDocument is the rendered bytes plus what went into them.
type RenderedDocument struct {
	Data []byte
	Meta types.GenerationMetadata
}

type Refinement struct {
	Text string `json:"text"`
	Diff string `json:"diff"`
}

// DocumentAssembler turns a finalized questionnaire into draft text and rendered bytes.
// Callers hold the per-user lock.
type DocumentAssembler interface {
	GenerateDraft(ctx context.Context, userID uuid.UUID, extraNotes string) (string, error)
	// RefineDraft uses the cached draft when existingText is empty. The cache is
	// written only after the engine succeeds.
	RefineDraft(ctx context.Context, userID uuid.UUID, existingText, modifications string) (*Refinement, error)
	// RenderDocument renders text, else the cached draft, else a fresh draft.
	RenderDocument(ctx context.Context, userID uuid.UUID, text, extraNotes string) (*RenderedDocument, error)
}

type documentAssembler struct {
	log           *logger.Logger
	engine        generator.Engine
	cache         DraftCache
	questionnaire QuestionnaireService
	metrics       *observability.Metrics
}

func NewDocumentAssembler(
	log *logger.Logger,
	engine generator.Engine,
	cache DraftCache,
	questionnaire QuestionnaireService,
	metrics *observability.Metrics,
) DocumentAssembler {
	return &documentAssembler{
		log:           log.With("service", "DocumentAssembler"),
		engine:        engine,
		cache:         cache,
		questionnaire: questionnaire,
		metrics:       metrics,
	}
}

func (a *documentAssembler) GenerateDraft(ctx context.Context, userID uuid.UUID, extraNotes string) (string, error) {
	in, err := a.lockedInput(ctx, userID)
	if err != nil {
		return "", err
	}
	return a.draft(ctx, userID, in, extraNotes)
}

func (a *documentAssembler) lockedInput(ctx context.Context, userID uuid.UUID) (*FinalizedInput, error) {
	locked, err := a.questionnaire.IsFinalized(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, apperrors.ErrNotFinalized
	}
	return a.questionnaire.FinalizedInput(ctx, nil, userID)
}

func (a *documentAssembler) draft(ctx context.Context, userID uuid.UUID, in *FinalizedInput, extraNotes string) (string, error) {
	res, err := a.run(ctx, generator.Request{
		UserID:     userID.String(),
		Mode:       generator.ModeDraft,
		Answers:    in.Answers,
		ExtraNotes: strings.TrimSpace(extraNotes),
		ImageLinks: in.ImageLinks,
		Title:      in.Title,
	})
	if err != nil {
		return "", err
	}
	if err := a.cache.Put(ctx, userID, res.Text); err != nil {
		return "", apperrors.Persistence("store draft", err)
	}
	return res.Text, nil
}

func (a *documentAssembler) RefineDraft(ctx context.Context, userID uuid.UUID, existingText, modifications string) (*Refinement, error) {
	modifications = strings.TrimSpace(modifications)
	if modifications == "" {
		return nil, fmt.Errorf("%w: modifications are required", apperrors.ErrInvalidArgument)
	}
	prev := strings.TrimSpace(existingText)
	if prev == "" {
		cached, ok, err := a.cache.Get(ctx, userID)
		if err != nil {
			return nil, apperrors.Persistence("load draft", err)
		}
		if !ok || strings.TrimSpace(cached) == "" {
			return nil, apperrors.ErrNoDraft
		}
		prev = cached
	}

	res, err := a.run(ctx, generator.Request{
		UserID:        userID.String(),
		Mode:          generator.ModeRefine,
		Answers:       map[string]string{},
		ExistingText:  prev,
		Modifications: modifications,
	})
	if err != nil {
		return nil, &apperrors.RefinementFailedError{Err: err}
	}
	if err := a.cache.Put(ctx, userID, res.Text); err != nil {
		return nil, apperrors.Persistence("store draft", err)
	}

	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(prev, res.Text)
	return &Refinement{Text: res.Text, Diff: dmp.PatchToText(patches)}, nil
}

func (a *documentAssembler) RenderDocument(ctx context.Context, userID uuid.UUID, text, extraNotes string) (*RenderedDocument, error) {
	in, err := a.lockedInput(ctx, userID)
	if err != nil {
		return nil, err
	}

	source := types.TextSourceExplicit
	text = strings.TrimSpace(text)
	if text == "" {
		source = types.TextSourceCached
		cached, ok, err := a.cache.Get(ctx, userID)
		if err != nil {
			return nil, apperrors.Persistence("load draft", err)
		}
		if ok {
			text = strings.TrimSpace(cached)
		}
	}
	if text == "" {
		source = types.TextSourceGenerated
		text, err = a.draft(ctx, userID, in, extraNotes)
		if err != nil {
			return nil, err
		}
	}

	extraNotes = strings.TrimSpace(extraNotes)
	res, err := a.run(ctx, generator.Request{
		UserID:     userID.String(),
		Mode:       generator.ModeRender,
		Answers:    in.Answers,
		ExtraNotes: extraNotes,
		ImageLinks: in.ImageLinks,
		Text:       generator.CleanText(text),
		Title:      in.Title,
	})
	if err != nil {
		return nil, err
	}
	return &RenderedDocument{
		Data: res.Document,
		Meta: types.GenerationMetadata{
			Title:       in.Title,
			TemplateIDs: in.TemplateIDs,
			ExtraNotes:  extraNotes != "",
			TextSource:  source,
		},
	}, nil
}

func (a *documentAssembler) run(ctx context.Context, req generator.Request) (*generator.Result, error) {
	start := time.Now()
	res, err := a.engine.Generate(ctx, req)
	a.metrics.ObserveGeneration(string(req.Mode), failureKind(err), time.Since(start))
	if err != nil {
		a.log.Warn("Generation failed", "mode", req.Mode, "user_id", req.UserID, "error", err)
		return nil, err
	}
	return res, nil
}

func failureKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		te *generator.TimeoutError
		oe *generator.OutputMissingError
		ee *generator.EngineError
	)
	switch {
	case errors.As(err, &te):
		return "timeout"
	case errors.As(err, &oe):
		return "output_missing"
	case errors.As(err, &ee):
		return "engine_error"
	default:
		return "other"
	}
}
