package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
)

const DefaultDocumentTitle = "Final Year Project Recommendation"

type Progress struct {
	Total      int64 `json:"total"`
	Answered   int64 `json:"answered"`
	Percentage int   `json:"percentage"`
}

// FinalizedInput is what the generator needs from a locked questionnaire.
type FinalizedInput struct {
	Answers     map[string]string
	ImageLinks  []string
	Title       string
	TemplateIDs []uint
}

type QuestionnaireService interface {
	ListQuestions(ctx context.Context) ([]*types.Question, error)
	// SaveResponse stores answer for the question. For multiple-choice questions an
	// all-digit answer names an option; anything else is custom text.
	SaveResponse(ctx context.Context, userID uuid.UUID, questionID uint, answer string) error
	Progress(ctx context.Context, userID uuid.UUID) (*Progress, error)
	IsFinalized(ctx context.Context, userID uuid.UUID) (bool, error)
	Finalize(ctx context.Context, userID uuid.UUID, templateIDs []uint) error
	FinalizedInput(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*FinalizedInput, error)
}

type questionnaireService struct {
	db            *gorm.DB
	log           *logger.Logger
	locker        userlock.Locker
	gate          FinalizationGate
	questionRepo  repos.QuestionRepo
	answerRepo    repos.AnswerRepo
	finalRepo     repos.FinalizationRepo
	selectionRepo repos.TemplateSelectionRepo
	templateRepo  repos.TemplateRepo
}

func NewQuestionnaireService(
	db *gorm.DB,
	log *logger.Logger,
	locker userlock.Locker,
	gate FinalizationGate,
	questionRepo repos.QuestionRepo,
	answerRepo repos.AnswerRepo,
	finalRepo repos.FinalizationRepo,
	selectionRepo repos.TemplateSelectionRepo,
	templateRepo repos.TemplateRepo,
) QuestionnaireService {
	return &questionnaireService{
		db:            db,
		log:           log.With("service", "QuestionnaireService"),
		locker:        locker,
		gate:          gate,
		questionRepo:  questionRepo,
		answerRepo:    answerRepo,
		finalRepo:     finalRepo,
		selectionRepo: selectionRepo,
		templateRepo:  templateRepo,
	}
}

func (s *questionnaireService) ListQuestions(ctx context.Context) ([]*types.Question, error) {
	qs, err := s.questionRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("list questions", err)
	}
	return qs, nil
}

func (s *questionnaireService) SaveResponse(ctx context.Context, userID uuid.UUID, questionID uint, answer string) error {
	answer = strings.TrimSpace(answer)
	if questionID == 0 {
		return fmt.Errorf("%w: questionId must be a positive integer", apperrors.ErrInvalidArgument)
	}
	if answer == "" {
		return fmt.Errorf("%w: answer is required", apperrors.ErrInvalidArgument)
	}

	unlock, err := s.locker.Lock(ctx, userID.String())
	if err != nil {
		return err
	}
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.finalRepo.IsLocked(ctx, tx, userID)
		if err != nil {
			return apperrors.Persistence("read finalization state", err)
		}
		if locked {
			return apperrors.ErrAlreadyFinalized
		}

		q, err := s.questionRepo.GetActiveByID(ctx, tx, questionID)
		if err != nil {
			return apperrors.Persistence("load question", err)
		}
		if q == nil {
			return fmt.Errorf("%w: question %d not found", apperrors.ErrInvalidArgument, questionID)
		}

		row := &types.Answer{UserID: userID, QuestionID: q.ID}
		optionID, isNumeric := parseOptionID(answer)
		if q.Type == types.QuestionTypeMultipleChoice && isNumeric {
			opt, err := s.questionRepo.GetOption(ctx, tx, q.ID, optionID)
			if err != nil {
				return apperrors.Persistence("load option", err)
			}
			if opt == nil {
				return fmt.Errorf("%w: option %d does not belong to question %d", apperrors.ErrInvalidArgument, optionID, q.ID)
			}
			row.SelectedOptionID = &opt.ID
		} else {
			text := answer
			row.CustomText = &text
		}

		if err := s.answerRepo.Upsert(ctx, tx, row); err != nil {
			return apperrors.Persistence("save answer", err)
		}
		return nil
	})
}

func parseOptionID(s string) (uint, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (s *questionnaireService) Progress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	total, err := s.questionRepo.CountRequired(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("count required questions", err)
	}
	locked, err := s.finalRepo.IsLocked(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.Persistence("read finalization state", err)
	}
	if locked {
		return &Progress{Total: total, Answered: total, Percentage: 100}, nil
	}
	answered, err := s.questionRepo.CountAnsweredRequired(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.Persistence("count answered questions", err)
	}
	p := &Progress{Total: total, Answered: answered}
	if total > 0 {
		p.Percentage = int(math.Round(float64(answered) / float64(total) * 100))
	}
	return p, nil
}

func (s *questionnaireService) IsFinalized(ctx context.Context, userID uuid.UUID) (bool, error) {
	locked, err := s.finalRepo.IsLocked(ctx, nil, userID)
	if err != nil {
		return false, apperrors.Persistence("read finalization state", err)
	}
	return locked, nil
}

func (s *questionnaireService) Finalize(ctx context.Context, userID uuid.UUID, templateIDs []uint) error {
	unlock, err := s.locker.Lock(ctx, userID.String())
	if err != nil {
		return err
	}
	defer unlock()

	return finalizeUnlocked(ctx, s.db, s.finalRepo, s.gate, userID, templateIDs)
}

func (s *questionnaireService) FinalizedInput(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*FinalizedInput, error) {
	questions, err := s.questionRepo.ListActive(ctx, tx)
	if err != nil {
		return nil, apperrors.Persistence("list questions", err)
	}
	answers, err := s.answerRepo.ListByUser(ctx, tx, userID)
	if err != nil {
		return nil, apperrors.Persistence("list answers", err)
	}
	templateIDs, err := s.selectionRepo.ListTemplateIDs(ctx, tx, userID)
	if err != nil {
		return nil, apperrors.Persistence("list template selections", err)
	}
	templates, err := s.templateRepo.GetByIDs(ctx, tx, templateIDs)
	if err != nil {
		return nil, apperrors.Persistence("load templates", err)
	}

	byID := make(map[uint]*types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	in := &FinalizedInput{Answers: make(map[string]string, len(answers)), Title: DefaultDocumentTitle, TemplateIDs: templateIDs}
	for _, a := range answers {
		q := byID[a.QuestionID]
		if q == nil {
			continue
		}
		text := answerText(q, a)
		if text == "" {
			continue
		}
		in.Answers[q.Text] = text
		if q.Key == types.KeyProjectCategory {
			in.Title = text
		}
	}
	for _, t := range templates {
		in.ImageLinks = append(in.ImageLinks, t.ImageURL)
	}
	return in, nil
}

func answerText(q *types.Question, a *types.Answer) string {
	if a.CustomText != nil {
		return strings.TrimSpace(*a.CustomText)
	}
	if a.SelectedOptionID == nil {
		return ""
	}
	for _, o := range q.Options {
		if o.ID == *a.SelectedOptionID {
			return o.Text
		}
	}
	return ""
}
