package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

const (
	defaultGenAIModel   = "gemini-2.0-flash"
	defaultGenAITimeout = 3 * time.Minute
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIEngine produces draft and refined text in-process through Gemini.
// It does not render documents.
type GenAIEngine struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	log     *logger.Logger
	tracer  trace.Tracer
}

// NewGenAIEngine bounds every call by timeout (3m when zero).
func NewGenAIEngine(ctx context.Context, apiKey, model string, timeout time.Duration, log *logger.Logger) (*GenAIEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGenAIEngine(client.Models, model, timeout, log), nil
}

func newGenAIEngine(models contentGenerator, model string, timeout time.Duration, log *logger.Logger) *GenAIEngine {
	if model == "" {
		model = defaultGenAIModel
	}
	if timeout <= 0 {
		timeout = defaultGenAITimeout
	}
	return &GenAIEngine{
		models:  models,
		model:   model,
		timeout: timeout,
		log:     log.With("client", "GenAIEngine"),
		tracer:  otel.Tracer(tracerName),
	}
}

func (e *GenAIEngine) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Mode.IsText() {
		return nil, fmt.Errorf("%w: genai engine cannot handle mode %q", ErrUnsupportedMode, req.Mode)
	}

	ctx, span := e.tracer.Start(ctx, "generator.genai",
		trace.WithAttributes(
			attribute.String("generator.mode", string(req.Mode)),
			attribute.String("generator.model", e.model),
		))
	defer span.End()

	prompt := advisorPrompt(req)
	if req.Mode == ModeRefine {
		prompt = refinePrompt(req)
	}

	resp, err := e.generate(ctx, prompt)
	if errors.Is(err, context.DeadlineExceeded) {
		terr := &TimeoutError{Mode: req.Mode, After: e.timeout}
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Error())
		e.log.Warn("GenAI generation timed out", "mode", req.Mode, "user_id", req.UserID, "timeout", e.timeout.String())
		return nil, terr
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Warn("GenAI generation failed", "mode", req.Mode, "user_id", req.UserID, "error", err)
		return nil, &EngineError{Mode: req.Mode, ExitCode: -1, Stderr: err.Error()}
	}
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		return nil, &EngineError{Mode: req.Mode, ExitCode: -1, Stderr: "empty response from model"}
	}
	return &Result{Text: text}, nil
}

type genaiReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// generate returns once the deadline passes even if the model call ignores ctx.
func (e *GenAIEngine) generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan genaiReply, 1)
	go func() {
		resp, err := e.models.GenerateContent(ctx, e.model,
			[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, nil)
		done <- genaiReply{resp: resp, err: err}
	}()
	select {
	case r := <-done:
		if r.err != nil && ctx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func answersSummary(req Request) string {
	keys := make([]string, 0, len(req.Answers))
	for k := range req.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, req.Answers[k])
	}
	if notes := strings.TrimSpace(req.ExtraNotes); notes != "" {
		fmt.Fprintf(&b, "Extra Notes: %s\n", notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

func advisorPrompt(req Request) string {
	return `You are an intelligent Final Year Project Advisor for Computer Science students located in Pakistan.
Considering the local context and resources, based on the user's inputs below, do the following:

- Recommend the most suitable project type, stack, and scope.
- If user choices seem suboptimal, suggest better ones and explain why.
- Include reasoning and suggestions based on modern tech trends, project success, and the practical realities of developing in Pakistan.
- Personalize suggestions if the user included any notes at the end.

User inputs:
` + answersSummary(req) + `

Your recommendation:
`
}

func refinePrompt(req Request) string {
	return `You are an intelligent Final Year Project Advisor for Computer Science students located in Pakistan.
Below is a project recommendation you wrote earlier, followed by the student's requested changes.
Rewrite the full recommendation so it incorporates every requested change. Keep the parts the student did not ask to change.

Student inputs:
` + answersSummary(req) + `

Current recommendation:
` + req.ExistingText + `

Requested changes:
` + req.Modifications + `

Revised recommendation:
`
}
