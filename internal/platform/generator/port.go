// Package generator runs document-generation requests against a generation engine.
//
// The engine is a port: SubprocessEngine talks to an out-of-process script over a
// temp-file protocol, GenAIEngine calls Gemini in-process for the text modes, and
// RoutedEngine combines the two.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
)

type Mode string

const (
	ModeDraft  Mode = "draft"
	ModeRefine Mode = "refine"
	ModeRender Mode = "final"
)

// Flags are appended to the engine argv after the request file path.
func (m Mode) Flags() []string {
	switch m {
	case ModeDraft:
		return []string{"--draft-only"}
	case ModeRefine:
		return []string{"--refine"}
	default:
		return nil
	}
}

func (m Mode) IsText() bool { return m == ModeDraft || m == ModeRefine }

func (m Mode) Valid() bool { return m == ModeDraft || m == ModeRefine || m == ModeRender }

// Request is serialized verbatim as the engine's input document.
type Request struct {
	UserID        string            `json:"userId"`
	Mode          Mode              `json:"mode"`
	Answers       map[string]string `json:"answers"`
	ExtraNotes    string            `json:"extraNotes"`
	ImageLinks    []string          `json:"imageLinks"`
	ExistingText  string            `json:"existingText,omitempty"`
	Modifications string            `json:"modifications,omitempty"`
	Text          string            `json:"text,omitempty"`
	Title         string            `json:"title,omitempty"`
}

var ErrInvalidRequest = errors.New("invalid generation request")

func (r Request) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidRequest)
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}
	switch r.Mode {
	case ModeRefine:
		if strings.TrimSpace(r.ExistingText) == "" || strings.TrimSpace(r.Modifications) == "" {
			return fmt.Errorf("%w: refine needs existing text and modifications", ErrInvalidRequest)
		}
	case ModeRender:
		if strings.TrimSpace(r.Text) == "" {
			return fmt.Errorf("%w: render needs draft text", ErrInvalidRequest)
		}
	}
	return nil
}

// Result holds Text for draft/refine and Document for render.
type Result struct {
	Text     string
	Document []byte
}

type Engine interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// EngineError reports a failed engine run. Stderr is the engine's diagnostic output.
type EngineError struct {
	Mode     Mode
	ExitCode int
	Stderr   string
}

func (e *EngineError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no diagnostic output"
	}
	return fmt.Sprintf("generation engine failed (mode=%s exit=%d): %s", e.Mode, e.ExitCode, msg)
}

func (e *EngineError) Kind() apperrors.Kind { return apperrors.KindEngine }

type OutputMissingError struct {
	Path string
}

func (e *OutputMissingError) Error() string {
	if e.Path == "" {
		return "generation engine reported no output path"
	}
	return fmt.Sprintf("generation output missing: %s", e.Path)
}

func (e *OutputMissingError) Kind() apperrors.Kind { return apperrors.KindEngine }

type TimeoutError struct {
	Mode  Mode
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation engine timed out after %s (mode=%s)", e.After, e.Mode)
}

func (e *TimeoutError) Kind() apperrors.Kind { return apperrors.KindEngine }

func (e *TimeoutError) Timeout() bool { return true }

var ErrUnsupportedMode = errors.New("mode not supported by this engine")
