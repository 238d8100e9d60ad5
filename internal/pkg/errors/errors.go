package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for transport mapping and metrics.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindValidation  Kind = "validation"
	KindPermission  Kind = "permission"
	KindEngine      Kind = "engine"
	KindPersistence Kind = "persistence"
	KindConsistency Kind = "consistency"
)

// Kinded is implemented by every typed error in the taxonomy, including the
// generator's engine errors.
type Kinded interface {
	Kind() Kind
}

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrAlreadyFinalized    = errors.New("questionnaire already finalized")
	ErrNotFinalized        = errors.New("please finalize your questionnaire first")
	ErrNotFoundOrForbidden = errors.New("document not found or access denied")
	ErrNoDraft             = errors.New("no draft available to refine")
)

type InvalidTemplateSelectionError struct {
	TemplateID uint
	Empty      bool
}

func (e *InvalidTemplateSelectionError) Error() string {
	if e.Empty {
		return "at least one template must be selected"
	}
	return fmt.Sprintf("template %d not found", e.TemplateID)
}

func (e *InvalidTemplateSelectionError) Kind() Kind { return KindValidation }

type IncompleteQuestionnaireError struct {
	Unanswered int64
}

func (e *IncompleteQuestionnaireError) Error() string {
	return fmt.Sprintf("%d required questions are unanswered", e.Unanswered)
}

func (e *IncompleteQuestionnaireError) Kind() Kind { return KindValidation }

type RefinementFailedError struct {
	Err error
}

func (e *RefinementFailedError) Error() string {
	return fmt.Sprintf("refinement failed: %v", e.Err)
}

func (e *RefinementFailedError) Unwrap() error { return e.Err }

func (e *RefinementFailedError) Kind() Kind { return KindEngine }

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Kind() Kind { return KindPersistence }

func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// ConsistencyError marks a trailing step that failed after the user-visible
// outcome was already committed.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: %s: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

func (e *ConsistencyError) Kind() Kind { return KindConsistency }

func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch {
	case errors.Is(err, ErrAlreadyFinalized),
		errors.Is(err, ErrNotFoundOrForbidden),
		errors.Is(err, ErrUnauthorized):
		return KindPermission
	case errors.Is(err, ErrNotFinalized),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrNoDraft):
		return KindValidation
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
