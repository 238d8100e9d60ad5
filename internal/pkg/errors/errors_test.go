package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"already finalized", fmt.Errorf("save: %w", ErrAlreadyFinalized), KindPermission},
		{"forbidden", ErrNotFoundOrForbidden, KindPermission},
		{"not finalized", ErrNotFinalized, KindValidation},
		{"template", &InvalidTemplateSelectionError{TemplateID: 999}, KindValidation},
		{"incomplete", fmt.Errorf("finalize: %w", &IncompleteQuestionnaireError{Unanswered: 3}), KindValidation},
		{"refine", &RefinementFailedError{Err: errors.New("boom")}, KindEngine},
		{"persistence", Persistence("save artifact", errors.New("disk full")), KindPersistence},
		{"consistency", &ConsistencyError{Op: "cleanup", Err: errors.New("x")}, KindConsistency},
		{"plain", errors.New("x"), KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestTypedPayloadsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("finalize: %w", &InvalidTemplateSelectionError{TemplateID: 999})
	var ite *InvalidTemplateSelectionError
	if !errors.As(err, &ite) || ite.TemplateID != 999 {
		t.Fatalf("expected template id 999, got %v", err)
	}
	if Persistence("op", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
