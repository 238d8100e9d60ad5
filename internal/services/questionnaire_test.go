package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/nexovate-backend/internal/data/repos/testutil"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
)

func TestSaveResponseShapes(t *testing.T) {
	h := newHarness(t)
	mc := testutil.SeedQuestion(t, h.ctx, h.tx, "app_type", "Web", "Mobile")
	text := testutil.SeedQuestion(t, h.ctx, h.tx, "core_features")

	require.NoError(t, h.questionnaire.SaveResponse(h.ctx, h.user.ID, mc.ID, fmt.Sprint(mc.Options[1].ID)))
	require.NoError(t, h.questionnaire.SaveResponse(h.ctx, h.user.ID, text.ID, "  chat and payments "))

	answers, err := h.answerRepo.ListByUser(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	for _, a := range answers {
		assert.True(t, (a.SelectedOptionID == nil) != (a.CustomText == nil), "exactly one of option/text")
		switch a.QuestionID {
		case mc.ID:
			require.NotNil(t, a.SelectedOptionID)
			assert.Equal(t, mc.Options[1].ID, *a.SelectedOptionID)
		case text.ID:
			require.NotNil(t, a.CustomText)
			assert.Equal(t, "chat and payments", *a.CustomText)
		}
	}

	// Overwrite the option answer with free text.
	require.NoError(t, h.questionnaire.SaveResponse(h.ctx, h.user.ID, mc.ID, "A kiosk app"))
	answers, err = h.answerRepo.ListByUser(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	for _, a := range answers {
		if a.QuestionID == mc.ID {
			assert.Nil(t, a.SelectedOptionID)
			require.NotNil(t, a.CustomText)
			assert.Equal(t, "A kiosk app", *a.CustomText)
		}
	}
}

func TestSaveResponseRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	mc := testutil.SeedQuestion(t, h.ctx, h.tx, "app_type", "Web")
	other := testutil.SeedQuestion(t, h.ctx, h.tx, "platform", "iOS")

	cases := []struct {
		name     string
		question uint
		answer   string
	}{
		{"blank", mc.ID, "   "},
		{"zero question", 0, "x"},
		{"unknown question", mc.ID + 1000, "x"},
		{"foreign option", mc.ID, fmt.Sprint(other.Options[0].ID)},
	}
	for _, tc := range cases {
		err := h.questionnaire.SaveResponse(h.ctx, h.user.ID, tc.question, tc.answer)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, tc.name)
	}
}

func TestProgress(t *testing.T) {
	h := newHarness(t)
	qs := h.seedQuestions(t, 4)

	p, err := h.questionnaire.Progress(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, Progress{Total: 4, Answered: 0, Percentage: 0}, *p)

	h.answerAll(t, qs[:3])
	p, err = h.questionnaire.Progress(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, Progress{Total: 4, Answered: 3, Percentage: 75}, *p)
}

func TestFinalizeLocksCompleteQuestionnaire(t *testing.T) {
	h := newHarness(t)
	qs := h.seedQuestions(t, 5)
	h.answerAll(t, qs)
	tpl := testutil.SeedTemplate(t, h.ctx, h.tx, "https://img.example.com/7.png")

	require.NoError(t, h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID}))

	p, err := h.questionnaire.Progress(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Percentage)

	locked, err := h.questionnaire.IsFinalized(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.True(t, locked)

	err = h.questionnaire.SaveResponse(h.ctx, h.user.ID, qs[1].ID, "changed my mind")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyFinalized)

	err = h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyFinalized)
}

func TestFinalizeUnknownTemplate(t *testing.T) {
	h := newHarness(t)
	h.answerAll(t, h.seedQuestions(t, 2))
	tpl := testutil.SeedTemplate(t, h.ctx, h.tx, "https://img.example.com/1.png")

	err := h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID, 999999})
	var ite *apperrors.InvalidTemplateSelectionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, uint(999999), ite.TemplateID)

	locked, err := h.questionnaire.IsFinalized(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.False(t, locked)
	ids, err := h.selectionRepo.ListTemplateIDs(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "valid ids are not applied when one fails")

	err = h.questionnaire.Finalize(h.ctx, h.user.ID, nil)
	require.ErrorAs(t, err, &ite)
	assert.True(t, ite.Empty)
}

func TestFinalizeIncompleteKeepsSelectionsIdempotent(t *testing.T) {
	h := newHarness(t)
	qs := h.seedQuestions(t, 5)
	h.answerAll(t, qs[:2])
	tpl := testutil.SeedTemplate(t, h.ctx, h.tx, "https://img.example.com/1.png")

	for i := 0; i < 2; i++ {
		err := h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID})
		var ie *apperrors.IncompleteQuestionnaireError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, int64(3), ie.Unanswered)
	}

	ids, err := h.selectionRepo.ListTemplateIDs(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{tpl.ID}, ids)

	locked, err := h.questionnaire.IsFinalized(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestFinalizedInput(t *testing.T) {
	h := newHarness(t)
	qs := h.seedQuestions(t, 3)
	h.answerAll(t, qs)
	tpl := testutil.SeedTemplate(t, h.ctx, h.tx, "https://img.example.com/a.png")
	require.NoError(t, h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID}))

	in, err := h.questionnaire.FinalizedInput(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smart Campus", in.Title)
	assert.Equal(t, []string{"https://img.example.com/a.png"}, in.ImageLinks)
	assert.Equal(t, "Web", in.Answers[qs[0].Text])
	assert.Equal(t, "free text for "+qs[1].Key, in.Answers[qs[1].Text])
}

func TestFinalizedInputDefaultTitle(t *testing.T) {
	h := newHarness(t)
	q := testutil.SeedQuestion(t, h.ctx, h.tx, "app_type")
	require.NoError(t, h.questionnaire.SaveResponse(h.ctx, h.user.ID, q.ID, "a web app"))

	in, err := h.questionnaire.FinalizedInput(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultDocumentTitle, in.Title)
}
