package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/nexovate-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedQuestion creates a required multiple-choice question with the given option texts,
// or a text_input question when no options are passed.
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, key string, options ...string) *types.Question {
	tb.Helper()
	q := &types.Question{
		Key:      key,
		Text:     fmt.Sprintf("Question %s?", key),
		Type:     types.QuestionTypeTextInput,
		Required: true,
		Active:   true,
	}
	if len(options) > 0 {
		q.Type = types.QuestionTypeMultipleChoice
	}
	for i, o := range options {
		q.Options = append(q.Options, types.QuestionOption{Text: o, SortOrder: i + 1})
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, imageURL string) *types.Template {
	tb.Helper()
	t := &types.Template{Name: "template", ImageURL: imageURL, Active: true}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}

func SeedTextAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, questionID uint, text string) *types.Answer {
	tb.Helper()
	a := &types.Answer{UserID: userID, QuestionID: questionID, CustomText: &text}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return a
}
