package domain

import (
	"github.com/yungbote/nexovate-backend/internal/domain/catalog"
	"github.com/yungbote/nexovate-backend/internal/domain/documents"
	"github.com/yungbote/nexovate-backend/internal/domain/questionnaire"
	"github.com/yungbote/nexovate-backend/internal/domain/user"
)

const (
	QuestionTypeMultipleChoice = questionnaire.QuestionTypeMultipleChoice
	QuestionTypeTextInput      = questionnaire.QuestionTypeTextInput
	KeyProjectCategory         = questionnaire.KeyProjectCategory

	ArtifactStatusCompleted = documents.StatusCompleted
	TextSourceExplicit      = documents.TextSourceExplicit
	TextSourceCached        = documents.TextSourceCached
	TextSourceGenerated     = documents.TextSourceGenerated
)

type User = user.User

type Question = questionnaire.Question
type QuestionOption = questionnaire.QuestionOption
type Answer = questionnaire.Answer
type FinalizationState = questionnaire.FinalizationState
type TemplateSelection = questionnaire.TemplateSelection

type Template = catalog.Template
type FAQ = catalog.FAQ

type Artifact = documents.Artifact
type GenerationMetadata = documents.GenerationMetadata
type Draft = documents.Draft

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Question{},
		&QuestionOption{},
		&Template{},
		&FAQ{},
		&Answer{},
		&FinalizationState{},
		&TemplateSelection{},
		&Draft{},
		&Artifact{},
	}
}
