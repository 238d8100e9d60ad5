package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos/catalog"
	"github.com/yungbote/nexovate-backend/internal/data/repos/documents"
	"github.com/yungbote/nexovate-backend/internal/data/repos/questionnaire"
	"github.com/yungbote/nexovate-backend/internal/data/repos/user"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type QuestionRepo = questionnaire.QuestionRepo
type AnswerRepo = questionnaire.AnswerRepo
type FinalizationRepo = questionnaire.FinalizationRepo
type TemplateSelectionRepo = questionnaire.TemplateSelectionRepo

type TemplateRepo = catalog.TemplateRepo
type FAQRepo = catalog.FAQRepo

type ArtifactRepo = documents.ArtifactRepo
type DraftRepo = documents.DraftRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewQuestionRepo(db *gorm.DB, log *logger.Logger) QuestionRepo {
	return questionnaire.NewQuestionRepo(db, log)
}
func NewAnswerRepo(db *gorm.DB, log *logger.Logger) AnswerRepo {
	return questionnaire.NewAnswerRepo(db, log)
}
func NewFinalizationRepo(db *gorm.DB, log *logger.Logger) FinalizationRepo {
	return questionnaire.NewFinalizationRepo(db, log)
}
func NewTemplateSelectionRepo(db *gorm.DB, log *logger.Logger) TemplateSelectionRepo {
	return questionnaire.NewTemplateSelectionRepo(db, log)
}

func NewTemplateRepo(db *gorm.DB, log *logger.Logger) TemplateRepo { return catalog.NewTemplateRepo(db, log) }
func NewFAQRepo(db *gorm.DB, log *logger.Logger) FAQRepo           { return catalog.NewFAQRepo(db, log) }

func NewArtifactRepo(db *gorm.DB, log *logger.Logger) ArtifactRepo {
	return documents.NewArtifactRepo(db, log)
}
func NewDraftRepo(db *gorm.DB, log *logger.Logger) DraftRepo { return documents.NewDraftRepo(db, log) }
