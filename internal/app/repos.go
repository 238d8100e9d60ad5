package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type Repos struct {
	User repos.UserRepo

	Question     repos.QuestionRepo
	Answer       repos.AnswerRepo
	Finalization repos.FinalizationRepo
	Selection    repos.TemplateSelectionRepo

	Template repos.TemplateRepo
	FAQ      repos.FAQRepo

	Artifact repos.ArtifactRepo
	Draft    repos.DraftRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Question:     repos.NewQuestionRepo(db, log),
		Answer:       repos.NewAnswerRepo(db, log),
		Finalization: repos.NewFinalizationRepo(db, log),
		Selection:    repos.NewTemplateSelectionRepo(db, log),
		Template:     repos.NewTemplateRepo(db, log),
		FAQ:          repos.NewFAQRepo(db, log),
		Artifact:     repos.NewArtifactRepo(db, log),
		Draft:        repos.NewDraftRepo(db, log),
	}
}
