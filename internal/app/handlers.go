package app

import (
	httpserver "github.com/yungbote/nexovate-backend/internal/http"
	httpH "github.com/yungbote/nexovate-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nexovate-backend/internal/http/middleware"
	"github.com/yungbote/nexovate-backend/internal/observability"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Question *httpH.QuestionHandler
	Document *httpH.DocumentHandler
	Catalog  *httpH.CatalogHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Auth:     httpH.NewAuthHandler(log, services.Auth),
		Question: httpH.NewQuestionHandler(log, services.Questionnaire),
		Document: httpH.NewDocumentHandler(log, services.Documents),
		Catalog:  httpH.NewCatalogHandler(log, services.Catalog),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) httpserver.RouterConfig {
	return httpserver.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		QuestionHandler: handlers.Question,
		DocumentHandler: handlers.Document,
		CatalogHandler:  handlers.Catalog,
		HealthHandler:   handlers.Health,
	}
}
