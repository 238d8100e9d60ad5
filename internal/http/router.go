package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/nexovate-backend/internal/http/handlers"
	httpMW "github.com/yungbote/nexovate-backend/internal/http/middleware"
	"github.com/yungbote/nexovate-backend/internal/observability"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	QuestionHandler *httpH.QuestionHandler
	DocumentHandler *httpH.DocumentHandler
	CatalogHandler  *httpH.CatalogHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}
	if cfg.CatalogHandler != nil {
		api.GET("/faqs", cfg.CatalogHandler.ListFAQs)
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	} else {
		protected.Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		})
	}

	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
	}
	if cfg.CatalogHandler != nil {
		protected.GET("/templates", cfg.CatalogHandler.ListTemplates)
	}
	if cfg.QuestionHandler != nil {
		protected.GET("/questions", cfg.QuestionHandler.ListQuestions)
		protected.POST("/questions/responses", cfg.QuestionHandler.SaveResponse)
		protected.GET("/questions/progress", cfg.QuestionHandler.Progress)
		protected.POST("/questions/finalize", cfg.QuestionHandler.Finalize)
	}
	if cfg.DocumentHandler != nil {
		protected.GET("/documents", cfg.DocumentHandler.List)
		protected.POST("/documents/draft", cfg.DocumentHandler.Draft)
		protected.POST("/documents/refine", cfg.DocumentHandler.Refine)
		protected.POST("/documents/generate", cfg.DocumentHandler.Generate)
		protected.GET("/documents/download/:fileName", cfg.DocumentHandler.Download)
	}

	return r
}
