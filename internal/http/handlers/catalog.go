package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/nexovate-backend/internal/http/response"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

type CatalogHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), catalog: catalog}
}

// GET /api/templates
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	out, err := h.catalog.ListTemplates(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": out})
}

// GET /api/faqs
func (h *CatalogHandler) ListFAQs(c *gin.Context) {
	out, err := h.catalog.ListFAQs(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"faqs": out})
}
