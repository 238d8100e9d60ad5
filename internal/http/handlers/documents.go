package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nexovate-backend/internal/http/response"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

type DocumentHandler struct {
	log       *logger.Logger
	documents services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documents services.DocumentService) *DocumentHandler {
	return &DocumentHandler{log: log.With("handler", "DocumentHandler"), documents: documents}
}

// POST /api/documents/generate
func (h *DocumentHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ExtraNotes  string  `json:"extraNotes"`
		RefinedText string  `json:"refinedText"`
		Templates   []int64 `json:"templates"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
			return
		}
	}
	ids, err := templateIDs(req.Templates)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	res, err := h.documents.Generate(c.Request.Context(), userID, services.GenerateRequest{
		ExtraNotes:  req.ExtraNotes,
		RefinedText: req.RefinedText,
		Templates:   ids,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/documents/draft
func (h *DocumentHandler) Draft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ExtraNotes string `json:"extraNotes"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
			return
		}
	}
	text, err := h.documents.Draft(c.Request.Context(), userID, req.ExtraNotes)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"text": text})
}

// POST /api/documents/refine
func (h *DocumentHandler) Refine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ExistingText  string `json:"existingText"`
		Modifications string `json:"modifications" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	ref, err := h.documents.Refine(c.Request.Context(), userID, req.ExistingText, req.Modifications)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, ref)
}

// GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.documents.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": list})
}

// GET /api/documents/download/:fileName
func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	name := c.Param("fileName")
	if name == "" || path.Base(name) != name || strings.HasPrefix(name, ".") {
		respondServiceError(c, h.log, apperrors.ErrNotFoundOrForbidden)
		return
	}
	artifact, rc, err := h.documents.Open(c.Request.Context(), userID, name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, artifact.SizeBytes, artifact.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, artifact.FileName),
	})
}
