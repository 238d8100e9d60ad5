package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nexovate-backend/internal/http/response"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

type QuestionHandler struct {
	log           *logger.Logger
	questionnaire services.QuestionnaireService
}

func NewQuestionHandler(log *logger.Logger, questionnaire services.QuestionnaireService) *QuestionHandler {
	return &QuestionHandler{log: log.With("handler", "QuestionHandler"), questionnaire: questionnaire}
}

// GET /api/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	qs, err := h.questionnaire.ListQuestions(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": qs})
}

// POST /api/questions/responses
func (h *QuestionHandler) SaveResponse(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		QuestionID int64 `json:"questionId"`
		Answer     any   `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	if req.QuestionID < 1 || req.QuestionID > math.MaxUint32 {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf("questionId must be a positive integer"))
		return
	}
	answer, err := answerString(req.Answer)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	if err := h.questionnaire.SaveResponse(c.Request.Context(), userID, uint(req.QuestionID), answer); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"code": "RESPONSE_SAVED", "message": "Response saved successfully"})
}

// answerString accepts a JSON string or a non-negative integer.
func answerString(v any) (string, error) {
	switch a := v.(type) {
	case string:
		if strings.TrimSpace(a) == "" {
			return "", fmt.Errorf("answer is required")
		}
		return a, nil
	case float64:
		if a < 0 || a != math.Trunc(a) || a > math.MaxUint32 {
			return "", fmt.Errorf("numeric answer must be an option id")
		}
		return strconv.FormatInt(int64(a), 10), nil
	default:
		return "", fmt.Errorf("answer must be a string or an option id")
	}
}

// GET /api/questions/progress
func (h *QuestionHandler) Progress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	p, err := h.questionnaire.Progress(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// POST /api/questions/finalize
func (h *QuestionHandler) Finalize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		SelectedTemplateIDs []int64 `json:"selectedTemplateIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	ids, err := templateIDs(req.SelectedTemplateIDs)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	if err := h.questionnaire.Finalize(c.Request.Context(), userID, ids); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"code": "RESPONSES_FINALIZED", "message": "Responses finalized successfully"})
}

func templateIDs(in []int64) ([]uint, error) {
	out := make([]uint, 0, len(in))
	for _, id := range in {
		if id < 1 || id > math.MaxUint32 {
			return nil, fmt.Errorf("template ids must be positive integers")
		}
		out = append(out, uint(id))
	}
	return out, nil
}
