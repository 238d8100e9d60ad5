package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/nexovate-backend/internal/http/response"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/apierr"
	"github.com/yungbote/nexovate-backend/internal/platform/ctxutil"
	"github.com/yungbote/nexovate-backend/internal/platform/generator"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeAlreadyFinalized   = "ALREADY_FINALIZED"
	CodeInvalidTemplate    = "INVALID_TEMPLATE"
	CodeUnanswered         = "ERR_UNANSWERED_QUESTIONS"
	CodeNotFinalized       = "NOT_FINALIZED"
	CodeNoDraft            = "NO_DRAFT"
	CodeDocumentNotFound   = "DOCUMENT_NOT_FOUND"
	CodeGenerationFailed   = "GENERATION_FAILED"
	CodeRefinementFailed   = "REFINEMENT_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternal           = "INTERNAL_ERROR"
)

// toAPIError maps service errors onto HTTP status, code and details.
func toAPIError(err error) *apierr.Error {
	var (
		ite *apperrors.InvalidTemplateSelectionError
		ie  *apperrors.IncompleteQuestionnaireError
		rf  *apperrors.RefinementFailedError
	)
	switch {
	case errors.Is(err, apperrors.ErrAlreadyFinalized):
		return apierr.New(http.StatusForbidden, CodeAlreadyFinalized, err)
	case errors.As(err, &ite):
		if ite.Empty {
			return apierr.New(http.StatusBadRequest, CodeInvalidTemplate, err)
		}
		return apierr.WithDetails(http.StatusBadRequest, CodeInvalidTemplate, err, gin.H{"templateId": ite.TemplateID})
	case errors.As(err, &ie):
		return apierr.WithDetails(http.StatusBadRequest, CodeUnanswered, err, gin.H{"count": ie.Unanswered})
	case errors.Is(err, apperrors.ErrNotFinalized):
		return apierr.New(http.StatusBadRequest, CodeNotFinalized, err)
	case errors.Is(err, apperrors.ErrNoDraft):
		return apierr.New(http.StatusBadRequest, CodeNoDraft, err)
	case errors.Is(err, apperrors.ErrNotFoundOrForbidden):
		return apierr.New(http.StatusNotFound, CodeDocumentNotFound, err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, CodeInvalidRequest, err)
	case errors.Is(err, services.ErrEmailTaken):
		return apierr.New(http.StatusConflict, CodeEmailTaken, err)
	case errors.Is(err, services.ErrInvalidCredentials):
		return apierr.New(http.StatusUnauthorized, CodeInvalidCredentials, err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, CodeUnauthorized, err)
	case errors.As(err, &rf):
		return apierr.WithDetails(http.StatusInternalServerError, CodeRefinementFailed, err, engineDetails(rf.Err))
	case apperrors.KindOf(err) == apperrors.KindEngine:
		return apierr.WithDetails(http.StatusInternalServerError, CodeGenerationFailed, err, engineDetails(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, "REQUEST_CANCELLED", err)
	default:
		return apierr.New(http.StatusInternalServerError, CodeInternal, err)
	}
}

func engineDetails(err error) string {
	var ee *generator.EngineError
	if errors.As(err, &ee) && ee.Stderr != "" {
		return ee.Stderr
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	ae := toAPIError(err)
	if ae.Status >= http.StatusInternalServerError {
		log.Error("Request failed", append(ctxutil.LogFields(c.Request.Context()), "code", ae.Code, "error", err)...)
		if ae.Code == CodeInternal {
			// Persistence and other internals are not echoed to the client.
			ae.Err = errors.New("internal server error")
		}
	}
	_ = c.Error(err)
	response.RespondErrorDetails(c, ae.Status, ae.Code, ae, ae.Details)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, CodeUnauthorized, apperrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return rd.UserID, true
}
