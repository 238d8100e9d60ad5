package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/nexovate-backend/internal/http/response"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
	"github.com/yungbote/nexovate-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondServiceError(c, ah.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": "USER_REGISTERED", "user": user})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"accessToken": token,
		"expiresIn":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	user, err := ah.authService.Me(c.Request.Context())
	if err != nil {
		respondServiceError(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}
