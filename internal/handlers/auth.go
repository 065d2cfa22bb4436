package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/jrprasath/paperhouse-backend/internal/pkg/errors"
	"github.com/jrprasath/paperhouse-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	token, expiresIn, err := ah.authService.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", pkgerrors.ErrUnauthorized)
		return
	}
	RespondOK(c, gin.H{"accessToken": token, "expiresIn": expiresIn})
}
