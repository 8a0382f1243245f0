package handler

import (
	"net/http"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and the caller's profile.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// POST /api/v1/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// Login godoc
// POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Profile godoc
// GET /api/v1/users/profile
// Validates the Authorization header itself and returns the caller.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.authService.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
