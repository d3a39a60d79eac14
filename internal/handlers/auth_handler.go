package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paisatrack/internal/config"
	"paisatrack/internal/middleware"
	"paisatrack/internal/services"
)

// AuthHandler serves registration, login and profile endpoints.
type AuthHandler struct {
	users services.UserServicer
	cfg   *config.Config
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(users services.UserServicer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration details"
// @Success 201 {object} map[string]interface{}
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, h.cfg.JWTSecret, h.cfg.JWTExpiresIn)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statusCreated(c, gin.H{"user": user, "token": token})
}

// Login godoc
// @Summary Authenticate and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, h.cfg.JWTSecret, h.cfg.JWTExpiresIn)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"user": user, "token": token})
}

// Profile godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), getUserID(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the authenticated user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Router /profile [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), getUserID(c), services.UpdateProfileInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}
