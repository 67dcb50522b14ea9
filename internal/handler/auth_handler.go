package handler

import (
	"errors"
	"net/http"

	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authService       *service.AuthService
	assignmentService *service.AssignmentService
	secureCookies     bool
	log               *zap.Logger
}

// NewAuthHandler serves sign-in and account creation. secureCookies marks the refresh
// cookie Secure and should be set whenever the API is served over HTTPS.
func NewAuthHandler(authService *service.AuthService, assignmentService *service.AssignmentService, secureCookies bool, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		authService:       authService,
		assignmentService: assignmentService,
		secureCookies:     secureCookies,
		log:               log,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a control-center or hospital account. Role defaults to dispatcher;
// hospital accounts list the hospitals they report for.
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	DisplayName string  `json:"display_name" binding:"max=100"`
	Password    string  `json:"password" binding:"required,min=6,max=72"`
	Role        string  `json:"role" binding:"omitempty,oneof=admin dispatcher hospital"`
	HospitalIDs []int64 `json:"hospital_ids" binding:"omitempty,max=50,dive,gt=0"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, token, maxAge, "/auth", "", h.secureCookies, true)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Authenticate user
	response, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	// Refresh token lives in an HttpOnly cookie scoped to /auth
	h.setRefreshCookie(c, response.RefreshToken, int(utils.GetRefreshTokenExpiry().Seconds()))

	// Return access token and user info in JSON
	utils.SuccessResponse(c, gin.H{
		"access_token": response.AccessToken,
		"user":         response.User,
	})
}

// Refresh generates a new access token from refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	// Get refresh token from cookie
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	// Generate new access token
	accessToken, err := h.authService.RefreshAccessToken(refreshToken)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access_token": accessToken,
	})
}

// Logout revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	// Get refresh token from cookie
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil {
		// If no cookie, just clear it and return success
		h.setRefreshCookie(c, "", -1)
		utils.MessageResponse(c, "Logged out successfully")
		return
	}

	// Revoke the refresh token
	if err := h.authService.Logout(refreshToken); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to logout")
		return
	}

	// Clear the cookie
	h.setRefreshCookie(c, "", -1)

	utils.MessageResponse(c, "Logged out successfully")
}

// Register creates an account (admin only). The caller keeps its own session.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.assignmentService.ValidateHospitals(req.Role, req.HospitalIDs); err != nil {
		writeError(c, h.log, err)
		return
	}

	user, err := h.authService.Register(req.Username, req.DisplayName, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			utils.ErrorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRole):
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			writeError(c, h.log, err)
		}
		return
	}

	actor := actorFromContext(c)
	for _, hospitalID := range req.HospitalIDs {
		if err := h.assignmentService.AssignUserToHospital(actor, user.ID, hospitalID); err != nil {
			writeError(c, h.log, err)
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"user":         user,
			"hospital_ids": req.HospitalIDs,
		},
	})
}
