package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AccessControlMiddleware restricts hospital users to the hospitals assigned to them
type AccessControlMiddleware struct {
	assignments *service.AssignmentService
}

// NewAccessControlMiddleware creates a new access control middleware
func NewAccessControlMiddleware(assignments *service.AssignmentService) *AccessControlMiddleware {
	return &AccessControlMiddleware{assignments: assignments}
}

// CheckHospitalAccess verifies the user may change the hospital specified in the path
// Expected path parameter: :hospital_id
func (m *AccessControlMiddleware) CheckHospitalAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by AuthMiddleware)
		userID, exists := c.Get("userID")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		hospitalID, err := strconv.ParseInt(c.Param("hospital_id"), 10, 64)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
			c.Abort()
			return
		}

		actor := service.Actor{
			UserID:   userID.(uint),
			Username: c.GetString("username"),
			Role:     c.GetString("role"),
		}
		if err := m.assignments.CheckHospitalAccess(actor, hospitalID); err != nil {
			if errors.Is(err, service.ErrAccessDenied) {
				utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you don't have permission to update this hospital")
			} else {
				utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to verify access")
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
