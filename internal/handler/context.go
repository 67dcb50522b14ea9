package handler

import (
	"errors"
	"net/http"
	"strconv"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// actorFromContext builds the acting user from the claims set by AuthMiddleware
func actorFromContext(c *gin.Context) service.Actor {
	userID, _ := c.Get("userID")
	id, _ := userID.(uint)
	return service.Actor{
		UserID:   id,
		Username: c.GetString("username"),
		Role:     c.GetString("role"),
	}
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func cellKeyFromPath(c *gin.Context) (matrix.CellKey, bool) {
	hospitalID, ok := parseInt64Param(c, "hospital_id")
	if !ok {
		return matrix.CellKey{}, false
	}
	itemID, ok := parseInt64Param(c, "item_id")
	if !ok {
		return matrix.CellKey{}, false
	}
	return matrix.CellKey{HospitalID: hospitalID, ItemID: itemID}, true
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

func blackWhite(c *gin.Context) bool {
	return c.Query("mode") == "bw"
}

// writeError maps service and model errors onto HTTP statuses
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var verrs matrix.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		utils.ValidationErrorResponse(c, verrs)
	case errors.Is(err, service.ErrConfirmationRequired):
		utils.ErrorResponse(c, http.StatusConflict, "Deletion must be confirmed with confirm=true")
	case errors.Is(err, service.ErrAccessDenied):
		utils.ErrorResponse(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, matrix.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Not found")
	case errors.Is(err, matrix.ErrBusy), errors.Is(err, matrix.ErrDuplicateID):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnsupportedSave),
		errors.Is(err, service.ErrInvalidPayload),
		errors.Is(err, service.ErrNotHospitalUser):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
