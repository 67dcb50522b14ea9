package handler

import (
	"net/http"
	"strconv"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HospitalHandler struct {
	matrixService     *service.MatrixService
	assignmentService *service.AssignmentService
	log               *zap.Logger
}

func NewHospitalHandler(matrixService *service.MatrixService, assignmentService *service.AssignmentService, log *zap.Logger) *HospitalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HospitalHandler{
		matrixService:     matrixService,
		assignmentService: assignmentService,
		log:               log,
	}
}

type HospitalRequest struct {
	Name          string `json:"name" binding:"max=255"`
	Alias         string `json:"alias" binding:"max=50"`
	Active        *bool  `json:"active"`
	Address       string `json:"address"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
	ContactPerson string `json:"contact_person" binding:"max=255"`
}

func (r HospitalRequest) toDomain(id int64) matrix.Hospital {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return matrix.Hospital{
		ID:            id,
		Name:          r.Name,
		Alias:         r.Alias,
		Active:        active,
		Address:       r.Address,
		Phone:         r.Phone,
		Email:         r.Email,
		ContactPerson: r.ContactPerson,
	}
}

type AssignmentRequest struct {
	HospitalID int64 `json:"hospital_id" binding:"required,gt=0"`
}

// GetAllHospitals lists the hospital registry, inactive hospitals included
func (h *HospitalHandler) GetAllHospitals(c *gin.Context) {
	hospitals := h.matrixService.Hospitals()
	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

func (h *HospitalHandler) GetHospital(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	hospital, found := h.matrixService.Hospital(id)
	if !found {
		utils.ErrorResponse(c, http.StatusNotFound, "Hospital not found")
		return
	}
	utils.SuccessResponse(c, hospital)
}

// CreateHospital adds a hospital (admin only)
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var req HospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, err := h.matrixService.AddHospital(actorFromContext(c), req.toDomain(0))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    hospital,
	})
}

// UpdateHospital replaces a hospital (admin only). Unknown ids leave the registry unchanged.
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req HospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	found, err := h.matrixService.EditHospital(actorFromContext(c), req.toDomain(id))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"found": found,
		"count": len(h.matrixService.Hospitals()),
	})
}

// DeleteHospital removes a hospital with its cells and pre-notifications (admin only, confirm=true)
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	found, err := h.matrixService.DeleteHospital(actorFromContext(c), id, confirmed(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"found": found,
		"count": len(h.matrixService.Hospitals()),
	})
}

// GetUserHospitals lists the hospitals assigned to a hospital user
func (h *HospitalHandler) GetUserHospitals(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	hospitals, err := h.assignmentService.GetUserHospitals(uint(userID))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// AssignUserToHospital grants a hospital user write access to a hospital (admin only)
func (h *HospitalHandler) AssignUserToHospital(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.assignmentService.AssignUserToHospital(actorFromContext(c), uint(userID), req.HospitalID); err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.MessageResponse(c, "User assigned to hospital")
}

// RemoveUserFromHospital revokes a hospital user's access (admin only)
func (h *HospitalHandler) RemoveUserFromHospital(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user ID")
		return
	}
	hospitalID, ok := parseInt64Param(c, "hospital_id")
	if !ok {
		return
	}

	if err := h.assignmentService.RemoveUserFromHospital(actorFromContext(c), uint(userID), hospitalID); err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.MessageResponse(c, "User removed from hospital")
}
