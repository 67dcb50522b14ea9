package handler

import (
	"net/http"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the capacity type and service group registries, the system
// configuration and the generic save contract
type AdminHandler struct {
	matrixService *service.MatrixService
	log           *zap.Logger
}

func NewAdminHandler(matrixService *service.MatrixService, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		matrixService: matrixService,
		log:           log,
	}
}

type ItemRequest struct {
	Name        string `json:"name" binding:"max=255"`
	Description string `json:"description" binding:"max=2000"`
}

type SystemRequest struct {
	AutoFreeTimes           []string                  `json:"auto_free_times" binding:"max=24"`
	BackupEmail             string                    `json:"backup_email" binding:"omitempty,email"`
	RefreshInterval         int                       `json:"refresh_interval"`
	ExternalURL             string                    `json:"external_url" binding:"omitempty,url"`
	EnablePushNotifications bool                      `json:"enable_push_notifications"`
	EnableEmailAlerts       bool                      `json:"enable_email_alerts"`
	MaxPVAPerDay            int                       `json:"max_pva_per_day"`
	EmergencyContacts       []matrix.EmergencyContact `json:"emergency_contacts"`
}

// ListItems returns the registry of the category bound to the route
func (h *AdminHandler) ListItems(category matrix.ItemCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := h.matrixService.Items(category)
		utils.SuccessResponse(c, gin.H{
			"items": items,
			"count": len(items),
		})
	}
}

func (h *AdminHandler) CreateItem(category matrix.ItemCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		item, err := h.matrixService.AddItem(actorFromContext(c), matrix.Item{
			Name:        req.Name,
			Description: req.Description,
			Category:    category,
		})
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"data":    item,
		})
	}
}

func (h *AdminHandler) UpdateItem(category matrix.ItemCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req ItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		found, err := h.matrixService.EditItem(actorFromContext(c), matrix.Item{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Category:    category,
		})
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"found": found,
			"count": len(h.matrixService.Items(category)),
		})
	}
}

func (h *AdminHandler) DeleteItem(category matrix.ItemCategory) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		found, err := h.matrixService.DeleteItem(actorFromContext(c), category, id, confirmed(c))
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"found": found,
			"count": len(h.matrixService.Items(category)),
		})
	}
}

func (h *AdminHandler) GetSystem(c *gin.Context) {
	utils.SuccessResponse(c, h.matrixService.System())
}

// UpdateSystem replaces the system configuration; the refresh interval is clamped to 1..60
func (h *AdminHandler) UpdateSystem(c *gin.Context) {
	var req SystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg, err := h.matrixService.UpdateSystem(actorFromContext(c), matrix.SystemConfig{
		AutoFreeTimes:           req.AutoFreeTimes,
		BackupEmail:             req.BackupEmail,
		RefreshInterval:         req.RefreshInterval,
		ExternalURL:             req.ExternalURL,
		EnablePushNotifications: req.EnablePushNotifications,
		EnableEmailAlerts:       req.EnableEmailAlerts,
		MaxPVAPerDay:            req.MaxPVAPerDay,
		EmergencyContacts:       req.EmergencyContacts,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, cfg)
}

// Save handles the generic save contract {kind, action, payload}
func (h *AdminHandler) Save(c *gin.Context) {
	var req service.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if confirmed(c) {
		req.Confirm = true
	}

	res, err := h.matrixService.Save(actorFromContext(c), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, res)
}
