package handler

import (
	"net/http"

	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MatrixHandler struct {
	matrixService *service.MatrixService
	log           *zap.Logger
}

func NewMatrixHandler(matrixService *service.MatrixService, log *zap.Logger) *MatrixHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatrixHandler{
		matrixService: matrixService,
		log:           log,
	}
}

type CellUpdateRequest struct {
	Status          string                  `json:"status" binding:"required"`
	Comment         string                  `json:"comment" binding:"max=1000"`
	SkipAutoFree    bool                    `json:"skip_auto_free"`
	Available       *bool                   `json:"available"`
	FutureOverloads []matrix.OverloadWindow `json:"future_overloads" binding:"max=20"`
}

// GetMatrix returns one tab of the matrix: rows, columns, cell display and statistics
// Query: category=capacity|service (default capacity), mode=bw for black-and-white
func (h *MatrixHandler) GetMatrix(c *gin.Context) {
	category := matrix.ItemCategory(c.DefaultQuery("category", string(matrix.CategoryCapacity)))
	if !category.Valid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid category")
		return
	}

	utils.SuccessResponse(c, h.matrixService.View(category, blackWhite(c)))
}

func (h *MatrixHandler) GetStatistics(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"statistics":  h.matrixService.Statistics(),
		"last_update": h.matrixService.LastUpdate(),
	})
}

// GetLegend returns the status and triage legends
func (h *MatrixHandler) GetLegend(c *gin.Context) {
	statuses, triage := matrix.Legend()
	utils.SuccessResponse(c, gin.H{
		"statuses": statuses,
		"triage":   triage,
	})
}

func (h *MatrixHandler) GetCell(c *gin.Context) {
	key, ok := cellKeyFromPath(c)
	if !ok {
		return
	}

	view, err := h.matrixService.CellView(key, blackWhite(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// UpdateCell sets status, comment and availability of one cell
func (h *MatrixHandler) UpdateCell(c *gin.Context) {
	key, ok := cellKeyFromPath(c)
	if !ok {
		return
	}

	var req CellUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	cell, err := h.matrixService.UpdateCell(actorFromContext(c), key, matrix.CellUpdate{
		Status:          matrix.StatusKind(req.Status),
		Comment:         req.Comment,
		SkipAutoFree:    req.SkipAutoFree,
		Available:       req.Available,
		FutureOverloads: req.FutureOverloads,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, cell)
}

// ListPVAs returns the pre-notifications of a cell, most urgent first
func (h *MatrixHandler) ListPVAs(c *gin.Context) {
	key, ok := cellKeyFromPath(c)
	if !ok {
		return
	}

	list, err := h.matrixService.CellPVAs(key)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"pvas":       list,
		"count":      len(list),
		"categories": matrix.CountByCategory(list),
	})
}

func (h *MatrixHandler) CreatePVA(c *gin.Context) {
	key, ok := cellKeyFromPath(c)
	if !ok {
		return
	}

	var req matrix.PVA
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	pva, err := h.matrixService.AddPVA(actorFromContext(c), key, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    pva,
	})
}

func (h *MatrixHandler) UpdatePVA(c *gin.Context) {
	key, ok := cellKeyFromPath(c)
	if !ok {
		return
	}
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	var req matrix.PVA
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ID = id

	found, err := h.matrixService.EditPVA(actorFromContext(c), key, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"found": found,
		"count": countPVAs(h.matrixService, key),
	})
}

func (h *MatrixHandler) DeletePVA(c *gin.Context) {
	key, ok := cellKeyFromPath(c)
	if !ok {
		return
	}
	id, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	found, err := h.matrixService.DeletePVA(actorFromContext(c), key, id, confirmed(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"found": found,
		"count": countPVAs(h.matrixService, key),
	})
}

func countPVAs(s *service.MatrixService, key matrix.CellKey) int {
	list, err := s.CellPVAs(key)
	if err != nil {
		return 0
	}
	return len(list)
}
