package handler

import (
	"krankenhaus-matrix/internal/matrix"
	"krankenhaus-matrix/internal/middleware"
	"krankenhaus-matrix/internal/models"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router serves
type Handlers struct {
	Auth     *AuthHandler
	Matrix   *MatrixHandler
	Hospital *HospitalHandler
	Admin    *AdminHandler
	Access   *middleware.AccessControlMiddleware
}

// RegisterRoutes defines the HTTP API on r
func RegisterRoutes(r *gin.Engine, h Handlers) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "krankenhaus-matrix",
		})
	})

	// Auth routes (public, registration is admin only)
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.AuthMiddleware(), middleware.RequireAdmin(), h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// Matrix routes (authenticated)
	m := r.Group("/matrix")
	m.Use(middleware.AuthMiddleware())
	{
		m.GET("", h.Matrix.GetMatrix)
		m.GET("/statistics", h.Matrix.GetStatistics)
		m.GET("/legend", h.Matrix.GetLegend)
	}

	// Cell routes, writes limited to dispatchers, admins and assigned hospital users
	writers := []gin.HandlerFunc{
		middleware.RequireRole(models.RoleAdmin, models.RoleDispatcher, models.RoleHospital),
		h.Access.CheckHospitalAccess(),
	}
	cells := r.Group("/cells/:hospital_id/:item_id")
	cells.Use(middleware.AuthMiddleware())
	{
		cells.GET("", h.Matrix.GetCell)
		cells.PUT("", append(writers, h.Matrix.UpdateCell)...)
		cells.GET("/pva", h.Matrix.ListPVAs)
		cells.POST("/pva", append(writers, h.Matrix.CreatePVA)...)
		cells.PUT("/pva/:id", append(writers, h.Matrix.UpdatePVA)...)
		cells.DELETE("/pva/:id", append(writers, h.Matrix.DeletePVA)...)
	}

	// Hospital list is readable by everyone signed in
	r.GET("/hospitals", middleware.AuthMiddleware(), h.Hospital.GetAllHospitals)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		admin.GET("/hospitals", h.Hospital.GetAllHospitals)
		admin.GET("/hospitals/:id", h.Hospital.GetHospital)
		admin.POST("/hospitals", h.Hospital.CreateHospital)
		admin.PUT("/hospitals/:id", h.Hospital.UpdateHospital)
		admin.DELETE("/hospitals/:id", h.Hospital.DeleteHospital)

		for path, category := range map[string]matrix.ItemCategory{
			"/capacities": matrix.CategoryCapacity,
			"/services":   matrix.CategoryService,
		} {
			admin.GET(path, h.Admin.ListItems(category))
			admin.POST(path, h.Admin.CreateItem(category))
			admin.PUT(path+"/:id", h.Admin.UpdateItem(category))
			admin.DELETE(path+"/:id", h.Admin.DeleteItem(category))
		}

		admin.GET("/system", h.Admin.GetSystem)
		admin.PUT("/system", h.Admin.UpdateSystem)
		admin.POST("/save", h.Admin.Save)

		admin.GET("/users/:user_id/hospitals", h.Hospital.GetUserHospitals)
		admin.POST("/users/:user_id/hospitals", h.Hospital.AssignUserToHospital)
		admin.DELETE("/users/:user_id/hospitals/:hospital_id", h.Hospital.RemoveUserFromHospital)
	}
}
