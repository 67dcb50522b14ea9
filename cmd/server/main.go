package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"krankenhaus-matrix/internal/config"
	"krankenhaus-matrix/internal/database"
	"krankenhaus-matrix/internal/handler"
	"krankenhaus-matrix/internal/middleware"
	"krankenhaus-matrix/internal/notify"
	"krankenhaus-matrix/internal/repository"
	"krankenhaus-matrix/internal/service"
	"krankenhaus-matrix/pkg/logger"
	"krankenhaus-matrix/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "krankenhaus-matrix")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Initialize database connection
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("schema migration failed", zap.Error(err))
		}
	}

	// 4. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	userHospitalRepo := repository.NewUserHospitalRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	repos := service.MatrixRepositories{
		Hospitals: repository.NewHospitalRepo(db),
		Items:     repository.NewItemRepo(db),
		Cells:     repository.NewCellRepo(db),
		PVAs:      repository.NewPreNotificationRepo(db),
		System:    repository.NewSystemSettingsRepo(db),
		Audit:     auditRepo,
	}

	// 5. Change notifications
	var publisher notify.Publisher = notify.Nop{}
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(cfg.NATS.URL, cfg.NATS.Name, log)
		if err != nil {
			log.Warn("change notifications disabled", zap.Error(err))
		} else {
			publisher = nc
			log.Info("publishing change notifications", zap.String("url", cfg.NATS.URL))
		}
	}
	defer publisher.Close()

	// 6. Initialize services
	authService := service.NewAuthService(userRepo, auditRepo)
	if created, err := authService.EnsureAdmin(cfg.Matrix.AdminUsername, cfg.Matrix.AdminPassword); err != nil {
		log.Error("failed to create initial admin", zap.Error(err))
	} else if created {
		log.Info("initial admin created", zap.String("username", cfg.Matrix.AdminUsername))
	}

	matrixService := service.NewMatrixService(repos, publisher, log, nil)
	if err := matrixService.Load(); err != nil {
		log.Fatal("failed to load matrix", zap.Error(err))
	}
	assignmentService := service.NewAssignmentService(matrixService, userRepo, userHospitalRepo, auditRepo)
	workerService := service.NewWorkerService(matrixService, cfg.Matrix.WorkerTick, cfg.Matrix.AutoRefresh, cfg.Matrix.SystemUser, log)

	// 7. Start background worker in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerService.Start(ctx)

	// 8. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, assignmentService, cfg.Server.GinMode == gin.ReleaseMode, log),
		Matrix:   handler.NewMatrixHandler(matrixService, log),
		Hospital: handler.NewHospitalHandler(matrixService, assignmentService, log),
		Admin:    handler.NewAdminHandler(matrixService, log),
		Access:   middleware.NewAccessControlMiddleware(assignmentService),
	})

	// 9. Setup graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Cancel background worker context
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	log.Info("server exited")
}
