package database

import (
	"fmt"
	"time"

	"krankenhaus-matrix/internal/config"
	"krankenhaus-matrix/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect initializes and returns a GORM database connection
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), GormConfig(cfg.Server.GinMode))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	return db, nil
}

// GormConfig returns the shared GORM settings: UTC timestamps, quiet logging in release mode
func GormConfig(ginMode string) *gorm.Config {
	gormLogger := logger.Default.LogMode(logger.Info)
	if ginMode == "release" || ginMode == "test" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}
	return &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate creates or updates every table the service uses
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.UserHospital{},
		&models.AuditLog{},
		&models.Hospital{},
		&models.MatrixItem{},
		&models.MatrixCell{},
		&models.PreNotification{},
		&models.SystemSettings{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
