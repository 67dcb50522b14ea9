package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	NATS     NATSConfig
	Matrix   MatrixConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	// AutoMigrate creates or updates the schema on start-up
	AutoMigrate bool
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// NATSConfig configures change notifications. An empty URL disables them.
type NATSConfig struct {
	URL  string
	Name string
}

type MatrixConfig struct {
	// WorkerTick is how often the scheduler checks auto-free times and the refresh pulse
	WorkerTick  time.Duration
	AutoRefresh bool
	// SystemUser is recorded as updatedBy for scheduler changes
	SystemUser string
	// AdminUsername and AdminPassword create the first admin account on start-up
	AdminUsername string
	AdminPassword string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "krankenhaus_matrix"),

			AutoMigrate: parseBool(getEnv("DB_AUTO_MIGRATE", "true"), true),
		},
		JWT: JWTConfig{
			AccessSecret:       getEnv("JWT_ACCESS_SECRET", "your-access-secret-key"),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		NATS: NATSConfig{
			URL:  getEnv("NATS_URL", ""),
			Name: getEnv("NATS_CLIENT_NAME", "krankenhaus-matrix"),
		},
		Matrix: MatrixConfig{
			WorkerTick:  parseDuration(getEnv("MATRIX_WORKER_TICK", "30s"), 30*time.Second),
			AutoRefresh: parseBool(getEnv("MATRIX_AUTO_REFRESH", "true"), true),
			SystemUser:  getEnv("MATRIX_SYSTEM_USER", "System"),

			AdminUsername: getEnv("ADMIN_USERNAME", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil || duration <= 0 {
		fmt.Printf("Warning: Invalid duration format '%s', using %s\n", s, fallback)
		return fallback
	}
	return duration
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		fmt.Printf("Warning: Invalid boolean '%s', using %v\n", s, fallback)
		return fallback
	}
	return b
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
