// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rmsalud/salud-api/internal/logger"
)

type Config struct {
	Server       ServerConfig
	DB           DBConfig
	Auth         AuthConfig
	Ticketmaster TicketmasterConfig
	Events       EventsConfig
	Logger       LoggerConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type AuthConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TicketmasterConfig struct {
	APIKey  string
	BaseURL string
}

type EventsConfig struct {
	// DefaultRadiusKm bounds the geographic search for events, POIs and
	// nearby resources.
	DefaultRadiusKm float64
	// WindowDays is the forward time window for event feeds.
	WindowDays int
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	accessTTL, err := time.ParseDuration(getEnvOrDefault("AUTH_ACCESS_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_ACCESS_TTL: %w", err)
	}
	refreshTTL, err := time.ParseDuration(getEnvOrDefault("AUTH_REFRESH_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_REFRESH_TTL: %w", err)
	}
	radiusKm, err := strconv.ParseFloat(getEnvOrDefault("EVENTS_RADIUS_KM", "40"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENTS_RADIUS_KM: %w", err)
	}
	windowDays, err := strconv.Atoi(getEnvOrDefault("EVENTS_WINDOW_DAYS", "90"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENTS_WINDOW_DAYS: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "rmsalud"),
		},
		Auth: AuthConfig{
			Secret:     getEnvOrDefault("AUTH_SECRET", "dev-secret-change-me"),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Ticketmaster: TicketmasterConfig{
			APIKey:  os.Getenv("TICKETMASTER_API_KEY"),
			BaseURL: getEnvOrDefault("TICKETMASTER_BASE_URL", "https://app.ticketmaster.com/discovery/v2"),
		},
		Events: EventsConfig{
			DefaultRadiusKm: radiusKm,
			WindowDays:      windowDays,
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}
