package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rmsalud/salud-api/internal/config"
)

func main() {
	fmt.Println("🔍 Validating configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration validation failed:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Configuration details:\n")
	fmt.Printf("  - Server Port: %s\n", cfg.Server.Port)
	fmt.Printf("  - DB Host: %s\n", cfg.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.DB.DBName)
	fmt.Printf("  - Auth Secret: %s\n", maskToken(cfg.Auth.Secret))
	fmt.Printf("  - Access Token TTL: %v\n", cfg.Auth.AccessTTL)
	fmt.Printf("  - Refresh Token TTL: %v\n", cfg.Auth.RefreshTTL)
	fmt.Printf("  - Ticketmaster API Key: %s\n", maskToken(cfg.Ticketmaster.APIKey))
	fmt.Printf("  - Events Radius (km): %v\n", cfg.Events.DefaultRadiusKm)
	fmt.Printf("  - Events Window (days): %d\n", cfg.Events.WindowDays)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
