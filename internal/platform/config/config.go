package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// RateLimit is the per-client request budget, in limiter notation
	// (e.g. "100-M" for 100 requests per minute).
	RateLimit string

	// ChartAutoProvision controls whether the account resolver may create
	// accounts and mappings on first use of a category.
	ChartAutoProvision bool

	// ApprovalFloorRole is the minimum role that may decide approvals
	// outside the requester's management chain.
	ApprovalFloorRole string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "fintrak")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CHART_AUTO_PROVISION", true)
	viper.SetDefault("APPROVAL_FLOOR_ROLE", "MANAGER")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.ChartAutoProvision = viper.GetBool("CHART_AUTO_PROVISION")
	cfg.ApprovalFloorRole = viper.GetString("APPROVAL_FLOOR_ROLE")

	return cfg, nil
}
