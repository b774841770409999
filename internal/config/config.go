package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const PROD_STRING = "prod"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	StoreDriver       string
	DBDSN             string
	DBMaxConns        int32
	MigrateOnStart    bool
	RateLimit         string
	RevenueWindowDays int
	TopDuesLimit      int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PROD_ORIGINS", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("REPORT_REVENUE_DAYS", 14)
	v.SetDefault("REPORT_TOP_DUES", 10)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		IsProduction:      v.GetString("APP_ENV") == PROD_STRING,
		ProdOrigins:       v.GetString("PROD_ORIGINS"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		StoreDriver:       strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DBDSN:             v.GetString("DB_DSN"),
		DBMaxConns:        v.GetInt32("DB_MAX_CONNS"),
		MigrateOnStart:    v.GetBool("MIGRATE_ON_START"),
		RateLimit:         v.GetString("RATE_LIMIT"),
		RevenueWindowDays: v.GetInt("REPORT_REVENUE_DAYS"),
		TopDuesLimit:      v.GetInt("REPORT_TOP_DUES"),
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		// Database DSN is required for the postgres store
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %d", cfg.DBMaxConns)
	}
	if cfg.RevenueWindowDays < 1 {
		return nil, fmt.Errorf("invalid REPORT_REVENUE_DAYS: %d", cfg.RevenueWindowDays)
	}
	if cfg.TopDuesLimit < 1 {
		return nil, fmt.Errorf("invalid REPORT_TOP_DUES: %d", cfg.TopDuesLimit)
	}

	return cfg, nil
}
