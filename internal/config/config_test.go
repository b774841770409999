package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("REPORT_REVENUE_DAYS", 14)
	v.SetDefault("REPORT_TOP_DUES", 10)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper(t *testing.T) {
	t.Run("postgres requires DSN", func(t *testing.T) {
		_, err := fromViper(newViper(nil))
		assert.EqualError(t, err, "DB_DSN is required")
	})

	t.Run("memory store needs no DSN", func(t *testing.T) {
		cfg, err := fromViper(newViper(map[string]any{"STORE_DRIVER": "Memory"}))
		require.NoError(t, err)
		assert.Equal(t, StoreMemory, cfg.StoreDriver)
		assert.Equal(t, 14, cfg.RevenueWindowDays)
		assert.Equal(t, 10, cfg.TopDuesLimit)
		assert.False(t, cfg.IsProduction)
	})

	t.Run("production flag", func(t *testing.T) {
		cfg, err := fromViper(newViper(map[string]any{"APP_ENV": "prod", "DB_DSN": "postgres://x"}))
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction)
		assert.Equal(t, int32(10), cfg.DBMaxConns)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := fromViper(newViper(map[string]any{"STORE_DRIVER": "mysql"}))
		assert.Error(t, err)
	})

	t.Run("bad revenue window", func(t *testing.T) {
		_, err := fromViper(newViper(map[string]any{"STORE_DRIVER": "memory", "REPORT_REVENUE_DAYS": 0}))
		assert.Error(t, err)
	})
}
