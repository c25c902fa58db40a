package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ADMIN_EMAILS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 10.0, cfg.Bank.DefaultBankHours)
	assert.Equal(t, 5.0, cfg.Bank.DefaultRating)
	assert.Equal(t, 1000, cfg.Bank.AdminQueryLimit)
	assert.Equal(t, 50, cfg.Bank.ErrorLogLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.Bank.RecentWindow)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Auth.AdminEmails)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5433", User: "bank", Password: "pw", DBName: "hourbank", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=bank password=pw dbname=hourbank sslmode=require", cfg.DSN())
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5000, cfg.Bank.AdminQueryLimit)
	assert.Equal(t, 100, cfg.Bank.ErrorLogLimit)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " admin@hourbank.org, ,ops@hourbank.org ")
	t.Setenv("BANK_DEFAULT_HOURS", "7.5")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"admin@hourbank.org", "ops@hourbank.org"}, cfg.Auth.AdminEmails)
	assert.Equal(t, 7.5, cfg.Bank.DefaultBankHours)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}
