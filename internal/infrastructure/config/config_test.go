package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SCHOOLFEE_JWT_SECRET", "dev-secret")

	cfg, err := loadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "schoolfee-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "schoolfee", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Empty(t, cfg.Redis.Host)
	assert.False(t, cfg.Fee.AllowOverpayment)
	assert.False(t, cfg.Fee.HandoverCountsAllMethods)
	assert.Equal(t, 24*time.Hour, cfg.Fee.IdempotencyTTL)
	assert.Equal(t, "A5", cfg.Printing.PaperSize)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SCHOOLFEE_JWT_SECRET", "dev-secret")
	t.Setenv("SCHOOLFEE_DATABASE_HOST", "db.internal")
	t.Setenv("SCHOOLFEE_DATABASE_PORT", "5433")
	t.Setenv("SCHOOLFEE_FEE_ALLOW_OVERPAYMENT", "true")
	t.Setenv("SCHOOLFEE_FEE_HANDOVER_COUNTS_ALL_METHODS", "true")
	t.Setenv("SCHOOLFEE_FEE_IDEMPOTENCY_TTL", "2h")
	t.Setenv("SCHOOLFEE_REDIS_HOST", "cache")
	t.Setenv("SCHOOLFEE_PRINTING_PAPER_SIZE", "a4")

	cfg, err := loadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.True(t, cfg.Fee.AllowOverpayment)
	assert.True(t, cfg.Fee.HandoverCountsAllMethods)
	assert.Equal(t, 2*time.Hour, cfg.Fee.IdempotencyTTL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, "A4", cfg.Printing.PaperSize)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{},
			wantErr: "jwt.secret is required",
		},
		{
			name: "idle conns above open conns",
			env: map[string]string{
				"SCHOOLFEE_JWT_SECRET":              "dev-secret",
				"SCHOOLFEE_DATABASE_MAX_OPEN_CONNS": "5",
				"SCHOOLFEE_DATABASE_MAX_IDLE_CONNS": "10",
			},
			wantErr: "cannot exceed",
		},
		{
			name: "sampling ratio out of range",
			env: map[string]string{
				"SCHOOLFEE_JWT_SECRET":               "dev-secret",
				"SCHOOLFEE_TELEMETRY_SAMPLING_RATIO": "1.5",
			},
			wantErr: "sampling_ratio",
		},
		{
			name: "storage without bucket",
			env: map[string]string{
				"SCHOOLFEE_JWT_SECRET":      "dev-secret",
				"SCHOOLFEE_STORAGE_ENABLED": "true",
			},
			wantErr: "storage.bucket",
		},
		{
			name: "unknown paper size",
			env: map[string]string{
				"SCHOOLFEE_JWT_SECRET":          "dev-secret",
				"SCHOOLFEE_PRINTING_PAPER_SIZE": "B5",
			},
			wantErr: "paper_size",
		},
		{
			name: "production with short secret",
			env: map[string]string{
				"SCHOOLFEE_APP_ENV":    "production",
				"SCHOOLFEE_JWT_SECRET": "short",
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "production without tls to database",
			env: map[string]string{
				"SCHOOLFEE_APP_ENV":           "production",
				"SCHOOLFEE_JWT_SECRET":        "0123456789abcdef0123456789abcdef",
				"SCHOOLFEE_DATABASE_PASSWORD": "s3cret",
			},
			wantErr: "sslmode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadFrom(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "fee", Password: "p@ss/word", DBName: "schoolfee", SSLMode: "require"}
	assert.Equal(t, "postgres://fee:p%40ss%2Fword@db:5432/schoolfee?sslmode=require", d.DSN())
}
