package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"JWT_EXPIRY_HOURS", "MAX_UPLOAD_SIZE_MB", "ALLOWED_FILE_TYPES", "STORAGE_DRIVER", "S3_USE_SSL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"pdf", "doc", "docx"}, cfg.AllowedFileTypes)
	assert.Equal(t, StorageLocal, cfg.StorageDriver)
	assert.True(t, cfg.S3.UseSSL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "an-override-secret-that-is-long-enough")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("MAX_DB_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, StorageS3, cfg.StorageDriver)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, int32(16), cfg.MaxDBConns)

	tc := cfg.TokenConfig()
	assert.Equal(t, "an-override-secret-that-is-long-enough", tc.Secret)
	assert.Equal(t, 2*time.Hour, tc.Lifetime)
}
