package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	var cfg Config
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, "token", cfg.CookieName)
	assert.Equal(t, "disk", cfg.BlobDriver)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")

	var cfg Config
	assert.Error(t, Load(&cfg))
}

func TestLoadParsesExpire(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_EXPIRE", "90m")

	var cfg Config
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 90*time.Minute, cfg.JWTExpire)
}

func TestValidateDriverRequirements(t *testing.T) {
	base := func() Config {
		return Config{
			ServerPort:     8080,
			JWTSecret:      "secret",
			JWTExpire:      time.Hour,
			CookieName:     "token",
			MaxUploadBytes: 1024,
			StoreDriver:    "memory",
			BlobDriver:     "disk",
			UploadDir:      "uploads",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"memory and disk", func(c *Config) {}, false},
		{"postgres without url", func(c *Config) { c.StoreDriver = "postgres" }, true},
		{"postgres with url", func(c *Config) {
			c.StoreDriver = "postgres"
			c.DatabaseURL = "postgres://localhost/db"
		}, false},
		{"mongo without url", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"unknown store", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"s3 without bucket", func(c *Config) { c.BlobDriver = "s3"; c.AWSRegion = "us-east-1" }, true},
		{"s3 complete", func(c *Config) {
			c.BlobDriver = "s3"
			c.AWSRegion = "us-east-1"
			c.AWSBucketName = "files"
		}, false},
		{"minio missing keys", func(c *Config) { c.BlobDriver = "minio"; c.MinioEndpoint = "minio:9000" }, true},
		{"zero expire", func(c *Config) { c.JWTExpire = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
