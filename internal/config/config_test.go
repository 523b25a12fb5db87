package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:           "development",
		Port:          "8000",
		JWTSecret:     "secure-secret-at-least-32-chars-long",
		JWTTTL:        time.Hour,
		DBPassword:    "secure-password",
		DBSSLMode:     "require",
		StorageDriver: StorageLocal,
		MediaRoot:     "media",
		MaxUploadMB:   10,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateStorage(t *testing.T) {
	c := validConfig()
	c.StorageDriver = "ftp"
	assert.ErrorContains(t, c.Validate(), "unknown STORAGE_DRIVER")

	c = validConfig()
	c.StorageDriver = StorageS3
	assert.ErrorContains(t, c.Validate(), "S3_BUCKET")

	c.S3Bucket = "quill-media"
	assert.NoError(t, c.Validate())

	c = validConfig()
	c.MediaRoot = ""
	assert.ErrorContains(t, c.Validate(), "MEDIA_ROOT")
}

func TestConfig_ValidateProductionSecret(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.ErrorContains(t, c.Validate(), "default value")

	c.JWTSecret = "short"
	assert.ErrorContains(t, c.Validate(), "at least 32")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("STORAGE_DRIVER", "Local")
	t.Setenv("MEDIA_BASE_URL", "http://cdn.local/media/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "9100", c.Port)
	assert.Equal(t, 2*time.Hour, c.JWTTTL)
	assert.Equal(t, StorageLocal, c.StorageDriver)
	assert.Equal(t, "http://cdn.local/media", c.MediaBaseURL)
	assert.Equal(t, 10*1024*1024, c.MaxUploadBytes())
}

func TestConfig_DSN(t *testing.T) {
	c := validConfig()
	c.DBHost, c.DBUser, c.DBName, c.DBPort = "db", "u", "n", "5433"
	assert.Equal(t, "host=db user=u password=secure-password dbname=n port=5433 sslmode=require", c.DSN())
}
