package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "PORT", "ENVIRONMENT", "MEDIA_DIR", "MEDIA_BASE_URL", "CLOUDINARY_URL"} {
		t.Setenv(key, "")
	}

	require.NoError(t, Load())

	assert.Equal(t, "8080", AppConfig.ServerPort)
	assert.Equal(t, "development", AppConfig.Environment)
	assert.Equal(t, "media", AppConfig.MediaDir)
	assert.Empty(t, AppConfig.CloudinaryURL)
	assert.NotEmpty(t, AppConfig.DatabaseURL)
	assert.NotEmpty(t, AppConfig.JWTSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.example.com/media")

	require.NoError(t, Load())

	assert.Equal(t, "9000", AppConfig.ServerPort)
	assert.Equal(t, "production", AppConfig.Environment)
	assert.Equal(t, "https://cdn.example.com/media", AppConfig.MediaBaseURL)
}
