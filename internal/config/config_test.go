package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/var/lib/readinglog"},
		Auth: AuthConfig{
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 720 * time.Hour,
			RateLimitPerMinute:   10,
			RateLimitBurst:       20,
		},
		Catalog: CatalogConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"INFO", true},
		{"warn", true},
		{"error", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.MaxPageSize = 10
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Catalog.DefaultPageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load(&Flags{DataPath: dir})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, filepath.Join(dir, "readinglog.db"), cfg.Data.DatabasePath())
	assert.Equal(t, filepath.Join(dir, "search"), cfg.Data.SearchIndexPath())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "LOG_LEVEL=debug\nSERVER_PORT=7000\nALLOWED_ORIGINS=\"https://a.example, https://b.example\"\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// Environment beats the .env file; the flag beats both.
	t.Setenv("SERVER_PORT", "9000")
	unsetEnv(t, "LOG_LEVEL", "ALLOWED_ORIGINS")

	cfg, err := Load(&Flags{DataPath: dir, EnvFile: envFile, Env: "staging"})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

// unsetEnv removes keys for the duration of the test so a .env file can
// supply them.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(&Flags{DataPath: dir, EnvFile: filepath.Join(dir, "nope.env")})
	assert.NoError(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(&Flags{DataPath: t.TempDir(), AccessTokenDuration: "soon"})
	assert.ErrorContains(t, err, "access token duration")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("READINGLOG_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "READINGLOG_TEST_INT", 1))
	assert.Equal(t, 7, getIntConfigValue("7", "READINGLOG_TEST_INT", 1))

	t.Setenv("READINGLOG_TEST_INT", "abc")
	assert.Equal(t, 1, getIntConfigValue("", "READINGLOG_TEST_INT", 1))
}
