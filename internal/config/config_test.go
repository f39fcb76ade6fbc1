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
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/var/lib/shelfkeep"},
		Auth:    AuthConfig{AccessTokenDuration: time.Hour, RateLimitPerMinute: 20},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"PRODUCTION", false},
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

func TestValidate_LogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"WARN", true},
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

func TestValidate_RejectsBadAuthSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AccessTokenDuration = 0
	assert.ErrorContains(t, cfg.Validate(), "access token duration")

	cfg = validConfig()
	cfg.Auth.RateLimitPerMinute = -1
	assert.ErrorContains(t, cfg.Validate(), "rate limit")

	cfg = validConfig()
	cfg.Storage.DataPath = ""
	assert.ErrorContains(t, cfg.Validate(), "data path")
}

func TestStorageConfig_Paths(t *testing.T) {
	s := StorageConfig{DataPath: "/srv/shelfkeep"}
	assert.Equal(t, "/srv/shelfkeep/shelfkeep.db", s.DatabasePath())
	assert.Equal(t, "/srv/shelfkeep/auth.key", s.AuthKeyPath())
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AUTH_RATE_LIMIT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("ACCESS_TOKEN_DURATION", "")
	t.Setenv("DATA_PATH", dir)

	cfg, err := Load([]string{"-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 20, cfg.Auth.RateLimitPerMinute)
	assert.Empty(t, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load([]string{
		"-env-file", filepath.Join(dir, "missing.env"),
		"-port", "9100",
		"-access-token-duration", "30m",
	})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	_, err := Load([]string{"-env-file", filepath.Join(dir, "missing.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_READ_TIMEOUT")
}

func TestExpandDataPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty uses default", "", filepath.Join(homeDir, "Shelfkeep", "data")},
		{"tilde", "~/books", filepath.Join(homeDir, "books")},
		{"absolute", "/srv/shelfkeep", "/srv/shelfkeep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Storage: StorageConfig{DataPath: tt.in}}
			require.NoError(t, cfg.expandDataPath())
			assert.Equal(t, tt.want, cfg.Storage.DataPath)
		})
	}

	cfg := &Config{Storage: StorageConfig{DataPath: "relative/data"}}
	require.NoError(t, cfg.expandDataPath())
	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("SHELFKEEP_TEST_INT", "42")
	assert.Equal(t, 42, getIntConfigValue("", "SHELFKEEP_TEST_INT", 7))
	assert.Equal(t, 3, getIntConfigValue("3", "SHELFKEEP_TEST_INT", 7))

	t.Setenv("SHELFKEEP_TEST_INT", "lots")
	assert.Equal(t, 7, getIntConfigValue("", "SHELFKEEP_TEST_INT", 7))
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# shelfkeep
SHELFKEEP_A=one
  SHELFKEEP_B  =  "two words"
SHELFKEEP_C='three'

SHELFKEEP_KEEP=from-file
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("SHELFKEEP_A", "")
	t.Setenv("SHELFKEEP_B", "")
	t.Setenv("SHELFKEEP_C", "")
	t.Setenv("SHELFKEEP_KEEP", "from-env")

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "one", os.Getenv("SHELFKEEP_A"))
	assert.Equal(t, "two words", os.Getenv("SHELFKEEP_B"))
	assert.Equal(t, "three", os.Getenv("SHELFKEEP_C"))
	assert.Equal(t, "from-env", os.Getenv("SHELFKEEP_KEEP"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GOOD=1\nNOT A PAIR\n"), 0o600))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 2")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}
