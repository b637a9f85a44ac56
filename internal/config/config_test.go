package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./uploads", cfg.Storage.UploadsDir)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxSize)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, time.Hour, cfg.Sweeper.Interval)
	assert.Empty(t, cfg.Admin.OverrideCode, "override must be disabled unless configured")
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PHOTOSHARE_SERVER_PORT", "9090")
	t.Setenv("PHOTOSHARE_SWEEPER_INTERVAL", "15m")
	t.Setenv("PHOTOSHARE_ADMIN_OVERRIDE_CODE", "  operator-code  ")
	t.Setenv("PHOTOSHARE_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Sweeper.Interval)
	assert.Equal(t, "operator-code", cfg.Admin.OverrideCode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photoshare.yaml")
	content := "storage:\n  uploads_dir: /var/lib/photoshare\nupload:\n  max_size: 1024\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/photoshare", cfg.Storage.UploadsDir)
	assert.Equal(t, int64(1024), cfg.Upload.MaxSize)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppEnv:   "dev",
			Server:   ServerConfig{Port: "8080", ShutdownTimeout: time.Second},
			Database: DatabaseConfig{DSN: "file:x.db"},
			Storage:  StorageConfig{UploadsDir: "./uploads"},
			Upload:   UploadConfig{MaxSize: 1},
			Sweeper:  SweeperConfig{Enabled: true, Interval: time.Minute},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Upload.MaxSize = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Sweeper.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Sweeper.Enabled = false
	cfg.Sweeper.Interval = 0
	assert.NoError(t, cfg.Validate(), "interval is irrelevant when the sweeper is off")

	cfg = valid()
	cfg.AppEnv = "production"
	cfg.Admin.OverrideCode = "short"
	assert.Error(t, cfg.Validate())
}

// chdir changes the working directory for the rest of the test and restores
// it afterwards (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
