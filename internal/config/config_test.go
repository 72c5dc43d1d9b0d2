package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("ONEMAP_EMAIL", "user@example.com")
	t.Setenv("ONEMAP_PASSWORD", "secret")
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.yaml")
	content := `port: "9090"
model_path: "artifacts/model.txt"
onemap:
  base_url: "https://onemap.test"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("CONFIG_PATH", path)
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "artifacts/model.txt", cfg.ModelPath)
	assert.Equal(t, "https://onemap.test", cfg.OneMap.BaseURL)
}

func TestLoad_ExplicitConfigPathMustExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	t.Setenv("CONFIG_PATH", path)
	setCredentials(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\n"), 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7070")
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port, "environment must win over the file")
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	// Empty CONFIG_PATH behaves as unset; no config.yaml exists in the
	// package directory, so everything comes from env and defaults.
	t.Setenv("CONFIG_PATH", "")
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://www.onemap.gov.sg", cfg.OneMap.BaseURL)
	assert.Equal(t, 2, cfg.OneMap.MaxRetries)
}

func TestLoad_MissingCredentials(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ONEMAP_EMAIL", "user@example.com")
	t.Setenv("ONEMAP_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ONEMAP_PASSWORD")
}
