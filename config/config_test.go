package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, float32(0.2), cfg.OpenAI.Temperature)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, "en", cfg.Translate.TargetLang)
	assert.Equal(t, 50, cfg.Translate.BatchSize)
	assert.Equal(t, 3, cfg.Translate.MaxPasses)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10*time.Second, cfg.Browser.Delay)
	assert.Equal(t, 60*time.Second, cfg.Browser.Timeout)
}

func TestLoad_FromFile(t *testing.T) {
	content := `{
		"server": {"addr": ":9090", "log_level": "debug"},
		"openai": {"model": "gpt-4o"},
		"redis": {"addr": "localhost:6379", "db": 2},
		"translate": {"target_lang": "es", "batch_size": 25},
		"browser": {"headless": false, "delay": "5s", "timeout": "90s"}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "es", cfg.Translate.TargetLang)
	assert.Equal(t, 25, cfg.Translate.BatchSize)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser.Delay)
	assert.Equal(t, 90*time.Second, cfg.Browser.Timeout)

	// Fields the file leaves out keep their defaults.
	assert.Equal(t, 3, cfg.Translate.MaxPasses)
	assert.Equal(t, float32(0.2), cfg.OpenAI.Temperature)
}

func TestLoad_PartialFileKeepsBoolDefaults(t *testing.T) {
	// A file with no browser section must not flip headless to false.
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server": {"addr": ":1234"}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"browser": {"delay": "soon"}}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TEMPERATURE", "0.5")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TARGET_LANG", "fr")
	t.Setenv("TRANSLATE_BATCH_SIZE", "10")
	t.Setenv("TRANSLATE_MAX_PASSES", "5")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("BROWSER_USER_DATA_DIR", "/tmp/profile")
	t.Setenv("BROWSER_DELAY", "2s")
	t.Setenv("BROWSER_TIMEOUT", "45s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, float32(0.5), cfg.OpenAI.Temperature)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "fr", cfg.Translate.TargetLang)
	assert.Equal(t, 10, cfg.Translate.BatchSize)
	assert.Equal(t, 5, cfg.Translate.MaxPasses)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/profile", cfg.Browser.UserDataDir)
	assert.Equal(t, 2*time.Second, cfg.Browser.Delay)
	assert.Equal(t, 45*time.Second, cfg.Browser.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server": {"addr": ":9090"}}`), 0644))

	t.Setenv("SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr, "environment beats the file")
}

func TestLoadOrDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	cfg := LoadOrDefault(path)
	require.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestBrowserConfig_MarshalJSON(t *testing.T) {
	cfg := BrowserConfig{Headless: true, Delay: 5 * time.Second, Timeout: time.Minute}

	data, err := cfg.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"delay":"5s"`)
	assert.Contains(t, string(data), `"timeout":"1m0s"`)
}
