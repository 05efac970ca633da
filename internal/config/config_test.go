package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PRDCHAT_LLM_API_KEY", "OPENAI_API_KEY", "PRDCHAT_LLM_INTAKE_MODEL",
		"PRDCHAT_LLM_DRAFT_TEMPERATURE", "PRDCHAT_MERGE_COLLECTED", "PRDCHAT_SESSION_TTL",
		"PRDCHAT_LOG_LEVEL", "PRDCHAT_LLM_TIMEOUT_MS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.MergeCollected)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Intake.Model)
	assert.Equal(t, 0.5, cfg.LLM.Draft.Temperature)
	assert.Equal(t, 60000, cfg.LLM.TimeoutMs)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRDCHAT_LLM_API_KEY", "sk-prd")
	t.Setenv("PRDCHAT_LLM_INTAKE_MODEL", "gpt-4o")
	t.Setenv("PRDCHAT_LLM_DRAFT_TEMPERATURE", "0.2")
	t.Setenv("PRDCHAT_MERGE_COLLECTED", "true")
	t.Setenv("PRDCHAT_SESSION_TTL", "15m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sk-prd", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Intake.Model)
	assert.Equal(t, 0.2, cfg.LLM.Draft.Temperature)
	assert.True(t, cfg.MergeCollected)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
}

func TestLoad_DotenvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRDCHAT_LLM_API_KEY=sk-dotenv\nPRDCHAT_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PRDCHAT_LLM_API_KEY")
		os.Unsetenv("PRDCHAT_LOG_LEVEL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", cfg.LLM.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRDCHAT_LOG_LEVEL", "loud")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "log level")

	t.Setenv("PRDCHAT_LOG_LEVEL", "info")
	t.Setenv("PRDCHAT_LLM_TIMEOUT_MS", "0")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "timeout")
}

func TestBindFlags_OverridesLoadedValues(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "sk-env"

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, cfg)
	require.NoError(t, fs.Parse([]string{"--api-key", "sk-flag", "--merge", "--model", "gpt-4o"}))

	assert.Equal(t, "sk-flag", cfg.LLM.APIKey)
	assert.True(t, cfg.MergeCollected)
	assert.Equal(t, "gpt-4o", cfg.LLM.Intake.Model)
	assert.Equal(t, "gpt-4o-2024-08-06", cfg.LLM.Draft.Model)
}

func TestBindFlags_UnsetFlagsKeepValues(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "sk-env"

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, cfg)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
}
