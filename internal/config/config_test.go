package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"QA_CONFIG", "ENVIRONMENT", "PORT",
	"XI_API_KEY", "ELEVENLABS_API_KEY", "ELEVENLABS_BASE_URL",
	"ELEVENLABS_MAX_RETRIES", "ELEVENLABS_TIMEOUT",
	"LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_TIMEOUT",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "GEMINI_API_KEY", "GEMINI_MODEL",
	"USE_MOCK_LLM", "STT_LANGUAGE_CODE", "STT_PUNCTUATION",
	"QA_PROMPT_PATH", "RESULTS_DIR",
	"AUDIT_MAX_GREETING_SECS", "AUDIT_MIN_HOLD_SECS", "AUDIT_MAX_HOLD_SECS",
}

// clearEnv unsets every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), *cfg)
	require.Equal(t, "records", cfg.Paths.ResultsDir)
	require.Equal(t, "gpt-4.1", cfg.LLM.Model)
	require.Equal(t, 0.7, cfg.LLM.Temperature)
	require.Equal(t, 0, cfg.ElevenLabs.MaxRetries)
	require.Zero(t, cfg.ElevenLabs.Timeout)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("QA_CONFIG", writeFile(t, `
environment: production
elevenlabs:
  api_key: file-key
  max_retries: 2
  timeout: 30s
llm:
  provider: gemini
  temperature: 0.2
paths:
  results_dir: out/results
audit:
  max_hold_secs: 60
`))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "file-key", cfg.ElevenLabs.APIKey)
	require.Equal(t, 2, cfg.ElevenLabs.MaxRetries)
	require.Equal(t, 30*time.Second, cfg.ElevenLabs.Timeout)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, 0.2, cfg.LLM.Temperature)
	require.Equal(t, "out/results", cfg.Paths.ResultsDir)
	require.Equal(t, 60.0, cfg.Audit.MaxHoldSecs)
	// untouched keys keep their defaults
	require.Equal(t, DefaultElevenLabsURL, cfg.ElevenLabs.BaseURL)
	require.Equal(t, 3.0, cfg.Audit.MaxGreetingSecs)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("QA_CONFIG", writeFile(t, "elevenlabs:\n  api_key: file-key\n"))
	t.Setenv("ELEVENLABS_API_KEY", "env-key")
	t.Setenv("USE_MOCK_LLM", "true")
	t.Setenv("LLM_TEMPERATURE", "0")
	t.Setenv("RESULTS_DIR", "/tmp/qa")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.ElevenLabs.APIKey)
	require.True(t, cfg.LLM.Mock)
	require.Equal(t, 0.0, cfg.LLM.Temperature)
	require.Equal(t, "/tmp/qa", cfg.Paths.ResultsDir)
}

func TestLoad_LegacyAPIKeyName(t *testing.T) {
	clearEnv(t)
	t.Setenv("XI_API_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "legacy", cfg.ElevenLabs.APIKey)

	t.Setenv("ELEVENLABS_API_KEY", "preferred")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "preferred", cfg.ElevenLabs.APIKey)
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("QA_CONFIG", writeFile(t, ""))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), *cfg)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QA_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QA_CONFIG", writeFile(t, "llm: [unterminated"))
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad env values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ELEVENLABS_MAX_RETRIES", "many")
		t.Setenv("LLM_TIMEOUT", "soon")
		_, err := Load()
		require.ErrorContains(t, err, "ELEVENLABS_MAX_RETRIES")
		require.ErrorContains(t, err, "LLM_TIMEOUT")
	})
}
