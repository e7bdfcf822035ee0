// Package config loads runtime settings from .env, an optional YAML file and
// the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultElevenLabsURL = "https://api.elevenlabs.io/v1"
	DefaultModel         = "gpt-4.1"
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultTemperature   = 0.7
	DefaultResultsDir    = "records"
	DefaultRubricPrompt  = "qa_prompt.md"
	defaultConfigFile    = "config.yaml"
)

type ElevenLabs struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

type LLM struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	Temperature  float64       `yaml:"temperature"`
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model"`
	Mock         bool          `yaml:"mock"`
	Timeout      time.Duration `yaml:"timeout"`
}

type STT struct {
	LanguageCode string `yaml:"language_code"`
	Punctuation  bool   `yaml:"punctuation"`
}

type Paths struct {
	RubricPrompt string `yaml:"rubric_prompt"`
	ResultsDir   string `yaml:"results_dir"`
}

// Audit holds the thresholds of the timing-based QA checks.
type Audit struct {
	MaxGreetingSecs float64 `yaml:"max_greeting_secs"`
	MinHoldSecs     float64 `yaml:"min_hold_secs"`
	MaxHoldSecs     float64 `yaml:"max_hold_secs"`
}

type Config struct {
	Environment string     `yaml:"environment"`
	Port        string     `yaml:"port"`
	ElevenLabs  ElevenLabs `yaml:"elevenlabs"`
	LLM         LLM        `yaml:"llm"`
	STT         STT        `yaml:"stt"`
	Paths       Paths      `yaml:"paths"`
	Audit       Audit      `yaml:"audit"`
}

func Defaults() Config {
	return Config{
		Environment: "local",
		Port:        "8080",
		ElevenLabs:  ElevenLabs{BaseURL: DefaultElevenLabsURL},
		LLM: LLM{
			Provider:    "openai",
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			GeminiModel: DefaultGeminiModel,
		},
		STT: STT{LanguageCode: "id-ID", Punctuation: true},
		Paths: Paths{
			RubricPrompt: DefaultRubricPrompt,
			ResultsDir:   DefaultResultsDir,
		},
		Audit: Audit{MaxGreetingSecs: 3, MinHoldSecs: 10, MaxHoldSecs: 120},
	}
}

// Load reads .env (if any), then QA_CONFIG or ./config.yaml (if any), then
// environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load() // loads .env

	cfg := Defaults()

	path, explicit := os.LookupEnv("QA_CONFIG")
	if !explicit {
		path = defaultConfigFile
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.Port, "PORT")

	setString(&cfg.ElevenLabs.APIKey, "XI_API_KEY")
	setString(&cfg.ElevenLabs.APIKey, "ELEVENLABS_API_KEY")
	setString(&cfg.ElevenLabs.BaseURL, "ELEVENLABS_BASE_URL")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.LLM.GeminiModel, "GEMINI_MODEL")

	setString(&cfg.STT.LanguageCode, "STT_LANGUAGE_CODE")

	setString(&cfg.Paths.RubricPrompt, "QA_PROMPT_PATH")
	setString(&cfg.Paths.ResultsDir, "RESULTS_DIR")

	return errors.Join(
		setInt(&cfg.ElevenLabs.MaxRetries, "ELEVENLABS_MAX_RETRIES"),
		setDuration(&cfg.ElevenLabs.Timeout, "ELEVENLABS_TIMEOUT"),
		setFloat(&cfg.LLM.Temperature, "LLM_TEMPERATURE"),
		setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT"),
		setBool(&cfg.LLM.Mock, "USE_MOCK_LLM"),
		setBool(&cfg.STT.Punctuation, "STT_PUNCTUATION"),
		setFloat(&cfg.Audit.MaxGreetingSecs, "AUDIT_MAX_GREETING_SECS"),
		setFloat(&cfg.Audit.MinHoldSecs, "AUDIT_MIN_HOLD_SECS"),
		setFloat(&cfg.Audit.MaxHoldSecs, "AUDIT_MAX_HOLD_SECS"),
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
