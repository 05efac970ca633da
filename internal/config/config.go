package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/alexanderramin/prdchat/internal/domain"
	"github.com/alexanderramin/prdchat/internal/llm"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "PRDCHAT_"

// Config holds the application configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL"`
	// LogFile receives JSON logs; empty means stderr for the server and
	// no logging for the terminal UI.
	LogFile string `env:"LOG_FILE"`

	ChecklistFile  string `env:"CHECKLIST_FILE"`
	MergeCollected bool   `env:"MERGE_COLLECTED"`

	ServerAddr string        `env:"SERVER_ADDR"`
	SessionTTL time.Duration `env:"SESSION_TTL"`

	LLM llm.LLMConfig `envPrefix:"LLM_"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		ServerAddr: ":8080",
		SessionTTL: time.Hour,
		LLM:        llm.DefaultConfig(),
	}
}

// Load reads the optional dotenv files (".env" when none are given), then
// overlays PRDCHAT_* variables on the defaults. A missing dotenv file is fine.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LLM.APIKey = domain.CoalesceStr(cfg.LLM.APIKey, os.Getenv("OPENAI_API_KEY"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return c.LLM.Validate()
}

// BindFlags registers command-line overrides for cfg on fs. Flag defaults
// are the values already loaded, so unset flags leave them unchanged.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.LLM.APIKey, "api-key", cfg.LLM.APIKey, "OpenAI API key (default from PRDCHAT_LLM_API_KEY or OPENAI_API_KEY)")
	fs.StringVar(&cfg.LLM.BaseURL, "base-url", cfg.LLM.BaseURL, "OpenAI-compatible API base URL")
	fs.StringVar(&cfg.LLM.Intake.Model, "model", cfg.LLM.Intake.Model, "model used for the intake interview")
	fs.StringVar(&cfg.LLM.Draft.Model, "draft-model", cfg.LLM.Draft.Model, "model used for PRD drafting")
	fs.BoolVar(&cfg.MergeCollected, "merge", cfg.MergeCollected, "merge collected data across turns instead of replacing it")
	fs.StringVar(&cfg.ChecklistFile, "checklist", cfg.ChecklistFile, "YAML file with the intake checklist items")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write JSON logs to this file")
}
