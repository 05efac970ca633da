package llm

import "fmt"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskIntake TaskType = "intake"
	TaskDraft  TaskType = "draft"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Model       string  `env:"MODEL"` // overrides LLMConfig.Model if set
	Temperature float64 `env:"TEMPERATURE"`
	MaxTokens   int     `env:"MAX_TOKENS"` // 0 leaves the limit to the server
	TimeoutMs   int     `env:"TIMEOUT_MS"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	APIKey    string `env:"API_KEY"`
	BaseURL   string `env:"BASE_URL"`
	Model     string `env:"MODEL"`
	TimeoutMs int    `env:"TIMEOUT_MS"`
	LogCalls  bool   `env:"LOG_CALLS"`

	Intake TaskConfig `envPrefix:"INTAKE_"`
	Draft  TaskConfig `envPrefix:"DRAFT_"`
}

// DefaultConfig returns an LLMConfig with the models and temperatures the
// assistant was tuned for. The API key is always empty.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
		TimeoutMs: 60000,
		Intake:    TaskConfig{Model: "gpt-4o-mini", Temperature: 0.7},
		Draft:     TaskConfig{Model: "gpt-4o-2024-08-06", Temperature: 0.5},
	}
}

// Task returns the parameters for the given task type.
func (c LLMConfig) Task(task TaskType) TaskConfig {
	switch task {
	case TaskIntake:
		return c.Intake
	case TaskDraft:
		return c.Draft
	default:
		return TaskConfig{}
	}
}

// TaskModel returns the model identifier used for a task.
func (c LLMConfig) TaskModel(task TaskType) string {
	if m := c.Task(task).Model; m != "" {
		return m
	}
	return c.Model
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc := c.Task(task); tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// HasCredential reports whether an API key is configured.
func (c LLMConfig) HasCredential() bool {
	return c.APIKey != ""
}

// Validate checks parameter ranges.
func (c LLMConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("llm base url is required")
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %d", c.TimeoutMs)
	}
	for _, task := range []TaskType{TaskIntake, TaskDraft} {
		tc := c.Task(task)
		if tc.Temperature < 0 || tc.Temperature > 2 {
			return fmt.Errorf("%s temperature must be in [0,2], got %g", task, tc.Temperature)
		}
		if tc.MaxTokens < 0 {
			return fmt.Errorf("%s max tokens must not be negative", task)
		}
	}
	return nil
}
