// Package config provides application settings layered from defaults,
// environment variables and command line flags.
//
// Settings are created via Load() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/richinex/fleet/agent"
	"github.com/richinex/fleet/llm"
)

// ErrUnknownProvider is returned for a provider name outside the supported set.
var ErrUnknownProvider = errors.New("unknown provider")

// Setting keys.
const (
	KeyProvider     = "provider"
	KeyModel        = "model"
	KeyMaxTokens    = "llm.max_tokens"
	KeyTemperature  = "llm.temperature"
	KeyMaxRetries   = "llm.max_retries"
	KeyBaseURL      = "llm.base_url"
	KeyMaxSteps     = "agent.max_steps"
	KeySystemPrompt = "agent.system_prompt"
	KeyLogLevel     = "log.level"
	KeyLogFile      = "log.file"
)

// Settings holds all application configuration.
type Settings struct {
	LLM   LLMConfig
	Agent AgentConfig
	Log   LogConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   uint32
	Temperature float64
	MaxRetries  uint
	BaseURL     string // empty uses the provider's endpoint
}

// AgentConfig holds agent execution configuration.
type AgentConfig struct {
	MaxSteps     int
	SystemPrompt string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
	File  string
}

var envBindings = map[string]string{
	KeyProvider:     "LLM_PROVIDER",
	KeyMaxTokens:    "LLM_MAX_TOKENS",
	KeyTemperature:  "LLM_TEMPERATURE",
	KeyMaxRetries:   "LLM_MAX_RETRIES",
	KeyBaseURL:      "LLM_BASE_URL",
	KeyMaxSteps:     "AGENT_MAX_STEPS",
	KeySystemPrompt: "AGENT_SYSTEM_PROMPT",
	KeyLogLevel:     "LOG_LEVEL",
	KeyLogFile:      "LOG_FILE",
}

// NewViper returns a viper instance with defaults and environment bindings.
// Flags are bound separately with BindFlags.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyProvider, "anthropic")
	v.SetDefault(KeyMaxTokens, 4096)
	v.SetDefault(KeyTemperature, 0.7)
	v.SetDefault(KeyMaxRetries, llm.DefaultRetryConfig().MaxRetries)
	v.SetDefault(KeyMaxSteps, agent.DefaultMaxSteps)
	v.SetDefault(KeySystemPrompt, agent.DefaultSystemPrompt)
	v.SetDefault(KeyLogLevel, "warn")

	for key, env := range envBindings {
		// BindEnv only fails without a key name.
		_ = v.BindEnv(key, env)
	}
	return v
}

// BindFlags binds command line flags to setting keys. Flags that are not
// present in the set are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyProvider:   "provider",
		KeyModel:      "model",
		KeyMaxRetries: "retries",
		KeyBaseURL:    "base-url",
		KeyMaxSteps:   "max-steps",
		KeyLogLevel:   "log-level",
		KeyLogFile:    "log-file",
	}
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load resolves settings from v.
// Returns an error if the provider is unknown or a value is invalid.
func Load(v *viper.Viper) (Settings, error) {
	providerType, err := parseProvider(v.GetString(KeyProvider))
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := cast.ToUint32E(v.Get(KeyMaxTokens))
	if err != nil {
		return Settings{}, invalid(KeyMaxTokens, v, err)
	}

	temperature, err := cast.ToFloat64E(v.Get(KeyTemperature))
	if err != nil {
		return Settings{}, invalid(KeyTemperature, v, err)
	}
	if temperature < 0 {
		return Settings{}, fmt.Errorf("invalid value for %s: %v: must not be negative", KeyTemperature, temperature)
	}

	maxRetries, err := cast.ToUintE(v.Get(KeyMaxRetries))
	if err != nil {
		return Settings{}, invalid(KeyMaxRetries, v, err)
	}

	maxSteps, err := cast.ToIntE(v.Get(KeyMaxSteps))
	if err != nil {
		return Settings{}, invalid(KeyMaxSteps, v, err)
	}
	if maxSteps < 1 {
		return Settings{}, fmt.Errorf("invalid value for %s: %d: must be at least 1", KeyMaxSteps, maxSteps)
	}

	// Get model from flag, then provider environment, then default
	model := v.GetString(KeyModel)
	if model == "" {
		model = os.Getenv(providerType.ModelEnvVar())
	}
	if model == "" {
		model = providerType.DefaultModel()
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    providerType.String(),
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			MaxRetries:  maxRetries,
			BaseURL:     strings.TrimSpace(v.GetString(KeyBaseURL)),
		},
		Agent: AgentConfig{
			MaxSteps:     maxSteps,
			SystemPrompt: v.GetString(KeySystemPrompt),
		},
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  v.GetString(KeyLogFile),
		},
	}, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	providerType, err := parseProvider(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(providerType.EnvVar())
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", providerType.EnvVar())
	}
	return key, nil
}

func parseProvider(name string) (llm.ProviderType, error) {
	providerType, err := llm.ParseProviderType(strings.TrimSpace(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %q (expected %s)", ErrUnknownProvider, name, strings.Join(llm.ProviderNames(), ", "))
	}
	return providerType, nil
}

func invalid(key string, v *viper.Viper, err error) error {
	return fmt.Errorf("invalid value for %s: %q: %w", key, cast.ToString(v.Get(key)), err)
}
