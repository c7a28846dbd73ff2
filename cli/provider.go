package cli

import (
	"log/slog"
	"time"

	"github.com/richinex/fleet/config"
	"github.com/richinex/fleet/llm"
)

// NewProvider builds the configured LLM provider, reading its API key from
// the environment.
func NewProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		BaseURL(settings.LLM.BaseURL).
		APIKey(apiKey)
}

// NewCompleter wraps provider with retries for transient failures. Each
// retry is logged at Warn.
func NewCompleter(provider llm.Provider, settings config.Settings, logger *slog.Logger) llm.Completer {
	retry := llm.DefaultRetryConfig()
	retry.MaxRetries = settings.LLM.MaxRetries

	return llm.NewRetryClient(llm.NewClient(provider), retry).
		OnRetry(func(err error, wait time.Duration) {
			logger.Warn("retrying model call", "provider", provider.Name(), "error", err, "wait", wait)
		})
}
