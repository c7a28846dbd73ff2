// Provider selection: the supported backends, their environment variables
// and default models, and construction of a configured Provider.

package llm

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

// ProviderType identifies a supported model backend.
type ProviderType int

const (
	ProviderOpenAI ProviderType = iota
	ProviderAnthropic
	ProviderDeepSeek
	ProviderGemini
)

// Default models per provider.
const (
	ModelOpenAIGPT52             = "gpt-5.2"
	ModelAnthropicClaudeSonnet45 = "claude-sonnet-4-5"
	ModelDeepSeekV32             = "deepseek-v3.2"
	ModelGeminiFlash3            = "gemini-3-flash"
)

type providerInfo struct {
	name         string
	aliases      []string
	keyEnv       string
	defaultModel string
}

var providers = [...]providerInfo{
	ProviderOpenAI:    {name: "openai", aliases: []string{"gpt"}, keyEnv: "OPENAI_API_KEY", defaultModel: ModelOpenAIGPT52},
	ProviderAnthropic: {name: "anthropic", aliases: []string{"claude"}, keyEnv: "ANTHROPIC_API_KEY", defaultModel: ModelAnthropicClaudeSonnet45},
	ProviderDeepSeek:  {name: "deepseek", keyEnv: "DEEPSEEK_API_KEY", defaultModel: ModelDeepSeekV32},
	ProviderGemini:    {name: "gemini", aliases: []string{"google"}, keyEnv: "GEMINI_API_KEY", defaultModel: ModelGeminiFlash3},
}

func (p ProviderType) info() (providerInfo, bool) {
	if p < 0 || int(p) >= len(providers) {
		return providerInfo{}, false
	}
	return providers[p], true
}

// ProviderTypes returns every supported provider, preferred first.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderAnthropic, ProviderOpenAI, ProviderDeepSeek, ProviderGemini}
}

// ProviderNames returns the canonical names of ProviderTypes.
func ProviderNames() []string {
	types := ProviderTypes()
	names := make([]string, len(types))
	for i, p := range types {
		names[i] = p.String()
	}
	return names
}

func (p ProviderType) String() string {
	if info, ok := p.info(); ok {
		return info.name
	}
	return "unknown"
}

// EnvVar returns the environment variable holding this provider's API key.
func (p ProviderType) EnvVar() string {
	info, _ := p.info()
	return info.keyEnv
}

// ModelEnvVar returns the environment variable that overrides this provider's model.
func (p ProviderType) ModelEnvVar() string {
	info, ok := p.info()
	if !ok {
		return ""
	}
	return strings.ToUpper(info.name) + "_MODEL"
}

// DefaultModel returns the model used when none is configured.
func (p ProviderType) DefaultModel() string {
	info, _ := p.info()
	return info.defaultModel
}

// ParseProviderType resolves a provider name or alias, ignoring case.
func ParseProviderType(s string) (ProviderType, error) {
	s = strings.ToLower(s)
	for _, p := range ProviderTypes() {
		info := providers[p]
		if s == info.name {
			return p, nil
		}
		for _, alias := range info.aliases {
			if s == alias {
				return p, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown provider %q (expected %s)", s, strings.Join(ProviderNames(), ", "))
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return &ProviderBuilder{providerType: p, model: model}
}

// ProviderBuilder collects provider options. Unset values fall back to the
// provider's default model, 4096 max tokens and temperature 0.7.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
	baseURL      string
}

// MaxTokens sets maximum tokens for responses.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets the sampling temperature.
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// BaseURL points the provider at another endpoint. Gemini ignores it.
func (b *ProviderBuilder) BaseURL(url string) *ProviderBuilder {
	b.baseURL = url
	return b
}

// APIKey builds the provider. SDK-level retries are disabled; RetryClient
// owns retrying.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}
	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	temperature := float32(0.7)
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.providerType {
	case ProviderAnthropic:
		opts := []option.RequestOption{option.WithMaxRetries(0)}
		if b.baseURL != "" {
			opts = append(opts, option.WithBaseURL(b.baseURL))
		}
		return NewAnthropicProvider(key, model, maxTokens, temperature, opts...), nil
	case ProviderOpenAI, ProviderDeepSeek:
		if b.baseURL != "" {
			config := openai.DefaultConfig(key)
			config.BaseURL = b.baseURL
			return NewOpenAICompatibleProvider(b.providerType.String(), config, model, maxTokens, temperature), nil
		}
		if b.providerType == ProviderDeepSeek {
			return NewDeepSeekProvider(key, model, maxTokens, temperature), nil
		}
		return NewOpenAIProvider(key, model, maxTokens, temperature), nil
	case ProviderGemini:
		return NewGeminiProvider(key, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}
