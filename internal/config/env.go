package config

import "os"

// Environment variables holding credentials and endpoint overrides.
const (
	EnvOpenAIKey        = "OPENAI_API_KEY"
	EnvOpenAIBaseURL    = "OPENAI_BASE_URL"
	EnvAnthropicKey     = "ANTHROPIC_API_KEY"
	EnvAnthropicBaseURL = "ANTHROPIC_BASE_URL"
	EnvGeminiKey        = "GEMINI_API_KEY"
	EnvGeminiBaseURL    = "GEMINI_BASE_URL"
	EnvTavilyKey        = "TAVILY_API_KEY"
)

// Credentials are read from the environment rather than flags so they never
// appear in shell history or process listings.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// LLMCredentials returns the API key and optional base URL for provider.
func LLMCredentials(provider string) Credentials {
	switch provider {
	case ProviderAnthropic:
		return Credentials{APIKey: os.Getenv(EnvAnthropicKey), BaseURL: os.Getenv(EnvAnthropicBaseURL)}
	case ProviderGemini:
		return Credentials{APIKey: os.Getenv(EnvGeminiKey), BaseURL: os.Getenv(EnvGeminiBaseURL)}
	default:
		return Credentials{APIKey: os.Getenv(EnvOpenAIKey), BaseURL: os.Getenv(EnvOpenAIBaseURL)}
	}
}

// TavilyKey returns the Tavily API key, empty when unset.
func TavilyKey() string {
	return os.Getenv(EnvTavilyKey)
}
