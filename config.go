package pagelens

import "time"

// Configuration defaults.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultDelay       = 1 * time.Second
	DefaultModel       = "gpt-4"
	DefaultOutputDir   = "data/processed"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
)

// Provider names a completion-service backend.
type Provider string

// Supported completion providers.
const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Config holds process-wide settings. It is built once at startup and passed
// by value into the constructors of the components that need it.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	Delay      time.Duration

	Provider    Provider
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64

	OutputDir string
	UserAgent string
	Proxy     string // optional proxy URL for outgoing fetches
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		Delay:       DefaultDelay,
		Provider:    ProviderOpenAI,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		OutputDir:   DefaultOutputDir,
		UserAgent:   DefaultUserAgent,
	}
}

// Validate returns an error if the config contains invalid fields.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return Errorf(EINVALID, "timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return Errorf(EINVALID, "max retries cannot be negative")
	}
	if c.Delay < 0 {
		return Errorf(EINVALID, "delay cannot be negative")
	}
	if c.MaxTokens < 0 {
		return Errorf(EINVALID, "max tokens cannot be negative")
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return Errorf(EINVALID, "unknown provider %q", c.Provider)
	}
	return nil
}

// RetryPolicy returns the fetch retry policy derived from the config.
func (c Config) RetryPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.MaxAttempts = c.MaxRetries
	return p
}
