package llmwire

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/havenforge/agentcore/message"
)

// adapter is the internal contract every provider backend implements. It
// is deliberately unexported: the only way to obtain one is through
// NewDispatcher, which picks the right adapter for Config.Provider.
type adapter interface {
	generate(ctx context.Context, messages []message.Message, tools []ToolSpec) (*Response, error)
}

// Config selects and configures a provider adapter.
type Config struct {
	APIKey      string `validate:"required"`
	Provider    string `validate:"required"`
	APIBaseURL  string
	Model       string `validate:"required"`
	RetryConfig *RetryConfig
}

var configValidator = validator.New()

// Dispatcher is the thin factory spec.md §4.3 describes: it resolves a
// Config's provider tag to a concrete adapter and exposes read-only
// introspection plus a mutable OnRetry hook for observing retries.
type Dispatcher struct {
	provider    string
	apiBaseURL  string
	model       string
	retryConfig RetryConfig
	adapter     adapter

	// OnRetry, if set, is invoked before each retry delay is awaited.
	OnRetry OnRetryFunc
}

// NewDispatcher validates cfg and constructs the Dispatcher for its
// provider tag. An unrecognized provider fails with
// *UnsupportedProviderError.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if err := configValidator.Struct(cfg); err != nil {
		return nil, &ConfigurationError{SDKError: SDKError{Message: "invalid llmwire config", Cause: err}}
	}

	retryConfig := DefaultRetryConfig()
	if cfg.RetryConfig != nil {
		retryConfig = *cfg.RetryConfig
	}

	var a adapter
	switch cfg.Provider {
	case "anthropic":
		a = newAnthropicAdapter(cfg)
	case "openai":
		a = newOpenAIChatAdapter(cfg)
	case "openai-responses":
		a = newOpenAIResponsesAdapter(cfg)
	case "gemini":
		a = newGeminiAdapter(cfg)
	default:
		return nil, &UnsupportedProviderError{Provider: cfg.Provider}
	}

	return &Dispatcher{
		provider:    cfg.Provider,
		apiBaseURL:  cfg.APIBaseURL,
		model:       cfg.Model,
		retryConfig: retryConfig,
		adapter:     a,
	}, nil
}

// Provider returns the configured provider tag.
func (d *Dispatcher) Provider() string { return d.provider }

// APIBaseURL returns the configured base URL, empty if the adapter uses
// its SDK default.
func (d *Dispatcher) APIBaseURL() string { return d.apiBaseURL }

// Model returns the configured model ID.
func (d *Dispatcher) Model() string { return d.model }

// ContextWindowSize returns the built-in catalog's context window for the
// dispatcher's configured model, or fallback if the model is not in the
// catalog (a custom or newly-released model ID). Callers use this to seed
// agent.Options.TokenLimit with a sane default instead of hardcoding one.
func (d *Dispatcher) ContextWindowSize(fallback int) int {
	return defaultContextWindow(d.model, fallback)
}

// Generate calls the resolved adapter's generate method through the
// retry wrapper, so every adapter's network call is retried uniformly.
func (d *Dispatcher) Generate(ctx context.Context, messages []message.Message, tools []ToolSpec) (*Response, error) {
	return Retry(ctx, d.retryConfig, d.notifyRetry, func(ctx context.Context) (*Response, error) {
		return d.adapter.generate(ctx, messages, tools)
	})
}

func (d *Dispatcher) notifyRetry(err error, attempt int, delay time.Duration) {
	if d.OnRetry != nil {
		d.OnRetry(err, attempt, delay)
	}
}
