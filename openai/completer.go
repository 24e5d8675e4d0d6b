// Package openai implements pagelens.Completer and pagelens.TokenCounter for
// OpenAI chat models and OpenAI-compatible endpoints.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/fwojciec/pagelens"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Ensure Completer implements pagelens.Completer at compile time.
var _ pagelens.Completer = (*Completer)(nil)

// Completer sends chat completion requests. The SDK's automatic retries are
// disabled: a failed call is reported to the caller as is.
type Completer struct {
	client openai.Client
	model  string
}

// Option configures a Completer.
type Option func(*config)

type config struct {
	baseURL string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// NewCompleter creates a Completer for model. It returns EINVALID when the
// API key or model is empty.
func NewCompleter(apiKey, model string, opts ...Option) (*Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "OpenAI API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "model is required")
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Completer{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

// Complete returns the text of the first choice.
func (c *Completer) Complete(ctx context.Context, req pagelens.CompletionRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", analysisError(err)
	}
	if len(resp.Choices) == 0 {
		return "", pagelens.Errorf(pagelens.EANALYSIS, "OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// analysisError converts an SDK error into EANALYSIS carrying the provider's
// message and HTTP status.
func analysisError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = err.Error()
		}
		return &pagelens.Error{
			Code:    pagelens.EANALYSIS,
			Message: "OpenAI API error: " + msg,
			Status:  apiErr.StatusCode,
			Err:     err,
		}
	}
	return pagelens.WrapError(pagelens.EANALYSIS, err, "OpenAI request failed")
}
