// Package gemini implements pagelens.Completer and pagelens.TokenCounter with
// Google Gemini.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/fwojciec/pagelens"
	"google.golang.org/genai"
)

// DefaultModel is used when no Gemini model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Completer implements pagelens.Completer at compile time.
var _ pagelens.Completer = (*Completer)(nil)

// Completer implements pagelens.Completer using Google Gemini.
type Completer struct {
	client *genai.Client
	model  string
}

// NewCompleter creates a new Completer. An empty model selects DefaultModel.
func NewCompleter(client *genai.Client, model string) *Completer {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Completer{client: client, model: model}
}

// NewClient creates a Gemini API client. baseURL may be empty.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, pagelens.Errorf(pagelens.EINVALID, "Gemini API key is required")
	}
	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, pagelens.WrapError(pagelens.EINVALID, err, "create Gemini client")
	}
	return client, nil
}

// Complete sends req as a single-turn request and returns the response text.
func (c *Completer) Complete(ctx context.Context, req pagelens.CompletionRequest) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: req.Prompt}},
		}},
		BuildConfig(req),
	)
	if err != nil {
		return "", analysisError(err)
	}
	if result == nil {
		return "", pagelens.Errorf(pagelens.EANALYSIS, "gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for req.
func BuildConfig(req pagelens.CompletionRequest) *genai.GenerateContentConfig {
	temp := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	return config
}

func analysisError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &pagelens.Error{
			Code:    pagelens.EANALYSIS,
			Message: "Gemini API error: " + apiErr.Message,
			Status:  apiErr.Code,
			Err:     err,
		}
	}
	return pagelens.WrapError(pagelens.EANALYSIS, err, "Gemini request failed")
}
