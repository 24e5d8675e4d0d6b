package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/pagelens"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ pagelens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts prompt tokens locally. The tokenizer is loaded on first
// use; models the local tokenizer does not know are counted with the
// DefaultModel vocabulary.
type TokenCounter struct {
	model string

	once sync.Once
	tok  *tokenizer.LocalTokenizer
	err  error
}

// NewTokenCounter creates a TokenCounter for model. An empty model selects
// DefaultModel.
func NewTokenCounter(model string) *TokenCounter {
	if model == "" {
		model = DefaultModel
	}
	return &TokenCounter{model: model}
}

// CountTokens counts the tokens text occupies as a single user turn.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	tc.once.Do(tc.load)
	if tc.err != nil {
		return 0, pagelens.WrapError(pagelens.EINTERNAL, tc.err, "load tokenizer for %s", tc.model)
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, pagelens.WrapError(pagelens.EINTERNAL, err, "count tokens")
	}
	return int(result.TotalTokens), nil
}

func (tc *TokenCounter) load() {
	tc.tok, tc.err = tokenizer.NewLocalTokenizer(tc.model)
	if tc.err != nil && tc.model != DefaultModel {
		tc.tok, tc.err = tokenizer.NewLocalTokenizer(DefaultModel)
	}
}
