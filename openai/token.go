package openai

import (
	"context"
	"sync"

	"github.com/fwojciec/pagelens"
	"github.com/pkoukk/tiktoken-go"
)

// Ensure TokenCounter implements pagelens.TokenCounter at compile time.
var _ pagelens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens with the tiktoken encoding of a model. The
// encoding is loaded on first use.
type TokenCounter struct {
	model string

	once sync.Once
	tkm  *tiktoken.Tiktoken
	err  error
}

// NewTokenCounter creates a TokenCounter for model. Unknown models use the
// cl100k_base encoding.
func NewTokenCounter(model string) *TokenCounter {
	return &TokenCounter{model: model}
}

// CountTokens returns the number of tokens in text.
func (t *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	t.once.Do(func() {
		t.tkm, t.err = tiktoken.EncodingForModel(t.model)
		if t.err != nil {
			t.tkm, t.err = tiktoken.GetEncoding("cl100k_base")
		}
	})
	if t.err != nil {
		return 0, pagelens.WrapError(pagelens.EINTERNAL, t.err, "load tokenizer for %s", t.model)
	}
	return len(t.tkm.Encode(text, nil, nil)), nil
}
