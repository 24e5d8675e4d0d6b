package mock

import (
	"context"

	"github.com/fwojciec/pagelens"
)

var (
	_ pagelens.Completer    = (*Completer)(nil)
	_ pagelens.TokenCounter = (*TokenCounter)(nil)
)

// Completer is a mock implementation of pagelens.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req pagelens.CompletionRequest) (string, error)
}

func (c *Completer) Complete(ctx context.Context, req pagelens.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}

// TokenCounter is a mock implementation of pagelens.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (t *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return t.CountTokensFn(ctx, text)
}
