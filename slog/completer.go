// Package slog provides logging decorators for pagelens services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagelens"
)

// Ensure LoggingCompleter implements pagelens.Completer.
var _ pagelens.Completer = (*LoggingCompleter)(nil)

// LoggingCompleter wraps a Completer with logging of each call.
type LoggingCompleter struct {
	next   pagelens.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next pagelens.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs prompt and response
// sizes. Prompt text is never logged.
func (c *LoggingCompleter) Complete(ctx context.Context, req pagelens.CompletionRequest) (out string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"prompt_chars", len(req.Prompt),
			"response_chars", len(out),
			"max_tokens", req.MaxTokens,
			"duration", time.Since(begin),
		}
		if err != nil {
			c.logger.Error("completion", append(attrs, "err", err)...)
			return
		}
		c.logger.Info("completion", attrs...)
	}(time.Now())
	return c.next.Complete(ctx, req)
}
