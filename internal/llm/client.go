// Package llm wraps the external Gemini text-generation backends behind a
// single Client interface. Two implementations exist: a CLI subprocess
// client and a direct API client. Callers never depend on which one is
// active; the selection happens once at configuration time.
package llm

import "context"

// Client is a synchronous text-generation backend.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend for logging.
	Name() string
}
