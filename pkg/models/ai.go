package models

import (
	"context"
	"errors"
)

// Sentinel errors shared by every Provider implementation. They live next to
// the interface so backends and their callers never depend on each other.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrCompletionTimeout   = errors.New("ai completion timeout")
	ErrEmptyCompletion     = errors.New("ai provider returned empty completion")
)

// Provider is the interface every text-completion backend must implement.
// Never call a specific backend directly — always inject this interface.
type Provider interface {
	// Complete sends a prompt and returns the raw completion text.
	// One round trip, no streaming; callers bound it with a context timeout.
	Complete(ctx context.Context, prompt string) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}
