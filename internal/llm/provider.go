// Package llm contains the AI provider integrations that turn normalized
// invoice text into structured transactions.
package llm

import (
	"context"
	"time"

	"github.com/faturai/faturai/internal/institution"
	"github.com/faturai/faturai/internal/model"
)

// requestTimeout bounds every remote provider call.
const requestTimeout = 60 * time.Second

// Provider is implemented by each LLM backend. Implementations must be safe
// for concurrent use; one instance serves all requests.
type Provider interface {
	// Name returns the stable provider identifier (e.g. "openai").
	Name() string

	// ExtractTransactions sends the normalized text to the backend and
	// parses the reply. It returns common.ErrProvider (wrapped) when retries
	// are exhausted, the reply is unparseable, or no transaction survives
	// schema validation.
	ExtractTransactions(ctx context.Context, text string, code institution.Code) (*model.ExtractionResult, error)
}

// Config holds the per-provider settings read from configuration.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	RetryDelay  time.Duration
}
