package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/faturai/faturai/internal/common"
	"github.com/faturai/faturai/internal/institution"
	"github.com/faturai/faturai/internal/model"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

// openAIProvider is the structured-output backend: it asks the model for a
// strict JSON object and validates every field on the way in.
type openAIProvider struct {
	httpClient  *http.Client
	logger      *slog.Logger
	apiKey      string
	modelName   string
	baseURL     string
	temperature float64
	maxTokens   int
	retryOpts   common.RetryOptions
}

// NewOpenAIProvider creates the OpenAI backend.
func NewOpenAIProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	adj := adjustmentFor("openai")
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = adj.temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = adj.maxTokens
	}

	return &openAIProvider{
		httpClient:  newHTTPClient(),
		logger:      logger,
		apiKey:      cfg.APIKey,
		modelName:   modelName,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		retryOpts:   retryOptions(cfg),
	}, nil
}

// Name implements Provider.
func (p *openAIProvider) Name() string {
	return "openai"
}

// ExtractTransactions implements Provider.
func (p *openAIProvider) ExtractTransactions(ctx context.Context, text string, code institution.Code) (*model.ExtractionResult, error) {
	prompt := BuildPrompt(p.Name(), code)

	var result *model.ExtractionResult

	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		content, err := doChatCompletion(callCtx, p.httpClient, p.baseURL, p.apiKey, p.modelName,
			prompt, text, p.temperature, p.maxTokens)
		if err != nil {
			p.logger.Warn("openai extraction attempt failed",
				"institution", code,
				"retryable", common.IsRetryable(err),
				"error", err)
			return err
		}

		wire, err := decodeExtraction(content)
		if err != nil {
			// A garbled reply may come back clean on the next attempt.
			return &common.RetryableError{Err: err, Retryable: true}
		}

		result, err = buildResult(wire, p.Name(), p.logger)
		return err
	}, p.retryOpts)

	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", common.ErrProvider, err)
	}

	p.logger.Info("openai extraction complete",
		"institution", code,
		"transactions", len(result.Transactions),
		"invoice_total", result.InvoiceTotal)

	return result, nil
}

func retryOptions(cfg Config) common.RetryOptions {
	opts := common.DefaultRetryOptions()
	if cfg.MaxRetries > 0 {
		opts.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		opts.InitialDelay = cfg.RetryDelay
	}
	return opts
}
