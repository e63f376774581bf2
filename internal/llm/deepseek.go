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

const defaultDeepSeekBaseURL = "https://api.deepseek.com/v1/chat/completions"

// deepSeekProvider is the free-text-tolerant backend. It asks for JSON but
// the model drifts on long invoices, so parsing degrades gracefully: strict
// JSON, then the outermost brace window, then a line grammar.
type deepSeekProvider struct {
	httpClient  *http.Client
	logger      *slog.Logger
	apiKey      string
	modelName   string
	baseURL     string
	temperature float64
	maxTokens   int
	retryOpts   common.RetryOptions
}

// NewDeepSeekProvider creates the DeepSeek backend.
func NewDeepSeekProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: DeepSeek API key is required", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "deepseek-chat"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}

	adj := adjustmentFor("deepseek")
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = adj.temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = adj.maxTokens
	}

	return &deepSeekProvider{
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
func (p *deepSeekProvider) Name() string {
	return "deepseek"
}

// ExtractTransactions implements Provider.
func (p *deepSeekProvider) ExtractTransactions(ctx context.Context, text string, code institution.Code) (*model.ExtractionResult, error) {
	prompt := BuildPrompt(p.Name(), code)

	var result *model.ExtractionResult

	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		content, err := doChatCompletion(callCtx, p.httpClient, p.baseURL, p.apiKey, p.modelName,
			prompt, text, p.temperature, p.maxTokens)
		if err != nil {
			p.logger.Warn("deepseek extraction attempt failed",
				"institution", code,
				"retryable", common.IsRetryable(err),
				"error", err)
			return err
		}

		wire, decodeErr := decodeExtraction(content)
		if decodeErr != nil {
			p.logger.Warn("deepseek reply is not JSON, using line grammar",
				"institution", code,
				"error", decodeErr)
			wire = fallbackParse(content)
		}

		result, err = buildResult(wire, p.Name(), p.logger)
		return err
	}, p.retryOpts)

	if err != nil {
		return nil, fmt.Errorf("%w: deepseek: %v", common.ErrProvider, err)
	}

	p.logger.Info("deepseek extraction complete",
		"institution", code,
		"transactions", len(result.Transactions),
		"invoice_total", result.InvoiceTotal)

	return result, nil
}
