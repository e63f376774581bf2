package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/faturai/faturai/internal/common"
	"github.com/faturai/faturai/internal/institution"
	"github.com/faturai/faturai/internal/model"
)

// geminiProvider is the second structured-output backend, speaking the
// Gemini API through the official SDK.
type geminiProvider struct {
	logger      *slog.Logger
	apiKey      string
	modelName   string
	temperature float64
	maxTokens   int
	retryOpts   common.RetryOptions
}

// NewGeminiProvider creates the Gemini backend.
func NewGeminiProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	adj := adjustmentFor("gemini")
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = adj.temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = adj.maxTokens
	}

	return &geminiProvider{
		logger:      logger,
		apiKey:      cfg.APIKey,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
		retryOpts:   retryOptions(cfg),
	}, nil
}

// Name implements Provider.
func (p *geminiProvider) Name() string {
	return "gemini"
}

// ExtractTransactions implements Provider.
func (p *geminiProvider) ExtractTransactions(ctx context.Context, text string, code institution.Code) (*model.ExtractionResult, error) {
	prompt := BuildPrompt(p.Name(), code)

	var result *model.ExtractionResult

	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		content, err := p.generate(callCtx, prompt, text)
		if err != nil {
			p.logger.Warn("gemini extraction attempt failed",
				"institution", code,
				"error", err)
			return &common.RetryableError{Err: err, Retryable: true}
		}

		wire, err := decodeExtraction(content)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}

		result, err = buildResult(wire, p.Name(), p.logger)
		return err
	}, p.retryOpts)

	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", common.ErrProvider, err)
	}

	p.logger.Info("gemini extraction complete",
		"institution", code,
		"transactions", len(result.Transactions),
		"invoice_total", result.InvoiceTotal)

	return result, nil
}

// generate performs one GenerateContent call with the request context, so
// cancellation and the per-call timeout propagate into the SDK.
func (p *geminiProvider) generate(ctx context.Context, prompt, text string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{Text: text},
			},
		},
	}

	temperature := float32(p.temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(p.maxTokens),
	}

	resp, err := client.Models.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	content := resp.Text()
	if content == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return content, nil
}
