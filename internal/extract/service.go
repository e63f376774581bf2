// Package extract composes text extraction, institution detection,
// normalization, the AI provider call and validation into one
// request-response cycle.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/faturai/faturai/internal/institution"
	"github.com/faturai/faturai/internal/model"
	"github.com/faturai/faturai/internal/normalize"
	"github.com/faturai/faturai/internal/validate"
)

// Service orchestrates one invoice extraction per call. It holds no mutable
// state, so a single instance serves concurrent requests.
type Service struct {
	textExtractor TextExtractor
	providers     ProviderResolver
	logger        *slog.Logger
}

// NewService wires the orchestrator.
func NewService(textExtractor TextExtractor, providers ProviderResolver, logger *slog.Logger) *Service {
	return &Service{
		textExtractor: textExtractor,
		providers:     providers,
		logger:        logger,
	}
}

// ProcessInvoice runs the full pipeline over one PDF. providerName may be
// empty to use the configured default. Validation findings do not fail the
// call; they ride along in the response's errors list. Text-extraction,
// unknown-provider and provider failures propagate with their sentinel
// errors intact so the boundary can map them to statuses.
func (s *Service) ProcessInvoice(ctx context.Context, pdfBytes []byte, providerName string) (*model.InvoiceResponse, error) {
	start := time.Now()

	// Resolve the provider first: a typo in the name should fail before we
	// spend time on OCR.
	provider, err := s.providers.Resolve(providerName)
	if err != nil {
		return nil, err
	}

	text, method, err := s.textExtractor.ExtractText(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}

	code := institution.Detect(text)
	normalized := normalize.Normalize(text, code)

	s.logger.Info("invoice text prepared",
		"institution", code,
		"extraction_method", method,
		"raw_chars", len(text),
		"normalized_chars", len(normalized))

	result, err := provider.ExtractTransactions(ctx, normalized, code)
	if err != nil {
		return nil, fmt.Errorf("institution %s: %w", code, err)
	}

	outcome := validate.Validate(result.Transactions, result.InvoiceTotal, result.DueDate)

	response := &model.InvoiceResponse{
		Transactions: result.Transactions,
		Metadata: model.ProcessingMetadata{
			ProcessingTimeMs:  time.Since(start).Milliseconds(),
			TotalTransactions: len(result.Transactions),
			ConfidenceScore:   outcome.ConfidenceScore,
			Provider:          provider.Name(),
			Institution:       code.String(),
		},
		Errors: outcome.Errors,
	}

	s.logger.Info("invoice processed",
		"institution", code,
		"provider", provider.Name(),
		"transactions", len(result.Transactions),
		"confidence", outcome.ConfidenceScore,
		"validation_errors", len(outcome.Errors),
		"elapsed_ms", response.Metadata.ProcessingTimeMs)

	return response, nil
}
