package extract

import (
	"context"

	"github.com/faturai/faturai/internal/llm"
)

// TextExtractor is the collaborator that turns PDF bytes into plain text.
type TextExtractor interface {
	// ExtractText returns the text and the method used ("native" or "ocr").
	// It fails with common.ErrTextExtraction when no usable text exists.
	ExtractText(ctx context.Context, pdfBytes []byte) (text string, method string, err error)
}

// ProviderResolver selects an AI provider by name.
type ProviderResolver interface {
	Resolve(requestedName string) (llm.Provider, error)
}
