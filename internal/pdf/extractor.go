// Package pdf turns uploaded PDF bytes into plain text, falling back to OCR
// for image-only invoices. It shells out to the poppler and tesseract tools
// rather than bundling a PDF engine.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/faturai/faturai/internal/common"
)

// Extraction methods reported to callers.
const (
	MethodNative = "native"
	MethodOCR    = "ocr"
)

// minNativeTextLength is the significant-character threshold below which a
// native extraction is considered an image-only PDF and OCR kicks in.
const minNativeTextLength = 100

var pdfMagic = []byte("%PDF")

// Extractor extracts text from PDF invoices.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a text extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractText returns the text content of a PDF and the method used
// (native or ocr). It fails with common.ErrTextExtraction when neither
// path yields usable text, and common.ErrInvalidPDF for non-PDF input.
func (e *Extractor) ExtractText(ctx context.Context, pdfBytes []byte) (string, string, error) {
	if !bytes.HasPrefix(pdfBytes, pdfMagic) {
		return "", "", common.ErrInvalidPDF
	}

	tmpDir, err := os.MkdirTemp("", "faturai-*")
	if err != nil {
		return "", "", fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	pdfPath := filepath.Join(tmpDir, "invoice.pdf")
	if err := os.WriteFile(pdfPath, pdfBytes, 0o600); err != nil {
		return "", "", fmt.Errorf("write temp pdf: %w", err)
	}

	text, err := e.extractNative(ctx, pdfPath)
	if err != nil {
		e.logger.Warn("native text extraction failed", "error", err)
	}

	if significantLength(text) > minNativeTextLength {
		e.logger.Info("text extracted natively", "chars", len(text))
		return text, MethodNative, nil
	}

	e.logger.Info("minimal native text, trying OCR", "native_chars", significantLength(text))

	text, err = e.extractOCR(ctx, tmpDir, pdfPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrTextExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", common.ErrTextExtraction
	}

	e.logger.Info("text extracted via OCR", "chars", len(text))
	return text, MethodOCR, nil
}

// extractNative runs pdftotext with layout preservation, which keeps the
// column structure invoices rely on.
func (e *Extractor) extractNative(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", pdfPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// extractOCR renders each page to PNG and runs tesseract over them.
// The invoices are Brazilian, hence por+eng.
func (e *Extractor) extractOCR(ctx context.Context, tmpDir, pdfPath string) (string, error) {
	prefix := filepath.Join(tmpDir, "page")
	render := exec.CommandContext(ctx, "pdftoppm", "-r", "150", "-png", pdfPath, prefix)
	if err := render.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w", err)
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(pages) == 0 {
		return "", fmt.Errorf("no pages rendered for OCR")
	}
	sort.Strings(pages)

	var parts []string
	for _, page := range pages {
		ocr := exec.CommandContext(ctx, "tesseract", page, "stdout", "-l", "por+eng", "--psm", "6")
		out, err := ocr.Output()
		if err != nil {
			e.logger.Warn("OCR failed for page", "page", filepath.Base(page), "error", err)
			continue
		}
		if pageText := strings.TrimSpace(string(out)); pageText != "" {
			parts = append(parts, pageText)
		}
	}

	return strings.Join(parts, "\n"), nil
}

// significantLength counts non-whitespace characters.
func significantLength(s string) int {
	return len(strings.Join(strings.Fields(s), ""))
}
