// Package server is the thin HTTP boundary: request marshalling, upload
// limits and error-to-status mapping. All extraction logic lives behind
// the InvoiceProcessor interface.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/faturai/faturai/internal/common"
	"github.com/faturai/faturai/internal/model"
)

// InvoiceProcessor is the extraction pipeline as seen from the boundary.
type InvoiceProcessor interface {
	ProcessInvoice(ctx context.Context, pdfBytes []byte, providerName string) (*model.InvoiceResponse, error)
}

// Server hosts the HTTP API.
type Server struct {
	engine      *gin.Engine
	processor   InvoiceProcessor
	logger      *slog.Logger
	listenAddr  string
	maxFileSize int64
	defaultName string
	version     string
}

// New builds the server and its routes.
func New(processor InvoiceProcessor, listenAddr string, maxFileSize int64, defaultProvider, version string, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(requestID(), recovery(), requestLogger())

	s := &Server{
		engine:      engine,
		processor:   processor,
		logger:      logger,
		listenAddr:  listenAddr,
		maxFileSize: maxFileSize,
		defaultName: defaultProvider,
		version:     version,
	}

	engine.GET("/health", s.health)
	v1 := engine.Group("/v1")
	v1.GET("", s.apiInfo)
	v1.POST("/process-invoice", s.processInvoice)

	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Provider:  s.defaultName,
	})
}

func (s *Server) apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "faturai",
		"version":     s.version,
		"description": "extracts structured transactions from credit-card invoice PDFs",
		"endpoints": gin.H{
			"process_invoice": "POST /v1/process-invoice",
			"health":          "GET /health",
		},
	})
}

func (s *Server) processInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are supported"})
		return
	}

	if fileHeader.Size > s.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file too large, maximum size is %d bytes", s.maxFileSize),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, s.maxFileSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	if int64(len(content)) > s.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file too large, maximum size is %d bytes", s.maxFileSize),
		})
		return
	}

	providerName := c.PostForm("provider")
	if providerName == "" {
		providerName = c.Query("provider")
	}

	response, err := s.processor.ProcessInvoice(c.Request.Context(), content, providerName)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// respondError maps the error taxonomy to HTTP statuses. Client mistakes
// are 4xx, upstream provider trouble is 503, anything else is a 500 scoped
// to this request.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	switch {
	case errors.Is(err, common.ErrUnknownProvider):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
	case errors.Is(err, common.ErrInvalidPDF):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID})
	case errors.Is(err, common.ErrTextExtraction):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "request_id": requestID})
	case errors.Is(err, common.ErrProvider):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "request_id": requestID})
	default:
		s.logger.Error("unexpected processing error", "error", err, "request_id", requestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "request_id": requestID})
	}
}
