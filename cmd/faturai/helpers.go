package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/faturai/faturai/internal/common"
	"github.com/faturai/faturai/internal/config"
	"github.com/faturai/faturai/internal/extract"
	"github.com/faturai/faturai/internal/llm"
	"github.com/faturai/faturai/internal/pdf"
)

// setup loads configuration and wires the extraction pipeline shared by the
// serve and extract commands.
func setup() (*config.Config, *extract.Service, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if err := common.SetupLogger(common.ParseLogLevel(cfg.LogLevel), cfg.LogFormat); err != nil {
		return nil, nil, err
	}
	logger := slog.Default()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	service := extract.NewService(pdf.NewExtractor(logger), registry, logger)

	return cfg, service, nil
}

// buildRegistry registers every provider that has an API key configured.
// The configured default must end up registered.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*llm.Registry, error) {
	var providers []llm.Provider

	add := func(name string, build func(llm.Config, *slog.Logger) (llm.Provider, error), pc config.Provider) error {
		if pc.APIKey == "" {
			logger.Debug("provider not configured, skipping", "provider", name)
			return nil
		}
		p, err := build(providerConfig(cfg, pc), logger)
		if err != nil {
			return fmt.Errorf("building %s provider: %w", name, err)
		}
		providers = append(providers, p)
		return nil
	}

	if err := add("openai", llm.NewOpenAIProvider, cfg.OpenAI); err != nil {
		return nil, err
	}
	if err := add("deepseek", llm.NewDeepSeekProvider, cfg.DeepSeek); err != nil {
		return nil, err
	}
	if err := add("gemini", llm.NewGeminiProvider, cfg.Gemini); err != nil {
		return nil, err
	}

	return llm.NewRegistry(cfg.DefaultProvider, providers...)
}

func providerConfig(cfg *config.Config, pc config.Provider) llm.Config {
	return llm.Config{
		APIKey:     pc.APIKey,
		Model:      pc.Model,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: retryDelayOrDefault(cfg.RetryDelay),
	}
}

func retryDelayOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return d
}
