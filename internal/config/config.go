// Package config loads application settings from flags, environment
// variables and an optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/faturai/faturai/internal/common"
)

// Provider holds the settings for one AI backend.
type Provider struct {
	APIKey string
	Model  string
}

// Config is the full application configuration.
type Config struct {
	ListenAddr      string
	DefaultProvider string
	LogLevel        string
	LogFormat       string

	// MaxFileSize caps uploaded PDFs, in bytes.
	MaxFileSize int64

	// MaxRetries and RetryDelay shape the provider retry schedule.
	MaxRetries int
	RetryDelay time.Duration

	OpenAI   Provider
	DeepSeek Provider
	Gemini   Provider
}

// Load reads configuration. A .env file in the working directory is applied
// first, then the optional config file, then FATURAI_* environment
// variables. Flags bound by the CLI override all of these.
func Load(cfgFile string) (*Config, error) {
	// Missing .env is fine; it only exists in development.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("FATURAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:      viper.GetString("server.listen"),
		DefaultProvider: viper.GetString("provider.default"),
		LogLevel:        viper.GetString("logging.level"),
		LogFormat:       viper.GetString("logging.format"),
		MaxFileSize:     viper.GetInt64("limits.max_file_size"),
		MaxRetries:      viper.GetInt("limits.max_retries"),
		RetryDelay:      viper.GetDuration("limits.retry_delay"),
		OpenAI: Provider{
			APIKey: viper.GetString("openai.api_key"),
			Model:  viper.GetString("openai.model"),
		},
		DeepSeek: Provider{
			APIKey: viper.GetString("deepseek.api_key"),
			Model:  viper.GetString("deepseek.model"),
		},
		Gemini: Provider{
			APIKey: viper.GetString("gemini.api_key"),
			Model:  viper.GetString("gemini.model"),
		},
	}

	if cfg.DefaultProvider == "" {
		return nil, fmt.Errorf("%w: default provider", common.ErrMissingConfig)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.listen", ":8000")
	viper.SetDefault("provider.default", "openai")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("limits.max_file_size", 10*1024*1024)
	viper.SetDefault("limits.max_retries", 3)
	viper.SetDefault("limits.retry_delay", time.Second)
}
