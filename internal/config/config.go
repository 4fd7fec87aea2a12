package config

import (
	"fmt"
	"os"
	"time"
)

// DefaultPyrusAPIURL is the production task creation endpoint.
const DefaultPyrusAPIURL = "https://api.pyrus.com/v4/tasks"

// Config holds application configuration
type Config struct {
	TelegramToken   string
	PyrusAPIToken   string
	PyrusFormID     string
	PyrusAPIURL     string
	DataDir         string
	DatabasePath    string
	LogLevel        string
	DefaultLanguage string
	DispatchTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	pyrusToken := os.Getenv("PYRUS_API_TOKEN")
	if pyrusToken == "" {
		return nil, fmt.Errorf("PYRUS_API_TOKEN environment variable is required")
	}

	formID := os.Getenv("PYRUS_FORM_ID")
	if formID == "" {
		return nil, fmt.Errorf("PYRUS_FORM_ID environment variable is required")
	}

	return &Config{
		TelegramToken:   token,
		PyrusAPIToken:   pyrusToken,
		PyrusFormID:     formID,
		PyrusAPIURL:     lookupEnvOrString("PYRUS_API_URL", DefaultPyrusAPIURL),
		DataDir:         lookupEnvOrString("DATA_DIR", "./data"),
		DatabasePath:    lookupEnvOrString("DATABASE_PATH", "./data/bot.db"),
		LogLevel:        lookupEnvOrString("LOG_LEVEL", "INFO"),
		DefaultLanguage: lookupEnvOrString("DEFAULT_LANGUAGE", "RU"),
		DispatchTimeout: lookupEnvOrDuration("DISPATCH_TIMEOUT", 10*time.Second),
	}, nil
}
