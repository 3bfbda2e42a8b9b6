package config

import (
	"fmt"
	"os"

	"invoicelink/internal/logger"
)

type Config struct {
	// Input / output
	InvoicesFolder string
	WorkbookFile   string
	ErrorLogFile   string

	// Tabular store backend: "xlsx" or "sheets"
	StoreBackend string

	// Google Sheets Configuration (required for the "sheets" backend)
	GoogleSheetURL string

	// OCR Configuration
	OCRBackend                 string // "vision", "documentai" or "none"
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		InvoicesFolder:             getEnv("INVOICES_FOLDER", "invoices"),
		WorkbookFile:               getEnv("WORKBOOK_FILE", "invoices.xlsx"),
		ErrorLogFile:               getEnv("ERROR_LOG_FILE", "errors.log"),
		StoreBackend:               getEnv("STORE_BACKEND", "xlsx"),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		OCRBackend:                 getEnv("OCR_BACKEND", "vision"),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "xlsx":
		if c.WorkbookFile == "" {
			return fmt.Errorf("WORKBOOK_FILE is required for the xlsx backend")
		}
	case "sheets":
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND: %s (must be xlsx or sheets)", c.StoreBackend)
	}

	switch c.OCRBackend {
	case "vision", "none":
	case "documentai":
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai backend")
		}
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai backend")
		}
	default:
		return fmt.Errorf("unknown OCR_BACKEND: %s (must be vision, documentai or none)", c.OCRBackend)
	}

	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
