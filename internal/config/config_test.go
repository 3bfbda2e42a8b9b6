package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicelink/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INVOICES_FOLDER", "WORKBOOK_FILE", "ERROR_LOG_FILE",
		"STORE_BACKEND", "GOOGLE_SHEET_URL", "OCR_BACKEND",
		"GOOGLE_CLOUD_PROJECT", "DOCUMENT_AI_PROCESSOR_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "invoices", cfg.InvoicesFolder)
	assert.Equal(t, "invoices.xlsx", cfg.WorkbookFile)
	assert.Equal(t, "errors.log", cfg.ErrorLogFile)
	assert.Equal(t, "xlsx", cfg.StoreBackend)
	assert.Equal(t, "vision", cfg.OCRBackend)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INVOICES_FOLDER", "scans")
	t.Setenv("WORKBOOK_FILE", "records.xlsx")
	t.Setenv("OCR_BACKEND", "none")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "scans", cfg.InvoicesFolder)
	assert.Equal(t, "records.xlsx", cfg.WorkbookFile)
	assert.Equal(t, "none", cfg.OCRBackend)
}

func TestValidate(t *testing.T) {
	t.Run("sheets backend requires sheet URL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_BACKEND", "sheets")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_SHEET_URL")
	})

	t.Run("unknown store backend rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_BACKEND", "postgres")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORE_BACKEND")
	})

	t.Run("documentai backend requires processor and project", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OCR_BACKEND", "documentai")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DOCUMENT_AI_PROCESSOR_ID")
	})

	t.Run("unknown ocr backend rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OCR_BACKEND", "tesseract")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OCR_BACKEND")
	})
}
