package tabular

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"invoicelink/internal/logger"
)

// XLSXStore persists sheets in a local XLSX workbook. Writes are buffered in
// memory and committed by Flush.
type XLSXStore struct {
	path  string
	file  *excelize.File
	fresh bool // newly created workbook, default sheet not yet removed
	log   zerolog.Logger
}

// OpenXLSX loads the workbook at path, creating a new one if it does not
// exist yet.
func OpenXLSX(path string) (*XLSXStore, error) {
	const op = "OpenXLSX"

	log := logger.WithComponent("tabular")

	if _, err := os.Stat(path); err == nil {
		file, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open workbook %s: %w", op, path, err)
		}
		log.Info().Str("workbook", path).Msg("Loaded existing workbook")
		return &XLSXStore{path: path, file: file, log: log}, nil
	}

	log.Info().Str("workbook", path).Msg("Creating new workbook")
	return &XLSXStore{path: path, file: excelize.NewFile(), fresh: true, log: log}, nil
}

// EnsureSheet creates the sheet with a styled header row if missing.
func (s *XLSXStore) EnsureSheet(ctx context.Context, name string, headers []string) error {
	const op = "EnsureSheet"

	idx, err := s.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if idx >= 0 {
		return nil
	}

	if _, err := s.file.NewSheet(name); err != nil {
		return fmt.Errorf("%s: failed to create sheet %s: %w", op, name, err)
	}

	// Drop the workbook's default sheet once a real one exists.
	if s.fresh && name != "Sheet1" {
		if err := s.file.DeleteSheet("Sheet1"); err == nil {
			s.fresh = false
		}
	}

	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := s.file.SetSheetRow(name, "A1", &row); err != nil {
		return fmt.Errorf("%s: failed to write headers: %w", op, err)
	}

	if err := s.styleHeader(name, len(headers)); err != nil {
		s.log.Warn().Err(err).Str("sheet", name).Msg("Failed to style header row, continuing anyway")
	}

	s.log.Info().Str("sheet", name).Msg("Created sheet")
	return nil
}

// styleHeader applies bold white-on-blue formatting to the header row.
func (s *XLSXStore) styleHeader(sheet string, cols int) error {
	styleID, err := s.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	end, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return s.file.SetCellStyle(sheet, "A1", end, styleID)
}

// AppendRow writes one data row after the last occupied row of the sheet.
func (s *XLSXStore) AppendRow(ctx context.Context, sheet string, values []any) error {
	const op = "AppendRow"

	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("%s: failed to read sheet %s: %w", op, sheet, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s: failed to append row to %s: %w", op, sheet, err)
	}
	return nil
}

// Rows returns all data rows of the sheet, header excluded.
func (s *XLSXStore) Rows(ctx context.Context, sheet string) ([][]string, error) {
	const op = "Rows"

	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %s: %w", op, sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// Flush saves the workbook to disk.
func (s *XLSXStore) Flush(ctx context.Context) error {
	const op = "Flush"

	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("%s: failed to save workbook %s: %w", op, s.path, err)
	}
	s.log.Info().Str("workbook", s.path).Msg("Workbook saved")
	return nil
}

// Close releases the in-memory workbook without saving.
func (s *XLSXStore) Close() error {
	return s.file.Close()
}
