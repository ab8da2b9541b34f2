package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"timestamp", "lowest_price", "median_price", "volume", "spread_absolute", "spread_percentage",
}

// ExportCSV writes the full history of skin to path, preceded by a small
// metadata block. An empty history writes nothing and returns nil; a
// filesystem failure returns ErrExportFailed.
func (s *Store) ExportCSV(skin, path string) error {
	skin = strings.TrimSpace(skin)
	if skin == "" {
		return fmt.Errorf("empty skin name: %w", ErrInvalidArgument)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("empty export path: %w", ErrInvalidArgument)
	}

	rows := s.History(skin, 0, 0)
	if len(rows) == 0 {
		s.log.Info("nothing to export", "skin", skin)
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w: %w", ErrExportFailed, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w: %w", ErrExportFailed, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	meta := [][]string{
		{"# Skin Price Tracker Export"},
		{"# Skin: " + skin},
		{"# Exported: " + time.Now().Format(timestampLayout)},
		{"# Rows: " + strconv.Itoa(len(rows))},
		{fmt.Sprintf("# Range: %s to %s", rows[0].Timestamp, rows[len(rows)-1].Timestamp)},
		{"# Version: " + appVersion},
		{},
	}
	for _, rec := range meta {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write export metadata: %w: %w", ErrExportFailed, err)
		}
	}
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w: %w", ErrExportFailed, err)
	}
	for _, o := range rows {
		rec := []string{
			o.Timestamp,
			strconv.FormatFloat(o.LowestPrice, 'f', -1, 64),
			strconv.FormatFloat(o.MedianPrice, 'f', -1, 64),
			strconv.FormatInt(o.Volume, 10),
			strconv.FormatFloat(o.SpreadAbsolute, 'f', -1, 64),
			strconv.FormatFloat(o.SpreadPercentage, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write export row: %w: %w", ErrExportFailed, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w: %w", ErrExportFailed, err)
	}

	s.log.Info("history exported", "skin", skin, "path", path, "rows", len(rows))
	return nil
}

// ExportXLSX writes the same six columns as ExportCSV into an xlsx workbook.
// Empty history is a silent no-op, matching ExportCSV.
func (s *Store) ExportXLSX(skin, path string) error {
	skin = strings.TrimSpace(skin)
	if skin == "" {
		return fmt.Errorf("empty skin name: %w", ErrInvalidArgument)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("empty export path: %w", ErrInvalidArgument)
	}

	rows := s.History(skin, 0, 0)
	if len(rows) == 0 {
		s.log.Info("nothing to export", "skin", skin)
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w: %w", ErrExportFailed, err)
		}
	}

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write sheet header: %w: %w", ErrExportFailed, err)
	}
	for i, o := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("sheet cell name: %w: %w", ErrExportFailed, err)
		}
		record := []any{
			o.Timestamp, o.LowestPrice, o.MedianPrice, o.Volume, o.SpreadAbsolute, o.SpreadPercentage,
		}
		if err := wb.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("write sheet row: %w: %w", ErrExportFailed, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w: %w", ErrExportFailed, err)
	}

	s.log.Info("history exported", "skin", skin, "path", path, "rows", len(rows))
	return nil
}
