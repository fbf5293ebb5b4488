// Package survey loads and cleans salary survey exports.
package survey

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// Source locates a survey export on disk.
type Source struct {
	Path string
	// Sheet selects the worksheet of an .xlsx file; empty means the first one.
	Sheet string
	// Delimiter separates fields in text exports; zero picks one from the extension.
	Delimiter rune
}

// IsSpreadsheet reports whether the source is read with excelize.
func (s Source) IsSpreadsheet() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".xlsx")
}

func (s Source) delimiter() rune {
	if s.Delimiter != 0 {
		return s.Delimiter
	}
	if strings.EqualFold(filepath.Ext(s.Path), ".tsv") {
		return '\t'
	}
	return ','
}

// readTable returns the header row and the data rows of the source.
func readTable(ctx context.Context, src Source) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if src.Path == "" {
		return nil, nil, fmt.Errorf("%w: source path is empty", ErrDataUnavailable)
	}
	var (
		rows [][]string
		err  error
	)
	if src.IsSpreadsheet() {
		rows, err = readSpreadsheet(src)
	} else {
		rows, err = readDelimited(src)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no header row", ErrDataUnavailable, src.Path)
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, rows[1:], nil
}

func readDelimited(src Source) ([][]string, error) {
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only source.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = src.delimiter()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrDataUnavailable, src.Path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readSpreadsheet(src Source) ([][]string, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()

	sheet := src.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no worksheets", ErrDataUnavailable, src.Path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %w", ErrDataUnavailable, sheet, err)
	}
	return rows, nil
}
