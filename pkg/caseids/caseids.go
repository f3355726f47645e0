// Package caseids loads CaseID lists from xlsx, csv and plain text files.
package caseids

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Input formats, detected by file extension.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatText = "txt"
)

// LoadResult describes the identifiers extracted from an input file. IDs is
// deduplicated in first-seen order; Duplicated lists identifiers that
// appeared more than once in the input.
type LoadResult struct {
	IDs          []string
	Duplicated   []string
	EmptySkipped int
	Source       string
	Format       string
}

// Load reads CaseIDs from the file at path. The format follows the file
// extension: .xlsx/.xlsm workbooks, .csv files, anything else one identifier
// per line.
//
// For tabular formats the column parameter selects where identifiers live:
// it is first matched against the header row (case-insensitive), and when no
// header matches it is read as a spreadsheet column letter ("A", "B", ...).
// Header mode skips the header row, letter mode reads from the first row.
// An empty column defaults to "A". limit caps the number of unique
// identifiers collected, zero means unlimited.
func Load(path, column string, limit int) (*LoadResult, error) {
	format := detectFormat(path)
	c := &collector{
		limit: limit,
		seen:  make(map[string]bool),
		dups:  make(map[string]bool),
		result: &LoadResult{
			Source: path,
			Format: format,
		},
	}

	var err error
	switch format {
	case FormatXLSX:
		err = loadXLSX(path, column, c)
	case FormatCSV:
		err = loadCSV(path, column, c)
	default:
		err = loadText(path, c)
	}
	if err != nil {
		return nil, err
	}

	return c.result, nil
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	default:
		return FormatText
	}
}

// collector accumulates identifiers with order-preserving dedupe.
type collector struct {
	limit  int
	seen   map[string]bool
	dups   map[string]bool
	result *LoadResult
}

// add records one raw cell value. It reports true once the unique-ID limit
// is reached and reading should stop.
func (c *collector) add(raw string) bool {
	id := strings.TrimSpace(raw)
	if id == "" {
		c.result.EmptySkipped++
		return false
	}

	if c.seen[id] {
		if !c.dups[id] {
			c.dups[id] = true
			c.result.Duplicated = append(c.result.Duplicated, id)
		}
		return false
	}

	c.seen[id] = true
	c.result.IDs = append(c.result.IDs, id)

	return c.limit > 0 && len(c.result.IDs) >= c.limit
}

// resolveColumn turns the column parameter into a zero-based index.
// Header matching wins over letter parsing; the second return reports
// whether the header row was consumed.
func resolveColumn(header []string, column string) (int, bool, error) {
	if column == "" {
		column = "A"
	}

	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), column) {
			return i, true, nil
		}
	}

	n, err := excelize.ColumnNameToNumber(column)
	if err != nil {
		return 0, false, fmt.Errorf("invalid CaseID column %q: %w", column, err)
	}

	return n - 1, false, nil
}

// cellAt returns the row value at idx, tolerating short rows.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func loadXLSX(path, column string, c *collector) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open CaseID workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("CaseID workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read CaseID sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	idx, skipHeader, err := resolveColumn(rows[0], column)
	if err != nil {
		return err
	}

	start := 0
	if skipHeader {
		start = 1
	}
	for _, row := range rows[start:] {
		if c.add(cellAt(row, idx)) {
			break
		}
	}

	return nil
}

func loadCSV(path, column string, c *collector) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CaseID file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to read CaseID file: %w", err)
	}

	idx, skipHeader, err := resolveColumn(header, column)
	if err != nil {
		return err
	}

	if !skipHeader {
		if c.add(cellAt(header, idx)) {
			return nil
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CaseID file: %w", err)
		}
		if c.add(cellAt(row, idx)) {
			return nil
		}
	}
}

func loadText(path string, c *collector) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CaseID file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if c.add(scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read CaseID file: %w", err)
	}

	return nil
}
