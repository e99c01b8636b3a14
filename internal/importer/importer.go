// Package importer reads word lists from spreadsheet files so teachers
// can load a whole deck at once instead of adding words one by one.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one word entry read from an import file. Jyutping may be
// empty, in which case it is derived from the text downstream.
type Row struct {
	Text     string
	Jyutping string
}

// Result summarizes an import run
type Result struct {
	TotalRows int
	Imported  int
	Skipped   int
	Errors    []string
}

// AddWordFunc stores one imported word into a deck
type AddWordFunc func(text, jyutping string) error

// Importer parses xlsx and csv uploads into deck words
type Importer struct{}

func New() *Importer {
	return &Importer{}
}

// Import reads rows from the named upload and stores each via addWord.
// The format is chosen from the filename extension. Rows whose word
// cell is empty are skipped; rows addWord rejects are recorded in the
// result without aborting the rest of the file.
func (im *Importer) Import(filename string, data []byte, addWord AddWordFunc) (*Result, error) {
	var rows []Row
	var err error

	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		rows, err = parseCSV(data)
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		rows, err = parseXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .xlsx or .csv", filename)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		result.TotalRows++
		if row.Text == "" {
			result.Skipped++
			continue
		}
		if err := addWord(row.Text, row.Jyutping); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %v", i+1, row.Text, err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

// parseXLSX reads the first sheet, column A word text and column B
// jyutping. A header row is detected and skipped.
func parseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return cellsToRows(raw), nil
}

func parseCSV(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var raw [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		raw = append(raw, record)
	}

	return cellsToRows(raw), nil
}

func cellsToRows(raw [][]string) []Row {
	rows := make([]Row, 0, len(raw))
	for i, record := range raw {
		var text, jp string
		if len(record) > 0 {
			text = strings.TrimSpace(record[0])
		}
		if len(record) > 1 {
			jp = strings.TrimSpace(record[1])
		}
		if i == 0 && isHeader(text) {
			continue
		}
		rows = append(rows, Row{Text: text, Jyutping: jp})
	}
	return rows
}

func isHeader(cell string) bool {
	switch strings.ToLower(cell) {
	case "word", "text", "詞語", "字詞":
		return true
	}
	return false
}
