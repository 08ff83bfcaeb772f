package tomd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CsvConverter renders CSV files as a Markdown table.
type CsvConverter struct{}

// NewCsvConverter creates a new CsvConverter.
func NewCsvConverter() *CsvConverter {
	return &CsvConverter{}
}

func (c *CsvConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".csv"
}

func (c *CsvConverter) Convert(localPath string, hints ConvertHints) (*ConversionResult, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	r := csv.NewReader(strings.NewReader(decodeText(data, hints.extraString("charset"))))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	return &ConversionResult{Markdown: renderMarkdownTable(records)}, nil
}

// renderMarkdownTable renders rows as a Markdown table whose width is set by
// the first (header) row. Short rows are padded, long rows truncated.
func renderMarkdownTable(rows [][]string) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	width := len(rows[0])

	var b strings.Builder
	writeRow := func(cells []string) {
		padded := make([]string, width)
		copy(padded, cells)
		b.WriteString("| " + strings.Join(padded, " | ") + " |\n")
	}

	writeRow(rows[0])
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return b.String()
}
