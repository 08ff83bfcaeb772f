// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package tomd

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxConverter renders each worksheet of an XLSX workbook as a table.
type XlsxConverter struct{}

// NewXlsxConverter creates a new XlsxConverter.
func NewXlsxConverter() *XlsxConverter {
	return &XlsxConverter{}
}

func (c *XlsxConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".xlsx"
}

func (c *XlsxConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	f, err := excelize.OpenFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	var md strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		writeSheet(&md, sheet, rows)
	}

	return &ConversionResult{Markdown: md.String()}, nil
}

// writeSheet appends a "## name" heading and the sheet table; empty sheets
// produce nothing.
func writeSheet(md *strings.Builder, name string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(md, "## %s\n", name)
	md.WriteString(renderMarkdownTable(rows))
	md.WriteString("\n")
}
