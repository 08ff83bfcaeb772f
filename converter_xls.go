package tomd

import (
	"fmt"
	"strings"

	"github.com/extrame/xls"
)

// XlsConverter handles legacy XLS workbooks.
type XlsConverter struct{}

// NewXlsConverter creates a new XlsConverter.
func NewXlsConverter() *XlsConverter {
	return &XlsConverter{}
}

func (c *XlsConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".xls"
}

func (c *XlsConverter) Convert(localPath string, _ ConvertHints) (result *ConversionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("parse XLS: %v", r)
		}
	}()

	wb, err := xls.Open(localPath, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	md := new(strings.Builder)
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for col := 0; col < row.LastCol(); col++ {
				cells = append(cells, row.Col(col))
			}
			rows = append(rows, cells)
		}
		writeSheet(md, name, rows)
	}

	return &ConversionResult{Markdown: md.String()}, nil
}
