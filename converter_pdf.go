package tomd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PdfConverter extracts text and document info from PDF files.
type PdfConverter struct{}

// NewPdfConverter creates a new PdfConverter.
func NewPdfConverter() *PdfConverter {
	return &PdfConverter{}
}

func (c *PdfConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".pdf"
}

func (c *PdfConverter) Convert(localPath string, _ ConvertHints) (result *ConversionResult, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("parse PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	var md strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := strings.TrimSpace(extractPageText(page))
		if text == "" {
			continue
		}
		md.WriteString(text)
		md.WriteString("\n\n")
	}

	info := reader.Trailer().Key("Info")
	result = &ConversionResult{
		Title:    pdfInfoString(info, "Title"),
		Markdown: md.String(),
		Metadata: Metadata{
			Pages:    numPages,
			Author:   pdfInfoString(info, "Author"),
			Creator:  pdfInfoString(info, "Creator"),
			Producer: pdfInfoString(info, "Producer"),
		},
	}
	if strings.TrimSpace(result.Markdown) == "" {
		result.Markdown = "[No readable text content found in PDF]"
	}
	return result, nil
}

func pdfInfoString(info pdf.Value, key string) string {
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key(key).Text())
}

// extractPageText reads a page row by row, falling back to grouping positioned
// glyphs into lines when the row API yields nothing.
func extractPageText(page pdf.Page) string {
	if rows, err := page.GetTextByRow(); err == nil {
		var out strings.Builder
		for _, row := range rows {
			if line := joinRowWords(row.Content); line != "" {
				out.WriteString(line)
				out.WriteByte('\n')
			}
		}
		if strings.TrimSpace(out.String()) != "" {
			return out.String()
		}
	}
	return positionalPageText(page.Content().Text)
}

// joinRowWords concatenates the words of a row. An empty word between two
// non-empty ones marks a word boundary.
func joinRowWords(words pdf.TextHorizontal) string {
	var line strings.Builder
	gap := false
	for _, w := range words {
		if w.S == "" {
			gap = true
			continue
		}
		if gap && line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
			line.WriteByte(' ')
		}
		line.WriteString(w.S)
		gap = false
	}
	return strings.TrimSpace(line.String())
}

type pdfLine struct {
	y      float64
	glyphs []pdf.Text
}

// positionalPageText groups glyphs sharing a baseline into lines, top to
// bottom, and inserts spaces where the horizontal gap is wide enough.
func positionalPageText(glyphs []pdf.Text) string {
	var lines []pdfLine
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		tolerance := 3.0
		if g.FontSize > 0 {
			tolerance = g.FontSize * 0.3
		}
		placed := false
		for i := range lines {
			if d := lines[i].y - g.Y; d < tolerance && d > -tolerance {
				lines[i].glyphs = append(lines[i].glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, pdfLine{y: g.Y, glyphs: []pdf.Text{g}})
		}
	}

	// PDF y grows upwards.
	sort.Slice(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	var out strings.Builder
	for _, ln := range lines {
		sort.Slice(ln.glyphs, func(i, j int) bool { return ln.glyphs[i].X < ln.glyphs[j].X })
		var text strings.Builder
		var end float64
		for i, g := range ln.glyphs {
			threshold := max(g.FontSize*0.2, 1.0)
			if i > 0 && g.X-end > threshold {
				text.WriteByte(' ')
			}
			text.WriteString(g.S)
			end = g.X + float64(len([]rune(g.S)))*g.FontSize*0.55
		}
		if strings.TrimSpace(text.String()) != "" {
			out.WriteString(text.String())
			out.WriteByte('\n')
		}
	}
	return out.String()
}
