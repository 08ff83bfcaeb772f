package tomd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// PlainTextConverter passes through any file whose extension maps to a text/*
// MIME type. The file content itself is never inspected to decide.
type PlainTextConverter struct{}

// NewPlainTextConverter creates a new PlainTextConverter.
func NewPlainTextConverter() *PlainTextConverter {
	return &PlainTextConverter{}
}

func (c *PlainTextConverter) Accepts(_ string, hints ConvertHints) bool {
	if hints.FileExtension == "" {
		return false
	}
	return strings.HasPrefix(mimeFromExtension(hints.FileExtension), "text/")
}

func (c *PlainTextConverter) Convert(localPath string, hints ConvertHints) (*ConversionResult, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return &ConversionResult{
		Markdown: decodeText(data, hints.extraString("charset")),
	}, nil
}

// decodeText converts data to UTF-8. A declared charset wins; valid UTF-8 is
// returned as is; anything else goes through charset detection.
func decodeText(data []byte, charset string) string {
	if charset != "" {
		if enc := lookupEncoding(charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(decoded)
			}
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	// DetectAll orders results by descending confidence.
	results, err := chardet.NewTextDetector().DetectAll(data)
	if err == nil {
		for _, r := range results {
			enc := lookupEncoding(r.Charset)
			if enc == nil {
				continue
			}
			decoded, err := enc.NewDecoder().Bytes(data)
			if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
				return string(decoded)
			}
		}
	}

	return strings.ToValidUTF8(string(data), "\uFFFD")
}

// charsetAliases covers names chardet and legacy tools emit that are not
// WHATWG encoding labels.
var charsetAliases = map[string]string{
	"cp932":    "shift_jis",
	"cp936":    "gbk",
	"cp949":    "euc-kr",
	"cp950":    "big5",
	"cp1252":   "windows-1252",
	"gb-18030": "gb18030",
	"utf8":     "utf-8",
}

// lookupEncoding maps charset names to Go encoding implementations.
func lookupEncoding(charset string) encoding.Encoding {
	name := strings.ToLower(strings.TrimSpace(charset))
	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}
