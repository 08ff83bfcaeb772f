package tomd

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reLineBreak        = regexp.MustCompile(`\r?\n`)
	reMultipleNewlines = regexp.MustCompile(`\n{3,}`)
)

// normalizeOutput applies the post-processing every successful conversion gets:
// - Strip trailing whitespace from each line (CRLF line breaks become LF)
// - Collapse 3+ consecutive newlines to 2
//
// It is idempotent.
func normalizeOutput(s string) string {
	lines := reLineBreak.Split(s, -1)
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	s = strings.Join(lines, "\n")

	return reMultipleNewlines.ReplaceAllString(s, "\n\n")
}
