package tomd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"trailing spaces", "hello   \nworld\t\t", "hello\nworld"},
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"collapse blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"whitespace-only lines collapse", "a\n   \n \t \n\nb", "a\n\nb"},
		{"keeps single blank line", "a\n\nb", "a\n\nb"},
		{"leading indentation kept", "    code\n", "    code\n"},
		{"non-breaking space stripped", "x\u00a0\n", "x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeOutput(tt.input))
		})
	}
}

func TestNormalizeOutput_Idempotent(t *testing.T) {
	inputs := []string{
		"# Title  \r\n\r\n\r\n\r\nbody \n",
		"\n\n\n\n",
		"a\t\n\n\n b \n",
		"plain",
	}
	for _, in := range inputs {
		once := normalizeOutput(in)
		assert.Equal(t, once, normalizeOutput(once), "input %q", in)
		assert.NotContains(t, once, "\n\n\n")
	}
}
