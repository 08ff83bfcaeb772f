package tomd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htmlResponse(t *testing.T, rawURL, body string) *http.Response {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: u},
	}
}

func TestHTMLConverter_TitleAndBody(t *testing.T) {
	path := writeTemp(t, "page.html", `<html><head><title>T</title></head><body><h1>Hi</h1></body></html>`)

	res, err := New().ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "# Hi", res.Markdown)
	assert.Equal(t, ".html", res.Extension)
}

func TestHTMLConverter_DropsScriptsAndStyles(t *testing.T) {
	res, err := NewHTMLConverter(nil).ConvertString(`<html><head><style>p{color:red}</style></head>
<body><script>alert("x")</script><p>visible</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "visible", res.Markdown)
	assert.Equal(t, "", res.Title)
}

func TestHTMLConverter_LinkSchemes(t *testing.T) {
	res, err := NewHTMLConverter(nil).ConvertString(`<p>
<a href="javascript:alert(1)">click</a>
<a href="mailto:someone@example.com">mail</a>
<a href="https://example.com/" title="Home">home</a>
<a href="file:///tmp/x.txt">local</a>
</p>`)
	require.NoError(t, err)

	md := res.Markdown
	assert.Contains(t, md, "click")
	assert.Contains(t, md, "mail")
	assert.NotContains(t, md, "javascript:")
	assert.NotContains(t, md, "mailto:")
	assert.Contains(t, md, `[home](https://example.com/ "Home")`)
	assert.Contains(t, md, "[local](file:///tmp/x.txt)")
}

func TestIsAllowedLinkTarget(t *testing.T) {
	for _, href := range []string{"https://a.b", "HTTP://a.b", "file:///x", "/relative", "#frag"} {
		assert.True(t, isAllowedLinkTarget(href), href)
	}
	for _, href := range []string{"javascript:void(0)", "mailto:x@y", "data:text/html,hi", "ftp://a.b"} {
		assert.False(t, isAllowedLinkTarget(href), href)
	}
}

const dataImagePage = `<p><img src="data:image/png;base64,iVBORw0KGgoAAAANSUhEUg" alt="dot"></p>`

func TestHTMLConverter_TruncatesDataURIs(t *testing.T) {
	res, err := NewHTMLConverter(New()).ConvertString(dataImagePage)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "data:image/png;base64...")
	assert.NotContains(t, res.Markdown, "iVBORw0KGgo")
}

func TestHTMLConverter_KeepDataURIs(t *testing.T) {
	res, err := NewHTMLConverter(New(WithKeepDataURIs(true))).ConvertString(dataImagePage)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "iVBORw0KGgo")
}

func TestHTMLConverter_Tables(t *testing.T) {
	res, err := NewHTMLConverter(nil).ConvertString(`<table>
<tr><th>Name</th><th>Age</th></tr>
<tr><td>Ada</td><td>36</td></tr>
</table>`)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "| Name")
	assert.Contains(t, res.Markdown, "Ada")
}

const wikipediaPage = `<html><head><title>Go (programming language) - Wikipedia</title></head>
<body>
<div id="mw-navigation">Main menu Sidebar noise</div>
<h1><span class="mw-page-title-main">Go (programming language)</span></h1>
<div id="mw-content-text"><p>Go is a <b>statically typed</b> language.</p></div>
</body></html>`

func TestWikipediaConverter_WinsForWikipediaURLs(t *testing.T) {
	resp := htmlResponse(t, "https://en.wikipedia.org/wiki/Go_(programming_language)", wikipediaPage)

	res, err := New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Go (programming language)", res.Title)
	assert.True(t, strings.HasPrefix(res.Markdown, "# Go (programming language)\n\nGo is a **statically typed** language."), res.Markdown)
	assert.NotContains(t, res.Markdown, "Sidebar noise")
}

func TestWikipediaConverter_OtherHostsUseGenericHTML(t *testing.T) {
	resp := htmlResponse(t, "https://example.com/wiki/Go", wikipediaPage)

	res, err := New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Go (programming language) - Wikipedia", res.Title)
	assert.Contains(t, res.Markdown, "Sidebar noise")
}

const wikipediaPageWithoutContent = `<html><head><title>Main Page - Wikipedia</title></head>
<body><div id="mw-navigation">Main menu</div><p>Welcome to <b>Wikipedia</b>.</p></body></html>`

func TestWikipediaConverter_WithoutContentContainer(t *testing.T) {
	path := writeTemp(t, "main.html", wikipediaPageWithoutContent)

	res, err := NewWikipediaConverter(nil).Convert(path, ConvertHints{FileExtension: ".html", URL: "https://en.wikipedia.org/wiki/Main_Page"})
	require.NoError(t, err)
	assert.Equal(t, "Main Page - Wikipedia", res.Title)
	assert.Contains(t, res.Markdown, "Main menu")
	assert.Contains(t, res.Markdown, "Welcome to **Wikipedia**.")
	assert.False(t, strings.HasPrefix(res.Markdown, "# "), res.Markdown)

	resp := htmlResponse(t, "https://en.wikipedia.org/wiki/Main_Page", wikipediaPageWithoutContent)
	res, err = New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Main Page - Wikipedia", res.Title)
	assert.Contains(t, res.Markdown, "Welcome to **Wikipedia**.")
}

func TestWikipediaConverter_Accepts(t *testing.T) {
	c := NewWikipediaConverter(nil)
	assert.True(t, c.Accepts("", ConvertHints{FileExtension: ".html", URL: "https://de.wikipedia.org/wiki/X"}))
	assert.False(t, c.Accepts("", ConvertHints{FileExtension: ".htm", URL: "http://simple.wikipedia.org/wiki/X"}))
	assert.False(t, c.Accepts("", ConvertHints{FileExtension: ".pdf", URL: "https://en.wikipedia.org/wiki/X"}))
	assert.False(t, c.Accepts("", ConvertHints{FileExtension: ".html"}))
}

const youTubePage = `<html><head><title>Gophers - YouTube</title>
<meta property="og:title" content="Gophers everywhere">
<meta itemprop="interactionCount" content="1234">
<meta name="keywords" content="go, gophers">
<meta itemprop="duration" content="PT4M2S">
<meta name="description" content="short description">
</head><body>
<script>var ytInitialData = {"contents":{"a":[{"attributedDescriptionBodyText":{"content":"The full description."}}]}};
console.log("second line");</script>
</body></html>`

func TestYouTubeConverter_Template(t *testing.T) {
	resp := htmlResponse(t, "https://www.youtube.com/watch?v=abc123", youTubePage)

	res, err := New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Gophers - YouTube", res.Title)

	want := "# YouTube\n\n## Gophers - YouTube\n\n### Video Metadata\n" +
		"- **Views:** 1234\n- **Keywords:** go, gophers\n- **Runtime:** PT4M2S\n\n" +
		"### Description\nThe full description.\n"
	assert.Equal(t, want, res.Markdown)
}

func TestYouTubeConverter_FallsBackToMetaDescription(t *testing.T) {
	page := strings.Replace(youTubePage, "ytInitialData", "somethingElse", 1)
	resp := htmlResponse(t, "https://www.youtube.com/watch?v=abc123", page)

	res, err := New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "### Description\nshort description\n")
}

func TestYouTubeConverter_OnlyWatchPages(t *testing.T) {
	c := NewYouTubeConverter()
	assert.True(t, c.Accepts("", ConvertHints{FileExtension: ".html", URL: "https://www.youtube.com/watch?v=x"}))
	assert.False(t, c.Accepts("", ConvertHints{FileExtension: ".html", URL: "https://www.youtube.com/channel/x"}))
	assert.False(t, c.Accepts("", ConvertHints{FileExtension: ".txt", URL: "https://www.youtube.com/watch?v=x"}))
}

func TestFindJSONKey(t *testing.T) {
	data := map[string]any{
		"b": []any{map[string]any{"target": "second"}},
		"a": map[string]any{"target": "first"},
	}
	found, ok := findJSONKey(data, "target", maxJSONSearchDepth)
	require.True(t, ok)
	assert.Equal(t, "first", found)

	_, ok = findJSONKey(data, "missing", maxJSONSearchDepth)
	assert.False(t, ok)

	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`{"z":{"target":"document first"},"a":{"target":"sorted first"}}`), &decoded))
	found, ok = findJSONKey(decoded, "target", maxJSONSearchDepth)
	require.True(t, ok)
	assert.Equal(t, "sorted first", found)

	var deep any = map[string]any{"target": "bottom"}
	for range maxJSONSearchDepth + 1 {
		deep = map[string]any{"next": deep}
	}
	_, ok = findJSONKey(deep, "target", maxJSONSearchDepth)
	assert.False(t, ok)
}

func TestPlainTextConverter(t *testing.T) {
	path := writeTemp(t, "notes.txt", "hello\nworld")

	res, err := New().ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "", res.Title)
	assert.Equal(t, "hello\nworld", res.Markdown)
	assert.Equal(t, ".txt", res.Extension)
}

func TestPlainTextConverter_Accepts(t *testing.T) {
	c := NewPlainTextConverter()
	for _, ext := range []string{".txt", ".md", ".csv", ".xml"} {
		assert.True(t, c.Accepts("", ConvertHints{FileExtension: ext}), ext)
	}
	for _, ext := range []string{"", ".json", ".pdf", ".zzz"} {
		assert.False(t, c.Accepts("", ConvertHints{FileExtension: ext}), ext)
	}
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "héllo", decodeText([]byte("héllo"), ""))
	assert.Equal(t, "café", decodeText([]byte("caf\xe9"), "iso-8859-1"))
	assert.Equal(t, "café", decodeText([]byte("café"), "utf-8"))

	out := decodeText([]byte{0xff, 0xfe, 0xfd}, "no-such-charset")
	assert.NotEmpty(t, out)
}

func TestPdfConverter_RejectsGarbage(t *testing.T) {
	path := writeTemp(t, "broken.pdf", "this is not a pdf")

	_, err := New().ConvertFile(path, ConvertHints{})
	require.Error(t, err)
	assert.True(t, IsConversionError(err))
	assert.Contains(t, err.Error(), "pdf")
}

// minimalPDF assembles a single-page PDF that shows text in Helvetica and
// carries an Info dictionary. Object offsets are computed for the xref table.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>",
		"<< /Title (Quarterly Numbers) /Author (Ada Lovelace) /Creator (Writer) /Producer (tomd tests) >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func TestPdfConverter_TextAndMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numbers.pdf")
	require.NoError(t, os.WriteFile(path, minimalPDF("Hello PDF"), 0o600))

	res, err := New().ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, ".pdf", res.Extension)
	assert.Contains(t, res.Markdown, "Hello PDF")
	assert.Equal(t, "Quarterly Numbers", res.Title)
	assert.Equal(t, Metadata{
		Pages:    1,
		Author:   "Ada Lovelace",
		Creator:  "Writer",
		Producer: "tomd tests",
	}, res.Metadata)
}
