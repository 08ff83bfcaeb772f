package tomd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertFile_Unsupported(t *testing.T) {
	path := writeTemp(t, "data.zzz", "opaque bytes")

	_, err := New().ConvertFile(path, ConvertHints{})
	require.Error(t, err)
	assert.True(t, IsUnsupportedFormat(err))

	var target *UnsupportedFormatError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []string{".zzz", ""}, target.Extensions)
}

func TestConvertFile_ExtensionOverride(t *testing.T) {
	path := writeTemp(t, "page.dat", "<html><body><p>override</p></body></html>")

	res, err := New().ConvertFile(path, ConvertHints{FileExtension: "HTML"})
	require.NoError(t, err)
	assert.Equal(t, "override", res.Markdown)
	assert.Equal(t, ".html", res.Extension)
}

func TestConvertFile_Errors(t *testing.T) {
	_, err := New().ConvertFile("/does/not/exist.txt", ConvertHints{})
	require.Error(t, err)
	assert.False(t, IsUnsupportedFormat(err))
	assert.False(t, IsConversionError(err))

	_, err = New().ConvertFile(t.TempDir(), ConvertHints{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestConvertResponse_ContentTypeBeatsURLExtension(t *testing.T) {
	var calls []string
	e := New()
	e.RegisterConverter("php-breaker", &fakeConverter{
		name:    "php-breaker",
		calls:   &calls,
		accepts: onlyExt(".php"),
		err:     errors.New("cannot handle php"),
	})

	resp := htmlResponse(t, "https://example.com/index.php", "<html><head><title>T</title></head><body><h1>Hi</h1></body></html>")
	res, err := e.ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "# Hi", res.Markdown)
	assert.Equal(t, ".html", res.Extension)
}

func TestConvertResponse_FailingCandidateThenSuccess(t *testing.T) {
	var calls []string
	e := New()
	e.RegisterConverter("php-breaker", &fakeConverter{
		name:    "php-breaker",
		calls:   &calls,
		accepts: onlyExt(".php"),
		err:     errors.New("cannot handle php"),
	})

	// The override puts .php first; its failure must not leak once .html succeeds.
	resp := htmlResponse(t, "https://example.com/index.php", "<html><body><p>ok</p></body></html>")
	res, err := e.ConvertResponse(resp, ConvertHints{FileExtension: ".php"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Markdown)
	assert.Equal(t, ".html", res.Extension)
	assert.Equal(t, "php-breaker:.php", calls[0])
}

func TestConvertResponse_ContentDisposition(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Content-Type":        {"application/octet-stream"},
			"Content-Disposition": {`attachment; filename="notes.txt"`},
		},
		Body: io.NopCloser(strings.NewReader("from a download")),
	}

	res, err := New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "from a download", res.Markdown)
	assert.Equal(t, ".txt", res.Extension)
}

func TestConvertResponse_DeclaredCharset(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/plain; charset=ISO-8859-1"}},
		Body:       io.NopCloser(strings.NewReader("caf\xe9")),
	}

	res, err := New().ConvertResponse(resp, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "café", res.Markdown)
}

func TestConvertReader_RemovesTempFiles(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	res, err := New().ConvertReader(strings.NewReader("plain words"), ConvertHints{FileExtension: ".txt"})
	require.NoError(t, err)
	assert.Equal(t, "plain words", res.Markdown)

	_, err = New().ConvertReader(strings.NewReader("opaque"), ConvertHints{FileExtension: ".zzz"})
	assert.True(t, IsUnsupportedFormat(err))

	_, err = New().ConvertReader(strings.NewReader("not a pdf"), ConvertHints{FileExtension: ".pdf"})
	assert.True(t, IsConversionError(err))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertReader_PathLikeExtensionStaysInTempDir(t *testing.T) {
	tmp := t.TempDir()
	inner := filepath.Join(tmp, "inner")
	require.NoError(t, os.Mkdir(inner, 0o700))
	t.Setenv("TMPDIR", inner)

	for _, ext := range []string{"/../../escaped", `..\..\escaped`, "../escaped"} {
		res, err := New().ConvertReader(strings.NewReader("payload"), ConvertHints{FileExtension: ext})
		require.NoError(t, err, ext)
		assert.Equal(t, "payload", res.Markdown)
		assert.Equal(t, ".txt", res.Extension)
	}

	entries, err := os.ReadDir(inner)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = os.ReadDir(tmp)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inner", entries[0].Name())
}

func TestConvertFile_DoesNotSniff(t *testing.T) {
	path := writeTemp(t, "page", "<!DOCTYPE html><html><body><p>x</p></body></html>")

	_, err := New().ConvertFile(path, ConvertHints{})
	var target *UnsupportedFormatError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []string{""}, target.Extensions)
}

func TestConvertReader_SniffsWithoutHints(t *testing.T) {
	res, err := New().ConvertReader(strings.NewReader("<!DOCTYPE html><html><head><title>Sniffed</title></head><body><p>x</p></body></html>"), ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Sniffed", res.Title)
	assert.Equal(t, ".html", res.Extension)
}

func TestConvertURL(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html><head><title>T</title></head><body><h1>Hi</h1></body></html>")
	}))
	defer srv.Close()

	res, err := New().ConvertURL(context.Background(), srv.URL+"/index.php", ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "# Hi", res.Markdown)
	assert.Equal(t, DefaultUserAgent, gotUA)

	_, err = New(WithUserAgent("custom/2.0")).Convert(context.Background(), srv.URL, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "custom/2.0", gotUA)
}

func TestConvertURL_FetchFailuresAreUntyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().ConvertURL(context.Background(), srv.URL, ConvertHints{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, IsUnsupportedFormat(err))
	assert.False(t, IsConversionError(err))

	closed := httptest.NewServer(http.NotFoundHandler())
	addr := closed.URL
	closed.Close()

	_, err = New().ConvertURL(context.Background(), addr, ConvertHints{})
	require.Error(t, err)
	assert.False(t, IsUnsupportedFormat(err))
	assert.False(t, IsConversionError(err))
}

func TestConvertURL_HonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ConvertURL(ctx, srv.URL, ConvertHints{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLogger_RecordsAttempts(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := writeTemp(t, "a.txt", "x")
	_, err := New(WithLogger(logger)).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "plaintext")
}

func TestConvert_DashReadsStdin(t *testing.T) {
	path := writeTemp(t, "stdin.txt", "from standard input")
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	orig := os.Stdin
	os.Stdin = f
	t.Cleanup(func() { os.Stdin = orig })

	res, err := New().Convert(context.Background(), "-", ConvertHints{FileExtension: ".txt"})
	require.NoError(t, err)
	assert.Equal(t, "from standard input", res.Markdown)
	assert.Equal(t, ".txt", res.Extension)
}
