package tomd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, ".pdf", normalizeExtension("pdf"))
	assert.Equal(t, ".pdf", normalizeExtension(" .PDF "))
	assert.Equal(t, "", normalizeExtension(""))
	assert.Equal(t, "", normalizeExtension("."))
	assert.Equal(t, "", normalizeExtension("/../../x"))
	assert.Equal(t, "", normalizeExtension(`..\\x`))
	assert.Equal(t, "", normalizeExtension("a/b"))
	assert.Equal(t, "", normalizeExtension(".."))
}

func TestExtensionCandidates_Order(t *testing.T) {
	var c extensionCandidates
	c.add("MD")
	c.addMIMEType("text/html; charset=utf-8")
	c.addContentDisposition(`attachment; filename="report.PDF"`)
	c.addURL("https://example.com/index.php?x=1")
	c.addURL("https://example.com/again.html")

	assert.Equal(t, extensionCandidates{".md", ".html", ".pdf", ".php"}, c)
	assert.Equal(t, []string{".md", ".html", ".pdf", ".php", ""}, c.trials())
	// trials must not alias the receiver.
	assert.Len(t, c, 4)
}

func TestExtensionCandidates_IgnoresJunk(t *testing.T) {
	var c extensionCandidates
	c.addMIMEType("")
	c.addContentDisposition("")
	c.addContentDisposition("not a header;;;")
	c.addURL("")
	c.addURL("https://example.com/")
	c.addPath("Makefile")

	assert.Empty(t, c)
	assert.Equal(t, []string{""}, c.trials())
}

func TestExtensionCandidates_SniffOnlyWithoutSignals(t *testing.T) {
	path := writeTemp(t, "noext", "%PDF-1.4\n%âãÏÓ\n")

	var sniffed extensionCandidates
	sniffed.addSniffed(path)
	assert.Equal(t, extensionCandidates{".pdf"}, sniffed)

	have := extensionCandidates{".zzz"}
	have.addSniffed(path)
	assert.Equal(t, extensionCandidates{".zzz"}, have)
}

func TestExtensionFromMIME(t *testing.T) {
	assert.Equal(t, ".html", extensionFromMIME("text/html"))
	assert.Equal(t, ".html", extensionFromMIME("TEXT/HTML; charset=ISO-8859-1"))
	assert.Equal(t, ".pdf", extensionFromMIME("application/pdf"))
	assert.Equal(t, ".rss", extensionFromMIME("application/rss+xml"))
	assert.Equal(t, "", extensionFromMIME("application/x-unknown-thing"))
}

func TestMimeFromExtension(t *testing.T) {
	assert.Equal(t, "text/html", mimeFromExtension(".htm"))
	assert.Equal(t, "text/markdown", mimeFromExtension(".md"))
	assert.Equal(t, "application/json", mimeFromExtension(".json"))
	assert.Equal(t, "application/pdf", mimeFromExtension(".pdf"))
	assert.Equal(t, "", mimeFromExtension(".zzz"))
}
