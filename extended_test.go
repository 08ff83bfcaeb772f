package tomd

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExtendedConverters_OptIn(t *testing.T) {
	path := writeTemp(t, "book.ipynb", `{"cells":[]}`)

	_, err := New().ConvertFile(path, ConvertHints{})
	assert.True(t, IsUnsupportedFormat(err))

	_, err = New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	assert.NoError(t, err)
}

func TestCsvConverter(t *testing.T) {
	path := writeTemp(t, "people.csv", "name,age\nAda,36\nBob\n")

	res, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "| name | age |\n| --- | --- |\n| Ada | 36 |\n| Bob |  |\n", res.Markdown)
	assert.Equal(t, ".csv", res.Extension)
}

func TestRenderMarkdownTable_TruncatesLongRows(t *testing.T) {
	out := renderMarkdownTable([][]string{{"a"}, {"1", "2"}})
	assert.Equal(t, "| a |\n| --- |\n| 1 |\n", out)
	assert.Equal(t, "", renderMarkdownTable(nil))
}

func TestIpynbConverter(t *testing.T) {
	path := writeTemp(t, "analysis.ipynb", `{
  "metadata": {"kernelspec": {"language": "python"}},
  "cells": [
    {"cell_type": "markdown", "source": ["# Analysis\n", "Some intro."]},
    {"cell_type": "code", "source": "print(1)"},
    {"cell_type": "raw", "source": ["raw text"]}
  ]
}`)

	res, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Analysis", res.Title)
	assert.Equal(t, "# Analysis\nSome intro.\n\n```python\nprint(1)\n```\n\n```\nraw text\n```", res.Markdown)
}

func TestIpynbConverter_MetadataTitleAndBadJSON(t *testing.T) {
	c := NewIpynbConverter()

	path := writeTemp(t, "t.ipynb", `{"metadata":{"title":"Named"},"cells":[{"cell_type":"markdown","source":"# Other"}]}`)
	res, err := c.Convert(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Named", res.Title)

	bad := writeTemp(t, "bad.ipynb", `{"cells": [`)
	_, err = c.Convert(bad, ConvertHints{})
	assert.Error(t, err)
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Gopher News</title>
<description>Weekly updates</description>
<item>
<title>Release day</title>
<pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
<description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
</item>
</channel></rss>`

func TestRSSConverter_SniffsXML(t *testing.T) {
	path := writeTemp(t, "feed.xml", rssFeed)

	res, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "Gopher News", res.Title)
	assert.Contains(t, res.Markdown, "# Gopher News\nWeekly updates\n")
	assert.Contains(t, res.Markdown, "## Release day\nPublished on: Mon, 02 Jan 2006 15:04:05 GMT\nHello **world**")
}

func TestRSSConverter_PlainXMLFallsThrough(t *testing.T) {
	path := writeTemp(t, "note.xml", "<note>hi</note>")

	res, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "<note>hi</note>", res.Markdown)
}

func TestXlsxConverter(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Part"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Qty"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Bolt"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 3))
	path := filepath.Join(t.TempDir(), "parts.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Equal(t, "## Sheet1\n| Part | Qty |\n| --- | --- |\n| Bolt | 3 |\n\n", res.Markdown)
}

func TestXlsConverter_RejectsGarbage(t *testing.T) {
	path := writeTemp(t, "old.xls", "definitely not BIFF")

	_, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.Error(t, err)
	assert.True(t, IsConversionError(err))
}

func TestZipConverter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for name, body := range map[string]string{
		"docs/":          "",
		"docs/a.txt":     "alpha",
		"../escape.html": "<p>beta</p>",
		"blob.zzz":       "opaque",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	res, err := New(WithExtendedConverters()).ConvertFile(path, ConvertHints{})
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "Content from the zip file `bundle.zip`:")
	assert.Contains(t, res.Markdown, "## File: docs/a.txt\n\nalpha")
	assert.Contains(t, res.Markdown, "## File: ../escape.html\n\nbeta")
	assert.NotContains(t, res.Markdown, "blob.zzz")

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "..", "escape.html"))
	assert.True(t, os.IsNotExist(err))
}
