package tomd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
)

// feedSniffLen is how much of an .xml file is inspected for a feed root.
const feedSniffLen = 4096

// RSSConverter handles RSS and Atom feed files.
type RSSConverter struct {
	html *HTMLConverter
}

// NewRSSConverter creates a new RSSConverter. The engine may be nil.
func NewRSSConverter(e *Engine) *RSSConverter {
	return &RSSConverter{html: NewHTMLConverter(e)}
}

func (c *RSSConverter) Accepts(localPath string, hints ConvertHints) bool {
	switch hints.FileExtension {
	case ".rss", ".atom":
		return true
	case ".xml":
		return looksLikeFeed(localPath)
	}
	return false
}

// looksLikeFeed reports whether the head of the file mentions an <rss> or
// <feed> element.
func looksLikeFeed(localPath string) bool {
	f, err := os.Open(localPath)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, feedSniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	head = head[:n]
	return bytes.Contains(head, []byte("<rss")) || bytes.Contains(head, []byte("<feed"))
}

func (c *RSSConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n", c.toMarkdown(feed.Description))
	}
	b.WriteString("\n")

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n", item.Title)
		}
		switch {
		case item.Published != "":
			fmt.Fprintf(&b, "Published on: %s\n", item.Published)
		case item.Updated != "":
			fmt.Fprintf(&b, "Updated on: %s\n", item.Updated)
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content != "" {
			b.WriteString(c.toMarkdown(content))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return &ConversionResult{
		Title:    feed.Title,
		Markdown: b.String(),
	}, nil
}

// toMarkdown renders s through the HTML converter when it looks like markup.
func (c *RSSConverter) toMarkdown(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}
	res, err := c.html.ConvertString(s)
	if err != nil {
		return s
	}
	return res.Markdown
}
