// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package tomd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLConverter handles HTML files.
type HTMLConverter struct {
	engine *Engine
}

// NewHTMLConverter creates a new HTMLConverter. The engine may be nil.
func NewHTMLConverter(e *Engine) *HTMLConverter {
	return &HTMLConverter{engine: e}
}

func (c *HTMLConverter) Accepts(_ string, hints ConvertHints) bool {
	return isHTMLExtension(hints.FileExtension)
}

func (c *HTMLConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return c.ConvertString(string(data))
}

// ConvertString converts an HTML string to markdown. The <body> is rendered
// when present, the whole document otherwise.
func (c *HTMLConverter) ConvertString(htmlStr string) (*ConversionResult, error) {
	doc, err := parseHTMLDocument(htmlStr)
	if err != nil {
		return nil, err
	}

	content := doc.Find("body").First()
	if content.Length() == 0 {
		content = doc.Selection
	}

	md, err := c.render(content)
	if err != nil {
		return nil, err
	}

	return &ConversionResult{
		Title:    documentTitle(doc),
		Markdown: md,
	}, nil
}

// render converts the first node of sel to markdown.
func (c *HTMLConverter) render(sel *goquery.Selection) (string, error) {
	fragment, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", fmt.Errorf("serialize HTML: %w", err)
	}
	md, err := c.markdownConverter().ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return md, nil
}

// markdownConverter builds a fresh html-to-markdown converter. Renderer state is
// not shared between calls.
func (c *HTMLConverter) markdownConverter() *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	conv.Register.RendererFor("a", converter.TagTypeInline, renderLink, converter.PriorityEarly)
	if !c.keepDataURIs() {
		conv.Register.RendererFor("img", converter.TagTypeInline, truncateImageDataURI, converter.PriorityEarly)
	}
	return conv
}

func (c *HTMLConverter) keepDataURIs() bool {
	return c.engine != nil && c.engine.keepDataURIs
}

// renderLink writes only the link text for schemes other than http, https and
// file. Everything else falls through to the commonmark renderer, which keeps
// titles.
func renderLink(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	href := strings.TrimSpace(nodeAttr(n, "href"))
	if href == "" || isAllowedLinkTarget(href) {
		return converter.RenderTryNext
	}
	ctx.RenderChildNodes(ctx, w, n)
	return converter.RenderSuccess
}

func isAllowedLinkTarget(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "file":
		return true
	}
	return false
}

// truncateImageDataURI rewrites an inline data: src to its header plus "..."
// and lets the commonmark renderer emit the image.
func truncateImageDataURI(_ converter.Context, _ converter.Writer, n *html.Node) converter.RenderStatus {
	for i, a := range n.Attr {
		if a.Key == "src" && strings.HasPrefix(a.Val, "data:") {
			head, _, _ := strings.Cut(a.Val, ",")
			n.Attr[i].Val = head + "..."
		}
	}
	return converter.RenderTryNext
}

// parseHTMLDocument parses htmlStr and drops <script> and <style> elements.
func parseHTMLDocument(htmlStr string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	doc.Find("script, style").Remove()
	return doc, nil
}

// documentTitle returns the trimmed text of the first <title> element.
func documentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isHTMLExtension(ext string) bool {
	switch ext {
	case ".html", ".htm":
		return true
	}
	return false
}
