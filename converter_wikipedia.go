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
	"os"
	"regexp"
	"strings"
)

var reWikipediaURL = regexp.MustCompile(`^https?://[a-zA-Z]{2,3}\.wikipedia\.org/`)

// WikipediaConverter renders only the article heading and main content of
// Wikipedia pages.
type WikipediaConverter struct {
	html *HTMLConverter
}

// NewWikipediaConverter creates a new WikipediaConverter. The engine may be nil.
func NewWikipediaConverter(e *Engine) *WikipediaConverter {
	return &WikipediaConverter{html: NewHTMLConverter(e)}
}

func (c *WikipediaConverter) Accepts(_ string, hints ConvertHints) bool {
	return isHTMLExtension(hints.FileExtension) && reWikipediaURL.MatchString(hints.URL)
}

func (c *WikipediaConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	doc, err := parseHTMLDocument(string(data))
	if err != nil {
		return nil, err
	}

	title := documentTitle(doc)
	body := doc.Find("div#mw-content-text").First()
	if body.Length() == 0 {
		md, err := c.html.render(doc.Selection)
		if err != nil {
			return nil, err
		}
		return &ConversionResult{Title: title, Markdown: md}, nil
	}

	if heading := strings.TrimSpace(doc.Find("span.mw-page-title-main").First().Text()); heading != "" {
		title = heading
	}

	md, err := c.html.render(body)
	if err != nil {
		return nil, err
	}

	return &ConversionResult{
		Title:    title,
		Markdown: fmt.Sprintf("# %s\n\n%s", title, md),
	}, nil
}
