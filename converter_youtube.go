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
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const youTubeWatchPrefix = "https://www.youtube.com/watch?"

// maxJSONSearchDepth bounds the walk over the embedded player data.
const maxJSONSearchDepth = 64

// YouTubeConverter summarizes YouTube watch pages from their meta tags. It
// never fetches transcripts.
type YouTubeConverter struct{}

// NewYouTubeConverter creates a new YouTubeConverter.
func NewYouTubeConverter() *YouTubeConverter {
	return &YouTubeConverter{}
}

func (c *YouTubeConverter) Accepts(_ string, hints ConvertHints) bool {
	return isHTMLExtension(hints.FileExtension) && strings.HasPrefix(hints.URL, youTubeWatchPrefix)
}

func (c *YouTubeConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())
	meta := map[string]string{"title": pageTitle}
	scrapeMetaTags(doc, meta)
	if desc := embeddedDescription(doc); desc != "" {
		meta["description"] = desc
	}

	var b strings.Builder
	b.WriteString("# YouTube\n")

	title := firstMeta(meta, "title", "og:title", "name")
	if title != "" {
		fmt.Fprintf(&b, "\n## %s\n", title)
	}

	var stats strings.Builder
	if views := firstMeta(meta, "interactionCount"); views != "" {
		fmt.Fprintf(&stats, "- **Views:** %s\n", views)
	}
	if keywords := firstMeta(meta, "keywords"); keywords != "" {
		fmt.Fprintf(&stats, "- **Keywords:** %s\n", keywords)
	}
	if runtime := firstMeta(meta, "duration"); runtime != "" {
		fmt.Fprintf(&stats, "- **Runtime:** %s\n", runtime)
	}
	if stats.Len() > 0 {
		fmt.Fprintf(&b, "\n### Video Metadata\n%s\n", stats.String())
	}

	if desc := firstMeta(meta, "description", "og:description"); desc != "" {
		fmt.Fprintf(&b, "\n### Description\n%s\n", desc)
	}

	if title == "" {
		title = pageTitle
	}
	return &ConversionResult{
		Title:    title,
		Markdown: b.String(),
	}, nil
}

// scrapeMetaTags maps each <meta> tag's itemprop, property or name (first one
// present) to its content. Later tags overwrite earlier ones.
func scrapeMetaTags(doc *goquery.Document, meta map[string]string) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"itemprop", "property", "name"} {
			if key, ok := s.Attr(attr); ok {
				meta[key] = s.AttrOr("content", "")
				return
			}
		}
	})
}

// firstMeta returns the first non-empty value among keys.
func firstMeta(meta map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := meta[k]; v != "" {
			return v
		}
	}
	return ""
}

// embeddedDescription digs the full description out of the ytInitialData
// script. Any parse problem yields "".
func embeddedDescription(doc *goquery.Document) string {
	var desc string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		if !strings.Contains(content, "ytInitialData") {
			return true
		}
		line := reLineBreak.Split(content, 2)[0]
		start := strings.Index(line, "{")
		end := strings.LastIndex(line, "}")
		if start >= 0 && end > start {
			var data any
			if err := json.Unmarshal([]byte(line[start:end+1]), &data); err == nil {
				if found, ok := findJSONKey(data, "attributedDescriptionBodyText", maxJSONSearchDepth); ok {
					desc = jsonContentString(found)
				}
			}
		}
		return false
	})
	return desc
}

// findJSONKey walks a decoded JSON tree depth-first and returns the value of the
// first object member named key. Objects, arrays and scalars are the only
// shapes encoding/json produces for an `any` target.
//
// Decoded objects lose their member order, so siblings are visited in sorted
// key order. When key occurs under several members the match is stable across
// runs but may not be the one that comes first in the source document.
func findJSONKey(v any, key string, depth int) (any, bool) {
	if depth <= 0 {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		if found, ok := t[key]; ok {
			return found, true
		}
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if found, ok := findJSONKey(t[k], key, depth-1); ok {
				return found, true
			}
		}
	case []any:
		for _, child := range t {
			if found, ok := findJSONKey(child, key, depth-1); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// jsonContentString renders the "content" member of an attributed text node.
func jsonContentString(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	switch c := obj["content"].(type) {
	case string:
		return c
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
