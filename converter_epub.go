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
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/conductor-oss/tomd/internal/ooxml"
)

// EpubConverter handles EPUB books: a metadata block followed by the spine
// documents in reading order.
type EpubConverter struct {
	html *HTMLConverter
}

// NewEpubConverter creates a new EpubConverter.
func NewEpubConverter(e *Engine) *EpubConverter {
	return &EpubConverter{html: NewHTMLConverter(e)}
}

func (c *EpubConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".epub"
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Title       []string `xml:"title"`
		Creators    []string `xml:"creator"`
		Language    string   `xml:"language"`
		Publisher   string   `xml:"publisher"`
		Date        string   `xml:"date"`
		Description string   `xml:"description"`
	} `xml:"metadata"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

func (c *EpubConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	pkg, err := ooxml.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}
	defer pkg.Close()

	opfPath, err := epubRootfile(pkg)
	if err != nil {
		return nil, err
	}
	data, err := pkg.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("read EPUB package: %w", err)
	}
	var opf epubPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, fmt.Errorf("decode EPUB package: %w", err)
	}

	meta := opf.Metadata
	var title string
	if len(meta.Title) > 0 {
		title = strings.TrimSpace(meta.Title[0])
	}
	var authors []string
	for _, a := range meta.Creators {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	var md strings.Builder
	if title != "" {
		fmt.Fprintf(&md, "# %s\n\n", title)
	}
	for _, field := range []struct{ label, value string }{
		{"Authors", strings.Join(authors, ", ")},
		{"Language", meta.Language},
		{"Publisher", meta.Publisher},
		{"Date", meta.Date},
		{"Description", meta.Description},
	} {
		if v := strings.TrimSpace(field.value); v != "" {
			fmt.Fprintf(&md, "**%s:** %s\n\n", field.label, v)
		}
	}

	hrefs := make(map[string]string, len(opf.Manifest))
	for _, item := range opf.Manifest {
		if strings.Contains(item.MediaType, "html") {
			hrefs[item.ID] = item.Href
		}
	}
	for _, ref := range opf.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		if unescaped, err := url.PathUnescape(href); err == nil {
			href = unescaped
		}
		part := ooxml.ResolveTarget(opfPath, href)
		chapter, err := pkg.ReadFile(part)
		if err != nil {
			return nil, fmt.Errorf("read EPUB chapter %s: %w", part, err)
		}
		result, err := c.html.ConvertString(string(chapter))
		if err != nil {
			return nil, fmt.Errorf("convert EPUB chapter %s: %w", part, err)
		}
		if strings.TrimSpace(result.Markdown) != "" {
			md.WriteString(result.Markdown + "\n\n")
		}
	}

	return &ConversionResult{
		Title:    title,
		Markdown: md.String(),
		Metadata: Metadata{Author: strings.Join(authors, ", ")},
	}, nil
}

// epubRootfile returns the package document named by META-INF/container.xml.
func epubRootfile(pkg *ooxml.Package) (string, error) {
	data, err := pkg.ReadFile("META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("read EPUB container: %w", err)
	}
	var container epubContainer
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("decode EPUB container: %w", err)
	}
	for _, rf := range container.Rootfiles {
		if rf.FullPath != "" {
			return strings.TrimPrefix(rf.FullPath, "/"), nil
		}
	}
	return "", errors.New("read EPUB container: no rootfile")
}
