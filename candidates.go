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
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionCandidates is the ordered list of extension hints the dispatch loop
// walks. The "no extension" trial is not stored here.
//
// Repeats are dropped even when they come from different sources. Retrying a
// hint that was already tried cannot change the outcome, so only the first
// occurrence is kept.
type extensionCandidates []string

// add appends ext after normalizing it. Empty, unsafe and repeated values are
// dropped.
func (c *extensionCandidates) add(ext string) {
	ext = normalizeExtension(ext)
	if ext == "" || slices.Contains(*c, ext) {
		return
	}
	*c = append(*c, ext)
}

// addPath appends the suffix of a file name or path.
func (c *extensionCandidates) addPath(p string) {
	c.add(filepath.Ext(p))
}

// addMIMEType appends the extension registered for a declared content type.
func (c *extensionCandidates) addMIMEType(contentType string) {
	c.add(extensionFromMIME(contentType))
}

// addContentDisposition appends the suffix of the filename parameter.
func (c *extensionCandidates) addContentDisposition(header string) {
	if header == "" {
		return
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return
	}
	c.addPath(params["filename"])
}

// addURL appends the suffix of the URL path, ignoring query and fragment.
func (c *extensionCandidates) addURL(rawURL string) {
	if rawURL == "" {
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	c.add(path.Ext(u.Path))
}

// addSniffed appends the extension detected from content, but only when no
// other signal produced a candidate. Only piped input uses it.
func (c *extensionCandidates) addSniffed(localPath string) {
	if len(*c) > 0 {
		return
	}
	mt, err := mimetype.DetectFile(localPath)
	if err != nil || mt.Is("application/octet-stream") {
		return
	}
	c.add(mt.Extension())
}

// trials returns the candidates followed by the "no extension" sentinel.
func (c extensionCandidates) trials() []string {
	return append(slices.Clone(c), "")
}

// normalizeExtension trims, lower-cases and dot-prefixes ext. Values that
// could act as a path (separators or "..") are rejected, since candidates end
// up in temp file names.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if strings.ContainsAny(ext, `/\`) || strings.Contains(ext, "..") {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// extensionFromMIME maps a content type (parameters allowed) to an extension.
func extensionFromMIME(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "" {
		return ""
	}
	if ext, ok := mimeExtensions[mediaType]; ok {
		return ext
	}
	if mt := mimetype.Lookup(mediaType); mt != nil {
		return mt.Extension()
	}
	return ""
}

// mimeFromExtension returns a MIME type for an extension, or "" when unknown.
func mimeFromExtension(ext string) string {
	if t, ok := extensionMIMEOverrides[ext]; ok {
		return t
	}
	for m, e := range mimeExtensions {
		if e == ext {
			return m
		}
	}
	if t := mime.TypeByExtension(ext); t != "" {
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType
		}
	}
	return ""
}

// mimeExtensions covers types where the preferred extension differs from what
// mimetype reports, or that mimetype does not know.
var mimeExtensions = map[string]string{
	"text/html":             ".html",
	"application/xhtml+xml": ".html",
	"text/plain":            ".txt",
	"text/markdown":         ".md",
	"text/x-markdown":       ".md",
	"text/csv":              ".csv",
	"application/csv":       ".csv",
	"application/pdf":       ".pdf",
	"application/json":      ".json",
	"application/rss+xml":   ".rss",
	"application/atom+xml":  ".atom",
	"text/xml":              ".xml",
	"application/xml":       ".xml",
	"application/zip":       ".zip",

	"application/vnd.ms-excel": ".xls",
	"application/x-ipynb+json": ".ipynb",

	"application/epub+zip":     ".epub",

	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// extensionMIMEOverrides pins the MIME type for extensions that appear under
// several types above, plus a few the platform tables often lack.
var extensionMIMEOverrides = map[string]string{
	".html":     "text/html",
	".htm":      "text/html",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".csv":      "text/csv",
	".xml":      "text/xml",
	".txt":      "text/plain",
	".text":     "text/plain",
}
