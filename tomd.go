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

// Package tomd converts local files, URLs and HTTP responses into Markdown by
// trying a prioritized chain of format converters until one succeeds.
package tomd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultUserAgent is sent by ConvertURL unless WithUserAgent overrides it.
const DefaultUserAgent = "tomd/1.0 (+https://github.com/conductor-oss/tomd)"

// Engine is the document-to-markdown conversion engine. Each Engine owns its
// own Registry.
type Engine struct {
	registry     Registry
	keepDataURIs bool
	extended     bool
	client       *http.Client
	userAgent    string
	logger       *slog.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		client:    &http.Client{},
		userAgent: DefaultUserAgent,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.enableBuiltins()
	return e
}

// RegisterConverter adds a converter ahead of every converter registered before it.
func (e *Engine) RegisterConverter(name string, c DocumentConverter) {
	e.registry.InsertFirst(name, c)
}

// Converters returns the converter names in trial order.
func (e *Engine) Converters() []string {
	return e.registry.Names()
}

// Convert routes source to ConvertURL for http(s) addresses, to stdin for "-",
// and to ConvertFile otherwise.
func (e *Engine) Convert(ctx context.Context, source string, hints ConvertHints) (*ConversionResult, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return e.ConvertURL(ctx, source, hints)
	case source == "-":
		return e.ConvertReader(os.Stdin, hints)
	}
	return e.ConvertFile(source, hints)
}

// ConvertFile converts a local file to markdown.
func (e *Engine) ConvertFile(path string, hints ConvertHints) (*ConversionResult, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("open file: %s is a directory", path)
	}

	var candidates extensionCandidates
	candidates.add(hints.FileExtension)
	candidates.addPath(path)

	return e.dispatch(path, candidates, hints)
}

// ConvertURL fetches a URL and converts the response to markdown. Fetch
// failures are returned as plain wrapped errors, before any converter runs.
func (e *Engine) ConvertURL(ctx context.Context, rawURL string, hints ConvertHints) (*ConversionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch URL: unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	hints.URL = rawURL
	return e.ConvertResponse(resp, hints)
}

// ConvertResponse converts an HTTP response body. The body is written to a
// scoped temporary file that is removed on every exit path.
func (e *Engine) ConvertResponse(resp *http.Response, hints ConvertHints) (*ConversionResult, error) {
	var candidates extensionCandidates
	candidates.add(hints.FileExtension)

	ct := resp.Header.Get("Content-Type")
	candidates.addMIMEType(ct)
	if _, params, err := mime.ParseMediaType(ct); err == nil && params["charset"] != "" {
		hints = hints.withExtra("charset", params["charset"])
	}

	candidates.addContentDisposition(resp.Header.Get("Content-Disposition"))

	respURL := hints.URL
	if resp.Request != nil && resp.Request.URL != nil {
		respURL = resp.Request.URL.String()
	}
	candidates.addURL(respURL)
	if hints.URL == "" {
		hints.URL = respURL
	}

	return e.convertStream(resp.Body, candidates, hints, false)
}

// ConvertReader converts in-memory or piped content. The extension override is
// the only signal; without it the content is sniffed.
func (e *Engine) ConvertReader(r io.Reader, hints ConvertHints) (*ConversionResult, error) {
	var candidates extensionCandidates
	candidates.add(hints.FileExtension)
	return e.convertStream(r, candidates, hints, true)
}

// convertStream persists r to a uniquely named file in a fresh temp dir,
// dispatches against it and removes the dir. Cleanup errors are only logged.
func (e *Engine) convertStream(r io.Reader, candidates extensionCandidates, hints ConvertHints, sniff bool) (*ConversionResult, error) {
	dir, err := os.MkdirTemp("", "tomd-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Debug("temp cleanup failed", "dir", dir, "error", err)
		}
	}()

	name := uuid.NewString()
	if len(candidates) > 0 {
		name += filepath.Base(candidates[0])
	}
	localPath := filepath.Join(dir, name)

	f, err := os.OpenFile(localPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	if sniff {
		candidates.addSniffed(localPath)
	}
	return e.dispatch(localPath, candidates, hints)
}

// enableBuiltins registers all built-in converters. Front insertion reverses
// this order, so PDF, YouTube and Wikipedia get first refusal before the
// generic HTML converter, and plain text goes last.
func (e *Engine) enableBuiltins() {
	e.RegisterConverter("plaintext", NewPlainTextConverter())
	e.RegisterConverter("html", NewHTMLConverter(e))
	e.RegisterConverter("wikipedia", NewWikipediaConverter(e))
	e.RegisterConverter("youtube", NewYouTubeConverter())
	e.RegisterConverter("pdf", NewPdfConverter())

	if !e.extended {
		return
	}
	e.RegisterConverter("csv", NewCsvConverter())
	e.RegisterConverter("ipynb", NewIpynbConverter())
	e.RegisterConverter("rss", NewRSSConverter(e))
	e.RegisterConverter("xlsx", NewXlsxConverter())
	e.RegisterConverter("xls", NewXlsConverter())
	e.RegisterConverter("docx", NewDocxConverter(e))
	e.RegisterConverter("pptx", NewPptxConverter())
	e.RegisterConverter("epub", NewEpubConverter(e))
	e.RegisterConverter("zip", NewZipConverter(e))
}
