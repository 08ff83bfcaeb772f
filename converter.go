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

import "maps"

// ConvertHints carries the signals a converter may use to decide whether it applies.
type ConvertHints struct {
	// FileExtension is the candidate extension for the current trial, e.g. ".html".
	// Empty means "no extension".
	FileExtension string
	// URL is the address the content was fetched from, if any.
	URL string
	// Extra holds options forwarded verbatim to converters.
	Extra map[string]any
}

// withExtension returns a copy of h with FileExtension replaced. The caller's
// hints are never modified.
func (h ConvertHints) withExtension(ext string) ConvertHints {
	out := h
	out.FileExtension = ext
	out.Extra = maps.Clone(h.Extra)
	return out
}

// withExtra returns a copy of h with Extra[key] set to v.
func (h ConvertHints) withExtra(key string, v any) ConvertHints {
	out := h
	out.Extra = maps.Clone(h.Extra)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra[key] = v
	return out
}

// extraString returns the string value stored under key in Extra, or "".
func (h ConvertHints) extraString(key string) string {
	if h.Extra == nil {
		return ""
	}
	s, _ := h.Extra[key].(string)
	return s
}

// Metadata holds optional document properties reported by some converters.
type Metadata struct {
	Pages    int
	Author   string
	Creator  string
	Producer string
}

// ConversionResult holds the output of a conversion.
type ConversionResult struct {
	Title    string
	Markdown string
	// Extension is the candidate extension the winning converter ran under.
	Extension string
	Metadata  Metadata
}

// DocumentConverter is the interface all format converters implement.
type DocumentConverter interface {
	// Accepts reports whether this converter applies to the input. It must be
	// cheap and free of side effects; returning false is a decline, never a failure.
	Accepts(localPath string, hints ConvertHints) bool

	// Convert performs the conversion of the file at localPath. An error means the
	// converter committed to the input and hit a genuine parse or IO failure.
	Convert(localPath string, hints ConvertHints) (*ConversionResult, error)
}
