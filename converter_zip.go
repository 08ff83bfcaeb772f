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
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ZipConverter handles ZIP files by converting each entry through the engine.
type ZipConverter struct {
	engine *Engine
}

// NewZipConverter creates a new ZipConverter.
func NewZipConverter(e *Engine) *ZipConverter {
	return &ZipConverter{engine: e}
}

func (c *ZipConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".zip"
}

func (c *ZipConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	if c.engine == nil {
		return nil, errors.New("zip converter has no engine")
	}

	zr, err := zip.OpenReader(localPath)
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}
	defer zr.Close()

	dir, err := os.MkdirTemp("", "tomd-zip-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var md strings.Builder
	fmt.Fprintf(&md, "Content from the zip file `%s`:\n\n", filepath.Base(localPath))

	for i, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// Entries are flattened under numbered names so hostile paths cannot
		// escape the temp dir.
		entryPath := filepath.Join(dir, fmt.Sprintf("%d-%s", i, path.Base(f.Name)))
		if err := extractZipEntry(f, entryPath); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}

		result, err := c.engine.ConvertFile(entryPath, ConvertHints{})
		if err != nil {
			c.engine.logger.Debug("zip entry skipped", "entry", f.Name, "error", err)
			continue
		}
		if strings.TrimSpace(result.Markdown) == "" {
			continue
		}
		fmt.Fprintf(&md, "## File: %s\n\n%s\n\n", f.Name, result.Markdown)
	}

	return &ConversionResult{Markdown: md.String()}, nil
}

func extractZipEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
