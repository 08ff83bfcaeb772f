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
	"os"
	"strings"
)

// IpynbConverter handles Jupyter notebook files.
type IpynbConverter struct{}

// NewIpynbConverter creates a new IpynbConverter.
func NewIpynbConverter() *IpynbConverter {
	return &IpynbConverter{}
}

func (c *IpynbConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".ipynb"
}

type notebook struct {
	Metadata struct {
		Title      string `json:"title"`
		KernelSpec *struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   multilineString `json:"source"`
}

// multilineString accepts both a JSON string and an array of strings.
type multilineString string

func (m *multilineString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multilineString(s)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	*m = multilineString(strings.Join(parts, ""))
	return nil
}

func (c *IpynbConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook JSON: %w", err)
	}

	language := "python"
	if ks := nb.Metadata.KernelSpec; ks != nil && ks.Language != "" {
		language = ks.Language
	}

	title := nb.Metadata.Title
	var sections []string
	for _, cell := range nb.Cells {
		source := string(cell.Source)
		switch cell.CellType {
		case "markdown":
			sections = append(sections, source)
			if title == "" {
				title = firstHeading(source)
			}
		case "code":
			sections = append(sections, fmt.Sprintf("```%s\n%s\n```", language, source))
		case "raw":
			sections = append(sections, fmt.Sprintf("```\n%s\n```", source))
		}
	}

	return &ConversionResult{
		Title:    title,
		Markdown: strings.Join(sections, "\n\n"),
	}, nil
}

// firstHeading returns the text of the first level-1 ATX heading in md.
func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
