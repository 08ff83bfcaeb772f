package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/conductor-oss/tomd"
)

// frontMatter fields are emitted in declaration order.
type frontMatter struct {
	ConvertedAt   string `yaml:"converted_at"`
	Title         string `yaml:"title,omitempty"`
	URL           string `yaml:"url,omitempty"`
	Source        string `yaml:"source,omitempty"`
	FileExtension string `yaml:"file_extension,omitempty"`
	Pages         int    `yaml:"pages,omitempty"`
	Author        string `yaml:"author,omitempty"`
	Creator       string `yaml:"creator,omitempty"`
	Producer      string `yaml:"producer,omitempty"`
}

// renderFrontMatter returns a "---" delimited YAML block followed by a blank line.
func renderFrontMatter(source, extension string, result *tomd.ConversionResult, now time.Time) (string, error) {
	fm := frontMatter{
		ConvertedAt:   now.UTC().Format(time.RFC3339),
		Title:         result.Title,
		FileExtension: result.Extension,
		Pages:         result.Metadata.Pages,
		Author:        result.Metadata.Author,
		Creator:       result.Metadata.Creator,
		Producer:      result.Metadata.Producer,
	}
	if fm.FileExtension == "" {
		fm.FileExtension = extension
	}

	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		fm.URL = source
	case source == "-":
		fm.Source = "stdin"
	default:
		if abs, err := filepath.Abs(source); err == nil {
			source = abs
		}
		fm.Source = source
	}

	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("render front matter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n", nil
}
