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
	"errors"
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when every converter declined every candidate extension.
type UnsupportedFormatError struct {
	// Extensions lists the attempted candidates in trial order. The final ""
	// entry is the "no extension" trial.
	Extensions []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: no converter accepted extensions %s", formatExtensions(e.Extensions))
}

// FailedConversionAttempt records a converter that accepted but failed.
type FailedConversionAttempt struct {
	Converter string
	Extension string
	Err       error
}

// ConversionError is returned when at least one converter failed and none succeeded.
type ConversionError struct {
	Attempts   []FailedConversionAttempt
	Extensions []string
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "conversion failed after %d attempt(s) over extensions %s:", len(e.Attempts), formatExtensions(e.Extensions))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s (%s): %v", a.Converter, extensionLabel(a.Extension), a.Err)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsConversionError reports whether the error is a ConversionError.
func IsConversionError(err error) bool {
	var target *ConversionError
	return errors.As(err, &target)
}

func extensionLabel(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return ext
}

func formatExtensions(exts []string) string {
	labels := make([]string, len(exts))
	for i, ext := range exts {
		labels[i] = extensionLabel(ext)
	}
	return "[" + strings.Join(labels, ", ") + "]"
}
