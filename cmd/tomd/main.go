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

// Package main is the entry point for the tomd CLI.
package main

import (
	"fmt"
	"os"

	"github.com/conductor-oss/tomd"
)

var version = "dev"

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitUnsupported = 2
	exitConversion  = 3
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the two typed dispatch failures to their own codes and
// everything else to exitError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case tomd.IsUnsupportedFormat(err):
		return exitUnsupported
	case tomd.IsConversionError(err):
		return exitConversion
	}
	return exitError
}
