// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package formatutil colors the output of the command-line tools.
package formatutil

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// Colors of the output. They apply only when standard output is a terminal, NO_COLOR is unset and
// Disable has not been called.
var (
	Bold   = Color("\033[1m%s\033[0m")
	Faint  = Color("\033[2m%s\033[0m")
	Red    = Color("\033[1;31m%s\033[0m")
	Green  = Color("\033[1;32m%s\033[0m")
	Yellow = Color("\033[1;33m%s\033[0m")
	Cyan   = Color("\033[1;36m%s\033[0m")
)

var disabled atomic.Bool

// Disable turns the colors off for the rest of the process.
func Disable() { disabled.Store(true) }

// Enabled returns true when colors apply.
func Enabled() bool {
	if disabled.Load() {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Color returns a function formatting its arguments like fmt.Sprint inside colorString.
func Color(colorString string) func(...interface{}) string {
	return func(args ...interface{}) string {
		if Enabled() {
			return fmt.Sprintf(colorString, fmt.Sprint(args...))
		}
		return fmt.Sprint(args...)
	}
}

// Sanitize escapes the control characters of s, so that strings from the analyzed program can be
// printed safely.
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	return r[1 : len(r)-1]
}
