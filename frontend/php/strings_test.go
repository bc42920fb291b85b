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

package php

import (
	"testing"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/google/go-cmp/cmp"
)

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`plain`:       "plain",
		`a\nb`:        "a\nb",
		`\t\$x\"`:     "\t$x\"",
		`\101\x42`:    "AB",
		`\u{1F600}`:   "\U0001F600",
		`keep \d \q`:  `keep \d \q`,
		`trailing \`:  `trailing \`,
		`\\n literal`: `\n literal`,
	}
	for in, want := range tests {
		if got := unescape(in); got != want {
			t.Errorf("unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoted(t *testing.T) {
	tests := map[string]string{
		`'it\'s'`:   "it's",
		`'a\\b\n'`:  `a\b\n`,
		`"a\tb"`:    "a\tb",
		`b'binary'`: "binary",
		`''`:        "",
	}
	for in, want := range tests {
		if got := quoted(in); got != want {
			t.Errorf("quoted(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestIntLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want *cfg.Literal
	}{
		{"42", cfg.NewInt(42)},
		{"0x1F", cfg.NewInt(31)},
		{"0b101", cfg.NewInt(5)},
		{"0755", cfg.NewInt(493)},
		{"0o17", cfg.NewInt(15)},
		{"1_000", cfg.NewInt(1000)},
		{"9223372036854775808", cfg.NewFloat(9223372036854775808)},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, intLiteral(tt.in)); diff != "" {
			t.Errorf("intLiteral(%s) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestClassName(t *testing.T) {
	for in, want := range map[string]string{`Foo`: "Foo", `\App\Models\User`: "User", ` parent `: "parent"} {
		if got := className(in); got != want {
			t.Errorf("className(%q) = %q, want %q", in, got, want)
		}
	}
}
