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

package formatutil

import "testing"

func TestDisable(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatalf("colors should be disabled")
	}
	if got := Red("sink"); got != "sink" {
		t.Errorf("disabled colors should print plain text, got %q", got)
	}
}

func TestSanitize(t *testing.T) {
	for in, want := range map[string]string{
		"plain":       "plain",
		"a\nb":        `a\nb`,
		"\x1b[31mred": `\x1b[31mred`,
		`quote"`:      `quote\"`,
	} {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
