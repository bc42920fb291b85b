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

package tools

import (
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint %q for %q; check and update error message if necessary", hint, errorMsg)
	}
}

func TestHintForFlagAfterFiles(t *testing.T) {
	errorMsg := "error: could not load program: could not read -verbose: open -verbose: no such file or directory"
	validateHint(t, errorMsg, "all command line flags should be before the paths")
}

func TestHintForMissingFiles(t *testing.T) {
	validateHint(t, "error: could not load program: no file to load", "provide the paths of the PHP files")
}

func TestHintForFailedLoadProgram(t *testing.T) {
	errorMsg := "error: could not load program: could not read index.php: open index.php: permission denied"
	validateHint(t, errorMsg, "readable PHP files")
}

func TestHintForNonConvergence(t *testing.T) {
	errorMsg := "analysis did not converge after 100000 iterations; hottest points: p3 join (4000)"
	validateHint(t, errorMsg, "raise max-iterations")
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("taint analysis found 2 flows"); hint != "" {
		t.Errorf("unexpected hint %q", hint)
	}
}
