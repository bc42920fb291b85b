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

import "regexp"

var regexCouldNotLoad = regexp.MustCompile("could not load program")

var noFileToLoad = regexp.MustCompile("no file to load")

var flagAfterFiles = regexp.MustCompile(`could not read -\w+`)

var notConverged = regexp.MustCompile("did not converge after")

var deadlineExceeded = regexp.MustCompile("context deadline exceeded")

// HintForErrorMessage returns a hint to help the user fix the error described by errMsg, or an
// empty string.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if flagAfterFiles.MatchString(errMsg) {
			return "all command line flags should be before the paths to the PHP files to analyze"
		}
		if noFileToLoad.MatchString(errMsg) {
			return "provide the paths of the PHP files to analyze after the options"
		}
		return "make sure the paths lead to readable PHP files"
	}
	if notConverged.MatchString(errMsg) {
		return "raise max-iterations, or lower widening-limit in the config so that loops are widened sooner"
	}
	if deadlineExceeded.MatchString(errMsg) {
		return "the analysis was stopped by -timeout; raise it or lower call-context-depth in the config"
	}
	return ""
}
