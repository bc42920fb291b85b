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

package taint

import (
	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
)

// callIdentifier returns the code identifier of the function called at site.
func callIdentifier(site engine.CallSite) config.CodeIdentifier {
	return config.CodeIdentifier{Context: site.Function, Class: site.Class, Method: site.Name}
}

// isMatchingCodeId returns true when the call at site matches the oracle.
func isMatchingCodeId(codeIdOracle func(config.CodeIdentifier) bool, site engine.CallSite) bool {
	return codeIdOracle(callIdentifier(site))
}

// isSourceVariable returns true when the variable name is a source of ts.
func isSourceVariable(ts *config.TaintSpec, name string) bool {
	for _, src := range ts.Sources {
		if !src.IsVariable() {
			continue
		}
		only := config.TaintSpec{Sources: []config.CodeIdentifier{src}}
		if only.IsSource(config.CodeIdentifier{Context: cfg.MainName, Variable: name}) {
			return true
		}
	}
	return false
}

func isSourceCall(ts *config.TaintSpec, site engine.CallSite) bool {
	return isMatchingCodeId(ts.IsSource, site)
}

func isSink(ts *config.TaintSpec, site engine.CallSite) bool {
	return isMatchingCodeId(ts.IsSink, site)
}

func isSanitizer(ts *config.TaintSpec, site engine.CallSite) bool {
	return isMatchingCodeId(ts.IsSanitizer, site)
}
