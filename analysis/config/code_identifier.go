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

package config

import (
	"regexp"
	"strings"
)

// CodeIdentifier identifies a code element that is a source, sink or sanitizer.
// The fields are regexes when they compile to regexes, strings otherwise; an empty field matches anything.
type CodeIdentifier struct {
	// Context is the function in which the element appears, main script being {main}
	Context string
	// Class is the class of a method
	Class string
	// Method is the name of a function or a method. Language constructs such as echo are named like functions.
	Method string
	// Variable is the name of a variable, without $, such as _GET
	Variable string
	// compiled holds the regexes of Context, Class, Method and Variable, in that order. It is nil when
	// one of the fields is not a valid regex, and the fields are then compared as plain names.
	compiled []*regexp.Regexp
}

func (cid CodeIdentifier) fields() [4]string {
	return [4]string{cid.Context, cid.Class, cid.Method, cid.Variable}
}

// CompileRegexes compiles every field of the code identifier into a regex, or none of them when one does
// not compile. Names of functions, methods and classes are case-insensitive, so are their regexes;
// variable names are not.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	fields := cid.fields()
	compiled := make([]*regexp.Regexp, len(fields))
	for i, f := range fields {
		if i < 3 {
			f = "(?i)" + f
		}
		r, err := regexp.Compile(f)
		if err != nil {
			return cid
		}
		compiled[i] = r
	}
	cid.compiled = compiled
	return cid
}

// equalOnNonEmptyFields returns true if each field of cid matches the corresponding field of the pattern
// ref, empty pattern fields matching anything.
func (cid *CodeIdentifier) equalOnNonEmptyFields(ref CodeIdentifier) bool {
	have, want := cid.fields(), ref.fields()
	for i := range want {
		switch {
		case want[i] == "":
		case ref.compiled != nil:
			if !ref.compiled[i].MatchString(have[i]) {
				return false
			}
		case i < 3:
			if !strings.EqualFold(have[i], want[i]) {
				return false
			}
		default:
			if have[i] != want[i] {
				return false
			}
		}
	}
	return true
}

// IsVariable returns true when the identifier designates a variable rather than a call.
func (cid CodeIdentifier) IsVariable() bool {
	return cid.Variable != "" && cid.Method == ""
}

func (cid CodeIdentifier) String() string {
	var parts []string
	for _, p := range []struct{ k, v string }{
		{"context", cid.Context}, {"class", cid.Class}, {"method", cid.Method}, {"variable", cid.Variable},
	} {
		if p.v != "" {
			parts = append(parts, p.k+":"+p.v)
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}
