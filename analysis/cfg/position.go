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

package cfg

import "fmt"

// Position is a location in a source file. Lines and columns start at 1; the zero Position is
// unknown.
type Position struct {
	File string
	Line int
	Col  int
}

// IsValid returns true when the position has a line.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		if p.File != "" {
			return p.File
		}
		return "-"
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// UnsupportedError reports a construct that has no exact lowering. The front-end still produces a
// graph for the enclosing function, approximating the construct.
type UnsupportedError struct {
	// Construct names the construct, e.g. "try/catch"
	Construct string
	// Pos is where the construct starts
	Pos Position
	// Function is the name of the enclosing function, empty for the main script
	Function string
}

func (e *UnsupportedError) Error() string {
	where := "main script"
	if e.Function != "" {
		where = "function " + e.Function
	}
	return fmt.Sprintf("unsupported construct %s in %s at %s", e.Construct, where, e.Pos)
}
