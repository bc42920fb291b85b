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

// Package cfg defines the control-flow graphs the analysis consumes.
//
// A Program holds the main script body, the function declarations and the class declarations,
// each body being a Function made of basic blocks. A block holds an ordered list of statements and
// its outgoing edges; an edge may be guarded by a condition, and the default edge of a multi-way
// branch carries the conditions of its siblings instead.
//
// Statements and expressions are closed sum types: the only implementations of Stmt and Expr are
// the types of this package, so a type switch over them can be exhaustive. Front-ends lower their
// syntax trees to these types; constructs they cannot lower are recorded as *UnsupportedError
// values in Program.Unsupported.
package cfg
