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

// Package php lowers PHP scripts to the control-flow graphs of package cfg.
//
// Scripts are parsed with tree-sitter. Loading several files lowers them into one program: the
// top-level code of the files runs in order, as if each file included the next one, and every
// function and class declaration is visible from the whole program.
//
// The lowering evaluates operands before the operators using them and hoists the effects of
// nested assignments, increments and print expressions into statements placed before the
// statement using their value. Short-circuit operators keep their operands in the same block, so
// the effects of their right operand are assumed to happen. Constructs without an exact lowering
// (try/catch, closures, static variables, list destructuring and a few others) are approximated and
// recorded in Program.Unsupported.
package php
