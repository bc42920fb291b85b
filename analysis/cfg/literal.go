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

// NewString returns the string literal s.
func NewString(s string) *Literal { return &Literal{Kind: StringLiteral, Str: s} }

// NewInt returns the integer literal i.
func NewInt(i int64) *Literal { return &Literal{Kind: IntLiteral, Int: i} }

// NewFloat returns the floating point literal f.
func NewFloat(f float64) *Literal { return &Literal{Kind: FloatLiteral, Float: f} }

// NewBool returns the literal true or false.
func NewBool(b bool) *Literal { return &Literal{Kind: BoolLiteral, Bool: b} }

// NewNull returns the literal null.
func NewNull() *Literal { return &Literal{Kind: NullLiteral} }

// NewVar returns the variable $name.
func NewVar(name string) *Var { return &Var{Name: name} }
