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

// Expr is an expression. The implementations are the pointer types of this file.
type Expr interface {
	// Position returns the position of the expression in the source
	Position() Position
	String() string
	exprNode()
}

// LiteralKind is the type of a literal.
type LiteralKind uint8

const (
	// NullLiteral is null
	NullLiteral LiteralKind = iota
	// BoolLiteral is true or false
	BoolLiteral
	// IntLiteral is an integer literal
	IntLiteral
	// FloatLiteral is a floating point literal
	FloatLiteral
	// StringLiteral is a string literal, after escape processing
	StringLiteral
)

// Literal is a constant scalar.
type Literal struct {
	Pos   Position
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Var is a variable with a literal name, like $x. Superglobals are variables named after them,
// like _POST.
type Var struct {
	Pos  Position
	Name string
}

// VarVar is a variable variable: the name is the value of an expression, like $$x.
type VarVar struct {
	Pos  Position
	Name Expr
}

// Index is an array access Base[Key]. Key is nil for the append form Base[].
type Index struct {
	Pos  Position
	Base Expr
	Key  Expr
}

// Prop is a property access Base->Name, or Base->{Dynamic} when Dynamic is not nil.
type Prop struct {
	Pos     Position
	Base    Expr
	Name    string
	Dynamic Expr
}

// BinaryOp is a binary operator, spelled as in the source. The keyword forms of the logical
// operators are normalized to their symbolic forms.
type BinaryOp string

// Binary operators
const (
	OpAdd       BinaryOp = "+"
	OpSub       BinaryOp = "-"
	OpMul       BinaryOp = "*"
	OpDiv       BinaryOp = "/"
	OpMod       BinaryOp = "%"
	OpPow       BinaryOp = "**"
	OpConcat    BinaryOp = "."
	OpEq        BinaryOp = "=="
	OpNotEq     BinaryOp = "!="
	OpIdentical BinaryOp = "==="
	OpNotIdent  BinaryOp = "!=="
	OpLess      BinaryOp = "<"
	OpLessEq    BinaryOp = "<="
	OpGreater   BinaryOp = ">"
	OpGreaterEq BinaryOp = ">="
	OpSpaceship BinaryOp = "<=>"
	OpAnd       BinaryOp = "&&"
	OpOr        BinaryOp = "||"
	OpXor       BinaryOp = "xor"
	OpCoalesce  BinaryOp = "??"
	OpBitAnd    BinaryOp = "&"
	OpBitOr     BinaryOp = "|"
	OpBitXor    BinaryOp = "^"
	OpShl       BinaryOp = "<<"
	OpShr       BinaryOp = ">>"
)

// IsComparison returns true for the operators producing a boolean from two values.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpIdentical, OpNotIdent, OpLess, OpLessEq, OpGreater, OpGreaterEq:
		return true
	}
	return false
}

// Negation returns the comparison holding exactly when op does not, if there is one.
func (op BinaryOp) Negation() (BinaryOp, bool) {
	switch op {
	case OpEq:
		return OpNotEq, true
	case OpNotEq:
		return OpEq, true
	case OpIdentical:
		return OpNotIdent, true
	case OpNotIdent:
		return OpIdentical, true
	}
	return op, false
}

// Binary is Left Op Right.
type Binary struct {
	Pos   Position
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryOp is a unary operator.
type UnaryOp string

// Unary operators
const (
	OpNot    UnaryOp = "!"
	OpNeg    UnaryOp = "-"
	OpPlus   UnaryOp = "+"
	OpBitNot UnaryOp = "~"
)

// Unary is Op X.
type Unary struct {
	Pos Position
	Op  UnaryOp
	X   Expr
}

// Call is a function call. Name is empty when the callee is computed by Dynamic, as in $f().
type Call struct {
	Pos     Position
	Name    string
	Dynamic Expr
	Args    []Expr
}

// MethodCall is Receiver->Method(Args).
type MethodCall struct {
	Pos      Position
	Receiver Expr
	Method   string
	Args     []Expr
}

// StaticCall is Class::Method(Args).
type StaticCall struct {
	Pos    Position
	Class  string
	Method string
	Args   []Expr
}

// New is an object creation. Each New is an allocation site.
type New struct {
	Pos   Position
	Class string
	Args  []Expr
}

// ArrayItem is one item of an array literal. Key is nil for the next integer key.
type ArrayItem struct {
	Key   Expr
	Value Expr
	ByRef bool
}

// ArrayLit is an array literal, array(...) or [...].
type ArrayLit struct {
	Pos   Position
	Items []ArrayItem
}

// Isset is isset(Args...).
type Isset struct {
	Pos  Position
	Args []Expr
}

// Empty is empty(X).
type Empty struct {
	Pos Position
	X   Expr
}

// Ternary is Cond ? Then : Else. Then is nil for the short form Cond ?: Else.
type Ternary struct {
	Pos  Position
	Cond Expr
	Then Expr
	Else Expr
}

// Const is a named constant other than true, false and null.
type Const struct {
	Pos  Position
	Name string
}

// Cast is a type conversion like (int)X. Type is one of int, float, string, bool, array,
// object and unset.
type Cast struct {
	Pos  Position
	Type string
	X    Expr
}

// Temp reads a temporary introduced by lowering, such as a switch selector.
type Temp struct {
	Pos  Position
	Name string
}

// ForeachValid holds when the iteration over the temporary Iter has another element. It guards
// the edge entering a foreach body.
type ForeachValid struct {
	Pos  Position
	Iter string
}

func (e *Literal) Position() Position      { return e.Pos }
func (e *Var) Position() Position          { return e.Pos }
func (e *VarVar) Position() Position       { return e.Pos }
func (e *Index) Position() Position        { return e.Pos }
func (e *Prop) Position() Position         { return e.Pos }
func (e *Binary) Position() Position       { return e.Pos }
func (e *Unary) Position() Position        { return e.Pos }
func (e *Call) Position() Position         { return e.Pos }
func (e *MethodCall) Position() Position   { return e.Pos }
func (e *StaticCall) Position() Position   { return e.Pos }
func (e *New) Position() Position          { return e.Pos }
func (e *ArrayLit) Position() Position     { return e.Pos }
func (e *Isset) Position() Position        { return e.Pos }
func (e *Empty) Position() Position        { return e.Pos }
func (e *Ternary) Position() Position      { return e.Pos }
func (e *Const) Position() Position        { return e.Pos }
func (e *Cast) Position() Position         { return e.Pos }
func (e *Temp) Position() Position         { return e.Pos }
func (e *ForeachValid) Position() Position { return e.Pos }

func (*Literal) exprNode()      {}
func (*Var) exprNode()          {}
func (*VarVar) exprNode()       {}
func (*Index) exprNode()        {}
func (*Prop) exprNode()         {}
func (*Binary) exprNode()       {}
func (*Unary) exprNode()        {}
func (*Call) exprNode()         {}
func (*MethodCall) exprNode()   {}
func (*StaticCall) exprNode()   {}
func (*New) exprNode()          {}
func (*ArrayLit) exprNode()     {}
func (*Isset) exprNode()        {}
func (*Empty) exprNode()        {}
func (*Ternary) exprNode()      {}
func (*Const) exprNode()        {}
func (*Cast) exprNode()         {}
func (*Temp) exprNode()         {}
func (*ForeachValid) exprNode() {}

// IsCall returns true for the expressions that invoke user code: calls, method calls, static
// calls and object creations.
func IsCall(e Expr) bool {
	switch e.(type) {
	case *Call, *MethodCall, *StaticCall, *New:
		return true
	}
	return false
}

// CallArgs returns the arguments of a call expression, nil for other expressions.
func CallArgs(e Expr) []Expr {
	switch x := e.(type) {
	case *Call:
		return x.Args
	case *MethodCall:
		return x.Args
	case *StaticCall:
		return x.Args
	case *New:
		return x.Args
	}
	return nil
}
