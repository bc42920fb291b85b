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

// Stmt is a statement of a basic block. The implementations are the pointer types of this file.
type Stmt interface {
	Position() Position
	String() string
	stmtNode()
}

// Assign is Target = Value. Target is a Var, VarVar, Index, Prop or Temp.
type Assign struct {
	Pos    Position
	Target Expr
	Value  Expr
}

// AssignRef is Target = &Source.
type AssignRef struct {
	Pos    Position
	Target Expr
	Source Expr
}

// CompoundAssign is Target Op= Value. Increments are lowered to += 1 and -= 1.
type CompoundAssign struct {
	Pos    Position
	Op     BinaryOp
	Target Expr
	Value  Expr
}

// ExprStmt evaluates X for its effects.
type ExprStmt struct {
	Pos Position
	X   Expr
}

// Echo prints its arguments. print is lowered to Echo.
type Echo struct {
	Pos  Position
	Args []Expr
}

// Return leaves the function. Value is nil for a bare return. The statements following a Return
// in its block are unreachable.
type Return struct {
	Pos   Position
	Value Expr
}

// Global binds the local variables Names to the global variables of the same names.
type Global struct {
	Pos   Position
	Names []string
}

// Unset destroys its targets.
type Unset struct {
	Pos     Position
	Targets []Expr
}

// ForeachInit starts an iteration over Subject, stored in the temporary Iter.
type ForeachInit struct {
	Pos     Position
	Iter    string
	Subject Expr
}

// ForeachNext binds the next element of the iteration Iter: the key to Key when Key is not nil
// and the value to Value. When ByRef is set, Value is bound by reference to the elements of
// Subject, the iterated variable.
type ForeachNext struct {
	Pos     Position
	Iter    string
	Key     Expr
	Value   Expr
	ByRef   bool
	Subject Expr
}

func (s *Assign) Position() Position         { return s.Pos }
func (s *AssignRef) Position() Position      { return s.Pos }
func (s *CompoundAssign) Position() Position { return s.Pos }
func (s *ExprStmt) Position() Position       { return s.Pos }
func (s *Echo) Position() Position           { return s.Pos }
func (s *Return) Position() Position         { return s.Pos }
func (s *Global) Position() Position         { return s.Pos }
func (s *Unset) Position() Position          { return s.Pos }
func (s *ForeachInit) Position() Position    { return s.Pos }
func (s *ForeachNext) Position() Position    { return s.Pos }

func (*Assign) stmtNode()         {}
func (*AssignRef) stmtNode()      {}
func (*CompoundAssign) stmtNode() {}
func (*ExprStmt) stmtNode()       {}
func (*Echo) stmtNode()           {}
func (*Return) stmtNode()         {}
func (*Global) stmtNode()         {}
func (*Unset) stmtNode()          {}
func (*ForeachInit) stmtNode()    {}
func (*ForeachNext) stmtNode()    {}

// Exprs returns the expressions evaluated by s, in evaluation order. Assignment targets come
// last.
func Exprs(s Stmt) []Expr {
	switch s := s.(type) {
	case *Assign:
		return []Expr{s.Value, s.Target}
	case *AssignRef:
		return []Expr{s.Source, s.Target}
	case *CompoundAssign:
		return []Expr{s.Value, s.Target}
	case *ExprStmt:
		return []Expr{s.X}
	case *Echo:
		return s.Args
	case *Return:
		if s.Value == nil {
			return nil
		}
		return []Expr{s.Value}
	case *Global:
		return nil
	case *Unset:
		return s.Targets
	case *ForeachInit:
		return []Expr{s.Subject}
	case *ForeachNext:
		if s.Key == nil {
			return []Expr{s.Value}
		}
		return []Expr{s.Key, s.Value}
	}
	return nil
}

// Children returns the direct subexpressions of e, in evaluation order.
func Children(e Expr) []Expr {
	var res []Expr
	add := func(xs ...Expr) {
		for _, x := range xs {
			if x != nil {
				res = append(res, x)
			}
		}
	}
	switch e := e.(type) {
	case *Literal, *Var, *Const, *Temp, *ForeachValid:
	case *VarVar:
		add(e.Name)
	case *Index:
		add(e.Base, e.Key)
	case *Prop:
		add(e.Base, e.Dynamic)
	case *Binary:
		add(e.Left, e.Right)
	case *Unary:
		add(e.X)
	case *Call:
		add(e.Dynamic)
		add(e.Args...)
	case *MethodCall:
		add(e.Receiver)
		add(e.Args...)
	case *StaticCall:
		add(e.Args...)
	case *New:
		add(e.Args...)
	case *ArrayLit:
		for _, it := range e.Items {
			add(it.Key, it.Value)
		}
	case *Isset:
		add(e.Args...)
	case *Empty:
		add(e.X)
	case *Ternary:
		add(e.Cond, e.Then, e.Else)
	case *Cast:
		add(e.X)
	}
	return res
}

// Inspect calls f on e and its subexpressions in post-order: the children of an expression are
// visited before the expression itself.
func Inspect(e Expr, f func(Expr)) {
	if e == nil {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, f)
	}
	f(e)
}
