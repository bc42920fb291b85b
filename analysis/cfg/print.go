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

import (
	"strconv"
	"strings"
)

func (e *Literal) String() string {
	switch e.Kind {
	case BoolLiteral:
		return strconv.FormatBool(e.Bool)
	case IntLiteral:
		return strconv.FormatInt(e.Int, 10)
	case FloatLiteral:
		return strconv.FormatFloat(e.Float, 'g', -1, 64)
	case StringLiteral:
		return strconv.Quote(e.Str)
	}
	return "null"
}

func (e *Var) String() string    { return "$" + e.Name }
func (e *VarVar) String() string { return "${" + e.Name.String() + "}" }

func (e *Index) String() string {
	if e.Key == nil {
		return e.Base.String() + "[]"
	}
	return e.Base.String() + "[" + e.Key.String() + "]"
}

func (e *Prop) String() string {
	if e.Dynamic != nil {
		return e.Base.String() + "->{" + e.Dynamic.String() + "}"
	}
	return e.Base.String() + "->" + e.Name
}

func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + string(e.Op) + " " + e.Right.String() + ")"
}

func (e *Unary) String() string { return string(e.Op) + e.X.String() }

func (e *Call) String() string {
	if e.Dynamic != nil {
		return e.Dynamic.String() + args(e.Args)
	}
	return e.Name + args(e.Args)
}

func (e *MethodCall) String() string {
	return e.Receiver.String() + "->" + e.Method + args(e.Args)
}

func (e *StaticCall) String() string { return e.Class + "::" + e.Method + args(e.Args) }
func (e *New) String() string        { return "new " + e.Class + args(e.Args) }

func (e *ArrayLit) String() string {
	items := make([]string, len(e.Items))
	for i, it := range e.Items {
		v := it.Value.String()
		if it.ByRef {
			v = "&" + v
		}
		if it.Key != nil {
			v = it.Key.String() + " => " + v
		}
		items[i] = v
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (e *Isset) String() string { return "isset" + args(e.Args) }
func (e *Empty) String() string { return "empty(" + e.X.String() + ")" }

func (e *Ternary) String() string {
	if e.Then == nil {
		return "(" + e.Cond.String() + " ?: " + e.Else.String() + ")"
	}
	return "(" + e.Cond.String() + " ? " + e.Then.String() + " : " + e.Else.String() + ")"
}

func (e *Const) String() string        { return e.Name }
func (e *Cast) String() string         { return "(" + e.Type + ")" + e.X.String() }
func (e *Temp) String() string         { return "#" + e.Name }
func (e *ForeachValid) String() string { return "valid(#" + e.Iter + ")" }

func args(xs []Expr) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = x.String()
	}
	return "(" + strings.Join(s, ", ") + ")"
}

func (s *Assign) String() string    { return s.Target.String() + " = " + s.Value.String() }
func (s *AssignRef) String() string { return s.Target.String() + " = &" + s.Source.String() }

func (s *CompoundAssign) String() string {
	return s.Target.String() + " " + string(s.Op) + "= " + s.Value.String()
}

func (s *ExprStmt) String() string { return s.X.String() }

func (s *Echo) String() string {
	return "echo " + strings.TrimSuffix(strings.TrimPrefix(args(s.Args), "("), ")")
}

func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

func (s *Global) String() string {
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = "$" + n
	}
	return "global " + strings.Join(names, ", ")
}

func (s *Unset) String() string { return "unset" + args(s.Targets) }

func (s *ForeachInit) String() string { return "#" + s.Iter + " = iterate " + s.Subject.String() }

func (s *ForeachNext) String() string {
	v := s.Value.String()
	if s.ByRef {
		v = "&" + v
	}
	if s.Key != nil {
		v = s.Key.String() + " => " + v
	}
	return v + " = next #" + s.Iter
}
