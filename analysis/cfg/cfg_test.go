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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrinting(t *testing.T) {
	x := NewVar("x")
	tests := []struct {
		node fmtNode
		want string
	}{
		{&Assign{Target: x, Value: NewString("a")}, `$x = "a"`},
		{&AssignRef{Target: NewVar("b"), Source: x}, `$b = &$x`},
		{&CompoundAssign{Op: OpConcat, Target: x, Value: NewInt(1)}, `$x .= 1`},
		{&Echo{Args: []Expr{x, NewBool(true)}}, `echo $x, true`},
		{&Return{}, `return`},
		{&Global{Names: []string{"a", "b"}}, `global $a, $b`},
		{&Index{Base: x, Key: NewString("k")}, `$x["k"]`},
		{&Index{Base: x}, `$x[]`},
		{&Prop{Base: x, Name: "f"}, `$x->f`},
		{&Call{Name: "f", Args: []Expr{x, NewNull()}}, `f($x, null)`},
		{&MethodCall{Receiver: x, Method: "m"}, `$x->m()`},
		{&New{Class: "C"}, `new C()`},
		{&Binary{Op: OpEq, Left: x, Right: NewFloat(1.5)}, `($x == 1.5)`},
		{&ArrayLit{Items: []ArrayItem{{Value: NewInt(1)}, {Key: NewString("a"), Value: x, ByRef: true}}},
			`[1, "a" => &$x]`},
		{&Ternary{Cond: x, Else: NewInt(0)}, `($x ?: 0)`},
		{&ForeachNext{Iter: "it", Key: NewVar("k"), Value: NewVar("v")}, `$k => $v = next #it`},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, test.node.String()); diff != "" {
			t.Errorf("unexpected printing (-want +got):\n%s", diff)
		}
	}
}

type fmtNode interface{ String() string }

func TestBranchesAndSwitch(t *testing.T) {
	f := NewFunction("f", Position{})
	then, els, join := f.NewBlock(), f.NewBlock(), f.NewBlock()
	cond := &Binary{Op: OpEq, Left: NewVar("s"), Right: NewString("1")}
	f.Branch(f.Entry, cond, then, els)
	f.Jump(then, join)
	f.Jump(els, join)

	if len(f.Entry.Succs) != 2 || !f.Entry.Succs[1].Negated {
		t.Fatalf("branch should add a positive and a negated edge")
	}
	if got := f.Entry.Succs[1].Condition(); got != `!($s == "1")` {
		t.Errorf("unexpected negated condition %s", got)
	}
	if len(join.Preds) != 2 {
		t.Errorf("join block should have two predecessors, got %d", len(join.Preds))
	}

	g := NewFunction("g", Position{})
	c1, c2, def := g.NewBlock(), g.NewBlock(), g.NewBlock()
	conds := []Expr{
		&Binary{Op: OpEq, Left: NewVar("s"), Right: NewString("1")},
		&Binary{Op: OpEq, Left: NewVar("s"), Right: NewString("2")},
	}
	g.Switch(g.Entry, conds, []*Block{c1, c2}, def)
	last := g.Entry.Succs[2]
	if last.To != def || len(last.Default) != 2 || !last.IsConditional() {
		t.Fatalf("switch should end with a default edge over the two cases")
	}
	if got := last.Condition(); got != `!($s == "1") && !($s == "2")` {
		t.Errorf("unexpected default condition %s", got)
	}
}

func TestProgramLookup(t *testing.T) {
	p := NewProgram()
	p.AddFunction(NewFunction("Helper", Position{}))
	base := NewClass("Base", "", Position{})
	base.AddMethod(NewFunction("run", Position{}))
	derived := NewClass("Derived", "Base", Position{})
	p.AddClass(base)
	p.AddClass(derived)

	if _, ok := p.Function("helper"); !ok {
		t.Errorf("function lookup should ignore case")
	}
	m, ok := p.Method("derived", "RUN")
	if !ok || m.QualifiedName() != "Base::run" {
		t.Errorf("method lookup should follow the parent chain")
	}
	if impls := p.Implementations("run"); len(impls) != 1 {
		t.Errorf("expected one implementation of run, got %d", len(impls))
	}
}

func TestInspectIsPostOrder(t *testing.T) {
	inner := &Call{Name: "g"}
	outer := &Call{Name: "f", Args: []Expr{inner, NewVar("x")}}
	var order []string
	Inspect(outer, func(e Expr) {
		if IsCall(e) {
			order = append(order, e.(*Call).Name)
		}
	})
	if diff := cmp.Diff([]string{"g", "f"}, order); diff != "" {
		t.Errorf("unexpected visiting order (-want +got):\n%s", diff)
	}
}

func TestUnsupportedError(t *testing.T) {
	err := &UnsupportedError{Construct: "try/catch", Pos: Position{File: "a.php", Line: 3, Col: 1}}
	if got := err.Error(); got != "unsupported construct try/catch in main script at a.php:3:1" {
		t.Errorf("unexpected message %q", got)
	}
}
