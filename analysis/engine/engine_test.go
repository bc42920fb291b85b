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

package engine_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
	"github.com/awslabs/ar-php-tools/analysis/valueset"
	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, prog *cfg.Program, opts ...func(*config.Config)) *engine.Result {
	t.Helper()
	res, err := analyze(context.Background(), prog, opts...)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	return res
}

func analyze(ctx context.Context, prog *cfg.Program, opts ...func(*config.Config)) (*engine.Result, error) {
	c := config.NewDefault()
	for _, opt := range opts {
		opt(c)
	}
	logger := config.NewLogGroup(c)
	logger.SetAllOutput(io.Discard)
	a := &engine.Analyzer{Config: c, Logger: logger, Evaluator: valueset.New(nil)}
	return a.Run(ctx, prog)
}

func checkEntry(t *testing.T, name string, got memory.MemoryEntry, want ...memory.Value) {
	t.Helper()
	if diff := cmp.Diff(memory.NewEntry(want...), got); diff != "" {
		t.Errorf("unexpected values of %s (-want +got):\n%s", name, diff)
	}
}

func get(key string) cfg.Expr {
	return &cfg.Index{Base: cfg.NewVar("_GET"), Key: cfg.NewString(key)}
}

// stmtPoint returns the point of s in the main instance.
func stmtPoint(t *testing.T, res *engine.Result, s cfg.Stmt) *ppg.Point {
	t.Helper()
	for _, p := range res.Graph.Main().Points {
		if p.Kind == ppg.StatementPoint && p.Stmt == s {
			return p
		}
	}
	t.Fatalf("no point for %s", s)
	return nil
}

func TestAssignmentCopiesValue(t *testing.T) {
	prog := cfg.NewProgram()
	prog.Main.Entry.Add(
		&cfg.Assign{Target: cfg.NewVar("x"), Value: cfg.NewString("a")},
		&cfg.Assign{Target: cfg.NewVar("y"), Value: cfg.NewVar("x")},
	)
	res := run(t, prog)
	checkEntry(t, "x", res.Read("x").Values, memory.String("a"))
	checkEntry(t, "y", res.Read("y").Values, memory.String("a"))
	if err := res.Errors(); err != nil {
		t.Errorf("unexpected errors: %v", err)
	}
}

func TestBranchesJoin(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	then, els, join := m.NewBlock(), m.NewBlock(), m.NewBlock()
	m.Branch(m.Entry, get("c"), then, els)
	then.Add(&cfg.Assign{Target: cfg.NewVar("s"), Value: cfg.NewString("f1a")})
	els.Add(&cfg.Assign{Target: cfg.NewVar("s"), Value: cfg.NewString("f1b")})
	m.Jump(then, join)
	m.Jump(els, join)
	echo := &cfg.Echo{Args: []cfg.Expr{cfg.NewVar("s")}}
	join.Add(echo)

	res := run(t, prog)
	in := res.InSet(stmtPoint(t, res, echo))
	got := in.ReadPath(memory.VariablePath(memory.Single("s"))).Values
	checkEntry(t, "s", got, memory.String("f1a"), memory.String("f1b"))
}

func TestSwitchDefaultExcludesCases(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	s := cfg.NewVar("s")
	b1, rest, b2, b3, sw := m.NewBlock(), m.NewBlock(), m.NewBlock(), m.NewBlock(), m.NewBlock()
	m.Branch(m.Entry, get("a"), b1, rest)
	b1.Add(&cfg.Assign{Target: s, Value: cfg.NewString("1")})
	m.Branch(rest, get("b"), b2, b3)
	b2.Add(&cfg.Assign{Target: s, Value: cfg.NewString("2")})
	b3.Add(&cfg.Assign{Target: s, Value: cfg.NewString("3")})
	m.Jump(b1, sw)
	m.Jump(b2, sw)
	m.Jump(b3, sw)

	c1, c2, def := m.NewBlock(), m.NewBlock(), m.NewBlock()
	m.Switch(sw, []cfg.Expr{
		&cfg.Binary{Op: cfg.OpEq, Left: s, Right: cfg.NewString("1")},
		&cfg.Binary{Op: cfg.OpEq, Left: s, Right: cfg.NewString("2")},
	}, []*cfg.Block{c1, c2}, def)
	one := &cfg.Assign{Target: cfg.NewVar("d"), Value: s}
	c1.Add(one)
	other := &cfg.Assign{Target: cfg.NewVar("d"), Value: s}
	def.Add(other)

	res := run(t, prog)
	d := memory.VariablePath(memory.Single("d"))
	checkEntry(t, "d in case 1", res.OutSet(stmtPoint(t, res, one)).ReadPath(d).Values, memory.String("1"))
	checkEntry(t, "d in default", res.OutSet(stmtPoint(t, res, other)).ReadPath(d).Values, memory.String("3"))
	checkEntry(t, "s in default", res.InSet(stmtPoint(t, res, other)).ReadPath(memory.VariablePath(memory.Single("s"))).Values,
		memory.String("3"))
}

func TestAliasSeesUpdates(t *testing.T) {
	prog := cfg.NewProgram()
	a, b := cfg.NewVar("a"), cfg.NewVar("b")
	prog.Main.Entry.Add(
		&cfg.Assign{Target: a, Value: cfg.NewString("v B")},
		&cfg.AssignRef{Target: b, Source: a},
		&cfg.Assign{Target: a, Value: cfg.NewString("changed")},
	)
	res := run(t, prog)
	checkEntry(t, "b", res.Read("b").Values, memory.String("changed"))
	checkEntry(t, "a", res.Read("a").Values, memory.String("changed"))
}

// identityProgram is
//
//	function f($arg) { return $arg; }
//	$p = f($_POST["q"]);
//	$l = f("literal");
func identityProgram() *cfg.Program {
	prog := cfg.NewProgram()
	f := cfg.NewFunction("f", cfg.Position{})
	f.Params = []cfg.Param{{Name: "arg"}}
	f.Entry.Add(&cfg.Return{Value: cfg.NewVar("arg")})
	prog.AddFunction(f)
	post := &cfg.Index{Base: cfg.NewVar("_POST"), Key: cfg.NewString("q")}
	prog.Main.Entry.Add(
		&cfg.Assign{Target: cfg.NewVar("p"), Value: &cfg.Call{Name: "f", Args: []cfg.Expr{post}}},
		&cfg.Assign{Target: cfg.NewVar("l"), Value: &cfg.Call{Name: "f", Args: []cfg.Expr{cfg.NewString("literal")}}},
	)
	return prog
}

func TestCallSitesDoNotContaminate(t *testing.T) {
	res := run(t, identityProgram(), func(c *config.Config) { c.CallContextDepth = 1 })
	checkEntry(t, "l", res.Read("l").Values, memory.String("literal"))
	if !res.Read("p").Values.Contains(memory.Any) {
		t.Errorf("p should hold the request value, got %s", res.Read("p").Values)
	}
	if n := len(res.Graph.Instances()); n != 3 {
		t.Errorf("expected one instance of f per call site, got %d instances", n)
	}
}

func TestInsensitiveCallsMerge(t *testing.T) {
	res := run(t, identityProgram(), func(c *config.Config) { c.CallContextDepth = 0 })
	if !res.Read("l").Values.Contains(memory.Any) {
		t.Errorf("without contexts both calls share one return value, got %s", res.Read("l").Values)
	}
}

func TestLoopConverges(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	i := cfg.NewVar("i")
	head, body, done := m.NewBlock(), m.NewBlock(), m.NewBlock()
	m.Entry.Add(&cfg.Assign{Target: i, Value: cfg.NewInt(0)})
	m.Jump(m.Entry, head)
	m.Branch(head, &cfg.Binary{Op: cfg.OpLess, Left: i, Right: get("n")}, body, done)
	body.Add(&cfg.CompoundAssign{Op: cfg.OpAdd, Target: i, Value: cfg.NewInt(1)})
	m.Jump(body, head)

	res := run(t, prog, func(c *config.Config) { c.WideningLimit = 3 })
	got := res.Read("i").Values
	for _, n := range []int64{0, 1, 2, 100} {
		if !got.Covers(memory.Int(n)) {
			t.Errorf("i should cover %d, got %s", n, got)
		}
	}
}

func TestNonConvergence(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	i := cfg.NewVar("i")
	head, body := m.NewBlock(), m.NewBlock()
	m.Entry.Add(&cfg.Assign{Target: i, Value: cfg.NewInt(0)})
	m.Jump(m.Entry, head)
	m.Branch(head, get("n"), body, m.Exit)
	body.Add(&cfg.CompoundAssign{Op: cfg.OpAdd, Target: i, Value: cfg.NewInt(1)})
	m.Jump(body, head)

	res, err := analyze(context.Background(), prog, func(c *config.Config) { c.MaxIterations = 3 })
	var nc *engine.NonConvergenceError
	if !errors.As(err, &nc) {
		t.Fatalf("expected a non-convergence error, got %v", err)
	}
	if nc.Iterations != 3 || len(nc.Hottest) == 0 {
		t.Errorf("unexpected error %+v", nc)
	}
	if res == nil {
		t.Errorf("the partial result should be returned")
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analyze(ctx, identityProgram())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the context error, got %v", err)
	}
}

func TestInfeasibleBranchIsPruned(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	x := cfg.NewVar("x")
	then := m.NewBlock()
	m.Entry.Add(&cfg.Assign{Target: x, Value: cfg.NewInt(1)})
	m.Branch(m.Entry, &cfg.Binary{Op: cfg.OpEq, Left: x, Right: cfg.NewInt(2)}, then, m.Exit)
	assign := &cfg.Assign{Target: cfg.NewVar("y"), Value: cfg.NewString("dead")}
	then.Add(assign)

	res := run(t, prog)
	checkEntry(t, "y", res.Read("y").Values, memory.Undefined)
	if res.Reachable(stmtPoint(t, res, assign)) {
		t.Errorf("the then block should be unreachable")
	}
}

func TestByReferenceParameter(t *testing.T) {
	prog := cfg.NewProgram()
	inc := cfg.NewFunction("inc", cfg.Position{})
	inc.Params = []cfg.Param{{Name: "v", ByRef: true}}
	inc.Entry.Add(&cfg.CompoundAssign{Op: cfg.OpAdd, Target: cfg.NewVar("v"), Value: cfg.NewInt(1)})
	prog.AddFunction(inc)
	a := cfg.NewVar("a")
	prog.Main.Entry.Add(
		&cfg.Assign{Target: a, Value: cfg.NewInt(1)},
		&cfg.ExprStmt{X: &cfg.Call{Name: "inc", Args: []cfg.Expr{a}}},
	)
	res := run(t, prog)
	checkEntry(t, "a", res.Read("a").Values, memory.Int(2))
}

func TestDefaultParameter(t *testing.T) {
	prog := cfg.NewProgram()
	g := cfg.NewFunction("g", cfg.Position{})
	g.Params = []cfg.Param{{Name: "v", Default: cfg.NewString("d")}}
	g.Entry.Add(&cfg.Return{Value: cfg.NewVar("v")})
	prog.AddFunction(g)
	prog.Main.Entry.Add(&cfg.Assign{Target: cfg.NewVar("r"), Value: &cfg.Call{Name: "g"}})
	res := run(t, prog)
	checkEntry(t, "r", res.Read("r").Values, memory.String("d"))
}

func TestMethodCall(t *testing.T) {
	prog := cfg.NewProgram()
	c := cfg.NewClass("C", "", cfg.Position{})
	c.Props = []cfg.Property{{Name: "v", Default: cfg.NewString("x")}}
	getter := cfg.NewFunction("get", cfg.Position{})
	getter.Entry.Add(&cfg.Return{Value: &cfg.Prop{Base: cfg.NewVar("this"), Name: "v"}})
	c.AddMethod(getter)
	prog.AddClass(c)
	o := cfg.NewVar("o")
	prog.Main.Entry.Add(
		&cfg.Assign{Target: o, Value: &cfg.New{Class: "C"}},
		&cfg.Assign{Target: cfg.NewVar("r"), Value: &cfg.MethodCall{Receiver: o, Method: "get"}},
	)
	res := run(t, prog)
	checkEntry(t, "r", res.Read("r").Values, memory.String("x"))
	if objs := res.Read("o").Values.Objects(); len(objs) != 1 {
		t.Errorf("o should hold one object, got %s", res.Read("o").Values)
	}
}

func TestRecursionConverges(t *testing.T) {
	prog := cfg.NewProgram()
	r := cfg.NewFunction("r", cfg.Position{})
	r.Params = []cfg.Param{{Name: "n"}}
	n := cfg.NewVar("n")
	rec, base := r.NewBlock(), r.NewBlock()
	r.Branch(r.Entry, &cfg.Binary{Op: cfg.OpGreater, Left: n, Right: cfg.NewInt(0)}, rec, base)
	rec.Add(&cfg.Return{Value: &cfg.Call{Name: "r", Args: []cfg.Expr{
		&cfg.Binary{Op: cfg.OpSub, Left: n, Right: cfg.NewInt(1)},
	}}})
	base.Add(&cfg.Return{Value: cfg.NewInt(0)})
	prog.AddFunction(r)
	prog.Main.Entry.Add(&cfg.Assign{Target: cfg.NewVar("x"), Value: &cfg.Call{Name: "r", Args: []cfg.Expr{cfg.NewInt(3)}}})

	res := run(t, prog)
	if !res.Read("x").Values.Covers(memory.Int(0)) {
		t.Errorf("x should cover 0, got %s", res.Read("x").Values)
	}
}

func TestAppendLoopConverges(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	a := cfg.NewVar("a")
	head, body := m.NewBlock(), m.NewBlock()
	m.Entry.Add(&cfg.Assign{Target: a, Value: &cfg.ArrayLit{}})
	m.Jump(m.Entry, head)
	m.Branch(head, get("x"), body, m.Exit)
	body.Add(&cfg.Assign{Target: &cfg.Index{Base: a}, Value: cfg.NewInt(1)})
	m.Jump(body, head)

	res, err := analyze(context.Background(), prog, func(c *config.Config) { c.MaxIterations = 2000 })
	if err != nil {
		t.Fatalf("appending in a loop should converge: %v", err)
	}
	got := res.Final().ReadPath(memory.VariablePath(memory.Single("a")).Element(memory.Single("99"))).Values
	if !got.Contains(memory.Int(1)) {
		t.Errorf("$a[99] should cover 1, got %s", got)
	}
}

func TestRecursiveAccumulationConverges(t *testing.T) {
	prog := cfg.NewProgram()
	acc := cfg.NewFunction("acc", cfg.Position{})
	acc.Params = []cfg.Param{{Name: "a"}, {Name: "n"}}
	a, n := cfg.NewVar("a"), cfg.NewVar("n")
	rec, base := acc.NewBlock(), acc.NewBlock()
	acc.Branch(acc.Entry, n, rec, base)
	rec.Add(
		&cfg.Assign{Target: &cfg.Index{Base: a}, Value: n},
		&cfg.Return{Value: &cfg.Call{Name: "acc", Args: []cfg.Expr{
			a, &cfg.Binary{Op: cfg.OpSub, Left: n, Right: cfg.NewInt(1)},
		}}},
	)
	base.Add(&cfg.Return{Value: a})
	prog.AddFunction(acc)
	prog.Main.Entry.Add(&cfg.Assign{Target: cfg.NewVar("r"), Value: &cfg.Call{Name: "acc", Args: []cfg.Expr{
		&cfg.ArrayLit{}, get("n"),
	}}})

	res, err := analyze(context.Background(), prog, func(c *config.Config) { c.MaxIterations = 2000 })
	if err != nil {
		t.Fatalf("recursive accumulation should converge: %v", err)
	}
	if len(res.Read("r").Values.Arrays()) == 0 {
		t.Errorf("r should hold the accumulated array, got %s", res.Read("r").Values)
	}
}

func TestNativeCall(t *testing.T) {
	prog := cfg.NewProgram()
	prog.Main.Entry.Add(&cfg.Assign{Target: cfg.NewVar("n"), Value: &cfg.Call{Name: "strlen", Args: []cfg.Expr{cfg.NewString("abc")}}})
	res := run(t, prog)
	checkEntry(t, "n", res.Read("n").Values, memory.Int(3))
}

func TestForeachBindsElements(t *testing.T) {
	prog := cfg.NewProgram()
	m := prog.Main
	arr, v := cfg.NewVar("arr"), cfg.NewVar("v")
	head, body := m.NewBlock(), m.NewBlock()
	m.Entry.Add(
		&cfg.Assign{Target: arr, Value: &cfg.ArrayLit{Items: []cfg.ArrayItem{
			{Value: cfg.NewString("a")}, {Value: cfg.NewString("b")},
		}}},
		&cfg.ForeachInit{Iter: "it", Subject: arr},
	)
	m.Jump(m.Entry, head)
	m.Branch(head, &cfg.ForeachValid{Iter: "it"}, body, m.Exit)
	next := &cfg.ForeachNext{Iter: "it", Value: v}
	body.Add(next)
	m.Jump(body, head)

	res := run(t, prog)
	got := res.OutSet(stmtPoint(t, res, next)).ReadPath(memory.VariablePath(memory.Single("v"))).Values
	checkEntry(t, "v", got, memory.String("a"), memory.String("b"))
}
