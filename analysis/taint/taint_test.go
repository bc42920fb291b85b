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

package taint_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/taint"
	"github.com/google/go-cmp/cmp"
)

const problem = `
options:
  log-level: 1
  call-context-depth: %DEPTH%
taint-tracking-problems:
  - sources:
      - variable: "^_(GET|POST)$"
    sanitizers:
      - method: "^htmlspecialchars$"
    sinks:
      - method: "^echo$"
`

func loadConfig(t *testing.T, depth string) *config.Config {
	t.Helper()
	c, err := config.Parse([]byte(strings.ReplaceAll(problem, "%DEPTH%", depth)))
	if err != nil {
		t.Fatalf("could not parse config: %v", err)
	}
	return c
}

func at(line int) cfg.Position { return cfg.Position{File: "index.php", Line: line, Col: 1} }

// identityProgram is
//
//	function f($arg) { return $arg; }
//	$p = f($_POST["q"]);
//	$l = f("literal");
//	echo $p;
//	echo $l;
func identityProgram() *cfg.Program {
	prog := cfg.NewProgram()
	f := cfg.NewFunction("f", at(1))
	f.Params = []cfg.Param{{Name: "arg"}}
	f.Entry.Add(&cfg.Return{Pos: at(1), Value: cfg.NewVar("arg")})
	prog.AddFunction(f)
	post := &cfg.Index{Base: cfg.NewVar("_POST"), Key: cfg.NewString("q")}
	prog.Main.Entry.Add(
		&cfg.Assign{Pos: at(2), Target: cfg.NewVar("p"), Value: &cfg.Call{Pos: at(2), Name: "f", Args: []cfg.Expr{post}}},
		&cfg.Assign{Pos: at(3), Target: cfg.NewVar("l"), Value: &cfg.Call{Pos: at(3), Name: "f", Args: []cfg.Expr{cfg.NewString("literal")}}},
		&cfg.Echo{Pos: at(4), Args: []cfg.Expr{cfg.NewVar("p")}},
		&cfg.Echo{Pos: at(5), Args: []cfg.Expr{cfg.NewVar("l")}},
	)
	return prog
}

func sinkLines(res taint.AnalysisResult) []int {
	var lines []int
	for _, f := range res.TaintFlows {
		lines = append(lines, f.Pos.Line)
	}
	return lines
}

func TestContextsSeparateTaint(t *testing.T) {
	res, err := taint.Analyze(context.Background(), loadConfig(t, "1"), identityProgram())
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if diff := cmp.Diff([]int{4}, sinkLines(res)); diff != "" {
		t.Errorf("unexpected flows (-want +got):\n%s", diff)
	}
	l := res.Result.Read("l")
	if diff := cmp.Diff(memory.NewEntry(memory.String("literal")), l.Values); diff != "" {
		t.Errorf("unexpected values of l (-want +got):\n%s", diff)
	}
	if !l.Infos.IsEmpty() {
		t.Errorf("l should not be tainted, got %s", l.Infos)
	}
	p := res.Result.Read("p")
	if !p.Infos.Contains(memory.InfoValue{Flag: taint.Flag(0), Origin: "$_POST"}) {
		t.Errorf("p should be tainted by $_POST, got %s", p.Infos)
	}
}

func TestSharedContextMergesTaint(t *testing.T) {
	res, err := taint.Analyze(context.Background(), loadConfig(t, "0"), identityProgram())
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if diff := cmp.Diff([]int{4, 5}, sinkLines(res)); diff != "" {
		t.Errorf("unexpected flows (-want +got):\n%s", diff)
	}
}

func TestSanitizerRemovesTaint(t *testing.T) {
	prog := cfg.NewProgram()
	get := &cfg.Index{Base: cfg.NewVar("_GET"), Key: cfg.NewString("x")}
	prog.Main.Entry.Add(
		&cfg.Assign{Pos: at(1), Target: cfg.NewVar("raw"), Value: get},
		&cfg.Assign{Pos: at(2), Target: cfg.NewVar("s"),
			Value: &cfg.Call{Pos: at(2), Name: "htmlspecialchars", Args: []cfg.Expr{cfg.NewVar("raw")}}},
		&cfg.Echo{Pos: at(3), Args: []cfg.Expr{cfg.NewVar("s")}},
		&cfg.Echo{Pos: at(4), Args: []cfg.Expr{&cfg.Binary{Op: cfg.OpConcat, Left: cfg.NewString("<b>"), Right: cfg.NewVar("raw")}}},
	)
	res, err := taint.Analyze(context.Background(), loadConfig(t, "1"), prog)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if diff := cmp.Diff([]int{4}, sinkLines(res)); diff != "" {
		t.Errorf("unexpected flows (-want +got):\n%s", diff)
	}
	if infos := res.Result.Read("s").Infos; !infos.IsEmpty() {
		t.Errorf("s should be sanitized, got %s", infos)
	}
}

func TestWriteReport(t *testing.T) {
	res, err := taint.Analyze(context.Background(), loadConfig(t, "1"), identityProgram())
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	var buf bytes.Buffer
	if err := taint.WriteReport(&buf, res.TaintFlows); err != nil {
		t.Fatalf("could not write report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"$_POST", "Sink: echo (argument 1) in {main}", "index.php:4"} {
		if !strings.Contains(out, want) {
			t.Errorf("report should contain %q, got:\n%s", want, out)
		}
	}
}
