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

package valueset

import (
	"testing"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/google/go-cmp/cmp"
)

func entry(values ...memory.Value) memory.MemoryEntry { return memory.NewEntry(values...) }

func TestBinaryOp(t *testing.T) {
	e := New(nil)
	tests := []struct {
		op          cfg.BinaryOp
		left, right memory.MemoryEntry
		want        memory.MemoryEntry
	}{
		{cfg.OpAdd, entry(memory.Int(1)), entry(memory.String("2")), entry(memory.Int(3))},
		{cfg.OpAdd, entry(memory.Int(1)), entry(memory.Float(0.5)), entry(memory.Float(1.5))},
		{cfg.OpSub, entry(memory.Int(1), memory.Int(2)), entry(memory.Int(1)), entry(memory.Int(0), memory.Int(1))},
		{cfg.OpDiv, entry(memory.Int(1)), entry(memory.Int(2)), entry(memory.Float(0.5))},
		{cfg.OpDiv, entry(memory.Int(4)), entry(memory.Int(2)), entry(memory.Int(2))},
		{cfg.OpDiv, entry(memory.Int(1)), entry(memory.Int(0)), entry(memory.Any)},
		{cfg.OpMod, entry(memory.Int(7)), entry(memory.Int(3)), entry(memory.Int(1))},
		{cfg.OpConcat, entry(memory.String("a"), memory.String("b")), entry(memory.String("c")),
			entry(memory.String("ac"), memory.String("bc"))},
		{cfg.OpConcat, entry(memory.Float(1.5)), entry(memory.True), entry(memory.String("1.51"))},
		{cfg.OpConcat, entry(memory.AnyString), entry(memory.String("c")), entry(memory.AnyString)},
		{cfg.OpEq, entry(memory.String("1")), entry(memory.String("01")), entry(memory.True)},
		{cfg.OpLess, entry(memory.Int(1), memory.Int(5)), entry(memory.Int(3)), entry(memory.True, memory.False)},
		{cfg.OpSpaceship, entry(memory.Int(1)), entry(memory.Int(2)), entry(memory.Int(-1))},
		{cfg.OpCoalesce, entry(memory.Null, memory.String("a")), entry(memory.String("b")),
			entry(memory.String("a"), memory.String("b"))},
		{cfg.OpShl, entry(memory.Int(1)), entry(memory.Int(4)), entry(memory.Int(16))},
		{cfg.OpAdd, entry(memory.AnyInt), entry(memory.Int(1)), entry(memory.AnyInt)},
		{cfg.OpMul, entry(memory.AnyInt), entry(memory.Float(2)), entry(memory.AnyFloat)},
		{cfg.OpMod, entry(memory.AnyFloat), entry(memory.Int(2)), entry(memory.AnyInt)},
		{cfg.OpDiv, entry(memory.Int(1)), entry(memory.AnyFloat), entry(memory.AnyFloat)},
		{cfg.OpDiv, entry(memory.AnyInt), entry(memory.Int(2)), entry(memory.Any)},
		{cfg.OpAdd, entry(memory.AnyString), entry(memory.Int(1)), entry(memory.Any)},
	}
	for _, test := range tests {
		got := e.BinaryOp(test.op, test.left, test.right)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v %s %v: (-want +got)\n%s", test.left, test.op, test.right, diff)
		}
	}
}

func TestBinaryOpBound(t *testing.T) {
	e := New(nil)
	e.MaxProduct = 2
	got := e.BinaryOp(cfg.OpConcat, entry(memory.String("a"), memory.String("b")),
		entry(memory.String("c"), memory.String("d")))
	if diff := cmp.Diff(entry(memory.AnyString), got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}

func TestCompare(t *testing.T) {
	e := New(nil)
	tests := []struct {
		op          cfg.BinaryOp
		left, right memory.MemoryEntry
		want        engine.Truth
	}{
		{cfg.OpEq, entry(memory.String("abc")), entry(memory.Int(0)), engine.AlwaysFalse},
		{cfg.OpEq, entry(memory.String("1e1")), entry(memory.Int(10)), engine.AlwaysTrue},
		{cfg.OpEq, entry(memory.Null), entry(memory.False), engine.AlwaysTrue},
		{cfg.OpEq, entry(memory.Undefined), entry(memory.String("")), engine.AlwaysTrue},
		{cfg.OpIdentical, entry(memory.String("1")), entry(memory.Int(1)), engine.AlwaysFalse},
		{cfg.OpNotIdent, entry(memory.AnyInt), entry(memory.String("x")), engine.AlwaysTrue},
		{cfg.OpLess, entry(memory.Int(1)), entry(memory.Int(2), memory.Float(3.5)), engine.AlwaysTrue},
		{cfg.OpGreaterEq, entry(memory.String("b")), entry(memory.String("a")), engine.AlwaysTrue},
		{cfg.OpEq, entry(memory.AnyString), entry(memory.String("x")), engine.Unknown},
		{cfg.OpEq, entry(memory.Int(1), memory.Int(2)), entry(memory.Int(1)), engine.Unknown},
	}
	for _, test := range tests {
		if got := e.Compare(test.op, test.left, test.right); got != test.want {
			t.Errorf("%v %s %v = %s, want %s", test.left, test.op, test.right, got, test.want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	e := New(nil)
	tests := []struct {
		x    memory.MemoryEntry
		want engine.Truth
	}{
		{entry(memory.String("0")), engine.AlwaysFalse},
		{entry(memory.String("0.0")), engine.AlwaysTrue},
		{entry(memory.Null, memory.Undefined, memory.Int(0)), engine.AlwaysFalse},
		{entry(memory.Int(0), memory.Int(1)), engine.Unknown},
		{entry(memory.AnyBool), engine.Unknown},
		{entry(), engine.Unknown},
	}
	for _, test := range tests {
		if got := e.Truthiness(test.x); got != test.want {
			t.Errorf("Truthiness(%v) = %s, want %s", test.x, got, test.want)
		}
	}
}

func TestAssume(t *testing.T) {
	e := New(nil)
	s123 := entry(memory.String("1"), memory.String("2"), memory.String("3"))
	tests := []struct {
		name    string
		cond    engine.Condition
		subject memory.MemoryEntry
		want    memory.MemoryEntry
	}{
		{"not equal", engine.Condition{Op: cfg.OpEq, Other: entry(memory.String("1"))}, s123,
			entry(memory.String("2"), memory.String("3"))},
		{"equal", engine.Condition{Op: cfg.OpEq, Other: entry(memory.String("2")), Holds: true}, s123,
			entry(memory.String("2"))},
		{"identity refines", engine.Condition{Op: cfg.OpIdentical, Other: entry(memory.String("x")), Holds: true},
			entry(memory.AnyString, memory.Int(1)), entry(memory.String("x"))},
		{"truthy", engine.Condition{Holds: true}, entry(memory.Null, memory.String("a"), memory.AnyString),
			entry(memory.String("a"), memory.AnyString)},
		{"falsy", engine.Condition{}, entry(memory.Null, memory.String("a")), entry(memory.Null)},
		{"infeasible", engine.Condition{Op: cfg.OpLess, Other: entry(memory.Int(0)), Holds: true},
			entry(memory.Int(1), memory.Int(2)), entry()},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := e.Assume(test.cond, test.subject)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("(-want +got)\n%s", diff)
			}
		})
	}
}

func TestArrayKey(t *testing.T) {
	e := New(nil)
	got := e.ArrayKey(entry(memory.True, memory.Float(1.7), memory.String("x"), memory.Null))
	if diff := cmp.Diff(memory.Names("", "1", "x").Names(), got.Names()); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
	if !e.ArrayKey(entry(memory.AnyString)).IsAny() {
		t.Errorf("unknown key should denote any element")
	}
}

func TestForeach(t *testing.T) {
	e := New(nil)
	arr := memory.ArrayValue{Owner: memory.NewVariableIndex("a", 0)}
	keys, values := e.Foreach(entry(arr), []string{"0", "k"}, false,
		entry(memory.String("x"), memory.Undefined))
	if diff := cmp.Diff(entry(memory.Int(0), memory.String("k")), keys); diff != "" {
		t.Errorf("keys (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff(entry(memory.String("x")), values); diff != "" {
		t.Errorf("values (-want +got)\n%s", diff)
	}
}

func TestNatives(t *testing.T) {
	e := New(nil)
	tests := []struct {
		name string
		args []memory.MemoryEntry
		want memory.MemoryEntry
	}{
		{"strlen", []memory.MemoryEntry{entry(memory.String("abc"))}, entry(memory.Int(3))},
		{"STRTOUPPER", []memory.MemoryEntry{entry(memory.String("abc"))}, entry(memory.String("ABC"))},
		{"htmlspecialchars", []memory.MemoryEntry{entry(memory.String(`<a href="x">`))},
			entry(memory.String("&lt;a href=&quot;x&quot;&gt;"))},
		{"md5", []memory.MemoryEntry{entry(memory.String(""))},
			entry(memory.String("d41d8cd98f00b204e9800998ecf8427e"))},
		{"intval", []memory.MemoryEntry{entry(memory.String("12abc"))}, entry(memory.Int(12))},
		{"is_numeric", []memory.MemoryEntry{entry(memory.String(" 1.5"), memory.String("x"))},
			entry(memory.True, memory.False)},
		{"str_replace", []memory.MemoryEntry{entry(memory.String("a")), entry(memory.String("b")),
			entry(memory.String("banana"))}, entry(memory.String("bbnbnb"))},
		{"addslashes", []memory.MemoryEntry{entry(memory.String(`O'Re"il`))}, entry(memory.String(`O\'Re\"il`))},
		{"count", nil, entry(memory.AnyInt)},
	}
	for _, test := range tests {
		got, ok := e.NativeCall(test.name, test.args)
		if !ok {
			t.Errorf("%s is not modeled", test.name)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: (-want +got)\n%s", test.name, diff)
		}
	}
	if _, ok := e.NativeCall("no_such_function", nil); ok {
		t.Errorf("unknown functions should not be modeled")
	}
}

func TestFormatFloat(t *testing.T) {
	for f, want := range map[float64]string{0.1: "0.1", 2: "2", 1e20: "1.0E+20", -1.25: "-1.25"} {
		if got := formatFloat(f); got != want {
			t.Errorf("formatFloat(%v) = %q, want %q", f, got, want)
		}
	}
}

func TestCast(t *testing.T) {
	e := New(nil)
	got := e.Cast("int", entry(memory.String("7"), memory.Float(2.9), memory.AnyString))
	if diff := cmp.Diff(entry(memory.Int(7), memory.Int(2), memory.AnyInt), got); diff != "" {
		t.Errorf("(-want +got)\n%s", diff)
	}
}
