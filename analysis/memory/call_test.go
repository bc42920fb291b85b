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

package memory

import (
	"testing"
)

func TestCallFoldsGlobalChanges(t *testing.T) {
	caller := newTestSnapshot()
	caller.StartTransaction()
	writeVar(caller, "x", Int(1))
	writeVar(caller, "keep", Int(9))
	caller.CommitTransaction()

	callee := caller.CreateCall(1)
	callee.WritePath(GlobalVariablePath(Single("x")), NewEntry(Int(7)), EmptyEntry)
	writeVar(callee, "p", Int(3))
	callee.WritePath(ControlPath("return"), readVar(callee, "p"), EmptyEntry)
	callee.CommitTransaction()

	if callee.CallLevel() != 1 || len(callee.Levels()) != 2 {
		t.Fatalf("unexpected callee levels %d %v", callee.CallLevel(), callee.Levels())
	}
	assertEntry(t, "callee view of $x", callee.ReadPath(GlobalVariablePath(Single("x"))).Values, Int(7))
	assertEntry(t, "callee local $x", readVar(callee, "x"), Undefined)

	slot := NewControlIndex("call#1", 0)
	back := caller.NewChild()
	back.StartTransaction()
	back.MergeWithCall(caller, callee)
	back.AssignFrom(slot, callee, NewControlIndex("return", 1))
	back.CommitTransaction()

	assertEntry(t, "$x", readVar(back, "x"), Int(7))
	assertEntry(t, "$keep", readVar(back, "keep"), Int(9))
	assertEntry(t, "call result", back.ReadValue(slot), Int(3))
	if _, ok := back.Structure().Scope(VariableIndex, 1); ok {
		t.Errorf("the callee scope should not survive the return")
	}
	if back.CallLevel() != 0 {
		t.Errorf("expected level 0 after the return, got %d", back.CallLevel())
	}
}

func TestCallReturnsArrays(t *testing.T) {
	caller := newTestSnapshot()
	caller.StartTransaction()
	caller.CommitTransaction()

	callee := caller.CreateCall(1)
	callee.WritePath(varPath("arr").Element(Single("k")), NewEntry(String("v")), EmptyEntry)
	callee.WritePath(ControlPath("return"), readVar(callee, "arr"), EmptyEntry)
	callee.CommitTransaction()

	slot := NewControlIndex("call#2", 0)
	back := caller.NewChild()
	back.StartTransaction()
	back.MergeWithCall(caller, callee)
	back.AssignFrom(slot, callee, NewControlIndex("return", 1))
	back.CommitTransaction()

	got := back.ReadPath(IndexPath(slot).Element(Single("k"))).Values
	assertEntry(t, "returned element", got, String("v"))
}

func TestCallByReferenceParameter(t *testing.T) {
	caller := newTestSnapshot()
	caller.StartTransaction()
	writeVar(caller, "a", Int(1))
	caller.CommitTransaction()

	callee := caller.CreateCall(1)
	callee.AssignAlias(NewVariableIndex("p", 1), NewVariableIndex("a", 0))
	writeVar(callee, "p", Int(2))
	callee.CommitTransaction()

	back := caller.NewChild()
	back.StartTransaction()
	back.MergeWithCall(caller, callee)
	back.CommitTransaction()

	assertEntry(t, "$a", readVar(back, "a"), Int(2))
	if !back.Alias(NewVariableIndex("a", 0)).IsEmpty() {
		t.Errorf("aliases to the callee level should be dropped, got %s", back.Alias(NewVariableIndex("a", 0)))
	}
}

func TestCallEscapingArrayOwnedByCallee(t *testing.T) {
	caller := newTestSnapshot()
	caller.StartTransaction()
	caller.WriteAlias(varPath("g"), caller.CreateAlias(varPath("h")))
	caller.CommitTransaction()

	callee := caller.CreateCall(1)
	callee.AssignAlias(NewVariableIndex("p", 1), NewVariableIndex("g", 0))
	// the array is materialized under the callee-level alias and shared with $g
	callee.WritePath(varPath("p").Element(Single("k")), NewEntry(Int(5)), EmptyEntry)
	callee.CommitTransaction()

	back := caller.NewChild()
	back.StartTransaction()
	back.MergeWithCall(caller, callee)
	back.CommitTransaction()

	assertEntry(t, "$g[k]", back.ReadPath(varPath("g").Element(Single("k"))).Values, Int(5))
	assertEntry(t, "$h[k]", back.ReadPath(varPath("h").Element(Single("k"))).Values, Int(5))
}

func TestRecursiveCallResetsLevel(t *testing.T) {
	caller := newTestSnapshot()
	caller.StartTransaction()
	caller.CommitTransaction()
	first := caller.CreateCall(1)
	writeVar(first, "local", Int(1))
	first.CommitTransaction()

	again := first.CreateCall(1)
	again.CommitTransaction()
	assertEntry(t, "$local in the recursive call", readVar(again, "local"), Undefined)
	if len(again.Levels()) != 2 {
		t.Errorf("a recursive call should not add a level, got %v", again.Levels())
	}
}
