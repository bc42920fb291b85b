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

func TestAssignAndRead(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "x", String("a"))
	s.WritePath(varPath("y"), readVar(s, "x"), EmptyEntry)
	if !s.CommitTransaction() {
		t.Errorf("first commit should report a change")
	}
	assertEntry(t, "$x", readVar(s, "x"), String("a"))
	assertEntry(t, "$y", readVar(s, "y"), String("a"))
	assertEntry(t, "$z", readVar(s, "z"), Undefined)
}

func TestCommitDetectsChanges(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "x", Int(1))
	s.CommitTransaction()

	s.StartTransaction()
	writeVar(s, "x", Int(1))
	if s.CommitTransaction() {
		t.Errorf("rewriting the same value should not be a change")
	}
	s.StartTransaction()
	writeVar(s, "x", Int(2))
	if !s.CommitTransaction() || !s.HasChanged() {
		t.Errorf("a new value should be a change")
	}
}

func TestTransactionContract(t *testing.T) {
	s := newTestSnapshot()
	expectViolation(t, "assign outside transaction", func() { s.Assign(NewVariableIndex("x", 0), NewEntry(Int(1))) })
	expectViolation(t, "commit without start", func() { s.CommitTransaction() })
	s.StartTransaction()
	expectViolation(t, "double start", func() { s.StartTransaction() })
	s.CommitTransaction()
	s.Freeze()
	expectViolation(t, "start on frozen", func() { s.StartTransaction() })
}

func TestArrayCopySemantics(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	s.WritePath(varPath("a").Element(Single("k")), NewEntry(Int(1)), EmptyEntry)
	s.WritePath(varPath("b"), readVar(s, "a"), EmptyEntry)
	s.WritePath(varPath("a").Element(Single("k")), NewEntry(Int(2)), EmptyEntry)
	s.CommitTransaction()

	assertEntry(t, "$a[k]", s.ReadPath(varPath("a").Element(Single("k"))).Values, Int(2))
	assertEntry(t, "$b[k]", s.ReadPath(varPath("b").Element(Single("k"))).Values, Int(1))
	assertEntry(t, "$b", readVar(s, "b"), ArrayValue{Owner: NewVariableIndex("b", 0)})
}

func TestNestedArrayCopy(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	inner := varPath("a").Element(Single("x")).Element(Single("y"))
	s.WritePath(inner, NewEntry(String("deep")), EmptyEntry)
	s.WritePath(varPath("b"), readVar(s, "a"), EmptyEntry)
	s.WritePath(inner, NewEntry(String("changed")), EmptyEntry)
	s.CommitTransaction()

	got := s.ReadPath(varPath("b").Element(Single("x")).Element(Single("y"))).Values
	assertEntry(t, "$b[x][y]", got, String("deep"))
}

func TestMustAliasUpdate(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "a", String("v B"))
	s.WriteAlias(varPath("b"), s.CreateAlias(varPath("a")))
	writeVar(s, "a", String("changed"))
	s.CommitTransaction()

	assertEntry(t, "$b", readVar(s, "b"), String("changed"))
}

func TestMustAliasTransitivity(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "a", Int(1))
	s.WriteAlias(varPath("b"), s.CreateAlias(varPath("a")))
	s.WriteAlias(varPath("c"), s.CreateAlias(varPath("b")))
	writeVar(s, "c", Int(3))
	s.CommitTransaction()

	for _, name := range []string{"a", "b", "c"} {
		assertEntry(t, "$"+name, readVar(s, name), Int(3))
		idx := NewVariableIndex(name, 0)
		if got := s.Alias(idx).Must.Len(); got != 2 {
			t.Errorf("$%s should have 2 must-aliases, got %d", name, got)
		}
	}
}

func TestReferenceToMissingVariableCreatesNull(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	s.WriteAlias(varPath("b"), s.CreateAlias(varPath("a")))
	s.CommitTransaction()
	assertEntry(t, "$a", readVar(s, "a"), Null)
	assertEntry(t, "$b", readVar(s, "b"), Null)
}

func TestRebindKeepsSharedArray(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	s.WritePath(varPath("a").Element(Single("k")), NewEntry(Int(1)), EmptyEntry)
	s.WriteAlias(varPath("b"), s.CreateAlias(varPath("a")))
	writeVar(s, "c", String("c"))
	s.WriteAlias(varPath("a"), s.CreateAlias(varPath("c")))
	s.CommitTransaction()

	assertEntry(t, "$a", readVar(s, "a"), String("c"))
	assertEntry(t, "$b[k]", s.ReadPath(varPath("b").Element(Single("k"))).Values, Int(1))
}

func TestAliasedArrayWrite(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	s.WriteAlias(varPath("b"), s.CreateAlias(varPath("a")))
	s.WritePath(varPath("b").Element(Single("k")), NewEntry(Int(7)), EmptyEntry)
	s.CommitTransaction()

	assertEntry(t, "$a[k]", s.ReadPath(varPath("a").Element(Single("k"))).Values, Int(7))
}

func TestUnset(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "x", Int(1))
	s.Unset(varPath("x"))
	s.CommitTransaction()

	res := s.ReadPath(varPath("x"))
	if res.IsDefined {
		t.Errorf("$x should not be defined after unset")
	}
	assertEntry(t, "$x", res.Values, Undefined)
}

func TestObjectFields(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	obj := s.CreateObject("new A@1", "A")
	writeVar(s, "o", obj)
	s.WritePath(varPath("o").Field(Single("f")), NewEntry(Int(1)), EmptyEntry)
	// objects are handles: the copy shares the fields
	s.WritePath(varPath("p"), readVar(s, "o"), EmptyEntry)
	s.WritePath(varPath("p").Field(Single("f")), NewEntry(Int(2)), EmptyEntry)
	s.CommitTransaction()

	assertEntry(t, "$o->f", s.ReadPath(varPath("o").Field(Single("f"))).Values, Int(2))
}

func TestInfoLayer(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	taint := NewEntry(InfoValue{Flag: "tainted", Origin: "$_GET"})
	s.WritePath(varPath("x"), NewEntry(AnyString), taint)
	s.WriteAlias(varPath("y"), s.CreateAlias(varPath("x")))
	s.CommitTransaction()

	res := s.ReadPath(varPath("y"))
	assertEntry(t, "infos of $y", res.Infos, InfoValue{Flag: "tainted", Origin: "$_GET"})

	s.StartTransaction()
	writeVar(s, "x", String("clean"))
	s.CommitTransaction()
	if !s.ReadPath(varPath("y")).Infos.IsEmpty() {
		t.Errorf("a strong write should clear the info flags of the alias group")
	}
}

func TestStringOffsetRead(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "s", String("abc"))
	s.CommitTransaction()
	assertEntry(t, "$s[1]", s.ReadPath(varPath("s").Element(Single("1"))).Values, String("b"))
}

func TestReleaseTemporary(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	tmp := NewTemporaryIndex("t0", 0)
	s.WritePath(IndexPath(tmp).Element(Single("0")), NewEntry(Int(1)), EmptyEntry)
	writeVar(s, "a", s.ReadValue(tmp).Values()...)
	s.ReleaseTemporary(tmp)
	s.CommitTransaction()

	if _, ok := s.Structure().Array(tmp); ok {
		t.Errorf("the array of a released temporary should be removed")
	}
	assertEntry(t, "$a[0]", s.ReadPath(varPath("a").Element(Single("0"))).Values, Int(1))
}

func TestStatistics(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "x", Int(1))
	s.CommitTransaction()
	st := s.Statistics()
	if st.Get(StrongAssign) != 1 || st.Get(TransactionCommitted) != 1 || st.Get(SnapshotCreated) != 1 {
		t.Errorf("unexpected statistics: assign=%d commit=%d created=%d",
			st.Get(StrongAssign), st.Get(TransactionCommitted), st.Get(SnapshotCreated))
	}
}
