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

func TestCollectorMustSubsetOfMay(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "a", Int(1))
	writeVar(s, "b", Int(2))
	paths := []Path{
		varPath("a"),
		VariablePath(Names("a", "b")),
		VariablePath(AnySegment()),
		varPath("a").Element(Single("k")),
		varPath("c").Element(AnySegment()).Field(Single("f")),
	}
	for _, p := range paths {
		res := s.AssignCollect(p, true)
		if res.Must.Minus(res.May).Len() != 0 {
			t.Errorf("%s: must %v is not a subset of may %v", p, res.Must.Items(), res.May.Items())
		}
		read := s.ReadCollect(p)
		if read.Must.Minus(read.May).Len() != 0 {
			t.Errorf("%s: read must %v is not a subset of may %v", p, read.Must.Items(), read.May.Items())
		}
	}
	s.CommitTransaction()
}

func TestCollectorNameSetsAreWeak(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "a", Int(1))
	writeVar(s, "b", Int(2))
	s.WritePath(VariablePath(Names("a", "b")), NewEntry(Int(3)), EmptyEntry)
	s.CommitTransaction()
	assertEntry(t, "$a", readVar(s, "a"), Int(1), Int(3))
	assertEntry(t, "$b", readVar(s, "b"), Int(2), Int(3))
}

func TestCollectorAnySegment(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	s.WritePath(varPath("a").Element(Single("k")), NewEntry(Int(1)), EmptyEntry)
	s.WritePath(varPath("a").Element(AnySegment()), NewEntry(Int(2)), EmptyEntry)
	s.CommitTransaction()

	assertEntry(t, "$a[k]", s.ReadPath(varPath("a").Element(Single("k"))).Values, Int(1), Int(2))
	// an untracked key reads the unknown index
	res := s.ReadPath(varPath("a").Element(Single("zz")))
	if res.IsDefined {
		t.Errorf("an untracked key should not be defined")
	}
	assertEntry(t, "$a[zz]", res.Values, Undefined, Int(2))
	any := s.ReadPath(varPath("a").Element(AnySegment()))
	assertEntry(t, "$a[?]", any.Values, Undefined, Int(1), Int(2))
}

func TestReadCollectorDoesNotCreate(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	s.CommitTransaction()
	before := s.Fingerprint()
	res := s.ReadCollect(varPath("missing").Element(Single("k")))
	if res.IsDefined || res.Must.Len() != 0 {
		t.Errorf("reading a missing path should give no must index and IsDefined=false, got %+v", res)
	}
	if s.Fingerprint() != before {
		t.Errorf("a read collector must not modify the snapshot")
	}
}

func TestImplicitArrayIsWeakUnderMayParent(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "a", Int(1))
	writeVar(s, "b", Int(2))
	res := s.AssignCollect(VariablePath(Names("a", "b")).Element(Single("k")), true)
	s.CommitTransaction()
	if res.Must.Len() != 0 {
		t.Errorf("elements of may parents cannot be must targets, got %v", res.Must.Items())
	}
	if res.May.Len() != 0 {
		t.Errorf("integers cannot be indexed, got %v", res.May.Items())
	}
}

func TestImplicitMaterialization(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	writeVar(s, "a", Null)
	res := s.AssignCollect(varPath("a").Element(Single("k")), true)
	s.CommitTransaction()
	want := NewVariableIndex("a", 0).ElementIndex("k")
	if !res.Must.Contains(want) {
		t.Errorf("expected %s in the must set, got %v", want, res.Must.Items())
	}
	assertEntry(t, "$a", readVar(s, "a"), ArrayValue{Owner: NewVariableIndex("a", 0)})

	weak := derive([]*Snapshot{s}, func(s *Snapshot) {
		writeVar(s, "u", Undefined, String("x"))
		res := s.AssignCollect(varPath("u").Element(Single("k")), true)
		if res.Must.Len() != 0 {
			t.Errorf("a parent that may hold a string cannot be materialized strongly")
		}
	})
	assertEntry(t, "$u", readVar(weak, "u"), Undefined, String("x"), ArrayValue{Owner: NewVariableIndex("u", 0)})
}

func TestSummaryObjectFieldsAreWeak(t *testing.T) {
	s := newTestSnapshot()
	s.StartTransaction()
	o := s.CreateObject("new#1", "B")
	writeVar(s, "o", o)
	field := varPath("o").Field(Single("f"))
	s.WritePath(field, NewEntry(String("safe")), EmptyEntry)
	s.WritePath(field, NewEntry(String("first")), EmptyEntry)
	assertEntry(t, "$o->f of a fresh object", s.ReadPath(field).Values, String("first"))

	s.CreateObject("new#1", "B")
	if d, _ := s.Structure().Object(o.ID); !d.IsSummary() {
		t.Errorf("an object allocated twice at the same site should be a summary")
	}
	s.WritePath(field, NewEntry(String("other")), EmptyEntry)
	s.CommitTransaction()
	assertEntry(t, "$o->f of a summary object", s.ReadPath(field).Values, String("first"), String("other"))
}
