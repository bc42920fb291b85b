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
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func branches(t *testing.T) (*Snapshot, *Snapshot, *Snapshot) {
	t.Helper()
	base := newTestSnapshot()
	base.StartTransaction()
	writeVar(base, "common", Int(0))
	base.CommitTransaction()
	left := derive([]*Snapshot{base}, func(s *Snapshot) { writeVar(s, "s", String("f1a")) })
	right := derive([]*Snapshot{base}, func(s *Snapshot) { writeVar(s, "s", String("f1b")) })
	return base, left, right
}

func TestMergeJoinsBranches(t *testing.T) {
	_, left, right := branches(t)
	m := derive([]*Snapshot{left, right}, nil)
	assertEntry(t, "$s", readVar(m, "s"), String("f1a"), String("f1b"))
	assertEntry(t, "$common", readVar(m, "common"), Int(0))
}

func TestMergeMissingIndexIsUndefined(t *testing.T) {
	base, left, _ := branches(t)
	m := derive([]*Snapshot{left, base}, nil)
	assertEntry(t, "$s", readVar(m, "s"), Undefined, String("f1a"))
}

func TestMergeIdempotence(t *testing.T) {
	_, left, right := branches(t)
	once := derive([]*Snapshot{left, right}, nil)
	many := derive([]*Snapshot{left, right, left, right, left}, nil)
	if once.Differs(many) {
		t.Errorf("merging the same inputs several times should not change the result:\n%s\n%s", once, many)
	}
	self := derive([]*Snapshot{once, once, once}, nil)
	if self.Differs(once) {
		t.Errorf("merging a snapshot with itself should be the identity")
	}
}

func TestMergeArrayElements(t *testing.T) {
	base := newTestSnapshot()
	base.StartTransaction()
	base.WritePath(varPath("a").Element(Single("x")), NewEntry(Int(1)), EmptyEntry)
	base.CommitTransaction()
	left := derive([]*Snapshot{base}, func(s *Snapshot) {
		s.WritePath(varPath("a").Element(Single("y")), NewEntry(Int(2)), EmptyEntry)
	})
	m := derive([]*Snapshot{left, base}, nil)
	assertEntry(t, "$a[x]", m.ReadPath(varPath("a").Element(Single("x"))).Values, Int(1))
	assertEntry(t, "$a[y]", m.ReadPath(varPath("a").Element(Single("y"))).Values, Undefined, Int(2))
}

func TestMergeDemotesDivergentAliases(t *testing.T) {
	base := newTestSnapshot()
	base.StartTransaction()
	writeVar(base, "a", Int(1))
	writeVar(base, "b", Int(2))
	base.CommitTransaction()
	aliased := derive([]*Snapshot{base}, func(s *Snapshot) {
		s.WriteAlias(varPath("b"), s.CreateAlias(varPath("a")))
	})
	m := derive([]*Snapshot{aliased, base}, nil)
	rec := m.Alias(NewVariableIndex("b", 0))
	if rec.Must.Len() != 0 || !rec.May.Contains(NewVariableIndex("a", 0)) {
		t.Errorf("expected $a to be a may-alias of $b, got %s", rec)
	}
	kept := derive([]*Snapshot{aliased, aliased}, nil)
	if !kept.Alias(NewVariableIndex("b", 0)).Must.Contains(NewVariableIndex("a", 0)) {
		t.Errorf("must-aliases present in every input should be kept")
	}

	// a write through the may-alias is weak
	w := derive([]*Snapshot{m}, func(s *Snapshot) { writeVar(s, "a", Int(5)) })
	assertEntry(t, "$b", readVar(w, "b"), Int(1), Int(2), Int(5))
}

func TestSimplification(t *testing.T) {
	base := newTestSnapshot()
	base.StartTransaction()
	base.CommitTransaction()
	var inputs []*Snapshot
	for i := int64(0); i < 6; i++ {
		i := i
		inputs = append(inputs, derive([]*Snapshot{base}, func(s *Snapshot) { writeVar(s, "i", Int(i)) }))
	}
	m := derive(inputs, nil)
	assertEntry(t, "$i", readVar(m, "i"), AnyInt)

	small := derive(inputs[:4], nil)
	assertEntry(t, "$i", readVar(small, "i"), Int(0), Int(1), Int(2), Int(3))

	w := base.NewChild()
	w.StartTransaction()
	w.Widen(inputs[:4]...)
	w.CommitTransaction()
	assertEntry(t, "$i widened", readVar(w, "i"), AnyInt)
}

func TestWidenFoldsArrayNames(t *testing.T) {
	base := newTestSnapshot()
	base.StartTransaction()
	for k := 0; k < 4; k++ {
		base.WritePath(varPath("a").Element(Single(fmt.Sprintf("k%d", k))), NewEntry(Int(int64(k))), EmptyEntry)
	}
	base.WritePath(varPath("a").Element(Single("k4")).Element(Single("x")), NewEntry(String("deep")), EmptyEntry)
	base.CommitTransaction()

	w := base.NewChild()
	w.StartTransaction()
	w.Widen(base)
	w.CommitTransaction()

	owner := NewVariableIndex("a", 0)
	d, ok := w.structure.Array(owner)
	if !ok {
		t.Fatalf("$a is no longer an array")
	}
	if diff := cmp.Diff([]string{"k0", "k1", "k2"}, d.Names()); diff != "" {
		t.Errorf("unexpected names after widening (-want +got):\n%s", diff)
	}
	assertEntry(t, "$a[k1]", w.ReadPath(varPath("a").Element(Single("k1"))).Values, Int(1))
	assertEntry(t, "$a[k3]", w.ReadPath(varPath("a").Element(Single("k3"))).Values,
		Undefined, Int(3), ArrayValue{Owner: owner.UnknownElementIndex()})
	deep := w.ReadPath(varPath("a").Element(Single("k9")).Element(Single("x"))).Values
	if !deep.Contains(String("deep")) {
		t.Errorf("nested array of a folded element is lost: %s", deep)
	}

	again := base.NewChild()
	again.StartTransaction()
	again.Widen(w)
	again.CommitTransaction()
	if again.Differs(w) {
		t.Errorf("widening a widened snapshot should be stable:\n%s\n%s", w, again)
	}
}

func TestMergeRequiresEqualLevels(t *testing.T) {
	base := newTestSnapshot()
	base.StartTransaction()
	base.CommitTransaction()
	callee := base.CreateCall(1)
	callee.CommitTransaction()
	m := base.NewChild()
	m.StartTransaction()
	expectViolation(t, "merge of different levels", func() { m.Extend(base, callee) })
}

func TestDefaultAssistant(t *testing.T) {
	a := NewDefaultAssistant(0, 0)
	if a.SimplifyLimit() != 5 || a.WideningLimit() != 3 {
		t.Errorf("unexpected default limits %d %d", a.SimplifyLimit(), a.WideningLimit())
	}
	owner := NewVariableIndex("a", 0)
	got := a.Simplify(NewEntry(String("a"), Int(1), Undefined, ArrayValue{Owner: owner}))
	assertEntry(t, "mixed", got, Undefined, Any, ArrayValue{Owner: owner})
	got = a.Simplify(NewEntry(String("a"), String("b")))
	assertEntry(t, "strings", got, AnyString)
}
