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
	"strings"
	"testing"
)

func TestIndexEquality(t *testing.T) {
	a := NewVariableIndex("x", 1).ElementIndex("k")
	b := NewVariableIndex("x", 1).ElementIndex("k")
	if a != b {
		t.Errorf("indexes built the same way should be equal")
	}
	if a == NewVariableIndex("x", 2).ElementIndex("k") {
		t.Errorf("indexes of different levels should differ")
	}
	m := map[MemoryIndex]int{a: 1}
	if m[b] != 1 {
		t.Errorf("indexes should be usable as map keys")
	}
}

func TestIndexStructure(t *testing.T) {
	root := NewVariableIndex("a", 0)
	child := root.ElementIndex(`we["ird`).ElementIndex("k")
	parent, ok := child.Parent()
	if !ok || parent != root.ElementIndex(`we["ird`) {
		t.Errorf("unexpected parent %s of %s", parent, child)
	}
	seg, _ := child.LastSegment()
	if !seg.Element || seg.Name != "k" {
		t.Errorf("unexpected last segment %+v", seg)
	}
	if child.Depth() != 2 || !child.HasPrefix(root) || root.HasPrefix(child) {
		t.Errorf("unexpected depth or prefix relation for %s", child)
	}
	if !root.UnknownElementIndex().IsUnknown() || root.IsUnknown() {
		t.Errorf("unexpected unknown flags")
	}
	field := ObjectID("o1").FieldIndex("f")
	if _, ok := field.Parent(); ok {
		t.Errorf("top level fields have no parent index")
	}
}

func TestIndexKeysArePrefixClosed(t *testing.T) {
	a := NewVariableIndex("a", 1)
	ab := NewVariableIndex("ab", 1)
	if strings.HasPrefix(ab.key(), a.key()) {
		t.Errorf("key of $a should not prefix the key of $ab")
	}
	if !strings.HasPrefix(a.ElementIndex("k").key(), a.childKeyPrefix()) {
		t.Errorf("children keys should start with the child prefix")
	}
	if strings.HasPrefix(a.ElementIndex("kk").key(), a.ElementIndex("k").key()) {
		t.Errorf("sibling keys should not prefix each other")
	}
	if strings.HasPrefix(NewVariableIndex("a", 11).key(), levelKeyPrefix(VariableIndex, 1)) {
		t.Errorf("level prefixes should not overlap")
	}
}
