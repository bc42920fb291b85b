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

func TestEntryNormalization(t *testing.T) {
	e := NewEntry(String("a"), String("a"), Int(1), String("b"))
	if e.Count() != 3 {
		t.Errorf("duplicates should be removed, got %s", e)
	}
	assertEntry(t, "any string absorbs strings", NewEntry(String("a"), AnyString, Int(1)), Int(1), AnyString)
	assertEntry(t, "any absorbs scalars", NewEntry(String("a"), Any, Null, Undefined), Undefined, Any)

	owner := NewVariableIndex("a", 0)
	withArray := NewEntry(Any, ArrayValue{Owner: owner})
	if !withArray.Contains(ArrayValue{Owner: owner}) {
		t.Errorf("containers are never absorbed")
	}
	if !NewEntry(AnyString).Covers(String("x")) || NewEntry(AnyString).Covers(Int(1)) {
		t.Errorf("unexpected coverage of AnyString")
	}
}

func TestEntryUnionAndFilter(t *testing.T) {
	a := NewEntry(Int(1), Int(2))
	b := NewEntry(Int(2), Int(3))
	assertEntry(t, "union", a.Union(b), Int(1), Int(2), Int(3))
	assertEntry(t, "filter", a.Union(b).Filter(func(v Value) bool { return v != Int(2) }), Int(1), Int(3))
	if !a.Equal(NewEntry(Int(2), Int(1))) {
		t.Errorf("entries with the same values should be equal")
	}
	if strs, all := NewEntry(String("x"), String("y")).Strings(); !all || len(strs) != 2 {
		t.Errorf("expected two strings, got %v", strs)
	}
}

func TestAliasTokensAreNotStorable(t *testing.T) {
	expectViolation(t, "storing an alias", func() { NewEntry(&AliasValue{}) })
}
