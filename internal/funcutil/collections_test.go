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

package funcutil

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMap(t *testing.T) {
	got := Map([]string{"a", "bc"}, func(s string) int { return len(s) })
	if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
		t.Errorf("Map mismatch (-want +got):\n%s", diff)
	}
	if got := Map(nil, strings.ToUpper); len(got) != 0 {
		t.Errorf("Map of nil returned %v", got)
	}
	a := []string{"x", "y"}
	MapInPlace(a, strings.ToUpper)
	if diff := cmp.Diff([]string{"X", "Y"}, a); diff != "" {
		t.Errorf("MapInPlace mismatch (-want +got):\n%s", diff)
	}
}

func TestExists(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	if !Exists([]int{1, 3, 4}, even) {
		t.Errorf("expected an even number")
	}
	if Exists([]int{1, 3}, even) {
		t.Errorf("expected no even number")
	}
}

func TestOrderedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 0}
	if diff := cmp.Diff([]string{"a", "b", "c"}, SortedKeys(m)); diff != "" {
		t.Errorf("SortedKeys mismatch (-want +got):\n%s", diff)
	}
	set := map[int64]bool{4: true, 1: true, 3: false}
	if diff := cmp.Diff([]int64{1, 4}, SetToOrderedSlice(set)); diff != "" {
		t.Errorf("SetToOrderedSlice mismatch (-want +got):\n%s", diff)
	}
}
