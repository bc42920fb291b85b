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

	"github.com/google/go-cmp/cmp"
)

func newTestSnapshot() *Snapshot {
	return NewSnapshot(NewDefaultAssistant(5, 3), NewStatistics())
}

func varPath(name string) Path { return VariablePath(Single(name)) }

func writeVar(s *Snapshot, name string, values ...Value) {
	s.WritePath(varPath(name), NewEntry(values...), EmptyEntry)
}

func readVar(s *Snapshot, name string) MemoryEntry {
	return s.ReadPath(varPath(name)).Values
}

// assertEntry fails the test when got does not hold exactly want.
func assertEntry(t *testing.T, what string, got MemoryEntry, want ...Value) {
	t.Helper()
	if diff := cmp.Diff(NewEntry(want...).String(), got.String()); diff != "" {
		t.Errorf("unexpected values for %s (-want +got):\n%s", what, diff)
	}
}

// derive returns a committed snapshot extending from inputs after applying f.
func derive(inputs []*Snapshot, f func(s *Snapshot)) *Snapshot {
	s := inputs[0].NewChild()
	s.StartTransaction()
	s.Extend(inputs...)
	if f != nil {
		f(s)
	}
	s.CommitTransaction()
	return s
}

func expectViolation(t *testing.T, what string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*ContractViolation); !ok {
			t.Errorf("%s: expected a contract violation, got %v", what, r)
		}
	}()
	f()
}
