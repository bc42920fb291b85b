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
	"sort"
	"strings"
)

// MemoryEntry is the set of possible values of one index at one program point. It is immutable:
// every operation returns a new entry. Values are kept sorted, which makes equality and printing
// deterministic.
//
// Construction normalizes subsumption: a restricted AnyValue absorbs the constants of its kind
// and Any absorbs every scalar. Containers, Undefined and info flags are never absorbed.
type MemoryEntry struct {
	values []Value
}

// EmptyEntry is the entry with no values.
var EmptyEntry = MemoryEntry{}

// NewEntry returns the normalized entry containing values.
func NewEntry(values ...Value) MemoryEntry {
	if len(values) == 0 {
		return EmptyEntry
	}
	vals := make([]Value, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, isAlias := v.(*AliasValue); isAlias {
			panic(&ContractViolation{Op: "NewEntry", Reason: "alias tokens cannot be stored"})
		}
		vals = append(vals, v)
	}
	return normalize(vals)
}

func normalize(vals []Value) MemoryEntry {
	sort.Slice(vals, func(i, j int) bool { return compareValues(vals[i], vals[j]) < 0 })
	// deduplicate
	out := vals[:0]
	for i, v := range vals {
		if i > 0 && compareValues(out[len(out)-1], v) == 0 {
			continue
		}
		out = append(out, v)
	}
	// subsumption
	var absorbAll bool
	absorbed := map[ValueKind]bool{}
	for _, v := range out {
		if a, ok := v.(AnyValue); ok {
			if a.Type == KindAny {
				absorbAll = true
			} else {
				absorbed[a.Type] = true
			}
		}
	}
	if absorbAll || len(absorbed) > 0 {
		kept := out[:0]
		for _, v := range out {
			if a, ok := v.(AnyValue); ok {
				if absorbAll && a.Type != KindAny {
					continue
				}
			} else if v.Kind().IsScalar() && (absorbAll || absorbed[v.Kind()]) {
				continue
			}
			kept = append(kept, v)
		}
		out = kept
	}
	if len(out) == 0 {
		return EmptyEntry
	}
	return MemoryEntry{values: out}
}

// Count returns the number of values in the entry.
func (e MemoryEntry) Count() int { return len(e.values) }

// IsEmpty returns true when the entry has no values.
func (e MemoryEntry) IsEmpty() bool { return len(e.values) == 0 }

// Values returns the values in deterministic order. The returned slice must not be modified.
func (e MemoryEntry) Values() []Value { return e.values }

// Contains returns true if v is one of the values of the entry. Subsumption is not taken into
// account: a restricted AnyValue does not contain the constants of its kind.
func (e MemoryEntry) Contains(v Value) bool {
	i := sort.Search(len(e.values), func(i int) bool { return compareValues(e.values[i], v) >= 0 })
	return i < len(e.values) && compareValues(e.values[i], v) == 0
}

// Covers returns true if v is in the entry or subsumed by one of its values.
func (e MemoryEntry) Covers(v Value) bool {
	if e.Contains(v) {
		return true
	}
	if !v.Kind().IsScalar() {
		return false
	}
	return e.Contains(Any) || e.Contains(AnyValue{Type: v.Kind()})
}

// HasKind returns true if one of the values has kind k.
func (e MemoryEntry) HasKind(k ValueKind) bool {
	for _, v := range e.values {
		if v.Kind() == k {
			return true
		}
	}
	return false
}

// Union returns the union of e and others.
func (e MemoryEntry) Union(others ...MemoryEntry) MemoryEntry {
	n := len(e.values)
	same := true
	for _, o := range others {
		n += len(o.values)
		if !e.Equal(o) {
			same = false
		}
	}
	if same {
		return e
	}
	vals := make([]Value, 0, n)
	vals = append(vals, e.values...)
	for _, o := range others {
		vals = append(vals, o.values...)
	}
	return normalize(vals)
}

// With returns the entry extended with values.
func (e MemoryEntry) With(values ...Value) MemoryEntry {
	return e.Union(NewEntry(values...))
}

// Without returns the entry without the values equal to v.
func (e MemoryEntry) Without(v Value) MemoryEntry {
	return e.Filter(func(x Value) bool { return compareValues(x, v) != 0 })
}

// Filter returns the entry with the values for which keep returns true.
func (e MemoryEntry) Filter(keep func(Value) bool) MemoryEntry {
	var vals []Value
	for _, v := range e.values {
		if keep(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == len(e.values) {
		return e
	}
	if len(vals) == 0 {
		return EmptyEntry
	}
	return MemoryEntry{values: vals}
}

// Map returns the entry of the values f(v) for each value of e.
func (e MemoryEntry) Map(f func(Value) Value) MemoryEntry {
	vals := make([]Value, 0, len(e.values))
	for _, v := range e.values {
		vals = append(vals, f(v))
	}
	return NewEntry(vals...)
}

// Equal returns true when both entries have the same values.
func (e MemoryEntry) Equal(o MemoryEntry) bool {
	if len(e.values) != len(o.values) {
		return false
	}
	for i := range e.values {
		if compareValues(e.values[i], o.values[i]) != 0 {
			return false
		}
	}
	return true
}

// Arrays returns the array handles of the entry.
func (e MemoryEntry) Arrays() []ArrayValue {
	var arrays []ArrayValue
	for _, v := range e.values {
		if a, ok := v.(ArrayValue); ok {
			arrays = append(arrays, a)
		}
	}
	return arrays
}

// Objects returns the object handles of the entry.
func (e MemoryEntry) Objects() []ObjectValue {
	var objects []ObjectValue
	for _, v := range e.values {
		if o, ok := v.(ObjectValue); ok {
			objects = append(objects, o)
		}
	}
	return objects
}

// Strings returns the string constants of the entry and whether every value is a string constant.
func (e MemoryEntry) Strings() ([]string, bool) {
	var strs []string
	all := len(e.values) > 0
	for _, v := range e.values {
		if s, ok := v.(StringValue); ok {
			strs = append(strs, s.V)
		} else {
			all = false
		}
	}
	return strs, all
}

func (e MemoryEntry) String() string {
	parts := make([]string, len(e.values))
	for i, v := range e.values {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
