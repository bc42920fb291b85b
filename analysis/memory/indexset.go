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

import "sort"

// IndexSet is an immutable, sorted set of indexes.
type IndexSet struct {
	items []MemoryIndex
}

// NewIndexSet returns the set of indexes.
func NewIndexSet(indexes ...MemoryIndex) IndexSet {
	if len(indexes) == 0 {
		return IndexSet{}
	}
	items := make([]MemoryIndex, len(indexes))
	copy(items, indexes)
	sort.Slice(items, func(i, j int) bool { return compareIndex(items[i], items[j]) < 0 })
	out := items[:0]
	for i, x := range items {
		if i > 0 && out[len(out)-1] == x {
			continue
		}
		out = append(out, x)
	}
	return IndexSet{items: out}
}

// Len returns the number of indexes in the set.
func (s IndexSet) Len() int { return len(s.items) }

// Items returns the indexes in deterministic order. The slice must not be modified.
func (s IndexSet) Items() []MemoryIndex { return s.items }

// Contains returns true if i is in the set.
func (s IndexSet) Contains(i MemoryIndex) bool {
	k := sort.Search(len(s.items), func(k int) bool { return compareIndex(s.items[k], i) >= 0 })
	return k < len(s.items) && s.items[k] == i
}

// Add returns the set with i.
func (s IndexSet) Add(i MemoryIndex) IndexSet {
	if s.Contains(i) {
		return s
	}
	return NewIndexSet(append(append([]MemoryIndex{}, s.items...), i)...)
}

// Remove returns the set without i.
func (s IndexSet) Remove(i MemoryIndex) IndexSet {
	return s.Filter(func(x MemoryIndex) bool { return x != i })
}

// Union returns the union of s and o.
func (s IndexSet) Union(o IndexSet) IndexSet {
	if o.Len() == 0 {
		return s
	}
	if s.Len() == 0 {
		return o
	}
	return NewIndexSet(append(append([]MemoryIndex{}, s.items...), o.items...)...)
}

// Intersect returns the indexes in both s and o.
func (s IndexSet) Intersect(o IndexSet) IndexSet {
	return s.Filter(o.Contains)
}

// Minus returns the indexes of s not in o.
func (s IndexSet) Minus(o IndexSet) IndexSet {
	return s.Filter(func(x MemoryIndex) bool { return !o.Contains(x) })
}

// Filter returns the indexes of s for which keep returns true.
func (s IndexSet) Filter(keep func(MemoryIndex) bool) IndexSet {
	var items []MemoryIndex
	for _, x := range s.items {
		if keep(x) {
			items = append(items, x)
		}
	}
	if len(items) == len(s.items) {
		return s
	}
	return IndexSet{items: items}
}

// Equal returns true if both sets have the same indexes.
func (s IndexSet) Equal(o IndexSet) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}
