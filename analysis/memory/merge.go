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
	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

// Extend replaces the state of s with the join of inputs. A single input is shared, not copied.
// Entries larger than the simplification limit of the assistant are simplified.
func (s *Snapshot) Extend(inputs ...*Snapshot) {
	s.checkWritable("Extend")
	s.extend(inputs, s.assistant.SimplifyLimit())
}

// Widen is Extend with the widening limit of the assistant. It is used at loop heads. Arrays with
// more named elements than the limit keep the first names in key order; the other elements are
// folded into the unknown element of their array.
func (s *Snapshot) Widen(inputs ...*Snapshot) {
	s.checkWritable("Widen")
	s.extend(inputs, s.assistant.WideningLimit())
	s.widenArrays(s.assistant.WideningLimit())
}

func (s *Snapshot) widenArrays(limit int) {
	var owners []MemoryIndex
	s.structure.arrays.Root().Walk(func(_ []byte, d *ArrayDescriptor) bool {
		if d.Len() > limit {
			owners = append(owners, d.owner)
		}
		return false
	})
	for _, owner := range owners {
		d, ok := s.structure.Array(owner)
		if !ok || d.Len() <= limit {
			continue
		}
		s.stats.Add(Simplified)
		unknown := d.UnknownIndex()
		for _, n := range d.Names()[limit:] {
			child := d.indexOf(n)
			s.unbind(child)
			values := s.adopt(unknown, s.ReadValue(child).Without(Undefined), false, NewIndexSet())
			info := s.ReadInfo(child)
			s.destroyArray(child)
			s.data = s.data.delete(child)
			s.infos = s.infos.delete(child)
			s.track(child)
			cur, _ := s.structure.Array(owner)
			s.structure = s.structure.withArray(cur.without(n))
			if u := s.ReadValue(unknown).Union(values); !u.IsEmpty() {
				s.data = s.data.set(unknown, u)
				s.track(unknown)
			}
			if i := s.ReadInfo(unknown).Union(info); !i.IsEmpty() {
				s.infos = s.infos.set(unknown, i)
			}
		}
	}
}

func (s *Snapshot) extend(inputs []*Snapshot, limit int) {
	if len(inputs) == 0 {
		violation("Extend", "no input snapshot")
	}
	for _, in := range inputs[1:] {
		if in.callLevel != inputs[0].callLevel {
			violation("Extend", "inputs have call levels %d and %d", inputs[0].callLevel, in.callLevel)
		}
	}
	if len(inputs) == 1 || allSame(inputs) {
		s.stats.Add(MergeFastPath)
		s.image = inputs[0].image
		s.tracker = inputs[0].tracker
		if limit < s.assistant.SimplifyLimit() {
			s.simplifyAll(limit)
		}
		return
	}
	s.stats.Add(Merge)
	m := merger{sources: inputs, limit: limit, stats: s.stats, assistant: s.assistant}
	s.image = m.merge()
	s.tracker = mergeTrackers(inputs)
}

func allSame(inputs []*Snapshot) bool {
	for _, in := range inputs[1:] {
		if in.image.structure != inputs[0].image.structure ||
			in.data.entries != inputs[0].data.entries || in.infos.entries != inputs[0].infos.entries {
			return false
		}
	}
	return true
}

// simplifyAll applies the assistant to every entry above limit.
func (s *Snapshot) simplifyAll(limit int) {
	var large []dataItem
	s.data.Walk(func(i MemoryIndex, e MemoryEntry) bool {
		if e.Count() > limit {
			large = append(large, dataItem{index: i, entry: e})
		}
		return true
	})
	for _, it := range large {
		s.stats.Add(Simplified)
		s.data = s.data.set(it.index, s.assistant.Simplify(it.entry))
	}
}

func mergeTrackers(inputs []*Snapshot) *iradix.Tree[MemoryIndex] {
	t := inputs[0].tracker
	for _, in := range inputs[1:] {
		if in.tracker == t {
			continue
		}
		txn := t.Txn()
		in.tracker.Root().Walk(func(k []byte, v MemoryIndex) bool {
			txn.Insert(k, v)
			return false
		})
		t = txn.Commit()
	}
	return t
}

// merger joins several snapshots with equal call levels.
type merger struct {
	sources   []*Snapshot
	limit     int
	stats     *Statistics
	assistant Assistant
}

func (m *merger) merge() image {
	first := m.sources[0]
	out := image{
		structure: Structure{
			scopes:  mergeDescriptors(m.sources, func(s *Snapshot) *iradix.Tree[*ScopeDescriptor] { return s.structure.scopes }, joinScopes),
			arrays:  mergeDescriptors(m.sources, func(s *Snapshot) *iradix.Tree[*ArrayDescriptor] { return s.structure.arrays }, joinArrays),
			objects: mergeDescriptors(m.sources, func(s *Snapshot) *iradix.Tree[*ObjectDescriptor] { return s.structure.objects }, joinObjects),
			aliases: m.mergeAliases(),
		},
		callLevel: first.callLevel,
		levels:    mergeLevels(m.sources),
	}
	out.data = m.mergeData(false)
	out.infos = m.mergeData(true)
	return out
}

// mergeLevels returns the live levels of all sources, in the order of the first.
func mergeLevels(sources []*Snapshot) []int {
	levels := sources[0].levels
	seen := map[int]bool{}
	for _, l := range levels {
		seen[l] = true
	}
	for _, s := range sources[1:] {
		for _, l := range s.levels {
			if !seen[l] {
				seen[l] = true
				levels = append(append([]int{}, levels...), l)
			}
		}
	}
	return levels
}

// mergeDescriptors unions descriptor maps. Descriptors present in every source with the same
// pointer are reused.
func mergeDescriptors[T comparable](sources []*Snapshot, get func(*Snapshot) *iradix.Tree[T], join func(T, T) T) *iradix.Tree[T] {
	base := get(sources[0])
	txn := base.Txn()
	for _, s := range sources[1:] {
		other := get(s)
		if other == base {
			continue
		}
		other.Root().Walk(func(k []byte, d T) bool {
			cur, ok := txn.Get(k)
			switch {
			case !ok:
				txn.Insert(k, d)
			case cur != d:
				txn.Insert(k, join(cur, d))
			}
			return false
		})
	}
	return txn.Commit()
}

func joinScopes(a, b *ScopeDescriptor) *ScopeDescriptor {
	return &ScopeDescriptor{kind: a.kind, level: a.level, names: a.names.union(b.names)}
}

func joinArrays(a, b *ArrayDescriptor) *ArrayDescriptor {
	return &ArrayDescriptor{owner: a.owner, names: a.names.union(b.names)}
}

func joinObjects(a, b *ObjectDescriptor) *ObjectDescriptor {
	class := a.class
	if class == "" {
		class = b.class
	}
	return &ObjectDescriptor{id: a.id, class: class, names: a.names.union(b.names), summary: a.summary || b.summary}
}

// mergeAliases intersects must-aliases and demotes the members that are must-aliases in only
// some sources to may-aliases.
func (m *merger) mergeAliases() *iradix.Tree[*MemoryAlias] {
	keys := map[string]MemoryIndex{}
	same := true
	for _, s := range m.sources {
		if s.structure.aliases != m.sources[0].structure.aliases {
			same = false
		}
		s.structure.aliases.Root().Walk(func(k []byte, a *MemoryAlias) bool {
			keys[string(k)] = a.Index
			return false
		})
	}
	if same {
		return m.sources[0].structure.aliases
	}
	txn := iradix.New[*MemoryAlias]().Txn()
	for k, idx := range keys {
		var must, all IndexSet
		for i, s := range m.sources {
			a := s.structure.Alias(idx)
			if i == 0 {
				must = a.must()
			} else {
				must = must.Intersect(a.must())
			}
			all = all.Union(a.must()).Union(a.may())
		}
		if a := newAlias(idx, must, all); a != nil {
			txn.Insert([]byte(k), a)
		}
	}
	return txn.Commit()
}

// mergeData joins one data layer. Indexes missing from a source contribute their implicit value
// when their container exists there.
func (m *merger) mergeData(info bool) Data {
	layer := func(s *Snapshot) Data {
		if info {
			return s.infos
		}
		return s.data
	}
	base := layer(m.sources[0])
	same := true
	for _, s := range m.sources[1:] {
		if layer(s).entries != base.entries {
			same = false
		}
	}
	if same && info {
		return base
	}
	keys := map[string]MemoryIndex{}
	for _, s := range m.sources {
		layer(s).entries.Root().Walk(func(k []byte, it dataItem) bool {
			keys[string(k)] = it.index
			return false
		})
	}
	txn := iradix.New[dataItem]().Txn()
	for k, idx := range keys {
		var parts []MemoryEntry
		equal := true
		for _, s := range m.sources {
			e, ok := s.contribution(idx, info)
			if !ok {
				continue
			}
			if len(parts) > 0 && !parts[0].Equal(e) {
				equal = false
			}
			parts = append(parts, e)
		}
		var entry MemoryEntry
		if equal && len(parts) > 0 {
			entry = parts[0]
		} else {
			entry = parts[0].Union(parts[1:]...)
		}
		if !info && entry.Count() > m.limit {
			m.stats.Add(Simplified)
			entry = m.assistant.Simplify(entry)
		}
		txn.Insert([]byte(k), dataItem{index: idx, entry: entry})
	}
	return Data{entries: txn.Commit()}
}
