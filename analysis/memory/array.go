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

// arrayImage is a detached copy of an array subtree, rebased onto a new owner.
type arrayImage struct {
	owners []MemoryIndex
	names  map[MemoryIndex][]string
	data   map[MemoryIndex]MemoryEntry
	infos  map[MemoryIndex]MemoryEntry
}

// extractArray copies the subtree of the array owned by src in from, rebased onto dst. Nested
// array handles are rebased too.
func extractArray(from *Snapshot, src, dst MemoryIndex) arrayImage {
	img := arrayImage{
		names: map[MemoryIndex][]string{},
		data:  map[MemoryIndex]MemoryEntry{},
		infos: map[MemoryIndex]MemoryEntry{},
	}
	rebase := func(i MemoryIndex) MemoryIndex { return i.rebase(src, dst) }
	from.structure.arrays.Root().WalkPrefix([]byte(src.key()), func(_ []byte, d *ArrayDescriptor) bool {
		if d.owner != src && !d.owner.HasPrefix(src) {
			return false
		}
		o := rebase(d.owner)
		img.owners = append(img.owners, o)
		img.names[o] = d.Names()
		return false
	})
	prefix := src.childKeyPrefix()
	from.data.walkPrefix(prefix, func(i MemoryIndex, e MemoryEntry) {
		img.data[rebase(i)] = rebaseEntry(e, src, dst)
	})
	from.infos.walkPrefix(prefix, func(i MemoryIndex, e MemoryEntry) {
		img.infos[rebase(i)] = e
	})
	if len(img.owners) == 0 {
		img.owners = []MemoryIndex{dst}
	}
	return img
}

// rebaseEntry rewrites the array handles of e owned under src to the same place under dst.
func rebaseEntry(e MemoryEntry, src, dst MemoryIndex) MemoryEntry {
	rebased := false
	for _, a := range e.Arrays() {
		if a.Owner.HasPrefix(src) {
			rebased = true
			break
		}
	}
	if !rebased {
		return e
	}
	return e.Map(func(v Value) Value {
		if a, ok := v.(ArrayValue); ok && a.Owner.HasPrefix(src) {
			return ArrayValue{Owner: a.Owner.rebase(src, dst)}
		}
		return v
	})
}

// installArray writes img into s. A strong install replaces the array owned by its root, a weak
// one joins both arrays element by element.
func (s *Snapshot) installArray(img arrayImage, root MemoryIndex, strong bool) {
	if strong {
		s.destroyArray(root)
	}
	for _, owner := range img.owners {
		existing, had := s.structure.Array(owner)
		if strong || !had {
			d := newArray(owner)
			for _, n := range img.names[owner] {
				d = d.with(n)
			}
			s.structure = s.structure.withArray(d)
			for _, n := range img.names[owner] {
				child := owner.ElementIndex(n)
				s.setData(child, img.data, img.infos)
			}
			s.setData(owner.UnknownElementIndex(), img.data, img.infos)
			continue
		}
		// weak join with the array already there
		srcNames := map[string]bool{}
		for _, n := range img.names[owner] {
			srcNames[n] = true
		}
		srcUnknown := img.data[owner.UnknownElementIndex()]
		d := existing
		for _, n := range img.names[owner] {
			d = d.with(n)
		}
		s.structure = s.structure.withArray(d)
		for _, n := range d.Names() {
			child := owner.ElementIndex(n)
			mine := s.ReadValue(child)
			var theirs MemoryEntry
			if srcNames[n] {
				theirs = img.data[child]
			} else {
				theirs = srcUnknown.With(Undefined)
			}
			s.data = s.data.set(child, mine.Union(theirs))
			if info := s.ReadInfo(child).Union(img.infos[child]); !info.IsEmpty() {
				s.infos = s.infos.set(child, info)
			}
			s.track(child)
		}
		unknown := owner.UnknownElementIndex()
		if u := s.ReadValue(unknown).Union(srcUnknown); !u.IsEmpty() {
			s.data = s.data.set(unknown, u)
			s.track(unknown)
		}
	}
}

func (s *Snapshot) setData(index MemoryIndex, data, infos map[MemoryIndex]MemoryEntry) {
	if e, ok := data[index]; ok {
		s.data = s.data.set(index, e)
		s.track(index)
	}
	if e, ok := infos[index]; ok {
		s.infos = s.infos.set(index, e)
	}
}

// destroyArray removes the array owned by index and everything nested in it. Alias records of
// the removed elements are unlinked from their partners.
func (s *Snapshot) destroyArray(index MemoryIndex) {
	if _, ok := s.structure.Array(index); !ok {
		return
	}
	prefix := index.childKeyPrefix()
	var aliased []*MemoryAlias
	s.structure.aliases.Root().WalkPrefix([]byte(prefix), func(_ []byte, a *MemoryAlias) bool {
		aliased = append(aliased, a)
		return false
	})
	for _, a := range aliased {
		s.unbind(a.Index)
	}
	s.data.walkPrefix(prefix, func(i MemoryIndex, _ MemoryEntry) { s.track(i) })
	s.structure.arrays, _, _ = s.structure.arrays.Delete([]byte(index.key()))
	s.structure.arrays, _ = s.structure.arrays.DeletePrefix([]byte(prefix))
	s.data = s.data.deletePrefix(prefix)
	s.infos = s.infos.deletePrefix(prefix)
}

// adopt prepares entry to be stored at owner: arrays owned elsewhere are copied under owner and
// replaced by the handle of owner. Handles owned by a member of keep are shared, not copied.
func (s *Snapshot) adopt(owner MemoryIndex, entry MemoryEntry, strong bool, keep IndexSet) MemoryEntry {
	arrays := entry.Arrays()
	var foreign []ArrayValue
	for _, a := range arrays {
		if a.Owner != owner && !keep.Contains(a.Owner) {
			foreign = append(foreign, a)
		}
	}
	if len(foreign) == 0 {
		return entry
	}
	images := make([]arrayImage, len(foreign))
	for k, a := range foreign {
		images[k] = extractArray(s, a.Owner, owner)
	}
	selfOwned := entry.Contains(ArrayValue{Owner: owner})
	for k, img := range images {
		s.installArray(img, owner, strong && k == 0 && !selfOwned)
	}
	s.stats.Add(ArrayCreated)
	return entry.Filter(func(v Value) bool {
		a, ok := v.(ArrayValue)
		return !ok || a.Owner == owner || keep.Contains(a.Owner)
	}).With(ArrayValue{Owner: owner})
}

// relocate moves the array owned by index to the outermost of partners and rewrites the handles
// held by partners. It is used when index stops sharing its entry with partners.
func (s *Snapshot) relocate(index MemoryIndex, partners IndexSet) {
	if partners.Len() == 0 {
		return
	}
	handle := ArrayValue{Owner: index}
	owner := s.pickOwner(partners.Items())
	img := extractArray(s, index, owner)
	s.installArray(img, owner, true)
	for _, p := range partners.Items() {
		e := s.ReadValue(p)
		if e.Contains(handle) {
			s.data = s.data.set(p, e.Without(handle).With(ArrayValue{Owner: owner}))
			s.track(p)
		}
	}
}

// pickOwner returns the index of group whose root lives the longest.
func (s *Snapshot) pickOwner(group []MemoryIndex) MemoryIndex {
	best := group[0]
	for _, m := range group[1:] {
		rm, rb := s.rank(m), s.rank(best)
		if rm < rb || rm == rb && compareIndex(m, best) < 0 {
			best = m
		}
	}
	return best
}
