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

// CreateArray creates an empty array owned by index, replacing the array index owned before,
// and returns its handle. The handle still has to be stored, usually in index itself.
func (s *Snapshot) CreateArray(index MemoryIndex) ArrayValue {
	s.checkWritable("CreateArray")
	s.destroyArray(index)
	s.structure = s.structure.withArray(newArray(index))
	s.stats.Add(ArrayCreated)
	return ArrayValue{Owner: index}
}

// CreateObject returns the handle of the object allocated at site. Objects are abstracted by
// allocation site: a second creation at the same site returns the same object, which from then on
// is a summary object.
func (s *Snapshot) CreateObject(site string, class string) ObjectValue {
	s.checkWritable("CreateObject")
	id := ObjectID(site)
	if d, ok := s.structure.Object(id); ok {
		s.structure = s.structure.withObject(d.summarized())
		return ObjectValue{ID: id, Class: d.class}
	}
	s.structure = s.structure.withObject(newObject(id, class))
	s.stats.Add(ObjectCreated)
	return ObjectValue{ID: id, Class: class}
}

// Assign strongly writes entry to index and its must-aliases. May-aliases are weakly updated.
// Arrays are copied: the stored handle is always owned by one member of the alias group.
func (s *Snapshot) Assign(index MemoryIndex, entry MemoryEntry) {
	s.checkWritable("Assign")
	alias := s.structure.Alias(index)
	group := append([]MemoryIndex{index}, alias.must().Items()...)
	s.writeGroup(group, &entry, nil)
	for _, m := range alias.may().Items() {
		s.writeWeak(m, &entry, nil)
	}
}

// AssignWeak joins entry into the values of index and of all its aliases.
func (s *Snapshot) AssignWeak(index MemoryIndex, entry MemoryEntry) {
	s.checkWritable("AssignWeak")
	s.writeWeak(index, &entry, nil)
	alias := s.structure.Alias(index)
	for _, m := range alias.must().Union(alias.may()).Items() {
		s.writeWeak(m, &entry, nil)
	}
}

// AssignInfo strongly replaces the info flags of index and its must-aliases.
func (s *Snapshot) AssignInfo(index MemoryIndex, info MemoryEntry) {
	s.checkWritable("AssignInfo")
	alias := s.structure.Alias(index)
	s.writeGroup(append([]MemoryIndex{index}, alias.must().Items()...), nil, &info)
	for _, m := range alias.may().Items() {
		s.writeWeak(m, nil, &info)
	}
}

// AssignInfoWeak joins info into the info flags of index and of all its aliases.
func (s *Snapshot) AssignInfoWeak(index MemoryIndex, info MemoryEntry) {
	s.checkWritable("AssignInfoWeak")
	s.writeWeak(index, nil, &info)
	alias := s.structure.Alias(index)
	for _, m := range alias.must().Union(alias.may()).Items() {
		s.writeWeak(m, nil, &info)
	}
}

// writeGroup strongly writes to a must-alias group. The arrays of values are copied once, under
// the longest living member, and every member stores the same handle.
func (s *Snapshot) writeGroup(group []MemoryIndex, values, infos *MemoryEntry) {
	members := NewIndexSet(group...)
	if values != nil {
		s.stats.Add(StrongAssign)
		owner := s.pickOwner(group)
		var owned []MemoryIndex
		for _, m := range members.Items() {
			for _, a := range s.ReadValue(m).Arrays() {
				if members.Contains(a.Owner) {
					owned = append(owned, a.Owner)
				}
			}
		}
		prepared := s.adopt(owner, *values, true, members)
		for _, m := range members.Items() {
			s.structure = s.structure.withName(m, "")
			s.data = s.data.set(m, prepared)
			s.track(m)
		}
		for _, o := range owned {
			if !prepared.Contains(ArrayValue{Owner: o}) {
				s.destroyArray(o)
			}
		}
	}
	if infos != nil {
		s.stats.Add(InfoAssign)
		for _, m := range members.Items() {
			s.structure = s.structure.withName(m, "")
			if infos.IsEmpty() {
				s.infos = s.infos.delete(m)
			} else {
				s.infos = s.infos.set(m, *infos)
			}
			s.track(m)
		}
	}
}

// writeWeak joins values and infos into the entries of index alone.
func (s *Snapshot) writeWeak(index MemoryIndex, values, infos *MemoryEntry) {
	s.structure = s.structure.withName(index, "")
	if values != nil {
		s.stats.Add(WeakAssign)
		old := s.ReadValue(index)
		prepared := s.adopt(index, *values, false, IndexSet{})
		s.data = s.data.set(index, old.Union(prepared))
	}
	if infos != nil && !infos.IsEmpty() {
		s.stats.Add(InfoAssign)
		s.infos = s.infos.set(index, s.ReadInfo(index).Union(*infos))
	}
	s.track(index)
}

// AssignAlias makes target a must-alias of source: target leaves its previous alias group, joins
// the group of source and shares its entry. A source without value is initialized to null.
func (s *Snapshot) AssignAlias(target, source MemoryIndex) {
	s.checkWritable("AssignAlias")
	if target == source || s.structure.Alias(source).must().Contains(target) {
		return
	}
	s.stats.Add(AliasCreated)
	s.unbind(target)
	srcAlias := s.structure.Alias(source)
	group := srcAlias.must().Add(source)
	if _, ok := s.data.Get(source); !ok || s.ReadValue(source).Equal(NewEntry(Undefined)) {
		null := NewEntry(Null)
		s.writeGroup(group.Items(), &null, nil)
	}
	for _, m := range group.Items() {
		a := s.structure.Alias(m)
		s.structure = s.structure.withAlias(m, newAlias(m, a.must().Add(target), a.may()))
		s.track(m)
	}
	for _, p := range srcAlias.may().Items() {
		a := s.structure.Alias(p)
		s.structure = s.structure.withAlias(p, newAlias(p, a.must(), a.may().Add(target)))
		s.track(p)
	}
	s.structure = s.structure.withAlias(target, newAlias(target, group, srcAlias.may()))
	s.share(target, source)
}

// AssignAliasWeak makes target a may-alias of source and weakly joins the value of source.
func (s *Snapshot) AssignAliasWeak(target, source MemoryIndex) {
	s.checkWritable("AssignAliasWeak")
	if target == source {
		return
	}
	s.stats.Add(AliasCreated)
	group := s.structure.Alias(source).must().Add(source)
	ta := s.structure.Alias(target)
	var partners []MemoryIndex
	for _, m := range group.Items() {
		if ta.must().Contains(m) {
			continue
		}
		partners = append(partners, m)
		a := s.structure.Alias(m)
		s.structure = s.structure.withAlias(m, newAlias(m, a.must(), a.may().Add(target)))
		s.track(m)
	}
	s.structure = s.structure.withAlias(target, newAlias(target, ta.must(), ta.may().Union(NewIndexSet(partners...))))
	values := s.ReadValue(source)
	infos := s.ReadInfo(source)
	s.writeWeak(target, &values, &infos)
}

// share stores the entries of source at target, dropping the array target owned alone.
func (s *Snapshot) share(target, source MemoryIndex) {
	values := s.ReadValue(source)
	for _, a := range s.ReadValue(target).Arrays() {
		if a.Owner == target && !values.Contains(a) {
			s.destroyArray(target)
		}
	}
	s.structure = s.structure.withName(target, "")
	s.data = s.data.set(target, values)
	if info := s.ReadInfo(source); info.IsEmpty() {
		s.infos = s.infos.delete(target)
	} else {
		s.infos = s.infos.set(target, info)
	}
	s.track(target)
}

// unbind removes index from its alias group. When index owns the array shared with its former
// must-aliases, the array moves to one of them.
func (s *Snapshot) unbind(index MemoryIndex) {
	a := s.structure.Alias(index)
	if a.IsEmpty() {
		return
	}
	for _, m := range a.must().Union(a.may()).Items() {
		ma := s.structure.Alias(m)
		s.structure = s.structure.withAlias(m, newAlias(m, ma.must().Remove(index), ma.may().Remove(index)))
		s.track(m)
	}
	s.structure = s.structure.withAlias(index, nil)
	s.track(index)
	if s.ReadValue(index).Contains(ArrayValue{Owner: index}) {
		var sharing []MemoryIndex
		for _, m := range a.must().Items() {
			if s.ReadValue(m).Contains(ArrayValue{Owner: index}) {
				sharing = append(sharing, m)
			}
		}
		if len(sharing) > 0 {
			// index keeps a private copy, the partners keep the original content under a new owner
			s.relocate(index, NewIndexSet(sharing...))
		}
	}
}

// remove deletes index and everything it owns. The partners of index keep their values.
func (s *Snapshot) remove(index MemoryIndex) {
	s.unbind(index)
	if s.ReadValue(index).Contains(ArrayValue{Owner: index}) {
		s.destroyArray(index)
	}
	s.data = s.data.delete(index)
	s.infos = s.infos.delete(index)
	s.structure = s.structure.withoutName(index)
	s.track(index)
}

// ReleaseTemporary removes a temporary index created by the engine.
func (s *Snapshot) ReleaseTemporary(index MemoryIndex) {
	s.checkWritable("ReleaseTemporary")
	if index.kind != TemporaryIndex {
		violation("ReleaseTemporary", "%s is not a temporary", index)
	}
	s.remove(index)
}

// SetGlobalAlias binds the variable name of the current call level to the global variable of the
// same name, as the global statement does.
func (s *Snapshot) SetGlobalAlias(name string) {
	s.checkWritable("SetGlobalAlias")
	if s.callLevel == GlobalLevel {
		return
	}
	global := NewVariableIndex(name, GlobalLevel)
	s.structure = s.structure.withName(global, "")
	s.AssignAlias(NewVariableIndex(name, s.callLevel), global)
}
