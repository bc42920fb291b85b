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

// ExtendAsCall replaces the state of s with the state of caller entering call level level. The
// scopes of the new level start empty: when level is already live, as in a recursive call, its
// previous content is dropped. The change tracker starts empty.
func (s *Snapshot) ExtendAsCall(caller *Snapshot, level int) {
	s.checkWritable("ExtendAsCall")
	s.stats.Add(CallExtend)
	s.image = caller.image
	live := false
	for _, l := range caller.levels {
		if l == level {
			live = true
		}
	}
	if live {
		s.dropLevel(level)
	} else {
		s.levels = append(append([]int{}, caller.levels...), level)
	}
	s.callLevel = level
	s.structure = s.structure.
		withScope(newScope(VariableIndex, level)).
		withScope(newScope(ControlIndex, level)).
		withScope(newScope(TemporaryIndex, level))
	s.tracker = iradix.New[MemoryIndex]()
}

// CreateCall returns a new snapshot at call level level derived from s, with a transaction in
// progress so the caller can bind the arguments.
func (s *Snapshot) CreateCall(level int) *Snapshot {
	callee := s.NewChild()
	callee.StartTransaction()
	callee.ExtendAsCall(s, level)
	return callee
}

// dropLevel removes everything rooted at level and the alias links pointing there. Arrays owned
// by removed indexes and still referenced from other levels are not relocated; MergeWithCall
// takes care of the ones that escape.
func (s *Snapshot) dropLevel(level int) {
	var touched []*MemoryAlias
	s.structure.aliases.Root().Walk(func(_ []byte, a *MemoryAlias) bool {
		if a.Index.kind != ObjectIndex && a.Index.level == level {
			return false
		}
		for _, m := range a.Must.Union(a.May).Items() {
			if m.kind != ObjectIndex && m.level == level {
				touched = append(touched, a)
				break
			}
		}
		return false
	})
	s.structure = s.structure.dropLevel(level)
	s.data = s.data.dropLevel(level)
	s.infos = s.infos.dropLevel(level)
	keep := func(m MemoryIndex) bool { return m.kind == ObjectIndex || m.level != level }
	for _, a := range touched {
		s.structure = s.structure.withAlias(a.Index, newAlias(a.Index, a.Must.Filter(keep), a.May.Filter(keep)))
	}
}

// MergeWithCall replaces the state of s with callResult, the caller state at the call site,
// updated with the indexes the callee changed in callOutput. Indexes of call levels that are not
// live in callResult are dropped, and so are the alias links to them. Arrays that escape through
// changed indexes but were owned by a dropped index are moved under the first index holding them.
func (s *Snapshot) MergeWithCall(callResult, callOutput *Snapshot) {
	s.checkWritable("MergeWithCall")
	s.stats.Add(CallMerge)
	s.image = callResult.image
	s.tracker = callResult.tracker

	// the callee level is never folded, even when a recursive call reuses a live level
	calleeLevel := callOutput.callLevel
	live := func(i MemoryIndex) bool {
		return i.kind == ObjectIndex || i.level != calleeLevel && s.isLive(i)
	}
	moved := map[MemoryIndex]MemoryIndex{}
	var folded []MemoryIndex
	callOutput.tracker.Root().Walk(func(_ []byte, idx MemoryIndex) bool {
		if idx.kind == TemporaryIndex || !live(idx) {
			return false
		}
		if parent, ok := idx.Parent(); ok && !live(parent) {
			return false
		}
		folded = append(folded, idx)
		return false
	})
	for _, idx := range folded {
		s.foldIndex(callOutput, idx)
	}
	// escaped arrays
	for _, idx := range folded {
		e, ok := s.data.Get(idx)
		if !ok {
			continue
		}
		for _, a := range e.Arrays() {
			if live(a.Owner) {
				continue
			}
			to, done := moved[a.Owner]
			if !done {
				to = idx
				moved[a.Owner] = idx
				s.installArray(extractArray(callOutput, a.Owner, idx), idx, true)
			}
			e = e.Without(a).With(ArrayValue{Owner: to})
		}
		s.data = s.data.set(idx, e)
	}
	for _, idx := range folded {
		s.track(idx)
	}
}

// foldIndex copies the entries, name and alias record of idx from out into s.
func (s *Snapshot) foldIndex(out *Snapshot, idx MemoryIndex) {
	class := ""
	if id, ok := idx.Object(); ok {
		if d, ok := out.structure.Object(id); ok {
			class = d.class
		}
	}
	if out.structure.hasName(idx) {
		s.structure = s.structure.withName(idx, class)
	} else if s.structure.hasName(idx) {
		s.structure = s.structure.withoutName(idx)
	}
	if e, ok := out.data.Get(idx); ok {
		s.data = s.data.set(idx, e)
		for _, o := range e.Objects() {
			if _, ok := s.structure.Object(o.ID); !ok {
				if d, ok := out.structure.Object(o.ID); ok {
					s.structure = s.structure.withObject(d)
				}
			}
		}
	} else {
		s.data = s.data.delete(idx)
	}
	if e, ok := out.infos.Get(idx); ok {
		s.infos = s.infos.set(idx, e)
	} else {
		s.infos = s.infos.delete(idx)
	}
	if d, ok := out.structure.Array(idx); ok {
		if _, mine := s.structure.Array(idx); !mine {
			s.structure = s.structure.withArray(newArray(d.owner))
		}
	}
	a := out.structure.Alias(idx)
	calleeLevel := out.callLevel
	isLive := func(m MemoryIndex) bool {
		return m.kind == ObjectIndex || m.level != calleeLevel && s.isLive(m)
	}
	s.structure = s.structure.withAlias(idx, newAlias(idx, a.must().Filter(isLive), a.may().Filter(isLive)))
}

// AssignFrom strongly writes to target the value and info flags source holds in from. The arrays
// referenced by the value are copied out of from. It is used to pass return values across call
// levels.
func (s *Snapshot) AssignFrom(target MemoryIndex, from *Snapshot, source MemoryIndex) {
	s.checkWritable("AssignFrom")
	values := from.ReadValue(source)
	infos := from.ReadInfo(source)
	arrays := values.Arrays()
	for k, a := range arrays {
		s.installArray(extractArray(from, a.Owner, target), target, k == 0)
		values = values.Without(a)
	}
	if len(arrays) > 0 {
		values = values.With(ArrayValue{Owner: target})
	}
	for _, o := range values.Objects() {
		if _, ok := s.structure.Object(o.ID); !ok {
			if d, ok := from.structure.Object(o.ID); ok {
				s.structure = s.structure.withObject(d)
			}
		}
	}
	alias := s.structure.Alias(target)
	s.writeGroup(append([]MemoryIndex{target}, alias.must().Items()...), &values, &infos)
}
