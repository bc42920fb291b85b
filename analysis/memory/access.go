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

// ReadResult is the outcome of reading a path.
type ReadResult struct {
	Values    MemoryEntry
	Infos     MemoryEntry
	IsDefined bool
	Indexes   CollectResult
}

// ReadPath returns the values and info flags of every index path may denote. When the path is
// not fully defined, Values includes Undefined.
func (s *Snapshot) ReadPath(path Path) ReadResult {
	s.stats.Add(PathRead)
	res := s.ReadCollect(path)
	values := res.Extra
	var infos MemoryEntry
	for _, idx := range res.May.Items() {
		values = values.Union(s.ReadValue(idx))
		infos = infos.Union(s.ReadInfo(idx))
	}
	if !res.IsDefined {
		values = values.With(Undefined)
	}
	return ReadResult{Values: values, Infos: infos, IsDefined: res.IsDefined, Indexes: res}
}

// WritePath writes values and infos to the indexes denoted by path: must targets and their
// must-aliases are strongly updated, every other possible target is weakly updated.
func (s *Snapshot) WritePath(path Path, values, infos MemoryEntry) CollectResult {
	s.checkWritable("WritePath")
	s.stats.Add(PathWrite)
	res := s.AssignCollect(path, true)
	s.writeTargets(res, &values, &infos)
	return res
}

// WritePathInfo replaces the info flags of the indexes denoted by path.
func (s *Snapshot) WritePathInfo(path Path, infos MemoryEntry) CollectResult {
	s.checkWritable("WritePathInfo")
	res := s.AssignCollect(path, true)
	s.writeTargets(res, nil, &infos)
	return res
}

func (s *Snapshot) writeTargets(res CollectResult, values, infos *MemoryEntry) {
	done := map[MemoryIndex]bool{}
	for _, m := range res.Must.Items() {
		if done[m] {
			continue
		}
		group := []MemoryIndex{m}
		for _, a := range s.structure.Alias(m).must().Items() {
			if res.Must.Contains(a) {
				group = append(group, a)
			}
		}
		for _, g := range group {
			done[g] = true
		}
		s.writeGroup(group, values, infos)
	}
	for _, m := range res.MayOnly().Items() {
		s.writeWeak(m, values, infos)
	}
}

// CreateAlias resolves path as the source of a reference. The source is created when missing, as
// taking a reference to a missing location defines it.
func (s *Snapshot) CreateAlias(path Path) *AliasValue {
	s.checkWritable("CreateAlias")
	res := s.AssignCollect(path, false)
	null := NewEntry(Null)
	for _, m := range res.Must.Items() {
		if _, ok := s.data.Get(m); !ok {
			a := s.structure.Alias(m)
			s.writeGroup(append([]MemoryIndex{m}, a.must().Items()...), &null, nil)
		}
	}
	return &AliasValue{Must: res.Must.Items(), May: res.MayOnly().Items()}
}

// WriteAlias binds the indexes denoted by target to the source of alias. A must target with a must
// source becomes a must-alias; every other combination yields may-aliases.
func (s *Snapshot) WriteAlias(target Path, alias *AliasValue) {
	s.checkWritable("WriteAlias")
	res := s.AssignCollect(target, false)
	mustSource := len(alias.Must) == 1 && len(alias.May) == 0
	for _, t := range res.Must.Items() {
		if mustSource {
			s.AssignAlias(t, alias.Must[0])
			continue
		}
		// the target is rebound: it no longer observes its previous group
		s.unbind(t)
		first := true
		for _, src := range append(append([]MemoryIndex{}, alias.Must...), alias.May...) {
			if first {
				s.share(t, src)
				first = false
			}
			s.AssignAliasWeak(t, src)
		}
	}
	for _, t := range res.MayOnly().Items() {
		for _, src := range append(append([]MemoryIndex{}, alias.Must...), alias.May...) {
			s.AssignAliasWeak(t, src)
		}
	}
}

// Unset removes the locations denoted by path. Locations that might not be denoted get Undefined
// added to their values.
func (s *Snapshot) Unset(path Path) {
	s.checkWritable("Unset")
	res := s.ReadCollect(path)
	undef := NewEntry(Undefined)
	for _, m := range res.Must.Items() {
		if m.IsUnknown() {
			continue
		}
		s.remove(m)
	}
	for _, m := range res.MayOnly().Items() {
		if m.IsUnknown() {
			continue
		}
		s.writeWeak(m, &undef, nil)
	}
}
