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
	"fmt"
	"strconv"
)

// CollectResult is the set of indexes a path denotes in a snapshot.
type CollectResult struct {
	// Must holds the indexes denoted in every concrete run: the targets of strong updates.
	Must IndexSet
	// May holds every index possibly denoted. Must is a subset of May.
	May IndexSet
	// IsDefined is false when some step could not be resolved to a tracked name.
	IsDefined bool
	// Extra holds the values read through parents that are not containers, such as the character
	// of a string offset.
	Extra MemoryEntry
}

// MayOnly returns the indexes of May that are not in Must.
func (r CollectResult) MayOnly() IndexSet { return r.May.Minus(r.Must) }

type candidate struct {
	index MemoryIndex
	must  bool
}

type collector struct {
	snap    *Snapshot
	assign  bool
	defined bool
	extra   []Value
}

func (c *collector) result(cands []candidate) CollectResult {
	var must, may []MemoryIndex
	for _, cd := range cands {
		may = append(may, cd.index)
		if cd.must {
			must = append(must, cd.index)
		}
	}
	res := CollectResult{
		Must:      NewIndexSet(must...),
		May:       NewIndexSet(may...),
		IsDefined: c.defined,
		Extra:     NewEntry(c.extra...),
	}
	// an index can be reached both as must and through a may step
	res.May = res.May.Union(res.Must)
	return res
}

// ReadCollect resolves path without modifying the snapshot.
func (s *Snapshot) ReadCollect(path Path) CollectResult {
	c := &collector{snap: s, defined: true}
	return c.result(c.collect(path))
}

// AssignCollect resolves path for a write: missing names are created and missing containers are
// implicitly materialized. When expand is true the aliases of the targets are added, must-aliases
// of must targets as must targets.
func (s *Snapshot) AssignCollect(path Path, expand bool) CollectResult {
	s.checkWritable("AssignCollect")
	c := &collector{snap: s, assign: true, defined: true}
	res := c.result(c.collect(path))
	if !expand {
		return res
	}
	must, may := res.Must, res.May
	for _, m := range res.Must.Items() {
		a := s.structure.Alias(m)
		must = must.Union(a.must())
		may = may.Union(a.must()).Union(a.may())
	}
	for _, m := range res.MayOnly().Items() {
		a := s.structure.Alias(m)
		may = may.Union(a.must()).Union(a.may())
	}
	res.Must, res.May = must, may
	return res
}

func (c *collector) collect(path Path) []candidate {
	var cands []candidate
	switch path.root {
	case VariableRoot, ControlRoot, TemporaryRoot:
		kind := map[RootKind]IndexKind{VariableRoot: VariableIndex, ControlRoot: ControlIndex, TemporaryRoot: TemporaryIndex}[path.root]
		level := c.snap.callLevel
		if path.global {
			level = GlobalLevel
		}
		cands = c.rootStep(kind, level, path.name)
	case IndexRoot:
		cands = []candidate{{index: path.index, must: true}}
	default:
		panic(fmt.Sprintf("invalid path root %d", path.root))
	}
	for _, st := range path.steps {
		var next []candidate
		for _, cd := range cands {
			next = append(next, c.step(cd, st)...)
		}
		cands = next
	}
	return cands
}

func (c *collector) rootStep(kind IndexKind, level int, seg Segment) []candidate {
	scope, ok := c.snap.structure.Scope(kind, level)
	if !ok {
		if !c.assign {
			c.defined = false
			return nil
		}
		scope = newScope(kind, level)
		c.snap.structure = c.snap.structure.withScope(scope)
	}
	return c.resolve(scope, seg, true, func(name string) MemoryIndex {
		idx := scope.indexOf(name)
		c.snap.structure = c.snap.structure.withName(idx, "")
		return idx
	})
}

// resolve maps seg to the indexes of container. create registers a missing name; it is only
// called by assign collectors.
func (c *collector) resolve(container IndexContainer, seg Segment, parentMust bool, create func(string) MemoryIndex) []candidate {
	var cands []candidate
	if seg.any {
		for _, n := range container.Names() {
			idx, _ := container.Lookup(n)
			cands = append(cands, candidate{index: idx})
		}
		c.defined = false
		return append(cands, candidate{index: container.UnknownIndex()})
	}
	must := parentMust && len(seg.names) == 1
	if len(seg.names) == 0 {
		c.defined = false
	}
	addedUnknown := false
	for _, n := range seg.names {
		if idx, ok := container.Lookup(n); ok {
			cands = append(cands, candidate{index: idx, must: must})
			continue
		}
		if c.assign {
			cands = append(cands, candidate{index: create(n), must: must})
			continue
		}
		c.defined = false
		if !addedUnknown {
			addedUnknown = true
			cands = append(cands, candidate{index: container.UnknownIndex()})
		}
	}
	return cands
}

func (c *collector) step(cd candidate, st Step) []candidate {
	if c.assign {
		return c.assignStep(cd, st)
	}
	entry := c.snap.ReadValue(cd.index)
	var containers []IndexContainer
	others := 0
	for _, v := range entry.Values() {
		switch x := v.(type) {
		case ArrayValue:
			if st.Field {
				c.extra = append(c.extra, Null)
				others++
				continue
			}
			d, ok := c.snap.structure.Array(x.Owner)
			if !ok {
				d = newArray(x.Owner)
			}
			containers = append(containers, d)
		case ObjectValue:
			if !st.Field {
				// objects implementing ArrayAccess are not modeled
				c.extra = append(c.extra, Any)
				others++
				continue
			}
			d, ok := c.snap.structure.Object(x.ID)
			if !ok {
				d = newObject(x.ID, x.Class)
			}
			containers = append(containers, d)
		default:
			others++
			c.readThrough(v, st)
		}
	}
	if len(containers) == 0 && others == 0 {
		c.defined = false
	}
	childMust := cd.must && len(containers) == 1 && others == 0
	var cands []candidate
	for _, ct := range containers {
		cands = append(cands, c.resolve(ct, st.Segment, childMust, nil)...)
	}
	return cands
}

// readThrough records the value read when stepping through a scalar parent.
func (c *collector) readThrough(v Value, st Step) {
	switch x := v.(type) {
	case UndefinedValue, NullValue:
		c.defined = false
	case StringValue:
		if st.Field {
			c.extra = append(c.extra, Null)
			return
		}
		if n, ok := st.Segment.Single(); ok {
			if i, err := strconv.Atoi(n); err == nil && i >= 0 && i < len(x.V) {
				c.extra = append(c.extra, String(x.V[i:i+1]))
				return
			}
		}
		c.extra = append(c.extra, AnyString)
	case AnyValue:
		switch x.Type {
		case KindAny:
			c.extra = append(c.extra, Any)
		case KindString:
			if st.Field {
				c.extra = append(c.extra, Null)
			} else {
				c.extra = append(c.extra, AnyString)
			}
		default:
			c.extra = append(c.extra, Null)
		}
	default:
		c.extra = append(c.extra, Null)
	}
}

func (c *collector) assignStep(cd candidate, st Step) []candidate {
	s := c.snap
	entry, present := s.data.Get(cd.index)
	var containers []IndexContainer
	materialize := !present || entry.IsEmpty()
	blocked := 0
	for _, v := range entry.Values() {
		switch x := v.(type) {
		case ArrayValue:
			if st.Field {
				blocked++
				continue
			}
			d, ok := s.structure.Array(x.Owner)
			if !ok {
				d = newArray(x.Owner)
				s.structure = s.structure.withArray(d)
			}
			containers = append(containers, d)
		case ObjectValue:
			if !st.Field {
				blocked++
				continue
			}
			d, ok := s.structure.Object(x.ID)
			if !ok {
				d = newObject(x.ID, x.Class)
				s.structure = s.structure.withObject(d)
			}
			containers = append(containers, d)
		case UndefinedValue, NullValue:
			materialize = true
		case AnyValue:
			if x.Type == KindAny {
				materialize = true
			} else {
				blocked++
			}
		default:
			blocked++
		}
	}
	strong := false
	if materialize {
		strong = cd.must && len(containers) == 0 && blocked == 0 && onlyEmptyValues(entry)
		var handle Value
		if st.Field {
			handle = s.CreateObject("implicit "+cd.index.String(), "stdClass")
		} else {
			if _, ok := s.structure.Array(cd.index); !ok {
				s.structure = s.structure.withArray(newArray(cd.index))
				s.stats.Add(ArrayCreated)
			}
			handle = ArrayValue{Owner: cd.index}
		}
		if strong {
			s.Assign(cd.index, NewEntry(handle))
		} else {
			s.AssignWeak(cd.index, NewEntry(handle))
		}
		if !entry.Contains(handle) {
			switch h := handle.(type) {
			case ArrayValue:
				d, _ := s.structure.Array(h.Owner)
				containers = append(containers, d)
			case ObjectValue:
				d, _ := s.structure.Object(h.ID)
				containers = append(containers, d)
			}
		}
	}
	if len(containers) == 0 {
		c.defined = false
		return nil
	}
	childMust := cd.must && len(containers) == 1 && blocked == 0 && (strong || !materialize)
	var cands []candidate
	for _, ct := range containers {
		ct := ct
		must := childMust
		if o, ok := ct.(*ObjectDescriptor); ok && o.summary {
			must = false
		}
		cands = append(cands, c.resolve(ct, st.Segment, must, func(name string) MemoryIndex {
			switch d := ct.(type) {
			case *ArrayDescriptor:
				idx := d.indexOf(name)
				cur, _ := s.structure.Array(d.owner)
				s.structure = s.structure.withArray(cur.with(name))
				return idx
			case *ObjectDescriptor:
				idx := d.indexOf(name)
				cur, _ := s.structure.Object(d.id)
				s.structure = s.structure.withObject(cur.with(name))
				return idx
			}
			panic("unexpected container")
		})...)
	}
	return cands
}

func onlyEmptyValues(e MemoryEntry) bool {
	for _, v := range e.Values() {
		switch v.(type) {
		case UndefinedValue, NullValue:
		default:
			return false
		}
	}
	return true
}
