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
	"sort"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

type transactionState uint8

const (
	txnIdle transactionState = iota
	txnStarted
	txnCommitted
)

// image is the part of a snapshot compared by CommitTransaction.
type image struct {
	structure Structure
	data      Data
	infos     Data
	callLevel int
	levels    []int
}

func (i image) equal(o image) bool {
	if i.callLevel != o.callLevel || len(i.levels) != len(o.levels) {
		return false
	}
	for k := range i.levels {
		if i.levels[k] != o.levels[k] {
			return false
		}
	}
	return i.structure.Equal(o.structure) && i.data.Equal(o.data) && i.infos.Equal(o.infos)
}

// Snapshot is the abstract memory state at one program point.
//
// A snapshot is mutated only between StartTransaction and CommitTransaction. Once committed it
// may be shared with any number of successors, which extend from it without copying: all the
// underlying maps are persistent.
type Snapshot struct {
	id int
	image

	// tracker is the set of indexes changed since the snapshot lineage entered its call level
	tracker *iradix.Tree[MemoryIndex]

	state      transactionState
	committed  bool
	before     image
	hasChanged bool
	frozen     bool

	assistant Assistant
	stats     *Statistics
}

// NewSnapshot returns an empty snapshot at the global call level. The assistant bounds the
// entries produced by merges; stats may be shared by all the snapshots of an analysis.
func NewSnapshot(assistant Assistant, stats *Statistics) *Snapshot {
	if assistant == nil {
		assistant = NewDefaultAssistant(0, 0)
	}
	stats.Add(SnapshotCreated)
	s := &Snapshot{
		id: stats.newID(),
		image: image{
			structure: newStructure(),
			data:      newData(),
			infos:     newData(),
			levels:    []int{GlobalLevel},
		},
		tracker:   iradix.New[MemoryIndex](),
		assistant: assistant,
		stats:     stats,
	}
	s.structure = s.structure.
		withScope(newScope(VariableIndex, GlobalLevel)).
		withScope(newScope(ControlIndex, GlobalLevel)).
		withScope(newScope(TemporaryIndex, GlobalLevel))
	return s
}

// GlobalLevel is the call level of the main program. Superglobals live at this level.
const GlobalLevel = 0

// NewChild returns an empty snapshot sharing the assistant and statistics of s.
func (s *Snapshot) NewChild() *Snapshot {
	return NewSnapshot(s.assistant, s.stats)
}

// ID returns the identifier of the snapshot, unique among the snapshots sharing statistics.
func (s *Snapshot) ID() int { return s.id }

// CallLevel returns the call level of the snapshot.
func (s *Snapshot) CallLevel() int { return s.callLevel }

// Levels returns the live call levels, outermost first.
func (s *Snapshot) Levels() []int { return s.levels }

// Structure returns the structure of the snapshot.
func (s *Snapshot) Structure() Structure { return s.structure }

// Statistics returns the counters shared by the snapshot.
func (s *Snapshot) Statistics() *Statistics { return s.stats }

// Assistant returns the assistant of the snapshot.
func (s *Snapshot) Assistant() Assistant { return s.assistant }

// HasChanged returns the result of the last commit.
func (s *Snapshot) HasChanged() bool { return s.hasChanged }

// IsFrozen returns true once Freeze has been called.
func (s *Snapshot) IsFrozen() bool { return s.frozen }

// Freeze forbids any further transaction on s.
func (s *Snapshot) Freeze() {
	if s.state == txnStarted {
		violation("Freeze", "snapshot %d has a transaction in progress", s.id)
	}
	s.frozen = true
}

// StartTransaction opens a mutation bracket.
func (s *Snapshot) StartTransaction() {
	if s.frozen {
		violation("StartTransaction", "snapshot %d is frozen", s.id)
	}
	if s.state == txnStarted {
		violation("StartTransaction", "snapshot %d already has a transaction in progress", s.id)
	}
	s.stats.Add(TransactionStarted)
	s.before = s.image
	s.state = txnStarted
}

// CommitTransaction closes the mutation bracket and reports whether the snapshot differs from its
// image at StartTransaction. The first commit of a snapshot always reports a change.
func (s *Snapshot) CommitTransaction() bool {
	if s.state != txnStarted {
		violation("CommitTransaction", "snapshot %d has no transaction in progress", s.id)
	}
	s.stats.Add(TransactionCommitted)
	s.hasChanged = !s.committed || !s.image.equal(s.before)
	s.committed = true
	s.state = txnCommitted
	s.before = image{}
	return s.hasChanged
}

// Differs returns true when s and o hold different states.
func (s *Snapshot) Differs(o *Snapshot) bool {
	return !s.image.equal(o.image)
}

func (s *Snapshot) checkWritable(op string) {
	if s.frozen {
		violation(op, "snapshot %d is frozen", s.id)
	}
	if s.state != txnStarted {
		violation(op, "snapshot %d has no transaction in progress", s.id)
	}
}

// track records that index changed in the current call level.
func (s *Snapshot) track(index MemoryIndex) {
	if index.kind == TemporaryIndex {
		return
	}
	s.tracker, _, _ = s.tracker.Insert([]byte(index.key()), index)
}

// Changed returns the indexes changed since the snapshot lineage entered its call level.
func (s *Snapshot) Changed() []MemoryIndex {
	var res []MemoryIndex
	s.tracker.Root().Walk(func(_ []byte, v MemoryIndex) bool {
		res = append(res, v)
		return false
	})
	return res
}

// isLive returns true if the call level of index is one of the live levels of s. Object indexes
// are always live.
func (s *Snapshot) isLive(index MemoryIndex) bool {
	if index.kind == ObjectIndex {
		return true
	}
	for _, l := range s.levels {
		if l == index.level {
			return true
		}
	}
	return false
}

// rank orders indexes by the lifetime of their root: objects first, then outer call levels.
func (s *Snapshot) rank(index MemoryIndex) int {
	if index.kind == ObjectIndex {
		return -1
	}
	for k, l := range s.levels {
		if l == index.level {
			return k
		}
	}
	return len(s.levels)
}

// ReadValue returns the entry of index. An index without entry holds its implicit value.
func (s *Snapshot) ReadValue(index MemoryIndex) MemoryEntry {
	if e, ok := s.data.Get(index); ok {
		return e
	}
	return s.implicitEntry(index)
}

// ReadInfo returns the info flags of index.
func (s *Snapshot) ReadInfo(index MemoryIndex) MemoryEntry {
	e, _ := s.infos.Get(index)
	return e
}

// implicitEntry is the value of an index that holds no entry: the unknown entry of its container
// with Undefined for named indexes, nothing for unknown indexes.
func (s *Snapshot) implicitEntry(index MemoryIndex) MemoryEntry {
	if index.IsUnknown() {
		return EmptyEntry
	}
	if index.IsRoot() {
		return NewEntry(Undefined)
	}
	c, ok := s.structure.container(index)
	if !ok {
		return NewEntry(Undefined)
	}
	unknown, _ := s.data.Get(c.UnknownIndex())
	return unknown.With(Undefined)
}

// contribution is the entry index contributes to a merge from s: its own entry, its implicit
// entry when its container exists, and nothing when the container itself is absent.
func (s *Snapshot) contribution(index MemoryIndex, info bool) (MemoryEntry, bool) {
	layer := s.data
	if info {
		layer = s.infos
	}
	if e, ok := layer.Get(index); ok {
		return e, true
	}
	c, ok := s.structure.container(index)
	if !ok {
		return EmptyEntry, false
	}
	if info || index.IsUnknown() {
		return EmptyEntry, true
	}
	if index.IsRoot() {
		return NewEntry(Undefined), true
	}
	unknown, _ := layer.Get(c.UnknownIndex())
	return unknown.With(Undefined), true
}

// Indexes returns the named indexes of the container identified by index: the elements of the
// array it holds, or the fields of the object it holds.
func (s *Snapshot) Indexes(index MemoryIndex) []MemoryIndex {
	var res []MemoryIndex
	for _, v := range s.ReadValue(index).Values() {
		switch x := v.(type) {
		case ArrayValue:
			if d, ok := s.structure.Array(x.Owner); ok {
				for _, n := range d.Names() {
					idx, _ := d.Lookup(n)
					res = append(res, idx)
				}
			}
		case ObjectValue:
			if d, ok := s.structure.Object(x.ID); ok {
				for _, n := range d.Names() {
					idx, _ := d.Lookup(n)
					res = append(res, idx)
				}
			}
		}
	}
	return res
}

// ArrayOf returns the descriptor of the array held by index, if index holds exactly one array.
func (s *Snapshot) ArrayOf(index MemoryIndex) (*ArrayDescriptor, bool) {
	arrays := s.ReadValue(index).Arrays()
	if len(arrays) != 1 {
		return nil, false
	}
	return s.structure.Array(arrays[0].Owner)
}

// Variables returns the names of the variables of the current call level.
func (s *Snapshot) Variables() []string {
	return s.structure.ScopeNames(VariableIndex, s.callLevel)
}

// Alias returns the alias record of index.
func (s *Snapshot) Alias(index MemoryIndex) *MemoryAlias {
	return s.structure.Alias(index)
}

// Fingerprint returns a string summarizing the content of the snapshot. Two snapshots with equal
// fingerprints hold equal states.
func (s *Snapshot) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "L%d%v;", s.callLevel, s.levels)
	for _, layer := range []Data{s.data, s.infos} {
		layer.Walk(func(i MemoryIndex, e MemoryEntry) bool {
			b.WriteString(i.key())
			b.WriteString(e.String())
			b.WriteByte(';')
			return true
		})
		b.WriteByte('|')
	}
	s.structure.aliases.Root().Walk(func(_ []byte, a *MemoryAlias) bool {
		b.WriteString(a.String())
		return false
	})
	b.WriteByte('|')
	s.structure.arrays.Root().Walk(func(k []byte, d *ArrayDescriptor) bool {
		b.Write(k)
		b.WriteString(strings.Join(d.Names(), ","))
		b.WriteByte(';')
		return false
	})
	s.structure.objects.Root().Walk(func(k []byte, d *ObjectDescriptor) bool {
		b.Write(k)
		b.WriteString(strings.Join(d.Names(), ","))
		b.WriteByte(';')
		return false
	})
	return b.String()
}

// String prints the variables of the current level with their values.
func (s *Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "snapshot %d (level %d)\n", s.id, s.callLevel)
	var lines []string
	s.data.Walk(func(i MemoryIndex, e MemoryEntry) bool {
		if i.kind == TemporaryIndex {
			return true
		}
		line := fmt.Sprintf("  %s: %s", i, e)
		if info, ok := s.infos.Get(i); ok && !info.IsEmpty() {
			line += " " + info.String()
		}
		lines = append(lines, line)
		return true
	})
	sort.Strings(lines)
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
