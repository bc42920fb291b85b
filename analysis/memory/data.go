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

type dataItem struct {
	index MemoryIndex
	entry MemoryEntry
}

// Data maps indexes to entries. Like Structure it is a persistent value.
type Data struct {
	entries *iradix.Tree[dataItem]
}

func newData() Data { return Data{entries: iradix.New[dataItem]()} }

// Get returns the entry of index, if any.
func (d Data) Get(index MemoryIndex) (MemoryEntry, bool) {
	it, ok := d.entries.Get([]byte(index.key()))
	return it.entry, ok
}

func (d Data) set(index MemoryIndex, entry MemoryEntry) Data {
	d.entries, _, _ = d.entries.Insert([]byte(index.key()), dataItem{index: index, entry: entry})
	return d
}

func (d Data) delete(index MemoryIndex) Data {
	d.entries, _, _ = d.entries.Delete([]byte(index.key()))
	return d
}

func (d Data) deletePrefix(prefix string) Data {
	d.entries, _ = d.entries.DeletePrefix([]byte(prefix))
	return d
}

// Len returns the number of indexes holding an entry.
func (d Data) Len() int { return d.entries.Len() }

// Walk calls f for every index in key order until f returns false.
func (d Data) Walk(f func(MemoryIndex, MemoryEntry) bool) {
	d.entries.Root().Walk(func(_ []byte, it dataItem) bool {
		return !f(it.index, it.entry)
	})
}

// walkPrefix calls f for every index whose key starts with prefix.
func (d Data) walkPrefix(prefix string, f func(MemoryIndex, MemoryEntry)) {
	d.entries.Root().WalkPrefix([]byte(prefix), func(_ []byte, it dataItem) bool {
		f(it.index, it.entry)
		return false
	})
}

// Equal returns true when both layers hold the same entries.
func (d Data) Equal(o Data) bool {
	return equalTrees(d.entries, o.entries, func(a, b dataItem) bool { return a.entry.Equal(b.entry) })
}

func (d Data) dropLevel(level int) Data {
	for _, kind := range []IndexKind{VariableIndex, ControlIndex, TemporaryIndex} {
		d = d.deletePrefix(levelKeyPrefix(kind, level))
	}
	return d
}
