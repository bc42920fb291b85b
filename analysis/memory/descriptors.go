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

// IndexContainer maps names to indexes. Every container has an unknown index standing for the
// names it does not track.
type IndexContainer interface {
	UnknownIndex() MemoryIndex
	Lookup(name string) (MemoryIndex, bool)
	Names() []string
	Len() int
}

// names is the persistent name map shared by all descriptors.
type names struct {
	tree *iradix.Tree[MemoryIndex]
}

func newNames() names { return names{tree: iradix.New[MemoryIndex]()} }

func (n names) lookup(name string) (MemoryIndex, bool) {
	if n.tree == nil {
		return MemoryIndex{}, false
	}
	return n.tree.Get([]byte(name))
}

func (n names) with(name string, idx MemoryIndex) names {
	if n.tree == nil {
		n = newNames()
	}
	t, _, _ := n.tree.Insert([]byte(name), idx)
	return names{tree: t}
}

func (n names) without(name string) names {
	if n.tree == nil {
		return n
	}
	t, _, _ := n.tree.Delete([]byte(name))
	return names{tree: t}
}

func (n names) len() int {
	if n.tree == nil {
		return 0
	}
	return n.tree.Len()
}

// list returns the names in lexicographic order.
func (n names) list() []string {
	if n.tree == nil {
		return nil
	}
	res := make([]string, 0, n.tree.Len())
	n.tree.Root().Walk(func(k []byte, _ MemoryIndex) bool {
		res = append(res, string(k))
		return false
	})
	return res
}

func (n names) equal(o names) bool {
	if n.tree == o.tree {
		return true
	}
	if n.len() != o.len() {
		return false
	}
	same := true
	n.tree.Root().Walk(func(k []byte, v MemoryIndex) bool {
		w, ok := o.tree.Get(k)
		if !ok || w != v {
			same = false
			return true
		}
		return false
	})
	return same
}

// union returns the names of n and o. Entries of n win on conflicts, which never happen since
// the index of a name is a function of the container.
func (n names) union(o names) names {
	if n.tree == o.tree || o.len() == 0 {
		return n
	}
	if n.len() == 0 {
		return o
	}
	txn := n.tree.Txn()
	o.tree.Root().Walk(func(k []byte, v MemoryIndex) bool {
		if _, ok := txn.Get(k); !ok {
			txn.Insert(k, v)
		}
		return false
	})
	return names{tree: txn.Commit()}
}

// ScopeDescriptor is the container of the variables (or controls, or temporaries) of one call
// level.
type ScopeDescriptor struct {
	kind  IndexKind
	level int
	names names
}

func newScope(kind IndexKind, level int) *ScopeDescriptor {
	return &ScopeDescriptor{kind: kind, level: level, names: newNames()}
}

// Kind returns the kind of the indexes of the scope.
func (d *ScopeDescriptor) Kind() IndexKind { return d.kind }

// Level returns the call level of the scope.
func (d *ScopeDescriptor) Level() int { return d.level }

func (d *ScopeDescriptor) UnknownIndex() MemoryIndex { return unknownScopeIndex(d.kind, d.level) }

func (d *ScopeDescriptor) Lookup(name string) (MemoryIndex, bool) { return d.names.lookup(name) }

func (d *ScopeDescriptor) Names() []string { return d.names.list() }

func (d *ScopeDescriptor) Len() int { return d.names.len() }

func (d *ScopeDescriptor) indexOf(name string) MemoryIndex {
	return MemoryIndex{kind: d.kind, level: d.level, root: name}
}

func (d *ScopeDescriptor) with(name string) *ScopeDescriptor {
	if _, ok := d.names.lookup(name); ok {
		return d
	}
	return &ScopeDescriptor{kind: d.kind, level: d.level, names: d.names.with(name, d.indexOf(name))}
}

func (d *ScopeDescriptor) without(name string) *ScopeDescriptor {
	if _, ok := d.names.lookup(name); !ok {
		return d
	}
	return &ScopeDescriptor{kind: d.kind, level: d.level, names: d.names.without(name)}
}

// ArrayDescriptor is the container of the elements of the array owned by an index.
type ArrayDescriptor struct {
	owner MemoryIndex
	names names
}

func newArray(owner MemoryIndex) *ArrayDescriptor {
	return &ArrayDescriptor{owner: owner, names: newNames()}
}

// Owner returns the index owning the array.
func (d *ArrayDescriptor) Owner() MemoryIndex { return d.owner }

func (d *ArrayDescriptor) UnknownIndex() MemoryIndex { return d.owner.UnknownElementIndex() }

func (d *ArrayDescriptor) Lookup(name string) (MemoryIndex, bool) { return d.names.lookup(name) }

func (d *ArrayDescriptor) Names() []string { return d.names.list() }

func (d *ArrayDescriptor) Len() int { return d.names.len() }

func (d *ArrayDescriptor) indexOf(name string) MemoryIndex { return d.owner.ElementIndex(name) }

func (d *ArrayDescriptor) with(name string) *ArrayDescriptor {
	if _, ok := d.names.lookup(name); ok {
		return d
	}
	return &ArrayDescriptor{owner: d.owner, names: d.names.with(name, d.indexOf(name))}
}

func (d *ArrayDescriptor) without(name string) *ArrayDescriptor {
	if _, ok := d.names.lookup(name); !ok {
		return d
	}
	return &ArrayDescriptor{owner: d.owner, names: d.names.without(name)}
}

// ObjectDescriptor is the container of the fields of an abstract object. A summary object stands
// for several concrete objects, so its fields are only weakly updated.
type ObjectDescriptor struct {
	id      ObjectID
	class   string
	names   names
	summary bool
}

func newObject(id ObjectID, class string) *ObjectDescriptor {
	return &ObjectDescriptor{id: id, class: class, names: newNames()}
}

// ID returns the identity of the object.
func (d *ObjectDescriptor) ID() ObjectID { return d.id }

// Class returns the class name of the object.
func (d *ObjectDescriptor) Class() string { return d.class }

// IsSummary returns true when the object stands for more than one concrete object.
func (d *ObjectDescriptor) IsSummary() bool { return d.summary }

func (d *ObjectDescriptor) summarized() *ObjectDescriptor {
	if d.summary {
		return d
	}
	return &ObjectDescriptor{id: d.id, class: d.class, names: d.names, summary: true}
}

func (d *ObjectDescriptor) UnknownIndex() MemoryIndex { return d.id.UnknownFieldIndex() }

func (d *ObjectDescriptor) Lookup(name string) (MemoryIndex, bool) { return d.names.lookup(name) }

func (d *ObjectDescriptor) Names() []string { return d.names.list() }

func (d *ObjectDescriptor) Len() int { return d.names.len() }

func (d *ObjectDescriptor) indexOf(name string) MemoryIndex { return d.id.FieldIndex(name) }

func (d *ObjectDescriptor) with(name string) *ObjectDescriptor {
	if _, ok := d.names.lookup(name); ok {
		return d
	}
	return &ObjectDescriptor{id: d.id, class: d.class, names: d.names.with(name, d.indexOf(name)), summary: d.summary}
}

func (d *ObjectDescriptor) without(name string) *ObjectDescriptor {
	if _, ok := d.names.lookup(name); !ok {
		return d
	}
	return &ObjectDescriptor{id: d.id, class: d.class, names: d.names.without(name), summary: d.summary}
}

var (
	_ IndexContainer = (*ScopeDescriptor)(nil)
	_ IndexContainer = (*ArrayDescriptor)(nil)
	_ IndexContainer = (*ObjectDescriptor)(nil)
)
