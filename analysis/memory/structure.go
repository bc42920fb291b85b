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

// Structure is the part of a snapshot describing what exists and how it is connected: the
// scopes of every live call level, the array and object descriptors, and the alias records.
// A Structure is a value: copying it is a constant time clone, and every update returns a new one.
type Structure struct {
	scopes  *iradix.Tree[*ScopeDescriptor]
	arrays  *iradix.Tree[*ArrayDescriptor]
	objects *iradix.Tree[*ObjectDescriptor]
	aliases *iradix.Tree[*MemoryAlias]
}

func newStructure() Structure {
	return Structure{
		scopes:  iradix.New[*ScopeDescriptor](),
		arrays:  iradix.New[*ArrayDescriptor](),
		objects: iradix.New[*ObjectDescriptor](),
		aliases: iradix.New[*MemoryAlias](),
	}
}

func scopeKey(kind IndexKind, level int) []byte { return []byte(levelKeyPrefix(kind, level)) }

// Scope returns the scope of kind at level.
func (s Structure) Scope(kind IndexKind, level int) (*ScopeDescriptor, bool) {
	return s.scopes.Get(scopeKey(kind, level))
}

func (s Structure) withScope(d *ScopeDescriptor) Structure {
	s.scopes, _, _ = s.scopes.Insert(scopeKey(d.kind, d.level), d)
	return s
}

// Array returns the descriptor of the array owned by owner.
func (s Structure) Array(owner MemoryIndex) (*ArrayDescriptor, bool) {
	return s.arrays.Get([]byte(owner.key()))
}

func (s Structure) withArray(d *ArrayDescriptor) Structure {
	s.arrays, _, _ = s.arrays.Insert([]byte(d.owner.key()), d)
	return s
}

// Object returns the descriptor of the object id.
func (s Structure) Object(id ObjectID) (*ObjectDescriptor, bool) {
	return s.objects.Get([]byte(id))
}

func (s Structure) withObject(d *ObjectDescriptor) Structure {
	s.objects, _, _ = s.objects.Insert([]byte(d.id), d)
	return s
}

// Alias returns the alias record of index, nil when it has no aliases.
func (s Structure) Alias(index MemoryIndex) *MemoryAlias {
	a, _ := s.aliases.Get([]byte(index.key()))
	return a
}

func (s Structure) withAlias(index MemoryIndex, a *MemoryAlias) Structure {
	if a.IsEmpty() {
		s.aliases, _, _ = s.aliases.Delete([]byte(index.key()))
		return s
	}
	s.aliases, _, _ = s.aliases.Insert([]byte(index.key()), a)
	return s
}

// container returns the container holding index in s.
func (s Structure) container(index MemoryIndex) (IndexContainer, bool) {
	if index.IsRoot() {
		d, ok := s.Scope(index.kind, index.level)
		return d, ok
	}
	if parent, ok := index.Parent(); ok {
		d, ok := s.Array(parent)
		return d, ok
	}
	if id, ok := index.Object(); ok {
		d, ok := s.Object(id)
		return d, ok
	}
	return nil, false
}

// withName registers the last segment of index in its container, creating the container when it
// does not exist. Unknown indexes are never registered.
func (s Structure) withName(index MemoryIndex, class string) Structure {
	if index.IsUnknown() {
		return s.ensureContainer(index, class)
	}
	if index.IsRoot() {
		d, ok := s.Scope(index.kind, index.level)
		if !ok {
			d = newScope(index.kind, index.level)
		}
		return s.withScope(d.with(index.root))
	}
	seg, _ := index.LastSegment()
	if parent, ok := index.Parent(); ok {
		d, ok := s.Array(parent)
		if !ok {
			d = newArray(parent)
		}
		return s.withArray(d.with(seg.Name))
	}
	id, _ := index.Object()
	d, ok := s.Object(id)
	if !ok {
		d = newObject(id, class)
	}
	return s.withObject(d.with(seg.Name))
}

func (s Structure) ensureContainer(index MemoryIndex, class string) Structure {
	if _, ok := s.container(index); ok {
		return s
	}
	if index.IsRoot() {
		return s.withScope(newScope(index.kind, index.level))
	}
	if parent, ok := index.Parent(); ok {
		return s.withArray(newArray(parent))
	}
	id, _ := index.Object()
	return s.withObject(newObject(id, class))
}

// withoutName removes the last segment of index from its container.
func (s Structure) withoutName(index MemoryIndex) Structure {
	if index.IsUnknown() {
		return s
	}
	seg, _ := index.LastSegment()
	switch c := mustContainer(s, index).(type) {
	case *ScopeDescriptor:
		return s.withScope(c.without(index.root))
	case *ArrayDescriptor:
		return s.withArray(c.without(seg.Name))
	case *ObjectDescriptor:
		return s.withObject(c.without(seg.Name))
	}
	return s
}

func mustContainer(s Structure, index MemoryIndex) IndexContainer {
	c, ok := s.container(index)
	if !ok {
		return nil
	}
	return c
}

// hasName returns true if index is registered in its container.
func (s Structure) hasName(index MemoryIndex) bool {
	c, ok := s.container(index)
	if !ok {
		return false
	}
	if index.IsUnknown() {
		return true
	}
	if index.IsRoot() {
		_, found := c.Lookup(index.root)
		return found
	}
	seg, _ := index.LastSegment()
	_, found := c.Lookup(seg.Name)
	return found
}

// dropLevel removes the scopes of level together with the arrays and alias records of the
// indexes rooted at that level.
func (s Structure) dropLevel(level int) Structure {
	for _, kind := range []IndexKind{VariableIndex, ControlIndex, TemporaryIndex} {
		prefix := scopeKey(kind, level)
		s.scopes, _, _ = s.scopes.Delete(prefix)
		s.arrays, _ = s.arrays.DeletePrefix(prefix)
		s.aliases, _ = s.aliases.DeletePrefix(prefix)
	}
	return s
}

// Equal returns true when both structures have the same scopes, descriptors and aliases.
func (s Structure) Equal(o Structure) bool {
	return equalTrees(s.scopes, o.scopes, func(a, b *ScopeDescriptor) bool { return a == b || a.names.equal(b.names) }) &&
		equalTrees(s.arrays, o.arrays, func(a, b *ArrayDescriptor) bool { return a == b || a.names.equal(b.names) }) &&
		equalTrees(s.objects, o.objects, func(a, b *ObjectDescriptor) bool {
			return a == b || a.class == b.class && a.summary == b.summary && a.names.equal(b.names)
		}) &&
		equalTrees(s.aliases, o.aliases, func(a, b *MemoryAlias) bool { return a.Equal(b) })
}

// equalTrees compares two persistent maps. Identical roots short-circuit the walk.
func equalTrees[T any](a, b *iradix.Tree[T], eq func(T, T) bool) bool {
	if a == b || a.Root() == b.Root() {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	same := true
	a.Root().Walk(func(k []byte, va T) bool {
		vb, ok := b.Get(k)
		if !ok || !eq(va, vb) {
			same = false
			return true
		}
		return false
	})
	return same
}

// ScopeNames returns the names of the variables of the given level.
func (s Structure) ScopeNames(kind IndexKind, level int) []string {
	d, ok := s.Scope(kind, level)
	if !ok {
		return nil
	}
	return d.Names()
}
