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
	"strings"
)

// IndexKind is the kind of root a MemoryIndex is derived from.
type IndexKind uint8

const (
	// VariableIndex is rooted at a program variable of some call level.
	VariableIndex IndexKind = iota + 1
	// ControlIndex is rooted at an engine pseudo-variable (return slot, call results).
	ControlIndex
	// TemporaryIndex is rooted at a scratch variable that never leaves the snapshot.
	TemporaryIndex
	// ObjectIndex is rooted at an object identity.
	ObjectIndex
)

func (k IndexKind) String() string {
	switch k {
	case VariableIndex:
		return "variable"
	case ControlIndex:
		return "control"
	case TemporaryIndex:
		return "temporary"
	case ObjectIndex:
		return "object"
	default:
		return "invalid"
	}
}

// keyPrefix is the first component of the canonical key of the indexes of that kind.
func (k IndexKind) keyPrefix() byte {
	switch k {
	case VariableIndex:
		return 'v'
	case ControlIndex:
		return 'c'
	case TemporaryIndex:
		return 't'
	case ObjectIndex:
		return 'o'
	}
	return '?'
}

// ObjectID identifies an abstract object. Objects are abstracted by allocation site, so every
// concrete object created at the same site shares one ObjectID.
type ObjectID string

// FieldIndex returns the index of the field name of the object.
func (o ObjectID) FieldIndex(name string) MemoryIndex {
	return MemoryIndex{kind: ObjectIndex, root: string(o), path: fieldSegment(name)}
}

// UnknownFieldIndex returns the unknown index of the object.
func (o ObjectID) UnknownFieldIndex() MemoryIndex {
	return MemoryIndex{kind: ObjectIndex, root: string(o), path: unknownFieldSegment}
}

const (
	unknownElementSegment = "[?]"
	unknownFieldSegment   = "->?"
)

func elementSegment(key string) string { return "[" + strconv.Quote(key) + "]" }

func fieldSegment(name string) string { return "->" + strconv.Quote(name) }

// MemoryIndex identifies one storage location. It is a plain comparable value: two indexes are
// equal iff their kind, level, root and path are equal, and equality never depends on a snapshot.
//
// Root indexes are variables, controls and temporaries of a call level. Array elements and object
// fields are child indexes whose path encodes the sequence of segments leading to them.
type MemoryIndex struct {
	kind  IndexKind
	level int
	// anyRoot marks the unknown index of a scope
	anyRoot bool
	root    string
	path    string
}

// NewVariableIndex returns the index of variable name at the given call level.
func NewVariableIndex(name string, level int) MemoryIndex {
	return MemoryIndex{kind: VariableIndex, level: level, root: name}
}

// NewControlIndex returns the index of the engine pseudo-variable name at the given call level.
func NewControlIndex(name string, level int) MemoryIndex {
	return MemoryIndex{kind: ControlIndex, level: level, root: name}
}

// NewTemporaryIndex returns the index of the scratch variable name at the given call level.
func NewTemporaryIndex(name string, level int) MemoryIndex {
	return MemoryIndex{kind: TemporaryIndex, level: level, root: name}
}

// NewObjectFieldIndex returns the index of field of obj.
func NewObjectFieldIndex(obj ObjectID, field string) MemoryIndex {
	return obj.FieldIndex(field)
}

// unknownScopeIndex returns the unknown index of the scope of kind at level.
func unknownScopeIndex(kind IndexKind, level int) MemoryIndex {
	return MemoryIndex{kind: kind, level: level, anyRoot: true}
}

// ElementIndex returns the index of the array element key of the array owned by i.
func (i MemoryIndex) ElementIndex(key string) MemoryIndex {
	i.path += elementSegment(key)
	return i
}

// UnknownElementIndex returns the unknown index of the array owned by i.
func (i MemoryIndex) UnknownElementIndex() MemoryIndex {
	i.path += unknownElementSegment
	return i
}

// FieldIndex returns the index of field name of obj. It exists for symmetry with ElementIndex:
// object fields are rooted at the object identity and not at the index holding the handle.
func (i MemoryIndex) FieldIndex(obj ObjectID, name string) MemoryIndex {
	return obj.FieldIndex(name)
}

// IsValid returns false for the zero MemoryIndex.
func (i MemoryIndex) IsValid() bool { return i.kind != 0 }

// Kind returns the kind of the root of the index.
func (i MemoryIndex) Kind() IndexKind { return i.kind }

// Level returns the call level of the root of the index. Object indexes have level 0.
func (i MemoryIndex) Level() int { return i.level }

// Root returns the name of the root variable or the object identity.
func (i MemoryIndex) Root() string { return i.root }

// Object returns the object identity of an ObjectIndex.
func (i MemoryIndex) Object() (ObjectID, bool) {
	if i.kind != ObjectIndex {
		return "", false
	}
	return ObjectID(i.root), true
}

// IsRoot returns true when the index is a variable, control or temporary, not a child index.
func (i MemoryIndex) IsRoot() bool { return i.path == "" }

// IsUnknown returns true when the index is the unknown index of its container.
func (i MemoryIndex) IsUnknown() bool {
	if i.path == "" {
		return i.anyRoot
	}
	return strings.HasSuffix(i.path, unknownElementSegment) || strings.HasSuffix(i.path, unknownFieldSegment)
}

// Depth returns the number of segments of the path of the index.
func (i MemoryIndex) Depth() int {
	return len(i.Segments())
}

// Parent returns the index that owns the container of i. Object fields have no parent index
// since objects are roots of their own.
func (i MemoryIndex) Parent() (MemoryIndex, bool) {
	if i.path == "" || i.kind == ObjectIndex && i.isTopField() {
		return MemoryIndex{}, false
	}
	segs := splitSegments(i.path)
	parent := i
	parent.path = strings.Join(segs[:len(segs)-1], "")
	return parent, true
}

func (i MemoryIndex) isTopField() bool {
	segs := splitSegments(i.path)
	return len(segs) == 1
}

// LastSegment returns the last segment of the index and whether it is an element segment.
// The name is empty when the segment is the unknown segment.
func (i MemoryIndex) LastSegment() (IndexSegment, bool) {
	if i.path == "" {
		return IndexSegment{}, false
	}
	segs := splitSegments(i.path)
	return decodeSegment(segs[len(segs)-1]), true
}

// Segments returns the decoded path of the index.
func (i MemoryIndex) Segments() []IndexSegment {
	if i.path == "" {
		return nil
	}
	raw := splitSegments(i.path)
	segs := make([]IndexSegment, len(raw))
	for k, s := range raw {
		segs[k] = decodeSegment(s)
	}
	return segs
}

// HasPrefix returns true if i is p or a descendant of p.
func (i MemoryIndex) HasPrefix(p MemoryIndex) bool {
	if i.kind != p.kind || i.level != p.level || i.anyRoot != p.anyRoot || i.root != p.root {
		return false
	}
	return strings.HasPrefix(i.path, p.path)
}

// rebase replaces the prefix from of i with to.
func (i MemoryIndex) rebase(from, to MemoryIndex) MemoryIndex {
	suffix := strings.TrimPrefix(i.path, from.path)
	to.path += suffix
	return to
}

// IndexSegment is one decoded step of the path of an index.
type IndexSegment struct {
	Element bool
	Unknown bool
	Name    string
}

func (s IndexSegment) String() string {
	switch {
	case s.Element && s.Unknown:
		return unknownElementSegment
	case s.Element:
		return elementSegment(s.Name)
	case s.Unknown:
		return unknownFieldSegment
	default:
		return fieldSegment(s.Name)
	}
}

// splitSegments splits an encoded path into its raw segments. Names are quoted with
// strconv.Quote, so brackets inside names never terminate a segment.
func splitSegments(path string) []string {
	var segs []string
	for len(path) > 0 {
		n := segmentLength(path)
		segs = append(segs, path[:n])
		path = path[n:]
	}
	return segs
}

func segmentLength(path string) int {
	switch {
	case strings.HasPrefix(path, unknownElementSegment), strings.HasPrefix(path, unknownFieldSegment):
		return 3
	case strings.HasPrefix(path, "["):
		q, err := strconv.QuotedPrefix(path[1:])
		if err != nil {
			panic(fmt.Sprintf("malformed index path %q", path))
		}
		return len(q) + 2
	case strings.HasPrefix(path, "->"):
		q, err := strconv.QuotedPrefix(path[2:])
		if err != nil {
			panic(fmt.Sprintf("malformed index path %q", path))
		}
		return len(q) + 2
	}
	panic(fmt.Sprintf("malformed index path %q", path))
}

func decodeSegment(raw string) IndexSegment {
	switch raw {
	case unknownElementSegment:
		return IndexSegment{Element: true, Unknown: true}
	case unknownFieldSegment:
		return IndexSegment{Unknown: true}
	}
	if strings.HasPrefix(raw, "[") {
		name, _ := strconv.Unquote(raw[1 : len(raw)-1])
		return IndexSegment{Element: true, Name: name}
	}
	name, _ := strconv.Unquote(raw[2:])
	return IndexSegment{Name: name}
}

// String returns a readable representation, such as $x@1["a"] or obj(s1)->"f".
func (i MemoryIndex) String() string {
	var b strings.Builder
	switch i.kind {
	case VariableIndex:
		b.WriteString("$")
	case ControlIndex:
		b.WriteString(".")
	case TemporaryIndex:
		b.WriteString("#")
	case ObjectIndex:
		b.WriteString("obj(")
		b.WriteString(i.root)
		b.WriteString(")")
		b.WriteString(i.path)
		return b.String()
	default:
		return "<invalid index>"
	}
	if i.anyRoot {
		b.WriteString("?")
	} else {
		b.WriteString(i.root)
	}
	b.WriteString("@")
	b.WriteString(strconv.Itoa(i.level))
	b.WriteString(i.path)
	return b.String()
}

// key returns the canonical key of the index in the persistent maps. The key of an index is a
// prefix of the keys of all its descendants, and levelKeyPrefix(kind, level) is a prefix of the
// keys of every index rooted at that level.
func (i MemoryIndex) key() string {
	var b strings.Builder
	if i.kind == ObjectIndex {
		b.WriteByte('o')
		b.WriteByte('|')
		b.WriteString(i.root)
		b.WriteByte(0)
		b.WriteString(i.path)
		return b.String()
	}
	b.WriteString(levelKeyPrefix(i.kind, i.level))
	if i.anyRoot {
		b.WriteByte(1)
	} else {
		b.WriteString(i.root)
	}
	b.WriteByte(0)
	b.WriteString(i.path)
	return b.String()
}

// childKeyPrefix returns the prefix shared by the keys of every strict descendant of i.
func (i MemoryIndex) childKeyPrefix() string {
	return i.key() + "["
}

func levelKeyPrefix(kind IndexKind, level int) string {
	return string([]byte{kind.keyPrefix(), '|'}) + strconv.Itoa(level) + "|"
}

// compareIndex orders indexes deterministically.
func compareIndex(a, b MemoryIndex) int {
	switch {
	case a.kind != b.kind:
		return int(a.kind) - int(b.kind)
	case a.level != b.level:
		return a.level - b.level
	case a.anyRoot != b.anyRoot:
		if a.anyRoot {
			return 1
		}
		return -1
	case a.root != b.root:
		return strings.Compare(a.root, b.root)
	}
	return strings.Compare(a.path, b.path)
}
