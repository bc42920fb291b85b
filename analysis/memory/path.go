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
	"sort"
	"strconv"
	"strings"
)

// Segment is one name step of a path: a single name, a finite set of names, or any name.
type Segment struct {
	names []string
	any   bool
}

// Single returns the segment denoting name.
func Single(name string) Segment { return Segment{names: []string{name}} }

// Names returns the segment denoting one of names. With no name it denotes nothing.
func Names(names ...string) Segment {
	ns := append([]string{}, names...)
	sort.Strings(ns)
	out := ns[:0]
	for i, n := range ns {
		if i > 0 && out[len(out)-1] == n {
			continue
		}
		out = append(out, n)
	}
	return Segment{names: out}
}

// AnySegment returns the segment denoting any name.
func AnySegment() Segment { return Segment{any: true} }

// IsAny returns true for the segment denoting any name.
func (s Segment) IsAny() bool { return s.any }

// Single returns the name of a single segment.
func (s Segment) Single() (string, bool) {
	if s.any || len(s.names) != 1 {
		return "", false
	}
	return s.names[0], true
}

// Names returns the names of a finite segment.
func (s Segment) Names() []string { return s.names }

func (s Segment) String() string {
	if s.any {
		return "?"
	}
	if len(s.names) == 1 {
		return s.names[0]
	}
	return "{" + strings.Join(s.names, "|") + "}"
}

// RootKind is the kind of the first step of a path.
type RootKind uint8

const (
	// VariableRoot starts at a program variable.
	VariableRoot RootKind = iota + 1
	// ControlRoot starts at an engine pseudo-variable.
	ControlRoot
	// TemporaryRoot starts at a temporary variable.
	TemporaryRoot
	// IndexRoot starts at a given index.
	IndexRoot
)

// Step is one segment of a path after its root.
type Step struct {
	Field   bool
	Segment Segment
}

// Path is a symbolic access path, such as $a["k"]->f. Paths are immutable.
type Path struct {
	root   RootKind
	global bool
	name   Segment
	index  MemoryIndex
	steps  []Step
}

// VariablePath returns the path of a variable of the current call level.
func VariablePath(name Segment) Path { return Path{root: VariableRoot, name: name} }

// GlobalVariablePath returns the path of a variable of the global level.
func GlobalVariablePath(name Segment) Path { return Path{root: VariableRoot, global: true, name: name} }

// ControlPath returns the path of a control variable of the current call level.
func ControlPath(name string) Path { return Path{root: ControlRoot, name: Single(name)} }

// TemporaryPath returns the path of a temporary of the current call level.
func TemporaryPath(name string) Path { return Path{root: TemporaryRoot, name: Single(name)} }

// IndexPath returns the path starting at index.
func IndexPath(index MemoryIndex) Path { return Path{root: IndexRoot, index: index} }

func (p Path) with(st Step) Path {
	steps := make([]Step, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	p.steps = append(steps, st)
	return p
}

// Element returns the path of the array element seg of p.
func (p Path) Element(seg Segment) Path { return p.with(Step{Segment: seg}) }

// Field returns the path of the object field seg of p.
func (p Path) Field(seg Segment) Path { return p.with(Step{Field: true, Segment: seg}) }

// Root returns the kind of the root of p.
func (p Path) Root() RootKind { return p.root }

// RootName returns the name segment of the root of p.
func (p Path) RootName() Segment { return p.name }

// IsGlobal returns true for paths rooted at a global variable.
func (p Path) IsGlobal() bool { return p.global }

// Steps returns the steps of p after its root.
func (p Path) Steps() []Step { return p.steps }

func (p Path) String() string {
	var b strings.Builder
	switch p.root {
	case VariableRoot:
		if p.global {
			b.WriteString("global ")
		}
		b.WriteString("$" + p.name.String())
	case ControlRoot:
		b.WriteString("." + p.name.String())
	case TemporaryRoot:
		b.WriteString("#" + p.name.String())
	case IndexRoot:
		b.WriteString(p.index.String())
	}
	for _, st := range p.steps {
		if st.Field {
			b.WriteString("->" + st.Segment.String())
		} else if n, ok := st.Segment.Single(); ok {
			b.WriteString("[" + strconv.Quote(n) + "]")
		} else {
			b.WriteString("[" + st.Segment.String() + "]")
		}
	}
	return b.String()
}

// Prefix returns the path made of the root of p and its first n steps.
func (p Path) Prefix(n int) Path {
	if n > len(p.steps) {
		n = len(p.steps)
	}
	p.steps = p.steps[:n:n]
	return p
}

// Anchor returns p rooted at the index its root denotes at call level level, so that it denotes
// the same locations when collected in a snapshot of another call level. Paths rooted at a set of
// names cannot be anchored.
func (p Path) Anchor(level int) (Path, bool) {
	if p.root == IndexRoot {
		return p, true
	}
	name, ok := p.name.Single()
	if !ok {
		return p, false
	}
	var root MemoryIndex
	switch p.root {
	case VariableRoot:
		if p.global {
			level = GlobalLevel
		}
		root = NewVariableIndex(name, level)
	case ControlRoot:
		root = NewControlIndex(name, level)
	case TemporaryRoot:
		root = NewTemporaryIndex(name, level)
	}
	return Path{root: IndexRoot, index: root, steps: p.steps}, true
}
