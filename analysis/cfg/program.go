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

package cfg

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-php-tools/internal/funcutil"
)

// MainName is the name of the function holding the main script.
const MainName = "{main}"

// Program is a whole program: the main script and the declarations it may call.
type Program struct {
	// Main is the body of the main script
	Main *Function

	// Functions are the function declarations, keyed by lower-case name
	Functions map[string]*Function

	// Classes are the class declarations, keyed by lower-case name
	Classes map[string]*Class

	// Unsupported lists the constructs the front-end approximated
	Unsupported []*UnsupportedError
}

// NewProgram returns a program with an empty main script.
func NewProgram() *Program {
	return &Program{
		Main:      NewFunction(MainName, Position{}),
		Functions: map[string]*Function{},
		Classes:   map[string]*Class{},
	}
}

// AddFunction declares f. A second declaration of the same name replaces the first.
func (p *Program) AddFunction(f *Function) {
	p.Functions[strings.ToLower(f.Name)] = f
}

// AddClass declares c.
func (p *Program) AddClass(c *Class) {
	p.Classes[strings.ToLower(c.Name)] = c
}

// Function returns the function declared with name, ignoring case.
func (p *Program) Function(name string) (*Function, bool) {
	f, ok := p.Functions[strings.ToLower(strings.TrimPrefix(name, "\\"))]
	return f, ok
}

// Class returns the class declared with name, ignoring case.
func (p *Program) Class(name string) (*Class, bool) {
	c, ok := p.Classes[strings.ToLower(strings.TrimPrefix(name, "\\"))]
	return c, ok
}

// Method returns the method name of class, looking up the parent classes.
func (p *Program) Method(class string, name string) (*Function, bool) {
	seen := map[string]bool{}
	for c, ok := p.Class(class); ok && !seen[c.Name]; c, ok = p.Class(c.Parent) {
		seen[c.Name] = true
		if m, ok := c.Methods[strings.ToLower(name)]; ok {
			return m, true
		}
	}
	return nil, false
}

// Implementations returns the methods named name of every class declaring one, sorted by class
// name. They are the possible targets of a call on a receiver of unknown class.
func (p *Program) Implementations(name string) []*Function {
	var res []*Function
	for _, k := range funcutil.SortedKeys(p.Classes) {
		if m, ok := p.Classes[k].Methods[strings.ToLower(name)]; ok {
			res = append(res, m)
		}
	}
	return res
}

// Class is a class declaration.
type Class struct {
	Name   string
	Parent string
	Pos    Position

	// Methods are keyed by lower-case name
	Methods map[string]*Function

	// Props are the declared properties, with their default values
	Props []Property
}

// NewClass returns a class without members.
func NewClass(name, parent string, pos Position) *Class {
	return &Class{Name: name, Parent: parent, Pos: pos, Methods: map[string]*Function{}}
}

// AddMethod adds m to c and records c as the class of m.
func (c *Class) AddMethod(m *Function) {
	m.Class = c.Name
	c.Methods[strings.ToLower(m.Name)] = m
}

// Property is a declared property. Default is nil when there is no default value.
type Property struct {
	Name    string
	Default Expr
}

// Param is a function parameter. Default is nil when the parameter is required.
type Param struct {
	Name    string
	ByRef   bool
	Default Expr
}

// Function is the control-flow graph of a function, a method or the main script.
//
// The graph has a single Entry block and a single Exit block. The Exit block holds no statement;
// a Return statement and a block without successors both lead to it.
type Function struct {
	Name   string
	Class  string
	Params []Param
	Pos    Position

	Blocks []*Block
	Entry  *Block
	Exit   *Block
}

// NewFunction returns a function made of an entry block linked to an exit block.
func NewFunction(name string, pos Position) *Function {
	f := &Function{Name: name, Pos: pos}
	f.Entry = f.NewBlock()
	f.Exit = f.NewBlock()
	return f
}

// QualifiedName returns Class::Name for methods, Name otherwise.
func (f *Function) QualifiedName() string {
	if f.Class != "" {
		return f.Class + "::" + f.Name
	}
	return f.Name
}

func (f *Function) String() string { return f.QualifiedName() }

// NewBlock appends a new empty block to f.
func (f *Function) NewBlock() *Block {
	b := &Block{ID: len(f.Blocks), Parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Jump adds an unconditional edge from -> to.
func (f *Function) Jump(from, to *Block) *Edge {
	return from.addEdge(&Edge{From: from, To: to})
}

// Branch adds the two edges of a conditional: from -> then when cond holds and from -> els when
// it does not.
func (f *Function) Branch(from *Block, cond Expr, then, els *Block) {
	from.addEdge(&Edge{From: from, To: then, Cond: cond})
	from.addEdge(&Edge{From: from, To: els, Cond: cond, Negated: true})
}

// Switch adds a multi-way branch: one edge to targets[i] guarded by conds[i], and a default edge
// to def taken when none of the conditions holds.
func (f *Function) Switch(from *Block, conds []Expr, targets []*Block, def *Block) {
	if len(conds) != len(targets) {
		panic(fmt.Sprintf("switch with %d conditions and %d targets", len(conds), len(targets)))
	}
	for i, c := range conds {
		from.addEdge(&Edge{From: from, To: targets[i], Cond: c})
	}
	from.addEdge(&Edge{From: from, To: def, Default: append([]Expr{}, conds...)})
}

// Block is a basic block.
type Block struct {
	ID     int
	Parent *Function
	Stmts  []Stmt
	Succs  []*Edge
	Preds  []*Edge
}

// Add appends statements to b.
func (b *Block) Add(stmts ...Stmt) *Block {
	b.Stmts = append(b.Stmts, stmts...)
	return b
}

// Terminated returns true when the last statement of b is a Return.
func (b *Block) Terminated() bool {
	if len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*Return)
	return ok
}

func (b *Block) addEdge(e *Edge) *Edge {
	b.Succs = append(b.Succs, e)
	e.To.Preds = append(e.To.Preds, e)
	return e
}

func (b *Block) String() string { return fmt.Sprintf("%s.b%d", b.Parent, b.ID) }

// Edge is a control-flow edge.
//
// An edge with a nil Cond and no Default conditions is unconditional. An edge with Cond is taken
// when Cond holds, or does not hold when Negated is set. A default edge, with Default conditions,
// is taken when none of them holds.
type Edge struct {
	From    *Block
	To      *Block
	Cond    Expr
	Negated bool
	Default []Expr
}

// IsConditional returns true when taking e depends on a condition.
func (e *Edge) IsConditional() bool { return e.Cond != nil || len(e.Default) > 0 }

// Condition returns a printable form of the condition of e.
func (e *Edge) Condition() string {
	switch {
	case e.Cond != nil && e.Negated:
		return "!" + e.Cond.String()
	case e.Cond != nil:
		return e.Cond.String()
	case len(e.Default) > 0:
		parts := make([]string, len(e.Default))
		for i, c := range e.Default {
			parts[i] = "!" + c.String()
		}
		return strings.Join(parts, " && ")
	}
	return "true"
}
