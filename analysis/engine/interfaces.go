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

package engine

import (
	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/memory"
	"github.com/awslabs/ar-php-tools/analysis/ppg"
)

// Truth is what the driver could prove about a condition.
type Truth uint8

const (
	// Unknown conditions may hold or not
	Unknown Truth = iota
	// AlwaysTrue conditions hold in every concrete state of the snapshot
	AlwaysTrue
	// AlwaysFalse conditions hold in no concrete state of the snapshot
	AlwaysFalse
)

func (t Truth) String() string {
	switch t {
	case AlwaysTrue:
		return "true"
	case AlwaysFalse:
		return "false"
	}
	return "unknown"
}

// Not returns the truth of the negated condition.
func (t Truth) Not() Truth {
	switch t {
	case AlwaysTrue:
		return AlwaysFalse
	case AlwaysFalse:
		return AlwaysTrue
	}
	return Unknown
}

// And returns the truth of the conjunction.
func (t Truth) And(o Truth) Truth {
	switch {
	case t == AlwaysFalse || o == AlwaysFalse:
		return AlwaysFalse
	case t == AlwaysTrue && o == AlwaysTrue:
		return AlwaysTrue
	}
	return Unknown
}

// Or returns the truth of the disjunction.
func (t Truth) Or(o Truth) Truth {
	return t.Not().And(o.Not()).Not()
}

// Val is the abstract value of an expression: its possible values and its info flags.
type Val struct {
	Values memory.MemoryEntry
	Infos  memory.MemoryEntry
}

// Condition is an assumption about a value, passed to Evaluator.Assume. With an empty Op, the
// assumption is on the truthiness of the value; otherwise it is "value Op Other".
type Condition struct {
	Op    cfg.BinaryOp
	Other memory.MemoryEntry
	Holds bool
}

// Evaluator gives the meaning of values. Every method is pure: the driver writes the results.
type Evaluator interface {
	// Literal returns the value of a literal
	Literal(lit *cfg.Literal) memory.MemoryEntry

	// Constant returns the value of a named constant
	Constant(name string) memory.MemoryEntry

	// BinaryOp returns the values of left op right
	BinaryOp(op cfg.BinaryOp, left, right memory.MemoryEntry) memory.MemoryEntry

	// UnaryOp returns the values of op x
	UnaryOp(op cfg.UnaryOp, x memory.MemoryEntry) memory.MemoryEntry

	// Cast returns the values of x converted to typ
	Cast(typ string, x memory.MemoryEntry) memory.MemoryEntry

	// Truthiness returns whether x converts to true
	Truthiness(x memory.MemoryEntry) Truth

	// Compare returns whether left op right holds, for a comparison operator op
	Compare(op cfg.BinaryOp, left, right memory.MemoryEntry) Truth

	// Assume returns the values of subject for which cond holds. An empty result means the
	// assumption is infeasible.
	Assume(cond Condition, subject memory.MemoryEntry) memory.MemoryEntry

	// Foreach returns the keys and values an iteration over subject binds, given the known keys of
	// the arrays of subject, whether they have unknown keys, and the values of their elements.
	Foreach(subject memory.MemoryEntry, keys []string, unknownKeys bool,
		elements memory.MemoryEntry) (key, value memory.MemoryEntry)

	// NativeCall returns the result of a function that has no declaration in the program. It
	// returns false when the function is not modeled.
	NativeCall(name string, args []memory.MemoryEntry) (memory.MemoryEntry, bool)

	// Echo observes printed values
	Echo(args []memory.MemoryEntry)

	// ArrayKey returns the element names key may denote
	ArrayKey(key memory.MemoryEntry) memory.Segment
}

// Resolver finds the declarations called by call expressions. Every method returns unresolved set
// when some possible target has no declaration.
type Resolver interface {
	// ResolveFunction returns the declaration of the function name
	ResolveFunction(name string) (fn *cfg.Function, ok bool)

	// ResolveMethod returns the methods named method of the possible receivers
	ResolveMethod(receiver memory.MemoryEntry, method string) (targets []*cfg.Function, unresolved bool)

	// ResolveStatic returns the method of a static call class::method
	ResolveStatic(class string, method string) (fn *cfg.Function, ok bool)

	// ResolveConstructor returns the constructor of class, if it declares or inherits one
	ResolveConstructor(class string) (fn *cfg.Function, ok bool)

	// ResolveIndirect returns the functions the values of callee name
	ResolveIndirect(callee memory.MemoryEntry) (targets []*cfg.Function, unresolved bool)
}

// CallSite describes a call to the InfoPolicy.
type CallSite struct {
	// Name is the called function or method; language constructs such as echo are named like
	// functions
	Name string
	// Class is the class of the called method, when it is known
	Class string
	// Function is the qualified name of the function making the call
	Function string
	// Point is the program point of the call
	Point *ppg.Point
	Pos   cfg.Position
}

// InfoPolicy maintains the info layer. The driver propagates info flags through assignments and
// operators; the policy decides what calls do to them.
type InfoPolicy interface {
	// Seed sets the info flags of the initial state of the main script. s has a transaction in
	// progress.
	Seed(s *memory.Snapshot)

	// CallInfo returns the info flags of the result of a call. When ok is false, the result of a
	// native call carries the flags of its arguments and the result of a user function carries
	// the flags of its returned value.
	CallInfo(site CallSite, args []Val) (infos memory.MemoryEntry, ok bool)

	// Sink observes the arguments of a call
	Sink(site CallSite, args []Val)

	// Flows returns the flows reported so far
	Flows() []Flow
}

// Flow is info reaching a sink.
type Flow struct {
	// Sink is the name of the called sink
	Sink string
	// Function is the function in which the sink is called
	Function string
	// Pos is the position of the call
	Pos cfg.Position
	// Point is the identifier of the call point
	Point int
	// Arg is the index of the argument carrying the info
	Arg int
	// Infos are the flags reaching the argument
	Infos memory.MemoryEntry
}

// NoInfo is the InfoPolicy that leaves the info layer empty.
type NoInfo struct{}

// Seed does nothing
func (NoInfo) Seed(*memory.Snapshot) {}

// CallInfo defers to the default propagation
func (NoInfo) CallInfo(CallSite, []Val) (memory.MemoryEntry, bool) { return memory.EmptyEntry, false }

// Sink does nothing
func (NoInfo) Sink(CallSite, []Val) {}

// Flows returns nil
func (NoInfo) Flows() []Flow { return nil }
