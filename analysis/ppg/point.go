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

package ppg

import (
	"fmt"
	"strconv"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
)

// Kind is the kind of a program point.
type Kind uint8

const (
	// EntryPoint starts an instance. Its in-state comes from the call points targeting the instance.
	EntryPoint Kind = iota
	// ExitPoint ends an instance. Returns and falling off the end of the function lead to it.
	ExitPoint
	// StatementPoint applies one statement.
	StatementPoint
	// AssumePoint guards a conditional edge.
	AssumePoint
	// CallPoint evaluates the arguments of a call and enters the callees.
	CallPoint
	// ReturnPoint merges the exits of the callees of its call point.
	ReturnPoint
	// JoinPoint stands for an empty basic block.
	JoinPoint
)

func (k Kind) String() string {
	switch k {
	case EntryPoint:
		return "entry"
	case ExitPoint:
		return "exit"
	case StatementPoint:
		return "stmt"
	case AssumePoint:
		return "assume"
	case CallPoint:
		return "call"
	case ReturnPoint:
		return "return"
	case JoinPoint:
		return "join"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Point is a program point.
type Point struct {
	// ID is unique in the Graph
	ID int

	// Index is the position of the point in its instance
	Index int

	Kind     Kind
	Instance *Instance
	Pos      cfg.Position

	// Stmt is the statement of a StatementPoint
	Stmt cfg.Stmt

	// Cond is the condition of an AssumePoint, nil for a default edge. The assumption holds when
	// Cond holds, or does not hold if Negated is set.
	Cond    cfg.Expr
	Negated bool

	// Siblings are the conditions of the other edges of a default edge: the assumption holds when
	// none of them does.
	Siblings []cfg.Expr

	// Call is the call expression of a CallPoint or a ReturnPoint
	Call cfg.Expr

	// Pair links a CallPoint to its ReturnPoint and the other way around
	Pair *Point

	Succs []*Point
	Preds []*Point
}

// Slot returns the name of the control variable receiving the result of the call of a CallPoint
// or ReturnPoint.
func (p *Point) Slot() string {
	call := p
	if p.Kind == ReturnPoint {
		call = p.Pair
	}
	return ".call#" + strconv.Itoa(call.ID)
}

// Condition returns a printable form of the assumption of an AssumePoint.
func (p *Point) Condition() string {
	e := &cfg.Edge{Cond: p.Cond, Negated: p.Negated, Default: p.Siblings}
	return e.Condition()
}

func (p *Point) String() string {
	head := fmt.Sprintf("p%d %s", p.ID, p.Kind)
	switch p.Kind {
	case StatementPoint:
		return head + " " + p.Stmt.String()
	case AssumePoint:
		return head + " " + p.Condition()
	case CallPoint, ReturnPoint:
		return head + " " + p.Call.String()
	case EntryPoint, ExitPoint:
		return head + " " + p.Instance.String()
	}
	return head
}

func link(from, to *Point) {
	for _, s := range from.Succs {
		if s == to {
			return
		}
	}
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}
