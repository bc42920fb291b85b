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

package valueset

import (
	"math"
	"strconv"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/config"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
)

// DefaultMaxProduct bounds the number of operand pairs an operator is applied to.
const DefaultMaxProduct = 64

// Evaluator is the default engine.Evaluator.
type Evaluator struct {
	// MaxProduct bounds the number of operand pairs; beyond it results are only known by kind
	MaxProduct int

	// Natives model the functions without declaration, by lower-case name
	Natives map[string]NativeFunc

	// Printed accumulates the values passed to echo
	Printed []memory.MemoryEntry

	logger *config.LogGroup
}

var _ engine.Evaluator = (*Evaluator)(nil)

// New returns an evaluator with the standard native functions. logger may be nil.
func New(logger *config.LogGroup) *Evaluator {
	return &Evaluator{
		MaxProduct: DefaultMaxProduct,
		Natives:    StandardNatives(),
		logger:     logger,
	}
}

// Literal returns the value of lit.
func (e *Evaluator) Literal(lit *cfg.Literal) memory.MemoryEntry {
	switch lit.Kind {
	case cfg.BoolLiteral:
		return memory.NewEntry(memory.Bool(lit.Bool))
	case cfg.IntLiteral:
		return memory.NewEntry(memory.Int(lit.Int))
	case cfg.FloatLiteral:
		return memory.NewEntry(memory.Float(lit.Float))
	case cfg.StringLiteral:
		return memory.NewEntry(memory.String(lit.Str))
	}
	return memory.NewEntry(memory.Null)
}

// Constant returns the value of the predefined constants; other constants may be anything.
func (e *Evaluator) Constant(name string) memory.MemoryEntry {
	switch strings.ToUpper(strings.TrimPrefix(name, "\\")) {
	case "TRUE":
		return memory.NewEntry(memory.True)
	case "FALSE":
		return memory.NewEntry(memory.False)
	case "NULL":
		return memory.NewEntry(memory.Null)
	case "PHP_EOL":
		return memory.NewEntry(memory.String("\n"))
	case "PHP_INT_MAX":
		return memory.NewEntry(memory.Int(math.MaxInt64))
	case "PHP_INT_MIN":
		return memory.NewEntry(memory.Int(math.MinInt64))
	case "PHP_INT_SIZE":
		return memory.NewEntry(memory.Int(8))
	case "M_PI":
		return memory.NewEntry(memory.Float(math.Pi))
	}
	return memory.NewEntry(memory.Any)
}

// pairs applies f to every pair of values of l and r. When there are too many pairs, or when f
// fails on a pair, the result is the unknown value of kind k.
func (e *Evaluator) pairs(l, r memory.MemoryEntry, k memory.ValueKind,
	f func(a, b memory.Value) (memory.Value, bool)) memory.MemoryEntry {
	if l.IsEmpty() || r.IsEmpty() || l.Count()*r.Count() > e.maxProduct() {
		return memory.NewEntry(anyOf(k))
	}
	var res []memory.Value
	for _, a := range l.Values() {
		for _, b := range r.Values() {
			v, ok := f(a, b)
			if !ok {
				v = anyOf(k)
			}
			res = append(res, v)
		}
	}
	return memory.NewEntry(res...)
}

func (e *Evaluator) maxProduct() int {
	if e.MaxProduct <= 0 {
		return DefaultMaxProduct
	}
	return e.MaxProduct
}

// BinaryOp returns the values of left op right.
func (e *Evaluator) BinaryOp(op cfg.BinaryOp, left, right memory.MemoryEntry) memory.MemoryEntry {
	switch {
	case op.IsComparison():
		return truthEntry(e.Compare(op, left, right))
	case op == cfg.OpAnd:
		return truthEntry(e.Truthiness(left).And(e.Truthiness(right)))
	case op == cfg.OpOr:
		return truthEntry(e.Truthiness(left).Or(e.Truthiness(right)))
	case op == cfg.OpXor:
		return e.pairs(left, right, memory.KindBool, func(a, b memory.Value) (memory.Value, bool) {
			x, ok1 := toBool(a)
			y, ok2 := toBool(b)
			return memory.Bool(x != y), ok1 && ok2
		})
	case op == cfg.OpCoalesce:
		set := left.Filter(func(v memory.Value) bool { return v != memory.Null && v != memory.Undefined })
		if set.Count() == left.Count() {
			return left
		}
		return set.Union(right)
	case op == cfg.OpConcat:
		return e.pairs(left, right, memory.KindString, func(a, b memory.Value) (memory.Value, bool) {
			x, ok1 := toString(a)
			y, ok2 := toString(b)
			return memory.String(x + y), ok1 && ok2
		})
	case op == cfg.OpSpaceship:
		return e.pairs(left, right, memory.KindInt, func(a, b memory.Value) (memory.Value, bool) {
			c, ok := compare(a, b)
			return memory.Int(int64(c)), ok
		})
	}
	return e.pairs(left, right, arithmeticKind(op), func(a, b memory.Value) (memory.Value, bool) {
		return arithmetic(op, a, b)
	})
}

func arithmeticKind(op cfg.BinaryOp) memory.ValueKind {
	switch op {
	case cfg.OpBitAnd, cfg.OpBitOr, cfg.OpBitXor, cfg.OpShl, cfg.OpShr, cfg.OpMod:
		return memory.KindInt
	}
	// int or float
	return memory.KindAny
}

// arithmetic applies a numeric operator. Errors such as a division by zero yield no known value.
func arithmetic(op cfg.BinaryOp, a, b memory.Value) (memory.Value, bool) {
	if isAbstract(a) || isAbstract(b) {
		return abstractArithmetic(op, a, b)
	}
	x, ok1 := toNumber(a)
	y, ok2 := toNumber(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	xi, xInt := x.(memory.IntValue)
	yi, yInt := y.(memory.IntValue)
	bothInt := xInt && yInt
	switch op {
	case cfg.OpAdd:
		if bothInt && !addOverflows(xi.V, yi.V) {
			return memory.Int(xi.V + yi.V), true
		}
		return memory.Float(toFloat(x) + toFloat(y)), true
	case cfg.OpSub:
		if bothInt && !addOverflows(xi.V, -yi.V) && yi.V != math.MinInt64 {
			return memory.Int(xi.V - yi.V), true
		}
		return memory.Float(toFloat(x) - toFloat(y)), true
	case cfg.OpMul:
		if bothInt && !mulOverflows(xi.V, yi.V) {
			return memory.Int(xi.V * yi.V), true
		}
		return memory.Float(toFloat(x) * toFloat(y)), true
	case cfg.OpDiv:
		if toFloat(y) == 0 {
			return nil, false
		}
		if bothInt && xi.V%yi.V == 0 {
			return memory.Int(xi.V / yi.V), true
		}
		return memory.Float(toFloat(x) / toFloat(y)), true
	case cfg.OpPow:
		p := math.Pow(toFloat(x), toFloat(y))
		if bothInt && yi.V >= 0 && math.Abs(p) < 1<<62 {
			return memory.Int(int64(p)), true
		}
		return memory.Float(p), true
	}
	l, _ := toInt(x)
	r, _ := toInt(y)
	switch op {
	case cfg.OpMod:
		if r == 0 {
			return nil, false
		}
		return memory.Int(l % r), true
	case cfg.OpBitAnd:
		return memory.Int(l & r), true
	case cfg.OpBitOr:
		return memory.Int(l | r), true
	case cfg.OpBitXor:
		return memory.Int(l ^ r), true
	case cfg.OpShl:
		if r < 0 {
			return nil, false
		}
		return memory.Int(l << uint64(r)), true
	case cfg.OpShr:
		if r < 0 {
			return nil, false
		}
		return memory.Int(l >> uint64(r)), true
	}
	return nil, false
}

func isAbstract(v memory.Value) bool {
	_, ok := v.(memory.AnyValue)
	return ok
}

// numberKind returns the kind of v when it is an integer or a float, known or not.
func numberKind(v memory.Value) (memory.ValueKind, bool) {
	switch x := v.(type) {
	case memory.IntValue:
		return memory.KindInt, true
	case memory.FloatValue:
		return memory.KindFloat, true
	case memory.AnyValue:
		if x.Type == memory.KindInt || x.Type == memory.KindFloat {
			return x.Type, true
		}
	}
	return memory.KindAny, false
}

// abstractArithmetic returns the AnyValue of the result kind when both operands are numbers and
// one of them is not known. Integer overflow to float is not tracked for unknown integers.
func abstractArithmetic(op cfg.BinaryOp, a, b memory.Value) (memory.Value, bool) {
	ka, ok1 := numberKind(a)
	kb, ok2 := numberKind(b)
	if !ok1 || !ok2 {
		return nil, false
	}
	switch op {
	case cfg.OpMod, cfg.OpBitAnd, cfg.OpBitOr, cfg.OpBitXor, cfg.OpShl, cfg.OpShr:
		return memory.AnyInt, true
	case cfg.OpAdd, cfg.OpSub, cfg.OpMul:
		if ka == memory.KindInt && kb == memory.KindInt {
			return memory.AnyInt, true
		}
		return memory.AnyFloat, true
	case cfg.OpDiv, cfg.OpPow:
		if ka == memory.KindFloat || kb == memory.KindFloat {
			return memory.AnyFloat, true
		}
	}
	return nil, false
}

func addOverflows(a, b int64) bool {
	s := a + b
	return (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0)
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	p := a * b
	return p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64)
}

func truthEntry(t engine.Truth) memory.MemoryEntry {
	switch t {
	case engine.AlwaysTrue:
		return memory.NewEntry(memory.True)
	case engine.AlwaysFalse:
		return memory.NewEntry(memory.False)
	}
	return memory.NewEntry(memory.True, memory.False)
}

// UnaryOp returns the values of op x.
func (e *Evaluator) UnaryOp(op cfg.UnaryOp, x memory.MemoryEntry) memory.MemoryEntry {
	if op == cfg.OpNot {
		return truthEntry(e.Truthiness(x).Not())
	}
	if x.IsEmpty() {
		return memory.NewEntry(memory.Any)
	}
	return x.Map(func(v memory.Value) memory.Value {
		n, ok := toNumber(v)
		if !ok {
			if op == cfg.OpBitNot {
				return anyOf(memory.KindInt)
			}
			return memory.Any
		}
		switch op {
		case cfg.OpNeg:
			if i, ok := n.(memory.IntValue); ok && i.V != math.MinInt64 {
				return memory.Int(-i.V)
			}
			return memory.Float(-toFloat(n))
		case cfg.OpBitNot:
			i, _ := toInt(n)
			return memory.Int(^i)
		}
		return n
	})
}

// Cast converts the values of x to typ.
func (e *Evaluator) Cast(typ string, x memory.MemoryEntry) memory.MemoryEntry {
	typ = strings.ToLower(typ)
	if x.IsEmpty() {
		return memory.NewEntry(memory.Any)
	}
	return x.Map(func(v memory.Value) memory.Value {
		switch typ {
		case "int", "integer":
			if i, ok := toInt(v); ok {
				return memory.Int(i)
			}
			return anyOf(memory.KindInt)
		case "float", "double", "real":
			if n, ok := toNumber(v); ok {
				return memory.Float(toFloat(n))
			}
			return anyOf(memory.KindFloat)
		case "string":
			if s, ok := toString(v); ok {
				return memory.String(s)
			}
			return anyOf(memory.KindString)
		case "bool", "boolean":
			if b, ok := toBool(v); ok {
				return memory.Bool(b)
			}
			return anyOf(memory.KindBool)
		case "unset":
			return memory.Null
		}
		if v.Kind() == memory.KindArray || v.Kind() == memory.KindObject {
			return v
		}
		return memory.Any
	})
}

// Truthiness returns whether every value of x converts to the same boolean.
func (e *Evaluator) Truthiness(x memory.MemoryEntry) engine.Truth {
	truths := make([]engine.Truth, 0, x.Count())
	for _, v := range x.Values() {
		truths = append(truths, valueTruth(v))
	}
	return combine(truths)
}

func valueTruth(v memory.Value) engine.Truth {
	if b, ok := toBool(v); ok {
		return truthOf(b)
	}
	return engine.Unknown
}

// Compare returns whether left op right holds for every pair of values.
func (e *Evaluator) Compare(op cfg.BinaryOp, left, right memory.MemoryEntry) engine.Truth {
	if left.Count()*right.Count() > e.maxProduct() {
		return engine.Unknown
	}
	var truths []engine.Truth
	for _, a := range left.Values() {
		for _, b := range right.Values() {
			t := comparePair(op, a, b)
			if t == engine.Unknown {
				return t
			}
			truths = append(truths, t)
		}
	}
	return combine(truths)
}

// Assume keeps the values of subject for which cond may hold. An identity test against a single
// constant refines the unknown values of the constant's kind to the constant.
func (e *Evaluator) Assume(cond engine.Condition, subject memory.MemoryEntry) memory.MemoryEntry {
	if cond.Op == "" {
		return subject.Filter(func(v memory.Value) bool {
			t := valueTruth(v)
			return t == engine.Unknown || (t == engine.AlwaysTrue) == cond.Holds
		})
	}
	if cond.Other.IsEmpty() || cond.Other.Count()*subject.Count() > e.maxProduct() {
		return subject
	}
	holds := func(v, o memory.Value) engine.Truth {
		t := comparePair(cond.Op, v, o)
		if !cond.Holds {
			t = t.Not()
		}
		return t
	}
	res := subject.Filter(func(v memory.Value) bool {
		for _, o := range cond.Other.Values() {
			if holds(v, o) != engine.AlwaysFalse {
				return true
			}
		}
		return false
	})
	identity := (cond.Op == cfg.OpIdentical && cond.Holds) || (cond.Op == cfg.OpNotIdent && !cond.Holds)
	if identity && cond.Other.Count() == 1 {
		only := cond.Other.Values()[0]
		res = res.Map(func(v memory.Value) memory.Value {
			if x, ok := v.(memory.AnyValue); ok && (x.Type == memory.KindAny || x.Type == only.Kind()) &&
				isConcrete(only) {
				return only
			}
			return v
		})
	}
	return res
}

// Foreach returns the keys and values an iteration over subject binds.
func (e *Evaluator) Foreach(subject memory.MemoryEntry, keys []string, unknownKeys bool,
	elements memory.MemoryEntry) (memory.MemoryEntry, memory.MemoryEntry) {
	var ks []memory.Value
	for _, k := range keys {
		if i, err := strconv.ParseInt(k, 10, 64); err == nil && strconv.FormatInt(i, 10) == k {
			ks = append(ks, memory.Int(i))
		} else {
			ks = append(ks, memory.String(k))
		}
	}
	values := elements.Without(memory.Undefined)
	nonArray := false
	for _, v := range subject.Values() {
		if v.Kind() != memory.KindArray && v.Kind() != memory.KindObject {
			nonArray = true
		}
	}
	if unknownKeys || nonArray || subject.Contains(memory.Any) {
		ks = append(ks, memory.Any)
	}
	if nonArray {
		values = values.With(memory.Any)
	}
	if values.IsEmpty() {
		values = memory.NewEntry(memory.Null)
	}
	if len(ks) == 0 {
		ks = append(ks, memory.Null)
	}
	return memory.NewEntry(ks...), values
}

// NativeCall applies the model of a native function.
func (e *Evaluator) NativeCall(name string, args []memory.MemoryEntry) (memory.MemoryEntry, bool) {
	f, ok := e.Natives[strings.ToLower(strings.TrimPrefix(name, "\\"))]
	if !ok {
		if e.logger != nil {
			e.logger.Tracef("no model for native function %s", name)
		}
		return memory.MemoryEntry{}, false
	}
	return f(e, args), true
}

// Echo records the printed values.
func (e *Evaluator) Echo(args []memory.MemoryEntry) {
	e.Printed = append(e.Printed, args...)
	if e.logger != nil && e.logger.LogsTrace() {
		e.logger.Tracef("echo %v", args)
	}
}

// ArrayKey returns the element names a key converts to: integers and integer strings name the
// same element, booleans and floats are truncated to integers and null is the empty string.
func (e *Evaluator) ArrayKey(key memory.MemoryEntry) memory.Segment {
	var names []string
	for _, v := range key.Values() {
		switch x := v.(type) {
		case memory.UndefinedValue, memory.NullValue:
			names = append(names, "")
		case memory.BoolValue, memory.IntValue, memory.FloatValue:
			i, _ := toInt(x)
			names = append(names, strconv.FormatInt(i, 10))
		case memory.StringValue:
			names = append(names, x.V)
		default:
			return memory.AnySegment()
		}
	}
	if len(names) == 0 {
		return memory.AnySegment()
	}
	return memory.Names(names...)
}
