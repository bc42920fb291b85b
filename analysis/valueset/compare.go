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
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/cfg"
	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
)

func sign[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func normalize(v memory.Value) memory.Value {
	if v == memory.Undefined {
		return memory.Null
	}
	return v
}

// compareNumbers compares two int or float values.
func compareNumbers(a, b memory.Value) int {
	ai, aInt := a.(memory.IntValue)
	bi, bInt := b.(memory.IntValue)
	if aInt && bInt {
		return sign(ai.V, bi.V)
	}
	return sign(toFloat(a), toFloat(b))
}

func isNumber(v memory.Value) bool {
	switch v.(type) {
	case memory.IntValue, memory.FloatValue:
		return true
	}
	return false
}

// compare returns the loose comparison of a and b as -1, 0 or 1. ok is false when the result
// depends on unknown data.
func compare(a, b memory.Value) (res int, ok bool) {
	a, b = normalize(a), normalize(b)
	if !isConcrete(a) || !isConcrete(b) {
		return 0, false
	}
	as, aStr := a.(memory.StringValue)
	bs, bStr := b.(memory.StringValue)
	switch {
	case a == memory.Null && b == memory.Null:
		return 0, true
	case a == memory.Null && bStr:
		return strings.Compare("", bs.V), true
	case aStr && b == memory.Null:
		return strings.Compare(as.V, ""), true
	case a.Kind() == memory.KindBool || b.Kind() == memory.KindBool ||
		a == memory.Null || b == memory.Null:
		x, _ := toBool(a)
		y, _ := toBool(b)
		return sign(boolInt(x), boolInt(y)), true
	case isNumber(a) && isNumber(b):
		return compareNumbers(a, b), true
	case aStr && bStr:
		an, aNum := numericString(as.V)
		bn, bNum := numericString(bs.V)
		if aNum && bNum {
			return compareNumbers(an, bn), true
		}
		return sign(strings.Compare(as.V, bs.V), 0), true
	case aStr:
		if an, ok := numericString(as.V); ok {
			return compareNumbers(an, b), true
		}
		bstr, _ := toString(b)
		return sign(strings.Compare(as.V, bstr), 0), true
	case bStr:
		res, ok := compare(b, a)
		return -res, ok
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// identical returns whether a === b.
func identical(a, b memory.Value) engine.Truth {
	a, b = normalize(a), normalize(b)
	if x, ok := a.(memory.AnyValue); ok {
		if x.Type != memory.KindAny && isConcrete(b) && b.Kind() != x.Type {
			return engine.AlwaysFalse
		}
		return engine.Unknown
	}
	if _, ok := b.(memory.AnyValue); ok {
		return identical(b, a)
	}
	if a.Kind() != b.Kind() {
		return engine.AlwaysFalse
	}
	switch x := a.(type) {
	case memory.ObjectValue:
		if x.ID != b.(memory.ObjectValue).ID {
			return engine.AlwaysFalse
		}
		return engine.Unknown
	case memory.ArrayValue:
		return engine.Unknown
	}
	return truthOf(a == b)
}

// comparePair returns the truth of a op b.
func comparePair(op cfg.BinaryOp, a, b memory.Value) engine.Truth {
	switch op {
	case cfg.OpIdentical:
		return identical(a, b)
	case cfg.OpNotIdent:
		return identical(a, b).Not()
	}
	c, ok := compare(a, b)
	if !ok {
		return engine.Unknown
	}
	switch op {
	case cfg.OpEq:
		return truthOf(c == 0)
	case cfg.OpNotEq:
		return truthOf(c != 0)
	case cfg.OpLess:
		return truthOf(c < 0)
	case cfg.OpLessEq:
		return truthOf(c <= 0)
	case cfg.OpGreater:
		return truthOf(c > 0)
	case cfg.OpGreaterEq:
		return truthOf(c >= 0)
	}
	return engine.Unknown
}

// combine folds the truths of the possible cases: a condition is proved only when every case
// proves it the same way.
func combine(truths []engine.Truth) engine.Truth {
	if len(truths) == 0 {
		return engine.Unknown
	}
	res := truths[0]
	for _, t := range truths[1:] {
		if t != res {
			return engine.Unknown
		}
	}
	return res
}
