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
	"regexp"
	"strconv"
	"strings"

	"github.com/awslabs/ar-php-tools/analysis/engine"
	"github.com/awslabs/ar-php-tools/analysis/memory"
)

// isConcrete returns true for the values whose conversions are known.
func isConcrete(v memory.Value) bool {
	switch v.(type) {
	case memory.UndefinedValue, memory.NullValue, memory.BoolValue, memory.IntValue,
		memory.FloatValue, memory.StringValue:
		return true
	}
	return false
}

// numericString parses s as a PHP numeric string: optional surrounding whitespace, an optional
// sign, digits with an optional fraction and exponent.
func numericString(s string) (memory.Value, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, false
	}
	digits, dot, exp := 0, false, false
	for i, c := range t {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case (c == '+' || c == '-') && (i == 0 || t[i-1] == 'e' || t[i-1] == 'E'):
		case c == '.' && !dot && !exp:
			dot = true
		case (c == 'e' || c == 'E') && !exp && digits > 0:
			exp = true
		default:
			return nil, false
		}
	}
	if digits == 0 {
		return nil, false
	}
	if !dot && !exp {
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return memory.IntValue{V: i}, true
		}
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !math.IsInf(f, 0) {
		return nil, false
	}
	return memory.FloatValue{V: f}, true
}

// toBool converts a concrete value; ok is false when the result depends on unknown data.
func toBool(v memory.Value) (b bool, ok bool) {
	switch x := v.(type) {
	case memory.UndefinedValue, memory.NullValue:
		return false, true
	case memory.BoolValue:
		return x.V, true
	case memory.IntValue:
		return x.V != 0, true
	case memory.FloatValue:
		return x.V != 0, true
	case memory.StringValue:
		return x.V != "" && x.V != "0", true
	case memory.ObjectValue:
		return true, true
	}
	return false, false
}

// toNumber converts a concrete value to an int or float value. Non-numeric strings convert to 0,
// like their leading numeric prefix would.
func toNumber(v memory.Value) (memory.Value, bool) {
	switch x := v.(type) {
	case memory.UndefinedValue, memory.NullValue:
		return memory.IntValue{V: 0}, true
	case memory.BoolValue:
		if x.V {
			return memory.IntValue{V: 1}, true
		}
		return memory.IntValue{V: 0}, true
	case memory.IntValue, memory.FloatValue:
		return x, true
	case memory.StringValue:
		if n, ok := numericString(x.V); ok {
			return n, true
		}
		return leadingNumber(x.V), true
	}
	return nil, false
}

var leading = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// leadingNumber returns the number a leading-numeric string such as "12abc" converts to.
func leadingNumber(s string) memory.Value {
	if n, ok := numericString(leading.FindString(s)); ok {
		return n
	}
	return memory.IntValue{V: 0}
}

func toFloat(v memory.Value) float64 {
	switch x := v.(type) {
	case memory.IntValue:
		return float64(x.V)
	case memory.FloatValue:
		return x.V
	}
	return 0
}

func toInt(v memory.Value) (int64, bool) {
	n, ok := toNumber(v)
	if !ok {
		return 0, false
	}
	switch x := n.(type) {
	case memory.IntValue:
		return x.V, true
	case memory.FloatValue:
		if math.IsNaN(x.V) || math.IsInf(x.V, 0) {
			return 0, true
		}
		return int64(x.V), true
	}
	return 0, false
}

// formatFloat prints f the way PHP does with the default precision.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NAN"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'G', 14, 64)
	if strings.Contains(s, "E") {
		mant, exp, _ := strings.Cut(s, "E")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		return mant + "E" + exp
	}
	return s
}

// toString converts a concrete value.
func toString(v memory.Value) (string, bool) {
	switch x := v.(type) {
	case memory.UndefinedValue, memory.NullValue:
		return "", true
	case memory.BoolValue:
		if x.V {
			return "1", true
		}
		return "", true
	case memory.IntValue:
		return strconv.FormatInt(x.V, 10), true
	case memory.FloatValue:
		return formatFloat(x.V), true
	case memory.StringValue:
		return x.V, true
	case memory.ArrayValue:
		return "Array", true
	}
	return "", false
}

// anyOf returns the unknown value of kind k.
func anyOf(k memory.ValueKind) memory.Value {
	return memory.AnyValue{Type: k}
}

func truthOf(b bool) engine.Truth {
	if b {
		return engine.AlwaysTrue
	}
	return engine.AlwaysFalse
}
