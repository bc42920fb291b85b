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
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/awslabs/ar-php-tools/analysis/memory"
)

// NativeFunc models a function without declaration. args has one entry per argument.
type NativeFunc func(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#039;")

// StandardNatives returns the models of the common string and type functions.
func StandardNatives() map[string]NativeFunc {
	natives := map[string]NativeFunc{
		"strlen":           stringToInt(func(s string) int64 { return int64(len(s)) }),
		"strtolower":       stringFunc(strings.ToLower),
		"strtoupper":       stringFunc(strings.ToUpper),
		"trim":             stringFunc(func(s string) string { return strings.Trim(s, " \t\n\r\x00\x0B") }),
		"ltrim":            stringFunc(func(s string) string { return strings.TrimLeft(s, " \t\n\r\x00\x0B") }),
		"rtrim":            stringFunc(func(s string) string { return strings.TrimRight(s, " \t\n\r\x00\x0B") }),
		"ucfirst":          stringFunc(ucfirst),
		"htmlspecialchars": stringFunc(htmlEscaper.Replace),
		"htmlentities":     stringFunc(htmlEscaper.Replace),
		"addslashes":       stringFunc(addslashes),
		"md5":              stringFunc(func(s string) string { h := md5.Sum([]byte(s)); return hex.EncodeToString(h[:]) }),
		"sha1":             stringFunc(func(s string) string { h := sha1.Sum([]byte(s)); return hex.EncodeToString(h[:]) }),
		"strval":           stringFunc(func(s string) string { return s }),
		"intval":           convert("int"),
		"floatval":         convert("float"),
		"boolval":          convert("bool"),
		"str_repeat":       strRepeat,
		"str_replace":      strReplace,
		"is_string":        kindTest(memory.KindString),
		"is_int":           kindTest(memory.KindInt),
		"is_integer":       kindTest(memory.KindInt),
		"is_float":         kindTest(memory.KindFloat),
		"is_bool":          kindTest(memory.KindBool),
		"is_null":          kindTest(memory.KindNull),
		"is_array":         kindTest(memory.KindArray),
		"is_object":        kindTest(memory.KindObject),
		"is_numeric":       isNumeric,
		"abs":              abs,
		"count":            constant(anyOf(memory.KindInt)),
		"time":             constant(anyOf(memory.KindInt)),
		"rand":             constant(anyOf(memory.KindInt)),
		"mt_rand":          constant(anyOf(memory.KindInt)),
		"printf":           constant(anyOf(memory.KindInt)),
		"sprintf":          constant(anyOf(memory.KindString)),
		"implode":          constant(anyOf(memory.KindString)),
		"json_encode":      constant(anyOf(memory.KindString)),
		"in_array":         constant(anyOf(memory.KindBool)),
		"array_key_exists": constant(anyOf(memory.KindBool)),
		"var_dump":         constant(memory.Null),
		"print":            constant(memory.Int(1)),
	}
	return natives
}

func constant(v memory.Value) NativeFunc {
	return func(*Evaluator, []memory.MemoryEntry) memory.MemoryEntry { return memory.NewEntry(v) }
}

func arg(args []memory.MemoryEntry, i int) memory.MemoryEntry {
	if i < len(args) && !args[i].IsEmpty() {
		return args[i]
	}
	return memory.NewEntry(memory.Null)
}

// stringFunc lifts a function of the string conversion of the first argument.
func stringFunc(f func(string) string) NativeFunc {
	return func(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
		return arg(args, 0).Map(func(v memory.Value) memory.Value {
			if s, ok := toString(v); ok {
				return memory.String(f(s))
			}
			return anyOf(memory.KindString)
		})
	}
}

func stringToInt(f func(string) int64) NativeFunc {
	return func(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
		return arg(args, 0).Map(func(v memory.Value) memory.Value {
			if s, ok := toString(v); ok {
				return memory.Int(f(s))
			}
			return anyOf(memory.KindInt)
		})
	}
}

func convert(typ string) NativeFunc {
	return func(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
		return e.Cast(typ, arg(args, 0))
	}
}

func kindTest(k memory.ValueKind) NativeFunc {
	return func(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
		return arg(args, 0).Map(func(v memory.Value) memory.Value {
			kind := v.Kind()
			if kind == memory.KindUndefined {
				kind = memory.KindNull
			}
			if x, ok := v.(memory.AnyValue); ok {
				if x.Type == memory.KindAny || x.Type == k {
					return anyOf(memory.KindBool)
				}
				return memory.False
			}
			return memory.Bool(kind == k)
		})
	}
}

func isNumeric(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
	return arg(args, 0).Map(func(v memory.Value) memory.Value {
		switch x := v.(type) {
		case memory.IntValue, memory.FloatValue:
			return memory.True
		case memory.StringValue:
			_, ok := numericString(x.V)
			return memory.Bool(ok)
		case memory.AnyValue:
			return anyOf(memory.KindBool)
		}
		return memory.False
	})
}

func abs(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
	return arg(args, 0).Map(func(v memory.Value) memory.Value {
		n, ok := toNumber(v)
		if !ok {
			return memory.Any
		}
		if i, ok := n.(memory.IntValue); ok && i.V != math.MinInt64 {
			if i.V < 0 {
				return memory.Int(-i.V)
			}
			return i
		}
		return memory.Float(math.Abs(toFloat(n)))
	})
}

func strRepeat(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
	return e.pairs(arg(args, 0), arg(args, 1), memory.KindString, func(a, b memory.Value) (memory.Value, bool) {
		s, ok1 := toString(a)
		n, ok2 := toInt(b)
		if !ok1 || !ok2 || n < 0 || int64(len(s))*n > 1<<16 {
			return nil, false
		}
		return memory.String(strings.Repeat(s, int(n))), true
	})
}

// strReplace models str_replace on scalar search, replacement and subject.
func strReplace(e *Evaluator, args []memory.MemoryEntry) memory.MemoryEntry {
	search, replace, subject := arg(args, 0), arg(args, 1), arg(args, 2)
	if search.Count()*replace.Count()*subject.Count() > e.maxProduct() {
		return memory.NewEntry(anyOf(memory.KindString))
	}
	var res []memory.Value
	for _, s := range search.Values() {
		for _, r := range replace.Values() {
			for _, x := range subject.Values() {
				ss, ok1 := toString(s)
				rs, ok2 := toString(r)
				xs, ok3 := toString(x)
				if !ok1 || !ok2 || !ok3 || s.Kind() == memory.KindArray || x.Kind() == memory.KindArray {
					res = append(res, memory.Any)
					continue
				}
				if ss == "" {
					res = append(res, memory.String(xs))
					continue
				}
				res = append(res, memory.String(strings.ReplaceAll(xs, ss, rs)))
			}
		}
	}
	return memory.NewEntry(res...)
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || r > unicode.MaxASCII {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func addslashes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'', '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(s[i])
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
