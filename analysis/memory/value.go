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
)

// ValueKind is the tag of a Value.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindAny
	KindArray
	KindObject
	KindAlias
	KindInfo
)

func (k ValueKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindAny:
		return "any"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindAlias:
		return "alias"
	case KindInfo:
		return "info"
	}
	return "invalid"
}

// IsScalar returns true for the kinds an AnyValue may be restricted to.
func (k ValueKind) IsScalar() bool {
	switch k {
	case KindNull, KindBool, KindInt, KindFloat, KindString:
		return true
	}
	return false
}

// Value is a storable abstract value. The set of implementations is closed.
type Value interface {
	Kind() ValueKind
	String() string
	isValue()
}

// UndefinedValue is the value of a location that may not have been written.
type UndefinedValue struct{}

// NullValue is the null constant.
type NullValue struct{}

// AnyValue is the top of the value lattice, optionally restricted to one scalar kind.
// Type is KindAny for the unrestricted value.
type AnyValue struct {
	Type ValueKind
}

// BoolValue is a boolean constant.
type BoolValue struct{ V bool }

// IntValue is an integer constant.
type IntValue struct{ V int64 }

// FloatValue is a floating point constant.
type FloatValue struct{ V float64 }

// StringValue is a string constant.
type StringValue struct{ V string }

// ArrayValue is a handle to an array. The elements live under the child indexes of Owner.
type ArrayValue struct {
	Owner MemoryIndex
}

// ObjectValue is a handle to an abstract object. The fields live under the ObjectIndex rooted at ID.
type ObjectValue struct {
	ID    ObjectID
	Class string
}

// AliasValue is the token produced by CreateAlias. It is consumed by assignments that create
// references and is never stored in a MemoryEntry.
type AliasValue struct {
	Must []MemoryIndex
	May  []MemoryIndex
}

// InfoValue is a flag of the info layer, such as a taint mark with the place it originates from.
type InfoValue struct {
	Flag   string
	Origin string
}

func (UndefinedValue) Kind() ValueKind { return KindUndefined }
func (NullValue) Kind() ValueKind      { return KindNull }
func (AnyValue) Kind() ValueKind       { return KindAny }
func (BoolValue) Kind() ValueKind      { return KindBool }
func (IntValue) Kind() ValueKind       { return KindInt }
func (FloatValue) Kind() ValueKind     { return KindFloat }
func (StringValue) Kind() ValueKind    { return KindString }
func (ArrayValue) Kind() ValueKind     { return KindArray }
func (ObjectValue) Kind() ValueKind    { return KindObject }
func (*AliasValue) Kind() ValueKind    { return KindAlias }
func (InfoValue) Kind() ValueKind      { return KindInfo }

func (UndefinedValue) String() string { return "undefined" }
func (NullValue) String() string      { return "null" }
func (v AnyValue) String() string {
	if v.Type == KindAny {
		return "any"
	}
	return "any " + v.Type.String()
}
func (v BoolValue) String() string   { return strconv.FormatBool(v.V) }
func (v IntValue) String() string    { return strconv.FormatInt(v.V, 10) }
func (v FloatValue) String() string  { return strconv.FormatFloat(v.V, 'g', -1, 64) }
func (v StringValue) String() string { return strconv.Quote(v.V) }
func (v ArrayValue) String() string  { return "array(" + v.Owner.String() + ")" }
func (v ObjectValue) String() string { return fmt.Sprintf("object(%s:%s)", v.Class, v.ID) }
func (v *AliasValue) String() string { return fmt.Sprintf("alias(must=%v may=%v)", v.Must, v.May) }
func (v InfoValue) String() string {
	if v.Origin == "" {
		return v.Flag
	}
	return v.Flag + "@" + v.Origin
}

func (UndefinedValue) isValue() {}
func (NullValue) isValue()      {}
func (AnyValue) isValue()       {}
func (BoolValue) isValue()      {}
func (IntValue) isValue()       {}
func (FloatValue) isValue()     {}
func (StringValue) isValue()    {}
func (ArrayValue) isValue()     {}
func (ObjectValue) isValue()    {}
func (*AliasValue) isValue()    {}
func (InfoValue) isValue()      {}

// Process-wide constants.
var (
	Undefined Value = UndefinedValue{}
	Null      Value = NullValue{}
	Any       Value = AnyValue{Type: KindAny}
	AnyString Value = AnyValue{Type: KindString}
	AnyInt    Value = AnyValue{Type: KindInt}
	AnyFloat  Value = AnyValue{Type: KindFloat}
	AnyBool   Value = AnyValue{Type: KindBool}
	True      Value = BoolValue{V: true}
	False     Value = BoolValue{V: false}
)

// String returns the StringValue s.
func String(s string) Value { return StringValue{V: s} }

// Int returns the IntValue i.
func Int(i int64) Value { return IntValue{V: i} }

// Float returns the FloatValue f.
func Float(f float64) Value { return FloatValue{V: f} }

// Bool returns the BoolValue b.
func Bool(b bool) Value { return BoolValue{V: b} }

// scalarKind returns the kind an AnyValue restricted to the kind of v would have, or KindAny when
// v is not a scalar.
func scalarKind(v Value) ValueKind {
	if a, ok := v.(AnyValue); ok {
		return a.Type
	}
	if v.Kind().IsScalar() {
		return v.Kind()
	}
	return KindAny
}

// compareValues orders values deterministically: by kind first, then by content.
func compareValues(a, b Value) int {
	if a.Kind() != b.Kind() {
		return int(a.Kind()) - int(b.Kind())
	}
	switch x := a.(type) {
	case AnyValue:
		return int(x.Type) - int(b.(AnyValue).Type)
	case BoolValue:
		y := b.(BoolValue)
		switch {
		case x.V == y.V:
			return 0
		case !x.V:
			return -1
		}
		return 1
	case IntValue:
		y := b.(IntValue)
		switch {
		case x.V < y.V:
			return -1
		case x.V > y.V:
			return 1
		}
		return 0
	case FloatValue:
		y := b.(FloatValue)
		switch {
		case x.V < y.V:
			return -1
		case x.V > y.V:
			return 1
		}
		return 0
	case StringValue:
		y := b.(StringValue)
		switch {
		case x.V < y.V:
			return -1
		case x.V > y.V:
			return 1
		}
		return 0
	case ArrayValue:
		return compareIndex(x.Owner, b.(ArrayValue).Owner)
	case ObjectValue:
		y := b.(ObjectValue)
		if x.ID != y.ID {
			if x.ID < y.ID {
				return -1
			}
			return 1
		}
		switch {
		case x.Class < y.Class:
			return -1
		case x.Class > y.Class:
			return 1
		}
		return 0
	case InfoValue:
		y := b.(InfoValue)
		if x.Flag != y.Flag {
			if x.Flag < y.Flag {
				return -1
			}
			return 1
		}
		switch {
		case x.Origin < y.Origin:
			return -1
		case x.Origin > y.Origin:
			return 1
		}
		return 0
	}
	return 0
}
