// Fusion
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package types contains the value types of the language, and the auto cast
// that the runtime applies to every evaluated value.
package types

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Kind represents the base type of a value.
type Kind int

// The list of kinds in the language.
const (
	KindNil Kind = iota
	KindBool
	KindStr
	KindInt
	KindFloat
	KindList
	KindMap
	KindAny
)

// Type is the datastructure representing a value type.
type Type struct {
	Kind Kind
}

// Basic types defined here as a convenience for use with Type.Cmp(X).
var (
	TypeNil   = &Type{Kind: KindNil}
	TypeBool  = &Type{Kind: KindBool}
	TypeStr   = &Type{Kind: KindStr}
	TypeInt   = &Type{Kind: KindInt}
	TypeFloat = &Type{Kind: KindFloat}
	TypeList  = &Type{Kind: KindList}
	TypeMap   = &Type{Kind: KindMap}
	TypeAny   = &Type{Kind: KindAny}
)

// NewType parses a type name such as `str` or `int`. It returns nil if the
// name is unknown.
func NewType(s string) *Type {
	switch strings.TrimSpace(s) {
	case "nil", "null":
		return TypeNil
	case "bool":
		return TypeBool
	case "str", "string":
		return TypeStr
	case "int":
		return TypeInt
	case "float":
		return TypeFloat
	case "list":
		return TypeList
	case "map":
		return TypeMap
	case "any", "":
		return TypeAny
	}
	return nil
}

// String returns the name of the type.
func (obj *Type) String() string {
	if obj == nil {
		return "any"
	}
	switch obj.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindAny:
		return "any"
	}
	return fmt.Sprintf("unknown(%d)", obj.Kind)
}

// Cmp compares this type to another one, and returns an error if they differ.
func (obj *Type) Cmp(typ *Type) error {
	if obj == nil || typ == nil {
		return fmt.Errorf("cannot compare to nil")
	}
	if obj.Kind != typ.Kind {
		return fmt.Errorf("base kind does not match (%s != %s)", obj, typ)
	}
	return nil
}

// TypeOf returns the type of a value. Unknown go types are reported as any.
func TypeOf(v interface{}) *Type {
	if v == nil {
		return TypeNil
	}
	switch v.(type) {
	case bool:
		return TypeBool
	case string:
		return TypeStr
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return TypeInt
	case float32, float64:
		return TypeFloat
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return TypeList
	case reflect.Map:
		return TypeMap
	}
	return TypeAny
}

// Cast maps a value to the requested type. The nil and any types accept every
// value, and nil passes through unchanged. Integers widen to floats, and every
// value can be turned into a string. Anything else fails with a *CastError.
func Cast(v interface{}, typ *Type) (interface{}, error) {
	if typ == nil || typ.Kind == KindAny || v == nil {
		return v, nil
	}
	from := TypeOf(v)

	switch typ.Kind {
	case KindStr:
		return ToString(v), nil

	case KindInt:
		if from.Kind == KindInt {
			return toInt64(v), nil
		}

	case KindFloat:
		switch from.Kind {
		case KindFloat:
			return reflect.ValueOf(v).Float(), nil
		case KindInt:
			return float64(toInt64(v)), nil
		}

	default:
		if from.Kind == typ.Kind {
			return v, nil
		}
	}
	return nil, &CastError{From: from, To: typ}
}

// ToString is the textual form of a value that the cast to str uses.
func ToString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}
	if TypeOf(v).Kind == KindInt {
		return strconv.FormatInt(toInt64(v), 10)
	}
	return fmt.Sprintf("%v", v)
}

func toInt64(v interface{}) int64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(rv.Uint())
	}
	return rv.Int()
}

// CastError is returned when a value can't be cast to the requested type.
type CastError struct {
	From *Type
	To   *Type
}

// Error returns the error message, which names both types.
func (obj *CastError) Error() string {
	return fmt.Sprintf("can't cast a value of type %s to type %s", obj.From, obj.To)
}
