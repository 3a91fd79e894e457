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

//go:build !root

package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fusionlang/fusion/util"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

func TestCast0(t *testing.T) {
	type test struct { // an individual test
		name  string
		value interface{}
		typ   *Type
		fail  bool
		exp   interface{}
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name:  "int to str",
			value: int64(42),
			typ:   TypeStr,
			exp:   "42",
		})
	}
	{
		testCases = append(testCases, test{
			name:  "plain int to str",
			value: -7,
			typ:   TypeStr,
			exp:   "-7",
		})
	}
	{
		testCases = append(testCases, test{
			name:  "float to str",
			value: 1.5,
			typ:   TypeStr,
			exp:   "1.5",
		})
	}
	{
		testCases = append(testCases, test{
			name:  "bool to str",
			value: true,
			typ:   TypeStr,
			exp:   "true",
		})
	}
	{
		testCases = append(testCases, test{
			name:  "map to str",
			value: map[string]interface{}{"b": 2, "a": 1},
			typ:   TypeStr,
			exp:   "map[a:1 b:2]",
		})
	}
	{
		testCases = append(testCases, test{
			name:  "nil passes",
			value: nil,
			typ:   TypeInt,
			exp:   nil,
		})
	}
	{
		testCases = append(testCases, test{
			name:  "int widens",
			value: 3,
			typ:   TypeFloat,
			exp:   float64(3),
		})
	}
	{
		testCases = append(testCases, test{
			name:  "int is normalized",
			value: int32(3),
			typ:   TypeInt,
			exp:   int64(3),
		})
	}
	{
		testCases = append(testCases, test{
			name:  "any passes",
			value: []interface{}{1, "a"},
			typ:   TypeAny,
			exp:   []interface{}{1, "a"},
		})
	}
	{
		testCases = append(testCases, test{
			name:  "list is a list",
			value: []string{"a"},
			typ:   TypeList,
			exp:   []string{"a"},
		})
	}
	{
		testCases = append(testCases, test{
			name:  "map to int",
			value: map[string]interface{}{"a": 1},
			typ:   TypeInt,
			fail:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name:  "str to bool",
			value: "true",
			typ:   TypeBool,
			fail:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name:  "float to int",
			value: 1.5,
			typ:   TypeInt,
			fail:  true,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			value, typ, fail, exp := tc.value, tc.typ, tc.fail, tc.exp

			out, err := Cast(value, typ)
			if !fail && err != nil {
				t.Errorf("test #%d: cast failed with: %+v", index, err)
				return
			}
			if fail && err == nil {
				t.Errorf("test #%d: cast passed, expected fail", index)
				t.Logf("test #%d: out: %s", index, spew.Sdump(out))
				return
			}
			if fail {
				return
			}
			if !assert.Equal(t, exp, out) {
				t.Logf("test #%d: out: %s", index, spew.Sdump(out))
			}
		})
	}
}

func TestCastErrorNamesTypes0(t *testing.T) {
	_, err := Cast(map[string]interface{}{}, TypeInt)
	castErr, ok := err.(*CastError)
	if !ok {
		t.Errorf("expected a *CastError, got: %T", err)
		return
	}
	assert.Equal(t, TypeMap, castErr.From)
	assert.Equal(t, TypeInt, castErr.To)
	assert.True(t, strings.Contains(err.Error(), "map"))
	assert.True(t, strings.Contains(err.Error(), "int"))
}

func TestNewType0(t *testing.T) {
	for _, typ := range []*Type{TypeNil, TypeBool, TypeStr, TypeInt, TypeFloat, TypeList, TypeMap, TypeAny} {
		if err := NewType(typ.String()).Cmp(typ); err != nil {
			t.Errorf("type %s does not round trip: %+v", typ, err)
		}
	}
	assert.Nil(t, NewType("struct"))
	assert.Equal(t, TypeStr, NewType("string"))
}

func TestTypeOf0(t *testing.T) {
	assert.Equal(t, TypeNil, TypeOf(nil))
	assert.Equal(t, TypeInt, TypeOf(uint8(1)))
	assert.Equal(t, TypeMap, TypeOf(map[string]string{}))
	assert.Equal(t, TypeAny, TypeOf(struct{}{}))
}
