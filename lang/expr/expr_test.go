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

package expr

import (
	"fmt"
	"testing"

	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/lazy"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/hil"
	hilast "github.com/hashicorp/hil/ast"
	"github.com/stretchr/testify/assert"
)

// resolver is a resolver which records what it was asked for.
type resolver struct {
	values map[string]interface{}
	asked  []string
}

func (obj *resolver) Resolve(name string) (interface{}, bool, error) {
	obj.asked = append(obj.asked, name)
	v, exists := obj.values[name]
	return v, exists, nil
}

func TestEvaluate0(t *testing.T) {
	path := pathname.MustParseAbsolute("/test")
	this := &resolver{values: map[string]interface{}{"title": "hello"}}
	ctx := layers.Empty().Push(layers.LayerOf("test", map[string]interface{}{
		"name":  "world",
		"count": int64(41),
		"pi":    1.5,
		"lazy":  lazy.Of(path, int64(1)),
		"gone":  lazy.Cancelled(path, "test"),
		"list":  []interface{}{"a", "b"},
		"props": map[string]interface{}{"x": map[string]interface{}{"y": "deep"}},
		"this":  this,
	}))

	type test struct { // an individual test
		name string
		code string
		fail bool
		exp  interface{}
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "string variable",
			code: "${name}",
			exp:  "world",
		})
	}
	{
		testCases = append(testCases, test{
			name: "template",
			code: "hello ${name}!",
			exp:  "hello world!",
		})
	}
	{
		testCases = append(testCases, test{
			name: "arithmetic",
			code: "${count + 1}",
			exp:  int64(42),
		})
	}
	{
		testCases = append(testCases, test{
			name: "literal arithmetic",
			code: "${40 + 2}",
			exp:  int64(42),
		})
	}
	{
		testCases = append(testCases, test{
			name: "false comparison",
			code: "${1 == 2}",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "true comparison",
			code: "${count > 40}",
			exp:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "int variable",
			code: "${count}",
			exp:  int64(41),
		})
	}
	{
		testCases = append(testCases, test{
			name: "float variable",
			code: "${pi}",
			exp:  1.5,
		})
	}
	{
		testCases = append(testCases, test{
			name: "numeric looking string",
			code: "${upper(\"42\")}",
			exp:  "42",
		})
	}
	{
		testCases = append(testCases, test{
			name: "lazy variable",
			code: "${lazy + 1}",
			exp:  int64(2),
		})
	}
	{
		testCases = append(testCases, test{
			name: "cancelled variable",
			code: "${gone}",
			exp:  nil,
		})
	}
	{
		testCases = append(testCases, test{
			name: "missing variable",
			code: "${missing}",
			exp:  nil,
		})
	}
	{
		testCases = append(testCases, test{
			name: "function",
			code: "${upper(name)}",
			exp:  "WORLD",
		})
	}
	{
		testCases = append(testCases, test{
			name: "length",
			code: "${length(name)}",
			exp:  int64(5),
		})
	}
	{
		testCases = append(testCases, test{
			name: "resolver",
			code: "${lower(this.title)}",
			exp:  "hello",
		})
	}
	{
		testCases = append(testCases, test{
			name: "nested maps",
			code: "${props.x.y}",
			exp:  "deep",
		})
	}
	{
		testCases = append(testCases, test{
			name: "list",
			code: "${list}",
			exp:  []interface{}{"a", "b"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "parse error",
			code: "${",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "unknown function",
			code: "${nope(name)}",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "resolver without a name",
			code: "${this}",
			fail: true,
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
			code, fail, exp := tc.code, tc.fail, tc.exp

			evaluator := &Evaluator{
				Debug: testing.Verbose(),
				Logf: func(format string, v ...interface{}) {
					t.Logf("expr: "+format, v...)
				},
			}
			out, err := evaluator.Evaluate(code, ctx)
			if !fail && err != nil {
				t.Errorf("test #%d: evaluate failed with: %+v", index, err)
				return
			}
			if fail && err == nil {
				t.Errorf("test #%d: evaluate passed, expected fail", index)
				t.Logf("test #%d: out: %s", index, spew.Sdump(out))
				return
			}
			if fail {
				t.Logf("test #%d: error: %+v", index, err)
				return
			}
			if !assert.Equal(t, exp, out) {
				t.Logf("test #%d: out: %s", index, spew.Sdump(out))
			}
		})
	}

	// only the referenced names are resolved
	assert.Equal(t, []string{"title"}, this.asked)
}

func TestVariables0(t *testing.T) {
	tree, err := hil.Parse("${upper(a)} ${b.c} ${a}")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"a", "b.c"}, Variables(tree))
}

func TestExtraFunctions0(t *testing.T) {
	evaluator := &Evaluator{}
	evaluator.Functions = map[string]hilast.Function{
		"answer": {
			ReturnType: hilast.TypeInt,
			Callback: func([]interface{}) (interface{}, error) {
				return 42, nil
			},
		},
	}
	out, err := evaluator.Evaluate("${answer()}", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out)
}
