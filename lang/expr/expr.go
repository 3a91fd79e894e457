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

// Package expr is the expression evaluator of the language. It uses the hil
// interpolation language for expressions such as `${upper(this.title)}`, and it
// materializes only the variables that an expression actually references, out
// of the context layers it is evaluated in.
package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/lazy"
	"github.com/fusionlang/fusion/util/errwrap"

	"github.com/hashicorp/hil"
	hilast "github.com/hashicorp/hil/ast"
)

// Evaluator evaluates hil expressions. It is safe for concurrent use.
type Evaluator struct {
	// Functions are added to the built-in functions, and override them.
	Functions map[string]hilast.Function

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Evaluate parses and evaluates an expression in a context. Null values are
// unknown values in hil, and an unknown result is returned as nil.
func (obj *Evaluator) Evaluate(code string, ctx *layers.Context) (interface{}, error) {
	tree, err := hil.Parse(code)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't parse expression `%s`", code)
	}

	scope := &hilast.BasicScope{
		VarMap:  make(map[string]hilast.Variable),
		FuncMap: obj.functions(),
	}
	for _, name := range Variables(tree) {
		value, err := Resolve(ctx, name)
		if err != nil {
			return nil, errwrap.Wrapf(err, "can't resolve `%s`", name)
		}
		variable, err := ToVariable(value)
		if err != nil {
			return nil, errwrap.Wrapf(err, "can't use `%s` in an expression", name)
		}
		scope.VarMap[name] = variable
	}
	if obj.Debug && obj.Logf != nil {
		obj.Logf("evaluating `%s` with variables: %v", code, Variables(tree))
	}

	// the type check of Eval rewrites the tree with string conversions
	static := staticType(tree, scope)
	result, err := hil.Eval(tree, &hil.EvalConfig{
		GlobalScope: scope,
	})
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't evaluate expression `%s`", code)
	}

	switch result.Type {
	case hil.TypeUnknown:
		return nil, nil
	case hil.TypeString:
		s, ok := result.Value.(string)
		if !ok {
			return result.Value, nil
		}
		return restore(s, static), nil
	}
	return result.Value, nil
}

// Variables returns the names of every variable that an expression references,
// in the order they appear.
func Variables(tree hilast.Node) []string {
	names := []string{}
	seen := make(map[string]struct{})
	tree.Accept(func(node hilast.Node) hilast.Node {
		if va, ok := node.(*hilast.VariableAccess); ok {
			if _, exists := seen[va.Name]; !exists {
				seen[va.Name] = struct{}{}
				names = append(names, va.Name)
			}
		}
		return node
	})
	return names
}

// Resolve looks up a dotted name such as `this.title` in a context. The first
// part is a binding of the context, and the other parts walk into maps and
// resolvers. Lazy nodes are read when they are walked through, and cancelled
// ones are nil. Missing names are nil.
func Resolve(ctx *layers.Context, name string) (interface{}, error) {
	parts := strings.Split(name, ".")
	value, exists := ctx.Lookup(parts[0])
	if !exists {
		return nil, nil
	}
	for _, part := range parts[1:] {
		v, err := unwrap(value)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case nil:
			return nil, nil

		case layers.Resolver:
			value, exists, err = x.Resolve(part)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, nil
			}

		case map[string]interface{}:
			value = x[part]

		default:
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
				return nil, fmt.Errorf("can't look up `%s` in a value of type %T", part, v)
			}
			e := rv.MapIndex(reflect.ValueOf(part).Convert(rv.Type().Key()))
			if !e.IsValid() {
				return nil, nil
			}
			value = e.Interface()
		}
	}
	return unwrap(value)
}

// unwrap reads lazy nodes.
func unwrap(value interface{}) (interface{}, error) {
	for {
		node, ok := value.(*lazy.Node)
		if !ok {
			return value, nil
		}
		if node.Cancelled() {
			return nil, nil
		}
		v, err := node.Value()
		if err != nil {
			return nil, err
		}
		value = v
	}
}

// ToVariable converts a go value into a hil variable. Nil is the unknown value.
func ToVariable(value interface{}) (hilast.Variable, error) {
	value, err := unwrap(value)
	if err != nil {
		return hilast.Variable{}, err
	}

	switch x := value.(type) {
	case nil:
		return hilast.Variable{Type: hilast.TypeUnknown, Value: hil.UnknownValue}, nil
	case string:
		return hilast.Variable{Type: hilast.TypeString, Value: x}, nil
	case bool:
		return hilast.Variable{Type: hilast.TypeBool, Value: x}, nil
	case int:
		return hilast.Variable{Type: hilast.TypeInt, Value: x}, nil
	case int64:
		return hilast.Variable{Type: hilast.TypeInt, Value: int(x)}, nil
	case int32:
		return hilast.Variable{Type: hilast.TypeInt, Value: int(x)}, nil
	case float64:
		return hilast.Variable{Type: hilast.TypeFloat, Value: x}, nil
	case float32:
		return hilast.Variable{Type: hilast.TypeFloat, Value: float64(x)}, nil

	case []interface{}:
		list := []hilast.Variable{}
		for i, v := range x {
			variable, err := ToVariable(v)
			if err != nil {
				return hilast.Variable{}, errwrap.Wrapf(err, "invalid list element %d", i)
			}
			list = append(list, variable)
		}
		return hilast.Variable{Type: hilast.TypeList, Value: list}, nil

	case map[string]interface{}:
		m := make(map[string]hilast.Variable)
		for k, v := range x {
			variable, err := ToVariable(v)
			if err != nil {
				return hilast.Variable{}, errwrap.Wrapf(err, "invalid map element `%s`", k)
			}
			m[k] = variable
		}
		return hilast.Variable{Type: hilast.TypeMap, Value: m}, nil

	case layers.Resolver:
		return hilast.Variable{}, fmt.Errorf("a resolver can only be used with a nested name")
	}

	// let hil try the other slices and maps
	return hil.InterfaceToVariable(value)
}

// staticType returns the type of the expression when the whole template is a
// single interpolation, since hil always turns scalar results into strings.
func staticType(tree hilast.Node, scope hilast.Scope) hilast.Type {
	node := tree
	if output, ok := tree.(*hilast.Output); ok {
		if len(output.Exprs) != 1 {
			return hilast.TypeString // a template
		}
		node = output.Exprs[0]
	}
	typ, err := node.Type(scope)
	if err != nil {
		return hilast.TypeAny
	}
	return typ
}

// restore turns the string result of hil back into the scalar it was.
func restore(s string, typ hilast.Type) interface{} {
	switch typ {
	case hilast.TypeString:
		return s
	case hilast.TypeBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s
	case hilast.TypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	// ints, and the types that are only known after evaluation
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// functions returns the function map of an evaluation.
func (obj *Evaluator) functions() map[string]hilast.Function {
	funcs := map[string]hilast.Function{
		"upper": {
			ArgTypes:   []hilast.Type{hilast.TypeString},
			ReturnType: hilast.TypeString,
			Callback: func(args []interface{}) (interface{}, error) {
				return strings.ToUpper(args[0].(string)), nil
			},
		},
		"lower": {
			ArgTypes:   []hilast.Type{hilast.TypeString},
			ReturnType: hilast.TypeString,
			Callback: func(args []interface{}) (interface{}, error) {
				return strings.ToLower(args[0].(string)), nil
			},
		},
		"length": {
			ArgTypes:   []hilast.Type{hilast.TypeString},
			ReturnType: hilast.TypeInt,
			Callback: func(args []interface{}) (interface{}, error) {
				return utf8.RuneCountInString(args[0].(string)), nil
			},
		},
		"trim": {
			ArgTypes:   []hilast.Type{hilast.TypeString},
			ReturnType: hilast.TypeString,
			Callback: func(args []interface{}) (interface{}, error) {
				return strings.TrimSpace(args[0].(string)), nil
			},
		},
	}
	for name, fn := range obj.Functions {
		funcs[name] = fn
	}
	return funcs
}
