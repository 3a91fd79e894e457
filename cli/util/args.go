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

package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/util/errwrap"

	"gopkg.in/yaml.v3"
)

// LookupSubcommand returns the name of the subcommand in the obj, of a struct.
// This is useful for determining the name of the subcommand that was activated.
// It returns an empty string if a specific name was not found.
func LookupSubcommand(obj interface{}, st interface{}) string {
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr { // max one de-referencing
		val = val.Elem()
	}

	v := reflect.ValueOf(st) // value of the struct
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := val.Field(i) // value of the field
		if f.Kind() != reflect.Ptr || f.IsNil() || f.Interface() != v.Interface() {
			continue
		}

		field := typ.Field(i)
		alias, ok := field.Tag.Lookup("arg")
		if !ok {
			continue
		}

		prefix := "subcommand"
		split := strings.Split(alias, ":")
		if len(split) != 2 || split[0] != prefix {
			continue
		}

		return split[1] // found
	}
	return "" // not found
}

// InputArgs are the arguments which every subcommand that loads declarations
// shares.
type InputArgs struct {
	// Input is a metadata file, a directory or a declaration file.
	Input string `arg:"positional,required" help:"metadata file, directory, or declaration file"`
}

// ParseVars parses a list of `name=value` strings into a context layer. The
// values are yaml scalars or flow collections, so `n=42` binds an integer and
// `s=hello` binds a string.
func ParseVars(name string, vars []string) (*layers.Layer, error) {
	bindings := make(map[string]interface{})
	for _, x := range vars {
		split := strings.SplitN(x, "=", 2)
		if len(split) != 2 {
			return nil, CliParseError(errwrap.Wrapf(MissingEquals, "invalid variable `%s`", x))
		}
		if split[0] == "" {
			return nil, CliParseError(fmt.Errorf("invalid variable `%s`, the name is empty", x))
		}
		var value interface{}
		if err := yaml.Unmarshal([]byte(split[1]), &value); err != nil {
			return nil, CliParseError(fmt.Errorf("invalid value for variable `%s`: %v", split[0], err))
		}
		bindings[split[0]] = normalize(value)
	}
	return layers.LayerOf(name, bindings), nil
}

// normalize turns the integers that yaml decodes into the int64 that the
// language uses.
func normalize(value interface{}) interface{} {
	switch x := value.(type) {
	case int:
		return int64(x)
	case []interface{}:
		out := make([]interface{}, 0, len(x))
		for _, v := range x {
			out = append(out, normalize(v))
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, v := range x {
			out[k] = normalize(v)
		}
		return out
	}
	return value
}
