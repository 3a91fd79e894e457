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

// Package funcs provides the registry of the object implementations which can
// be used by prototypes.
package funcs

import (
	"fmt"
	"sort"

	"github.com/fusionlang/fusion/lang/interfaces"
)

// registeredImplementations is a global map of all possible implementations
// which can be used. You should never touch this map directly. Use methods like
// Register instead.
var registeredImplementations = make(map[string]func() interfaces.ObjectImplementation) // must initialize

// Register takes an implementation and its name and makes it available for
// use. The name is usually the name of the prototype it implements, such as
// `Fusion:Value`. It is commonly called in the init() method of the
// implementation at program startup. There is no matching Unregister function.
func Register(name string, fn func() interfaces.ObjectImplementation) {
	if _, exists := registeredImplementations[name]; exists {
		panic(fmt.Sprintf("an implementation named %s is already registered", name))
	}
	registeredImplementations[name] = fn
}

// Lookup returns a new instance of the implementation with this name.
func Lookup(name string) (interfaces.ObjectImplementation, error) {
	f, exists := registeredImplementations[name]
	if !exists {
		return nil, fmt.Errorf("implementation %s not found", name)
	}
	return f(), nil
}

// RegisteredNames returns the names of all the registered implementations in
// sorted order.
func RegisteredNames() []string {
	names := []string{}
	for name := range registeredImplementations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Implementations returns a new instance of every registered implementation,
// by name. This is the map that the runtime takes.
func Implementations() map[string]interfaces.ObjectImplementation {
	out := make(map[string]interfaces.ObjectImplementation)
	for name, fn := range registeredImplementations {
		out[name] = fn()
	}
	return out
}
