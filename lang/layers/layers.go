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

// Package layers contains the immutable variable scopes that expressions and
// meta attributes are evaluated in. A context is a chain of layers, and lookups
// walk it from the innermost layer outwards.
package layers

import (
	"fmt"
	"sort"
	"strings"
)

// Resolver is a binding which resolves its nested names lazily, such as the
// `this` binding of an object which evaluates attributes on demand.
type Resolver interface {
	// Resolve returns the value of a nested name, and false if it does not
	// exist.
	Resolve(name string) (interface{}, bool, error)
}

// Layer is a named set of bindings. It never changes once it is built.
type Layer struct {
	name     string
	bindings map[string]interface{}
}

// LayerOf builds a layer. The bindings are copied.
func LayerOf(name string, bindings map[string]interface{}) *Layer {
	m := make(map[string]interface{}, len(bindings))
	for k, v := range bindings {
		m[k] = v
	}
	return &Layer{
		name:     name,
		bindings: m,
	}
}

// Name returns the name of the layer.
func (obj *Layer) Name() string { return obj.name }

// Lookup returns a binding of this layer only.
func (obj *Layer) Lookup(name string) (interface{}, bool) {
	if obj == nil {
		return nil, false
	}
	v, exists := obj.bindings[name]
	return v, exists
}

// Names returns the sorted names of the bindings of this layer.
func (obj *Layer) Names() []string {
	if obj == nil {
		return nil
	}
	names := []string{}
	for k := range obj.bindings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String returns a short representation for log messages.
func (obj *Layer) String() string {
	return fmt.Sprintf("%s{%s}", obj.name, strings.Join(obj.Names(), ", "))
}

// Context is a chain of layers. The nil context is the valid empty context.
type Context struct {
	layer  *Layer
	parent *Context
}

// Empty returns the empty context.
func Empty() *Context { return nil }

// Push returns a new context with the layer on top. The receiver is unchanged,
// so contexts can be shared freely.
func (obj *Context) Push(layer *Layer) *Context {
	if layer == nil {
		return obj
	}
	return &Context{
		layer:  layer,
		parent: obj,
	}
}

// Lookup finds a binding, innermost layer first.
func (obj *Context) Lookup(name string) (interface{}, bool) {
	for c := obj; c != nil; c = c.parent {
		if v, exists := c.layer.Lookup(name); exists {
			return v, true
		}
	}
	return nil, false
}

// Layers returns the layers, innermost first.
func (obj *Context) Layers() []*Layer {
	out := []*Layer{}
	for c := obj; c != nil; c = c.parent {
		out = append(out, c.layer)
	}
	return out
}

// Flatten returns every visible binding. Inner bindings shadow outer ones.
func (obj *Context) Flatten() map[string]interface{} {
	out := make(map[string]interface{})
	layers := obj.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		for k, v := range layers[i].bindings {
			out[k] = v
		}
	}
	return out
}

// Names returns the sorted names of every visible binding.
func (obj *Context) Names() []string {
	names := []string{}
	for k := range obj.Flatten() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Depth returns the number of layers.
func (obj *Context) Depth() int {
	n := 0
	for c := obj; c != nil; c = c.parent {
		n++
	}
	return n
}
