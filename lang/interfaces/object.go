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

// Package interfaces contains the common interfaces between the runtime, the
// object implementations and the pluggable parts of the language.
package interfaces

import (
	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/lazy"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/lang/semantic"
	"github.com/fusionlang/fusion/lang/types"
)

// ObjectImplementation is the code behind a prototype, such as a tag renderer.
// It reads what it needs from the object, which calls back into the runtime.
type ObjectImplementation interface {
	Evaluate(obj Object) (interface{}, error)
}

// ObjectImplementationFunc adapts a plain function to ObjectImplementation.
type ObjectImplementationFunc func(obj Object) (interface{}, error)

// Evaluate calls the function.
func (obj ObjectImplementationFunc) Evaluate(o Object) (interface{}, error) {
	return obj(o)
}

// Object is the capability that the runtime passes to object implementations.
// It is only valid during the call to Evaluate.
type Object interface {
	// Path returns the evaluation path of the object.
	Path() pathname.AbsolutePath

	// Prototype returns the prototype of the object.
	Prototype() pathname.QualifiedPrototypeName

	// Context returns the context the object is evaluated in.
	Context() *layers.Context

	// Attributes returns every attribute by key, meta attributes included.
	Attributes() map[string]*semantic.Attribute

	// PropertyAttributes returns the attributes which are not meta
	// attributes, by name.
	PropertyAttributes() map[string]*semantic.Attribute

	// PropertyAttributesSorted returns the names of the property attributes
	// ordered by their @position.
	PropertyAttributesSorted() ([]string, error)

	// EvaluateAttribute evaluates an attribute through the whole evaluation
	// chain. Meta attributes are named with their prefix, such as `@glue`. The layer, if not nil, is pushed onto the context. The result
	// may be cancelled. A missing attribute results in nil.
	EvaluateAttribute(name string, layer *layers.Layer, typ *types.Type) (*lazy.Node, error)

	// EvaluateRequiredAttributeValue evaluates an attribute which must
	// exist. A cancelled attribute results in nil.
	EvaluateRequiredAttributeValue(name string, typ *types.Type) (interface{}, error)

	// EvaluateRequiredAttributeOptionalValue evaluates an attribute which
	// may be missing, in which case the result is nil.
	EvaluateRequiredAttributeOptionalValue(name string, typ *types.Type) (interface{}, error)

	// RuntimeError builds an error carrying the current call stack.
	RuntimeError(message string, cause error) error
}

// ExpressionEvaluator evaluates expressions such as `${value + 1}` in a context.
type ExpressionEvaluator interface {
	Evaluate(code string, ctx *layers.Context) (interface{}, error)
}

// DslHandler evaluates an embedded dsl snippet.
type DslHandler func(identifier, code string, ctx *layers.Context) (interface{}, error)

// Cache is consulted before an object is evaluated. A hit skips the
// evaluation entirely.
type Cache interface {
	Lookup(path pathname.AbsolutePath) (interface{}, bool)
}
