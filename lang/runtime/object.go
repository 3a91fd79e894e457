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

package runtime

import (
	"fmt"
	"strings"

	"github.com/fusionlang/fusion/lang/interfaces"
	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/lazy"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/lang/semantic"
	"github.com/fusionlang/fusion/lang/types"
)

var (
	_ interfaces.Object = &object{}
	_ layers.Resolver   = &object{}
)

// object is the capability that an implementation gets for the object it
// evaluates. It is also bound as `this` in the expressions of the object.
type object struct {
	request  *request
	instance *semantic.Instance
	ctx      *layers.Context
}

// Path returns the evaluation path of the object.
func (obj *object) Path() pathname.AbsolutePath { return obj.instance.EvaluationPath }

// Prototype returns the prototype of the object.
func (obj *object) Prototype() pathname.QualifiedPrototypeName { return obj.instance.Prototype }

// Context returns the context the object is evaluated in.
func (obj *object) Context() *layers.Context { return obj.ctx }

// Attributes returns every attribute by key, meta attributes included.
func (obj *object) Attributes() map[string]*semantic.Attribute {
	out := make(map[string]*semantic.Attribute)
	for _, key := range obj.instance.Keys() {
		out[key.String()] = obj.instance.Attribute(key)
	}
	return out
}

// PropertyAttributes returns the attributes which are not meta attributes.
func (obj *object) PropertyAttributes() map[string]*semantic.Attribute {
	return obj.instance.PropertyAttributes()
}

// PropertyAttributesSorted returns the property names ordered by @position.
func (obj *object) PropertyAttributesSorted() ([]string, error) {
	keys := obj.instance.PropertyKeys()
	return obj.request.sort(keys, obj.instance.PropertyAttributes(), func(name string) pathname.AbsolutePath {
		return obj.Path().Append(pathname.Property(name))
	}, obj.ctx, obj)
}

// EvaluateAttribute evaluates an attribute through its chain.
func (obj *object) EvaluateAttribute(name string, layer *layers.Layer, typ *types.Type) (*lazy.Node, error) {
	key := keyOf(name)
	path := obj.Path().Append(key)
	attr := obj.instance.Attribute(key)
	if attr == nil || !attr.Exists() {
		return lazy.Of(path, nil), nil
	}
	return obj.request.chain(attr, path, obj.ctx.Push(layer), typ, obj)
}

// EvaluateRequiredAttributeValue evaluates an attribute which must exist.
func (obj *object) EvaluateRequiredAttributeValue(name string, typ *types.Type) (interface{}, error) {
	if attr := obj.instance.Attribute(keyOf(name)); attr == nil || !attr.Exists() {
		return nil, obj.RuntimeError(fmt.Sprintf("missing required attribute %s", name), nil)
	}
	return obj.EvaluateRequiredAttributeOptionalValue(name, typ)
}

// EvaluateRequiredAttributeOptionalValue evaluates an attribute which may be
// missing.
func (obj *object) EvaluateRequiredAttributeOptionalValue(name string, typ *types.Type) (interface{}, error) {
	node, err := obj.EvaluateAttribute(name, nil, typ)
	if err != nil {
		return nil, err
	}
	if node.Cancelled() {
		return nil, nil
	}
	return node.Value()
}

// RuntimeError builds an error at the path of the object.
func (obj *object) RuntimeError(message string, cause error) error {
	return obj.request.error(obj.Path(), message, cause)
}

// Resolve looks up an attribute for an expression, such as `this.title`.
func (obj *object) Resolve(name string) (interface{}, bool, error) {
	if attr := obj.instance.Attribute(pathname.Property(name)); attr == nil || !attr.Exists() {
		return nil, false, nil
	}
	v, err := obj.EvaluateRequiredAttributeOptionalValue(name, nil)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// String returns a short representation for log messages.
func (obj *object) String() string {
	return obj.instance.String()
}

// keyOf returns the key of an attribute name. Meta attributes are named with
// their prefix, such as `@glue`.
func keyOf(name string) pathname.Segment {
	if strings.HasPrefix(name, pathname.MetaPrefix) {
		return pathname.Meta(strings.TrimPrefix(name, pathname.MetaPrefix))
	}
	return pathname.Property(name)
}
