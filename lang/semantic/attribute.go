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

package semantic

import (
	"fmt"
	"sort"

	"github.com/fusionlang/fusion/lang/index"
	"github.com/fusionlang/fusion/lang/pathname"
)

// Attribute is a resolved attribute. It is either declared, in which case the
// value comes from a declaration of the index, or applied, in which case the
// value was computed at runtime and injected into an instance.
type Attribute struct {
	// Key is the attribute key relative to its owner.
	Key pathname.Segment

	// Entry is the declaration which decides the value, or nil if there is
	// no value. For copies this is the value of the copied path.
	Entry *index.Entry

	// Copy is set to the copy declaration if the value came through one.
	Copy *index.Entry

	// Bases are the bases of the nested attributes of this one.
	Bases []Base

	// Applied is true if this attribute was injected with a value.
	Applied bool

	// Value is the value of an applied attribute.
	Value interface{}
}

// Name returns the name of the key, without the meta prefix.
func (obj *Attribute) Name() string { return obj.Key.Name }

// IsMeta returns true for meta attributes such as `@if`.
func (obj *Attribute) IsMeta() bool { return obj.Key.IsMeta() }

// Exists returns true if the attribute has a value or nested declarations.
func (obj *Attribute) Exists() bool {
	return obj.Applied || obj.Entry != nil || len(obj.Bases) > 0
}

// HasValue returns true if the attribute has a value.
func (obj *Attribute) HasValue() bool {
	return obj.Applied || obj.Entry != nil
}

// String returns a short representation for log messages.
func (obj *Attribute) String() string {
	switch {
	case obj.Applied:
		return fmt.Sprintf("%s (applied)", obj.Key)
	case obj.Entry != nil:
		return fmt.Sprintf("%s (%s)", obj.Key, obj.Entry)
	}
	return obj.Key.String()
}

// Instance is an object instance: a prototype instantiated at an evaluation
// path, with its declared attributes merged with the applied ones.
type Instance struct {
	Prototype pathname.QualifiedPrototypeName

	// Chain is the prototype followed by its ancestors, nearest first.
	Chain []pathname.QualifiedPrototypeName

	// EvaluationPath ends with the prototype call of this instance.
	EvaluationPath pathname.AbsolutePath

	// Bases are the bases of the attributes, lowest precedence first.
	Bases []Base

	keys       []pathname.Segment
	attributes map[string]*Attribute
}

// Instantiate builds an instance of a prototype at an evaluation path. The
// evaluation path must already end with the call of the prototype. The own
// bases are the declaration paths of the object itself, and the applied
// attributes shadow the declared ones with the same name.
func (obj *Model) Instantiate(evaluationPath pathname.AbsolutePath, prototype pathname.QualifiedPrototypeName, own []Base, applied map[string]interface{}) (*Instance, error) {
	if _, exists := obj.prototypes[prototype]; !exists {
		return nil, &index.Error{
			Path:   evaluationPath,
			Reason: fmt.Sprintf("unknown prototype %s", prototype),
		}
	}
	instance := &Instance{
		Prototype:      prototype,
		Chain:          obj.Chain(prototype),
		EvaluationPath: evaluationPath,
		Bases:          obj.PrototypeBases(prototype, evaluationPath, own),
		attributes:     make(map[string]*Attribute),
	}
	for _, attr := range obj.Attributes(instance.Bases) {
		instance.keys = append(instance.keys, attr.Key)
		instance.attributes[segmentKey(attr.Key)] = attr
	}

	// applied attributes are sorted by name for determinism
	names := []string{}
	for name := range applied {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := pathname.Property(name)
		if _, exists := instance.attributes[segmentKey(key)]; !exists {
			instance.keys = append(instance.keys, key)
		}
		declared := instance.attributes[segmentKey(key)]
		attr := &Attribute{
			Key:     key,
			Applied: true,
			Value:   applied[name],
		}
		if declared != nil {
			attr.Bases = declared.Bases // keep the meta attributes
		}
		instance.attributes[segmentKey(key)] = attr
	}
	return instance, nil
}

// Keys returns every attribute key, meta attributes included.
func (obj *Instance) Keys() []pathname.Segment {
	return append([]pathname.Segment{}, obj.keys...)
}

// Attribute returns the attribute with the given key, or nil.
func (obj *Instance) Attribute(key pathname.Segment) *Attribute {
	return obj.attributes[segmentKey(key)]
}

// Attributes returns every attribute, meta attributes included.
func (obj *Instance) Attributes() map[string]*Attribute {
	out := make(map[string]*Attribute)
	for k, v := range obj.attributes {
		out[k] = v
	}
	return out
}

// PropertyAttributes returns the attributes which are not meta attributes.
func (obj *Instance) PropertyAttributes() map[string]*Attribute {
	out := make(map[string]*Attribute)
	for _, key := range obj.keys {
		if key.IsProperty() {
			out[key.Name] = obj.attributes[segmentKey(key)]
		}
	}
	return out
}

// PropertyKeys returns the names of the property attributes in key order.
func (obj *Instance) PropertyKeys() []string {
	out := []string{}
	for _, key := range obj.keys {
		if key.IsProperty() {
			out = append(out, key.Name)
		}
	}
	return out
}

// String returns a short representation for log messages.
func (obj *Instance) String() string {
	return fmt.Sprintf("%s@%s", obj.Prototype, obj.EvaluationPath)
}

// segmentKey is the identity of a key, which ignores quoting.
func segmentKey(key pathname.Segment) string {
	return pathname.NewRelative(key).Key()
}
