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

package corevalue

import (
	"github.com/fusionlang/fusion/lang/funcs"
	"github.com/fusionlang/fusion/lang/interfaces"
)

const (
	// PrototypeName is the name this implementation is registered as.
	PrototypeName = "Fusion:Value"

	// attribute names...
	argNameValue = "value"
)

func init() {
	funcs.Register(PrototypeName, func() interfaces.ObjectImplementation { return &Value{} })
}

// Value evaluates to its `value` attribute. It is the simplest way to give a
// value all the meta attributes of an object.
type Value struct{}

// Evaluate returns the value attribute, or nil if it is missing or cancelled.
func (obj *Value) Evaluate(o interfaces.Object) (interface{}, error) {
	return o.EvaluateRequiredAttributeOptionalValue(argNameValue, nil)
}
