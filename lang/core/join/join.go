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

package corejoin

import (
	"strings"

	"github.com/fusionlang/fusion/lang/funcs"
	"github.com/fusionlang/fusion/lang/interfaces"
	"github.com/fusionlang/fusion/lang/types"
)

const (
	// PrototypeName is the name this implementation is registered as.
	PrototypeName = "Fusion:Join"

	// attribute names...
	argNameGlue = "@glue"
)

func init() {
	funcs.Register(PrototypeName, func() interfaces.ObjectImplementation { return &Join{} })
}

// Join concatenates the string values of its property attributes in their
// sorted order, separated by the value of @glue. Null and cancelled attributes
// are skipped.
type Join struct{}

// Evaluate joins the values.
func (obj *Join) Evaluate(o interfaces.Object) (interface{}, error) {
	glue, err := o.EvaluateRequiredAttributeOptionalValue(argNameGlue, types.TypeStr)
	if err != nil {
		return nil, err
	}
	sep, _ := glue.(string) // nil is no glue

	keys, err := o.PropertyAttributesSorted()
	if err != nil {
		return nil, err
	}
	parts := []string{}
	for _, key := range keys {
		v, err := o.EvaluateRequiredAttributeOptionalValue(key, types.TypeStr)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		parts = append(parts, v.(string))
	}
	return strings.Join(parts, sep), nil
}
