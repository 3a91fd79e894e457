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

package coredatastructure

import (
	"github.com/fusionlang/fusion/lang/funcs"
	"github.com/fusionlang/fusion/lang/interfaces"
)

// PrototypeName is the name this implementation is registered as.
const PrototypeName = "Fusion:DataStructure"

func init() {
	funcs.Register(PrototypeName, func() interfaces.ObjectImplementation { return &DataStructure{} })
}

// DataStructure evaluates every property attribute into a map. Cancelled
// attributes are left out.
type DataStructure struct{}

// Evaluate builds the map.
func (obj *DataStructure) Evaluate(o interfaces.Object) (interface{}, error) {
	keys, err := o.PropertyAttributesSorted()
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		node, err := o.EvaluateAttribute(key, nil, nil)
		if err != nil {
			return nil, err
		}
		if node.Cancelled() {
			continue
		}
		v, err := node.Value()
		if err != nil {
			return nil, err
		}
		result[key] = v
	}
	return result, nil
}
