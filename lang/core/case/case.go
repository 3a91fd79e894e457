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

package corecase

import (
	"github.com/fusionlang/fusion/lang/funcs"
	"github.com/fusionlang/fusion/lang/interfaces"
	"github.com/fusionlang/fusion/lang/types"
)

const (
	// CasePrototypeName is the name the case implementation is registered
	// as.
	CasePrototypeName = "Fusion:Case"

	// MatcherPrototypeName is the name the matcher implementation is
	// registered as.
	MatcherPrototypeName = "Fusion:Matcher"

	// attribute names...
	argNameCondition = "condition"
	argNameRenderer  = "renderer"
)

func init() {
	funcs.Register(CasePrototypeName, func() interfaces.ObjectImplementation { return &Case{} })
	funcs.Register(MatcherPrototypeName, func() interfaces.ObjectImplementation { return &Matcher{} })
}

// noMatch is the type of NoMatch.
type noMatch struct{}

// String returns a readable name for log messages.
func (obj *noMatch) String() string { return "no match" }

// NoMatch is what a matcher evaluates to when its condition is false.
var NoMatch = &noMatch{}

// Case evaluates its property attributes in their sorted order, and results in
// the first one which matches. Attributes which aren't matchers always match.
// If nothing matches, the result is nil.
type Case struct{}

// Evaluate finds the first match.
func (obj *Case) Evaluate(o interfaces.Object) (interface{}, error) {
	keys, err := o.PropertyAttributesSorted()
	if err != nil {
		return nil, err
	}
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
		if v == NoMatch {
			continue
		}
		return v, nil
	}
	return nil, nil
}

// Matcher is a branch of a case. When its condition is true it evaluates to its
// renderer, otherwise it evaluates to NoMatch.
type Matcher struct{}

// Evaluate checks the condition.
func (obj *Matcher) Evaluate(o interfaces.Object) (interface{}, error) {
	condition, err := o.EvaluateRequiredAttributeOptionalValue(argNameCondition, types.TypeBool)
	if err != nil {
		return nil, err
	}
	if b, ok := condition.(bool); !ok || !b {
		return NoMatch, nil
	}
	return o.EvaluateRequiredAttributeOptionalValue(argNameRenderer, nil)
}
