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

package ast

import (
	"fmt"
	"strconv"

	"github.com/fusionlang/fusion/lang/pathname"
)

// Value is the right hand side of an assignment. It is one of *Primitive,
// *Expression, *Object or *Dsl.
type Value interface {
	fmt.Stringer

	value()
}

// Primitive is a literal value. V is one of nil, string, int64, float64 or
// bool.
type Primitive struct {
	V interface{}
}

// String returns the literal as it would be written in the source.
func (obj *Primitive) String() string {
	switch v := obj.V.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	}
	return fmt.Sprintf("%v", obj.V)
}

func (obj *Primitive) value() {}

// Expression is an expression which is evaluated by the pluggable expression
// evaluator, such as `${value + 1}`.
type Expression struct {
	Code string
}

// String returns the expression code.
func (obj *Expression) String() string { return obj.Code }

func (obj *Expression) value() {}

// Object instantiates a prototype, such as `Neos.Fusion:Value`.
type Object struct {
	Prototype pathname.QualifiedPrototypeName
}

// String returns the prototype name.
func (obj *Object) String() string { return obj.Prototype.String() }

func (obj *Object) value() {}

// Dsl is an embedded snippet of another syntax, such as afx`<div/>`, which is
// handed to a registered dsl handler at evaluation time.
type Dsl struct {
	Identifier string
	Code       string
}

// String returns the dsl as it would be written in the source.
func (obj *Dsl) String() string { return obj.Identifier + "`" + obj.Code + "`" }

func (obj *Dsl) value() {}
