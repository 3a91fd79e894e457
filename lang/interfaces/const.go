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

package interfaces

const (
	// MetaIf is the meta attribute whose children are the conditions of an
	// attribute.
	MetaIf = "if"

	// MetaProcess is the meta attribute whose children post-process the
	// value of an attribute.
	MetaProcess = "process"

	// MetaPosition is the meta attribute holding a key position.
	MetaPosition = "position"

	// MetaClass is the meta attribute naming the implementation of a
	// prototype.
	MetaClass = "class"

	// MetaContext is the meta attribute whose children are pushed as
	// context bindings.
	MetaContext = "context"

	// MetaApply is the meta attribute whose children evaluate to maps of
	// applied attributes.
	MetaApply = "apply"

	// ValueName is the name of the binding for the pending value in the
	// conditions and processors.
	ValueName = "value"

	// ThisName is the name of the binding for the current object.
	ThisName = "this"

	// ContextLayerName is the name of the layer built out of @context.
	ContextLayerName = "@context"
)
