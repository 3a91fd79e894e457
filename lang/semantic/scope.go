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

	"github.com/fusionlang/fusion/lang/pathname"
)

// Inheritance maps each prototype to its ancestors, nearest first.
type Inheritance map[pathname.QualifiedPrototypeName][]pathname.QualifiedPrototypeName

// IsA returns true if the prototype equals the other one, or inherits from it.
func (obj Inheritance) IsA(name, other pathname.QualifiedPrototypeName) bool {
	if name == other {
		return true
	}
	for _, ancestor := range obj[name] {
		if ancestor == other {
			return true
		}
	}
	return false
}

// ExtensionScope decides which evaluation paths a prototype extension, such as
// `prototype(A:Page).body.prototype(A:Tag).tagName`, applies to.
type ExtensionScope struct {
	path        pathname.AbsolutePath
	segments    []pathname.Segment // up to and including the last call
	inheritance Inheritance
}

// NewExtensionScope builds the scope of a declaration path. It fails if the
// path does not extend a prototype.
func NewExtensionScope(path pathname.AbsolutePath, inheritance Inheritance) (*ExtensionScope, error) {
	segments, ok := path.PrototypeExtensionPrototypePathSegments()
	if !ok {
		return nil, fmt.Errorf("path `%s` does not extend a prototype", path)
	}
	return &ExtensionScope{
		path:        path,
		segments:    segments,
		inheritance: inheritance,
	}, nil
}

// Path returns the declaration path of the scope.
func (obj *ExtensionScope) Path() pathname.AbsolutePath { return obj.path }

// Prototype returns the path of the extended prototype, which is where the
// extension declarations are found, such as
// `/prototype(A:Page).body.prototype(A:Tag)`.
func (obj *ExtensionScope) Prototype() pathname.AbsolutePath {
	return pathname.NewAbsolute(obj.segments...)
}

// IsInScope returns true if the extension applies to the object at the given
// evaluation path. The evaluation path of an object ends with a prototype call
// of the object's prototype, and every object on the way there is marked the
// same way, such as `/page.prototype(A:Page).body.prototype(A:Tag)`.
//
// Property segments before the first call of the declaration must align with
// the evaluation path from the root, and the object markers of the evaluation
// path are skipped when property segments are compared. Each call of the declaration matches a
// later call of the evaluation path with the same prototype, or one inheriting
// from it, and deeper nesting is allowed in between. Property segments after a
// matched call must follow it directly. The last call must match the object
// itself, which is the last segment of the evaluation path.
func (obj *ExtensionScope) IsInScope(evaluationPath pathname.AbsolutePath) bool {
	if evaluationPath.IsRoot() || !evaluationPath.Last().IsPrototypeCall() {
		return false
	}
	return obj.match(0, evaluationPath.Segments(), 0)
}

// match is a backtracking matcher of the declaration segments from i on,
// against the evaluation segments from j on.
func (obj *ExtensionScope) match(i int, eval []pathname.Segment, j int) bool {
	if i == len(obj.segments) {
		// the last call must have matched the object itself
		return j == len(eval)
	}
	segment := obj.segments[i]

	if !segment.IsPrototypeCall() {
		// instance markers are transparent for property matching
		k := j
		for k < len(eval) && eval[k].IsPrototypeCall() {
			k++
		}
		if k >= len(eval) || !segment.Equal(eval[k]) {
			return false
		}
		return obj.match(i+1, eval, k+1)
	}

	last := i == len(obj.segments)-1
	for k := j; k < len(eval); k++ {
		if last && k != len(eval)-1 {
			continue
		}
		if !eval[k].IsPrototypeCall() {
			continue
		}
		if !obj.inheritance.IsA(eval[k].Prototype, segment.Prototype) {
			continue
		}
		if obj.match(i+1, eval, k+1) {
			return true
		}
	}
	return false
}
