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

// Package ast contains the declaration trees that the language is built from.
// A parser (or the loader package) produces one File per source file, and each
// file holds a list of declarations. There are four kinds of declarations, and
// they form a closed set: assignments, configurations, copies and erasures.
// Each of them carries an absolute path, a code index which is its position
// among its siblings in the source, a source position for error messages and,
// except for erasures, an optional nested body of child declarations.
package ast

import (
	"fmt"
	"strings"

	"github.com/fusionlang/fusion/lang/pathname"
)

// Pos represents a position in the code.
type Pos struct {
	Line     int    // line number starting at 1
	Column   int    // column number starting at 1
	Filename string // optional source filename, if known
}

// String returns a `file:line:column` style representation.
func (obj Pos) String() string {
	filename := obj.Filename
	if filename == "" {
		filename = "<unknown>"
	}
	if obj.Line <= 0 {
		return filename
	}
	if obj.Column <= 0 {
		return fmt.Sprintf("%s:%d", filename, obj.Line)
	}
	return fmt.Sprintf("%s:%d:%d", filename, obj.Line, obj.Column)
}

// Node is the minimum set of methods that every element of a declaration tree
// implements.
type Node interface {
	fmt.Stringer

	// Apply is a general purpose iterator method that operates on any node.
	Apply(fn func(Node) error) error
}

// Declaration is one of *Assignment, *Configuration, *Copy or *Erasure. The set
// is closed by the unexported declaration method.
type Declaration interface {
	Node

	// Path is the absolute path that this declaration is about.
	Path() pathname.AbsolutePath

	// CodeIndex is the position of this declaration among its siblings in
	// source order. It must be unique within its sibling scope.
	CodeIndex() int

	// Position is the source position for error messages.
	Position() Pos

	// Body returns the nested declarations, or nil.
	Body() *Body

	// Kind returns the name of the declaration kind.
	Kind() string

	declaration()
}

// Meta is the common part of every declaration.
type Meta struct {
	// Target is the absolute path of the declaration.
	Target pathname.AbsolutePath

	// Index is the code index of the declaration among its siblings.
	Index int

	// Pos is where the declaration was found.
	Pos Pos
}

// Path returns the absolute path of the declaration.
func (obj *Meta) Path() pathname.AbsolutePath { return obj.Target }

// CodeIndex returns the code index of the declaration.
func (obj *Meta) CodeIndex() int { return obj.Index }

// Position returns the source position of the declaration.
func (obj *Meta) Position() Pos { return obj.Pos }

// Body holds nested declarations. Their paths are absolute and their code
// indexes are local to this body.
type Body struct {
	Declarations []Declaration
}

// String returns a short representation of the body.
func (obj *Body) String() string {
	if obj == nil || len(obj.Declarations) == 0 {
		return "{}"
	}
	parts := []string{}
	for _, d := range obj.Declarations {
		parts = append(parts, d.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Apply runs fn on every nested declaration, recursively.
func (obj *Body) Apply(fn func(Node) error) error {
	if obj == nil {
		return nil
	}
	for _, d := range obj.Declarations {
		if err := d.Apply(fn); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of direct declarations in the body.
func (obj *Body) Len() int {
	if obj == nil {
		return 0
	}
	return len(obj.Declarations)
}

// Assignment sets the value at a path, such as `a.b = 'hello'` or
// `page = Neos.Fusion:Tag { ... }`.
type Assignment struct {
	Meta

	Value Value

	// Nested is the object body, if the value is an object with a block.
	Nested *Body
}

// String returns a short representation of this declaration.
func (obj *Assignment) String() string {
	s := fmt.Sprintf("%s = %s", obj.Target, obj.Value)
	if obj.Nested.Len() > 0 {
		s += " " + obj.Nested.String()
	}
	return s
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Assignment) Apply(fn func(Node) error) error {
	if err := obj.Nested.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// Body returns the nested declarations of the object value, or nil.
func (obj *Assignment) Body() *Body { return obj.Nested }

// Kind returns the name of the declaration kind.
func (obj *Assignment) Kind() string { return "assignment" }

func (obj *Assignment) declaration() {}

// Configuration opens a block on a path without setting its value, such as
// `prototype(A:B) { ... }`.
type Configuration struct {
	Meta

	Nested *Body
}

// String returns a short representation of this declaration.
func (obj *Configuration) String() string {
	return fmt.Sprintf("%s %s", obj.Target, obj.Nested)
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Configuration) Apply(fn func(Node) error) error {
	if err := obj.Nested.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// Body returns the nested declarations.
func (obj *Configuration) Body() *Body { return obj.Nested }

// Kind returns the name of the declaration kind.
func (obj *Configuration) Kind() string { return "configuration" }

func (obj *Configuration) declaration() {}

// Copy copies the value and children of another path, such as `a < b`. At the
// root, `prototype(A:B) < prototype(A:C)` declares that A:B inherits from A:C.
type Copy struct {
	Meta

	// Source is the path that is copied.
	Source pathname.AbsolutePath

	Nested *Body
}

// String returns a short representation of this declaration.
func (obj *Copy) String() string {
	s := fmt.Sprintf("%s < %s", obj.Target, obj.Source)
	if obj.Nested.Len() > 0 {
		s += " " + obj.Nested.String()
	}
	return s
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Copy) Apply(fn func(Node) error) error {
	if err := obj.Nested.Apply(fn); err != nil {
		return err
	}
	return fn(obj)
}

// Body returns the nested declarations, or nil.
func (obj *Copy) Body() *Body { return obj.Nested }

// Kind returns the name of the declaration kind.
func (obj *Copy) Kind() string { return "copy" }

func (obj *Copy) declaration() {}

// Erasure removes the value and children of a path, such as `a >`.
type Erasure struct {
	Meta
}

// String returns a short representation of this declaration.
func (obj *Erasure) String() string {
	return fmt.Sprintf("%s >", obj.Target)
}

// Apply is a general purpose iterator method that operates on any node.
func (obj *Erasure) Apply(fn func(Node) error) error { return fn(obj) }

// Body always returns nil since erasures can't have a body.
func (obj *Erasure) Body() *Body { return nil }

// Kind returns the name of the declaration kind.
func (obj *Erasure) Kind() string { return "erasure" }

func (obj *Erasure) declaration() {}

// File is the declaration tree of one source file.
type File struct {
	// Name is the file name, used in error messages.
	Name string

	Declarations []Declaration
}

// String returns a short representation of the file.
func (obj *File) String() string {
	return fmt.Sprintf("file(%s, %d declarations)", obj.Name, len(obj.Declarations))
}

// Apply runs fn on every declaration of the file, recursively.
func (obj *File) Apply(fn func(Node) error) error {
	for _, d := range obj.Declarations {
		if err := d.Apply(fn); err != nil {
			return err
		}
	}
	return nil
}

// CodeIndex is the global rank of a declaration. It is the list of local code
// indexes from the file down to the declaration, so nested declarations sort
// between their parent and the parent's next sibling. Ranks compare
// lexicographically, which gives a total order over all loaded files.
type CodeIndex []int

// Compare returns -1, 0 or +1 depending on the order of the two ranks.
func (obj CodeIndex) Compare(other CodeIndex) int {
	for i := 0; i < len(obj) && i < len(other); i++ {
		if obj[i] != other[i] {
			if obj[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(obj) == len(other):
		return 0
	case len(obj) < len(other):
		return -1
	}
	return 1
}

// Less returns true if this rank sorts before the other.
func (obj CodeIndex) Less(other CodeIndex) bool { return obj.Compare(other) < 0 }

// Child returns the rank of a nested declaration with the local index i.
func (obj CodeIndex) Child(i int) CodeIndex {
	out := make(CodeIndex, 0, len(obj)+1)
	out = append(out, obj...)
	return append(out, i)
}

// String returns a dotted representation such as `0.3.1`.
func (obj CodeIndex) String() string {
	parts := make([]string, 0, len(obj))
	for _, i := range obj {
		parts = append(parts, fmt.Sprintf("%d", i))
	}
	return strings.Join(parts, ".")
}
