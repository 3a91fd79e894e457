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

// Package index flattens declaration trees into one path addressed index. All
// the declarations of all files end up grouped by their absolute path, nested
// bodies included, and each of them gets a global rank which decides which one
// wins when several declarations are about the same path.
package index

import (
	"fmt"
	"sort"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util/errwrap"
)

// Entry is one declaration in the index.
type Entry struct {
	// Decl is the declaration itself.
	Decl ast.Declaration

	// Rank is the global rank of the declaration. Higher ranks win.
	Rank ast.CodeIndex

	// File is the name of the file the declaration was found in.
	File string
}

// String returns a short representation of the entry for log messages.
func (obj *Entry) String() string {
	return fmt.Sprintf("%s(%s)@%s", obj.Decl.Kind(), obj.Decl.Path(), obj.Rank)
}

// IsValue returns true if the declaration decides the value of its path.
// Configurations only contribute their bodies.
func (obj *Entry) IsValue() bool {
	switch obj.Decl.(type) {
	case *ast.Assignment, *ast.Copy, *ast.Erasure:
		return true
	}
	return false
}

// Index is the raw declaration index. Once built, it is never modified, and it
// is safe for concurrent reads.
type Index struct {
	byPath map[string][]*Entry
	paths  []pathname.AbsolutePath // declared paths in insertion order

	variants     map[string]struct{}
	variantOrder []pathname.AbsolutePath // self and prefixes, first seen first

	children map[string][]pathname.Segment // direct children of each variant
	seen     map[string]map[string]struct{}
}

func newIndex() *Index {
	return &Index{
		byPath:   make(map[string][]*Entry),
		variants: make(map[string]struct{}),
		children: make(map[string][]pathname.Segment),
		seen:     make(map[string]map[string]struct{}),
	}
}

// Build folds every file into one index. Files are ranked in the order they
// are given, so later files win over earlier ones.
func Build(files ...*ast.File) (*Index, error) {
	obj := newIndex()
	var reterr error
	for i, file := range files {
		if file == nil {
			continue
		}
		if err := obj.fold(file.Name, ast.CodeIndex{i}, file.Declarations); err != nil {
			reterr = errwrap.Append(reterr, err)
		}
	}
	if reterr != nil {
		return nil, reterr
	}
	return obj, nil
}

// BuildScope builds an index from the four kinds of declarations of a single
// sibling scope. The prefix is the rank of the scope itself, and may be empty.
// The code indexes of all the declarations must be unique.
func BuildScope(prefix ast.CodeIndex, assignments []*ast.Assignment, configurations []*ast.Configuration, copies []*ast.Copy, erasures []*ast.Erasure) (*Index, error) {
	decls := []ast.Declaration{}
	for _, x := range assignments {
		decls = append(decls, x)
	}
	for _, x := range configurations {
		decls = append(decls, x)
	}
	for _, x := range copies {
		decls = append(decls, x)
	}
	for _, x := range erasures {
		decls = append(decls, x)
	}
	// source order, so that insertion order matches the ranks
	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].CodeIndex() < decls[j].CodeIndex()
	})

	obj := newIndex()
	if err := obj.fold("", prefix, decls); err != nil {
		return nil, err
	}
	return obj, nil
}

// fold adds a list of sibling declarations and recurses into their bodies. The
// walk is depth first with parents before children, so insertion order is the
// same as rank order when the siblings are in source order.
func (obj *Index) fold(file string, prefix ast.CodeIndex, decls []ast.Declaration) error {
	var reterr error
	indexes := make(map[int]ast.Declaration)
	for _, decl := range decls {
		if decl == nil {
			continue
		}
		i := decl.CodeIndex()
		if other, exists := indexes[i]; exists {
			reterr = errwrap.Append(reterr, &Error{
				Path:   decl.Path(),
				Pos:    decl.Position(),
				Reason: fmt.Sprintf("duplicate code index %d, also used by %s", i, other.Path()),
			})
			continue
		}
		indexes[i] = decl

		rank := prefix.Child(i)
		obj.add(&Entry{
			Decl: decl,
			Rank: rank,
			File: file,
		})

		if body := decl.Body(); body != nil {
			if err := obj.fold(file, rank, body.Declarations); err != nil {
				reterr = errwrap.Append(reterr, err)
			}
		}
	}
	return reterr
}

func (obj *Index) add(entry *Entry) {
	path := entry.Decl.Path()
	key := path.Key()
	if _, exists := obj.byPath[key]; !exists {
		obj.paths = append(obj.paths, path)
	}
	obj.byPath[key] = append(obj.byPath[key], entry)

	// record the path and every prefix of it, root first
	segments := path.Segments()
	parent := pathname.Root()
	for _, segment := range segments {
		child := parent.Append(segment)
		obj.addChild(parent, segment)
		if _, exists := obj.variants[child.Key()]; !exists {
			obj.variants[child.Key()] = struct{}{}
			obj.variantOrder = append(obj.variantOrder, child)
		}
		parent = child
	}
}

func (obj *Index) addChild(parent pathname.AbsolutePath, segment pathname.Segment) {
	key := parent.Key()
	seen, exists := obj.seen[key]
	if !exists {
		seen = make(map[string]struct{})
		obj.seen[key] = seen
	}
	sk := pathname.NewRelative(segment).Key()
	if _, exists := seen[sk]; exists {
		return
	}
	seen[sk] = struct{}{}
	obj.children[key] = append(obj.children[key], segment)
}

// Len returns the number of distinct declared paths.
func (obj *Index) Len() int { return len(obj.paths) }

// Has returns true if at least one declaration is about this exact path.
func (obj *Index) Has(path pathname.AbsolutePath) bool {
	_, exists := obj.byPath[path.Key()]
	return exists
}

// Declarations returns the declarations at this exact path in insertion order.
func (obj *Index) Declarations(path pathname.AbsolutePath) []*Entry {
	entries := obj.byPath[path.Key()]
	out := make([]*Entry, len(entries))
	copy(out, entries)
	return out
}

// Effective returns the value deciding declaration with the highest rank at
// this exact path, or nil if there is none. Later always wins, and this is a
// full replacement, not a merge.
func (obj *Index) Effective(path pathname.AbsolutePath) *Entry {
	return obj.EffectiveAfter(path, nil)
}

// EffectiveAfter is like Effective, but it ignores every declaration that is
// not ranked strictly above the given rank. A nil rank ignores nothing.
func (obj *Index) EffectiveAfter(path pathname.AbsolutePath, after ast.CodeIndex) *Entry {
	var best *Entry
	for _, entry := range obj.byPath[path.Key()] {
		if !entry.IsValue() {
			continue
		}
		if after != nil && !after.Less(entry.Rank) {
			continue
		}
		if best == nil || best.Rank.Less(entry.Rank) {
			best = entry
		}
	}
	return best
}

// Visible returns true if this path, or anything below it, has a declaration
// ranked strictly above the given rank. A nil rank accepts everything.
func (obj *Index) Visible(path pathname.AbsolutePath, after ast.CodeIndex) bool {
	for _, entry := range obj.byPath[path.Key()] {
		if after == nil || after.Less(entry.Rank) {
			return true
		}
	}
	for _, segment := range obj.children[path.Key()] {
		if obj.Visible(path.Append(segment), after) {
			return true
		}
	}
	return false
}

// Paths returns every declared path in insertion order.
func (obj *Index) Paths() []pathname.AbsolutePath {
	out := make([]pathname.AbsolutePath, len(obj.paths))
	copy(out, obj.paths)
	return out
}

// PathVariants returns every declared path and every prefix of them, in the
// order they were first seen.
func (obj *Index) PathVariants() []pathname.AbsolutePath {
	out := make([]pathname.AbsolutePath, len(obj.variantOrder))
	copy(out, obj.variantOrder)
	return out
}

// Children returns the direct child segments of a path in first seen order.
func (obj *Index) Children(path pathname.AbsolutePath) []pathname.Segment {
	children := obj.children[path.Key()]
	out := make([]pathname.Segment, len(children))
	copy(out, children)
	return out
}

// GetAllPathExtensionsForPrototype returns every path variant which extends the
// named prototype, such as `/prototype(A:Page).body.prototype(A:Tag).tagName`
// for `A:Tag`.
func (obj *Index) GetAllPathExtensionsForPrototype(name pathname.QualifiedPrototypeName) []pathname.AbsolutePath {
	out := []pathname.AbsolutePath{}
	for _, path := range obj.variantOrder {
		extending, ok := path.ExtendingPrototypeName()
		if !ok || extending != name {
			continue
		}
		out = append(out, path)
	}
	return out
}

// RootPrototypes returns the name of every prototype which is declared at the
// root, in the order they were first seen.
func (obj *Index) RootPrototypes() []pathname.QualifiedPrototypeName {
	out := []pathname.QualifiedPrototypeName{}
	for _, segment := range obj.children[pathname.Root().Key()] {
		if segment.IsPrototypeCall() {
			out = append(out, segment.Prototype)
		}
	}
	return out
}

// Inheritance returns the root prototype copies, such as `prototype(A:B) <
// prototype(A:C)`, grouped by the inheriting prototype. The copies of each
// prototype are listed in insertion order.
func (obj *Index) Inheritance() map[pathname.QualifiedPrototypeName][]*Entry {
	out := make(map[pathname.QualifiedPrototypeName][]*Entry)
	for _, name := range obj.RootPrototypes() {
		path := pathname.NewAbsolute(pathname.PrototypeCall(name))
		for _, entry := range obj.byPath[path.Key()] {
			c, ok := entry.Decl.(*ast.Copy)
			if !ok {
				continue
			}
			if !c.Source.IsRootPrototypePath() {
				continue
			}
			out[name] = append(out[name], entry)
		}
	}
	return out
}

// Error is returned when the declarations can't be indexed, or when the
// semantic model can't be built from them.
type Error struct {
	Path   pathname.AbsolutePath
	Pos    ast.Pos
	Reason string
}

// Error returns the error message.
func (obj *Error) Error() string {
	s := obj.Reason
	if !obj.Path.IsRoot() {
		s = fmt.Sprintf("%s: %s", obj.Path, s)
	}
	if obj.Pos.Filename != "" || obj.Pos.Line > 0 {
		s = fmt.Sprintf("%s: %s", obj.Pos, s)
	}
	return "index error: " + s
}
