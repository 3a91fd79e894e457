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

// Package semantic turns the raw declaration index into the semantic model of
// the language. It resolves the inheritance chain of every prototype, finds the
// prototype extensions which apply to an object, and materializes the
// attributes of paths and object instances out of layered declaration bases.
package semantic

import (
	"fmt"
	"sort"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/index"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/pgraph"
	"github.com/fusionlang/fusion/util/errwrap"
)

// Config is the configuration of the semantic model.
type Config struct {
	// StrictInheritance makes a prototype with several different parents
	// an error. Otherwise the parent of the highest ranked copy wins.
	StrictInheritance bool

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Prototype is a resolved prototype.
type Prototype struct {
	Name pathname.QualifiedPrototypeName

	// Chain is the prototype itself followed by its ancestors, nearest
	// first.
	Chain []pathname.QualifiedPrototypeName
}

// Parent returns the direct parent, if there is one.
func (obj *Prototype) Parent() (pathname.QualifiedPrototypeName, bool) {
	if len(obj.Chain) < 2 {
		return pathname.QualifiedPrototypeName{}, false
	}
	return obj.Chain[1], true
}

// Base is one layer of declarations. The declarations for the attribute `key`
// of a base are found at `Path.key`, and only the ones ranked strictly above
// After are visible. Lists of bases are ordered lowest precedence first.
type Base struct {
	Path  pathname.AbsolutePath
	After ast.CodeIndex
}

// String returns a short representation for log messages.
func (obj Base) String() string {
	if obj.After == nil {
		return obj.Path.String()
	}
	return fmt.Sprintf("%s>%s", obj.Path, obj.After)
}

// Model is the semantic model. Once built, it is immutable and it is safe for
// concurrent reads.
type Model struct {
	index  *index.Index
	config *Config

	declared    map[pathname.QualifiedPrototypeName]struct{}
	prototypes  map[pathname.QualifiedPrototypeName]*Prototype
	names       []pathname.QualifiedPrototypeName
	inheritance Inheritance
	extensions  map[pathname.QualifiedPrototypeName][]*ExtensionScope
}

// NewModel resolves every prototype of the index. All the problems that are
// found are returned together, and each of them is an *index.Error.
func NewModel(idx *index.Index, config *Config) (*Model, error) {
	if idx == nil {
		return nil, fmt.Errorf("the Index is nil")
	}
	if config == nil {
		config = &Config{}
	}
	if config.Logf == nil {
		config.Logf = func(format string, v ...interface{}) {}
	}
	obj := &Model{
		index:       idx,
		config:      config,
		declared:    make(map[pathname.QualifiedPrototypeName]struct{}),
		prototypes:  make(map[pathname.QualifiedPrototypeName]*Prototype),
		inheritance: make(Inheritance),
		extensions:  make(map[pathname.QualifiedPrototypeName][]*ExtensionScope),
	}

	var reterr error
	if err := obj.resolveChains(); err != nil {
		reterr = errwrap.Append(reterr, err)
	}
	if err := obj.checkObjects(); err != nil {
		reterr = errwrap.Append(reterr, err)
	}
	if reterr != nil {
		return nil, reterr
	}
	obj.collectExtensions()

	if obj.config.Debug {
		for _, name := range obj.names {
			obj.config.Logf("prototype %s: chain: %v", name, obj.prototypes[name].Chain)
		}
	}
	return obj, nil
}

// resolveChains finds the parent of every declared prototype, and builds the
// inheritance chains out of them.
func (obj *Model) resolveChains() error {
	var reterr error
	for _, name := range obj.index.RootPrototypes() {
		obj.declared[name] = struct{}{}
		obj.names = append(obj.names, name)
	}
	sort.Slice(obj.names, func(i, j int) bool {
		return obj.names[i].String() < obj.names[j].String()
	})

	graph, err := pgraph.NewGraph("inheritance")
	if err != nil {
		return errwrap.Wrapf(err, "can't build the inheritance graph")
	}
	parents := make(map[pathname.QualifiedPrototypeName]pathname.QualifiedPrototypeName)
	inheritance := obj.index.Inheritance()
	for _, name := range obj.names {
		graph.AddVertex(pgraph.StrVertex(name.String()))

		copies := inheritance[name]
		if len(copies) == 0 {
			continue
		}
		var winner *index.Entry
		sources := make(map[pathname.QualifiedPrototypeName]struct{})
		for _, entry := range copies {
			source, _ := entry.Decl.(*ast.Copy).Source.RootPrototypeName()
			sources[source] = struct{}{}
			if winner == nil || winner.Rank.Less(entry.Rank) {
				winner = entry
			}
		}
		parent, _ := winner.Decl.(*ast.Copy).Source.RootPrototypeName()

		if len(sources) > 1 {
			if obj.config.StrictInheritance {
				reterr = errwrap.Append(reterr, &index.Error{
					Path:   winner.Decl.Path(),
					Pos:    winner.Decl.Position(),
					Reason: fmt.Sprintf("prototype %s inherits from %d different prototypes", name, len(sources)),
				})
				continue
			}
			obj.config.Logf("warning: prototype %s inherits from %d different prototypes, using %s", name, len(sources), parent)
		}

		if _, exists := obj.declared[parent]; !exists {
			reterr = errwrap.Append(reterr, &index.Error{
				Path:   winner.Decl.Path(),
				Pos:    winner.Decl.Position(),
				Reason: fmt.Sprintf("prototype %s inherits from undeclared prototype %s", name, parent),
			})
			continue
		}
		parents[name] = parent
		graph.AddEdge(pgraph.StrVertex(name.String()), pgraph.StrVertex(parent.String()), pgraph.StrEdge("inherits"))
	}
	if reterr != nil {
		return reterr
	}

	if _, err := graph.TopologicalSort(); err != nil {
		return &index.Error{
			Reason: fmt.Sprintf("inheritance cycle: %s", err),
		}
	}

	for _, name := range obj.names {
		chain := []pathname.QualifiedPrototypeName{name}
		for p, exists := parents[name]; exists; p, exists = parents[p] {
			chain = append(chain, p)
		}
		obj.prototypes[name] = &Prototype{
			Name:  name,
			Chain: chain,
		}
		obj.inheritance[name] = chain[1:]
	}
	return nil
}

// checkObjects makes sure that every object assignment uses a declared
// prototype.
func (obj *Model) checkObjects() error {
	var reterr error
	for _, path := range obj.index.Paths() {
		for _, entry := range obj.index.Declarations(path) {
			a, ok := entry.Decl.(*ast.Assignment)
			if !ok {
				continue
			}
			o, ok := a.Value.(*ast.Object)
			if !ok {
				continue
			}
			if _, exists := obj.declared[o.Prototype]; exists {
				continue
			}
			reterr = errwrap.Append(reterr, &index.Error{
				Path:   a.Path(),
				Pos:    a.Position(),
				Reason: fmt.Sprintf("unknown prototype %s", o.Prototype),
			})
		}
	}
	return reterr
}

// collectExtensions builds the scopes of every prototype extension which is
// not at the root, grouped by extended prototype in first seen order.
func (obj *Model) collectExtensions() {
	seen := make(map[string]struct{})
	for _, path := range obj.index.PathVariants() {
		name, ok := path.ExtendingPrototypeName()
		if !ok {
			continue
		}
		scope, err := NewExtensionScope(path, obj.inheritance)
		if err != nil {
			continue // can't happen, it extends a prototype
		}
		prototype := scope.Prototype()
		if prototype.IsRootPrototypePath() {
			continue
		}
		if _, exists := seen[prototype.Key()]; exists {
			continue
		}
		seen[prototype.Key()] = struct{}{}
		obj.extensions[name] = append(obj.extensions[name], scope)
	}
}

// Index returns the raw declaration index of the model.
func (obj *Model) Index() *index.Index { return obj.index }

// Prototype returns a resolved prototype.
func (obj *Model) Prototype(name pathname.QualifiedPrototypeName) (*Prototype, bool) {
	p, exists := obj.prototypes[name]
	return p, exists
}

// Prototypes returns the names of every prototype, sorted.
func (obj *Model) Prototypes() []pathname.QualifiedPrototypeName {
	out := make([]pathname.QualifiedPrototypeName, len(obj.names))
	copy(out, obj.names)
	return out
}

// Chain returns the prototype followed by its ancestors, nearest first. It is
// nil for an unknown prototype.
func (obj *Model) Chain(name pathname.QualifiedPrototypeName) []pathname.QualifiedPrototypeName {
	p, exists := obj.prototypes[name]
	if !exists {
		return nil
	}
	out := make([]pathname.QualifiedPrototypeName, len(p.Chain))
	copy(out, p.Chain)
	return out
}

// Inheritance returns the ancestors of every prototype, nearest first.
func (obj *Model) Inheritance() Inheritance {
	out := make(Inheritance)
	for k, v := range obj.inheritance {
		out[k] = append([]pathname.QualifiedPrototypeName{}, v...)
	}
	return out
}

// Extensions returns the extension scopes of a prototype.
func (obj *Model) Extensions(name pathname.QualifiedPrototypeName) []*ExtensionScope {
	return append([]*ExtensionScope{}, obj.extensions[name]...)
}

// Root returns the bases of the root path.
func (obj *Model) Root() []Base {
	return []Base{{Path: pathname.Root()}}
}

// PrototypeBases returns the bases of an object of a prototype at an
// evaluation path, lowest precedence first. Each level of the chain, furthest
// ancestor first, contributes its root declaration followed by its extensions
// which are in scope. The own bases come last, since declarations on a path
// win over declarations on a prototype.
func (obj *Model) PrototypeBases(name pathname.QualifiedPrototypeName, evaluationPath pathname.AbsolutePath, own []Base) []Base {
	bases := []Base{}
	chain := obj.Chain(name)
	for i := len(chain) - 1; i >= 0; i-- {
		level := chain[i]
		path := pathname.NewAbsolute(pathname.PrototypeCall(level))
		base := Base{Path: path}
		if reset := obj.reset(path, nil, false); reset != nil {
			base.After = reset.Rank
		}
		bases = append(bases, base)

		for _, scope := range obj.extensions[level] {
			if scope.IsInScope(evaluationPath) {
				bases = append(bases, Base{Path: scope.Prototype()})
			}
		}
	}
	return append(bases, own...)
}

// reset returns the highest ranked erasure, or copy if they are allowed, at a
// path which is visible after the given rank.
func (obj *Model) reset(path pathname.AbsolutePath, after ast.CodeIndex, copies bool) *index.Entry {
	var best *index.Entry
	for _, entry := range obj.index.Declarations(path) {
		switch entry.Decl.(type) {
		case *ast.Erasure:
		case *ast.Copy:
			if !copies {
				continue
			}
		default:
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

// Attribute resolves a single attribute key over some bases. The result is
// never nil, but it might not exist.
func (obj *Model) Attribute(bases []Base, key pathname.Segment) *Attribute {
	return obj.attribute(bases, key, make(map[string]struct{}))
}

func (obj *Model) attribute(bases []Base, key pathname.Segment, visiting map[string]struct{}) *Attribute {
	attr := &Attribute{Key: key}
	for _, b := range bases {
		path := b.Path.Append(key)
		after := b.After

		// root prototype copies are inheritance, not copies
		copies := !(b.Path.IsRoot() && key.IsPrototypeCall())
		if reset := obj.reset(path, after, copies); reset != nil {
			after = reset.Rank
			attr.Entry = nil
			attr.Bases = nil
			if c, ok := reset.Decl.(*ast.Copy); ok {
				source := obj.resolve(c.Source, visiting)
				attr.Entry = source.Entry
				attr.Bases = source.Bases
				attr.Copy = reset
			}
		}

		if entry := obj.index.EffectiveAfter(path, after); entry != nil {
			if _, ok := entry.Decl.(*ast.Assignment); ok {
				attr.Entry = entry
				attr.Copy = nil
			}
		}
		if obj.index.Visible(path, after) {
			attr.Bases = append(attr.Bases, Base{Path: path, After: after})
		}
	}
	return attr
}

// Resolve resolves an absolute path from the root, without looking into the
// prototypes of any objects on the way.
func (obj *Model) Resolve(path pathname.AbsolutePath) *Attribute {
	return obj.resolve(path, make(map[string]struct{}))
}

func (obj *Model) resolve(path pathname.AbsolutePath, visiting map[string]struct{}) *Attribute {
	if _, exists := visiting[path.Key()]; exists {
		obj.config.Logf("warning: copy cycle through %s", path)
		return &Attribute{}
	}
	visiting[path.Key()] = struct{}{}
	defer delete(visiting, path.Key())

	attr := &Attribute{Bases: obj.Root()}
	for _, segment := range path.Segments() {
		attr = obj.attribute(attr.Bases, segment, visiting)
	}
	return attr
}

// Keys returns the keys of all the attributes which exist over some bases. The
// order is the order they were first declared in, lowest precedence first.
// Prototype calls are not attributes and are never returned.
func (obj *Model) Keys(bases []Base) []pathname.Segment {
	seen := make(map[string]struct{})
	keys := []pathname.Segment{}
	for _, b := range bases {
		for _, segment := range obj.index.Children(b.Path) {
			if segment.IsPrototypeCall() {
				continue
			}
			k := segmentKey(segment)
			if _, exists := seen[k]; exists {
				continue
			}
			seen[k] = struct{}{}
			if !obj.Attribute(bases, segment).Exists() {
				continue
			}
			keys = append(keys, segment)
		}
	}
	return keys
}

// Meta resolves a meta attribute such as `@if` over some bases.
func (obj *Model) Meta(bases []Base, name string) *Attribute {
	return obj.Attribute(bases, pathname.Meta(name))
}

// Attributes resolves every existing attribute over some bases, in the order
// of Keys.
func (obj *Model) Attributes(bases []Base) []*Attribute {
	out := []*Attribute{}
	for _, key := range obj.Keys(bases) {
		out = append(out, obj.Attribute(bases, key))
	}
	return out
}
