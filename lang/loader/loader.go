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

// Package loader reads declaration trees from yaml documents. The concrete
// syntax of the language is not parsed here. Instead each document is a list of
// already structured declarations, which is the same contract that a parser
// would fulfill: every declaration has a path, a code index that is unique
// among its siblings, and a source position.
//
// A document looks like this:
//
//	- configure: prototype(Vendor:Page)
//	  body:
//	    - assign: tagName
//	      value: html
//	- assign: page
//	  object: Vendor:Page
//	  body:
//	    - assign: title
//	      expr: ${upper(name)}
//	- copy: other
//	  from: /page
//	- erase: page.title
//
// Paths are relative to the enclosing declaration unless they start with a
// slash. The code index defaults to the position in the list, and may be set
// explicitly with the `index` key.
package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util/errwrap"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// FileNameExtension is the filename extension used for declaration files.
	FileNameExtension = "yaml"

	// DotFileNameExtension is the filename extension with a dot prefix.
	DotFileNameExtension = "." + FileNameExtension
)

// keys of the declaration mappings
const (
	keyAssign    = "assign"
	keyConfigure = "configure"
	keyCopy      = "copy"
	keyErase     = "erase"
	keyValue     = "value"
	keyExpr      = "expr"
	keyObject    = "object"
	keyDsl       = "dsl"
	keyCode      = "code"
	keyFrom      = "from"
	keyBody      = "body"
	keyIndex     = "index"
)

// Loader reads declaration files from a filesystem.
type Loader struct {
	// Fs is the filesystem to read from.
	Fs afero.Fs

	Debug bool
	Logf  func(format string, v ...interface{})
}

// LoadFile reads and parses a single declaration file.
func (obj *Loader) LoadFile(name string) (*ast.File, error) {
	if obj.Fs == nil {
		return nil, fmt.Errorf("no filesystem")
	}
	b, err := afero.ReadFile(obj.Fs, name)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read declaration file `%s`", name)
	}
	file, err := Parse(name, b)
	if err != nil {
		return nil, err
	}
	if obj.Debug {
		obj.Logf("loaded %s", file)
	}
	return file, nil
}

// LoadFiles reads every named file in order.
func (obj *Loader) LoadFiles(names ...string) ([]*ast.File, error) {
	files := []*ast.File{}
	for _, name := range names {
		file, err := obj.LoadFile(name)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// LoadDir reads every declaration file in a directory, sorted by name.
func (obj *Loader) LoadDir(dir string) ([]*ast.File, error) {
	infos, err := afero.ReadDir(obj.Fs, dir) // sorted by filename
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read directory `%s`", dir)
	}
	names := []string{}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), DotFileNameExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(dir, "/")+"/"+info.Name())
	}
	return obj.LoadFiles(names...)
}

// ParseReader is like Parse, but it reads from an io.Reader.
func ParseReader(name string, reader io.Reader) (*ast.File, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read `%s`", name)
	}
	return Parse(name, b)
}

// Parse builds the declaration tree of a single document.
func Parse(name string, data []byte) (*ast.File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errwrap.Wrapf(err, "can't parse `%s`", name)
	}
	file := &ast.File{Name: name}
	if root.Kind == 0 || len(root.Content) == 0 { // empty document
		return file, nil
	}

	p := &parser{filename: name}
	decls, err := p.list(pathname.Root(), root.Content[0])
	if err != nil {
		return nil, err
	}
	file.Declarations = decls
	return file, nil
}

// Error is returned when a document does not describe valid declarations.
type Error struct {
	Pos    ast.Pos
	Reason string
}

// Error returns the error message.
func (obj *Error) Error() string {
	return fmt.Sprintf("%s: %s", obj.Pos, obj.Reason)
}

type parser struct {
	filename string
}

func (obj *parser) pos(node *yaml.Node) ast.Pos {
	return ast.Pos{
		Line:     node.Line,
		Column:   node.Column,
		Filename: obj.filename,
	}
}

func (obj *parser) errorf(node *yaml.Node, format string, v ...interface{}) error {
	return &Error{
		Pos:    obj.pos(node),
		Reason: fmt.Sprintf(format, v...),
	}
}

// list parses a sequence of declarations in the scope of a path.
func (obj *parser) list(scope pathname.AbsolutePath, node *yaml.Node) ([]ast.Declaration, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, obj.errorf(node, "expected a list of declarations")
	}
	decls := []ast.Declaration{}
	for i, item := range node.Content {
		decl, err := obj.declaration(scope, i, item)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// fields returns the values of a mapping by key.
func (obj *parser) fields(node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, obj.errorf(node, "expected a declaration mapping")
	}
	fields := make(map[string]*yaml.Node)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if _, exists := fields[k.Value]; exists {
			return nil, obj.errorf(k, "duplicate key `%s`", k.Value)
		}
		fields[k.Value] = v
	}
	return fields, nil
}

// path resolves a path text in the scope of a path.
func (obj *parser) path(scope pathname.AbsolutePath, node *yaml.Node) (pathname.AbsolutePath, error) {
	p, err := pathname.Parse(node.Value)
	if err != nil {
		return pathname.AbsolutePath{}, obj.errorf(node, "%s", err)
	}
	switch x := p.(type) {
	case pathname.AbsolutePath:
		return x, nil
	case pathname.RelativePath:
		if x.IsEmpty() {
			return pathname.AbsolutePath{}, obj.errorf(node, "empty path")
		}
		return scope.AppendPath(x), nil
	}
	return pathname.AbsolutePath{}, obj.errorf(node, "unexpected path type %T", p)
}

func (obj *parser) declaration(scope pathname.AbsolutePath, i int, node *yaml.Node) (ast.Declaration, error) {
	fields, err := obj.fields(node)
	if err != nil {
		return nil, err
	}

	kinds := []string{}
	for _, k := range []string{keyAssign, keyConfigure, keyCopy, keyErase} {
		if _, exists := fields[k]; exists {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) != 1 {
		return nil, obj.errorf(node, "expected exactly one of assign, configure, copy or erase")
	}
	kind := kinds[0]

	target, err := obj.path(scope, fields[kind])
	if err != nil {
		return nil, err
	}
	meta := ast.Meta{
		Target: target,
		Index:  i,
		Pos:    obj.pos(node),
	}
	if x, exists := fields[keyIndex]; exists {
		var index int
		if err := x.Decode(&index); err != nil {
			return nil, obj.errorf(x, "invalid code index: %s", err)
		}
		meta.Index = index
	}

	var body *ast.Body
	if x, exists := fields[keyBody]; exists {
		if kind == keyErase {
			return nil, obj.errorf(x, "an erasure can't have a body")
		}
		decls, err := obj.list(target, x)
		if err != nil {
			return nil, err
		}
		body = &ast.Body{Declarations: decls}
	}

	switch kind {
	case keyAssign:
		value, err := obj.value(node, fields)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Meta: meta, Value: value, Nested: body}, nil

	case keyConfigure:
		if body == nil {
			body = &ast.Body{}
		}
		return &ast.Configuration{Meta: meta, Nested: body}, nil

	case keyCopy:
		from, exists := fields[keyFrom]
		if !exists {
			return nil, obj.errorf(node, "a copy needs a `%s` path", keyFrom)
		}
		source, err := obj.path(scope, from)
		if err != nil {
			return nil, err
		}
		return &ast.Copy{Meta: meta, Source: source, Nested: body}, nil

	case keyErase:
		return &ast.Erasure{Meta: meta}, nil
	}
	return nil, obj.errorf(node, "unknown declaration kind `%s`", kind)
}

// value parses the right hand side of an assignment.
func (obj *parser) value(node *yaml.Node, fields map[string]*yaml.Node) (ast.Value, error) {
	found := []string{}
	for _, k := range []string{keyValue, keyExpr, keyObject, keyDsl} {
		if _, exists := fields[k]; exists {
			found = append(found, k)
		}
	}
	if len(found) != 1 {
		return nil, obj.errorf(node, "an assignment needs exactly one of value, expr, object or dsl")
	}

	x := fields[found[0]]
	switch found[0] {
	case keyValue:
		return obj.primitive(x)

	case keyExpr:
		code := x.Value
		if !strings.Contains(code, "${") { // a bare expression
			code = "${" + code + "}"
		}
		return &ast.Expression{Code: code}, nil

	case keyObject:
		name, err := pathname.ParseQualifiedPrototypeName(x.Value)
		if err != nil {
			return nil, obj.errorf(x, "%s", err)
		}
		return &ast.Object{Prototype: name}, nil

	case keyDsl:
		code, exists := fields[keyCode]
		if !exists {
			return nil, obj.errorf(x, "a dsl value needs `%s`", keyCode)
		}
		return &ast.Dsl{Identifier: x.Value, Code: code.Value}, nil
	}
	return nil, obj.errorf(node, "unknown value kind")
}

// primitive converts a yaml scalar into a literal value.
func (obj *parser) primitive(node *yaml.Node) (*ast.Primitive, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, obj.errorf(node, "a primitive value must be a scalar")
	}
	switch node.ShortTag() {
	case "!!null":
		return &ast.Primitive{V: nil}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, obj.errorf(node, "invalid bool: %s", err)
		}
		return &ast.Primitive{V: b}, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, obj.errorf(node, "invalid int: %s", err)
		}
		return &ast.Primitive{V: i}, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, obj.errorf(node, "invalid float: %s", err)
		}
		return &ast.Primitive{V: f}, nil
	}
	return &ast.Primitive{V: node.Value}, nil
}
