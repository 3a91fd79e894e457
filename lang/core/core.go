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

// Package core contains the built-in object implementations and the prototype
// declarations which come with them.
package core

import (
	"embed"
	"io/fs"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/loader"
	"github.com/fusionlang/fusion/util/errwrap"

	// import so the implementations register
	_ "github.com/fusionlang/fusion/lang/core/case"
	_ "github.com/fusionlang/fusion/lang/core/datastructure"
	_ "github.com/fusionlang/fusion/lang/core/join"
	_ "github.com/fusionlang/fusion/lang/core/value"
)

//go:embed */*.yaml
var declarations embed.FS

// AssetNames returns a flattened list of embedded declaration file paths.
func AssetNames() ([]string, error) {
	fileSystem := declarations
	paths := []string{}
	if err := fs.WalkDir(fileSystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() { // skip the dirs
			return nil
		}
		paths = append(paths, path)
		return nil
	}); err != nil {
		return nil, err
	}
	return paths, nil
}

// Asset returns the contents of an embedded declaration file.
func Asset(name string) ([]byte, error) {
	return declarations.ReadFile(name)
}

// Files parses every embedded declaration file. They come before any user file
// so that user declarations override them.
func Files() ([]*ast.File, error) {
	names, err := AssetNames()
	if err != nil {
		return nil, err
	}
	files := []*ast.File{}
	for _, name := range names {
		data, err := Asset(name)
		if err != nil {
			return nil, errwrap.Wrapf(err, "can't read %s", name)
		}
		file, err := loader.Parse("core/"+name, data)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
