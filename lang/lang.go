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

// Package lang is the main entry point of the language. It loads the
// declarations, builds the index and the semantic model, and evaluates paths.
package lang

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/core"
	"github.com/fusionlang/fusion/lang/funcs"
	"github.com/fusionlang/fusion/lang/index"
	"github.com/fusionlang/fusion/lang/interfaces"
	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/loader"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/lang/runtime"
	"github.com/fusionlang/fusion/lang/semantic"
	"github.com/fusionlang/fusion/lang/types"
	"github.com/fusionlang/fusion/prometheus"
	"github.com/fusionlang/fusion/util"
	"github.com/fusionlang/fusion/util/errwrap"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"
)

// Lang is the main language object.
type Lang struct {
	Fs afero.Fs // fs where the input exists

	// Input specifies what to load. If it is the path to a metadata file,
	// or to a directory which contains one, then the files listed by the
	// metadata are loaded. If it is a directory without metadata, every
	// declaration file in it is loaded. Otherwise it must be a single
	// declaration file.
	Input string

	// Dsl evaluates embedded dsl snippets. It is optional.
	Dsl interfaces.DslHandler

	// Cache is the runtime cache. It is optional.
	Cache interfaces.Cache

	// Metrics is optional. It must already be initialized.
	Metrics *prometheus.Metrics

	Debug bool
	Logf  func(format string, v ...interface{})

	metadata *interfaces.Metadata
	files    []string
	index    *index.Index
	model    *semantic.Model
	runtime  *runtime.Runtime
}

// Init loads the input and builds everything that is needed to evaluate it.
func (obj *Lang) Init() error {
	if obj.Fs == nil {
		obj.Fs = afero.NewOsFs()
	}
	if obj.Input == "" {
		return fmt.Errorf("the Input is empty")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}

	names, err := obj.resolve()
	if err != nil {
		return errwrap.Wrapf(err, "could not resolve the input")
	}
	obj.files = names
	if obj.Debug {
		obj.Logf("input: %s", obj.Input)
		if base := obj.metadata.AbsSelfPath(); base != "" {
			if tree, err := util.FsTree(obj.Fs, base, loader.DotFileNameExtension); err == nil {
				obj.Logf("input tree:\n%s", tree)
			}
		}
	}

	obj.Logf("loading...")
	builtins, err := core.Files()
	if err != nil {
		return errwrap.Wrapf(err, "could not load the core declarations")
	}
	l := &loader.Loader{
		Fs:    obj.Fs,
		Debug: obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("loader: "+format, v...)
		},
	}
	files, err := l.LoadFiles(names...)
	if err != nil {
		return errwrap.Wrapf(err, "could not load the declarations")
	}
	all := append([]*ast.File{}, builtins...)
	all = append(all, files...) // user files win

	obj.Logf("indexing...")
	if obj.index, err = index.Build(all...); err != nil {
		return errwrap.Wrapf(err, "could not build the index")
	}

	obj.Logf("building the model...")
	obj.model, err = semantic.NewModel(obj.index, &semantic.Config{
		StrictInheritance: obj.metadata.StrictInheritance,
		Debug:             obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("model: "+format, v...)
		},
	})
	if err != nil {
		return errwrap.Wrapf(err, "could not build the model")
	}
	if obj.Debug {
		obj.Logf("prototypes: %s", spew.Sdump(obj.model.Prototypes()))
	}

	obj.runtime = &runtime.Runtime{
		Model:              obj.model,
		Implementations:    funcs.Implementations(),
		Aliases:            obj.metadata.Implementations,
		Dsl:                obj.Dsl,
		Cache:              obj.Cache,
		Metrics:            obj.Metrics,
		SortMetaAttributes: obj.metadata.SortMetaAttributes,
		Debug:              obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("runtime: "+format, v...)
		},
	}
	if err := obj.runtime.Init(); err != nil {
		return errwrap.Wrapf(err, "could not init the runtime")
	}
	return nil
}

// resolve finds the metadata and the list of files to load.
func (obj *Lang) resolve() ([]string, error) {
	input := obj.Input
	fi, err := obj.Fs.Stat(input)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() {
		metadataFile := path.Join(input, interfaces.MetadataFilename)
		if _, err := obj.Fs.Stat(metadataFile); err == nil {
			return obj.fromMetadata(metadataFile)
		} else if !os.IsNotExist(err) {
			return nil, err
		}
		// a plain directory of declaration files
		obj.metadata = interfaces.DefaultMetadata()
		obj.metadata.Source = ""
		obj.metadata.SetAbsSelfPath(dirPath(input))
		return obj.dir(dirPath(input))
	}

	if path.Base(input) == interfaces.MetadataFilename {
		return obj.fromMetadata(input)
	}
	if !strings.HasSuffix(input, loader.DotFileNameExtension) {
		return nil, fmt.Errorf("input `%s` is not a declaration file", input)
	}
	obj.metadata = interfaces.DefaultMetadata()
	obj.metadata.SetAbsSelfPath(dirPath(path.Dir(input)))
	return []string{input}, nil
}

// fromMetadata parses a metadata file and lists the files it points to.
func (obj *Lang) fromMetadata(metadataFile string) ([]string, error) {
	f, err := obj.Fs.Open(metadataFile)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not open the metadata")
	}
	defer f.Close()
	metadata, err := interfaces.ParseMetadata(f)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not parse the metadata at %s", metadataFile)
	}
	base := dirPath(path.Dir(metadataFile))
	metadata.SetAbsSelfPath(base)
	obj.metadata = metadata

	if len(metadata.Files) == 0 {
		return obj.dir(base + metadata.Source)
	}
	names := []string{}
	for _, name := range metadata.Files {
		names = append(names, base+name)
	}
	return names, nil
}

// dir lists the declaration files in a directory, sorted by name.
func (obj *Lang) dir(dir string) ([]string, error) {
	infos, err := afero.ReadDir(obj.Fs, dir)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read directory `%s`", dir)
	}
	names := []string{}
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), loader.DotFileNameExtension) {
			continue
		}
		if info.Name() == interfaces.MetadataFilename {
			continue
		}
		names = append(names, dirPath(dir)+info.Name())
	}
	return names, nil
}

// Evaluate evaluates a path, or the main path of the metadata if it is empty.
// A cancelled or missing result is nil.
func (obj *Lang) Evaluate(p string, ctx *layers.Context, typ *types.Type) (interface{}, error) {
	if p == "" {
		p = obj.metadata.Main
	}
	absolute, err := pathname.ParseAbsolute(p)
	if err != nil {
		return nil, err
	}
	return obj.runtime.Evaluate(absolute, ctx, typ)
}

// Metadata returns the metadata in use.
func (obj *Lang) Metadata() *interfaces.Metadata { return obj.metadata }

// Files returns the names of the loaded files, in load order.
func (obj *Lang) Files() []string { return append([]string{}, obj.files...) }

// Index returns the raw declaration index.
func (obj *Lang) Index() *index.Index { return obj.index }

// Model returns the semantic model.
func (obj *Lang) Model() *semantic.Model { return obj.model }

// dirPath makes sure a directory path ends with a slash.
func dirPath(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
