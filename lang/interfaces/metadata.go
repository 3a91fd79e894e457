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

import (
	"fmt"
	"io"
	"strings"

	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util/errwrap"

	"gopkg.in/yaml.v2"
)

const (
	// MetadataFilename is the filename for the project metadata. This is
	// the ideal entry point for any running code.
	MetadataFilename = "fusion.yaml"

	// SourceDirectory is the default directory that declaration files are
	// loaded from, if the metadata lists no files.
	SourceDirectory = "src/"

	// DefaultMain is the default path that gets evaluated.
	DefaultMain = "/root"
)

// Metadata is a data structure representing the project metadata. Since it can
// get moved around to different filesystems, it should only contain relative
// paths.
type Metadata struct {
	// Main is the absolute fusion path which is evaluated when no path is
	// requested explicitly.
	Main string `yaml:"main"`

	// Files lists the declaration files in load order. Later files win
	// over earlier ones. If it is empty, every file in Source is loaded,
	// sorted by name.
	Files []string `yaml:"files"`

	// Source is the relative directory path that declaration files are
	// loaded from when Files is empty.
	Source string `yaml:"source"`

	// StrictInheritance makes ambiguous multiple inheritance an error.
	StrictInheritance bool `yaml:"strict-inheritance"`

	// SortMetaAttributes orders the @if and @process children of an
	// attribute by their @position instead of their declaration order.
	SortMetaAttributes bool `yaml:"sort-meta-attributes"`

	// Implementations maps prototype names to implementation names, for
	// prototypes without a @class.
	Implementations map[string]string `yaml:"implementations"`

	// metadataPath stores the absolute path to this metadata file as it is
	// parsed.
	metadataPath string

	// bug395 is a flag to workaround the terrible yaml parser resetting all
	// the default struct field values when it finds an empty yaml document.
	// We set this value to have a default of true, which enables us to know
	// if the document was empty or not, and if so, then we know this struct
	// was emptied, so we should then return a new struct with all defaults.
	// See: https://github.com/go-yaml/yaml/issues/395 for more information.
	bug395 bool
}

// DefaultMetadata returns the default metadata that is used for absent values.
func DefaultMetadata() *Metadata {
	return &Metadata{ // the defaults
		Main:   DefaultMain,
		Source: SourceDirectory,

		bug395: true, // workaround, lol
	}
}

// SetAbsSelfPath sets the absolute directory path to this metadata file.
func (obj *Metadata) SetAbsSelfPath(p string) error {
	obj.metadataPath = p
	return nil
}

// AbsSelfPath returns the absolute directory path of this metadata file, if it
// was set.
func (obj *Metadata) AbsSelfPath() string { return obj.metadataPath }

// ToBytes marshals the struct into a byte array and returns it.
func (obj *Metadata) ToBytes() ([]byte, error) {
	return yaml.Marshal(obj)
}

// UnmarshalYAML is the standard unmarshal method for this struct.
func (obj *Metadata) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type indirect Metadata // indirection to avoid infinite recursion
	def := DefaultMetadata()

	raw := indirect(*def) // convert; the defaults go here

	if err := unmarshal(&raw); err != nil {
		return err
	}

	*obj = Metadata(raw) // restore from indirection with type conversion!
	return nil
}

// ParseMetadata reads from some input and returns a *Metadata struct that
// contains plausible values to be used.
func ParseMetadata(reader io.Reader) (*Metadata, error) {
	metadata := DefaultMetadata() // populate this

	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read metadata")
	}
	if err := yaml.Unmarshal(b, metadata); err != nil {
		return nil, errwrap.Wrapf(err, "can't parse metadata")
	}

	if !metadata.bug395 { // workaround, lol
		// we must have gotten an empty document, so use a new default!
		metadata = DefaultMetadata()
	}

	if _, err := pathname.ParseAbsolute(metadata.Main); err != nil {
		return nil, errwrap.Wrapf(err, "the Main field must be an absolute fusion path")
	}
	for _, f := range metadata.Files {
		if f == "" || strings.HasPrefix(f, "/") || strings.HasSuffix(f, "/") {
			return nil, fmt.Errorf("the Files field must only contain relative file paths")
		}
	}
	if metadata.Source != "" && (strings.HasPrefix(metadata.Source, "/") || !strings.HasSuffix(metadata.Source, "/")) {
		return nil, fmt.Errorf("the Source field must be undefined or be a relative dir path")
	}
	for name, impl := range metadata.Implementations {
		if _, err := pathname.ParseQualifiedPrototypeName(name); err != nil {
			return nil, errwrap.Wrapf(err, "invalid prototype name in Implementations")
		}
		if impl == "" {
			return nil, fmt.Errorf("empty implementation for prototype `%s`", name)
		}
	}

	return metadata, nil
}
