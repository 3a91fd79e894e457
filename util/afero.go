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

package util

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// FsTree returns a string representation of the file system tree similar to the
// well-known `tree` command. If suffix is not empty, only the files which end
// with it are shown. Entries are sorted by name.
func FsTree(fs afero.Fs, name, suffix string) (string, error) {
	str := ".\n" // top level dir
	s, err := stringify(fs, path.Clean(name), suffix, []bool{})
	if err != nil {
		return "", err
	}
	str += s
	return str, nil
}

func stringify(fs afero.Fs, name, suffix string, indent []bool) (string, error) {
	infos, err := afero.ReadDir(fs, name)
	if err != nil {
		return "", err
	}
	shown := infos[:0]
	for _, fi := range infos {
		if fi.IsDir() || suffix == "" || strings.HasSuffix(fi.Name(), suffix) {
			shown = append(shown, fi)
		}
	}

	str := ""
	for i, fi := range shown {
		for _, last := range indent {
			if last {
				str += "    "
			} else {
				str += "│   "
			}
		}

		header := "├── "
		last := i == len(shown)-1
		if last {
			header = "└── "
		}

		p := fi.Name()
		if fi.IsDir() {
			p += "/" // identify as a dir
		}
		str += fmt.Sprintf("%s%s\n", header, p)
		if fi.IsDir() {
			indented := append(append([]bool{}, indent...), last)
			s, err := stringify(fs, path.Join(name, p), suffix, indented)
			if err != nil {
				return "", err
			}
			str += s
		}
	}
	return str, nil
}
