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
	"strings"
)

// Code takes a code block as a backtick enclosed `heredoc` and removes the
// leading indentation of the first non-empty line from every line. This lets
// tests inline yaml documents and fusion paths without breaking the layout. It
// also drops the very first line if it is empty.
func Code(code string) string {
	lines := strings.Split(code, "\n")
	if len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	strip := ""
	for _, x := range lines {
		if strings.TrimSpace(x) == "" {
			continue
		}
		strip = x[:len(x)-len(strings.TrimLeft(x, "\t"))]
		break
	}

	output := make([]string, 0, len(lines))
	for _, x := range lines {
		output = append(output, strings.TrimPrefix(x, strip))
	}
	return strings.Join(output, "\n")
}
