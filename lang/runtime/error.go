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

package runtime

import (
	"fmt"
	"strings"

	"github.com/fusionlang/fusion/lang/index"
	"github.com/fusionlang/fusion/lang/pathname"
)

// Frame is one entry of the call stack of a request: the evaluation path which
// is being evaluated, and the declaration its value comes from.
type Frame struct {
	Path  pathname.AbsolutePath
	Entry *index.Entry // nil for applied values
}

// String returns the path, and the source position of the declaration if it is
// known.
func (obj Frame) String() string {
	if obj.Entry == nil {
		return obj.Path.String()
	}
	return fmt.Sprintf("%s (%s)", obj.Path, obj.Entry.Decl.Position())
}

// Error is an evaluation error. It carries the path where it happened and the
// call stack at that time. It aborts the whole request.
type Error struct {
	// Request is the id of the request.
	Request string

	Message string
	Path    pathname.AbsolutePath

	// Frames is the call stack, outermost first.
	Frames []Frame

	Cause error
}

// Error returns the message followed by the path trace.
func (obj *Error) Error() string {
	s := fmt.Sprintf("runtime error at %s: %s", obj.Path, obj.Message)
	if obj.Cause != nil {
		s += ": " + obj.Cause.Error()
	}
	if len(obj.Frames) > 0 {
		trace := []string{}
		for i := len(obj.Frames) - 1; i >= 0; i-- { // innermost first
			trace = append(trace, obj.Frames[i].String())
		}
		s += " (stack: " + strings.Join(trace, " <- ") + ")"
	}
	return s
}

// Unwrap returns the cause.
func (obj *Error) Unwrap() error { return obj.Cause }
