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

package pathname

import (
	"fmt"
	"strings"
)

// segmentsString joins the textual form of the segments.
func segmentsString(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, Separator)
}

// segmentsKey joins the identity form of the segments.
func segmentsKey(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.key())
	}
	return strings.Join(parts, Separator)
}

// segmentsEqual compares two segment lists.
func segmentsEqual(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// hasPrefix returns true if the prefix segments start the list.
func hasPrefix(segments, prefix []Segment) bool {
	if len(prefix) > len(segments) {
		return false
	}
	return segmentsEqual(segments[:len(prefix)], prefix)
}

// lastPrototypeCall returns the index of the last prototype call, or -1.
func lastPrototypeCall(segments []Segment) int {
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i].IsPrototypeCall() {
			return i
		}
	}
	return -1
}

// extensionIndex returns the index of the last prototype call when it is not
// the terminal segment. A path only extends a prototype if there are segments
// after the call.
func extensionIndex(segments []Segment) (int, bool) {
	i := lastPrototypeCall(segments)
	if i == -1 || i == len(segments)-1 {
		return -1, false
	}
	return i, true
}

// clone copies a segment list so that paths never share backing arrays.
func clone(segments []Segment, extra ...Segment) []Segment {
	out := make([]Segment, 0, len(segments)+len(extra))
	out = append(out, segments...)
	return append(out, extra...)
}

// AbsolutePath is a path anchored at the root of the declaration tree. The zero
// value is the root path.
type AbsolutePath struct {
	segments []Segment
}

// Root returns the empty absolute path.
func Root() AbsolutePath { return AbsolutePath{} }

// NewAbsolute builds an absolute path out of the given segments.
func NewAbsolute(segments ...Segment) AbsolutePath {
	return AbsolutePath{segments: clone(segments)}
}

// IsAbsolute returns true for absolute paths.
func (obj AbsolutePath) IsAbsolute() bool { return true }

// Segments returns a copy of the segments of this path.
func (obj AbsolutePath) Segments() []Segment { return clone(obj.segments) }

// Len returns the number of segments.
func (obj AbsolutePath) Len() int { return len(obj.segments) }

// Segment returns the segment at index i.
func (obj AbsolutePath) Segment(i int) Segment { return obj.segments[i] }

// IsRoot returns true for the empty path.
func (obj AbsolutePath) IsRoot() bool { return len(obj.segments) == 0 }

// String returns the readable form, which is the inverse of ParseAbsolute.
func (obj AbsolutePath) String() string {
	return AbsolutePrefix + segmentsString(obj.segments)
}

// Key returns a string which identifies this path. Two equal paths have the
// same key, even if their names were quoted differently. Use it for map keys.
func (obj AbsolutePath) Key() string {
	return AbsolutePrefix + segmentsKey(obj.segments)
}

// Equal compares two absolute paths segment by segment.
func (obj AbsolutePath) Equal(other AbsolutePath) bool {
	return segmentsEqual(obj.segments, other.segments)
}

// Last returns the terminal segment. It panics on the root path.
func (obj AbsolutePath) Last() Segment {
	return obj.segments[len(obj.segments)-1]
}

// Parent returns the path without its terminal segment. The parent of the root
// is the root.
func (obj AbsolutePath) Parent() AbsolutePath {
	if obj.IsRoot() {
		return obj
	}
	return AbsolutePath{segments: clone(obj.segments[:len(obj.segments)-1])}
}

// Nested returns true if the path has more than one segment.
func (obj AbsolutePath) Nested() bool { return len(obj.segments) > 1 }

// RootPath returns the path made of the first segment only.
func (obj AbsolutePath) RootPath() AbsolutePath {
	if obj.IsRoot() {
		return obj
	}
	return AbsolutePath{segments: clone(obj.segments[:1])}
}

// PropertyPath returns the terminal segment as a relative path. This is the
// key under which the path appears as an attribute of its parent.
func (obj AbsolutePath) PropertyPath() RelativePath {
	if obj.IsRoot() {
		return RelativePath{}
	}
	return RelativePath{segments: []Segment{obj.Last()}}
}

// Append returns a new path with the segments added at the end.
func (obj AbsolutePath) Append(segments ...Segment) AbsolutePath {
	return AbsolutePath{segments: clone(obj.segments, segments...)}
}

// AppendPath returns a new path with the relative path added at the end.
func (obj AbsolutePath) AppendPath(rel RelativePath) AbsolutePath {
	return obj.Append(rel.segments...)
}

// IsAnyChildOf returns true if this path is strictly below the base.
func (obj AbsolutePath) IsAnyChildOf(base AbsolutePath) bool {
	return len(obj.segments) > len(base.segments) && hasPrefix(obj.segments, base.segments)
}

// RelativeTo returns the relative path which leads from the base to this path.
// It errors if this path is neither the base nor one of its descendants.
func (obj AbsolutePath) RelativeTo(base AbsolutePath) (RelativePath, error) {
	if !hasPrefix(obj.segments, base.segments) {
		return RelativePath{}, fmt.Errorf("path %s is not a descendant of %s", obj, base)
	}
	return RelativePath{segments: clone(obj.segments[len(base.segments):])}, nil
}

// EndsWith returns true if the terminal segments equal the suffix.
func (obj AbsolutePath) EndsWith(suffix RelativePath) bool {
	if len(suffix.segments) > len(obj.segments) {
		return false
	}
	return segmentsEqual(obj.segments[len(obj.segments)-len(suffix.segments):], suffix.segments)
}

// AllParentPaths returns the ancestors of this path, nearest first. Neither the
// path itself nor the empty root is included.
func (obj AbsolutePath) AllParentPaths() []AbsolutePath {
	out := []AbsolutePath{}
	for i := len(obj.segments) - 1; i > 0; i-- {
		out = append(out, AbsolutePath{segments: clone(obj.segments[:i])})
	}
	return out
}

// AllParentPathsRootFirst returns the ancestors of this path, root first. This
// is the order in which path variants are enumerated.
func (obj AbsolutePath) AllParentPathsRootFirst() []AbsolutePath {
	out := []AbsolutePath{}
	for i := 1; i < len(obj.segments); i++ {
		out = append(out, AbsolutePath{segments: clone(obj.segments[:i])})
	}
	return out
}

// ExtendingPrototypeName returns the last prototype call, if it is not the
// terminal segment.
func (obj AbsolutePath) ExtendingPrototypeName() (QualifiedPrototypeName, bool) {
	i, ok := extensionIndex(obj.segments)
	if !ok {
		return QualifiedPrototypeName{}, false
	}
	return obj.segments[i].Prototype, true
}

// IsRootPrototypePath returns true if this path is exactly one prototype call,
// such as `/prototype(A:B)`.
func (obj AbsolutePath) IsRootPrototypePath() bool {
	return len(obj.segments) == 1 && obj.segments[0].IsPrototypeCall()
}

// RootPrototypeName returns the prototype name of a root prototype path.
func (obj AbsolutePath) RootPrototypeName() (QualifiedPrototypeName, bool) {
	if !obj.IsRootPrototypePath() {
		return QualifiedPrototypeName{}, false
	}
	return obj.segments[0].Prototype, true
}

// PrototypeExtensionScopePathSegments returns the segments before the last
// prototype call, which is where the extension applies.
func (obj AbsolutePath) PrototypeExtensionScopePathSegments() ([]Segment, bool) {
	i, ok := extensionIndex(obj.segments)
	if !ok {
		return nil, false
	}
	return clone(obj.segments[:i]), true
}

// PrototypeExtensionPrototypePathSegments returns the segments up to and
// including the last prototype call.
func (obj AbsolutePath) PrototypeExtensionPrototypePathSegments() ([]Segment, bool) {
	i, ok := extensionIndex(obj.segments)
	if !ok {
		return nil, false
	}
	return clone(obj.segments[:i+1]), true
}

// PrototypeExtensionValuePathSegmentRange returns the half open range of the
// segments after the last prototype call, which is the value path inside the
// extended prototype.
func (obj AbsolutePath) PrototypeExtensionValuePathSegmentRange() (int, int, bool) {
	i, ok := extensionIndex(obj.segments)
	if !ok {
		return 0, 0, false
	}
	return i + 1, len(obj.segments), true
}

// PrototypeCallCount returns the number of prototype call segments.
func (obj AbsolutePath) PrototypeCallCount() int {
	count := 0
	for _, s := range obj.segments {
		if s.IsPrototypeCall() {
			count++
		}
	}
	return count
}

// RelativePath is a path with no root anchor. The zero value is the empty
// relative path.
type RelativePath struct {
	segments []Segment
}

// NewRelative builds a relative path out of the given segments.
func NewRelative(segments ...Segment) RelativePath {
	return RelativePath{segments: clone(segments)}
}

// IsAbsolute returns false for relative paths.
func (obj RelativePath) IsAbsolute() bool { return false }

// Segments returns a copy of the segments of this path.
func (obj RelativePath) Segments() []Segment { return clone(obj.segments) }

// Len returns the number of segments.
func (obj RelativePath) Len() int { return len(obj.segments) }

// Segment returns the segment at index i.
func (obj RelativePath) Segment(i int) Segment { return obj.segments[i] }

// IsEmpty returns true for the empty relative path.
func (obj RelativePath) IsEmpty() bool { return len(obj.segments) == 0 }

// String returns the readable form, which is the inverse of ParseRelative.
func (obj RelativePath) String() string {
	return Separator + segmentsString(obj.segments)
}

// Key returns a string which identifies this path. Use it for map keys.
func (obj RelativePath) Key() string {
	return Separator + segmentsKey(obj.segments)
}

// Equal compares two relative paths segment by segment.
func (obj RelativePath) Equal(other RelativePath) bool {
	return segmentsEqual(obj.segments, other.segments)
}

// First returns the first segment. It panics on the empty path.
func (obj RelativePath) First() Segment { return obj.segments[0] }

// Last returns the terminal segment. It panics on the empty path.
func (obj RelativePath) Last() Segment { return obj.segments[len(obj.segments)-1] }

// Nested returns true if the path has more than one segment.
func (obj RelativePath) Nested() bool { return len(obj.segments) > 1 }

// Append returns a new path with the segments added at the end.
func (obj RelativePath) Append(segments ...Segment) RelativePath {
	return RelativePath{segments: clone(obj.segments, segments...)}
}

// AppendPath returns a new path with the relative path added at the end.
func (obj RelativePath) AppendPath(rel RelativePath) RelativePath {
	return obj.Append(rel.segments...)
}

// IsAnyChildOf returns true if this path is strictly below the base.
func (obj RelativePath) IsAnyChildOf(base RelativePath) bool {
	return len(obj.segments) > len(base.segments) && hasPrefix(obj.segments, base.segments)
}

// RelativeTo returns the relative path which leads from the base to this path.
func (obj RelativePath) RelativeTo(base RelativePath) (RelativePath, error) {
	if !hasPrefix(obj.segments, base.segments) {
		return RelativePath{}, fmt.Errorf("path %s is not a descendant of %s", obj, base)
	}
	return RelativePath{segments: clone(obj.segments[len(base.segments):])}, nil
}

// EndsWith returns true if the terminal segments equal the suffix.
func (obj RelativePath) EndsWith(suffix RelativePath) bool {
	if len(suffix.segments) > len(obj.segments) {
		return false
	}
	return segmentsEqual(obj.segments[len(obj.segments)-len(suffix.segments):], suffix.segments)
}

// AllParentPaths returns the ancestors of this path, nearest first, without the
// path itself or the empty path.
func (obj RelativePath) AllParentPaths() []RelativePath {
	out := []RelativePath{}
	for i := len(obj.segments) - 1; i > 0; i-- {
		out = append(out, RelativePath{segments: clone(obj.segments[:i])})
	}
	return out
}
