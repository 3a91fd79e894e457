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

// Package pathname implements the typed, immutable path addresses used by the
// fusion language. A path is an ordered list of segments which are either
// properties, meta properties (written `@name`) or prototype calls (written
// `prototype(Namespace:Name)`). Absolute paths print with a leading slash and
// relative paths with a leading dot, so `/page.body.@if.hasContent` and
// `.body.content` are both valid textual forms.
package pathname

import (
	"fmt"
	"regexp"
	"strings"
)

// SegmentKind is the kind of a path segment.
type SegmentKind int

const (
	// PropertySegment is a plain property name such as `body`.
	PropertySegment SegmentKind = iota

	// MetaPropertySegment is a meta property such as `@if`.
	MetaPropertySegment

	// PrototypeCallSegment is a prototype call such as `prototype(A:B)`.
	PrototypeCallSegment
)

// String returns a human readable name for the kind.
func (obj SegmentKind) String() string {
	switch obj {
	case PropertySegment:
		return "property"
	case MetaPropertySegment:
		return "meta"
	case PrototypeCallSegment:
		return "prototype"
	}
	return fmt.Sprintf("SegmentKind(%d)", int(obj))
}

// Quoting records how a property name was written in the source.
type Quoting int

const (
	// QuotingNone is a bare name.
	QuotingNone Quoting = iota

	// QuotingSingle is a name wrapped in single quotes.
	QuotingSingle

	// QuotingDouble is a name wrapped in double quotes.
	QuotingDouble
)

const (
	// MetaPrefix is the textual prefix of a meta property segment.
	MetaPrefix = "@"

	// PrototypeCallPrefix opens a prototype call segment.
	PrototypeCallPrefix = "prototype("

	// PrototypeCallSuffix closes a prototype call segment.
	PrototypeCallSuffix = ")"

	// AbsolutePrefix is the textual prefix of an absolute path.
	AbsolutePrefix = "/"

	// Separator separates segments in the textual form.
	Separator = "."
)

var (
	// namePattern is what an unquoted segment name must match.
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_:]+$`)

	// prototypeNamePattern is what a qualified prototype name must match.
	prototypeNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.:]+$`)
)

// ValidName returns true if the name can be written without quotes.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// QualifiedPrototypeName is a `namespace:simpleName` pair. The namespace may be
// empty.
type QualifiedPrototypeName struct {
	Namespace string
	Name      string
}

// ParseQualifiedPrototypeName splits a prototype name on its last colon.
func ParseQualifiedPrototypeName(s string) (QualifiedPrototypeName, error) {
	s = strings.TrimSpace(s)
	if !prototypeNamePattern.MatchString(s) {
		return QualifiedPrototypeName{}, &ParseError{Input: s, Reason: "invalid prototype name"}
	}
	i := strings.LastIndex(s, ":")
	if i == -1 {
		return QualifiedPrototypeName{Name: s}, nil
	}
	qn := QualifiedPrototypeName{Namespace: s[:i], Name: s[i+1:]}
	if qn.Name == "" {
		return QualifiedPrototypeName{}, &ParseError{Input: s, Reason: "empty simple prototype name"}
	}
	return qn, nil
}

// MustParseQualifiedPrototypeName is like ParseQualifiedPrototypeName but it
// panics on error. It is meant for constants and tests.
func MustParseQualifiedPrototypeName(s string) QualifiedPrototypeName {
	qn, err := ParseQualifiedPrototypeName(s)
	if err != nil {
		panic(err)
	}
	return qn
}

// String returns the `Namespace:Name` form.
func (obj QualifiedPrototypeName) String() string {
	if obj.Namespace == "" {
		return obj.Name
	}
	return obj.Namespace + ":" + obj.Name
}

// IsZero returns true if this is the empty name.
func (obj QualifiedPrototypeName) IsZero() bool {
	return obj.Namespace == "" && obj.Name == ""
}

// Segment is a single element of a path.
type Segment struct {
	Kind SegmentKind

	// Name is the property or meta property name. It is empty for
	// prototype calls.
	Name string

	// Quoting is how the name was written. It is not part of the identity.
	Quoting Quoting

	// Prototype is only set for prototype calls.
	Prototype QualifiedPrototypeName
}

// Property builds a property segment.
func Property(name string) Segment {
	return Segment{Kind: PropertySegment, Name: name}
}

// Meta builds a meta property segment. The name is given without the `@`.
func Meta(name string) Segment {
	return Segment{Kind: MetaPropertySegment, Name: name}
}

// PrototypeCall builds a prototype call segment.
func PrototypeCall(name QualifiedPrototypeName) Segment {
	return Segment{Kind: PrototypeCallSegment, Prototype: name}
}

// Equal compares two segments. Quoting is ignored.
func (obj Segment) Equal(other Segment) bool {
	return obj.Kind == other.Kind && obj.Name == other.Name && obj.Prototype == other.Prototype
}

// IsProperty returns true for plain properties.
func (obj Segment) IsProperty() bool { return obj.Kind == PropertySegment }

// IsMeta returns true for meta properties.
func (obj Segment) IsMeta() bool { return obj.Kind == MetaPropertySegment }

// IsPrototypeCall returns true for prototype calls.
func (obj Segment) IsPrototypeCall() bool { return obj.Kind == PrototypeCallSegment }

// String returns the textual form of this segment. Names which can't be written
// bare get quoted, with their original quote character when possible.
func (obj Segment) String() string {
	switch obj.Kind {
	case MetaPropertySegment:
		return MetaPrefix + obj.Name
	case PrototypeCallSegment:
		return PrototypeCallPrefix + obj.Prototype.String() + PrototypeCallSuffix
	}
	if ValidName(obj.Name) && obj.Quoting == QuotingNone {
		return obj.Name
	}
	if obj.Quoting == QuotingSingle && !strings.Contains(obj.Name, "'") {
		return "'" + obj.Name + "'"
	}
	if !strings.Contains(obj.Name, `"`) {
		return `"` + obj.Name + `"`
	}
	return "'" + obj.Name + "'"
}

// key returns the identity form of this segment, which ignores quoting.
func (obj Segment) key() string {
	if obj.Kind == PropertySegment && ValidName(obj.Name) {
		return obj.Name
	}
	if obj.Kind == PropertySegment {
		return fmt.Sprintf("%q", obj.Name)
	}
	return obj.String()
}

// ParseSegment parses the textual form of a single segment.
func ParseSegment(s string) (Segment, error) {
	if s == "" {
		return Segment{}, &ParseError{Input: s, Reason: "empty segment"}
	}
	switch {
	case strings.HasPrefix(s, MetaPrefix):
		name := s[len(MetaPrefix):]
		if !ValidName(name) {
			return Segment{}, &ParseError{Input: s, Reason: "invalid meta property name"}
		}
		return Meta(name), nil

	case strings.HasPrefix(s, PrototypeCallPrefix):
		if !strings.HasSuffix(s, PrototypeCallSuffix) {
			return Segment{}, &ParseError{Input: s, Reason: "unterminated prototype call"}
		}
		inner := s[len(PrototypeCallPrefix) : len(s)-len(PrototypeCallSuffix)]
		qn, err := ParseQualifiedPrototypeName(inner)
		if err != nil {
			return Segment{}, &ParseError{Input: s, Reason: "invalid prototype call"}
		}
		return PrototypeCall(qn), nil

	case s[0] == '\'' || s[0] == '"':
		q := s[0]
		if len(s) < 2 || s[len(s)-1] != q {
			return Segment{}, &ParseError{Input: s, Reason: "unbalanced quotes"}
		}
		name := s[1 : len(s)-1]
		if strings.IndexByte(name, q) != -1 {
			return Segment{}, &ParseError{Input: s, Reason: "unbalanced quotes"}
		}
		quoting := QuotingDouble
		if q == '\'' {
			quoting = QuotingSingle
		}
		return Segment{Kind: PropertySegment, Name: name, Quoting: quoting}, nil
	}

	if !ValidName(s) {
		return Segment{}, &ParseError{Input: s, Reason: "invalid property name"}
	}
	return Property(s), nil
}

// splitSegments splits the body of a path (without its absolute or relative
// prefix) on the separator, ignoring separators inside quotes and prototype
// calls.
func splitSegments(s string) ([]string, error) {
	parts := []string{}
	if s == "" {
		return parts, nil
	}
	var quote byte
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, &ParseError{Input: s, Reason: "unbalanced parentheses"}
			}
		case c == '.' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, &ParseError{Input: s, Reason: "unbalanced quotes"}
	}
	if depth != 0 {
		return nil, &ParseError{Input: s, Reason: "unbalanced parentheses"}
	}
	parts = append(parts, s[start:])
	return parts, nil
}

// parseSegments parses every segment of a path body.
func parseSegments(body string) ([]Segment, error) {
	parts, err := splitSegments(body)
	if err != nil {
		return nil, err
	}
	segments := make([]Segment, 0, len(parts))
	for _, p := range parts {
		seg, err := ParseSegment(p)
		if err != nil {
			if perr, ok := err.(*ParseError); ok {
				perr.Input = body // report the whole path
			}
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Path is implemented by both AbsolutePath and RelativePath.
type Path interface {
	fmt.Stringer

	// IsAbsolute returns true for absolute paths.
	IsAbsolute() bool

	// Segments returns a copy of the segments of this path.
	Segments() []Segment
}

// Parse parses the textual form of a path. A leading slash makes it absolute,
// otherwise it is relative and an optional leading dot is dropped.
func Parse(text string) (Path, error) {
	if strings.HasPrefix(text, AbsolutePrefix) {
		return ParseAbsolute(text)
	}
	return ParseRelative(text)
}

// ParseAbsolute parses the textual form of an absolute path.
func ParseAbsolute(text string) (AbsolutePath, error) {
	if !strings.HasPrefix(text, AbsolutePrefix) {
		return AbsolutePath{}, &ParseError{Input: text, Reason: "absolute paths must start with " + AbsolutePrefix}
	}
	segments, err := parseSegments(text[len(AbsolutePrefix):])
	if err != nil {
		return AbsolutePath{}, err
	}
	return AbsolutePath{segments: segments}, nil
}

// ParseRelative parses the textual form of a relative path.
func ParseRelative(text string) (RelativePath, error) {
	if strings.HasPrefix(text, AbsolutePrefix) {
		return RelativePath{}, &ParseError{Input: text, Reason: "relative paths must not start with " + AbsolutePrefix}
	}
	body := strings.TrimPrefix(text, Separator)
	segments, err := parseSegments(body)
	if err != nil {
		return RelativePath{}, err
	}
	return RelativePath{segments: segments}, nil
}

// MustParseAbsolute is like ParseAbsolute but it panics on error. It is meant
// for constants and tests.
func MustParseAbsolute(text string) AbsolutePath {
	p, err := ParseAbsolute(text)
	if err != nil {
		panic(err)
	}
	return p
}

// MustParseRelative is like ParseRelative but it panics on error. It is meant
// for constants and tests.
func MustParseRelative(text string) RelativePath {
	p, err := ParseRelative(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseError is returned when the text of a path can't be parsed.
type ParseError struct {
	Input  string
	Reason string
}

// Error fulfills the error interface of this type.
func (obj *ParseError) Error() string {
	return fmt.Sprintf("can't parse path `%s`: %s", obj.Input, obj.Reason)
}
