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

// Package position implements the ordering mini-language of the `@position`
// meta attribute and the sorter which turns a set of keys into one total order.
package position

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the kind of a key position.
type Kind int

const (
	// Numeric positions sort by their value inside the base sequence.
	Numeric Kind = iota

	// Before positions anchor a key in front of a target key.
	Before

	// After positions anchor a key behind a target key.
	After

	// Start positions anchor a key to the start of the sequence.
	Start

	// End positions anchor a key to the end of the sequence.
	End
)

// String returns the keyword of this kind.
func (obj Kind) String() string {
	switch obj {
	case Numeric:
		return "numeric"
	case Before:
		return "before"
	case After:
		return "after"
	case Start:
		return "start"
	case End:
		return "end"
	}
	return fmt.Sprintf("Kind(%d)", int(obj))
}

var (
	numericPattern = regexp.MustCompile(`^\d+$`)
	anchorPattern  = regexp.MustCompile(`^(before|after)\s+([a-zA-Z0-9\-_:]+)(?:\s+(\d+))?$`)
	edgePattern    = regexp.MustCompile(`^(start|end)(?:\s+(\d+))?$`)
)

// KeyPosition is an immutable, parsed ordering directive.
type KeyPosition struct {
	Kind Kind

	// Index is the value of a numeric position.
	Index int

	// Target is the anchor key of before and after positions.
	Target string

	// Weight orders several positions of the same kind and anchor. It
	// defaults to zero.
	Weight int
}

// Parse parses the textual form of a key position. The grammar is:
// `<digits>` | `before <key> [<weight>]` | `after <key> [<weight>]` |
// `start [<weight>]` | `end [<weight>]`. Keywords are case-sensitive and
// surrounding whitespace is ignored.
func Parse(text string) (*KeyPosition, error) {
	s := strings.TrimSpace(text)

	if numericPattern.MatchString(s) {
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ParseError{Input: text, Reason: err.Error()}
		}
		return &KeyPosition{Kind: Numeric, Index: i}, nil
	}

	if m := anchorPattern.FindStringSubmatch(s); m != nil {
		weight, err := parseWeight(text, m[3])
		if err != nil {
			return nil, err
		}
		kind := Before
		if m[1] == "after" {
			kind = After
		}
		return &KeyPosition{Kind: kind, Target: m[2], Weight: weight}, nil
	}

	if m := edgePattern.FindStringSubmatch(s); m != nil {
		weight, err := parseWeight(text, m[2])
		if err != nil {
			return nil, err
		}
		kind := Start
		if m[1] == "end" {
			kind = End
		}
		return &KeyPosition{Kind: kind, Weight: weight}, nil
	}

	return nil, &ParseError{Input: text, Reason: "unknown position"}
}

// parseWeight parses an optional weight which defaults to zero.
func parseWeight(text, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	w, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Input: text, Reason: "invalid weight: " + err.Error()}
	}
	return w, nil
}

// String returns the canonical textual form, which parses back to an equal
// position.
func (obj *KeyPosition) String() string {
	switch obj.Kind {
	case Numeric:
		return strconv.Itoa(obj.Index)
	case Before, After:
		if obj.Weight == 0 {
			return fmt.Sprintf("%s %s", obj.Kind, obj.Target)
		}
		return fmt.Sprintf("%s %s %d", obj.Kind, obj.Target, obj.Weight)
	}
	if obj.Weight == 0 {
		return obj.Kind.String()
	}
	return fmt.Sprintf("%s %d", obj.Kind, obj.Weight)
}

// ParseError is returned when a position string can't be parsed.
type ParseError struct {
	Input  string
	Reason string
}

// Error fulfills the error interface of this type.
func (obj *ParseError) Error() string {
	return fmt.Sprintf("can't parse key position `%s`: %s", obj.Input, obj.Reason)
}
