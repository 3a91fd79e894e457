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

//go:build !root

package position

import (
	"fmt"
	"testing"

	"github.com/fusionlang/fusion/util"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
)

func TestParse0(t *testing.T) {
	type test struct { // an individual test
		name string
		text string
		fail bool
		exp  *KeyPosition
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "numeric",
			text: "42",
			exp:  &KeyPosition{Kind: Numeric, Index: 42},
		})
	}
	{
		testCases = append(testCases, test{
			name: "before with weight",
			text: "before foo 100",
			exp:  &KeyPosition{Kind: Before, Target: "foo", Weight: 100},
		})
	}
	{
		testCases = append(testCases, test{
			name: "after default weight",
			text: "  after some-key  ",
			exp:  &KeyPosition{Kind: After, Target: "some-key"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "start",
			text: "start",
			exp:  &KeyPosition{Kind: Start},
		})
	}
	{
		testCases = append(testCases, test{
			name: "end with weight",
			text: "end 7",
			exp:  &KeyPosition{Kind: End, Weight: 7},
		})
	}
	{
		testCases = append(testCases, test{
			name: "unknown",
			text: "some unknown position string",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "keywords are case sensitive",
			text: "Before foo",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "missing target",
			text: "before",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "negative numbers are not positions",
			text: "-1",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "empty",
			text: "",
			fail: true,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			p, err := Parse(tc.text)
			if !tc.fail && err != nil {
				t.Errorf("test #%d: parse failed with: %+v", index, err)
				return
			}
			if tc.fail && err == nil {
				t.Errorf("test #%d: parse passed, expected fail", index)
				return
			}
			if tc.fail {
				if _, ok := err.(*ParseError); !ok {
					t.Errorf("test #%d: unexpected error type: %T", index, err)
				}
				return
			}
			if diff := pretty.Compare(tc.exp, p); diff != "" {
				t.Errorf("test #%d: position differs (-want +got):\n%s", index, diff)
			}
			// the canonical form parses back to the same position
			again, err := Parse(p.String())
			if err != nil {
				t.Errorf("test #%d: reparse of %s failed: %+v", index, p, err)
				return
			}
			assert.Equal(t, p, again)
		})
	}
}

// positions parses a map of position strings for the sorter tests.
func positions(t *testing.T, m map[string]string) map[string]*KeyPosition {
	out := make(map[string]*KeyPosition)
	for k, s := range m {
		p, err := Parse(s)
		if err != nil {
			t.Fatalf("could not parse position %s: %+v", s, err)
		}
		out[k] = p
	}
	return out
}

func TestSorter0(t *testing.T) {
	type test struct { // an individual test
		name      string
		keys      []string
		positions map[string]string
		fail      bool
		exp       []string
	}
	testCases := []test{}
	keys := []string{"1", "2", "3", "4", "10", "20", "a", "b", "c", "d"}

	{
		testCases = append(testCases, test{
			name: "before with weights",
			keys: keys,
			positions: map[string]string{
				"a": "before 3",
				"b": "before 3 100",
				"c": "before 10 99999",
				"d": "before c",
			},
			exp: []string{"1", "2", "b", "a", "3", "4", "d", "c", "10", "20"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "after with weights",
			keys: keys,
			positions: map[string]string{
				"a": "after 3",
				"b": "after 3 100",
				"c": "after 10 99999",
				"d": "after c",
			},
			exp: []string{"1", "2", "3", "a", "b", "4", "10", "c", "d", "20"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "alphanumeric fallback",
			keys: []string{"c", "b", "a"},
			exp:  []string{"a", "b", "c"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "start and end",
			keys: []string{"a", "b", "c", "s1", "s2", "e1", "e2"},
			positions: map[string]string{
				"s1": "start",
				"s2": "start 10",
				"e1": "end",
				"e2": "end 10",
			},
			exp: []string{"s1", "s2", "a", "b", "c", "e2", "e1"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "numeric positions sort by value",
			keys: []string{"a", "b", "z", "y"},
			positions: map[string]string{
				"z": "1",
				"y": "20",
			},
			exp: []string{"z", "y", "a", "b"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "anchored to a start key",
			keys: []string{"a", "s", "x"},
			positions: map[string]string{
				"s": "start",
				"x": "after s",
			},
			exp: []string{"s", "x", "a"},
		})
	}
	{
		testCases = append(testCases, test{
			name: "missing anchor",
			keys: []string{"a", "b"},
			positions: map[string]string{
				"a": "before nope",
			},
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "cycle",
			keys: []string{"a", "b", "c"},
			positions: map[string]string{
				"a": "before b",
				"b": "after a",
			},
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "self reference",
			keys: []string{"a"},
			positions: map[string]string{
				"a": "after a",
			},
			fail: true,
		})
	}

	for index, tc := range testCases { // run all the tests
		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			sorter := &Sorter{
				Keys:      tc.keys,
				Positions: positions(t, tc.positions),
			}
			out, err := sorter.Sort()
			if !tc.fail && err != nil {
				t.Errorf("test #%d: sort failed with: %+v", index, err)
				return
			}
			if tc.fail && err == nil {
				t.Errorf("test #%d: sort passed, expected fail: %v", index, out)
				return
			}
			if tc.fail {
				if _, ok := err.(*ConfigError); !ok {
					t.Errorf("test #%d: unexpected error type: %T", index, err)
				}
				return
			}
			if diff := pretty.Compare(tc.exp, out); diff != "" {
				t.Errorf("test #%d: order differs (-want +got):\n%s", index, diff)
			}
		})
	}
}

func TestComparator0(t *testing.T) {
	sorter := &Sorter{
		Keys:      []string{"b", "a", "c"},
		Positions: positions(t, map[string]string{"c": "start"}),
	}
	cmp, err := sorter.Comparator()
	if err != nil {
		t.Errorf("comparator failed: %+v", err)
		return
	}
	assert.True(t, cmp("c", "a") < 0)
	assert.True(t, cmp("a", "b") < 0)
	assert.True(t, cmp("b", "unknown") < 0)
	assert.True(t, cmp("x", "y") < 0)
	assert.Equal(t, 0, cmp("a", "a"))
}
