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

package semantic

import (
	"fmt"
	"testing"

	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util"
)

func TestExtensionScope0(t *testing.T) {
	tag := pathname.MustParseQualifiedPrototypeName("A:Tag")
	special := pathname.MustParseQualifiedPrototypeName("A:Special")
	inheritance := Inheritance{
		special: {tag},
		tag:     {},
	}

	type test struct { // an individual test
		name string
		decl string
		eval string
		exp  bool
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "nested in a prototype",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).body.prototype(A:Tag)",
			exp:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "inherited prototype",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).body.prototype(A:Special)",
			exp:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "ancestor does not match descendant",
			decl: "/prototype(A:Page).body.prototype(A:Special).tagName",
			eval: "/page.prototype(A:Page).body.prototype(A:Tag)",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "different property",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).header.prototype(A:Tag)",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "deeper nesting",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).body.prototype(A:Tag).content.prototype(A:Tag)",
			exp:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "other outer prototype",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Other).body.prototype(A:Tag)",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "not an object",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).body",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "path rooted",
			decl: "/page.body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).body.prototype(A:Tag)",
			exp:  true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "path rooted elsewhere",
			decl: "/page.body.prototype(A:Tag).tagName",
			eval: "/other.prototype(A:Page).body.prototype(A:Tag)",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "no suffix match",
			decl: "/body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page).body.prototype(A:Tag)",
			exp:  false,
		})
	}
	{
		testCases = append(testCases, test{
			name: "evaluation path too short",
			decl: "/prototype(A:Page).body.prototype(A:Tag).tagName",
			eval: "/page.prototype(A:Page)",
			exp:  false,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			decl, eval, exp := tc.decl, tc.eval, tc.exp

			scope, err := NewExtensionScope(pathname.MustParseAbsolute(decl), inheritance)
			if err != nil {
				t.Errorf("test #%d: scope failed: %+v", index, err)
				return
			}
			if got := scope.IsInScope(pathname.MustParseAbsolute(eval)); got != exp {
				t.Errorf("test #%d: expected %t for %s in %s, got: %t", index, exp, eval, decl, got)
			}
		})
	}
}

func TestExtensionScopeNotExtending0(t *testing.T) {
	for _, s := range []string{"/prototype(A:Tag)", "/page.title", "/"} {
		if _, err := NewExtensionScope(pathname.MustParseAbsolute(s), nil); err == nil {
			t.Errorf("expected an error for: %s", s)
		}
	}
}
