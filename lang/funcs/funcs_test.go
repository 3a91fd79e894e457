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

package funcs

import (
	"testing"

	"github.com/fusionlang/fusion/lang/interfaces"
	"github.com/fusionlang/fusion/util"
)

func TestRegister0(t *testing.T) {
	const name = "Test:Registered"
	Register(name, func() interfaces.ObjectImplementation {
		return interfaces.ObjectImplementationFunc(func(obj interfaces.Object) (interface{}, error) {
			return "ok", nil
		})
	})

	if !util.StrInList(name, RegisteredNames()) {
		t.Errorf("expected %s in the registered names", name)
	}
	impl, err := Lookup(name)
	if err != nil {
		t.Errorf("lookup failed: %+v", err)
		return
	}
	if v, err := impl.Evaluate(nil); err != nil || v != "ok" {
		t.Errorf("unexpected result: %v, %v", v, err)
	}
	if _, exists := Implementations()[name]; !exists {
		t.Errorf("expected %s in the implementations", name)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic on a duplicate registration")
		}
	}()
	Register(name, nil)
}

func TestLookupMissing0(t *testing.T) {
	if _, err := Lookup("Test:Missing"); err == nil {
		t.Errorf("expected an error")
	}
}
