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

package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup0(t *testing.T) {
	var ctx *Context // the empty context is valid
	_, exists := ctx.Lookup("a")
	assert.False(t, exists)
	assert.Equal(t, 0, ctx.Depth())
	assert.Equal(t, []string{}, ctx.Names())

	outer := ctx.Push(LayerOf("outer", map[string]interface{}{"a": 1, "b": 2}))
	inner := outer.Push(LayerOf("inner", map[string]interface{}{"a": "shadow"}))

	v, exists := inner.Lookup("a")
	assert.True(t, exists)
	assert.Equal(t, "shadow", v)
	v, _ = inner.Lookup("b")
	assert.Equal(t, 2, v)

	// the parent is unchanged
	v, _ = outer.Lookup("a")
	assert.Equal(t, 1, v)

	assert.Equal(t, []string{"a", "b"}, inner.Names())
	assert.Equal(t, map[string]interface{}{"a": "shadow", "b": 2}, inner.Flatten())
	assert.Equal(t, 2, inner.Depth())
	assert.Equal(t, "inner", inner.Layers()[0].Name())
}

func TestLayerCopies0(t *testing.T) {
	bindings := map[string]interface{}{"x": 1}
	layer := LayerOf("l", bindings)
	bindings["x"] = 2
	bindings["y"] = 3
	v, _ := layer.Lookup("x")
	assert.Equal(t, 1, v)
	_, exists := layer.Lookup("y")
	assert.False(t, exists)
	assert.Equal(t, "l{x}", layer.String())
}

func TestSharedParents0(t *testing.T) {
	base := Empty().Push(LayerOf("base", map[string]interface{}{"v": "base"}))
	a := base.Push(LayerOf("a", map[string]interface{}{"v": "a"}))
	b := base.Push(LayerOf("b", map[string]interface{}{"v": "b"}))
	va, _ := a.Lookup("v")
	vb, _ := b.Lookup("v")
	assert.Equal(t, "a", va)
	assert.Equal(t, "b", vb)
	assert.Equal(t, base, base.Push(nil))
}
