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

package lazy

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fusionlang/fusion/lang/pathname"

	"github.com/stretchr/testify/assert"
)

var testPath = pathname.MustParseAbsolute("/a.b")

func TestAtMostOnce0(t *testing.T) {
	var calls int64
	node := New(testPath, "test", func() (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		return "hello", nil
	})
	assert.False(t, node.Computed())

	wg := &sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := node.Value()
			assert.NoError(t, err)
			assert.Equal(t, "hello", value)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	assert.True(t, node.Computed())
}

func TestMemoizedError0(t *testing.T) {
	calls := 0
	node := New(testPath, "test", func() (interface{}, error) {
		calls++
		return nil, fmt.Errorf("boom")
	})
	for i := 0; i < 3; i++ {
		if _, err := node.Value(); err == nil {
			t.Errorf("expected an error")
		}
	}
	assert.Equal(t, 1, calls)
}

func TestCancel0(t *testing.T) {
	calls := 0
	node := New(testPath, "test", func() (interface{}, error) {
		calls++
		return 42, nil
	})
	cancelled := node.CancelEvaluation()
	assert.True(t, cancelled.Cancelled())
	assert.False(t, node.Cancelled())

	_, err := cancelled.Value()
	assert.Equal(t, ErrCancelled, err)
	assert.Equal(t, 0, calls)

	mapped := cancelled.MapResult("map", func(v interface{}) (interface{}, error) {
		t.Errorf("mapper of a cancelled node was called")
		return v, nil
	})
	assert.True(t, mapped.Cancelled())
	assert.Equal(t, testPath, mapped.Path())
	assert.Equal(t, 0, calls)
}

func TestMapResult0(t *testing.T) {
	calls, maps := 0, 0
	node := New(testPath, "test", func() (interface{}, error) {
		calls++
		return 20, nil
	})
	mapped := node.MapResult("double", func(v interface{}) (interface{}, error) {
		maps++
		return v.(int) * 2, nil
	})
	assert.Equal(t, 0, calls, "mapping is lazy")
	assert.Equal(t, 0, maps, "mapping is lazy")

	for i := 0; i < 2; i++ {
		value, err := mapped.Value()
		assert.NoError(t, err)
		assert.Equal(t, 40, value)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, maps)
	assert.Equal(t, "double", mapped.Description())

	failing := New(testPath, "fail", func() (interface{}, error) {
		return nil, fmt.Errorf("boom")
	}).MapResult("map", func(v interface{}) (interface{}, error) {
		t.Errorf("mapper was called after an error")
		return v, nil
	})
	_, err := failing.Value()
	assert.Error(t, err)
}

func TestOf0(t *testing.T) {
	node := Of(testPath, "x")
	assert.True(t, node.Computed())
	value, err := node.Value()
	assert.NoError(t, err)
	assert.Equal(t, "x", value)
	assert.Equal(t, "value(/a.b)", node.String())
}
