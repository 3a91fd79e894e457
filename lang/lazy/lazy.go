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

// Package lazy contains the memoized and cancellable evaluation units that the
// runtime builds its evaluation chains out of.
package lazy

import (
	"fmt"
	"sync"

	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util"
)

// ErrCancelled is returned when the value of a cancelled node is read. A
// cancelled node is a normal outcome, and callers should check Cancelled
// before they read the value.
const ErrCancelled = util.Error("evaluation was cancelled")

// Producer computes the value of a node.
type Producer func() (interface{}, error)

// Node is a lazy evaluation unit. The producer runs at most once, even when the
// node is read concurrently, and every reader observes the same result.
type Node struct {
	path        pathname.AbsolutePath
	description string
	cancelled   bool

	mutex    *sync.Mutex
	producer Producer
	done     bool
	value    interface{}
	err      error
}

// New builds a node which runs the producer when it is first read.
func New(path pathname.AbsolutePath, description string, producer Producer) *Node {
	return &Node{
		path:        path,
		description: description,
		mutex:       &sync.Mutex{},
		producer:    producer,
	}
}

// Of builds a node with a value which is already known.
func Of(path pathname.AbsolutePath, value interface{}) *Node {
	return &Node{
		path:        path,
		description: "value",
		mutex:       &sync.Mutex{},
		done:        true,
		value:       value,
	}
}

// Cancelled builds a node which is cancelled from the start.
func Cancelled(path pathname.AbsolutePath, description string) *Node {
	return &Node{
		path:        path,
		description: description,
		cancelled:   true,
		mutex:       &sync.Mutex{},
	}
}

// Path returns the evaluation path of the node, for diagnostics.
func (obj *Node) Path() pathname.AbsolutePath { return obj.path }

// Description returns what the node computes, for diagnostics.
func (obj *Node) Description() string { return obj.description }

// String returns a short representation for log messages.
func (obj *Node) String() string {
	if obj.cancelled {
		return fmt.Sprintf("%s(%s) cancelled", obj.description, obj.path)
	}
	return fmt.Sprintf("%s(%s)", obj.description, obj.path)
}

// CancelEvaluation returns a new cancelled node for the same path. The producer
// of the receiver is never run because of it.
func (obj *Node) CancelEvaluation() *Node {
	return Cancelled(obj.path, obj.description)
}

// Cancelled returns true if this node was cancelled.
func (obj *Node) Cancelled() bool { return obj.cancelled }

// Value runs the producer if it hasn't run yet and returns its result. It
// returns ErrCancelled without running anything if the node is cancelled.
func (obj *Node) Value() (interface{}, error) {
	if obj.cancelled {
		return nil, ErrCancelled
	}
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	if !obj.done {
		obj.value, obj.err = obj.producer()
		obj.done = true
		obj.producer = nil // release what it captured
	}
	return obj.value, obj.err
}

// Computed returns true once the value is known.
func (obj *Node) Computed() bool {
	if obj.cancelled {
		return false
	}
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return obj.done
}

// MapResult builds a node which applies a function to the value of this one.
// If this node is cancelled, the result is cancelled and the function is never
// called. Otherwise the function runs once, the first time the result is read.
// An error of this node is passed on without calling the function.
func (obj *Node) MapResult(description string, f func(interface{}) (interface{}, error)) *Node {
	if obj.cancelled {
		return Cancelled(obj.path, description)
	}
	return New(obj.path, description, func() (interface{}, error) {
		value, err := obj.Value()
		if err != nil {
			return nil, err
		}
		return f(value)
	})
}
