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

package position

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fusionlang/fusion/pgraph"
	"github.com/fusionlang/fusion/util"
)

// Sorter produces one deterministic total order out of a set of keys and the
// positions of some of them. Keys without a position, and numeric positions,
// form the base sequence which is ordered naturally, so that "2" comes before
// "10". Before and after positions anchor a key next to another one, and start
// and end positions anchor it to the boundaries of the sequence. When several
// keys share an anchor and side, the lowest weight sits nearest the anchor.
type Sorter struct {
	// Keys is the set of keys to sort. Duplicates are ignored.
	Keys []string

	// Positions maps some of the keys to their position. Entries for keys
	// which are not in the set are ignored.
	Positions map[string]*KeyPosition
}

// Sort returns the keys in their total order. It errors with a *ConfigError if
// an anchor target doesn't exist or if the positions form a cycle.
func (obj *Sorter) Sort() ([]string, error) {
	keys := util.StrRemoveDuplicatesInList(obj.Keys)
	known := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		known[k] = struct{}{}
	}

	graph, err := pgraph.NewGraph("positions")
	if err != nil {
		return nil, err
	}

	base := []string{}
	starts := []string{}
	ends := []string{}
	befores := make(map[string][]string)
	afters := make(map[string][]string)

	for _, k := range keys {
		graph.AddVertex(pgraph.StrVertex(k))
		p := obj.position(k)
		if p == nil || p.Kind == Numeric {
			base = append(base, k)
			continue
		}
		switch p.Kind {
		case Start:
			starts = append(starts, k)
		case End:
			ends = append(ends, k)
		case Before, After:
			if _, exists := known[p.Target]; !exists {
				return nil, &ConfigError{Key: k, Reason: fmt.Sprintf("anchor target `%s` does not exist", p.Target)}
			}
			if p.Target == k {
				return nil, &ConfigError{Key: k, Reason: "key is positioned relative to itself"}
			}
			// the key must be placed after its target is resolved
			graph.AddEdge(pgraph.StrVertex(p.Target), pgraph.StrVertex(k), pgraph.StrEdge(p.Kind.String()))
			if p.Kind == Before {
				befores[p.Target] = append(befores[p.Target], k)
			} else {
				afters[p.Target] = append(afters[p.Target], k)
			}
		}
	}

	if _, err := graph.TopologicalSort(); err != nil {
		return nil, &ConfigError{Reason: "positions form a cycle", Err: err}
	}

	sort.SliceStable(base, func(i, j int) bool {
		return obj.baseCompare(base[i], base[j]) < 0
	})
	// lowest weight nearest the start boundary
	sort.SliceStable(starts, func(i, j int) bool {
		return obj.weightCompare(starts[i], starts[j]) < 0
	})
	// lowest weight nearest the end boundary, so it comes last
	sort.SliceStable(ends, func(i, j int) bool {
		return obj.weightCompare(ends[j], ends[i]) < 0
	})

	out := make([]string, 0, len(keys))
	var emit func(string)
	emit = func(k string) {
		bs := append([]string{}, befores[k]...)
		// furthest first, so the lowest weight ends up next to k
		sort.SliceStable(bs, func(i, j int) bool {
			wi, wj := obj.position(bs[i]).Weight, obj.position(bs[j]).Weight
			if wi != wj {
				return wi > wj
			}
			return util.NaturalCompare(bs[i], bs[j]) < 0
		})
		for _, b := range bs {
			emit(b)
		}

		out = append(out, k)

		as := append([]string{}, afters[k]...)
		sort.SliceStable(as, func(i, j int) bool {
			return obj.weightCompare(as[i], as[j]) < 0
		})
		for _, a := range as {
			emit(a)
		}
	}

	for _, k := range starts {
		emit(k)
	}
	for _, k := range base {
		emit(k)
	}
	for _, k := range ends {
		emit(k)
	}

	if len(out) != len(keys) { // programming error, cycles are caught above
		return nil, &ConfigError{Reason: fmt.Sprintf("sorted %d of %d keys", len(out), len(keys))}
	}
	return out, nil
}

// Comparator returns a comparison function which follows the total order. Keys
// which were not part of the sorted set compare naturally after all known keys.
func (obj *Sorter) Comparator() (func(a, b string) int, error) {
	order, err := obj.Sort()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(order))
	for i, k := range order {
		index[k] = i
	}
	return func(a, b string) int {
		i, okA := index[a]
		j, okB := index[b]
		switch {
		case okA && okB:
			return i - j
		case okA:
			return -1
		case okB:
			return 1
		}
		return util.NaturalCompare(a, b)
	}, nil
}

// position returns the position of a key, or nil.
func (obj *Sorter) position(k string) *KeyPosition {
	if obj.Positions == nil {
		return nil
	}
	return obj.Positions[k]
}

// sortName is the name used to order a key in the base sequence. Numeric
// positions sort by their value instead of by their name.
func (obj *Sorter) sortName(k string) string {
	if p := obj.position(k); p != nil && p.Kind == Numeric {
		return strconv.Itoa(p.Index)
	}
	return k
}

// baseCompare orders the base sequence.
func (obj *Sorter) baseCompare(a, b string) int {
	if c := util.NaturalCompare(obj.sortName(a), obj.sortName(b)); c != 0 {
		return c
	}
	return util.NaturalCompare(a, b)
}

// weightCompare orders by ascending weight, then naturally by name.
func (obj *Sorter) weightCompare(a, b string) int {
	wa, wb := obj.position(a).Weight, obj.position(b).Weight
	if wa != wb {
		if wa < wb {
			return -1
		}
		return 1
	}
	return util.NaturalCompare(a, b)
}

// ConfigError is returned when the positions can't be satisfied, because of a
// missing anchor target or a cycle.
type ConfigError struct {
	Key    string
	Reason string
	Err    error
}

// Error fulfills the error interface of this type.
func (obj *ConfigError) Error() string {
	msg := "invalid key positions"
	if obj.Key != "" {
		msg += fmt.Sprintf(" for key `%s`", obj.Key)
	}
	msg += ": " + obj.Reason
	if obj.Err != nil {
		msg += ": " + obj.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (obj *ConfigError) Unwrap() error { return obj.Err }
