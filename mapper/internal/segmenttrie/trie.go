/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package segmenttrie indexes dot-separated reason prefixes for
// longest-prefix matching. A "*" segment in a prefix matches exactly one
// reason segment.
package segmenttrie

import (
	"errors"
	"strings"
)

// ErrInvalidPrefix is returned by Insert for an empty prefix, an empty or
// malformed segment, or a prefix made only of wildcards.
var ErrInvalidPrefix = errors.New("segmenttrie: invalid prefix")

const wildcard = "*"

// Trie maps prefixes to values. It is not safe for concurrent Insert; once
// built it may be matched from any number of goroutines.
type Trie[T any] struct {
	children map[string]*Trie[T]
	hasVal   bool
	val      T
	pattern  string
}

// New returns an empty Trie.
func New[T any]() *Trie[T] {
	return &Trie[T]{children: make(map[string]*Trie[T])}
}

// Insert binds prefix to val, replacing any earlier value for it.
func (t *Trie[T]) Insert(prefix string, val T) error {
	if t == nil || prefix == "" {
		return ErrInvalidPrefix
	}
	segs := strings.Split(prefix, ".")
	concrete := false
	for _, s := range segs {
		if s == wildcard {
			continue
		}
		if !validSegment(s) {
			return ErrInvalidPrefix
		}
		concrete = true
	}
	if !concrete {
		return ErrInvalidPrefix
	}

	n := t
	for _, s := range segs {
		next, ok := n.children[s]
		if !ok {
			next = New[T]()
			n.children[s] = next
		}
		n = next
	}
	n.hasVal, n.val, n.pattern = true, val, prefix
	return nil
}

// Match returns the value of the deepest prefix matching reason.
func (t *Trie[T]) Match(reason string) (T, bool) {
	v, ok, _ := t.MatchWithPattern(reason)
	return v, ok
}

// MatchWithPattern is Match that also returns the matching prefix as it was
// inserted. When an exact and a wildcard path reach the same depth the
// exact one wins.
func (t *Trie[T]) MatchWithPattern(reason string) (T, bool, string) {
	var zero T
	if t == nil {
		return zero, false, ""
	}
	best, _ := t.walk(reason, 0, nil, -1)
	if best == nil {
		return zero, false, ""
	}
	return best.val, true, best.pattern
}

// walk descends along rest and returns the deepest node holding a value,
// or best if none below t is deeper than bestDepth.
func (t *Trie[T]) walk(rest string, depth int, best *Trie[T], bestDepth int) (*Trie[T], int) {
	if t.hasVal && depth > bestDepth {
		best, bestDepth = t, depth
	}
	if rest == "" {
		return best, bestDepth
	}
	seg, tail, _ := strings.Cut(rest, ".")
	if !validSegment(seg) {
		return best, bestDepth
	}
	if next, ok := t.children[seg]; ok {
		best, bestDepth = next.walk(tail, depth+1, best, bestDepth)
	}
	if next, ok := t.children[wildcard]; ok {
		best, bestDepth = next.walk(tail, depth+1, best, bestDepth)
	}
	return best, bestDepth
}

// validSegment reports whether s matches [a-z][a-z0-9_]*.
func validSegment(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}
