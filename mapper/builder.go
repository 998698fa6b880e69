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

package mapper

import (
	"fmt"
	"strings"

	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/mapper/internal/segmenttrie"
	"dirpx.dev/osreason/reason"
)

// Source names the tier a status was resolved from.
type Source string

const (
	SourceOverride Source = "override"
	SourcePrefix   Source = "prefix"
	SourceDefault  Source = "default"
	SourceFallback Source = "fallback"
)

type prefixRule[T any] struct {
	prefix string
	val    T
}

// table holds the rules for one transport. While building, rules collects
// prefix rules; compile turns them into tries and the table is read-only
// from then on.
type table[T any] struct {
	defaults map[code.Code]T
	override map[code.Code]T
	rules    map[code.Code][]prefixRule[T]
	tries    map[code.Code]*segmenttrie.Trie[T]
	fallback T
}

func newTable[T any](defaults map[code.Code]T, fallback T) *table[T] {
	t := &table[T]{
		defaults: make(map[code.Code]T, len(defaults)),
		override: make(map[code.Code]T),
		rules:    make(map[code.Code][]prefixRule[T]),
		fallback: fallback,
	}
	for k, v := range defaults {
		t.defaults[k] = v
	}
	return t
}

func (t *table[T]) addPrefix(c code.Code, prefix string, v T) {
	t.rules[c] = append(t.rules[c], prefixRule[T]{prefix, v})
}

// compile builds the per-code tries. transport only labels errors.
func (t *table[T]) compile(transport string) error {
	t.tries = make(map[code.Code]*segmenttrie.Trie[T], len(t.rules))
	for c, rules := range t.rules {
		tr := segmenttrie.New[T]()
		for _, r := range rules {
			p, err := normalizePrefix(r.prefix)
			if err != nil {
				return fmt.Errorf("mapper: invalid %s reason prefix %q for code %q: %w", transport, r.prefix, c, err)
			}
			if err := tr.Insert(p, r.val); err != nil {
				return fmt.Errorf("mapper: cannot insert %s prefix %q for code %q: %w", transport, p, c, err)
			}
		}
		t.tries[c] = tr
	}
	t.rules = nil
	return nil
}

// resolve applies override, then prefix, then default, then fallback.
func (t *table[T]) resolve(c code.Code, r reason.Reason) (v T, src Source, pattern string) {
	if v, ok := t.override[c]; ok {
		return v, SourceOverride, ""
	}
	if tr := t.tries[c]; tr != nil {
		if v, ok, p := tr.MatchWithPattern(string(r)); ok {
			return v, SourcePrefix, p
		}
	}
	if v, ok := t.defaults[c]; ok {
		return v, SourceDefault, ""
	}
	return t.fallback, SourceFallback, ""
}

// normalizePrefix canonicalizes a rule prefix the way reasons are
// canonicalized. Segment syntax is left to the trie.
func normalizePrefix(raw string) (string, error) {
	p := reason.Normalize(raw)
	if p == "" {
		return "", fmt.Errorf("empty prefix")
	}
	if n := strings.Count(p, ".") + 1; n > reason.MaxSegments {
		return "", fmt.Errorf("%d segments, at most %d allowed", n, reason.MaxSegments)
	}
	return p, nil
}
