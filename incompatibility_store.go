// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

import (
	"fmt"
	"sort"
)

// keyIndexEntry holds every incompatibility seen for a given key, in
// insertion order.
type keyIndexEntry struct {
	key  Name
	refs []*Incompatibility
}

// incompatibilityStore is an append-only collection of incompatibilities
// with stable addresses: once recorded, an *Incompatibility is never moved
// or reallocated, so references held by ConflictCause and by the partial
// solution's assignments remain valid for the life of a solve. A secondary
// index, kept sorted by key for binary-search insertion, maps each key to
// every incompatibility that mentions it.
type incompatibilityStore struct {
	all   []*Incompatibility
	index []*keyIndexEntry
}

func newIncompatibilityStore() *incompatibilityStore {
	return &incompatibilityStore{}
}

func (s *incompatibilityStore) findEntry(key Name) (*keyIndexEntry, int) {
	pos := sort.Search(len(s.index), func(i int) bool {
		return s.index[i].key.Value() >= key.Value()
	})
	if pos < len(s.index) && s.index[pos].key == key {
		return s.index[pos], pos
	}
	return nil, pos
}

// Record appends ic to the store and indexes it under every key it mentions.
func (s *incompatibilityStore) Record(ic *Incompatibility) *Incompatibility {
	s.all = append(s.all, ic)

	seen := make(map[Name]bool, len(ic.Terms))
	for _, term := range ic.Terms {
		if seen[term.Name] {
			continue
		}
		seen[term.Name] = true

		entry, pos := s.findEntry(term.Name)
		if entry == nil {
			entry = &keyIndexEntry{key: term.Name}
			s.index = append(s.index, nil)
			copy(s.index[pos+1:], s.index[pos:])
			s.index[pos] = entry
		}
		entry.refs = append(entry.refs, ic)
	}
	return ic
}

// ForKey returns every incompatibility indexed under key, in insertion order.
// It panics if the key was never seen, matching the reference store's
// assertion that callers only ever query keys that have appeared in some
// recorded incompatibility.
func (s *incompatibilityStore) ForKey(key Name) []*Incompatibility {
	entry, _ := s.findEntry(key)
	if entry == nil {
		panic(fmt.Sprintf("pubgrub: incompatibility store has no entries for key %q", key.Value()))
	}
	return entry.refs
}

// Linearize produces a topologically ordered list of the conflict DAG rooted
// at root: every ConflictCause's Left and Right precede it, and root itself
// is last. This is the representation the failure explainer walks.
func (s *incompatibilityStore) Linearize(root *Incompatibility) []*Incompatibility {
	order := make([]*Incompatibility, 0, len(s.all))
	seen := make(map[*Incompatibility]bool, len(s.all))

	var visit func(ic *Incompatibility)
	visit = func(ic *Incompatibility) {
		if seen[ic] {
			return
		}
		seen[ic] = true
		if cc, ok := ic.Cause.(ConflictCause); ok {
			visit(cc.Left)
			visit(cc.Right)
		}
		order = append(order, ic)
	}
	visit(root)
	return order
}
