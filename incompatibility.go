// Copyright 2024 The University of Queensland
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
	"strings"
)

// IncompatibilityCause records the provenance of an Incompatibility: a root
// requirement, an unavailable candidate, a dependency edge, or the resolvent
// of two earlier incompatibilities.
type IncompatibilityCause interface {
	isIncompatibilityCause()
}

// RootCause marks the synthetic incompatibility seeded from a root requirement.
type RootCause struct{}

// UnavailableCause marks an incompatibility recorded because the provider had
// no candidate for a requirement.
type UnavailableCause struct{}

// DependencyCause marks an incompatibility recorded from a candidate's
// dependency edge.
type DependencyCause struct{}

// ConflictCause marks an incompatibility derived by resolution on the
// satisfier stack; Left and Right reference two strictly earlier
// incompatibilities in the store.
type ConflictCause struct {
	Left  *Incompatibility
	Right *Incompatibility
}

func (RootCause) isIncompatibilityCause()       {}
func (UnavailableCause) isIncompatibilityCause() {}
func (DependencyCause) isIncompatibilityCause()  {}
func (ConflictCause) isIncompatibilityCause()    {}

// Incompatibility is an ordered, key-coalesced conjunction of terms meaning
// "never all true". It is immutable after construction: the terms slice is
// sorted by key with consecutive same-key terms merged by intersection, and
// every Incompatibility must be handled by pointer once built — a store never
// moves a previously returned *Incompatibility.
type Incompatibility struct {
	Terms []Term
	Cause IncompatibilityCause
}

// newIncompatibility sorts terms by key and coalesces consecutive same-key
// runs via Term.Intersection. A coalesce producing an empty term is an
// internal invariant violation (the caller passed contradictory terms for
// the same key) and panics, matching the reference implementation's
// assert-and-terminate behavior.
func newIncompatibility(terms []Term, cause IncompatibilityCause) *Incompatibility {
	sorted := make([]Term, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name.Value() < sorted[j].Name.Value()
	})

	coalesced := make([]Term, 0, len(sorted))
	for _, term := range sorted {
		if n := len(coalesced); n > 0 && coalesced[n-1].Name == term.Name {
			merged, ok := coalesced[n-1].Intersection(term)
			if !ok {
				panic(fmt.Sprintf(
					"pubgrub: coalescing incompatibility terms for %q produced an empty intersection",
					term.Name.Value()))
			}
			coalesced[n-1] = merged
			continue
		}
		coalesced = append(coalesced, term)
	}

	return &Incompatibility{Terms: coalesced, Cause: cause}
}

// NewRootIncompatibility builds the synthetic incompatibility {¬root} seeded
// for each root requirement before the solver loop begins.
func NewRootIncompatibility(root Term) *Incompatibility {
	return newIncompatibility([]Term{root.Negate()}, RootCause{})
}

// NewUnavailableIncompatibility builds {+term}, recorded when the provider
// has no candidate satisfying term.
func NewUnavailableIncompatibility(term Term) *Incompatibility {
	return newIncompatibility([]Term{term}, UnavailableCause{})
}

// NewDependencyIncompatibility builds {+candidate, ¬dependency}, recorded for
// each dependency of a speculatively chosen candidate.
func NewDependencyIncompatibility(candidate Term, dependency Term) *Incompatibility {
	return newIncompatibility([]Term{candidate, dependency.Negate()}, DependencyCause{})
}

// NewConflictIncompatibility builds a derived incompatibility by resolution
// on the satisfier stack, recording which two earlier incompatibilities it
// resolves.
func NewConflictIncompatibility(terms []Term, left, right *Incompatibility) *Incompatibility {
	return newIncompatibility(terms, ConflictCause{Left: left, Right: right})
}

// IsDerived reports whether ic was produced by conflict resolution (as
// opposed to being a root/unavailable/dependency leaf).
func (ic *Incompatibility) IsDerived() bool {
	_, ok := ic.Cause.(ConflictCause)
	return ok
}

// String returns a human-readable representation of the incompatibility.
func (ic *Incompatibility) String() string {
	if len(ic.Terms) == 0 {
		return "version solving failed"
	}

	if len(ic.Terms) == 1 {
		return fmt.Sprintf("%s is forbidden", ic.Terms[0])
	}

	if _, ok := ic.Cause.(DependencyCause); ok && len(ic.Terms) == 2 {
		pos, neg := ic.Terms[0], ic.Terms[1]
		if !pos.Positive {
			pos, neg = neg, pos
		}
		dep := neg
		if !dep.Positive {
			dep = dep.Negate()
		}
		return fmt.Sprintf("%s depends on %s", pos, dep)
	}

	parts := make([]string, len(ic.Terms))
	for i, term := range ic.Terms {
		parts[i] = term.String()
	}
	return fmt.Sprintf("%s are incompatible", strings.Join(parts, " and "))
}
