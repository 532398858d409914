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

// partialSolution is the assignment log of the solver: every decision and
// derivation made so far, plus two aggregate maps (positives, negatives)
// that each hold the running intersection/union of every term recorded for
// a given key. The aggregates are what the solver loop actually queries;
// the log exists so the solution can be replayed
// after backtracking and so satisfiers can be located by index.
type partialSolution struct {
	assignments []assignment
	positives   map[Name]Term
	negatives   map[Name]Term
	decidedKeys map[Name]bool
}

func newPartialSolution() *partialSolution {
	return &partialSolution{
		positives:   make(map[Name]Term),
		negatives:   make(map[Name]Term),
		decidedKeys: make(map[Name]bool),
	}
}

// register folds term into the positives/negatives aggregates. A positive
// term already on record for the key narrows by intersection; otherwise the
// incoming term is narrowed against any existing negative aggregate for the
// key (which may flip its sign), and the result lands in whichever map
// matches its final sign. A narrowing that collapses to the empty set is an
// internal invariant violation: the solver never records a term that
// contradicts what it has already derived for the same key.
func (ps *partialSolution) register(term Term) {
	if existing, ok := ps.positives[term.Name]; ok {
		merged, ok := existing.Intersection(term)
		if !ok {
			panic(fmt.Sprintf("pubgrub: registering %s contradicts existing positive assignment %s", term, existing))
		}
		ps.positives[term.Name] = merged
		return
	}

	result := term
	if existingNeg, ok := ps.negatives[term.Name]; ok {
		merged, ok := result.Intersection(existingNeg)
		if !ok {
			panic(fmt.Sprintf("pubgrub: registering %s contradicts existing negative assignment %s", term, existingNeg))
		}
		result = merged
	}

	if result.Positive {
		delete(ps.negatives, term.Name)
		ps.positives[term.Name] = result
	} else {
		ps.negatives[term.Name] = result
	}
}

// recordDerivation appends term as a derivation caused by cause and folds it
// into the aggregates. Its decision level is the number of decisions made so
// far (it inherits the current level rather than starting a new one).
func (ps *partialSolution) recordDerivation(term Term, cause *Incompatibility) {
	ps.assignments = append(ps.assignments, assignment{
		Term:          term,
		DecisionLevel: len(ps.decidedKeys),
		Cause:         cause,
	})
	ps.register(term)
}

// recordDecision appends a new decision for term's key, starting a new
// decision level. A key may be decided at most once; deciding a negative
// term is never valid.
func (ps *partialSolution) recordDecision(term Term) {
	if !term.Positive {
		panic(fmt.Sprintf("pubgrub: decisions must be positive terms, got %s", term))
	}
	if ps.decidedKeys[term.Name] {
		panic(fmt.Sprintf("pubgrub: more than one decision recorded for %q", term.Name.Value()))
	}
	ps.decidedKeys[term.Name] = true

	ps.assignments = append(ps.assignments, assignment{
		Term:          term,
		DecisionLevel: len(ps.decidedKeys),
		Cause:         nil,
	})
	ps.register(term)
}

// relationTo classifies how the current aggregate for term's key relates to
// term: subset if that aggregate already implies term, disjoint if it
// excludes term, overlap if neither (including when the key has no
// assignment at all yet).
func (ps *partialSolution) relationTo(term Term) SetRelation {
	if pos, ok := ps.positives[term.Name]; ok {
		return pos.RelationTo(term)
	}
	if neg, ok := ps.negatives[term.Name]; ok {
		return neg.RelationTo(term)
	}
	return RelationOverlap
}

// satisfies reports whether the current partial solution already implies
// term.
func (ps *partialSolution) satisfies(term Term) bool {
	return ps.relationTo(term) == RelationSubset
}

// nextUnsatisfiedTerm returns the positive aggregate, in ascending key
// order, of the first key that has a positive assignment but no decision
// yet. Scanning in key order keeps speculation deterministic.
func (ps *partialSolution) nextUnsatisfiedTerm() (Term, bool) {
	keys := make([]Name, 0, len(ps.positives))
	for key := range ps.positives {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Value() < keys[j].Value() })

	for _, key := range keys {
		if !ps.decidedKeys[key] {
			return ps.positives[key], true
		}
	}
	return Term{}, false
}

// satisfierOf walks the assignment log in order, accumulating the running
// intersection of every assignment sharing term's key, and returns the
// index of the first assignment whose accumulated term implies term. It
// panics if no such assignment exists, which would mean the caller asked
// about a term the partial solution never actually satisfies.
func (ps *partialSolution) satisfierOf(term Term) int {
	var accumulated *Term

	for i := range ps.assignments {
		a := &ps.assignments[i]
		if a.Term.Name != term.Name {
			continue
		}

		if accumulated == nil {
			acc := a.Term
			accumulated = &acc
		} else {
			merged, ok := accumulated.Intersection(a.Term)
			if !ok {
				panic(fmt.Sprintf("pubgrub: accumulating assignments for %q produced an empty intersection", term.Name.Value()))
			}
			accumulated = &merged
		}

		if accumulated.Implies(term) {
			return i
		}
	}

	panic(fmt.Sprintf("pubgrub: no satisfier found for %s", term))
}

// backtrackInfo is the result of buildBacktrackInfo: the single most
// recently satisfied term of an incompatibility, the assignment that
// satisfies it, the decision level to backtrack to, and (if found) the
// narrower term that remains to be explored after backtracking.
type backtrackInfo struct {
	Term                   Term
	SatisfierIndex         int
	PreviousSatisfierLevel int
	Difference             *Term
}

// buildBacktrackInfo finds, among terms, the one satisfied most recently by
// the assignment log (by log index, not decision level), along with the
// highest decision level among every other term's satisfier. When the most
// recent satisfier's own term is strictly narrower than the incompatibility
// term it satisfies, the leftover difference is also returned together with
// the decision level of whatever satisfies its inverse — folding that level
// in as well, exactly as the reference algorithm does, every time the
// difference is recomputed rather than only on first computation.
func (ps *partialSolution) buildBacktrackInfo(terms []Term) (*backtrackInfo, bool) {
	mostRecentTermIdx := -1
	mostRecentSatisfier := -1
	previousSatisfierLevel := 0
	var difference *Term

	for i, term := range terms {
		satisfier := ps.satisfierOf(term)

		switch {
		case mostRecentSatisfier == -1:
			mostRecentTermIdx = i
			mostRecentSatisfier = satisfier
		case mostRecentSatisfier < satisfier:
			if lvl := ps.assignments[mostRecentSatisfier].DecisionLevel; lvl > previousSatisfierLevel {
				previousSatisfierLevel = lvl
			}
			mostRecentTermIdx = i
			mostRecentSatisfier = satisfier
			difference = nil
		default:
			if lvl := ps.assignments[satisfier].DecisionLevel; lvl > previousSatisfierLevel {
				previousSatisfierLevel = lvl
			}
		}

		if mostRecentTermIdx == i {
			d, ok := ps.assignments[mostRecentSatisfier].Term.Difference(terms[mostRecentTermIdx])
			if ok {
				difference = &d
				satIdx := ps.satisfierOf(d.Inverse())
				if lvl := ps.assignments[satIdx].DecisionLevel; lvl > previousSatisfierLevel {
					previousSatisfierLevel = lvl
				}
			} else {
				difference = nil
			}
		}
	}

	if mostRecentSatisfier == -1 {
		return nil, false
	}

	return &backtrackInfo{
		Term:                   terms[mostRecentTermIdx],
		SatisfierIndex:         mostRecentSatisfier,
		PreviousSatisfierLevel: previousSatisfierLevel,
		Difference:             difference,
	}, true
}

// backtrackTo discards every assignment made at a decision level deeper than
// level and replays what remains to rebuild the aggregates from scratch.
func (ps *partialSolution) backtrackTo(level int) {
	n := len(ps.assignments)
	for n > 0 && ps.assignments[n-1].DecisionLevel > level {
		n--
	}
	ps.assignments = ps.assignments[:n]

	ps.positives = make(map[Name]Term)
	ps.negatives = make(map[Name]Term)
	ps.decidedKeys = make(map[Name]bool)

	for i := range ps.assignments {
		a := &ps.assignments[i]
		ps.register(a.Term)
		if a.IsDecision() {
			ps.decidedKeys[a.Term.Name] = true
		}
	}
}

// decisionVersion extracts the concrete Version a decision term pins, which
// is always recorded as an EqualsCondition by speculate.
func decisionVersion(term Term) (Version, bool) {
	switch c := term.Condition.(type) {
	case EqualsCondition:
		return c.Version, true
	case *EqualsCondition:
		if c != nil {
			return c.Version, true
		}
	}
	return nil, false
}

// completedSolution collects every decision in the log into a Solution,
// preserving the order decisions were made.
func (ps *partialSolution) completedSolution() Solution {
	result := make(Solution, 0, len(ps.decidedKeys))
	for i := range ps.assignments {
		a := &ps.assignments[i]
		if !a.IsDecision() {
			continue
		}
		version, ok := decisionVersion(a.Term)
		if !ok {
			panic(fmt.Sprintf("pubgrub: decision %s carries no concrete version", a.Term))
		}
		result = append(result, NameVersion{Name: a.Term.Name, Version: version})
	}
	return result
}

// snapshot returns a human-readable dump of the assignment log, used only
// for debug logging.
func (ps *partialSolution) snapshot() string {
	var b strings.Builder
	fmt.Fprintf(&b, "decided_keys=%d assignments=%d\n", len(ps.decidedKeys), len(ps.assignments))
	for i := range ps.assignments {
		fmt.Fprintf(&b, "  %s\n", ps.assignments[i].describe())
	}
	return b.String()
}
