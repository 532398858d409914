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
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// solverState maintains all mutable state during a single PubGrub solve: the
// partial solution (decisions and derivations made so far) and the store of
// every incompatibility recorded, learned or otherwise.
type solverState struct {
	source  Source
	options SolverOptions
	partial *partialSolution
	store   *incompatibilityStore
}

func newSolverState(source Source, options SolverOptions) *solverState {
	return &solverState{
		source:  source,
		options: options,
		partial: newPartialSolution(),
		store:   newIncompatibilityStore(),
	}
}

func (st *solverState) debug(msg string, fields logrus.Fields) {
	if st.options.Logger == nil {
		return
	}
	if len(fields) == 0 {
		st.options.Logger.Debug(msg)
		return
	}
	st.options.Logger.WithFields(fields).Debug(msg)
}

func (st *solverState) addIncompatibility(ic *Incompatibility) *Incompatibility {
	st.store.Record(ic)
	st.debug("recorded incompatibility", logrus.Fields{"incompatibility": ic.String()})
	return ic
}

// conflictStatus classifies how an incompatibility's terms relate to the
// current partial solution.
type conflictStatus int

const (
	statusNone         conflictStatus = iota // at least one term is disjoint: inapplicable
	statusConflict                           // every term is a subset: the incompatibility is satisfied
	statusAlmostConflict                     // exactly one term overlaps: unit propagation applies
	statusInconclusive                       // more than one term overlaps: nothing to derive yet
)

// checkConflict classifies ic against the partial solution. When it returns
// statusAlmostConflict, term is the one term left unsatisfied, whose negation
// is the new derivation to record.
func (st *solverState) checkConflict(ic *Incompatibility) (conflictStatus, Term) {
	var unsatisfied *Term

	for i := range ic.Terms {
		term := ic.Terms[i]
		switch st.partial.relationTo(term) {
		case RelationDisjoint:
			return statusNone, Term{}
		case RelationSubset:
			continue
		case RelationOverlap:
			if unsatisfied != nil {
				return statusInconclusive, Term{}
			}
			t := term
			unsatisfied = &t
		}
	}

	if unsatisfied == nil {
		return statusConflict, Term{}
	}
	return statusAlmostConflict, *unsatisfied
}

// allOtherTermsSatisfied reports whether every term in ic except the one
// keyed by except is already a subset of the partial solution. It is used
// while speculating a not-yet-recorded decision: the candidate's own term
// almost never resolves to RelationSubset before the decision is recorded
// (the positive aggregate is still the broad requirement, not the specific
// candidate version), so that term is excluded from the check rather than
// folded into a plain checkConflict call.
func (st *solverState) allOtherTermsSatisfied(ic *Incompatibility, except Name) bool {
	for _, term := range ic.Terms {
		if term.Name == except {
			continue
		}
		if st.partial.relationTo(term) != RelationSubset {
			return false
		}
	}
	return true
}

// popSmallestKey removes and returns the lexicographically smallest key from
// changed, keeping unit propagation's processing order deterministic.
func popSmallestKey(changed map[Name]bool) Name {
	var smallest Name
	first := true
	for key := range changed {
		if first || key.Value() < smallest.Value() {
			smallest = key
			first = false
		}
	}
	delete(changed, smallest)
	return smallest
}

// unitPropagate processes every incompatibility touching a changed key,
// deriving new terms or discovering conflicts, until no key has changed.
// Each conflict found is resolved in place (possibly backtracking) before
// propagation continues from the pivot the resolution names.
func (st *solverState) unitPropagate(ctx context.Context, seed Name) error {
	changed := map[Name]bool{seed: true}

outer:
	for len(changed) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := popSmallestKey(changed)

		for _, ic := range st.store.ForKey(key) {
			status, derived := st.checkConflict(ic)

			switch status {
			case statusConflict:
				st.debug("conflict found during propagation", logrus.Fields{
					"key":             key.Value(),
					"incompatibility": ic.String(),
				})
				resolved, _, err := st.resolveConflict(ic)
				if err != nil {
					return err
				}
				resolvedStatus, derived := st.checkConflict(resolved)
				if resolvedStatus != statusAlmostConflict {
					return errors.New("pubgrub: resolved conflict not almost-satisfied after backtrack")
				}
				st.partial.recordDerivation(derived.Negate(), resolved)
				changed = map[Name]bool{derived.Name: true}
				continue outer
			case statusAlmostConflict:
				st.debug("derivation from propagation", logrus.Fields{
					"key":             key.Value(),
					"incompatibility": ic.String(),
					"derived":         derived.Negate().String(),
				})
				st.partial.recordDerivation(derived.Negate(), ic)
				changed[derived.Name] = true
			}
		}
	}

	return nil
}

// resolveConflict is the CDCL conflict-resolution loop: it repeatedly folds
// the incompatibility most recently made unsatisfiable back with the cause of
// its most recent satisfier, climbing the satisfier stack until it finds a
// genuine backtrack point. It returns the learned incompatibility and the
// package to resume propagation from, or a *NoSolutionError if the conflict
// traces back to a root-level decision.
func (st *solverState) resolveConflict(conflict *Incompatibility) (*Incompatibility, Name, error) {
	for {
		info, ok := st.partial.buildBacktrackInfo(conflict.Terms)
		if !ok {
			return nil, EmptyName(), NewNoSolutionError(conflict)
		}

		satisfier := &st.partial.assignments[info.SatisfierIndex]

		if satisfier.IsDecision() && satisfier.DecisionLevel == 1 && info.PreviousSatisfierLevel == 0 {
			return nil, EmptyName(), NewNoSolutionError(conflict)
		}

		// Level 1 holds the root anchor decision and everything derived from
		// it, so conflict resolution never backtracks below it.
		targetLevel := info.PreviousSatisfierLevel
		if targetLevel < 1 {
			targetLevel = 1
		}

		if satisfier.IsDecision() || targetLevel < satisfier.DecisionLevel {
			st.partial.backtrackTo(targetLevel)
			st.debug("backtracked after conflict", logrus.Fields{
				"pivot":        info.Term.Name.Value(),
				"target_level": targetLevel,
				"learned":      conflict.String(),
			})
			st.addIncompatibility(conflict)
			return conflict, info.Term.Name, nil
		}

		priorCause := satisfier.Cause
		if priorCause == nil {
			return nil, EmptyName(), errors.New("pubgrub: derived assignment missing cause")
		}

		terms := make([]Term, 0, len(conflict.Terms)+len(priorCause.Terms))
		for _, term := range conflict.Terms {
			if term.Name != info.Term.Name {
				terms = append(terms, term)
			}
		}
		for _, term := range priorCause.Terms {
			if term.Name != info.Term.Name {
				terms = append(terms, term)
			}
		}
		if info.Difference != nil {
			terms = append(terms, info.Difference.Inverse())
		}

		conflict = NewConflictIncompatibility(terms, conflict, priorCause)
		st.debug("derived new conflict", logrus.Fields{
			"pivot":      info.Term.Name.Value(),
			"conflict":   conflict.String(),
			"satisfier":  satisfier.describe(),
		})
	}
}

// bestCandidate returns the highest version the source offers for term's
// package that still satisfies term, or ok=false if none exists.
func (st *solverState) bestCandidate(term Term) (Version, bool, error) {
	versions, err := st.source.GetVersions(term.Name)
	if err != nil {
		var pkgErr *PackageNotFoundError
		var verErr *PackageVersionNotFoundError
		if errors.As(err, &pkgErr) || errors.As(err, &verErr) {
			return nil, false, nil
		}
		return nil, false, err
	}

	for i := len(versions) - 1; i >= 0; i-- {
		ver := versions[i]
		if term.SatisfiedBy(ver) {
			return ver, true, nil
		}
	}
	return nil, false, nil
}

// speculateOneDecision picks the next undecided package, chooses its best
// candidate, records incompatibilities for every one of its dependencies, and
// commits to the candidate as a new decision, unless one of the freshly
// registered incompatibilities is already in conflict, in which case the
// decision is skipped and left for propagation to resolve. It returns
// EmptyName() once every positive term in the solution has been decided.
func (st *solverState) speculateOneDecision(ctx context.Context) (Name, error) {
	if err := ctx.Err(); err != nil {
		return EmptyName(), err
	}

	term, ok := st.partial.nextUnsatisfiedTerm()
	if !ok {
		return EmptyName(), nil
	}

	candidate, found, err := st.bestCandidate(term)
	if err != nil {
		return EmptyName(), err
	}
	if !found {
		st.addIncompatibility(NewUnavailableIncompatibility(term))
		return term.Name, nil
	}

	candidateTerm := NewTerm(term.Name, EqualsCondition{Version: candidate})

	deps, err := st.source.GetDependencies(term.Name, candidate)
	if err != nil {
		return EmptyName(), &DependencyError{Package: term.Name, Version: candidate, Err: err}
	}

	foundConflict := false
	for _, dep := range deps {
		if dep.Name == term.Name {
			return EmptyName(), &SelfDependencyError{Package: term.Name, Version: candidate}
		}

		ic := NewDependencyIncompatibility(candidateTerm, dep)
		st.addIncompatibility(ic)

		if st.allOtherTermsSatisfied(ic, term.Name) {
			foundConflict = true
		}
	}

	if foundConflict {
		st.debug("deferring decision after immediate conflict", logrus.Fields{
			"package": term.Name.Value(),
			"version": candidate.String(),
		})
		return term.Name, nil
	}

	st.debug("making decision", logrus.Fields{
		"package": term.Name.Value(),
		"version": candidate.String(),
	})
	st.partial.recordDecision(candidateTerm)
	return term.Name, nil
}
