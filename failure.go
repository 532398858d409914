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

import "fmt"

// Explanation classifies a single incompatibility by term shape: how many
// terms it has, their signs, and (for single-term incompatibilities) its
// cause. ExplainFailure emits one Explanation per incompatibility it visits;
// callers switch on the concrete type to render or otherwise consume it.
type Explanation interface {
	isExplanation()
}

// NoSolutionExplanation marks the empty incompatibility: solving has no
// solution at all.
type NoSolutionExplanation struct{}

// UnavailableExplanation marks a single positive term recorded because the
// provider had no candidate satisfying it.
type UnavailableExplanation struct{ Term Term }

// DisallowedExplanation marks a single positive term forbidden for a reason
// other than unavailability (typically the conclusion of resolving two
// derived incompatibilities down to one term).
type DisallowedExplanation struct{ Term Term }

// NeededExplanation marks a single negative term: its positive counterpart
// is required for the solution to proceed.
type NeededExplanation struct{ Term Term }

// DependencyExplanation marks a two-term incompatibility of opposite signs:
// A depends on B.
type DependencyExplanation struct{ A, B Term }

// ConflictExplanation marks a two-term incompatibility of matching positive
// signs: A and B cannot both be selected.
type ConflictExplanation struct{ A, B Term }

// CompromiseExplanation marks a three-term incompatibility (two positive,
// one negative): Left and Right together rule out Result.
type CompromiseExplanation struct{ Left, Right, Result Term }

func (NoSolutionExplanation) isExplanation()  {}
func (UnavailableExplanation) isExplanation() {}
func (DisallowedExplanation) isExplanation()  {}
func (NeededExplanation) isExplanation()      {}
func (DependencyExplanation) isExplanation()  {}
func (ConflictExplanation) isExplanation()    {}
func (CompromiseExplanation) isExplanation()  {}

// classify builds the Explanation for ic based purely on its terms' count
// and signs, plus its cause where that disambiguates (unavailable vs.
// otherwise-disallowed). Any shape outside the six the algorithm can ever
// produce is an internal invariant violation.
func classify(ic *Incompatibility) Explanation {
	switch len(ic.Terms) {
	case 0:
		return NoSolutionExplanation{}
	case 1:
		term := ic.Terms[0]
		if !term.Positive {
			return NeededExplanation{Term: term.Negate()}
		}
		if _, ok := ic.Cause.(UnavailableCause); ok {
			return UnavailableExplanation{Term: term}
		}
		return DisallowedExplanation{Term: term}
	case 2:
		a, b := ic.Terms[0], ic.Terms[1]
		if a.Positive != b.Positive {
			pos, neg := a, b
			if !pos.Positive {
				pos, neg = b, a
			}
			return DependencyExplanation{A: pos, B: neg.Negate()}
		}
		if !a.Positive {
			panic(fmt.Sprintf("pubgrub: incompatibility %s has no explainable shape", ic))
		}
		return ConflictExplanation{A: a, B: b}
	case 3:
		var positives []Term
		var negative Term
		for _, term := range ic.Terms {
			if term.Positive {
				positives = append(positives, term)
			} else {
				negative = term
			}
		}
		if len(positives) == 2 {
			return CompromiseExplanation{Left: positives[0], Right: positives[1], Result: negative.Negate()}
		}
		panic(fmt.Sprintf("pubgrub: incompatibility %s has no explainable shape", ic))
	default:
		panic(fmt.Sprintf("pubgrub: incompatibility %s has no explainable shape", ic))
	}
}

// FailureEvent is one step of the structured derivation stream ExplainFailure
// emits: a Premise introduces an incompatibility used as a building block, a
// Conclusion states what follows from the premises just given, and a
// Separator marks a switch from explaining one branch of the conflict DAG to
// explaining another.
type FailureEvent interface {
	isFailureEvent()
}

// PremiseEvent introduces an incompatibility as a building block for the
// Conclusion that follows.
type PremiseEvent struct{ Explanation Explanation }

// ConclusionEvent states what follows from the premises most recently given.
type ConclusionEvent struct{ Explanation Explanation }

// SeparatorEvent marks the boundary between explaining one branch of the
// conflict DAG and explaining another.
type SeparatorEvent struct{}

func (PremiseEvent) isFailureEvent()    {}
func (ConclusionEvent) isFailureEvent() {}
func (SeparatorEvent) isFailureEvent()  {}

// FailureHandler receives one FailureEvent at a time, in the order
// ExplainFailure determines, from the leaves of the conflict DAG toward the
// root.
type FailureHandler func(FailureEvent)

// ExplainFailure walks the conflict DAG rooted at root and emits a
// structured event stream describing why resolution failed. root must be a
// derived incompatibility (IsDerived()); non-derived incompatibilities carry
// no further explanation and ExplainFailure emits nothing for them.
func ExplainFailure(root *Incompatibility, handle FailureHandler) {
	generateFor(root, handle)
}

func generateFor(ic *Incompatibility, handle FailureHandler) {
	if !ic.IsDerived() {
		return
	}
	generateForDerived(ic, handle)
}

func generateForDerived(ic *Incompatibility, handle FailureHandler) {
	cc := ic.Cause.(ConflictCause)
	leftDerived := cc.Left.IsDerived()
	rightDerived := cc.Right.IsDerived()

	switch {
	case leftDerived && rightDerived:
		generateComplex(ic, cc.Left, cc.Right, handle)
	case leftDerived != rightDerived:
		if leftDerived {
			generatePartial(ic, cc.Left, cc.Right, handle)
		} else {
			generatePartial(ic, cc.Right, cc.Left, handle)
		}
	default:
		handle(PremiseEvent{classify(cc.Left)})
		handle(PremiseEvent{classify(cc.Right)})
		handle(ConclusionEvent{classify(ic)})
	}
}

// generatePartial handles the case where exactly one of child's two causes
// (derived) is itself derived and the other (external) is a leaf.
func generatePartial(child, derived, external *Incompatibility, handle FailureHandler) {
	dc := derived.Cause.(ConflictCause)
	dLeftDerived := dc.Left.IsDerived()
	dRightDerived := dc.Right.IsDerived()

	switch {
	case dLeftDerived && !dRightDerived:
		generateFor(dc.Left, handle)
		handle(PremiseEvent{classify(dc.Right)})
		handle(PremiseEvent{classify(external)})
		handle(ConclusionEvent{classify(child)})
	case dRightDerived && !dLeftDerived:
		generateFor(dc.Right, handle)
		handle(PremiseEvent{classify(dc.Left)})
		handle(PremiseEvent{classify(external)})
		handle(ConclusionEvent{classify(child)})
	default:
		generateFor(derived, handle)
		handle(PremiseEvent{classify(external)})
		handle(ConclusionEvent{classify(child)})
	}
}

// generateComplex handles the case where both of child's causes are derived.
// If one parent is derived from two external (leaf) incompatibilities of its
// own, it contributes no further detail and both parents are expanded with
// no premise or separator; otherwise both parents are expanded with a
// separator between them and an explicit premise for the left one.
func generateComplex(child, parentLeft, parentRight *Incompatibility, handle FailureHandler) {
	lc := parentLeft.Cause.(ConflictCause)
	rc := parentRight.Cause.(ConflictCause)

	switch {
	case !lc.Left.IsDerived() && !lc.Right.IsDerived():
		generateFor(parentRight, handle)
		generateFor(parentLeft, handle)
		handle(ConclusionEvent{classify(child)})
	case !rc.Left.IsDerived() && !rc.Right.IsDerived():
		generateFor(parentLeft, handle)
		generateFor(parentRight, handle)
		handle(ConclusionEvent{classify(child)})
	default:
		generateFor(parentLeft, handle)
		handle(SeparatorEvent{})
		generateFor(parentRight, handle)
		handle(SeparatorEvent{})
		handle(PremiseEvent{classify(parentLeft)})
		handle(ConclusionEvent{classify(child)})
	}
}
