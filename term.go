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

import "fmt"

// Term represents a dependency constraint, either positive or negative.
// A positive term (e.g., "lodash >=1.0.0") asserts that a package must satisfy
// the condition. A negative term (e.g., "not lodash ==1.5.0") excludes versions
// that match the condition.
//
// Terms are the building blocks of dependency resolution, combining package
// names with version constraints and polarity.
type Term struct {
	Name      Name
	Condition Condition
	Positive  bool
}

// String returns a human-readable representation of the term.
func (t Term) String() string {
	cond := "*"
	if t.Condition != nil {
		cond = t.Condition.String()
	}

	if t.Positive {
		if cond == "*" {
			return t.Name.Value()
		}
		return fmt.Sprintf("%s %s", t.Name.Value(), cond)
	}

	if cond == "*" {
		return fmt.Sprintf("not %s", t.Name.Value())
	}
	return fmt.Sprintf("not %s %s", t.Name.Value(), cond)
}

// NewTerm creates a positive term requiring the package to satisfy the condition.
func NewTerm(name Name, condition Condition) Term {
	return Term{Name: name, Condition: condition, Positive: true}
}

// NewNegativeTerm creates a negative term excluding versions matching the condition.
func NewNegativeTerm(name Name, condition Condition) Term {
	return Term{Name: name, Condition: condition, Positive: false}
}

// Negate returns the logical negation of the term.
// A positive term becomes negative and vice versa.
func (t Term) Negate() Term {
	return Term{
		Name:      t.Name,
		Condition: t.Condition,
		Positive:  !t.Positive,
	}
}

// Inverse is an alias for Negate, matching the vocabulary used by the
// conflict-resolution and backtracking algorithms that talk about a term's
// "inverse" rather than its negation.
func (t Term) Inverse() Term {
	return t.Negate()
}

// IsPositive reports whether the term asserts a positive constraint.
func (t Term) IsPositive() bool {
	return t.Positive
}

// Key returns the package name this term constrains. Two terms only ever
// interact algebraically when their keys match; cross-key operations are
// never invoked by the solver.
func (t Term) Key() Name {
	return t.Name
}

// SatisfiedBy reports whether the provided version satisfies the term.
// A nil version indicates the package is not selected.
//
// For positive terms, returns true if the version matches the condition.
// For negative terms, returns true if the version does NOT match the condition.
func (t Term) SatisfiedBy(ver Version) bool {
	if ver == nil {
		return !t.Positive
	}

	if t.Condition == nil {
		return t.Positive
	}

	satisfied := t.Condition.Satisfies(ver)
	if t.Positive {
		return satisfied
	}
	return !satisfied
}

// reqSet returns the VersionSet described by the term's condition, independent
// of the term's sign: it is the set a positive term would hold over.
func (t Term) reqSet() (VersionSet, bool) {
	return conditionVersionSet(t.Condition)
}

// Intersection computes the term whose held-set is the intersection of the
// two terms' held-sets, by sign-quadrant case analysis:
//
//	+,+ -> positive(a.req ∩ b.req), empty means no intersection
//	-,- -> negative(a.req ∪ b.req)
//	+,- -> positive(a.req \ b.req)
//	-,+ -> commute
//
// The second return value is false when either term's condition cannot be
// converted to a VersionSet, or a positive result is empty. The -,- case
// always returns true, even when the union covers every version.
func (t Term) Intersection(other Term) (Term, bool) {
	if t.Name != other.Name {
		panic("pubgrub: Intersection called on terms with different keys")
	}

	aSet, aOK := t.reqSet()
	bSet, bOK := other.reqSet()
	if !aOK || !bOK {
		return Term{}, false
	}

	switch {
	case t.Positive && other.Positive:
		r := aSet.Intersection(bSet)
		if r.IsEmpty() {
			return Term{}, false
		}
		return termFromSet(t.Name, r, true), true
	case !t.Positive && !other.Positive:
		// The union of two requirements is always representable here because
		// VersionSet is closed under Union; the "unrepresentable" case from
		// the reference algorithm therefore cannot arise for VersionSet-backed
		// conditions. It remains possible for a Condition whose reqSet cannot
		// be formed at all, handled by the aOK/bOK check above.
		r := aSet.Union(bSet)
		return termFromSet(t.Name, r, false), true
	case t.Positive && !other.Positive:
		r := aSet.Intersection(bSet.Complement())
		if r.IsEmpty() {
			return Term{}, false
		}
		return termFromSet(t.Name, r, true), true
	default: // !t.Positive && other.Positive
		return other.Intersection(t)
	}
}

// Union computes the term whose held-set is the union of the two terms'
// held-sets, derived from Intersection via De Morgan's law:
// union(a,b) = inverse(intersection(inverse(a), inverse(b))).
func (t Term) Union(other Term) (Term, bool) {
	if t.Name != other.Name {
		panic("pubgrub: Union called on terms with different keys")
	}
	r, ok := t.Inverse().Intersection(other.Inverse())
	if !ok {
		return Term{}, false
	}
	return r.Inverse(), true
}

// Difference computes the term whose held-set is this term's held-set minus
// the other's, derived as intersection with the other's inverse.
func (t Term) Difference(other Term) (Term, bool) {
	if t.Name != other.Name {
		panic("pubgrub: Difference called on terms with different keys")
	}
	return t.Intersection(other.Inverse())
}

// ImpliedBy reports whether this term's held-set contains the other's,
// i.e. whether other being true forces this term to be true.
func (t Term) ImpliedBy(other Term) bool {
	if t.Name != other.Name {
		return false
	}
	aSet, aOK := t.reqSet()
	bSet, bOK := other.reqSet()
	if !aOK || !bOK {
		return false
	}
	switch {
	case t.Positive && other.Positive:
		return bSet.IsSubset(aSet)
	case t.Positive && !other.Positive:
		return false
	case !t.Positive && other.Positive:
		return aSet.IsDisjoint(bSet)
	default: // -,-
		return aSet.IsSubset(bSet)
	}
}

// Implies reports whether this term being true forces other to be true.
func (t Term) Implies(other Term) bool {
	return other.ImpliedBy(t)
}

// Excludes reports whether this term and other can never both hold.
func (t Term) Excludes(other Term) bool {
	if t.Name != other.Name {
		return false
	}
	aSet, aOK := t.reqSet()
	bSet, bOK := other.reqSet()
	if !aOK || !bOK {
		return false
	}
	switch {
	case t.Positive && other.Positive:
		return aSet.IsDisjoint(bSet)
	case t.Positive && !other.Positive:
		return aSet.IsSubset(bSet)
	case !t.Positive && other.Positive:
		return bSet.IsSubset(aSet)
	default: // -,-
		return false
	}
}

// SetRelation classifies how a term relates to the current partial solution
// (or to another term): subset (already satisfied), overlap (undetermined),
// or disjoint (already falsified).
type SetRelation int

const (
	RelationSubset SetRelation = iota
	RelationOverlap
	RelationDisjoint
)

func (r SetRelation) String() string {
	switch r {
	case RelationSubset:
		return "subset"
	case RelationDisjoint:
		return "disjoint"
	default:
		return "overlap"
	}
}

// RelationTo classifies this term's relation to other: subset if this term
// implies other, disjoint if this term excludes other, overlap otherwise.
// This is the sole currency exchanged between the partial solution and the
// solver loop.
func (t Term) RelationTo(other Term) SetRelation {
	if t.Implies(other) {
		return RelationSubset
	}
	if t.Excludes(other) {
		return RelationDisjoint
	}
	return RelationOverlap
}
