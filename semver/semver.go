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

// Package semver adapts github.com/Masterminds/semver/v3 to pubgrub's
// Version and Condition interfaces, so dependency graphs can be described
// with the same constraint syntax Go modules and Helm charts already use
// (^1.2.3, ~1.2.3, >=1.0.0 <2.0.0, ...) instead of pubgrub's own
// VersionSetCondition range syntax.
package semver

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/riftpkg/pubgrub"
)

// Version wraps a *semver.Version to satisfy pubgrub.Version.
type Version struct {
	v *semver.Version
}

// NewVersion parses s as a semantic version.
func NewVersion(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parsing %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// MustVersion is like NewVersion but panics on a malformed string. Intended
// for tests and static catalog definitions, not for parsing user input.
func MustVersion(s string) Version {
	v, err := NewVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String implements pubgrub.Version.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Sort implements pubgrub.Version by delegating to semver.Version.Compare.
func (v Version) Sort(other pubgrub.Version) int {
	o, ok := other.(Version)
	if !ok {
		return 0
	}
	return v.v.Compare(o.v)
}

var _ pubgrub.Version = Version{}

// Constraint wraps a *semver.Constraints to satisfy pubgrub.Condition and
// pubgrub.VersionSetConverter, so it can drive the CDCL solver directly.
type Constraint struct {
	raw string
	c   *semver.Constraints
}

// NewConstraint parses s using semver's constraint syntax, e.g. "^1.2.3",
// "~1.2", ">=1.0.0, <2.0.0".
func NewConstraint(s string) (Constraint, error) {
	c, err := semver.NewConstraint(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parsing constraint %q: %w", s, err)
	}
	return Constraint{raw: s, c: c}, nil
}

// MustConstraint is like NewConstraint but panics on a malformed string.
func MustConstraint(s string) Constraint {
	c, err := NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String implements pubgrub.Condition.
func (c Constraint) String() string {
	return c.raw
}

// Satisfies implements pubgrub.Condition.
func (c Constraint) Satisfies(ver pubgrub.Version) bool {
	v, ok := ver.(Version)
	if !ok {
		return false
	}
	return c.c.Check(v.v)
}

// ToVersionSet implements pubgrub.VersionSetConverter, translating the
// constraint text into pubgrub's range syntax and parsing it with
// pubgrub.ParseVersionRange; a constraint that fails to parse yields the
// empty set. Constraints
// expressed with semver's OR (||) syntax are converted branch by branch and
// unioned, matching how pubgrub.ParseVersionRange handles "||" itself.
func (c Constraint) ToVersionSet() pubgrub.VersionSet {
	set, err := pubgrub.ParseVersionRange(translateToIntervalSyntax(c.raw))
	if err != nil {
		return pubgrub.EmptyVersionSet()
	}
	return set
}

var (
	_ pubgrub.Condition           = Constraint{}
	_ pubgrub.VersionSetConverter = Constraint{}
)
