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

	"github.com/sirupsen/logrus"
)

// Solver implements the PubGrub dependency resolution algorithm: unit
// propagation over a growing set of incompatibilities, with conflict-driven
// backtracking when propagation finds every term of some incompatibility
// already satisfied.
//
// Basic usage:
//
//	root := NewRootSource()
//	root.AddPackage(MakeName("myapp"), EqualsCondition{Version: SimpleVersion("1.0.0")})
//
//	source := &InMemorySource{}
//	// ... populate source with packages ...
//
//	solver := NewSolver(root, source)
//	solution, err := solver.Solve(context.Background(), root.Term())
//
// With options:
//
//	solver := NewSolverWithOptions(
//	    []Source{root, source},
//	    WithIncompatibilityTracking(true),
//	    WithMaxSteps(10000),
//	)
type Solver struct {
	Source  Source
	options SolverOptions

	learned []*Incompatibility
}

// NewSolver creates a new solver with default options from multiple sources.
// The sources are combined into a single CombinedSource that tries each source in order.
//
// Example:
//
//	root := NewRootSource()
//	source := &InMemorySource{}
//	solver := NewSolver(root, source)
func NewSolver(sources ...Source) *Solver {
	return NewSolverWithOptions(sources)
}

func NewSolverWithOptions(sources []Source, opts ...SolverOption) *Solver {
	options := defaultSolverOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	return &Solver{
		Source:  CombinedSource(sources),
		options: options,
		learned: nil,
	}
}

func (s *Solver) Configure(opts ...SolverOption) *Solver {
	for _, opt := range opts {
		if opt != nil {
			opt(&s.options)
		}
	}
	return s
}

func (s *Solver) EnableIncompatibilityTracking() *Solver {
	return s.Configure(WithIncompatibilityTracking(true))
}

func (s *Solver) DisableIncompatibilityTracking() *Solver {
	return s.Configure(WithIncompatibilityTracking(false))
}

func (s *Solver) GetIncompatibilities() []*Incompatibility {
	return s.learned
}

func (s *Solver) ClearIncompatibilities() {
	clear(s.learned)
	s.learned = s.learned[:0]
}

func (s *Solver) debug(msg string, fields logrus.Fields) {
	if logger := s.options.Logger; logger != nil {
		if len(fields) == 0 {
			logger.Debug(msg)
			return
		}
		logger.WithFields(fields).Debug(msg)
	}
}

// rootAnchorVersion is the placeholder version pinned for the synthetic
// anchor package Solve creates when given more than one root requirement.
// The anchor decision is part of the returned Solution, under the "$roots"
// package name.
const rootAnchorVersion = SimpleVersion("root")

// Solve finds a set of package versions satisfying every one of roots. A
// single root is typically a RootSource's Term(), pinning the virtual
// top-level package whose dependencies are the real top-level requirements.
// Passing more than one root term wraps them under a synthetic anchor
// decision, so that none of the given roots can itself be backtracked away:
// conflicts among them surface as ordinary dependency incompatibilities.
func (s *Solver) Solve(ctx context.Context, roots ...Term) (Solution, error) {
	if len(roots) == 0 {
		return nil, &VersionError{Package: EmptyName(), Message: "Solve requires at least one root term"}
	}

	s.debug("starting solver", logrus.Fields{"roots": len(roots)})

	state := newSolverState(s.Source, s.options)

	var anchor Term
	var deps []Term

	if len(roots) == 1 {
		anchor = roots[0]
		version, ok := decisionVersion(anchor)
		if !ok {
			return nil, &VersionError{Package: anchor.Name, Message: "root term must pin an exact version"}
		}

		fromSource, err := s.Source.GetDependencies(anchor.Name, version)
		if err != nil {
			return nil, &DependencyError{Package: anchor.Name, Version: version, Err: err}
		}
		deps = fromSource
	} else {
		anchor = NewTerm(MakeName("$roots"), EqualsCondition{Version: rootAnchorVersion})
		deps = roots
	}

	state.addIncompatibility(NewRootIncompatibility(anchor))
	state.partial.recordDecision(anchor)

	for _, dep := range deps {
		if dep.Name == anchor.Name {
			version, _ := decisionVersion(anchor)
			return nil, &SelfDependencyError{Package: anchor.Name, Version: version}
		}
		state.addIncompatibility(NewDependencyIncompatibility(anchor, dep))
	}

	if err := state.unitPropagate(ctx, anchor.Name); err != nil {
		return s.fail(state, err)
	}

	for steps := 0; ; steps++ {
		if s.options.MaxSteps > 0 && steps >= s.options.MaxSteps {
			return nil, ErrIterationLimit{Steps: s.options.MaxSteps}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkg, err := state.speculateOneDecision(ctx)
		if err != nil {
			return s.fail(state, err)
		}

		if pkg == EmptyName() {
			s.recordLearned(state)
			s.debug("solution found", logrus.Fields{"step": steps})
			return state.partial.completedSolution(), nil
		}

		if err := state.unitPropagate(ctx, pkg); err != nil {
			return s.fail(state, err)
		}
	}
}

func (s *Solver) recordLearned(state *solverState) {
	if !s.options.TrackIncompatibilities || state == nil {
		return
	}
	s.learned = append([]*Incompatibility{}, state.store.all...)
}

// fail turns an error surfaced by the solve loop into the error Solve
// returns. A *NoSolutionError is enriched with the full derivation trail
// when tracking is enabled, or collapsed to the lightweight
// ErrNoSolutionFound otherwise; any other error (a dependency fetch failure,
// a self-dependency, context cancellation) is returned unchanged.
func (s *Solver) fail(state *solverState, err error) (Solution, error) {
	s.recordLearned(state)

	ns, ok := err.(*NoSolutionError)
	if !ok {
		return nil, err
	}

	if !s.options.TrackIncompatibilities {
		return nil, ErrNoSolutionFound{Term: fallbackTerm(ns.Incompatibility)}
	}

	if state != nil && ns.Incompatibility != nil {
		ns.All = state.store.Linearize(ns.Incompatibility)
	}
	return nil, ns
}

func fallbackTerm(incomp *Incompatibility) Term {
	if incomp == nil || len(incomp.Terms) == 0 {
		return NewTerm(MakeName("$$root"), nil)
	}
	term := incomp.Terms[0]
	if !term.Positive {
		term = term.Negate()
	}
	return term
}
