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
	"strings"
)

// Reporter is an interface for formatting incompatibilities into error messages
type Reporter interface {
	// Report generates a human-readable error message from an incompatibility
	Report(incomp *Incompatibility) string
}

// renderExplanation renders an Explanation as a lowercase clause, suitable
// for embedding after "Because " or "And because ".
func renderExplanation(exp Explanation) string {
	switch e := exp.(type) {
	case NoSolutionExplanation:
		return "version solving has failed"
	case UnavailableExplanation:
		return fmt.Sprintf("no versions of %s satisfy the constraint", e.Term)
	case DisallowedExplanation:
		return fmt.Sprintf("%s is forbidden", e.Term)
	case NeededExplanation:
		return fmt.Sprintf("%s is required", e.Term)
	case DependencyExplanation:
		return fmt.Sprintf("%s depends on %s", e.A, e.B)
	case ConflictExplanation:
		return fmt.Sprintf("%s and %s cannot both be selected", e.A, e.B)
	case CompromiseExplanation:
		return fmt.Sprintf("%s and %s together rule out %s", e.Left, e.Right, e.Result)
	default:
		return "unknown explanation"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DefaultReporter produces readable error messages with hierarchical structure
type DefaultReporter struct{}

// Report implements Reporter by walking the structured failure-explanation
// event stream and rendering each premise/conclusion/separator as an
// indented line.
func (r *DefaultReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "no solution found"
	}

	if !incomp.IsDerived() {
		return capitalize(renderExplanation(classify(incomp))) + "."
	}

	var lines []string
	depth := 0
	ExplainFailure(incomp, func(ev FailureEvent) {
		indent := strings.Repeat("  ", depth)
		switch e := ev.(type) {
		case PremiseEvent:
			lines = append(lines, indent+"Because "+renderExplanation(e.Explanation)+",")
		case ConclusionEvent:
			lines = append(lines, indent+capitalize(renderExplanation(e.Explanation))+".")
		case SeparatorEvent:
			lines = append(lines, indent+"and:")
		}
	})
	return strings.Join(lines, "\n")
}

// CollapsedReporter produces a more compact error format
type CollapsedReporter struct{}

// Report implements Reporter with a collapsed format that keeps only the
// conclusion of each step, chained with "And because".
func (r *CollapsedReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "no solution found"
	}

	if !incomp.IsDerived() {
		return capitalize(renderExplanation(classify(incomp)))
	}

	var lines []string
	ExplainFailure(incomp, func(ev FailureEvent) {
		if e, ok := ev.(ConclusionEvent); ok {
			lines = append(lines, renderExplanation(e.Explanation))
		}
	})

	if len(lines) == 0 {
		return "version solving failed"
	}

	result := capitalize(lines[0])
	for i := 1; i < len(lines); i++ {
		result += "\nAnd because " + lines[i]
	}
	return result
}
