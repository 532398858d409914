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

// assignment is a single entry in the partial solution's log: either a
// decision (an explicit candidate chosen by speculation) or a derivation
// (a term forced by unit propagation). A nil Cause marks a decision; every
// derivation carries the incompatibility that produced it.
type assignment struct {
	Term          Term
	DecisionLevel int
	Cause         *Incompatibility
}

// IsDecision reports whether this assignment is a decision rather than a
// derivation.
func (a *assignment) IsDecision() bool {
	return a.Cause == nil
}

func (a *assignment) describe() string {
	if a.IsDecision() {
		return fmt.Sprintf("decision[%d] %s", a.DecisionLevel, a.Term)
	}
	return fmt.Sprintf("derivation[%d] %s (from %s)", a.DecisionLevel, a.Term, a.Cause)
}
