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

package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// translateToIntervalSyntax rewrites a semver constraint string (the syntax
// github.com/Masterminds/semver/v3 accepts: "^1.2.3", "~1.2", ">=1.0.0 <2.0.0",
// "1.2.3 || 2.x") into pubgrub.ParseVersionRange's syntax (comma-separated
// AND, "||" OR, bare ">="/"<"/"=="/"!=" comparisons). Caret and tilde ranges
// are expanded to their equivalent lower/upper bound pair; a bare version is
// treated as an exact match.
func translateToIntervalSyntax(raw string) string {
	orParts := strings.Split(raw, "||")
	translatedOr := make([]string, 0, len(orParts))

	for _, orPart := range orParts {
		var clauses []string
		for _, comma := range strings.Split(orPart, ",") {
			for _, field := range strings.Fields(comma) {
				clauses = append(clauses, translateClause(field)...)
			}
		}
		translatedOr = append(translatedOr, strings.Join(clauses, ", "))
	}

	return strings.Join(translatedOr, " || ")
}

// translateClause expands a single semver comparator into one or more
// pubgrub range clauses.
func translateClause(clause string) []string {
	clause = strings.TrimSpace(clause)
	switch {
	case clause == "" || clause == "*":
		return []string{"*"}
	case strings.HasPrefix(clause, "^"):
		return caretRange(strings.TrimPrefix(clause, "^"))
	case strings.HasPrefix(clause, "~"):
		return tildeRange(strings.TrimPrefix(clause, "~"))
	case strings.HasPrefix(clause, ">="), strings.HasPrefix(clause, "<="),
		strings.HasPrefix(clause, "!="), strings.HasPrefix(clause, ">"),
		strings.HasPrefix(clause, "<"), strings.HasPrefix(clause, "=="):
		return []string{clause}
	case strings.HasPrefix(clause, "="):
		return []string{"==" + strings.TrimPrefix(clause, "=")}
	case strings.ContainsAny(clause, "xX*"):
		return wildcardRange(clause)
	default:
		return []string{"==" + clause}
	}
}

// versionParts splits a dotted version string into up to three integer
// components, defaulting missing trailing components to zero and ignoring
// any prerelease/build suffix. "x"/"X"/"*" components (as in "1.2.x") are
// treated as absent, matching semver's wildcard convention.
func versionParts(s string) (major, minor, patch, given int) {
	s = strings.TrimPrefix(s, "v")
	s = strings.SplitN(s, "+", 2)[0]
	s = strings.SplitN(s, "-", 2)[0]

	fields := strings.Split(s, ".")
	values := [3]int{}
	given = 0
	for i, field := range fields {
		if i >= 3 {
			break
		}
		if field == "" || field == "x" || field == "X" || field == "*" {
			break
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			break
		}
		values[i] = n
		given = i + 1
	}
	return values[0], values[1], values[2], given
}

func caretRange(s string) []string {
	major, minor, patch, given := versionParts(s)
	lower := fmt.Sprintf(">=%d.%d.%d", major, minor, patch)

	var upper string
	switch {
	case major > 0:
		upper = fmt.Sprintf("<%d.0.0", major+1)
	case given >= 2 && minor > 0:
		upper = fmt.Sprintf("<0.%d.0", minor+1)
	default:
		upper = fmt.Sprintf("<0.0.%d", patch+1)
	}
	return []string{lower, upper}
}

// wildcardRange expands "1.2.x"-style constraints to the range that fixes
// every component given and leaves the rest free.
func wildcardRange(s string) []string {
	major, minor, _, given := versionParts(s)
	switch given {
	case 0:
		return []string{"*"}
	case 1:
		return []string{fmt.Sprintf(">=%d.0.0", major), fmt.Sprintf("<%d.0.0", major+1)}
	default:
		return []string{fmt.Sprintf(">=%d.%d.0", major, minor), fmt.Sprintf("<%d.%d.0", major, minor+1)}
	}
}

func tildeRange(s string) []string {
	major, minor, patch, given := versionParts(s)
	lower := fmt.Sprintf(">=%d.%d.%d", major, minor, patch)

	var upper string
	if given <= 1 {
		upper = fmt.Sprintf("<%d.0.0", major+1)
	} else {
		upper = fmt.Sprintf("<%d.%d.0", major, minor+1)
	}
	return []string{lower, upper}
}
