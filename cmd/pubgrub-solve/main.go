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

// Command pubgrub-solve resolves a package catalog described as JSON against
// a set of root requirements and prints the resulting version assignment, or
// a derivation trace explaining why none exists.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/riftpkg/pubgrub"
)

// catalogFile is the on-disk shape a catalog JSON file is parsed into:
// package name -> version -> list of "name constraint" dependency strings.
type catalogFile map[string]map[string][]string

func loadCatalog(path string) (*pubgrub.InMemorySource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var cat catalogFile
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	source := &pubgrub.InMemorySource{}
	for name, versions := range cat {
		for version, deps := range versions {
			terms, err := parseDependencies(deps)
			if err != nil {
				return nil, fmt.Errorf("package %s %s: %w", name, version, err)
			}
			source.AddPackage(pubgrub.MakeName(name), pubgrub.SimpleVersion(version), terms)
		}
	}
	return source, nil
}

// parseDependencies parses "name constraint" strings (e.g. "lodash >=1.0.0,
// <2.0.0") into positive Terms via pubgrub's range syntax.
func parseDependencies(deps []string) ([]pubgrub.Term, error) {
	terms := make([]pubgrub.Term, 0, len(deps))
	for _, dep := range deps {
		name, constraint, err := splitNameConstraint(dep)
		if err != nil {
			return nil, err
		}
		set, err := pubgrub.ParseVersionRange(constraint)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", dep, err)
		}
		terms = append(terms, pubgrub.NewTerm(pubgrub.MakeName(name), pubgrub.NewVersionSetCondition(set)))
	}
	return terms, nil
}

func splitNameConstraint(dep string) (name, constraint string, err error) {
	for i, r := range dep {
		if r == ' ' {
			return dep[:i], dep[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected \"name constraint\", got %q", dep)
}

func buildRoots(reqs []string) ([]pubgrub.Term, error) {
	roots := make([]pubgrub.Term, 0, len(reqs))
	for _, req := range reqs {
		name, constraint, err := splitNameConstraint(req)
		if err != nil {
			return nil, err
		}
		set, err := pubgrub.ParseVersionRange(constraint)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", req, err)
		}
		roots = append(roots, pubgrub.NewTerm(pubgrub.MakeName(name), pubgrub.NewVersionSetCondition(set)))
	}
	return roots, nil
}

func printSolution(solution pubgrub.Solution) {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("PACKAGE", "VERSION")
	for nv := range solution.All() {
		if nv.Name.Value() == "$$root" || nv.Name.Value() == "$roots" {
			continue
		}
		table.AddRow(nv.Name.Value(), nv.Version.String())
	}
	fmt.Println(table.String())
}

func printFailure(err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintln(os.Stderr, red("no solution found:"))

	ns, ok := err.(*pubgrub.NoSolutionError)
	if !ok {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, ns.WithReporter(&pubgrub.CollapsedReporter{}).Error())
}

func main() {
	var (
		catalogPath string
		roots       []string
		maxSteps    int
		track       bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "pubgrub-solve",
		Short: "Resolve a package catalog with the PubGrub algorithm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath == "" {
				return fmt.Errorf("--catalog is required")
			}
			if len(roots) == 0 {
				return fmt.Errorf("at least one --root is required")
			}

			source, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			rootTerms, err := buildRoots(roots)
			if err != nil {
				return err
			}

			rootSource := pubgrub.NewRootSource()
			for _, term := range rootTerms {
				rootSource.AddPackage(term.Name, term.Condition)
			}

			opts := []pubgrub.SolverOption{
				pubgrub.WithIncompatibilityTracking(track),
				pubgrub.WithMaxSteps(maxSteps),
			}
			if verbose {
				logger := logrus.New()
				logger.SetLevel(logrus.DebugLevel)
				opts = append(opts, pubgrub.WithLogger(logger))
			}

			solver := pubgrub.NewSolverWithOptions([]pubgrub.Source{rootSource, source}, opts...)
			solution, err := solver.Solve(context.Background(), rootSource.Term())
			if err != nil {
				printFailure(err)
				return err
			}

			printSolution(solution)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&catalogPath, "catalog", "c", "", "path to a catalog JSON file")
	flags.StringArrayVarP(&roots, "root", "r", nil, "root requirement, e.g. \"app >=1.0.0\" (repeatable)")
	flags.IntVar(&maxSteps, "max-steps", 100000, "maximum solver iterations (0 disables the limit)")
	flags.BoolVar(&track, "track", true, "collect a full derivation trace for failure explanations")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log solver decisions and derivations")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
