package pubgrub

import "testing"

func TestPartialSolutionBuildBacktrackInfo(t *testing.T) {
	ps := newPartialSolution()

	root := MakeName("root")
	rootVersion := SimpleVersion("1.0.0")
	ps.recordDecision(NewTerm(root, EqualsCondition{Version: rootVersion}))

	a := MakeName("a")
	aVersion := SimpleVersion("1.0.0")
	ps.recordDecision(NewTerm(a, EqualsCondition{Version: aVersion}))

	b := MakeName("b")
	bVersion := SimpleVersion("1.0.0")
	ps.recordDecision(NewTerm(b, EqualsCondition{Version: bVersion}))

	terms := []Term{
		NewTerm(a, EqualsCondition{Version: aVersion}),
		NewTerm(b, EqualsCondition{Version: bVersion}),
	}

	info, ok := ps.buildBacktrackInfo(terms)
	if !ok {
		t.Fatalf("expected backtrack info, got none")
	}
	if info.Term.Name != b {
		t.Fatalf("expected most recent satisfier to be %q, got %q", b.Value(), info.Term.Name.Value())
	}
	if info.PreviousSatisfierLevel != 2 {
		t.Fatalf("expected previous satisfier level 2, got %d", info.PreviousSatisfierLevel)
	}
}

func TestPartialSolutionBacktrackTo(t *testing.T) {
	ps := newPartialSolution()

	root := MakeName("root")
	ps.recordDecision(NewTerm(root, EqualsCondition{Version: SimpleVersion("1.0.0")}))

	a := MakeName("a")
	ps.recordDecision(NewTerm(a, EqualsCondition{Version: SimpleVersion("1.0.0")}))

	b := MakeName("b")
	ps.recordDecision(NewTerm(b, EqualsCondition{Version: SimpleVersion("1.0.0")}))

	ps.backtrackTo(2)

	if ps.decidedKeys[b] {
		t.Fatalf("expected %q decision to be discarded after backtracking", b.Value())
	}
	if !ps.decidedKeys[root] || !ps.decidedKeys[a] {
		t.Fatalf("expected root and %q decisions to survive backtracking to level 2", a.Value())
	}
	if !ps.satisfies(NewTerm(a, EqualsCondition{Version: SimpleVersion("1.0.0")})) {
		t.Fatalf("expected %q assignment to still be satisfied after backtracking", a.Value())
	}
}

func TestPartialSolutionRelationTo(t *testing.T) {
	ps := newPartialSolution()

	name := MakeName("pkg")
	unseen := NewTerm(name, EqualsCondition{Version: SimpleVersion("1.0.0")})
	if rel := ps.relationTo(unseen); rel != RelationOverlap {
		t.Fatalf("expected overlap for an undecided key, got %v", rel)
	}

	ps.recordDecision(unseen)
	if !ps.satisfies(unseen) {
		t.Fatalf("expected decided term to satisfy itself")
	}
	if rel := ps.relationTo(unseen.Negate()); rel != RelationDisjoint {
		t.Fatalf("expected the decision's negation to be disjoint, got %v", rel)
	}
}
