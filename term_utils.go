package pubgrub

// conditionVersionSet converts a Condition to the VersionSet it describes,
// independent of any term's sign. A nil condition describes the full set.
// Conditions implementing VersionSetConverter (custom constraint types) are
// converted via that interface; the built-in EqualsCondition and
// VersionSetCondition are handled directly.
func conditionVersionSet(cond Condition) (VersionSet, bool) {
	if cond == nil {
		return (&VersionIntervalSet{}).Full(), true
	}

	switch c := cond.(type) {
	case EqualsCondition:
		return (&VersionIntervalSet{}).Singleton(c.Version), true
	case *EqualsCondition:
		if c == nil {
			return (&VersionIntervalSet{}).Full(), true
		}
		return (&VersionIntervalSet{}).Singleton(c.Version), true
	case *VersionSetCondition:
		if c == nil || c.Set == nil {
			return (&VersionIntervalSet{}).Full(), true
		}
		return c.Set, true
	case VersionSetConverter:
		set := c.ToVersionSet()
		if set == nil {
			return nil, false
		}
		return set, true
	default:
		return nil, false
	}
}

// termFromSet builds a term over name whose held-set is set. When positive
// and set happens to be a single version, the term is built with an
// EqualsCondition for a more readable String() form; otherwise it wraps set
// in a VersionSetCondition.
func termFromSet(name Name, set VersionSet, positive bool) Term {
	if set == nil {
		set = (&VersionIntervalSet{}).Full()
	}

	if positive {
		if version, ok := singletonVersionFromSet(set); ok {
			return Term{Name: name, Condition: EqualsCondition{Version: version}, Positive: true}
		}
		return Term{Name: name, Condition: NewVersionSetCondition(set), Positive: true}
	}

	return Term{Name: name, Condition: NewVersionSetCondition(set), Positive: false}
}
