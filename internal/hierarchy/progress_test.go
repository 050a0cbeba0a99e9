package hierarchy

import "testing"

func TestProgress_ViewableStoredValue(t *testing.T) {
	snap := quickSnapshot([]string{"ep"}, []string{"ep"}, []edgeSpec{{"", "ep", 0}})
	if got := snap.ProgressFor("ep", map[string]int{"ep": 40}); got != 40 {
		t.Errorf("got %d, want 40", got)
	}
}

func TestProgress_ViewableMissingRowIsZero(t *testing.T) {
	snap := quickSnapshot([]string{"ep"}, []string{"ep"}, []edgeSpec{{"", "ep", 0}})
	if got := snap.ProgressFor("ep", map[string]int{}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestProgress_ClampsMalformedValues(t *testing.T) {
	snap := quickSnapshot([]string{"a", "b"}, []string{"a", "b"}, []edgeSpec{
		{"", "a", 0}, {"", "b", 1},
	})
	leaf := map[string]int{"a": 150, "b": -20}
	if got := snap.ProgressFor("a", leaf); got != 100 {
		t.Errorf("overlarge value: got %d, want 100", got)
	}
	if got := snap.ProgressFor("b", leaf); got != 0 {
		t.Errorf("negative value: got %d, want 0", got)
	}
}

func TestProgress_MeanOfChildren(t *testing.T) {
	// Root "Season 1" with Ep1 at 100 and Ep2 at 50 averages to 75.
	snap := quickSnapshot(
		[]string{"season", "ep1", "ep2"},
		[]string{"ep1", "ep2"},
		[]edgeSpec{
			{"", "season", 0},
			{"season", "ep1", 0},
			{"season", "ep2", 1},
		},
	)
	leaf := map[string]int{"ep1": 100, "ep2": 50}
	if got := snap.ProgressFor("season", leaf); got != 75 {
		t.Errorf("got %d, want 75", got)
	}
}

func TestProgress_MeanRounding(t *testing.T) {
	snap := quickSnapshot(
		[]string{"org", "a", "b", "c"},
		[]string{"a", "b", "c"},
		[]edgeSpec{
			{"", "org", 0},
			{"org", "a", 0}, {"org", "b", 1}, {"org", "c", 2},
		},
	)

	// mean(100, 50, 75) = 75 exactly
	if got := snap.ProgressFor("org", map[string]int{"a": 100, "b": 50, "c": 75}); got != 75 {
		t.Errorf("mean of [100 50 75]: got %d, want 75", got)
	}
	// mean(1, 2, 2) = 1.67 rounds up to 2
	if got := snap.ProgressFor("org", map[string]int{"a": 1, "b": 2, "c": 2}); got != 2 {
		t.Errorf("mean of [1 2 2]: got %d, want 2", got)
	}
	// mean(0, 1, 2) = 1.0
	if got := snap.ProgressFor("org", map[string]int{"b": 1, "c": 2}); got != 1 {
		t.Errorf("mean of [0 1 2]: got %d, want 1", got)
	}
}

func TestProgress_RoundHalfUp(t *testing.T) {
	snap := quickSnapshot(
		[]string{"org", "a", "b"},
		[]string{"a", "b"},
		[]edgeSpec{
			{"", "org", 0},
			{"org", "a", 0}, {"org", "b", 1},
		},
	)
	// mean(1, 2) = 1.5 rounds half-up to 2
	if got := snap.ProgressFor("org", map[string]int{"a": 1, "b": 2}); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestProgress_ChildlessOrganizationalIsZero(t *testing.T) {
	snap := quickSnapshot([]string{"org"}, nil, []edgeSpec{{"", "org", 0}})
	if got := snap.ProgressFor("org", map[string]int{}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestProgress_NestedAggregation(t *testing.T) {
	// universe -> season1 (ep1 100, ep2 50) and season2 (ep3 0)
	// season1 = 75, season2 = 0, universe = round(mean(75, 0)) = 38
	snap := quickSnapshot(
		[]string{"universe", "s1", "s2", "ep1", "ep2", "ep3"},
		[]string{"ep1", "ep2", "ep3"},
		[]edgeSpec{
			{"", "universe", 0},
			{"universe", "s1", 0}, {"universe", "s2", 1},
			{"s1", "ep1", 0}, {"s1", "ep2", 1},
			{"s2", "ep3", 0},
		},
	)
	leaf := map[string]int{"ep1": 100, "ep2": 50}
	if got := snap.ProgressFor("s1", leaf); got != 75 {
		t.Errorf("s1: got %d, want 75", got)
	}
	if got := snap.ProgressFor("s2", leaf); got != 0 {
		t.Errorf("s2: got %d, want 0", got)
	}
	if got := snap.ProgressFor("universe", leaf); got != 38 {
		t.Errorf("universe: got %d, want 38", got)
	}
}

func TestProgress_UnknownNodeIsZero(t *testing.T) {
	snap := quickSnapshot([]string{"a"}, nil, nil)
	if got := snap.ProgressFor("missing", map[string]int{}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestProgress_StaleChildEdgeSkipped(t *testing.T) {
	snap := quickSnapshot(
		[]string{"org", "a"},
		[]string{"a"},
		[]edgeSpec{
			{"", "org", 0},
			{"org", "a", 0},
			{"org", "ghost", 1},
		},
	)
	// The stale edge must not drag the mean toward zero.
	if got := snap.ProgressFor("org", map[string]int{"a": 80}); got != 80 {
		t.Errorf("got %d, want 80", got)
	}
}

func TestProgress_CorruptCycleTerminates(t *testing.T) {
	snap := quickSnapshot(
		[]string{"a", "b"},
		nil,
		[]edgeSpec{
			{"a", "b", 0},
			{"b", "a", 0},
		},
	)
	if got := snap.ProgressFor("a", map[string]int{}); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestProgress_AlwaysInBounds(t *testing.T) {
	snap := quickSnapshot(
		[]string{"org", "a", "b"},
		[]string{"a", "b"},
		[]edgeSpec{
			{"", "org", 0},
			{"org", "a", 0}, {"org", "b", 1},
		},
	)
	leaf := map[string]int{"a": 100000, "b": -100000}
	for _, id := range []string{"org", "a", "b"} {
		got := snap.ProgressFor(id, leaf)
		if got < 0 || got > 100 {
			t.Errorf("%s out of bounds: %d", id, got)
		}
	}
}
