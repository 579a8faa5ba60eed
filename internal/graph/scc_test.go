package graph

import "testing"

func TestCycles_DetectsTwoFileCycle(t *testing.T) {
	edges := map[string][]string{
		"a.ts": {"b.ts"},
		"b.ts": {"a.ts"},
		"c.ts": {},
	}
	cycles := Cycles([]string{"a.ts", "b.ts", "c.ts"}, edges)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %+v", len(cycles), cycles)
	}
	if len(cycles[0]) != 2 {
		t.Fatalf("expected cycle of length 2, got %+v", cycles[0])
	}
}

func TestCycles_NoFalsePositiveOnDAG(t *testing.T) {
	edges := map[string][]string{
		"a.ts": {"b.ts"},
		"b.ts": {"c.ts"},
		"c.ts": {},
	}
	cycles := Cycles([]string{"a.ts", "b.ts", "c.ts"}, edges)
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %+v", cycles)
	}
}

func TestCycles_SelfLoop(t *testing.T) {
	edges := map[string][]string{
		"a.ts": {"a.ts"},
	}
	cycles := Cycles([]string{"a.ts"}, edges)
	if len(cycles) != 1 {
		t.Fatalf("expected self-loop reported as cycle, got %+v", cycles)
	}
}

func TestCycles_LongerCycleAnchorsLexicographically(t *testing.T) {
	edges := map[string][]string{
		"z.ts": {"m.ts"},
		"m.ts": {"a.ts"},
		"a.ts": {"z.ts"},
	}
	cycles := Cycles([]string{"z.ts", "m.ts", "a.ts"}, edges)
	if len(cycles) != 1 || len(cycles[0]) != 3 {
		t.Fatalf("expected one 3-cycle, got %+v", cycles)
	}
	if cycles[0][0] != "a.ts" {
		t.Errorf("expected lexicographically-first anchor a.ts, got %s", cycles[0][0])
	}
}
