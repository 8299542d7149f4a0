package systems

import "testing"

func TestSystemRegistry_StepOrder(t *testing.T) {
	reg := NewSystemRegistry()

	want := []string{PhasePlayer, PhaseHoming, PhasePatrol, PhaseSolve, PhaseSync, PhaseTelemetry}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phase %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if n := len(reg.ByCategory("actors")); n != 3 {
		t.Errorf("expected 3 actor phases, got %d", n)
	}
}

func TestSystemRegistry_CategoriesInStepOrder(t *testing.T) {
	reg := NewSystemRegistry()

	want := []string{"actors", "physics", "internal"}
	got := reg.Categories()
	if len(got) != len(want) {
		t.Fatalf("expected categories %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	total := 0
	for _, cat := range got {
		total += len(reg.ByCategory(cat))
	}
	if total != len(reg.IDs()) {
		t.Errorf("categories cover %d phases, expected %d", total, len(reg.IDs()))
	}
	if solve := reg.ByCategory("physics")[0]; solve.Name != "Solve" {
		t.Errorf("expected Solve first in physics, got %s", solve.Name)
	}
}
