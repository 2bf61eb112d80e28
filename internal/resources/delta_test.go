package resources

import (
	"testing"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

func TestApplyClampsPercentages(t *testing.T) {
	tcs := []struct {
		name  string
		start Snapshot
		delta Delta
		want  Snapshot
	}{
		{
			name:  "energy ceiling",
			start: Snapshot{Energy: 90},
			delta: Delta{"energy": 25},
			want:  Snapshot{Energy: 100},
		},
		{
			name:  "energy floor",
			start: Snapshot{Energy: 10},
			delta: Delta{"energy": -40},
			want:  Snapshot{Energy: 0},
		},
		{
			name:  "stress ceiling",
			start: Snapshot{Stress: 95},
			delta: Delta{"stress": 20},
			want:  Snapshot{Stress: 100},
		},
		{
			name:  "resilience floor",
			start: Snapshot{PhysicalResilience: 5},
			delta: Delta{"physical_resilience": -30},
			want:  Snapshot{PhysicalResilience: 0},
		},
	}

	for _, tc := range tcs {
		next, _ := Apply(tc.start, tc.delta)
		if next.Energy != tc.want.Energy || next.Stress != tc.want.Stress ||
			next.PhysicalResilience != tc.want.PhysicalResilience {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, next)
		}
		if next.Energy < 0 || next.Energy > 100 || next.Stress < 0 || next.Stress > 100 ||
			next.PhysicalResilience < 0 || next.PhysicalResilience > 100 {
			t.Fatalf("%s: percentage out of range: %+v", tc.name, next)
		}
	}
}

func TestApplyStocksUnclamped(t *testing.T) {
	next, _ := Apply(Snapshot{Knowledge: 5, CashOnHand: 200}, Delta{
		"knowledge":    150,
		"cash_on_hand": -250,
	})
	if next.Knowledge != 155 {
		t.Fatalf("expected knowledge 155, got %d", next.Knowledge)
	}
	// Stocks can go negative through Apply; affordability is gated
	// separately before spending.
	if next.CashOnHand != -50 {
		t.Fatalf("expected cash -50, got %d", next.CashOnHand)
	}
}

func TestApplyMoraleDerived(t *testing.T) {
	next, _ := Apply(Snapshot{Energy: 40, Stress: 20}, Delta{"energy": 30, "stress": 10})
	if next.Morale != 50+70-30 {
		t.Fatalf("expected morale %d, got %d", 50+70-30, next.Morale)
	}

	// Morale cannot be targeted directly.
	next, applied := Apply(Snapshot{Energy: 50, Stress: 50}, Delta{"morale": 40})
	if next.Morale != 50 {
		t.Fatalf("expected derived morale 50, got %d", next.Morale)
	}
	if len(applied) != 0 {
		t.Fatalf("expected empty applied map, got %v", applied)
	}
}

func TestApplyUnknownKeysIgnored(t *testing.T) {
	start := Snapshot{Energy: 50}
	next, applied := Apply(start, Delta{"charisma": 10, "vibes": -3, "energy": 5})
	if next.Energy != 55 {
		t.Fatalf("expected energy 55, got %d", next.Energy)
	}
	if _, ok := applied["charisma"]; ok {
		t.Fatal("unknown key must not appear in applied")
	}
	if len(applied) != 1 {
		t.Fatalf("expected exactly one applied key, got %v", applied)
	}
}

func TestApplyLegacyAliases(t *testing.T) {
	next, applied := Apply(Snapshot{}, Delta{
		"study_progress": 3,
		"money":          40,
		"social_capital": 2,
		"health":         -10,
	})
	if next.Knowledge != 3 || next.CashOnHand != 40 || next.SocialLeverage != 2 {
		t.Fatalf("expected aliases applied, got %+v", next)
	}
	if next.PhysicalResilience != 0 {
		t.Fatalf("expected resilience clamped at 0, got %d", next.PhysicalResilience)
	}
	// applied uses canonical names and pre-clamp values.
	if applied["knowledge"] != 3 || applied["cash_on_hand"] != 40 ||
		applied["social_leverage"] != 2 || applied["physical_resilience"] != -10 {
		t.Fatalf("expected canonical pre-clamp applied map, got %v", applied)
	}
}

func TestApplyReportsPreClampValues(t *testing.T) {
	_, applied := Apply(Snapshot{Energy: 95}, Delta{"energy": 20})
	if applied["energy"] != 20 {
		t.Fatalf("expected requested value 20 in applied, got %d", applied["energy"])
	}
}

func TestApplyZeroValuesOmitted(t *testing.T) {
	_, applied := Apply(Snapshot{}, Delta{"energy": 0, "stress": -2})
	if _, ok := applied["energy"]; ok {
		t.Fatal("zero delta must not appear in applied")
	}
	if applied["stress"] != -2 {
		t.Fatalf("expected stress -2 in applied, got %v", applied)
	}
}

func TestAfford(t *testing.T) {
	snapshot := Snapshot{Energy: 30, CashOnHand: 10}

	if err := Afford(snapshot, Delta{"energy": -20, "cash_on_hand": -10}); err != nil {
		t.Fatalf("expected affordable costs, got %v", err)
	}

	err := Afford(snapshot, Delta{"cash_on_hand": -25})
	if !apperrors.IsCode(err, apperrors.CodeResourceInsufficient) {
		t.Fatalf("expected RESOURCE_INSUFFICIENT, got %v", err)
	}
	metadata := apperrors.GetMetadata(err)
	if metadata["Resource"] != "cash_on_hand" || metadata["Have"] != "10" || metadata["Need"] != "25" {
		t.Fatalf("expected specific insufficiency metadata, got %v", metadata)
	}

	// Rewards (positive entries) never gate affordability.
	if err := Afford(snapshot, Delta{"knowledge": 5}); err != nil {
		t.Fatalf("expected rewards to be affordable, got %v", err)
	}
}

func TestNormalizeHealsStoredSnapshot(t *testing.T) {
	healed := Snapshot{Energy: 140, Stress: -5, PhysicalResilience: 101, Morale: 7}.Normalize()
	if healed.Energy != 100 || healed.Stress != 0 || healed.PhysicalResilience != 100 {
		t.Fatalf("expected clamped snapshot, got %+v", healed)
	}
	if healed.Morale != 100 {
		t.Fatalf("expected morale rederived to 100, got %d", healed.Morale)
	}
}
