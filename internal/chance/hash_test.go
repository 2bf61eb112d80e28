package chance

import "testing"

func TestUnitFloatRange(t *testing.T) {
	seeds := []string{"", "a", "u:1:s:c", "player:42:storylet:morning", "🎲", "u:1:s:c2"}
	for _, seed := range seeds {
		value := UnitFloat(seed)
		if value < 0 || value >= 1 {
			t.Fatalf("seed %q: expected value in [0,1), got %v", seed, value)
		}
	}
}

func TestUnitFloatStable(t *testing.T) {
	for _, seed := range []string{"u:1:s:c", "", "day:7"} {
		first := UnitFloat(seed)
		for i := 0; i < 10; i++ {
			if again := UnitFloat(seed); again != first {
				t.Fatalf("seed %q: expected %v on repeat call, got %v", seed, first, again)
			}
		}
	}
}

func TestUnitFloatKnownValues(t *testing.T) {
	// Pinned FNV-1a derivations. A change here breaks replay of every
	// previously recorded turn.
	tcs := []struct {
		seed string
		want float64
	}{
		{seed: "u:1:s:c", want: 0.45076645605385857},
		{seed: "", want: 0.7966707284832713},
		{seed: "seed", want: 0.175702160417063},
	}
	for _, tc := range tcs {
		if got := UnitFloat(tc.seed); got != tc.want {
			t.Fatalf("seed %q: expected %v, got %v", tc.seed, tc.want, got)
		}
	}
}

func TestUnitFloatDistinctSeeds(t *testing.T) {
	if UnitFloat("u:1:s:c") == UnitFloat("u:1:s:c2") {
		t.Fatal("expected different seeds to produce different values")
	}
}
