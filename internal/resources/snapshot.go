// Package resources implements the player resource model and the delta
// engine that is the only sanctioned way to mutate it.
package resources

// Bounds for percentage-scaled resources.
const (
	PercentMin = 0
	PercentMax = 100
)

// Canonical resource keys accepted in deltas.
const (
	KeyEnergy             = "energy"
	KeyStress             = "stress"
	KeyKnowledge          = "knowledge"
	KeyCashOnHand         = "cash_on_hand"
	KeySocialLeverage     = "social_leverage"
	KeyPhysicalResilience = "physical_resilience"
)

// Snapshot is a player's resource state for one simulated day.
//
// Energy, Stress, and PhysicalResilience are percentages clamped to
// [0, 100]. Knowledge, CashOnHand, and SocialLeverage are unbounded
// accumulating stocks. Morale is always derived from Energy and Stress
// and never stored independently of them.
type Snapshot struct {
	Energy             int
	Stress             int
	Knowledge          int
	CashOnHand         int
	SocialLeverage     int
	PhysicalResilience int
	Morale             int
}

// DeriveMorale computes morale from energy and stress.
func DeriveMorale(energy, stress int) int {
	return clampPercent(50 + energy - stress)
}

// Normalize returns the snapshot with percentage fields clamped and
// morale recomputed. Stored snapshots should pass through Normalize on
// read so historical rows with out-of-band values heal themselves.
func (s Snapshot) Normalize() Snapshot {
	s.Energy = clampPercent(s.Energy)
	s.Stress = clampPercent(s.Stress)
	s.PhysicalResilience = clampPercent(s.PhysicalResilience)
	s.Morale = DeriveMorale(s.Energy, s.Stress)
	return s
}

func clampPercent(value int) int {
	if value < PercentMin {
		return PercentMin
	}
	if value > PercentMax {
		return PercentMax
	}
	return value
}
