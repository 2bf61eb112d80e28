package chance

import "sort"

// Probability bounds for resolved checks. No check is ever certain or
// impossible regardless of how stacked the inputs are.
const (
	ChanceMin = 0.05
	ChanceMax = 0.95
)

// Check is the authored configuration for a probabilistic skill check.
type Check struct {
	ID           string
	BaseChance   float64
	SkillWeights map[string]float64
	EnergyWeight float64
	StressWeight float64
	PostureBonus map[string]float64
}

// CheckRequest carries the player-side inputs a check resolves against.
type CheckRequest struct {
	Check   Check
	Skills  map[string]int
	Energy  int
	Stress  int
	Posture string
	Seed    string
}

// Contribution is one additive term of a resolved check's chance,
// broken out so the UI can explain why a check succeeded or failed.
type Contribution struct {
	Source string
	Value  float64
}

// CheckResult is the resolved state of a check.
type CheckResult struct {
	Chance        float64
	Success       bool
	Contributions []Contribution
}

// ResolveCheck computes a success chance from the check configuration
// and the player's skills, day resources, and posture, then resolves
// success deterministically from the seed.
//
// The chance is base + Σ skill·weight + floor(energy/10)·energyWeight +
// floor(stress/10)·stressWeight + postureBonus, clamped to
// [ChanceMin, ChanceMax]. Contributions lists every term including the
// base, so their sum equals the pre-clamp chance.
//
// Identical seeds yield identical results; resolution has no side
// effects.
func ResolveCheck(req CheckRequest) CheckResult {
	check := req.Check
	chance := check.BaseChance
	contributions := []Contribution{{Source: "base", Value: check.BaseChance}}

	// Skills are summed in sorted key order so float accumulation, and
	// therefore the resolved chance, is reproducible.
	skills := make([]string, 0, len(check.SkillWeights))
	for skill := range check.SkillWeights {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	for _, skill := range skills {
		term := float64(req.Skills[skill]) * check.SkillWeights[skill]
		contributions = append(contributions, Contribution{Source: "skill:" + skill, Value: term})
		chance += term
	}

	// Every configured term is listed even when it resolves to zero, so
	// the breakdown always shows what was considered.
	if check.EnergyWeight != 0 {
		energy := float64(req.Energy/10) * check.EnergyWeight
		contributions = append(contributions, Contribution{Source: "energy", Value: energy})
		chance += energy
	}
	if check.StressWeight != 0 {
		stress := float64(req.Stress/10) * check.StressWeight
		contributions = append(contributions, Contribution{Source: "stress", Value: stress})
		chance += stress
	}
	if bonus, ok := check.PostureBonus[req.Posture]; ok {
		contributions = append(contributions, Contribution{Source: "posture:" + req.Posture, Value: bonus})
		chance += bonus
	}

	if chance < ChanceMin {
		chance = ChanceMin
	}
	if chance > ChanceMax {
		chance = ChanceMax
	}

	return CheckResult{
		Chance:        chance,
		Success:       UnitFloat(req.Seed) < chance,
		Contributions: contributions,
	}
}
