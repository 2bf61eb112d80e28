package chance

import (
	"fmt"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

var (
	// ErrMissingOutcomes indicates an outcome list with no entries.
	ErrMissingOutcomes = apperrors.New(apperrors.CodeOutcomeMissing, "at least one outcome must be provided")
	// ErrInvalidOutcomeWeight indicates an outcome with a non-positive base weight.
	ErrInvalidOutcomeWeight = apperrors.New(apperrors.CodeOutcomeInvalidWeight, "outcome weight must be positive")
)

// Modifier adjusts an outcome's weight based on a player vector.
// The bonus is floor(vectorValue/10) * Per10, added to the base weight.
type Modifier struct {
	Vector string
	Per10  int
}

// Outcome is one weighted branch of a storylet choice.
type Outcome struct {
	ID       string
	Weight   int
	Modifier *Modifier
	Deltas   map[string]int
	Text     string
}

// EffectiveWeight computes the weight of an outcome under the given
// player vectors. The result is never below 1, so a heavily penalized
// branch stays reachable.
func (o Outcome) EffectiveWeight(vectors map[string]int) int {
	weight := o.Weight
	if o.Modifier != nil {
		weight += floorDiv(vectors[o.Modifier.Vector], 10) * o.Modifier.Per10
	}
	if weight < 1 {
		return 1
	}
	return weight
}

// floorDiv rounds toward negative infinity, so a vector of -9 counts as
// one penalized step rather than truncating to none.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ChooseOutcome deterministically picks one outcome from the list.
//
// # Determinism
//
// ChooseOutcome is deterministic with respect to (seed, outcomes,
// vectors): identical inputs always select the identical outcome. The
// cumulative distribution is built over effective weights in input
// order, and input order is the tie-break, so reordering the list is a
// semantic change.
//
// The selected outcome is the first whose cumulative weight exceeds
// UnitFloat(seed) * totalWeight.
func ChooseOutcome(seed string, outcomes []Outcome, vectors map[string]int) (Outcome, error) {
	if len(outcomes) == 0 {
		return Outcome{}, ErrMissingOutcomes
	}

	total := 0
	weights := make([]int, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.Weight <= 0 {
			return Outcome{}, apperrors.WithMetadata(
				apperrors.CodeOutcomeInvalidWeight,
				fmt.Sprintf("outcome %q has non-positive weight %d", outcome.ID, outcome.Weight),
				map[string]string{"Outcome": outcome.ID},
			)
		}
		weights[i] = outcome.EffectiveWeight(vectors)
		total += weights[i]
	}

	threshold := UnitFloat(seed) * float64(total)
	cumulative := 0
	for i, outcome := range outcomes {
		cumulative += weights[i]
		if float64(cumulative) > threshold {
			return outcome, nil
		}
	}

	// Unreachable while UnitFloat stays below 1; kept as a guard against
	// float rounding at the top of the distribution.
	return outcomes[len(outcomes)-1], nil
}
