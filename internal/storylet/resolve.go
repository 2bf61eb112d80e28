package storylet

import (
	"github.com/ameliebruno/daybound/internal/chance"
)

// ResolveInput carries the player facts a choice resolves against.
type ResolveInput struct {
	Seed     string
	Storylet Storylet
	ChoiceID string
	Skills   map[string]int
	Vectors  map[string]int
	Energy   int
	Stress   int
	Posture  string
}

// ResolveResult is the resolved branch of a choice: the outcome whose
// deltas the caller should apply, plus the check result when the choice
// carried one.
type ResolveResult struct {
	Choice  Choice
	Outcome chance.Outcome
	Check   *chance.CheckResult
}

// ResolveChoice resolves one choice of a storylet deterministically.
//
// When the choice carries a check, the check resolves first on a
// derived sub-seed; a failed check short-circuits to the choice's
// FailureOutcome when one is authored. Otherwise the outcome is the
// choice's single Outcome, or one picked from its weighted Outcomes on
// a second derived sub-seed. Both sub-seeds hang off the action seed,
// so one seed replays the entire choice.
func ResolveChoice(in ResolveInput) (ResolveResult, error) {
	choice, err := in.Storylet.FindChoice(in.ChoiceID)
	if err != nil {
		return ResolveResult{}, err
	}

	result := ResolveResult{Choice: choice}

	if choice.Check != nil {
		check := chance.ResolveCheck(chance.CheckRequest{
			Check:   *choice.Check,
			Skills:  in.Skills,
			Energy:  in.Energy,
			Stress:  in.Stress,
			Posture: in.Posture,
			Seed:    in.Seed + ":check",
		})
		result.Check = &check
		if !check.Success && choice.FailureOutcome != nil {
			result.Outcome = *choice.FailureOutcome
			return result, nil
		}
	}

	if choice.Outcome != nil {
		result.Outcome = *choice.Outcome
		return result, nil
	}

	outcome, err := chance.ChooseOutcome(in.Seed+":outcome", choice.Outcomes, in.Vectors)
	if err != nil {
		return ResolveResult{}, err
	}
	result.Outcome = outcome
	return result, nil
}
