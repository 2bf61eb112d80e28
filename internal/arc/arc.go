// Package arc implements multi-day narrative quests: the offer
// lifecycle that surfaces them, the instance lifecycle that plays them
// out step by step, and the day-indexed due and expiry windows both run
// on. There is no wall-clock time anywhere in this package; every
// deadline is a simulated day index.
package arc

import (
	"fmt"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/resources"
)

// Definition is the authored content for one arc. Immutable.
type Definition struct {
	Key     string
	Title   string
	Summary string
	// OfferWindowDays is how many days an offer for this arc stays open
	// after it is first shown.
	OfferWindowDays int
	Steps           []Step
}

// Step is one stage of an arc. Immutable content.
type Step struct {
	Key        string
	OrderIndex int
	Prompt     string
	// DueOffsetDays is the soft deadline, in days after step entry.
	DueOffsetDays int
	// ExpiresAfterDays is the hard deadline, in days after the due day.
	ExpiresAfterDays int
	// DefaultNextStepKey is the follow-up step used when the resolving
	// option does not name one. Empty means the arc completes.
	DefaultNextStepKey string
	Options            []Option
}

// Option is one way a player can resolve a step.
type Option struct {
	Key   string
	Label string
	// Costs are authored as negative deltas so they feed Afford and
	// Apply unchanged.
	Costs            resources.Delta
	Rewards          resources.Delta
	SkillRequirement *SkillRequirement
	IdentityTags     []string
	RelationalEffects []RelationalEffect
	// NextStepKey overrides the step's default follow-up.
	NextStepKey string
}

// SkillRequirement gates an option behind a minimum skill level.
type SkillRequirement struct {
	Skill string
	Min   int
}

// RelationalEffect adjusts the player's standing with one NPC.
// Relational values accumulate without bounds.
type RelationalEffect struct {
	NPC           string
	Trust         int
	Reliability   int
	EmotionalLoad int
}

// FirstStep returns the step with the lowest order index.
func (d Definition) FirstStep() (Step, error) {
	if len(d.Steps) == 0 {
		return Step{}, apperrors.WithMetadata(
			apperrors.CodeArcUnknownStep,
			fmt.Sprintf("arc %s has no steps", d.Key),
			map[string]string{"Arc": d.Key},
		)
	}
	first := d.Steps[0]
	for _, step := range d.Steps[1:] {
		if step.OrderIndex < first.OrderIndex {
			first = step
		}
	}
	return first, nil
}

// StepByKey returns the step with the given key.
func (d Definition) StepByKey(key string) (Step, error) {
	for _, step := range d.Steps {
		if step.Key == key {
			return step, nil
		}
	}
	return Step{}, apperrors.WithMetadata(
		apperrors.CodeArcUnknownStep,
		fmt.Sprintf("arc %s has no step %q", d.Key, key),
		map[string]string{"Arc": d.Key, "StepKey": key},
	)
}

// OptionByKey returns the option with the given key.
func (s Step) OptionByKey(key string) (Option, error) {
	for _, option := range s.Options {
		if option.Key == key {
			return option, nil
		}
	}
	return Option{}, apperrors.WithMetadata(
		apperrors.CodeArcUnknownOption,
		fmt.Sprintf("step %s has no option %q", s.Key, key),
		map[string]string{"StepKey": s.Key, "OptionKey": key},
	)
}
