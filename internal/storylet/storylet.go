// Package storylet models single-day narrative beats and the
// deterministic selector that picks which beats a player sees.
package storylet

import (
	"fmt"

	"github.com/ameliebruno/daybound/internal/chance"
	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

// OnboardingTag marks storylets that take precedence during a player's
// first days.
const OnboardingTag = "onboarding"

// Storylet is one self-contained narrative beat with branching choices.
// Storylets are authored content: the engine treats them as immutable.
type Storylet struct {
	ID           string
	Slug         string
	Title        string
	Body         string
	Active       bool
	Tags         []string
	Weight       int
	Requirements Requirements
	Choices      []Choice
}

// Choice is one branch a player can take in a storylet. A choice
// carries either a single fixed Outcome or a weighted Outcomes list,
// and optionally a skill check resolved before the outcome.
type Choice struct {
	ID       string
	Label    string
	Outcome  *chance.Outcome
	Outcomes []chance.Outcome
	Check    *chance.Check
	// FailureOutcome, when set, replaces the regular outcome if the
	// attached check fails.
	FailureOutcome *chance.Outcome
}

// Requirements gates a storylet's daily eligibility. The schema is
// closed on purpose: every gate kind the selector understands is a
// named field, so a new gate cannot be added without the filter logic
// seeing it.
type Requirements struct {
	// MinDayIndex and MaxDayIndex bound the simulated days on which the
	// storylet may appear. Nil means unbounded.
	MinDayIndex *int
	MaxDayIndex *int
	// TagsAny requires a non-empty intersection with the player's
	// identity tags.
	TagsAny []string
	// VectorsMin requires every named player vector to meet or exceed
	// its threshold.
	VectorsMin map[string]int
	// Audience restricts the storylet to one audience cohort.
	Audience string
}

// EligibleFor reports whether the requirements pass for the given
// player facts.
func (r Requirements) EligibleFor(dayIndex int, playerTags []string, vectors map[string]int, audience string) bool {
	if r.MinDayIndex != nil && dayIndex < *r.MinDayIndex {
		return false
	}
	if r.MaxDayIndex != nil && dayIndex > *r.MaxDayIndex {
		return false
	}
	if len(r.TagsAny) > 0 && !anyTagMatch(r.TagsAny, playerTags) {
		return false
	}
	for vector, minimum := range r.VectorsMin {
		if vectors[vector] < minimum {
			return false
		}
	}
	if r.Audience != "" && r.Audience != audience {
		return false
	}
	return true
}

// HasTag reports whether the storylet carries the given tag.
func (s Storylet) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func anyTagMatch(required, actual []string) bool {
	for _, want := range required {
		for _, have := range actual {
			if want == have {
				return true
			}
		}
	}
	return false
}

// FindChoice returns the choice with the given id.
func (s Storylet) FindChoice(choiceID string) (Choice, error) {
	for _, choice := range s.Choices {
		if choice.ID == choiceID {
			return choice, nil
		}
	}
	return Choice{}, apperrors.WithMetadata(
		apperrors.CodeStoryletUnknownChoice,
		fmt.Sprintf("storylet %s has no choice %q", s.ID, choiceID),
		map[string]string{"Storylet": s.ID, "Choice": choiceID},
	)
}

// Fallback returns the synthetic storylet used to pad a day when the
// authored catalog cannot fill both slots. It is intentionally bland:
// a content-integrity stopgap, not a narrative beat.
func Fallback() Storylet {
	return Storylet{
		ID:     "fallback",
		Slug:   "quiet-moment",
		Title:  "A Quiet Moment",
		Body:   "Nothing demands your attention for once. The day stretches out, unhurried.",
		Active: true,
		Weight: 1,
		Choices: []Choice{
			{
				ID:    "rest",
				Label: "Take the pause",
				Outcome: &chance.Outcome{
					ID:     "rest",
					Weight: 1,
					Deltas: map[string]int{"energy": 5, "stress": -5},
					Text:   "You let the stillness do its work.",
				},
			},
		},
	}
}
