// Package content ships the builtin demo catalog: a small set of
// storylets and arcs used to seed an empty store.
package content

import (
	"context"

	"github.com/ameliebruno/daybound/internal/arc"
	"github.com/ameliebruno/daybound/internal/chance"
	"github.com/ameliebruno/daybound/internal/resources"
	"github.com/ameliebruno/daybound/internal/storage"
	"github.com/ameliebruno/daybound/internal/storylet"
)

// Storylets returns the builtin storylet catalog.
func Storylets() []storylet.Storylet {
	firstDays := 3
	laterDays := 4
	return []storylet.Storylet{
		{
			ID:     "orientation",
			Slug:   "orientation-walk",
			Title:  "Orientation Walk",
			Body:   "Someone hands you a creased map of the district and wishes you luck.",
			Active: true,
			Tags:   []string{storylet.OnboardingTag},
			Weight: 5,
			Requirements: storylet.Requirements{
				MaxDayIndex: &firstDays,
			},
			Choices: []storylet.Choice{
				{
					ID:    "explore",
					Label: "Walk every street on the map",
					Outcome: &chance.Outcome{
						ID:     "explored",
						Weight: 1,
						Deltas: map[string]int{"energy": -5, "knowledge": 1},
						Text:   "By sundown the map is soft from folding, and the streets feel a little more yours.",
					},
				},
				{
					ID:    "rest",
					Label: "Save your legs for tomorrow",
					Outcome: &chance.Outcome{
						ID:     "rested",
						Weight: 1,
						Deltas: map[string]int{"energy": 5},
						Text:   "The map can wait. You find a bench and watch the city move.",
					},
				},
			},
		},
		{
			ID:     "market-shift",
			Slug:   "market-shift",
			Title:  "A Shift at the Market",
			Body:   "The fishmonger is short a pair of hands and long on opinions.",
			Active: true,
			Tags:   []string{"work"},
			Weight: 3,
			Choices: []storylet.Choice{
				{
					ID:    "work-hard",
					Label: "Work the full shift",
					Outcome: &chance.Outcome{
						ID:     "paid",
						Weight: 1,
						Deltas: map[string]int{"energy": -15, "cash_on_hand": 20, "stress": 5},
						Text:   "Your back aches, your pockets do not.",
					},
				},
				{
					ID:    "charm",
					Label: "Talk more than you lift",
					Outcomes: []chance.Outcome{
						{
							ID:     "connections",
							Weight: 2,
							Deltas: map[string]int{"social_leverage": 2, "cash_on_hand": 5},
							Text:   "You learn three names worth knowing and earn a little besides.",
						},
						{
							ID:     "scolded",
							Weight: 1,
							Deltas: map[string]int{"stress": 5},
							Text:   "The fishmonger's opinion of talkers is loud and unflattering.",
						},
					},
				},
			},
		},
		{
			ID:     "night-study",
			Slug:   "night-study",
			Title:  "Night Study",
			Body:   "The archive reading room stays open late for those who ask nicely.",
			Active: true,
			Tags:   []string{"study"},
			Weight: 3,
			Choices: []storylet.Choice{
				{
					ID:    "push-through",
					Label: "Study until the lamps burn out",
					Check: &chance.Check{
						BaseChance:   0.5,
						SkillWeights: map[string]float64{"focus": 0.004},
					},
					Outcome: &chance.Outcome{
						ID:     "breakthrough",
						Weight: 1,
						Deltas: map[string]int{"knowledge": 3, "energy": -10},
						Text:   "Past midnight, the argument you have chased for weeks finally sits still.",
					},
					FailureOutcome: &chance.Outcome{
						ID:     "burned-out",
						Weight: 1,
						Deltas: map[string]int{"energy": -10, "stress": 5},
						Text:   "The words swim. You learn nothing except the shape of your own exhaustion.",
					},
				},
			},
		},
		{
			ID:     "river-run",
			Slug:   "river-run",
			Title:  "Run Along the River",
			Body:   "The towpath is empty this early, apart from the herons.",
			Active: true,
			Tags:   []string{"health"},
			Weight: 2,
			Requirements: storylet.Requirements{
				MinDayIndex: &laterDays,
			},
			Choices: []storylet.Choice{
				{
					ID:    "run",
					Label: "Run the full loop",
					Outcome: &chance.Outcome{
						ID:     "ran",
						Weight: 1,
						Deltas: map[string]int{"physical_resilience": 3, "stress": -5, "energy": -5},
						Text:   "Your lungs complain and then, somewhere past the second bridge, stop.",
					},
				},
			},
		},
	}
}

// Arcs returns the builtin arc catalog.
func Arcs() []arc.Definition {
	return []arc.Definition{
		{
			Key:             "printmaker",
			Title:           "The Printmaker's Apprentice",
			Summary:         "An aging printmaker needs hands steadier than her own.",
			OfferWindowDays: 3,
			Steps: []arc.Step{
				{
					Key:              "first-errand",
					OrderIndex:       1,
					Prompt:           "She asks you to fetch a crate of type from the foundry before it closes.",
					DueOffsetDays:    2,
					ExpiresAfterDays: 2,
					Options: []arc.Option{
						{
							Key:          "fetch-it",
							Label:        "Carry the crate across town",
							Costs:        resources.Delta{"energy": -10},
							Rewards:      resources.Delta{"cash_on_hand": 5},
							IdentityTags: []string{"reliable"},
							RelationalEffects: []arc.RelationalEffect{
								{NPC: "printmaker", Trust: 1, Reliability: 1},
							},
							NextStepKey: "learn-press",
						},
					},
				},
				{
					Key:              "learn-press",
					OrderIndex:       2,
					Prompt:           "The press has moods. She offers to teach you its temper.",
					DueOffsetDays:    3,
					ExpiresAfterDays: 2,
					Options: []arc.Option{
						{
							Key:     "apprentice",
							Label:   "Learn the press",
							Costs:   resources.Delta{"energy": -10},
							Rewards: resources.Delta{"knowledge": 3},
							RelationalEffects: []arc.RelationalEffect{
								{NPC: "printmaker", Trust: 2},
							},
						},
					},
				},
			},
		},
		{
			Key:             "debt-collector",
			Title:           "The Collector Comes Around",
			Summary:         "An old debt, not yours, has found its way to your name.",
			OfferWindowDays: 2,
			Steps: []arc.Step{
				{
					Key:              "first-visit",
					OrderIndex:       1,
					Prompt:           "The collector is polite the first time. They always are.",
					DueOffsetDays:    2,
					ExpiresAfterDays: 1,
					Options: []arc.Option{
						{
							Key:     "pay-down",
							Label:   "Pay what you can",
							Costs:   resources.Delta{"cash_on_hand": -15},
							Rewards: resources.Delta{"stress": -5},
						},
						{
							Key:   "stall",
							Label: "Talk your way into another week",
							SkillRequirement: &arc.SkillRequirement{
								Skill: "nerve",
								Min:   3,
							},
							Rewards:      resources.Delta{"social_leverage": 1},
							IdentityTags: []string{"silver-tongued"},
						},
					},
				},
			},
		},
	}
}

// Seed writes the builtin catalog into a content store.
func Seed(ctx context.Context, store storage.ContentStore) error {
	for _, item := range Storylets() {
		if err := store.PutStorylet(ctx, item); err != nil {
			return err
		}
	}
	for _, def := range Arcs() {
		if err := store.PutArcDefinition(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
