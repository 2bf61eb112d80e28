package storylet

import (
	"sort"

	"github.com/ameliebruno/daybound/internal/chance"
)

const (
	// DailyCount is the number of storylets presented each day.
	DailyCount = 2
	// RecentWindowDays is the reuse-avoidance window: storylets run in
	// the trailing window are deprioritized, not excluded.
	RecentWindowDays = 7
	// onboardingMaxDay is the last day on which onboarding-tagged
	// storylets take strict precedence.
	onboardingMaxDay = 3
)

// Run records that a player ran a storylet on a given day.
type Run struct {
	StoryletID string
	DayIndex   int
}

// SelectInput carries the already-fetched facts the selector needs.
// The selector never reaches into a datastore itself.
type SelectInput struct {
	Seed       string
	DayIndex   int
	PlayerTags []string
	Vectors    map[string]int
	Audience   string
	All        []Storylet
	RecentRuns []Run
}

// Select picks the day's storylets.
//
// The pipeline, in order: storylets already run today are excluded;
// requirements are applied; storylets run in the trailing seven days
// are deprioritized; onboarding-tagged storylets fill the slots first
// through day three; remaining slots fill by deterministic score
// (UnitFloat(seed+":"+id) / max(weight, 1), ascending, so a higher
// authored weight raises selection likelihood). When a stage cannot
// fill both slots the pool widens progressively: non-recent, then
// recent-allowed, then even today-used storylets, and finally the
// synthetic fallback pads the result. Only a completely empty universe
// returns an empty slice; the caller treats that as a terminal
// "no content today" state, not an error.
//
// Identical inputs always produce the identical result, in the same
// order.
func Select(in SelectInput) []Storylet {
	today := make(map[string]bool)
	recent := make(map[string]bool)
	for _, run := range in.RecentRuns {
		if run.DayIndex == in.DayIndex {
			today[run.StoryletID] = true
		}
		if run.DayIndex > in.DayIndex-RecentWindowDays && run.DayIndex <= in.DayIndex {
			recent[run.StoryletID] = true
		}
	}

	var activeEligible []Storylet // requirements pass, today-used allowed
	var baseEligible []Storylet   // requirements pass, not run today
	var preferred []Storylet      // additionally not run in the recent window
	for _, s := range in.All {
		if !s.Active {
			continue
		}
		if !s.Requirements.EligibleFor(in.DayIndex, in.PlayerTags, in.Vectors, in.Audience) {
			continue
		}
		activeEligible = append(activeEligible, s)
		if today[s.ID] {
			continue
		}
		baseEligible = append(baseEligible, s)
		if !recent[s.ID] {
			preferred = append(preferred, s)
		}
	}

	picks := make([]Storylet, 0, DailyCount)
	picked := make(map[string]bool)
	take := func(pool []Storylet) {
		for _, s := range sortByScore(in.Seed, pool) {
			if len(picks) == DailyCount {
				return
			}
			if picked[s.ID] {
				continue
			}
			picks = append(picks, s)
			picked[s.ID] = true
		}
	}

	// Onboarding precedence applies to the preferred pool only: in the
	// first days the tutorial beats win over everything else.
	if in.DayIndex <= onboardingMaxDay {
		take(filterByTag(preferred, OnboardingTag, true))
		take(filterByTag(preferred, OnboardingTag, false))
	} else {
		take(preferred)
	}

	if len(picks) < DailyCount {
		take(baseEligible)
	}
	if len(picks) < DailyCount {
		take(activeEligible)
	}
	if len(picks) == 0 {
		return nil
	}
	for len(picks) < DailyCount {
		picks = append(picks, Fallback())
	}
	return picks
}

// Score is the deterministic selection score for one storylet under a
// given seed. Lower scores win.
func Score(seed string, s Storylet) float64 {
	weight := s.Weight
	if weight < 1 {
		weight = 1
	}
	return chance.UnitFloat(seed+":"+s.ID) / float64(weight)
}

func sortByScore(seed string, pool []Storylet) []Storylet {
	// Stable sort: input order is the tie-break.
	sorted := make([]Storylet, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Score(seed, sorted[i]) < Score(seed, sorted[j])
	})
	return sorted
}

func filterByTag(pool []Storylet, tag string, want bool) []Storylet {
	var out []Storylet
	for _, s := range pool {
		if s.HasTag(tag) == want {
			out = append(out, s)
		}
	}
	return out
}
