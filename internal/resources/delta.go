package resources

import (
	"fmt"
	"sort"
	"strconv"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

// Delta is a bag of requested resource changes keyed by resource name.
// Keys may use canonical snake_case names, their camelCase spellings,
// or legacy aliases still present in historical content; unrecognized
// keys are ignored rather than rejected so malformed content never
// crashes a turn.
type Delta map[string]int

// aliases maps every accepted spelling to its canonical key. Legacy
// names (study_progress, money, social_capital, health) remain accepted
// indefinitely because stored content still uses them.
var aliases = map[string]string{
	KeyEnergy:             KeyEnergy,
	KeyStress:             KeyStress,
	KeyKnowledge:          KeyKnowledge,
	KeyCashOnHand:         KeyCashOnHand,
	KeySocialLeverage:     KeySocialLeverage,
	KeyPhysicalResilience: KeyPhysicalResilience,

	"cashOnHand":         KeyCashOnHand,
	"socialLeverage":     KeySocialLeverage,
	"physicalResilience": KeyPhysicalResilience,

	"study_progress": KeyKnowledge,
	"money":          KeyCashOnHand,
	"social_capital": KeySocialLeverage,
	"health":         KeyPhysicalResilience,
}

// CanonicalKey resolves a delta key to its canonical name.
// The second return is false for unrecognized keys.
func CanonicalKey(key string) (string, bool) {
	canonical, ok := aliases[key]
	return canonical, ok
}

// Canonicalize folds every recognized key of a delta onto canonical
// names, summing values that collapse onto the same key. Unrecognized
// keys are dropped.
func Canonicalize(delta Delta) Delta {
	out := make(Delta, len(delta))
	for key, value := range delta {
		canonical, ok := aliases[key]
		if !ok {
			continue
		}
		out[canonical] += value
	}
	return out
}

// Apply adds a delta to a snapshot and returns the next snapshot plus
// the applied subset of the delta.
//
// Percentage resources are clamped after addition; accumulating stocks
// are not. Morale is recomputed from the next energy/stress and cannot
// be targeted by a delta. The applied map reports only recognized,
// nonzero keys, each under its canonical name and exactly as requested
// (pre-clamp), so audit trails can distinguish the requested change
// from the effective one.
func Apply(snapshot Snapshot, delta Delta) (next Snapshot, applied Delta) {
	next = snapshot
	applied = Delta{}

	for key, value := range Canonicalize(delta) {
		if value == 0 {
			continue
		}
		applied[key] = value
		switch key {
		case KeyEnergy:
			next.Energy = clampPercent(next.Energy + value)
		case KeyStress:
			next.Stress = clampPercent(next.Stress + value)
		case KeyPhysicalResilience:
			next.PhysicalResilience = clampPercent(next.PhysicalResilience + value)
		case KeyKnowledge:
			next.Knowledge += value
		case KeyCashOnHand:
			next.CashOnHand += value
		case KeySocialLeverage:
			next.SocialLeverage += value
		}
	}

	next.Morale = DeriveMorale(next.Energy, next.Stress)
	return next, applied
}

// Afford verifies that every negative entry of costs is covered by the
// snapshot. It returns a typed insufficiency error naming the first
// short resource (in sorted key order, for stable messages) or nil when
// the costs are payable.
func Afford(snapshot Snapshot, costs Delta) error {
	canonical := Canonicalize(costs)
	keys := make([]string, 0, len(canonical))
	for key := range canonical {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := canonical[key]
		if value >= 0 {
			continue
		}
		need := -value
		have := amount(snapshot, key)
		if have < need {
			return apperrors.WithMetadata(
				apperrors.CodeResourceInsufficient,
				fmt.Sprintf("insufficient %s: have %d, need %d", key, have, need),
				map[string]string{
					"Resource": key,
					"Have":     strconv.Itoa(have),
					"Need":     strconv.Itoa(need),
				},
			)
		}
	}
	return nil
}

func amount(snapshot Snapshot, key string) int {
	switch key {
	case KeyEnergy:
		return snapshot.Energy
	case KeyStress:
		return snapshot.Stress
	case KeyKnowledge:
		return snapshot.Knowledge
	case KeyCashOnHand:
		return snapshot.CashOnHand
	case KeySocialLeverage:
		return snapshot.SocialLeverage
	case KeyPhysicalResilience:
		return snapshot.PhysicalResilience
	}
	return 0
}
