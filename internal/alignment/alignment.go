// Package alignment tracks how a player's choices favor each in-world
// faction. Gains are throttled by a hard daily cap per faction; losses
// never are.
package alignment

import (
	"strconv"
	"strings"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
)

// Per-call and per-day bounds on alignment movement.
const (
	DeltaMin = -3
	DeltaMax = 3
	// DailyGainCap is the most positive alignment a (user, faction)
	// pair can accumulate in one simulated day.
	DailyGainCap = 3
)

// Score is the running alignment total for one (user, faction) pair.
// Rows are created lazily, defaulted to zero, the first time a delta
// lands.
type Score struct {
	UserID     string
	FactionKey string
	Value      int
}

// Event is one immutable ledger entry. The (user, source, sourceRef)
// triple identifies the narrative moment that produced it, so a retried
// submission can be detected and dropped.
type Event struct {
	UserID     string
	DayIndex   int
	FactionKey string
	Delta      int
	Source     string
	SourceRef  string
}

// DeltaInput describes a requested alignment change.
type DeltaInput struct {
	UserID     string
	DayIndex   int
	FactionKey string
	Delta      int
	Source     string
	SourceRef  string
}

// Result reports what a delta application actually did.
type Result struct {
	Score Score
	// Event is the ledger entry to append, nil when the call was a no-op.
	Event *Event
	// Capped is true when the daily gain cap reduced or rejected the
	// delta.
	Capped bool
}

// ClampDelta bounds a single delta to [DeltaMin, DeltaMax].
func ClampDelta(delta int) int {
	if delta < DeltaMin {
		return DeltaMin
	}
	if delta > DeltaMax {
		return DeltaMax
	}
	return delta
}

// ApplyDelta applies one alignment change against the current score.
//
// The delta is clamped per call; a positive delta is then capped at
// whatever headroom remains under the daily gain cap, given the sum of
// today's already-recorded positive deltas for this faction. A delta
// reduced to zero is a silent no-op: nil event, unchanged score. The
// caller persists the returned score and appends the event; duplicate
// (source, sourceRef) submissions are the caller's to detect before
// calling.
func ApplyDelta(in DeltaInput, score Score, todayPositiveSum int) (Result, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Result{}, apperrors.New(apperrors.CodeUserIDEmpty, "user id is required")
	}
	if strings.TrimSpace(in.FactionKey) == "" {
		return Result{}, apperrors.New(apperrors.CodeAlignmentEmptyFaction, "faction key is required")
	}
	if in.DayIndex < 1 {
		return Result{}, apperrors.New(apperrors.CodeDayIndexInvalid, "day index must be at least 1")
	}

	delta := ClampDelta(in.Delta)
	capped := false
	if delta > 0 {
		headroom := DailyGainCap - todayPositiveSum
		if headroom <= 0 {
			return Result{Score: score, Capped: true}, nil
		}
		if delta > headroom {
			delta = headroom
			capped = true
		}
	}
	if delta == 0 {
		return Result{Score: score}, nil
	}

	score.UserID = in.UserID
	score.FactionKey = in.FactionKey
	score.Value += delta
	return Result{
		Score:  score,
		Capped: capped,
		Event: &Event{
			UserID:     in.UserID,
			DayIndex:   in.DayIndex,
			FactionKey: in.FactionKey,
			Delta:      delta,
			Source:     in.Source,
			SourceRef:  in.SourceRef,
		},
	}, nil
}

// CapError builds the typed rejection surfaced to players when the
// daily gain cap absorbs an entire delta.
func CapError(factionKey string) error {
	return apperrors.WithMetadata(
		apperrors.CodeAlignmentDailyCap,
		"daily alignment gain cap reached for "+factionKey,
		map[string]string{
			"Faction": factionKey,
			"Cap":     strconv.Itoa(DailyGainCap),
		},
	)
}
