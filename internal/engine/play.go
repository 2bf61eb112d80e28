package engine

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ameliebruno/daybound/internal/chance"
	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/resources"
	"github.com/ameliebruno/daybound/internal/storage"
	"github.com/ameliebruno/daybound/internal/storylet"
)

// PlayResult reports one resolved storylet play.
type PlayResult struct {
	Run      storage.RunRecord
	Outcome  chance.Outcome
	Check    *chance.CheckResult
	Snapshot resources.Snapshot
	Applied  resources.Delta
	// AlreadyPlayed is true when the storylet was already run today; the
	// call was a no-op and Snapshot is the current state.
	AlreadyPlayed bool
}

// PlayStorylet resolves one choice of one of the day's storylets and
// persists the consequences. A replayed (user, day, storylet) submission
// is absorbed as a no-op rather than double-applying deltas.
func (e *Engine) PlayStorylet(ctx context.Context, userID string, dayIndex int, storyletID, choiceID string) (PlayResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.PlayStorylet", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("day.index", dayIndex),
		attribute.String("storylet.id", storyletID),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return PlayResult{}, err
	}

	record, err := e.days.GetDay(ctx, userID, dayIndex)
	if err != nil {
		return PlayResult{}, storeErr(err, "day")
	}
	if !containsID(record.StoryletIDs, storyletID) {
		return PlayResult{}, apperrors.WithMetadata(
			apperrors.CodeNotFound,
			"storylet is not part of today's selection",
			map[string]string{"Storylet": storyletID},
		)
	}

	player, err := e.players.GetPlayer(ctx, userID)
	if err != nil {
		return PlayResult{}, storeErr(err, "player")
	}

	var item storylet.Storylet
	if storyletID == storylet.Fallback().ID {
		item = storylet.Fallback()
	} else {
		item, err = e.content.GetStorylet(ctx, storyletID)
		if err != nil {
			return PlayResult{}, storeErr(err, "storylet")
		}
	}

	resolved, err := storylet.ResolveChoice(storylet.ResolveInput{
		Seed:     e.actionSeed(userID, dayIndex, storyletID),
		Storylet: item,
		ChoiceID: choiceID,
		Skills:   player.Skills,
		Vectors:  player.IdentityVectors,
		Energy:   player.Snapshot.Energy,
		Stress:   player.Snapshot.Stress,
	})
	if err != nil {
		return PlayResult{}, err
	}

	runID, err := e.newID()
	if err != nil {
		return PlayResult{}, err
	}
	run := storage.RunRecord{
		ID:         runID,
		UserID:     userID,
		DayIndex:   dayIndex,
		StoryletID: storyletID,
		ChoiceKey:  choiceID,
		OutcomeID:  resolved.Outcome.ID,
		Success:    resolved.Check == nil || resolved.Check.Success,
		CreatedAt:  e.now().UTC(),
	}
	next, applied := resources.Apply(player.Snapshot, resolved.Outcome.Deltas)
	updated := player
	updated.Snapshot = next
	updated.UpdatedAt = e.now().UTC()

	// The run and the snapshot move in one atomic write: a lost version
	// race rolls back the run too, so a retry replays the whole action
	// instead of finding a run whose deltas never landed.
	if err := e.runs.RecordPlay(ctx, run, updated, player.Version); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return PlayResult{Snapshot: player.Snapshot, AlreadyPlayed: true}, nil
		}
		return PlayResult{}, storeErr(err, "play")
	}

	return PlayResult{
		Run:      run,
		Outcome:  resolved.Outcome,
		Check:    resolved.Check,
		Snapshot: next,
		Applied:  applied,
	}, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
