package engine

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ameliebruno/daybound/internal/chance"
	"github.com/ameliebruno/daybound/internal/daily"
	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/storage"
	"github.com/ameliebruno/daybound/internal/storylet"
)

// Daily side-activity eligibility odds, rolled once per player-day.
const (
	microTaskOdds = 0.5
	funPulseOdds  = 0.35
)

// StartDayResult is the opening view of one player-day.
type StartDayResult struct {
	Stage     daily.Stage
	Storylets []storylet.Storylet
	Player    storage.PlayerState
}

// StartDay sets up one player-day: it creates the player on first
// contact, picks the day's storylet pair, and rolls the optional
// side-activity eligibility. Calling it again for the same day returns
// the already-selected pair unchanged.
func (e *Engine) StartDay(ctx context.Context, userID string, dayIndex int) (StartDayResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.StartDay", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return StartDayResult{}, err
	}

	player, err := e.players.GetPlayer(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		player = startingState(userID, dayIndex)
		player.UpdatedAt = e.now().UTC()
		if err := e.players.PutPlayer(ctx, player, 0); err != nil {
			return StartDayResult{}, storeErr(err, "player")
		}
		player.Version = 1
	} else if err != nil {
		return StartDayResult{}, err
	}

	record, err := e.days.GetDay(ctx, userID, dayIndex)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		record, err = e.setupDay(ctx, player, dayIndex)
		if err != nil {
			return StartDayResult{}, err
		}
	case err != nil:
		return StartDayResult{}, err
	}

	if player.DayIndex < dayIndex {
		player.DayIndex = dayIndex
		player.UpdatedAt = e.now().UTC()
		if err := e.players.PutPlayer(ctx, player, player.Version); err != nil {
			return StartDayResult{}, storeErr(err, "player")
		}
		player.Version++
	}

	picks, err := e.loadStorylets(ctx, record.StoryletIDs)
	if err != nil {
		return StartDayResult{}, err
	}
	stage, err := e.stageFor(ctx, record)
	if err != nil {
		return StartDayResult{}, err
	}
	return StartDayResult{Stage: stage, Storylets: picks, Player: player}, nil
}

// setupDay runs the selector and rolls side-activity eligibility for a
// day seen for the first time.
func (e *Engine) setupDay(ctx context.Context, player storage.PlayerState, dayIndex int) (storage.DayRecord, error) {
	all, err := e.content.ListStorylets(ctx)
	if err != nil {
		return storage.DayRecord{}, err
	}

	sinceDay := dayIndex - storylet.RecentWindowDays + 1
	if sinceDay < 1 {
		sinceDay = 1
	}
	recent, err := e.runs.ListRunsSince(ctx, player.UserID, sinceDay)
	if err != nil {
		return storage.DayRecord{}, err
	}
	recentRuns := make([]storylet.Run, 0, len(recent))
	for _, run := range recent {
		recentRuns = append(recentRuns, storylet.Run{StoryletID: run.StoryletID, DayIndex: run.DayIndex})
	}

	seed := e.daySeed(player.UserID, dayIndex)
	picks := storylet.Select(storylet.SelectInput{
		Seed:       seed,
		DayIndex:   dayIndex,
		PlayerTags: identityTags(player.IdentityVectors),
		Vectors:    player.IdentityVectors,
		All:        all,
		RecentRuns: recentRuns,
	})
	ids := make([]string, 0, len(picks))
	for _, pick := range picks {
		ids = append(ids, pick.ID)
	}

	record := storage.DayRecord{
		UserID:            player.UserID,
		DayIndex:          dayIndex,
		StoryletIDs:       ids,
		MicroTaskEligible: chance.UnitFloat(seed+":microtask") < microTaskOdds,
		FunPulseEligible:  chance.UnitFloat(seed+":funpulse") < funPulseOdds,
	}
	if err := e.days.PutDay(ctx, record); err != nil {
		return storage.DayRecord{}, err
	}
	return record, nil
}

// identityTags projects the positive identity vectors into tag form for
// requirement matching.
func identityTags(vectors map[string]int) []string {
	tags := make([]string, 0, len(vectors))
	for vector, value := range vectors {
		if value > 0 {
			tags = append(tags, vector)
		}
	}
	return tags
}

func (e *Engine) loadStorylets(ctx context.Context, ids []string) ([]storylet.Storylet, error) {
	picks := make([]storylet.Storylet, 0, len(ids))
	for _, storyletID := range ids {
		if storyletID == storylet.Fallback().ID {
			picks = append(picks, storylet.Fallback())
			continue
		}
		item, err := e.content.GetStorylet(ctx, storyletID)
		if err != nil {
			return nil, storeErr(err, "storylet")
		}
		picks = append(picks, item)
	}
	return picks, nil
}

// DailyStage reports the single stage the player is in right now.
func (e *Engine) DailyStage(ctx context.Context, userID string, dayIndex int) (daily.Stage, error) {
	ctx, span := e.tracer.Start(ctx, "engine.DailyStage", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return "", err
	}

	record, err := e.days.GetDay(ctx, userID, dayIndex)
	if errors.Is(err, storage.ErrNotFound) {
		return daily.StageSetup, nil
	}
	if err != nil {
		return "", err
	}
	return e.stageFor(ctx, record)
}

// stageFor computes the stage from a day record, persisting the
// completion flag the first time the ladder lands on complete.
func (e *Engine) stageFor(ctx context.Context, record storage.DayRecord) (daily.Stage, error) {
	runs, err := e.runs.ListRunsByDay(ctx, record.UserID, record.DayIndex)
	if err != nil {
		return "", err
	}

	stage := daily.ComputeStage(daily.State{
		DayIndex:          record.DayIndex,
		HasStorylets:      len(record.StoryletIDs) > 0,
		CompletedToday:    record.Completed,
		AllocationSaved:   record.AllocationSaved,
		RunsToday:         len(runs),
		ReflectionDone:    record.ReflectionDone,
		CanBoost:          !record.BoostSent,
		MicroTaskEligible: record.MicroTaskEligible,
		MicroTaskDone:     record.MicroTaskDone,
		FunPulseEligible:  record.FunPulseEligible,
		FunPulseDone:      record.FunPulseDone,
	})
	if stage == daily.StageComplete && !record.Completed {
		record.Completed = true
		if err := e.days.PutDay(ctx, record); err != nil {
			return "", err
		}
	}
	return stage, nil
}

// SaveAllocation records the day's skill-focus allocation.
func (e *Engine) SaveAllocation(ctx context.Context, userID string, dayIndex int) error {
	return e.setDayFlag(ctx, "engine.SaveAllocation", userID, dayIndex, func(record *storage.DayRecord) error {
		record.AllocationSaved = true
		return nil
	})
}

// CompleteReflection records the end-of-day reflection.
func (e *Engine) CompleteReflection(ctx context.Context, userID string, dayIndex int) error {
	return e.setDayFlag(ctx, "engine.CompleteReflection", userID, dayIndex, func(record *storage.DayRecord) error {
		record.ReflectionDone = true
		return nil
	})
}

// CompleteMicroTask records the optional micro-task.
func (e *Engine) CompleteMicroTask(ctx context.Context, userID string, dayIndex int) error {
	return e.setDayFlag(ctx, "engine.CompleteMicroTask", userID, dayIndex, func(record *storage.DayRecord) error {
		if !record.MicroTaskEligible {
			return apperrors.New(apperrors.CodeConflict, "no micro task is available today")
		}
		record.MicroTaskDone = true
		return nil
	})
}

// CompleteFunPulse records the optional bonus beat.
func (e *Engine) CompleteFunPulse(ctx context.Context, userID string, dayIndex int) error {
	return e.setDayFlag(ctx, "engine.CompleteFunPulse", userID, dayIndex, func(record *storage.DayRecord) error {
		if !record.FunPulseEligible {
			return apperrors.New(apperrors.CodeConflict, "no fun pulse is available today")
		}
		record.FunPulseDone = true
		return nil
	})
}

// SendBoost records the day's one outgoing social boost.
func (e *Engine) SendBoost(ctx context.Context, userID string, dayIndex int) error {
	return e.setDayFlag(ctx, "engine.SendBoost", userID, dayIndex, func(record *storage.DayRecord) error {
		if record.BoostSent {
			return apperrors.New(apperrors.CodeBoostAlreadySent, "a boost has already been sent today")
		}
		record.BoostSent = true
		return nil
	})
}

func (e *Engine) setDayFlag(ctx context.Context, spanName, userID string, dayIndex int, mutate func(*storage.DayRecord) error) error {
	ctx, span := e.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("day.index", dayIndex),
	))
	defer span.End()

	if err := validateUserDay(userID, dayIndex); err != nil {
		return err
	}
	record, err := e.days.GetDay(ctx, userID, dayIndex)
	if err != nil {
		return storeErr(err, "day")
	}
	if err := mutate(&record); err != nil {
		return err
	}
	return e.days.PutDay(ctx, record)
}
