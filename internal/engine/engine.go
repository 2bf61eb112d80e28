// Package engine composes the pure simulation components over the
// storage ports into the day-by-day game loop. Every operation takes a
// context, resolves against persisted state, and returns plain data;
// all randomness flows through seeds derived from a single root, so a
// given (root, user, day) replays identically.
package engine

import (
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ameliebruno/daybound/internal/arc"
	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/id"
	"github.com/ameliebruno/daybound/internal/resources"
	"github.com/ameliebruno/daybound/internal/storage"
)

const tracerName = "daybound/engine"

// Engine drives the daily simulation for every player.
type Engine struct {
	players    storage.PlayerStore
	runs       storage.RunStore
	arcs       storage.ArcStore
	alignments storage.AlignmentStore
	days       storage.DayStore
	content    storage.ContentStore

	seedRoot string
	strain   arc.StrainConfig
	arcSlots int
	now      func() time.Time
	newID    func() (string, error)
	tracer   trace.Tracer
}

// Config wires an Engine. All stores are required; the rest defaults.
type Config struct {
	Players    storage.PlayerStore
	Runs       storage.RunStore
	Arcs       storage.ArcStore
	Alignments storage.AlignmentStore
	Days       storage.DayStore
	Content    storage.ContentStore

	// SeedRoot namespaces every derived seed. Two engines with the same
	// root and stores replay the same simulation.
	SeedRoot string
	// Strain overrides the hesitation strain curve.
	Strain *arc.StrainConfig
	// DailyArcSlots overrides the per-day arc advance cap.
	DailyArcSlots int
	Now           func() time.Time
	NewID         func() (string, error)
}

// New builds an Engine from the given configuration.
func New(cfg Config) *Engine {
	e := &Engine{
		players:    cfg.Players,
		runs:       cfg.Runs,
		arcs:       cfg.Arcs,
		alignments: cfg.Alignments,
		days:       cfg.Days,
		content:    cfg.Content,
		seedRoot:   cfg.SeedRoot,
		strain:     arc.DefaultStrain,
		arcSlots:   cfg.DailyArcSlots,
		now:        cfg.Now,
		newID:      cfg.NewID,
		tracer:     otel.Tracer(tracerName),
	}
	if e.seedRoot == "" {
		e.seedRoot = "daybound"
	}
	if cfg.Strain != nil {
		e.strain = *cfg.Strain
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = id.NewID
	}
	return e
}

// daySeed is the selection seed for one player-day.
func (e *Engine) daySeed(userID string, dayIndex int) string {
	return fmt.Sprintf("%s:%s:%d", e.seedRoot, userID, dayIndex)
}

// actionSeed is the resolution seed for one storylet play. Check and
// outcome sub-seeds hang off it inside the resolver.
func (e *Engine) actionSeed(userID string, dayIndex int, storyletID string) string {
	return fmt.Sprintf("%s:%s:%d:%s", e.seedRoot, userID, dayIndex, storyletID)
}

// startingState is the state a brand-new player begins with.
func startingState(userID string, dayIndex int) storage.PlayerState {
	return storage.PlayerState{
		UserID:   userID,
		DayIndex: dayIndex,
		Snapshot: resources.Snapshot{
			Energy:             70,
			Stress:             20,
			CashOnHand:         50,
			PhysicalResilience: 70,
		}.Normalize(),
		Skills:          map[string]int{},
		IdentityVectors: map[string]int{},
	}
}

// storeErr maps storage sentinel errors onto typed domain errors.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WithMetadata(apperrors.CodeNotFound, what+" not found", map[string]string{"Entity": what})
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.New(apperrors.CodeConflict, what+" already exists")
	case errors.Is(err, storage.ErrConflict):
		return apperrors.New(apperrors.CodeConflict, what+" was modified concurrently")
	default:
		return err
	}
}

func validateUserDay(userID string, dayIndex int) error {
	if userID == "" {
		return apperrors.New(apperrors.CodeUserIDEmpty, "user id is required")
	}
	if dayIndex < 1 {
		return apperrors.New(apperrors.CodeDayIndexInvalid, "day index must be at least 1")
	}
	return nil
}
