// Package storage defines persistence contracts for simulation state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ameliebruno/daybound/internal/alignment"
	"github.com/ameliebruno/daybound/internal/arc"
	"github.com/ameliebruno/daybound/internal/resources"
	"github.com/ameliebruno/daybound/internal/storylet"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrConflict indicates a compare-and-swap write lost to a concurrent update.
	ErrConflict = errors.New("record was modified concurrently")
)

// PlayerState is one player's persistent simulation state. Version grows
// by one on every successful write and guards compare-and-swap updates.
type PlayerState struct {
	UserID          string
	DayIndex        int
	Snapshot        resources.Snapshot
	Skills          map[string]int
	IdentityVectors map[string]int
	Version         int64
	UpdatedAt       time.Time
}

// PlayerStore persists player state records.
type PlayerStore interface {
	GetPlayer(ctx context.Context, userID string) (PlayerState, error)
	// PutPlayer writes the state when the stored version still equals
	// expectedVersion, bumping Version by one. expectedVersion zero
	// creates the record. Returns ErrConflict on a stale write.
	PutPlayer(ctx context.Context, state PlayerState, expectedVersion int64) error
}

// RunRecord is one resolved storylet play.
type RunRecord struct {
	ID         string
	UserID     string
	DayIndex   int
	StoryletID string
	ChoiceKey  string
	OutcomeID  string
	Success    bool
	CreatedAt  time.Time
}

// RunStore persists storylet run records. At most one run per
// (user, day, storylet) exists; CreateRun returns ErrAlreadyExists for a
// duplicate, which callers treat as an idempotent replay.
type RunStore interface {
	CreateRun(ctx context.Context, run RunRecord) error
	// RecordPlay inserts the run and writes the player state as one
	// atomic step: either both land or neither does. ErrAlreadyExists
	// for a duplicate run, ErrConflict for a stale player version; in
	// both cases no write happened.
	RecordPlay(ctx context.Context, run RunRecord, state PlayerState, expectedVersion int64) error
	ListRunsByDay(ctx context.Context, userID string, dayIndex int) ([]RunRecord, error)
	ListRunsSince(ctx context.Context, userID string, sinceDay int) ([]RunRecord, error)
}

// ArcStore persists arc offers and running instances. Offer and instance
// updates are state-guarded: the write only lands when the stored state
// still equals the expected state, otherwise ErrConflict.
type ArcStore interface {
	CreateOffer(ctx context.Context, offer arc.Offer) error
	GetOffer(ctx context.Context, offerID string) (arc.Offer, error)
	// HasOffer reports whether the user has ever received an offer for
	// the arc, in any state.
	HasOffer(ctx context.Context, userID, arcKey string) (bool, error)
	ListOpenOffers(ctx context.Context, userID string) ([]arc.Offer, error)
	UpdateOffer(ctx context.Context, offer arc.Offer, expected arc.OfferState) error

	// CreateInstance returns ErrAlreadyExists when the user already has
	// an active instance of the same arc.
	CreateInstance(ctx context.Context, instance arc.Instance) error
	GetInstance(ctx context.Context, instanceID string) (arc.Instance, error)
	ListActiveInstances(ctx context.Context, userID string) ([]arc.Instance, error)
	UpdateInstance(ctx context.Context, instance arc.Instance, expected arc.InstanceState) error
	// RecordArcAdvance writes the advanced instance, the player state,
	// and the day record as one atomic step. A stale instance state or
	// player version returns ErrConflict with nothing written, so a
	// retry starts from a clean read.
	RecordArcAdvance(ctx context.Context, instance arc.Instance, expectedState arc.InstanceState, state PlayerState, expectedVersion int64, record DayRecord) error
}

// AlignmentStore persists faction scores and the append-only event ledger.
type AlignmentStore interface {
	// GetScore returns the running total for a (user, faction) pair, or
	// a zero-valued score when no delta has landed yet.
	GetScore(ctx context.Context, userID, factionKey string) (alignment.Score, error)
	ListScores(ctx context.Context, userID string) ([]alignment.Score, error)
	PutScore(ctx context.Context, score alignment.Score) error

	// AppendEvent returns ErrAlreadyExists for a duplicate
	// (user, source, sourceRef) submission.
	AppendEvent(ctx context.Context, event alignment.Event) error
	HasEvent(ctx context.Context, userID, source, sourceRef string) (bool, error)
	// TodayPositiveSum returns the sum of positive deltas already
	// recorded for the faction on the given day.
	TodayPositiveSum(ctx context.Context, userID, factionKey string, dayIndex int) (int, error)
}

// DayRecord tracks the facts of one player-day that drive stage
// progression. A missing record means the day has not been set up yet.
type DayRecord struct {
	UserID            string
	DayIndex          int
	StoryletIDs       []string
	AllocationSaved   bool
	ReflectionDone    bool
	MicroTaskEligible bool
	MicroTaskDone     bool
	FunPulseEligible  bool
	FunPulseDone      bool
	BoostSent         bool
	Completed         bool
	// ArcMovesUsed counts the arc-step advances consumed today against
	// the daily slot cap.
	ArcMovesUsed int
}

// DayStore persists per-day progression facts.
type DayStore interface {
	GetDay(ctx context.Context, userID string, dayIndex int) (DayRecord, error)
	PutDay(ctx context.Context, record DayRecord) error
}

// ContentStore persists authored content: storylets and arc definitions.
type ContentStore interface {
	PutStorylet(ctx context.Context, s storylet.Storylet) error
	GetStorylet(ctx context.Context, id string) (storylet.Storylet, error)
	ListStorylets(ctx context.Context) ([]storylet.Storylet, error)

	PutArcDefinition(ctx context.Context, def arc.Definition) error
	GetArcDefinition(ctx context.Context, key string) (arc.Definition, error)
	ListArcDefinitions(ctx context.Context) ([]arc.Definition, error)
}
