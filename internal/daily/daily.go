// Package daily computes where a player stands in the day's ritual.
// The stage is never persisted; it is recomputed from the day's facts
// on every read, so re-entry is idempotent and side-effect free.
package daily

// Stage is one station of the daily loop.
type Stage string

const (
	// StageSetup is the stage before any facts exist for the day.
	StageSetup Stage = "setup"
	// StageAllocation asks the player to allocate the day's skill focus.
	StageAllocation Stage = "allocation"
	// StageStorylet1 is the first of the day's two narrative beats.
	StageStorylet1 Stage = "storylet_1"
	// StageStorylet2 is the second narrative beat.
	StageStorylet2 Stage = "storylet_2"
	// StageMicroTask is the optional skill micro-game.
	StageMicroTask Stage = "microtask"
	// StageSocial is the boost-sending station.
	StageSocial Stage = "social"
	// StageReflection is the end-of-day journaling station.
	StageReflection Stage = "reflection"
	// StageFunPulse is the optional bonus beat after reflection.
	StageFunPulse Stage = "fun_pulse"
	// StageComplete marks the day as finished.
	StageComplete Stage = "complete"
)

// State is the bundle of already-fetched facts about a player's day.
type State struct {
	DayIndex          int
	HasStorylets      bool
	CompletedToday    bool
	AllocationSaved   bool
	RunsToday         int
	ReflectionDone    bool
	CanBoost          bool
	MicroTaskEligible bool
	MicroTaskDone     bool
	FunPulseEligible  bool
	FunPulseDone      bool
}

// ComputeStage resolves the single stage the player is in right now.
//
// The precedence is the contract: it encodes the pacing of the daily
// ritual (allocate, two narrative beats, optional micro-game, social,
// reflect, optional bonus, done) and callers depend on the exact
// ordering. First match wins.
func ComputeStage(state State) Stage {
	switch {
	case !state.HasStorylets:
		return StageComplete
	case state.CompletedToday:
		return StageComplete
	case !state.AllocationSaved:
		return StageAllocation
	case state.RunsToday == 0:
		return StageStorylet1
	case state.RunsToday == 1:
		return StageStorylet2
	case state.ReflectionDone && state.FunPulseEligible && !state.FunPulseDone:
		return StageFunPulse
	case state.ReflectionDone:
		return StageComplete
	case state.MicroTaskEligible && !state.MicroTaskDone:
		return StageMicroTask
	case state.CanBoost:
		return StageSocial
	default:
		return StageReflection
	}
}
