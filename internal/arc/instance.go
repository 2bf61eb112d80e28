package arc

import (
	"fmt"
	"strconv"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/resources"
)

// InstanceState describes the lifecycle of a running arc.
type InstanceState int

const (
	// InstanceStateUnspecified represents an invalid instance state value.
	InstanceStateUnspecified InstanceState = iota
	// InstanceStateActive indicates the arc is in progress.
	InstanceStateActive
	// InstanceStateCompleted indicates the arc finished. Terminal.
	InstanceStateCompleted
	// InstanceStateFailed indicates a step expired unresolved. Terminal.
	InstanceStateFailed
	// InstanceStateAbandoned indicates the player quit the arc. Terminal.
	InstanceStateAbandoned
)

func (s InstanceState) String() string {
	switch s {
	case InstanceStateActive:
		return "ACTIVE"
	case InstanceStateCompleted:
		return "COMPLETED"
	case InstanceStateFailed:
		return "FAILED"
	case InstanceStateAbandoned:
		return "ABANDONED"
	default:
		return "UNSPECIFIED"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s InstanceState) Terminal() bool {
	return s == InstanceStateCompleted || s == InstanceStateFailed || s == InstanceStateAbandoned
}

// ErrInstanceNotActive indicates an action attempted on a finished arc.
var ErrInstanceNotActive = apperrors.New(apperrors.CodeArcNotActive, "arc instance is not active")

// Instance is one player's progress through an arc.
type Instance struct {
	ID             string
	UserID         string
	ArcKey         string
	State          InstanceState
	CurrentStepKey string
	// StepDueDay is the soft deadline for the current step, recomputed
	// on every step entry.
	StepDueDay     int
	StepDeferCount int
	StartedDay     int
	UpdatedDay     int
	CompletedDay   *int
	FailureReason  string
}

// NewInstance starts an arc at its first step.
func NewInstance(instanceID, userID string, def Definition, day int) (Instance, error) {
	first, err := def.FirstStep()
	if err != nil {
		return Instance{}, err
	}
	instance := Instance{
		ID:         instanceID,
		UserID:     userID,
		ArcKey:     def.Key,
		State:      InstanceStateActive,
		StartedDay: day,
	}
	instance.enterStep(first, day)
	return instance, nil
}

// enterStep moves the instance onto a step, resetting the due date and
// defer count. Deferral never resets the due date; only step entry does.
func (i *Instance) enterStep(step Step, day int) {
	i.CurrentStepKey = step.Key
	i.StepDueDay = day + step.DueOffsetDays
	i.StepDeferCount = 0
	i.UpdatedDay = day
}

// ExpireDay returns the hard deadline of the current step.
func (i Instance) ExpireDay(step Step) int {
	return i.StepDueDay + step.ExpiresAfterDays
}

// Overdue reports whether the current step's hard deadline has passed.
func (i Instance) Overdue(step Step, day int) bool {
	return i.State == InstanceStateActive && day > i.ExpireDay(step)
}

// Defer postpones the current step without resolving it. The due date
// is unchanged; only the defer count grows, feeding the hesitation
// strain if the step later expires.
func (i Instance) Defer(day int) (Instance, error) {
	if i.State != InstanceStateActive {
		return Instance{}, ErrInstanceNotActive
	}
	i.StepDeferCount++
	i.UpdatedDay = day
	return i, nil
}

// Abandon is the player-initiated terminal transition.
func (i Instance) Abandon(day int) (Instance, error) {
	if i.State != InstanceStateActive {
		return Instance{}, ErrInstanceNotActive
	}
	i.State = InstanceStateAbandoned
	i.UpdatedDay = day
	return i, nil
}

// StepResolution reports everything a resolved step changed, as plain
// data for the caller to persist.
type StepResolution struct {
	Option            Option
	Snapshot          resources.Snapshot
	AppliedCosts      resources.Delta
	AppliedRewards    resources.Delta
	RelationalEffects []RelationalEffect
	IdentityTags      []string
	Completed         bool
}

// ResolveStep resolves the current step with the chosen option.
//
// Costs must be affordable up front: an unaffordable option is rejected
// with a typed insufficiency error and no state change. Costs debit,
// rewards credit, relational effects accumulate, and the instance
// advances to the option's next step, the step's default, or completes
// when neither names a follow-up.
func (i Instance) ResolveStep(def Definition, optionKey string, snapshot resources.Snapshot, skills map[string]int, day int) (Instance, StepResolution, error) {
	if i.State != InstanceStateActive {
		return Instance{}, StepResolution{}, ErrInstanceNotActive
	}

	step, err := def.StepByKey(i.CurrentStepKey)
	if err != nil {
		return Instance{}, StepResolution{}, err
	}
	option, err := step.OptionByKey(optionKey)
	if err != nil {
		return Instance{}, StepResolution{}, err
	}

	if req := option.SkillRequirement; req != nil {
		if have := skills[req.Skill]; have < req.Min {
			return Instance{}, StepResolution{}, apperrors.WithMetadata(
				apperrors.CodeResourceInsufficient,
				fmt.Sprintf("option %s requires %s %d, have %d", option.Key, req.Skill, req.Min, have),
				map[string]string{
					"Resource": req.Skill,
					"Have":     strconv.Itoa(have),
					"Need":     strconv.Itoa(req.Min),
				},
			)
		}
	}

	if err := resources.Afford(snapshot, option.Costs); err != nil {
		return Instance{}, StepResolution{}, err
	}

	next, appliedCosts := resources.Apply(snapshot, option.Costs)
	next, appliedRewards := resources.Apply(next, option.Rewards)

	resolution := StepResolution{
		Option:            option,
		Snapshot:          next,
		AppliedCosts:      appliedCosts,
		AppliedRewards:    appliedRewards,
		RelationalEffects: option.RelationalEffects,
		IdentityTags:      option.IdentityTags,
	}

	nextKey := option.NextStepKey
	if nextKey == "" {
		nextKey = step.DefaultNextStepKey
	}
	if nextKey == "" {
		i.State = InstanceStateCompleted
		completed := day
		i.CompletedDay = &completed
		i.UpdatedDay = day
		resolution.Completed = true
		return i, resolution, nil
	}

	nextStep, err := def.StepByKey(nextKey)
	if err != nil {
		return Instance{}, StepResolution{}, err
	}
	i.enterStep(nextStep, day)
	return i, resolution, nil
}

// StrainConfig shapes the hesitation strain applied when a deferred
// step finally expires. The penalty grows with each deferral.
type StrainConfig struct {
	BaseStress     int
	PerDeferStress int
}

// DefaultStrain is the stock hesitation strain curve.
var DefaultStrain = StrainConfig{BaseStress: 2, PerDeferStress: 2}

// Delta returns the resource penalty for a step deferred deferCount
// times before expiring.
func (c StrainConfig) Delta(deferCount int) resources.Delta {
	stress := c.BaseStress + c.PerDeferStress*deferCount
	if stress <= 0 {
		return resources.Delta{}
	}
	return resources.Delta{resources.KeyStress: stress}
}

// FailOverdue transitions an instance whose current step passed its
// hard deadline to FAILED, applying the hesitation strain to the
// snapshot. The caller is expected to have checked Overdue first; a
// non-overdue instance is returned unchanged.
func (i Instance) FailOverdue(step Step, day int, strain StrainConfig, snapshot resources.Snapshot) (Instance, resources.Snapshot, resources.Delta, error) {
	if i.State != InstanceStateActive {
		return Instance{}, resources.Snapshot{}, nil, ErrInstanceNotActive
	}
	if !i.Overdue(step, day) {
		return i, snapshot, nil, nil
	}

	i.State = InstanceStateFailed
	i.FailureReason = fmt.Sprintf("step %s expired on day %d", step.Key, i.ExpireDay(step))
	i.UpdatedDay = day

	next, applied := resources.Apply(snapshot, strain.Delta(i.StepDeferCount))
	return i, next, applied, nil
}
