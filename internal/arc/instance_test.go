package arc

import (
	"errors"
	"testing"

	apperrors "github.com/ameliebruno/daybound/internal/errors"
	"github.com/ameliebruno/daybound/internal/resources"
)

func costedDefinition() Definition {
	return Definition{
		Key:             "zine",
		OfferWindowDays: 2,
		Steps: []Step{
			{
				Key:           "draft",
				OrderIndex:    0,
				DueOffsetDays: 2, ExpiresAfterDays: 1,
				DefaultNextStepKey: "print",
				Options: []Option{
					{
						Key:     "all-nighter",
						Costs:   resources.Delta{"energy": -20},
						Rewards: resources.Delta{"knowledge": 2},
						RelationalEffects: []RelationalEffect{
							{NPC: "maya", Trust: 1, EmotionalLoad: -1},
						},
						IdentityTags: []string{"maker"},
					},
					{
						Key:              "hire-help",
						Costs:            resources.Delta{"cash_on_hand": -50},
						SkillRequirement: &SkillRequirement{Skill: "charm", Min: 3},
					},
				},
			},
			{
				Key:           "print",
				OrderIndex:    1,
				DueOffsetDays: 1, ExpiresAfterDays: 2,
				Options: []Option{
					{Key: "ship", Rewards: resources.Delta{"social_leverage": 3}},
				},
			},
		},
	}
}

func TestResolveStepAdvances(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 10)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}

	snapshot := resources.Snapshot{Energy: 60}
	next, resolution, err := instance.ResolveStep(def, "all-nighter", snapshot, nil, 11)
	if err != nil {
		t.Fatalf("resolve step: %v", err)
	}
	if next.CurrentStepKey != "print" {
		t.Fatalf("expected advance to print, got %q", next.CurrentStepKey)
	}
	if next.StepDueDay != 12 {
		t.Fatalf("expected due day recomputed to 12 (11+1), got %d", next.StepDueDay)
	}
	if next.StepDeferCount != 0 {
		t.Fatalf("expected defer count reset, got %d", next.StepDeferCount)
	}
	if resolution.Snapshot.Energy != 40 {
		t.Fatalf("expected energy cost applied, got %d", resolution.Snapshot.Energy)
	}
	if resolution.Snapshot.Knowledge != 2 {
		t.Fatalf("expected knowledge reward applied, got %d", resolution.Snapshot.Knowledge)
	}
	if len(resolution.RelationalEffects) != 1 || resolution.RelationalEffects[0].NPC != "maya" {
		t.Fatalf("expected relational effects passed through, got %+v", resolution.RelationalEffects)
	}
	if resolution.Completed {
		t.Fatal("expected arc still in progress")
	}
}

func TestResolveStepCompletes(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	instance, _, err = instance.ResolveStep(def, "all-nighter", resources.Snapshot{Energy: 50}, nil, 2)
	if err != nil {
		t.Fatalf("resolve first step: %v", err)
	}

	// "ship" names no next step and "print" has no default: completion.
	final, resolution, err := instance.ResolveStep(def, "ship", resources.Snapshot{}, nil, 3)
	if err != nil {
		t.Fatalf("resolve final step: %v", err)
	}
	if final.State != InstanceStateCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.State)
	}
	if final.CompletedDay == nil || *final.CompletedDay != 3 {
		t.Fatalf("expected completed day 3, got %v", final.CompletedDay)
	}
	if !resolution.Completed {
		t.Fatal("expected resolution to report completion")
	}
	if resolution.Snapshot.SocialLeverage != 3 {
		t.Fatalf("expected final reward applied, got %d", resolution.Snapshot.SocialLeverage)
	}
}

func TestResolveStepUnaffordable(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}

	snapshot := resources.Snapshot{Energy: 10}
	_, _, err = instance.ResolveStep(def, "all-nighter", snapshot, nil, 2)
	if !apperrors.IsCode(err, apperrors.CodeResourceInsufficient) {
		t.Fatalf("expected RESOURCE_INSUFFICIENT, got %v", err)
	}
	metadata := apperrors.GetMetadata(err)
	if metadata["Resource"] != "energy" || metadata["Need"] != "20" || metadata["Have"] != "10" {
		t.Fatalf("expected actionable insufficiency metadata, got %v", metadata)
	}
	// Rejection happens before any mutation.
	if instance.CurrentStepKey != "draft" || instance.State != InstanceStateActive {
		t.Fatalf("expected instance unchanged, got %+v", instance)
	}
}

func TestResolveStepSkillRequirement(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}

	snapshot := resources.Snapshot{CashOnHand: 100}
	_, _, err = instance.ResolveStep(def, "hire-help", snapshot, map[string]int{"charm": 1}, 2)
	if !apperrors.IsCode(err, apperrors.CodeResourceInsufficient) {
		t.Fatalf("expected skill gate rejection, got %v", err)
	}

	next, _, err := instance.ResolveStep(def, "hire-help", snapshot, map[string]int{"charm": 3}, 2)
	if err != nil {
		t.Fatalf("resolve with sufficient skill: %v", err)
	}
	if next.CurrentStepKey != "print" {
		t.Fatalf("expected advance via default next step, got %q", next.CurrentStepKey)
	}
}

func TestResolveStepUnknownOption(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	_, _, err = instance.ResolveStep(def, "nope", resources.Snapshot{}, nil, 2)
	if !apperrors.IsCode(err, apperrors.CodeArcUnknownOption) {
		t.Fatalf("expected ARC_UNKNOWN_OPTION, got %v", err)
	}
}

func TestDeferKeepsDueDate(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 5) // due day 7
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}

	deferred, err := instance.Defer(6)
	if err != nil {
		t.Fatalf("defer: %v", err)
	}
	if deferred.StepDeferCount != 1 {
		t.Fatalf("expected defer count 1, got %d", deferred.StepDeferCount)
	}
	if deferred.StepDueDay != instance.StepDueDay {
		t.Fatalf("deferral must not move the due date: %d vs %d", deferred.StepDueDay, instance.StepDueDay)
	}
	if deferred.CurrentStepKey != instance.CurrentStepKey {
		t.Fatal("deferral must not change the current step")
	}
}

func TestFailOverdueAppliesStrain(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1) // due 3, expires 4
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	for day := 2; day <= 4; day++ {
		instance, err = instance.Defer(day)
		if err != nil {
			t.Fatalf("defer: %v", err)
		}
	}
	step, err := def.StepByKey(instance.CurrentStepKey)
	if err != nil {
		t.Fatalf("step by key: %v", err)
	}

	snapshot := resources.Snapshot{Stress: 50}
	failed, next, applied, err := instance.FailOverdue(step, 5, DefaultStrain, snapshot)
	if err != nil {
		t.Fatalf("fail overdue: %v", err)
	}
	if failed.State != InstanceStateFailed {
		t.Fatalf("expected FAILED, got %s", failed.State)
	}
	if failed.FailureReason == "" {
		t.Fatal("expected failure reason")
	}
	// Strain scales with the three deferrals: 2 + 2*3.
	if applied[resources.KeyStress] != 8 {
		t.Fatalf("expected strain of 8 stress, got %v", applied)
	}
	if next.Stress != 58 {
		t.Fatalf("expected stress 58, got %d", next.Stress)
	}
}

func TestFailOverdueNotYetDue(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1) // expires day 4
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	step, _ := def.StepByKey(instance.CurrentStepKey)

	same, snapshot, applied, err := instance.FailOverdue(step, 4, DefaultStrain, resources.Snapshot{Stress: 10})
	if err != nil {
		t.Fatalf("fail overdue: %v", err)
	}
	if same.State != InstanceStateActive {
		t.Fatalf("expected instance untouched on its expiry day, got %s", same.State)
	}
	if applied != nil || snapshot.Stress != 10 {
		t.Fatalf("expected no strain before expiry, got %v", applied)
	}
}

func TestAbandon(t *testing.T) {
	def := costedDefinition()
	instance, err := NewInstance("i1", "u1", def, 1)
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	abandoned, err := instance.Abandon(2)
	if err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if abandoned.State != InstanceStateAbandoned {
		t.Fatalf("expected ABANDONED, got %s", abandoned.State)
	}
	if _, err := abandoned.Defer(3); !errors.Is(err, ErrInstanceNotActive) {
		t.Fatalf("expected ErrInstanceNotActive, got %v", err)
	}
	if _, _, err := abandoned.ResolveStep(def, "all-nighter", resources.Snapshot{Energy: 99}, nil, 3); !errors.Is(err, ErrInstanceNotActive) {
		t.Fatalf("expected ErrInstanceNotActive, got %v", err)
	}
}

func TestCanProgressToday(t *testing.T) {
	tcs := []struct {
		name   string
		used   int
		total  int
		extra  int
		wantOK bool
	}{
		{name: "fresh day", used: 0, total: 2, wantOK: true},
		{name: "one used", used: 1, total: 2, wantOK: true},
		{name: "cap hit", used: 2, total: 2, wantOK: false},
		{name: "extra slot", used: 2, total: 2, extra: 1, wantOK: true},
		{name: "default total", used: 1, total: 0, wantOK: true},
		{name: "default total exhausted", used: 2, total: 0, wantOK: false},
	}
	for _, tc := range tcs {
		err := CanProgressToday(tc.used, tc.total, tc.extra)
		if tc.wantOK && err != nil {
			t.Fatalf("%s: expected progression allowed, got %v", tc.name, err)
		}
		if !tc.wantOK {
			if !apperrors.IsCode(err, apperrors.CodeArcSlotsExhausted) {
				t.Fatalf("%s: expected ARC_SLOTS_EXHAUSTED, got %v", tc.name, err)
			}
		}
	}
}
