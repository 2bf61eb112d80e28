package daily

import "testing"

// base returns a mid-day state that would resolve to storylet_1.
func base() State {
	return State{
		DayIndex:        4,
		HasStorylets:    true,
		AllocationSaved: true,
	}
}

func TestComputeStagePrecedence(t *testing.T) {
	tcs := []struct {
		name  string
		state func() State
		want  Stage
	}{
		{
			name:  "no content trumps everything",
			state: func() State { s := base(); s.HasStorylets = false; s.RunsToday = 1; return s },
			want:  StageComplete,
		},
		{
			name:  "completed today is idempotent",
			state: func() State { s := base(); s.CompletedToday = true; return s },
			want:  StageComplete,
		},
		{
			name:  "allocation before storylets",
			state: func() State { s := base(); s.AllocationSaved = false; return s },
			want:  StageAllocation,
		},
		{
			name:  "first storylet",
			state: base,
			want:  StageStorylet1,
		},
		{
			name:  "second storylet",
			state: func() State { s := base(); s.RunsToday = 1; return s },
			want:  StageStorylet2,
		},
		{
			name: "fun pulse after reflection",
			state: func() State {
				s := base()
				s.RunsToday = 2
				s.ReflectionDone = true
				s.FunPulseEligible = true
				return s
			},
			want: StageFunPulse,
		},
		{
			name: "complete after reflection without fun pulse",
			state: func() State {
				s := base()
				s.RunsToday = 2
				s.ReflectionDone = true
				s.FunPulseEligible = true
				s.FunPulseDone = true
				return s
			},
			want: StageComplete,
		},
		{
			name: "microtask before social",
			state: func() State {
				s := base()
				s.RunsToday = 2
				s.MicroTaskEligible = true
				s.CanBoost = true
				return s
			},
			want: StageMicroTask,
		},
		{
			name: "social when microtask done",
			state: func() State {
				s := base()
				s.RunsToday = 2
				s.MicroTaskEligible = true
				s.MicroTaskDone = true
				s.CanBoost = true
				return s
			},
			want: StageSocial,
		},
		{
			name:  "reflection when boosting unavailable",
			state: func() State { s := base(); s.RunsToday = 2; return s },
			want:  StageReflection,
		},
	}

	for _, tc := range tcs {
		if got := ComputeStage(tc.state()); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestComputeStageAllocationDominates(t *testing.T) {
	// With content present and the day not completed, a missing
	// allocation wins no matter what else is true.
	for _, runs := range []int{0, 1, 2} {
		for _, reflection := range []bool{false, true} {
			for _, boost := range []bool{false, true} {
				state := State{
					DayIndex:       2,
					HasStorylets:   true,
					RunsToday:      runs,
					ReflectionDone: reflection,
					CanBoost:       boost,
				}
				if got := ComputeStage(state); got != StageAllocation {
					t.Fatalf("runs=%d reflection=%v boost=%v: expected allocation, got %s",
						runs, reflection, boost, got)
				}
			}
		}
	}
}

func TestComputeStageIdempotent(t *testing.T) {
	state := base()
	first := ComputeStage(state)
	for i := 0; i < 5; i++ {
		if again := ComputeStage(state); again != first {
			t.Fatalf("expected stable stage %s, got %s", first, again)
		}
	}
}
