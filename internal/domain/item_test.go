package domain

import "testing"

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"received to resolving", StateReceived, StateResolving, true},
		{"resolving to media_resolved", StateResolving, StateMediaResolved, true},
		{"media_resolved to processed", StateMediaResolved, StateProcessed, true},
		{"received to failed", StateReceived, StateFailed, true},
		{"resolving to failed", StateResolving, StateFailed, true},
		{"media_resolved to failed", StateMediaResolved, StateFailed, true},
		{"failed to resolving (operator reprocess)", StateFailed, StateResolving, true},

		{"no skipping received to media_resolved", StateReceived, StateMediaResolved, false},
		{"no backwards media_resolved to received", StateMediaResolved, StateReceived, false},
		{"processed is terminal", StateProcessed, StateResolving, false},
		{"processed cannot fail", StateProcessed, StateFailed, false},
		{"failed cannot re-fail", StateFailed, StateFailed, false},
		{"failed cannot jump to media_resolved", StateFailed, StateMediaResolved, false},
		{"unknown target state", StateReceived, State("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateReceived, StateResolving, StateMediaResolved} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []State{StateProcessed, StateFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestProcessedProjection(t *testing.T) {
	item := &Item{State: StateMediaResolved}
	if item.Processed() {
		t.Error("media_resolved item must not project processed=true")
	}
	item.State = StateProcessed
	if !item.Processed() {
		t.Error("processed item must project processed=true")
	}
}
