package lifecycle

import (
	"testing"

	"bloodbank/pkg/model"
)

func TestCanMove(t *testing.T) {
	tests := []struct {
		from, to model.Status
		want     bool
	}{
		{model.StatusPending, model.StatusRegistered, true},
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusRejected, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusCompleted, true},
		{model.StatusPending, model.StatusNoShow, false},
		{model.StatusRegistered, model.StatusConfirmed, true},
		{model.StatusRegistered, model.StatusCompleted, true},
		{model.StatusRegistered, model.StatusNoShow, true},
		{model.StatusRegistered, model.StatusCancelled, false},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusNoShow, true},
		{model.StatusConfirmed, model.StatusRegistered, false},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusRejected, model.StatusPending, false},
		{model.StatusNoShow, model.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanMove(tt.from, tt.to); got != tt.want {
				t.Errorf("CanMove(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []model.Status{model.StatusCompleted, model.StatusRejected, model.StatusCancelled, model.StatusNoShow} {
		if !IsTerminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []model.Status{model.StatusPending, model.StatusRegistered, model.StatusConfirmed} {
		if IsTerminal(s) {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestIsKnownAction(t *testing.T) {
	for _, a := range []model.Action{
		model.ActionRegister, model.ActionConfirm, model.ActionComplete, model.ActionReject,
		model.ActionCancel, model.ActionMarkNoShow, model.ActionEditMetadata, model.ActionMarkUsed,
		model.ActionDelete,
	} {
		if !IsKnownAction(a) {
			t.Errorf("expected %s to be known", a)
		}
	}
	if IsKnownAction("archive") {
		t.Errorf("expected archive to be unknown")
	}
}
