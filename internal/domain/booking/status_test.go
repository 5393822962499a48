package booking

import (
	"testing"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

func TestStatusBlocking(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusCompleted, true},
		{StatusCancelled, false},
		{StatusNoShow, false},
	}
	for _, c := range cases {
		if got := c.status.Blocking(); got != c.want {
			t.Fatalf("%s.Blocking() = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusCancelled, StatusCompleted} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusNoShow} {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}

func TestCanCancel(t *testing.T) {
	if err := CanCancel(StatusPending); err != nil {
		t.Fatalf("pending must be cancellable: %v", err)
	}
	if err := CanCancel(StatusCompleted); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
	if err := CanCancel(StatusCancelled); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestCanComplete(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if err := CanComplete(s); err != nil {
			t.Fatalf("%s must be completable: %v", s, err)
		}
	}
	for _, s := range []Status{StatusCancelled, StatusCompleted, StatusNoShow} {
		if err := CanComplete(s); !httperr.IsBusiness(err, "invalid_state") {
			t.Fatalf("%s: expected invalid_state, got %v", s, err)
		}
	}
}

func TestCanReschedule(t *testing.T) {
	if err := CanReschedule(StatusConfirmed); err != nil {
		t.Fatalf("confirmed must be reschedulable: %v", err)
	}
	if err := CanReschedule(StatusCompleted); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestBlockingStatuses(t *testing.T) {
	got := BlockingStatuses()
	if len(got) != 3 {
		t.Fatalf("expected 3 blocking statuses, got %v", got)
	}
	for _, s := range got {
		if !Status(s).Blocking() {
			t.Fatalf("%s listed as blocking but Blocking() is false", s)
		}
	}
}
