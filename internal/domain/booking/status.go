package booking

import "github.com/BruksfildServices01/salon-scheduler/internal/httperr"

// ===============================
// Booking / Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
	StatusCompleted Status = "completed"
)

// Blocking diz se o status ocupa a agenda do profissional.
// Cancelado e no-show nunca bloqueiam horário.
func (s Status) Blocking() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// Terminal: nenhuma mutação de status ou horário é permitida depois daqui.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// BlockingStatuses é a lista usada nas queries de conflito.
func BlockingStatuses() []string {
	return []string{
		string(StatusPending),
		string(StatusConfirmed),
		string(StatusCompleted),
	}
}

// ===============================
// Validations
// ===============================

func CanCancel(current Status) error {
	if current.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanReschedule(current Status) error {
	if current.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
