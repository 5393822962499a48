package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

type CompleteBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	notify *notify.Dispatcher
}

func NewCompleteBooking(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	notifyDispatcher *notify.Dispatcher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:   repo,
		audit:  auditDispatcher,
		notify: notifyDispatcher,
	}
}

type CompleteBookingInput struct {
	BookingPublicID string
	RequesterRole   string
	ActorID         *uint
}

func (uc *CompleteBooking) Execute(
	ctx context.Context,
	in CompleteBookingInput,
) (*models.Booking, error) {

	// concluir é ação da equipe, não do cliente
	if in.RequesterRole == "client" {
		return nil, httperr.ErrBusiness("not_booking_owner")
	}

	b, err := uc.repo.GetBookingByPublicID(ctx, in.BookingPublicID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := domain.CanComplete(domain.Status(b.Status)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b.Status = string(domain.StatusCompleted)
	b.CompletedAt = &now

	if err := uc.repo.SaveBookingStatus(ctx, b, domain.StatusCompleted); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: b.BranchID,
		ActorID:  in.ActorID,
		Action:   "booking_completed",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	uc.notify.Dispatch(notify.Event{
		BookingID: b.ID,
		PublicID:  b.PublicID,
		Action:    "booking_completed",
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
	})

	return b, nil
}
