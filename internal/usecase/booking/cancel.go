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

type CancelBooking struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	notify *notify.Dispatcher
}

func NewCancelBooking(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	notifyDispatcher *notify.Dispatcher,
) *CancelBooking {
	return &CancelBooking{
		repo:   repo,
		audit:  auditDispatcher,
		notify: notifyDispatcher,
	}
}

type CancelBookingInput struct {
	BookingPublicID   string
	RequesterRole     string
	RequesterClientID uint
	ActorID           *uint
}

// Execute cancela o agregado e propaga às linhas — que deixam de bloquear a
// agenda imediatamente.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	in CancelBookingInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingByPublicID(ctx, in.BookingPublicID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	if err := domain.CanCancel(domain.Status(b.Status)); err != nil {
		return nil, err
	}

	if in.RequesterRole == "client" && b.ClientID != in.RequesterClientID {
		return nil, httperr.ErrBusiness("not_booking_owner")
	}

	now := time.Now().UTC()
	b.Status = string(domain.StatusCancelled)
	b.CancelledAt = &now

	if err := uc.repo.SaveBookingStatus(ctx, b, domain.StatusCancelled); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: b.BranchID,
		ActorID:  in.ActorID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	uc.notify.Dispatch(notify.Event{
		BookingID: b.ID,
		PublicID:  b.PublicID,
		Action:    "booking_cancelled",
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
	})

	return b, nil
}
