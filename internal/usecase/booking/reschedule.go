package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/locks"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// USE CASE — reagendamento
// ======================================================

type RescheduleInput struct {
	BookingPublicID string
	NewStart        time.Time

	RequesterRole     string // "staff" ou "client"
	RequesterClientID uint
	ActorID           *uint
}

// Reschedule reexecuta a cadeia do booking com todos os profissionais fixos e
// o início cravado no horário pedido — um único plano determinístico, sem
// varrer inícios base. Se o horário exato não servir para todos, falha.
type Reschedule struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	notify *notify.Dispatcher
	locks  *locks.StaffDayLock
}

func NewReschedule(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	notifyDispatcher *notify.Dispatcher,
	staffDayLock *locks.StaffDayLock,
) *Reschedule {
	return &Reschedule{
		repo:   repo,
		audit:  auditDispatcher,
		notify: notifyDispatcher,
		locks:  staffDayLock,
	}
}

type apptSnapshot struct {
	AppointmentID uint      `json:"appointment_id"`
	StaffID       uint      `json:"staff_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

func (uc *Reschedule) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingByPublicID(ctx, in.BookingPublicID)
	if err != nil {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	// estado terminal: nada mais muda, nem status nem horário
	if err := domain.CanReschedule(domain.Status(b.Status)); err != nil {
		return nil, err
	}

	if in.RequesterRole == "client" && b.ClientID != in.RequesterClientID {
		return nil, httperr.ErrBusiness("not_booking_owner")
	}

	apps, err := uc.repo.ListBookingAppointments(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, httperr.ErrBusiness("booking_not_found")
	}

	branch, err := uc.repo.GetBranchByID(ctx, b.BranchID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(branch.Timezone)
	newStart := in.NewStart.In(loc)
	dayStart := timezone.DayStart(newStart, loc)

	if err := validateDateWindow(branch, dayStart); err != nil {
		return nil, err
	}

	minNotice := branch.MinBookingNoticeMin
	if minNotice < 0 {
		minNotice = 0
	}
	now := timezone.NowIn(branch.Timezone)
	if newStart.Before(now.Add(time.Duration(minNotice) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	startMin := int(newStart.Sub(dayStart) / time.Minute)
	if startMin%schedule.GridStepMin != 0 {
		return nil, httperr.ErrBusiness("off_grid_start")
	}

	steps, err := uc.pinnedSteps(ctx, branch, apps)
	if err != nil {
		return nil, err
	}

	// blocos livres ignorando as próprias linhas que estão sendo movidas
	freeByStaff := make(map[uint][]schedule.Block)
	for _, ap := range apps {
		if _, ok := freeByStaff[ap.StaffID]; ok {
			continue
		}
		free, err := loadStaffFree(ctx, uc.repo, ap.StaffID, dayStart, b.ID)
		if err != nil {
			return nil, err
		}
		freeByStaff[ap.StaffID] = free
	}

	plan, ok := domain.SolvePinned(steps, freeByStaff, dayStart, schedule.GridStepMin, startMin)
	if !ok {
		return nil, httperr.ErrBusiness("slot_unavailable")
	}

	before := make([]apptSnapshot, 0, len(apps))
	after := make([]apptSnapshot, 0, len(apps))
	for i := range apps {
		before = append(before, apptSnapshot{
			AppointmentID: apps[i].ID,
			StaffID:       apps[i].StaffID,
			Start:         apps[i].StartTime,
			End:           apps[i].EndTime,
		})

		apps[i].StartTime = plan.Assignments[i].StartUTC
		apps[i].EndTime = plan.Assignments[i].EndUTC

		after = append(after, apptSnapshot{
			AppointmentID: apps[i].ID,
			StaffID:       apps[i].StaffID,
			Start:         apps[i].StartTime,
			End:           apps[i].EndTime,
		})
	}

	b.StartsAt = plan.StartUTC
	b.EndsAt = plan.EndUTC

	release, err := uc.lockStaffDays(ctx, apps, dayStart)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := uc.repo.RescheduleBooking(ctx, b, apps); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: b.BranchID,
		ActorID:  in.ActorID,
		Action:   "booking_rescheduled",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{"before": before, "after": after},
	})
	uc.notify.Dispatch(notify.Event{
		BookingID: b.ID,
		PublicID:  b.PublicID,
		Action:    "booking_rescheduled",
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
	})

	return b, nil
}

// pinnedSteps reconstrói a cadeia do booking na ordem original, com cada passo
// preso ao profissional que já atendia — nunca "qualquer".
func (uc *Reschedule) pinnedSteps(
	ctx context.Context,
	branch *models.Branch,
	apps []models.Appointment,
) ([]domain.SolveStep, error) {

	services := make(map[uint]*models.Service)

	steps := make([]domain.SolveStep, 0, len(apps))
	for _, ap := range apps {
		svc, ok := services[ap.ServiceID]
		if !ok {
			var err error
			svc, err = uc.repo.GetService(ctx, branch.ID, ap.ServiceID)
			if err != nil {
				return nil, httperr.ErrBusiness("service_not_found")
			}
			services[ap.ServiceID] = svc
		}

		steps = append(steps, domain.SolveStep{
			ServiceID: svc.ID,
			DurationMin: schedule.EffectiveDuration(
				svc.DurationMin,
				branch.BufferBeforeMin,
				branch.BufferAfterMin,
				schedule.GridStepMin,
			),
			PriceCents: svc.PriceCents,
			Candidates: []uint{ap.StaffID},
		})
	}
	return steps, nil
}

func (uc *Reschedule) lockStaffDays(
	ctx context.Context,
	apps []models.Appointment,
	dayStart time.Time,
) (func(), error) {

	day := dayStart.Format("2006-01-02")
	seen := make(map[uint]bool)

	var releases []func()
	releaseAll := func() {
		for _, r := range releases {
			r()
		}
	}

	for _, ap := range apps {
		if seen[ap.StaffID] {
			continue
		}
		seen[ap.StaffID] = true

		release, ok, err := uc.locks.TryLock(ctx, ap.StaffID, day)
		if err != nil {
			releaseAll()
			return nil, err
		}
		if !ok {
			releaseAll()
			return nil, httperr.ErrConflict("slot_conflict")
		}
		releases = append(releases, release)
	}

	return releaseAll, nil
}
