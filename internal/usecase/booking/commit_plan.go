package booking

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

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
// INPUT
// ======================================================

type AssignmentInput struct {
	ServiceID uint
	StaffID   uint
	Start     time.Time
}

type CommitPlanInput struct {
	BranchID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	Notes string

	Assignments []AssignmentInput
}

// ======================================================
// USE CASE — commit de um plano escolhido
// ======================================================

// CommitPlan revalida o plano escolhido e o persiste. O solve aconteceu fora
// de qualquer lock, então a persistência recheca sobreposição dentro da mesma
// transação que insere as linhas — tudo entra ou nada entra.
type CommitPlan struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	notify *notify.Dispatcher
	locks  *locks.StaffDayLock
}

func NewCommitPlan(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	notifyDispatcher *notify.Dispatcher,
	staffDayLock *locks.StaffDayLock,
) *CommitPlan {
	return &CommitPlan{
		repo:   repo,
		audit:  auditDispatcher,
		notify: notifyDispatcher,
		locks:  staffDayLock,
	}
}

func (uc *CommitPlan) Execute(
	ctx context.Context,
	in CommitPlanInput,
) (*models.Booking, error) {

	branch, err := uc.repo.GetBranchByID(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	if len(in.Assignments) == 0 {
		return nil, httperr.ErrBusiness("empty_chain")
	}
	if in.ClientName == "" || in.ClientPhone == "" {
		return nil, httperr.ErrBusiness("invalid_request")
	}

	assignments, err := uc.resolveAssignments(ctx, branch, in.Assignments)
	if err != nil {
		return nil, err
	}

	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].StartUTC.Before(assignments[j].StartUTC)
	})

	// A premissa da cadeia é uma visita única sem interrupção: qualquer
	// folga entre atribuições é entrada malformada, não conflito.
	if err := domain.ValidateChain(assignments); err != nil {
		return nil, err
	}

	loc := timezone.Location(branch.Timezone)
	dayStart := timezone.DayStart(assignments[0].StartUTC, loc)

	if err := validateDateWindow(branch, dayStart); err != nil {
		return nil, err
	}

	minNotice := branch.MinBookingNoticeMin
	if minNotice < 0 {
		minNotice = 0
	}
	now := timezone.NowIn(branch.Timezone)
	if assignments[0].StartUTC.Before(now.Add(time.Duration(minNotice) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	if err := uc.validateCoverage(ctx, assignments, dayStart); err != nil {
		return nil, err
	}

	client, err := uc.repo.GetOrCreateClient(
		ctx,
		branch.ID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		PublicID: uuid.NewString(),
		BranchID: branch.ID,
		ClientID: client.ID,
		StartsAt: assignments[0].StartUTC,
		EndsAt:   assignments[len(assignments)-1].EndUTC,
		Status:   string(domain.InitialStatus()),
		Notes:    in.Notes,
	}

	rows := make([]models.Appointment, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, models.Appointment{
			BranchID:   branch.ID,
			StaffID:    a.StaffID,
			ServiceID:  a.ServiceID,
			StartTime:  a.StartUTC,
			EndTime:    a.EndUTC,
			Status:     string(domain.InitialStatus()),
			PriceCents: a.PriceCents,
		})
	}

	release, err := uc.lockStaffDays(ctx, assignments, dayStart)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := uc.repo.CreateBookingWithAppointments(ctx, b, rows); err != nil {
		return nil, err
	}

	// Efeitos colaterais só depois do commit, nunca dentro da transação.
	uc.audit.Dispatch(audit.Event{
		BranchID: branch.ID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})
	uc.notify.Dispatch(notify.Event{
		BookingID: b.ID,
		PublicID:  b.PublicID,
		Action:    "booking_created",
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
	})

	return b, nil
}

// resolveAssignments revalida serviço e profissional de cada atribuição e
// recalcula duração e preço a partir dos dados de referência — nada vem do
// payload do cliente além de ids e inícios.
func (uc *CommitPlan) resolveAssignments(
	ctx context.Context,
	branch *models.Branch,
	in []AssignmentInput,
) ([]domain.ChainAssignment, error) {

	assignments := make([]domain.ChainAssignment, 0, len(in))
	for _, a := range in {
		svc, err := uc.repo.GetService(ctx, branch.ID, a.ServiceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		if !svc.Active {
			return nil, httperr.ErrBusiness("service_inactive")
		}

		staff, err := uc.repo.GetStaff(ctx, branch.ID, a.StaffID)
		if err != nil {
			return nil, httperr.ErrBusiness("staff_not_found")
		}
		if !staff.Active {
			return nil, httperr.ErrBusiness("staff_not_eligible")
		}
		qualified, err := uc.repo.IsStaffQualified(ctx, staff.ID, svc.ID)
		if err != nil {
			return nil, err
		}
		if !qualified {
			return nil, httperr.ErrBusiness("staff_not_eligible")
		}

		durationMin := schedule.EffectiveDuration(
			svc.DurationMin,
			branch.BufferBeforeMin,
			branch.BufferAfterMin,
			schedule.GridStepMin,
		)

		start := a.Start.UTC()
		assignments = append(assignments, domain.ChainAssignment{
			StaffID:     staff.ID,
			ServiceID:   svc.ID,
			StartUTC:    start,
			EndUTC:      start.Add(time.Duration(durationMin) * time.Minute),
			DurationMin: durationMin,
			PriceCents:  svc.PriceCents,
		})
	}
	return assignments, nil
}

// validateCoverage confere que cada atribuição cabe inteira nos blocos livres
// do profissional (expediente, grade, ausências). A recheca transacional cuida
// só da corrida; aqui se rejeita plano que nunca foi viável.
func (uc *CommitPlan) validateCoverage(
	ctx context.Context,
	assignments []domain.ChainAssignment,
	dayStart time.Time,
) error {

	freeByStaff := make(map[uint][]schedule.Block)
	for _, a := range assignments {
		free, ok := freeByStaff[a.StaffID]
		if !ok {
			var err error
			free, err = loadStaffFree(ctx, uc.repo, a.StaffID, dayStart, 0)
			if err != nil {
				return err
			}
			freeByStaff[a.StaffID] = free
		}

		startMin := int(a.StartUTC.Sub(dayStart) / time.Minute)
		if startMin%schedule.GridStepMin != 0 {
			return httperr.ErrBusiness("off_grid_start")
		}
		if !schedule.Covers(free, startMin, a.DurationMin) {
			return httperr.ErrBusiness("outside_working_hours")
		}
	}
	return nil
}

// lockStaffDays toma o lock consultivo de cada (profissional, dia) envolvido,
// em ordem de id. Falha de aquisição é tratada como conflito: o chamador
// recalcula e tenta de novo.
func (uc *CommitPlan) lockStaffDays(
	ctx context.Context,
	assignments []domain.ChainAssignment,
	dayStart time.Time,
) (func(), error) {

	seen := make(map[uint]bool)
	var staffIDs []uint
	for _, a := range assignments {
		if !seen[a.StaffID] {
			seen[a.StaffID] = true
			staffIDs = append(staffIDs, a.StaffID)
		}
	}
	sort.Slice(staffIDs, func(i, j int) bool { return staffIDs[i] < staffIDs[j] })

	day := dayStart.Format("2006-01-02")
	var releases []func()
	releaseAll := func() {
		for _, r := range releases {
			r()
		}
	}

	for _, staffID := range staffIDs {
		release, ok, err := uc.locks.TryLock(ctx, staffID, day)
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
