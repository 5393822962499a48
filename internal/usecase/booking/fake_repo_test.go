package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

var errNotFound = errors.New("record not found")

// fakeRepo guarda tudo em memória e reproduz o commit guard do repositório
// real: recheca sobreposição e insere sob o mesmo mutex, tudo ou nada.
type fakeRepo struct {
	mu sync.Mutex

	branch    models.Branch
	services  map[uint]models.Service
	staff     map[uint]models.Staff
	qualified map[[2]uint]bool
	blocks    []models.ScheduleBlock
	timeOff   []models.TimeOff

	bookings     []models.Booking
	appointments []models.Appointment
	clients      []models.Client
	nextID       uint

	rescheduleCalls int
	statusCalls     int
}

// newFakeRepo monta a filial padrão dos testes: fuso UTC, sem antecedência
// mínima, três profissionais com expediente 09:00-17:00 todos os dias e um
// quarto sem expediente cadastrado.
func newFakeRepo() *fakeRepo {
	r := &fakeRepo{
		branch: models.Branch{
			ID:                  1,
			Name:                "Centro",
			Slug:                "centro",
			Timezone:            "UTC",
			MinBookingNoticeMin: 0,
			MaxBookingAheadDays: 60,
		},
		services: map[uint]models.Service{
			1: {ID: 1, BranchID: 1, Name: "Corte", DurationMin: 30, PriceCents: 5000, Active: true},
			2: {ID: 2, BranchID: 1, Name: "Coloração", DurationMin: 60, PriceCents: 9000, Active: true},
		},
		staff: map[uint]models.Staff{
			1: {ID: 1, BranchID: 1, Name: "Ana", Active: true},
			2: {ID: 2, BranchID: 1, Name: "Bruno", Active: true},
			3: {ID: 3, BranchID: 1, Name: "Carla", Active: true},
			4: {ID: 4, BranchID: 1, Name: "Diego", Active: true},
		},
		qualified: map[[2]uint]bool{
			{1, 1}: true, {2, 1}: true, {3, 1}: true, {4, 1}: true,
			{2, 2}: true, {3, 2}: true,
		},
		nextID: 1,
	}
	for staffID := uint(1); staffID <= 3; staffID++ {
		for wd := 0; wd < 7; wd++ {
			r.blocks = append(r.blocks, models.ScheduleBlock{
				StaffID: staffID, Weekday: wd, StartTime: "09:00", EndTime: "17:00",
			})
		}
	}
	return r
}

// tomorrowUTC é o dia padrão dos testes: sempre dentro da janela e sem corte
// de antecedência.
func tomorrowUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// seedBooking insere um booking com suas linhas direto no estado, fora do
// caminho de commit.
func (r *fakeRepo) seedBooking(
	publicID string,
	clientID uint,
	status string,
	rows []models.Appointment,
) *models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := models.Booking{
		ID:       r.nextID,
		PublicID: publicID,
		BranchID: r.branch.ID,
		ClientID: clientID,
		StartsAt: rows[0].StartTime,
		EndsAt:   rows[len(rows)-1].EndTime,
		Status:   status,
	}
	r.nextID++
	r.bookings = append(r.bookings, b)

	for _, row := range rows {
		row.ID = r.nextID
		r.nextID++
		row.BookingID = b.ID
		row.BranchID = r.branch.ID
		row.Status = status
		r.appointments = append(r.appointments, row)
	}
	return &b
}

func (r *fakeRepo) overlapsLocked(staffID uint, start, end time.Time, excludeBookingID uint) bool {
	for _, ap := range r.appointments {
		if ap.StaffID != staffID || !domain.Status(ap.Status).Blocking() {
			continue
		}
		if excludeBookingID > 0 && ap.BookingID == excludeBookingID {
			continue
		}
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			return true
		}
	}
	return false
}

// -------- Branch --------

func (r *fakeRepo) GetBranchBySlug(_ context.Context, slug string) (*models.Branch, error) {
	if r.branch.Slug != slug {
		return nil, errNotFound
	}
	b := r.branch
	return &b, nil
}

func (r *fakeRepo) GetBranchByID(_ context.Context, id uint) (*models.Branch, error) {
	if r.branch.ID != id {
		return nil, errNotFound
	}
	b := r.branch
	return &b, nil
}

// -------- Service --------

func (r *fakeRepo) GetService(_ context.Context, branchID, serviceID uint) (*models.Service, error) {
	svc, ok := r.services[serviceID]
	if !ok || svc.BranchID != branchID {
		return nil, errNotFound
	}
	return &svc, nil
}

func (r *fakeRepo) ListActiveServices(_ context.Context, branchID uint) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range r.services {
		if svc.BranchID == branchID && svc.Active {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -------- Staff --------

func (r *fakeRepo) GetStaff(_ context.Context, branchID, staffID uint) (*models.Staff, error) {
	st, ok := r.staff[staffID]
	if !ok || st.BranchID != branchID {
		return nil, errNotFound
	}
	return &st, nil
}

func (r *fakeRepo) ListEligibleStaff(_ context.Context, branchID, serviceID uint) ([]models.Staff, error) {
	var out []models.Staff
	for _, st := range r.staff {
		if st.BranchID == branchID && st.Active && r.qualified[[2]uint{st.ID, serviceID}] {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) IsStaffQualified(_ context.Context, staffID, serviceID uint) (bool, error) {
	return r.qualified[[2]uint{staffID, serviceID}], nil
}

// -------- Staff day --------

func (r *fakeRepo) ListScheduleBlocks(_ context.Context, staffID uint, weekday int) ([]models.ScheduleBlock, error) {
	var out []models.ScheduleBlock
	for _, b := range r.blocks {
		if b.StaffID == staffID && b.Weekday == weekday {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListTimeOff(_ context.Context, staffID uint, start, end time.Time) ([]models.TimeOff, error) {
	var out []models.TimeOff
	for _, o := range r.timeOff {
		if o.StaffID == staffID && o.StartTime.Before(end) && o.EndTime.After(start) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListBlockingAppointments(
	_ context.Context,
	staffID uint,
	start, end time.Time,
	excludeBookingID uint,
) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.StaffID != staffID || !domain.Status(ap.Status).Blocking() {
			continue
		}
		if excludeBookingID > 0 && ap.BookingID == excludeBookingID {
			continue
		}
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, ap)
		}
	}
	return out, nil
}

// -------- Client --------

func (r *fakeRepo) GetOrCreateClient(_ context.Context, branchID uint, name, phone, email string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		if c.BranchID == branchID && c.Phone == phone {
			out := c
			return &out, nil
		}
	}
	c := models.Client{ID: r.nextID, BranchID: branchID, Name: name, Phone: phone, Email: email}
	r.nextID++
	r.clients = append(r.clients, c)
	out := c
	return &out, nil
}

// -------- Booking --------

func (r *fakeRepo) GetBookingByPublicID(_ context.Context, publicID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.PublicID == publicID {
			out := b
			return &out, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeRepo) ListBookingAppointments(_ context.Context, bookingID uint) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.BookingID == bookingID {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeRepo) CreateBookingWithAppointments(
	_ context.Context,
	b *models.Booking,
	appointments []models.Appointment,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ap := range appointments {
		if r.overlapsLocked(ap.StaffID, ap.StartTime, ap.EndTime, 0) {
			return httperr.ErrConflict("slot_conflict")
		}
	}

	b.ID = r.nextID
	r.nextID++
	r.bookings = append(r.bookings, *b)

	for _, ap := range appointments {
		ap.ID = r.nextID
		r.nextID++
		ap.BookingID = b.ID
		r.appointments = append(r.appointments, ap)
	}
	return nil
}

func (r *fakeRepo) RescheduleBooking(
	_ context.Context,
	b *models.Booking,
	appointments []models.Appointment,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ap := range appointments {
		if r.overlapsLocked(ap.StaffID, ap.StartTime, ap.EndTime, b.ID) {
			return httperr.ErrConflict("slot_conflict")
		}
	}

	for i := range r.bookings {
		if r.bookings[i].ID == b.ID {
			r.bookings[i].StartsAt = b.StartsAt
			r.bookings[i].EndsAt = b.EndsAt
		}
	}
	for _, ap := range appointments {
		for i := range r.appointments {
			if r.appointments[i].ID == ap.ID {
				r.appointments[i].StartTime = ap.StartTime
				r.appointments[i].EndTime = ap.EndTime
			}
		}
	}
	r.rescheduleCalls++
	return nil
}

func (r *fakeRepo) SaveBookingStatus(
	_ context.Context,
	b *models.Booking,
	appointmentStatus domain.Status,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.bookings {
		if r.bookings[i].ID == b.ID {
			r.bookings[i].Status = b.Status
			r.bookings[i].CancelledAt = b.CancelledAt
			r.bookings[i].CompletedAt = b.CompletedAt
		}
	}
	for i := range r.appointments {
		if r.appointments[i].BookingID == b.ID {
			r.appointments[i].Status = string(appointmentStatus)
		}
	}
	r.statusCalls++
	return nil
}

// -------- Agenda --------

func (r *fakeRepo) ListStaffAgenda(_ context.Context, staffID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.StaffID == staffID && ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)
