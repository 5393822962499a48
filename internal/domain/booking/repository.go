package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Repository interface {
	// -------- Branch --------
	GetBranchBySlug(
		ctx context.Context,
		slug string,
	) (*models.Branch, error)

	GetBranchByID(
		ctx context.Context,
		id uint,
	) (*models.Branch, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		branchID uint,
		serviceID uint,
	) (*models.Service, error)

	ListActiveServices(
		ctx context.Context,
		branchID uint,
	) ([]models.Service, error)

	// -------- Staff / eligibility --------
	GetStaff(
		ctx context.Context,
		branchID uint,
		staffID uint,
	) (*models.Staff, error)

	// ListEligibleStaff devolve os ativos habilitados para o serviço,
	// sempre em ordem de id — a ordem determinística do solver.
	ListEligibleStaff(
		ctx context.Context,
		branchID uint,
		serviceID uint,
	) ([]models.Staff, error)

	IsStaffQualified(
		ctx context.Context,
		staffID uint,
		serviceID uint,
	) (bool, error)

	// -------- Reference data for a staff day --------
	ListScheduleBlocks(
		ctx context.Context,
		staffID uint,
		weekday int,
	) ([]models.ScheduleBlock, error)

	ListTimeOff(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) ([]models.TimeOff, error)

	// ListBlockingAppointments lê os appointments que ocupam a agenda no
	// intervalo. excludeBookingID > 0 ignora as linhas de um booking que
	// está sendo movido.
	ListBlockingAppointments(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
		excludeBookingID uint,
	) ([]models.Appointment, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		branchID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Booking --------
	GetBookingByPublicID(
		ctx context.Context,
		publicID string,
	) (*models.Booking, error)

	ListBookingAppointments(
		ctx context.Context,
		bookingID uint,
	) ([]models.Appointment, error)

	// CreateBookingWithAppointments é o commit guard: recheca sobreposição
	// de cada atribuição e insere tudo dentro da mesma transação. Qualquer
	// conflito aborta o commit inteiro.
	CreateBookingWithAppointments(
		ctx context.Context,
		b *models.Booking,
		appointments []models.Appointment,
	) error

	// RescheduleBooking regrava horários de todas as linhas vinculadas e do
	// agregado, atomicamente, rechecando conflito contra appointments de
	// outros bookings.
	RescheduleBooking(
		ctx context.Context,
		b *models.Booking,
		appointments []models.Appointment,
	) error

	// SaveBookingStatus persiste uma transição de status do agregado e
	// propaga o status às linhas vinculadas.
	SaveBookingStatus(
		ctx context.Context,
		b *models.Booking,
		appointmentStatus Status,
	) error

	// -------- Agenda --------
	ListStaffAgenda(
		ctx context.Context,
		staffID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
