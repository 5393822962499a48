package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Branch
// --------------------------------------------------

func (r *BookingGormRepository) GetBranchBySlug(
	ctx context.Context,
	slug string,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *BookingGormRepository) GetBranchByID(
	ctx context.Context,
	id uint,
) (*models.Branch, error) {

	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, id).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	branchID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND branch_id = ?", serviceID, branchID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *BookingGormRepository) ListActiveServices(
	ctx context.Context,
	branchID uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND active = true", branchID).
		Order("id ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *BookingGormRepository) GetStaff(
	ctx context.Context,
	branchID uint,
	staffID uint,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).
		Where("id = ? AND branch_id = ?", staffID, branchID).
		First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *BookingGormRepository) ListEligibleStaff(
	ctx context.Context,
	branchID uint,
	serviceID uint,
) ([]models.Staff, error) {

	var staff []models.Staff
	if err := r.db.WithContext(ctx).
		Joins("JOIN staff_services ss ON ss.staff_id = staffs.id").
		Where("staffs.branch_id = ? AND staffs.active = true AND ss.service_id = ?", branchID, serviceID).
		Order("staffs.id ASC").
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *BookingGormRepository) IsStaffQualified(
	ctx context.Context,
	staffID uint,
	serviceID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StaffService{}).
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Reference data for a staff day
// --------------------------------------------------

func (r *BookingGormRepository) ListScheduleBlocks(
	ctx context.Context,
	staffID uint,
	weekday int,
) ([]models.ScheduleBlock, error) {

	var blocks []models.ScheduleBlock
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND weekday = ?", staffID, weekday).
		Order("start_time ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *BookingGormRepository) ListTimeOff(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]models.TimeOff, error) {

	var offs []models.TimeOff
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND start_time < ? AND end_time > ?", staffID, end, start).
		Order("start_time ASC").
		Find(&offs).Error; err != nil {
		return nil, err
	}
	return offs, nil
}

func (r *BookingGormRepository) ListBlockingAppointments(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
	excludeBookingID uint,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Select("id", "booking_id", "staff_id", "start_time", "end_time", "status").
		Where(
			"staff_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			staffID, domain.BlockingStatuses(), end, start,
		)

	if excludeBookingID > 0 {
		q = q.Where("booking_id <> ?", excludeBookingID)
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateClient(
	ctx context.Context,
	branchID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND phone = ?", branchID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}

	client = models.Client{
		BranchID: branchID,
		Name:     name,
		Phone:    phone,
		Email:    email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) GetBookingByPublicID(
	ctx context.Context,
	publicID string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookingAppointments(
	ctx context.Context,
	bookingID uint,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateBookingWithAppointments recheca sobreposição por atribuição, com lock
// de linha, dentro da mesma transação que insere as novas linhas. O plano foi
// calculado fora de qualquer lock e pode ter envelhecido: quem perde a
// recheca recebe conflito e deve recalcular.
func (r *BookingGormRepository) CreateBookingWithAppointments(
	ctx context.Context,
	b *models.Booking,
	appointments []models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		for _, ap := range appointments {
			var conflicts []models.Appointment
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(
					"branch_id = ? AND staff_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
					ap.BranchID, ap.StaffID, domain.BlockingStatuses(), ap.EndTime, ap.StartTime,
				).
				Find(&conflicts).Error; err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return httperr.ErrConflict("slot_conflict")
			}
		}

		if err := tx.Omit("Branch", "Client").Create(b).Error; err != nil {
			return mapPgError(err)
		}

		for i := range appointments {
			appointments[i].BookingID = b.ID
		}
		if err := tx.Omit("Booking", "Staff", "Service").Create(&appointments).Error; err != nil {
			return mapPgError(err)
		}

		return nil
	})
}

// RescheduleBooking move todas as linhas vinculadas e o agregado numa única
// transação, rechecando conflito contra appointments de outros bookings.
func (r *BookingGormRepository) RescheduleBooking(
	ctx context.Context,
	b *models.Booking,
	appointments []models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		for _, ap := range appointments {
			var conflicts []models.Appointment
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where(
					"branch_id = ? AND staff_id = ? AND booking_id <> ? AND status IN ? AND start_time < ? AND end_time > ?",
					ap.BranchID, ap.StaffID, b.ID, domain.BlockingStatuses(), ap.EndTime, ap.StartTime,
				).
				Find(&conflicts).Error; err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return httperr.ErrConflict("slot_conflict")
			}
		}

		for i := range appointments {
			if err := tx.Model(&models.Appointment{}).
				Where("id = ?", appointments[i].ID).
				Updates(map[string]any{
					"start_time": appointments[i].StartTime,
					"end_time":   appointments[i].EndTime,
				}).Error; err != nil {
				return mapPgError(err)
			}
		}

		if err := tx.Model(&models.Booking{}).
			Where("id = ?", b.ID).
			Updates(map[string]any{
				"starts_at": b.StartsAt,
				"ends_at":   b.EndsAt,
			}).Error; err != nil {
			return mapPgError(err)
		}

		return nil
	})
}

func (r *BookingGormRepository) SaveBookingStatus(
	ctx context.Context,
	b *models.Booking,
	appointmentStatus domain.Status,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Branch", "Client").Save(b).Error; err != nil {
			return err
		}
		return tx.Model(&models.Appointment{}).
			Where("booking_id = ?", b.ID).
			Update("status", string(appointmentStatus)).Error
	})
}

// --------------------------------------------------
// Agenda
// --------------------------------------------------

func (r *BookingGormRepository) ListStaffAgenda(
	ctx context.Context,
	staffID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where(
			"staff_id = ? AND start_time >= ? AND start_time < ?",
			staffID, start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// mapPgError converte violações de constraint do Postgres (unique, exclusion)
// em conflito de commit, nunca em erro interno.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23P01":
			return httperr.ErrConflict("slot_conflict")
		}
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
