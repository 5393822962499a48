package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type AvailabilityInput struct {
	BranchID  uint
	ServiceID uint
	StaffID   uint      // 0 = todos os elegíveis
	Date      time.Time // meia-noite no fuso da filial
}

type TimeSlot struct {
	StartUTC   time.Time `json:"start_utc"`
	EndUTC     time.Time `json:"end_utc"`
	StartLocal string    `json:"start_local"`
	EndLocal   string    `json:"end_local"`
}

type StaffAvailability struct {
	StaffID   uint       `json:"staff_id"`
	StaffName string     `json:"staff_name"`
	Slots     []TimeSlot `json:"slots"`
}

// ======================================================
// USE CASE
// ======================================================

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

// Execute calcula os slots de um serviço para um ou todos os profissionais
// elegíveis num dia. Lista vazia significa "sem horário nesse dia" — resultado
// normal, nunca erro.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) ([]StaffAvailability, error) {

	branch, err := uc.repo.GetBranchByID(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	loc := timezone.Location(branch.Timezone)
	dayStart := timezone.DayStart(in.Date, loc)

	if err := validateDateWindow(branch, dayStart); err != nil {
		return nil, err
	}

	service, err := uc.repo.GetService(ctx, in.BranchID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	if !service.Active {
		return nil, httperr.ErrBusiness("service_inactive")
	}

	requiredMin := schedule.EffectiveDuration(
		service.DurationMin,
		branch.BufferBeforeMin,
		branch.BufferAfterMin,
		schedule.GridStepMin,
	)

	staffList, err := uc.resolveStaff(ctx, in, service)
	if err != nil {
		return nil, err
	}

	cutoff := noticeCutoff(branch, dayStart)

	result := make([]StaffAvailability, 0, len(staffList))
	for _, st := range staffList {
		free, err := loadStaffFree(ctx, uc.repo, st.ID, dayStart, 0)
		if err != nil {
			return nil, err
		}

		starts := schedule.FilterNotBefore(
			schedule.GenerateSlots(free, requiredMin, schedule.GridStepMin),
			cutoff,
		)

		slots := make([]TimeSlot, 0, len(starts))
		for _, s := range starts {
			startAt := dayStart.Add(time.Duration(s) * time.Minute)
			endAt := startAt.Add(time.Duration(requiredMin) * time.Minute)
			slots = append(slots, TimeSlot{
				StartUTC:   startAt.UTC(),
				EndUTC:     endAt.UTC(),
				StartLocal: startAt.Format("15:04"),
				EndLocal:   endAt.Format("15:04"),
			})
		}

		result = append(result, StaffAvailability{
			StaffID:   st.ID,
			StaffName: st.Name,
			Slots:     slots,
		})
	}

	return result, nil
}

func (uc *GetAvailability) resolveStaff(
	ctx context.Context,
	in AvailabilityInput,
	service *models.Service,
) ([]models.Staff, error) {

	if in.StaffID == 0 {
		return uc.repo.ListEligibleStaff(ctx, in.BranchID, service.ID)
	}

	staff, err := uc.repo.GetStaff(ctx, in.BranchID, in.StaffID)
	if err != nil {
		return nil, httperr.ErrBusiness("staff_not_found")
	}
	if !staff.Active {
		return nil, httperr.ErrBusiness("staff_not_eligible")
	}

	qualified, err := uc.repo.IsStaffQualified(ctx, staff.ID, service.ID)
	if err != nil {
		return nil, err
	}
	if !qualified {
		return nil, httperr.ErrBusiness("staff_not_eligible")
	}

	return []models.Staff{*staff}, nil
}
