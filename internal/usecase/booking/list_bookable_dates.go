package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// maxScanDays limita a varredura de disponibilidade por mês, para manter a
// latência de pior caso previsível.
const maxScanDays = 62

type ListBookableDates struct {
	repo domain.Repository
}

func NewListBookableDates(repo domain.Repository) *ListBookableDates {
	return &ListBookableDates{repo: repo}
}

type BookableDatesInput struct {
	BranchID  uint
	ServiceID uint
	Year      int
	Month     time.Month
}

// Execute devolve as datas do mês com ao menos um slot para o serviço,
// respeitando a janela de agendamento da filial.
func (uc *ListBookableDates) Execute(
	ctx context.Context,
	in BookableDatesInput,
) ([]string, error) {

	branch, err := uc.repo.GetBranchByID(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
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

	staffList, err := uc.repo.ListEligibleStaff(ctx, in.BranchID, service.ID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(branch.Timezone)
	first := time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, loc)

	dates := make([]string, 0)
	for d := 0; d < maxScanDays; d++ {
		dayStart := first.AddDate(0, 0, d)
		if dayStart.Month() != in.Month {
			break
		}
		// fora da janela de agendamento: dia simplesmente não é ofertado
		if err := validateDateWindow(branch, dayStart); err != nil {
			continue
		}

		cutoff := noticeCutoff(branch, dayStart)

		for _, st := range staffList {
			free, err := loadStaffFree(ctx, uc.repo, st.ID, dayStart, 0)
			if err != nil {
				return nil, err
			}
			slots := schedule.FilterNotBefore(
				schedule.GenerateSlots(free, requiredMin, schedule.GridStepMin),
				cutoff,
			)
			if len(slots) > 0 {
				dates = append(dates, dayStart.Format("2006-01-02"))
				break
			}
		}
	}

	return dates, nil
}
