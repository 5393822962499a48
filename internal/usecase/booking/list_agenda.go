package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type ListAgenda struct {
	repo domain.Repository
}

func NewListAgenda(repo domain.Repository) *ListAgenda {
	return &ListAgenda{repo: repo}
}

type ListAgendaInput struct {
	BranchID uint
	StaffID  uint
	Date     string // YYYY-MM-DD, interpretado no fuso da filial
}

// Execute lista a agenda de um profissional num dia local da filial.
func (uc *ListAgenda) Execute(
	ctx context.Context,
	in ListAgendaInput,
) ([]models.Appointment, error) {

	branch, err := uc.repo.GetBranchByID(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	loc := timezone.Location(branch.Timezone)
	dayStart, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_request")
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	return uc.repo.ListStaffAgenda(ctx, in.StaffID, dayStart, dayEnd)
}
