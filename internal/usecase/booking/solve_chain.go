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
// USE CASE — resolver cadeia de serviços
// ======================================================

type SolveChain struct {
	repo domain.Repository
}

func NewSolveChain(repo domain.Repository) *SolveChain {
	return &SolveChain{repo: repo}
}

type SolveChainInput struct {
	BranchID uint
	Date     time.Time // meia-noite no fuso da filial
	Steps    []domain.ChainStep
}

// Execute junta os dados de referência (uma leitura por profissional, nunca
// por passo) e delega a busca ao solver de domínio. Lista vazia = cadeia sem
// horário viável no dia.
func (uc *SolveChain) Execute(
	ctx context.Context,
	in SolveChainInput,
) ([]domain.ChainPlan, error) {

	branch, err := uc.repo.GetBranchByID(ctx, in.BranchID)
	if err != nil {
		return nil, httperr.ErrBusiness("branch_not_found")
	}

	if len(in.Steps) == 0 {
		return nil, httperr.ErrBusiness("empty_chain")
	}

	loc := timezone.Location(branch.Timezone)
	dayStart := timezone.DayStart(in.Date, loc)

	if err := validateDateWindow(branch, dayStart); err != nil {
		return nil, err
	}

	steps, err := uc.resolveSteps(ctx, branch, in.Steps)
	if err != nil {
		return nil, err
	}

	freeByStaff, err := uc.loadCandidateDays(ctx, steps, dayStart)
	if err != nil {
		return nil, err
	}

	return domain.SolveChain(
		steps,
		freeByStaff,
		dayStart,
		schedule.GridStepMin,
		noticeCutoff(branch, dayStart),
	)
}

// resolveSteps traduz cada passo pedido em duração efetiva, preço e conjunto
// de candidatos em ordem determinística (a ordem da query de elegibilidade).
func (uc *SolveChain) resolveSteps(
	ctx context.Context,
	branch *models.Branch,
	in []domain.ChainStep,
) ([]domain.SolveStep, error) {

	services := make(map[uint]*models.Service)

	steps := make([]domain.SolveStep, 0, len(in))
	for _, step := range in {
		svc, ok := services[step.ServiceID]
		if !ok {
			var err error
			svc, err = uc.repo.GetService(ctx, branch.ID, step.ServiceID)
			if err != nil {
				return nil, httperr.ErrBusiness("service_not_found")
			}
			if !svc.Active {
				return nil, httperr.ErrBusiness("service_inactive")
			}
			services[step.ServiceID] = svc
		}

		var candidates []uint
		if step.StaffID == domain.StaffAny {
			eligible, err := uc.repo.ListEligibleStaff(ctx, branch.ID, svc.ID)
			if err != nil {
				return nil, err
			}
			for _, st := range eligible {
				candidates = append(candidates, st.ID)
			}
		} else {
			staff, err := uc.repo.GetStaff(ctx, branch.ID, step.StaffID)
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
			candidates = []uint{staff.ID}
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
			Candidates: candidates,
		})
	}

	return steps, nil
}

// loadCandidateDays popula o cache por-solve de blocos livres: cada candidato
// é lido no máximo uma vez, mesmo aparecendo em vários passos.
func (uc *SolveChain) loadCandidateDays(
	ctx context.Context,
	steps []domain.SolveStep,
	dayStart time.Time,
) (map[uint][]schedule.Block, error) {

	freeByStaff := make(map[uint][]schedule.Block)
	for _, st := range steps {
		for _, staffID := range st.Candidates {
			if _, ok := freeByStaff[staffID]; ok {
				continue
			}
			free, err := loadStaffFree(ctx, uc.repo, staffID, dayStart, 0)
			if err != nil {
				return nil, err
			}
			freeByStaff[staffID] = free
		}
	}
	return freeByStaff, nil
}
