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
// Carregamento do dia de um profissional
// ======================================================

// parseHM converte "09:30" em minutos desde a meia-noite local.
func parseHM(hm string) int {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

func scheduleBlocksToMinutes(blocks []models.ScheduleBlock) []schedule.Block {
	out := make([]schedule.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, schedule.Block{Start: parseHM(b.StartTime), End: parseHM(b.EndTime)})
	}
	return out
}

// loadStaffFree monta os blocos livres reais de um profissional para o dia:
// expediente recorrente menos ausências menos appointments bloqueantes.
// excludeBookingID > 0 ignora as linhas de um booking em reagendamento.
func loadStaffFree(
	ctx context.Context,
	repo domain.Repository,
	staffID uint,
	dayStart time.Time,
	excludeBookingID uint,
) ([]schedule.Block, error) {

	weekday := int(dayStart.Weekday())

	blocks, err := repo.ListScheduleBlocks(ctx, staffID, weekday)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		// folga: não é erro
		return nil, nil
	}

	dayEnd := dayStart.Add(24 * time.Hour)

	offs, err := repo.ListTimeOff(ctx, staffID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	timeOff := make([]schedule.TimeRange, 0, len(offs))
	for _, o := range offs {
		timeOff = append(timeOff, schedule.TimeRange{Start: o.StartTime, End: o.EndTime})
	}

	apps, err := repo.ListBlockingAppointments(ctx, staffID, dayStart, dayEnd, excludeBookingID)
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.TimeRange, 0, len(apps))
	for _, ap := range apps {
		busy = append(busy, schedule.TimeRange{Start: ap.StartTime, End: ap.EndTime})
	}

	return schedule.ResolveFreeBlocks(scheduleBlocksToMinutes(blocks), timeOff, busy, dayStart), nil
}

// noticeCutoff devolve o minuto local de corte da antecedência mínima quando o
// dia consultado é hoje; <= 0 para dias futuros (sem corte).
func noticeCutoff(branch *models.Branch, dayStart time.Time) int {
	now := timezone.NowIn(branch.Timezone)
	if !timezone.DayStart(now, dayStart.Location()).Equal(dayStart) {
		return 0
	}
	notice := branch.MinBookingNoticeMin
	if notice < 0 {
		notice = 0
	}
	return int(now.Sub(dayStart)/time.Minute) + notice
}

// validateDateWindow rejeita datas no passado ou além da janela de
// agendamento da filial. Decisão por data; o gerador de slots não a repete.
func validateDateWindow(branch *models.Branch, dayStart time.Time) error {
	today := timezone.DayStart(timezone.NowIn(branch.Timezone), dayStart.Location())
	if dayStart.Before(today) {
		return httperr.ErrBusiness("date_out_of_window")
	}

	maxAhead := branch.MaxBookingAheadDays
	if maxAhead <= 0 {
		maxAhead = 60
	}
	if dayStart.After(today.AddDate(0, 0, maxAhead)) {
		return httperr.ErrBusiness("date_out_of_window")
	}
	return nil
}
