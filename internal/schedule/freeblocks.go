package schedule

import (
	"sort"
	"time"
)

// TimeRange é um intervalo absoluto [Start, End), normalmente em UTC.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// LocalBlock projeta um intervalo absoluto sobre o dia local que começa em
// dayStart, com clamp em [0, 1440]. Uma ausência que começa na véspera ou
// termina no dia seguinte é recortada; fora do dia, descartada.
func LocalBlock(r TimeRange, dayStart time.Time) (Block, bool) {
	b := Clamp(Block{
		Start: int(r.Start.Sub(dayStart) / time.Minute),
		End:   int(r.End.Sub(dayStart) / time.Minute),
	})
	if b.Empty() {
		return Block{}, false
	}
	return b, true
}

func localBlocks(ranges []TimeRange, dayStart time.Time) []Block {
	var out []Block
	for _, r := range ranges {
		if b, ok := LocalBlock(r, dayStart); ok {
			out = append(out, b)
		}
	}
	return out
}

// ResolveFreeBlocks deriva o tempo livre real de um profissional num dia:
// expediente semanal menos ausências menos appointments que bloqueiam agenda.
// Sem expediente no dia, o resultado é vazio — profissional de folga não é erro.
func ResolveFreeBlocks(scheduleBlocks []Block, timeOff, busy []TimeRange, dayStart time.Time) []Block {
	if len(scheduleBlocks) == 0 {
		return nil
	}

	free := make([]Block, 0, len(scheduleBlocks))
	for _, b := range scheduleBlocks {
		b = Clamp(b)
		if !b.Empty() {
			free = append(free, b)
		}
	}

	free = Subtract(free, localBlocks(timeOff, dayStart))
	free = Subtract(free, localBlocks(busy, dayStart))

	sort.Slice(free, func(i, j int) bool { return free[i].Start < free[j].Start })
	return free
}
