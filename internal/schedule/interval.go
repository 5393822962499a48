package schedule

// ======================================================
// Aritmética de intervalos em minutos do dia local
// ======================================================

const (
	// DayMinutes é o tamanho do dia de agenda; todos os blocos vivem em [0, 1440).
	DayMinutes = 1440

	// GridStepMin é a quantização fixa de todos os inícios de slot.
	GridStepMin = 15
)

// Block é um intervalo semiaberto [Start, End) em minutos desde a meia-noite local.
type Block struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (b Block) Empty() bool {
	return b.End <= b.Start
}

// Clamp limita o bloco à janela do dia.
func Clamp(b Block) Block {
	if b.Start < 0 {
		b.Start = 0
	}
	if b.End > DayMinutes {
		b.End = DayMinutes
	}
	return b
}

// Subtract remove cada intervalo ocupado do conjunto livre. Um bloco livre
// cortado no meio vira dois blocos menores; cortado na borda, encolhe; coberto
// por inteiro, desaparece. A ordem dos ocupados não altera o resultado final.
func Subtract(free, busy []Block) []Block {
	for _, bz := range busy {
		if bz.Empty() {
			continue
		}
		next := make([]Block, 0, len(free)+1)
		for _, f := range free {
			if bz.End <= f.Start || bz.Start >= f.End {
				next = append(next, f)
				continue
			}
			if bz.Start > f.Start {
				next = append(next, Block{Start: f.Start, End: bz.Start})
			}
			if bz.End < f.End {
				next = append(next, Block{Start: bz.End, End: f.End})
			}
		}
		free = next
	}
	return free
}

// RoundUpToStep arredonda uma duração para cima até o múltiplo do passo.
func RoundUpToStep(durationMin, stepMin int) int {
	if stepMin <= 0 || durationMin <= 0 {
		return durationMin
	}
	return ((durationMin + stepMin - 1) / stepMin) * stepMin
}

// CeilToGrid alinha um minuto absoluto ao próximo ponto da grade. Um passo de
// cadeia pode terminar fora da grade; o passo seguinte sempre começa alinhado.
func CeilToGrid(minute, stepMin int) int {
	if stepMin <= 0 {
		return minute
	}
	rem := minute % stepMin
	if rem == 0 {
		return minute
	}
	return minute + stepMin - rem
}

// Covers informa se algum bloco livre contém inteiramente [start, start+durationMin).
// Um slot nunca pode atravessar um buraco entre dois blocos.
func Covers(free []Block, start, durationMin int) bool {
	end := start + durationMin
	for _, f := range free {
		if start >= f.Start && end <= f.End {
			return true
		}
	}
	return false
}

// EffectiveDuration é a duração que o serviço realmente ocupa na agenda:
// duração nominal mais buffers, arredondada à grade.
func EffectiveDuration(durationMin, bufferBeforeMin, bufferAfterMin, stepMin int) int {
	return RoundUpToStep(durationMin+bufferBeforeMin+bufferAfterMin, stepMin)
}
