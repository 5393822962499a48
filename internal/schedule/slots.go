package schedule

import "sort"

// GenerateSlots enumera os inícios de slot válidos na cadência da grade.
// Cada slot precisa caber inteiro dentro de um único bloco livre.
func GenerateSlots(free []Block, requiredMin, stepMin int) []int {
	if requiredMin <= 0 || stepMin <= 0 {
		return nil
	}

	var slots []int
	for _, f := range free {
		for start := CeilToGrid(f.Start, stepMin); start+requiredMin <= f.End; start += stepMin {
			slots = append(slots, start)
		}
	}

	sort.Ints(slots)
	return slots
}

// FilterNotBefore descarta inícios anteriores ao minuto de corte (antecedência
// mínima quando a data é hoje). Corte negativo desliga o filtro.
func FilterNotBefore(slots []int, cutoffMin int) []int {
	if cutoffMin <= 0 {
		return slots
	}
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		if s >= cutoffMin {
			out = append(out, s)
		}
	}
	return out
}
