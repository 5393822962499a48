package booking

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/schedule"
)

// MaxBaseStarts limita quantos inícios candidatos um solve examina.
// Um dia inteiro na grade de 15 min tem no máximo 96 inícios.
const MaxBaseStarts = 96

// ======================================================
// Chain Solver
// ======================================================
//
// Uma reserva multi-serviço (corte + coloração com profissionais diferentes)
// precisa ser ofertada como um bloco único e indivisível. Interseção de slots
// não basta: dois serviços disponíveis isoladamente podem não encadear quando
// buffers e profissionais entram na conta. Por isso busca com backtracking
// sobre (passo, cursor), com cache de falhas.

type memoKey struct {
	step   int
	cursor int
}

// assignmentMin é uma atribuição ainda em minutos do dia local.
type assignmentMin struct {
	staffID  uint
	stepIdx  int
	startMin int
}

type chainSolver struct {
	steps       []SolveStep
	freeByStaff map[uint][]schedule.Block
	stepMin     int
	memo        map[memoKey]bool // só falhas; remover o cache não muda o resultado
}

// SolveChain devolve todos os planos viáveis do dia, ordenados pelo início.
// freeByStaff é o cache de blocos livres por profissional, montado uma única
// vez por solve pelo chamador (uma leitura por profissional, nunca por passo).
// notBeforeMin aplica a antecedência mínima aos inícios base; <= 0 desliga.
func SolveChain(
	steps []SolveStep,
	freeByStaff map[uint][]schedule.Block,
	dayStart time.Time,
	stepMin int,
	notBeforeMin int,
) ([]ChainPlan, error) {

	if len(steps) == 0 {
		return nil, httperr.ErrBusiness("empty_chain")
	}

	// Qualquer passo sem candidato torna a cadeia insatisfatível no dia.
	// Resultado vazio, não erro.
	for _, st := range steps {
		if len(st.Candidates) == 0 || st.DurationMin <= 0 {
			return nil, nil
		}
	}

	s := &chainSolver{
		steps:       steps,
		freeByStaff: freeByStaff,
		stepMin:     stepMin,
		memo:        make(map[memoKey]bool),
	}

	var plans []ChainPlan
	for _, base := range s.baseStarts(notBeforeMin) {
		if tail, ok := s.solveFrom(0, base); ok {
			plans = append(plans, s.buildPlan(tail, dayStart))
		}
	}
	return plans, nil
}

// SolvePinned resolve a cadeia com um único início fixado, sem varrer inícios
// base. É o caminho do reagendamento: todos os passos com profissional fixo.
func SolvePinned(
	steps []SolveStep,
	freeByStaff map[uint][]schedule.Block,
	dayStart time.Time,
	stepMin int,
	startMin int,
) (*ChainPlan, bool) {

	if len(steps) == 0 {
		return nil, false
	}
	for _, st := range steps {
		if len(st.Candidates) == 0 || st.DurationMin <= 0 {
			return nil, false
		}
	}

	s := &chainSolver{
		steps:       steps,
		freeByStaff: freeByStaff,
		stepMin:     stepMin,
		memo:        make(map[memoKey]bool),
	}

	tail, ok := s.solveFrom(0, startMin)
	if !ok {
		return nil, false
	}
	plan := s.buildPlan(tail, dayStart)
	return &plan, true
}

// baseStarts é a união dos slot-sets dos candidatos do primeiro passo,
// deduplicada, ordenada e filtrada pela antecedência mínima.
func (s *chainSolver) baseStarts(notBeforeMin int) []int {
	seen := make(map[int]bool)
	var starts []int
	for _, staffID := range s.steps[0].Candidates {
		slots := schedule.GenerateSlots(s.freeByStaff[staffID], s.steps[0].DurationMin, s.stepMin)
		for _, slot := range slots {
			if !seen[slot] {
				seen[slot] = true
				starts = append(starts, slot)
			}
		}
	}
	sort.Ints(starts)
	starts = schedule.FilterNotBefore(starts, notBeforeMin)
	if len(starts) > MaxBaseStarts {
		starts = starts[:MaxBaseStarts]
	}
	return starts
}

// solveFrom tenta cobrir os passos a partir de stepIdx começando exatamente em
// cursor. Candidatos são avaliados em ordem estável: o primeiro viável vence e
// só uma atribuição por início base é devolvida — simplificação deliberada
// para reprodutibilidade, não uma permutação completa por profissional.
func (s *chainSolver) solveFrom(stepIdx, cursor int) ([]assignmentMin, bool) {
	if stepIdx == len(s.steps) {
		return nil, true
	}

	key := memoKey{step: stepIdx, cursor: cursor}
	if s.memo[key] {
		return nil, false
	}

	st := s.steps[stepIdx]
	for _, staffID := range st.Candidates {
		if !schedule.Covers(s.freeByStaff[staffID], cursor, st.DurationMin) {
			continue
		}

		// O fim pode cair fora da grade; o próximo passo sempre entra alinhado.
		next := schedule.CeilToGrid(cursor+st.DurationMin, s.stepMin)

		if tail, ok := s.solveFrom(stepIdx+1, next); ok {
			head := assignmentMin{staffID: staffID, stepIdx: stepIdx, startMin: cursor}
			return append([]assignmentMin{head}, tail...), true
		}
	}

	s.memo[key] = true
	return nil, false
}

func (s *chainSolver) buildPlan(parts []assignmentMin, dayStart time.Time) ChainPlan {
	assignments := make([]ChainAssignment, len(parts))
	for i, p := range parts {
		st := s.steps[p.stepIdx]
		start := dayStart.Add(time.Duration(p.startMin) * time.Minute)
		end := start.Add(time.Duration(st.DurationMin) * time.Minute)
		assignments[i] = ChainAssignment{
			StaffID:     p.staffID,
			ServiceID:   st.ServiceID,
			StartUTC:    start.UTC(),
			EndUTC:      end.UTC(),
			DurationMin: st.DurationMin,
			PriceCents:  st.PriceCents,
		}
	}

	start := assignments[0].StartUTC
	return ChainPlan{
		StartUTC:    start,
		StartLocal:  start.In(dayStart.Location()),
		EndUTC:      assignments[len(assignments)-1].EndUTC,
		Assignments: assignments,
	}
}

// ValidateChain garante a invariante de consecutividade: ordenadas pelo
// início, cada atribuição termina exatamente onde a próxima começa.
func ValidateChain(assignments []ChainAssignment) error {
	if len(assignments) == 0 {
		return httperr.ErrBusiness("empty_chain")
	}
	for i, a := range assignments {
		if !a.EndUTC.After(a.StartUTC) {
			return httperr.ErrBusiness("invalid_assignment")
		}
		if i > 0 && !assignments[i-1].EndUTC.Equal(a.StartUTC) {
			return httperr.ErrBusiness("chain_gap")
		}
	}
	return nil
}
