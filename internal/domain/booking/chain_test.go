package booking

import (
	"reflect"
	"testing"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/schedule"
)

var testDay = time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

func fullDayFree() []schedule.Block {
	return []schedule.Block{{Start: 540, End: 1020}} // 09:00-17:00
}

// Cadeia corte (A) + coloração (qualquer): quando B está ocupado no horário do
// segundo passo, o solver pula para C em vez de descartar o início.
func TestSolveChain_AnyStaffSkipsBusyCandidate(t *testing.T) {
	steps := []SolveStep{
		{ServiceID: 1, DurationMin: 30, PriceCents: 5000, Candidates: []uint{1}},
		{ServiceID: 2, DurationMin: 30, PriceCents: 9000, Candidates: []uint{2, 3}},
	}
	free := map[uint][]schedule.Block{
		1: fullDayFree(),
		// B ocupado 10:00-11:00
		2: schedule.Subtract(fullDayFree(), []schedule.Block{{Start: 600, End: 660}}),
		3: fullDayFree(),
	}

	plans, err := SolveChain(steps, free, testDay, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plans) == 0 {
		t.Fatal("expected at least one plan")
	}

	var at0930 *ChainPlan
	for i := range plans {
		if plans[i].StartUTC.Equal(testDay.Add(9*time.Hour + 30*time.Minute)) {
			at0930 = &plans[i]
		}
	}
	if at0930 == nil {
		t.Fatal("expected a plan starting at 09:30")
	}
	// segundo passo cai às 10:00; B está ocupado, então C assume
	if got := at0930.Assignments[1].StaffID; got != 3 {
		t.Fatalf("expected staff 3 on the second step, got %d", got)
	}

	// às 09:00 o segundo passo cai às 09:30; B livre e listado primeiro vence
	var at0900 *ChainPlan
	for i := range plans {
		if plans[i].StartUTC.Equal(testDay.Add(9 * time.Hour)) {
			at0900 = &plans[i]
		}
	}
	if at0900 == nil {
		t.Fatal("expected a plan starting at 09:00")
	}
	if got := at0900.Assignments[1].StaffID; got != 2 {
		t.Fatalf("expected staff 2 on the second step at 09:00, got %d", got)
	}
}

func TestSolveChain_PlansAreConsecutive(t *testing.T) {
	steps := []SolveStep{
		{ServiceID: 1, DurationMin: 45, Candidates: []uint{1}},
		{ServiceID: 2, DurationMin: 30, Candidates: []uint{1, 2}},
		{ServiceID: 3, DurationMin: 60, Candidates: []uint{2}},
	}
	free := map[uint][]schedule.Block{
		1: fullDayFree(),
		2: schedule.Subtract(fullDayFree(), []schedule.Block{{Start: 720, End: 780}}),
	}

	plans, err := SolveChain(steps, free, testDay, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range plans {
		if err := ValidateChain(p.Assignments); err != nil {
			t.Fatalf("plan starting %v violates consecutiveness: %v", p.StartUTC, err)
		}
		if !p.EndUTC.Equal(p.Assignments[len(p.Assignments)-1].EndUTC) {
			t.Fatalf("plan end %v differs from last assignment end", p.EndUTC)
		}
	}
}

func TestSolveChain_Deterministic(t *testing.T) {
	steps := []SolveStep{
		{ServiceID: 1, DurationMin: 30, Candidates: []uint{1, 2}},
		{ServiceID: 2, DurationMin: 45, Candidates: []uint{2, 3}},
	}
	free := map[uint][]schedule.Block{
		1: fullDayFree(),
		2: schedule.Subtract(fullDayFree(), []schedule.Block{{Start: 600, End: 690}}),
		3: {{Start: 540, End: 780}},
	}

	first, err := SolveChain(steps, free, testDay, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := SolveChain(steps, free, testDay, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same inputs must produce identical plans")
	}
}

// O cache de falhas é só poda: os planos têm de ser idênticos aos de uma busca
// sem cache.
func TestSolveChain_MemoDoesNotChangeResult(t *testing.T) {
	steps := []SolveStep{
		{ServiceID: 1, DurationMin: 30, Candidates: []uint{1, 2}},
		{ServiceID: 2, DurationMin: 30, Candidates: []uint{1, 2}},
		{ServiceID: 3, DurationMin: 45, Candidates: []uint{3}},
	}
	free := map[uint][]schedule.Block{
		1: schedule.Subtract(fullDayFree(), []schedule.Block{{Start: 660, End: 720}}),
		2: schedule.Subtract(fullDayFree(), []schedule.Block{{Start: 540, End: 600}}),
		3: {{Start: 600, End: 840}},
	}

	plans, err := SolveChain(steps, free, testDay, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	naive := naiveSolve(steps, free, testDay, 15, 0)
	if !reflect.DeepEqual(plans, naive) {
		t.Fatalf("memoized solve diverges from plain search:\nmemo:  %v\nplain: %v", plans, naive)
	}
}

// naiveSolve repete a busca do solver sem cache de falhas, como referência.
func naiveSolve(
	steps []SolveStep,
	free map[uint][]schedule.Block,
	dayStart time.Time,
	stepMin, notBeforeMin int,
) []ChainPlan {

	s := &chainSolver{steps: steps, freeByStaff: free, stepMin: stepMin}

	var walk func(stepIdx, cursor int) ([]assignmentMin, bool)
	walk = func(stepIdx, cursor int) ([]assignmentMin, bool) {
		if stepIdx == len(steps) {
			return nil, true
		}
		st := steps[stepIdx]
		for _, staffID := range st.Candidates {
			if !schedule.Covers(free[staffID], cursor, st.DurationMin) {
				continue
			}
			next := schedule.CeilToGrid(cursor+st.DurationMin, stepMin)
			if tail, ok := walk(stepIdx+1, next); ok {
				head := assignmentMin{staffID: staffID, stepIdx: stepIdx, startMin: cursor}
				return append([]assignmentMin{head}, tail...), true
			}
		}
		return nil, false
	}

	var plans []ChainPlan
	for _, base := range s.baseStarts(notBeforeMin) {
		if tail, ok := walk(0, base); ok {
			plans = append(plans, s.buildPlan(tail, dayStart))
		}
	}
	return plans
}

func TestSolveChain_EmptyChainIsError(t *testing.T) {
	_, err := SolveChain(nil, nil, testDay, 15, 0)
	if !httperr.IsBusiness(err, "empty_chain") {
		t.Fatalf("expected empty_chain, got %v", err)
	}
}

func TestSolveChain_StepWithoutCandidates(t *testing.T) {
	steps := []SolveStep{
		{ServiceID: 1, DurationMin: 30, Candidates: []uint{1}},
		{ServiceID: 2, DurationMin: 30, Candidates: nil},
	}
	free := map[uint][]schedule.Block{1: fullDayFree()}

	plans, err := SolveChain(steps, free, testDay, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plans != nil {
		t.Fatalf("unsatisfiable chain must yield no plans, got %v", plans)
	}
}

func TestSolveChain_NotBeforeFiltersBaseStarts(t *testing.T) {
	steps := []SolveStep{{ServiceID: 1, DurationMin: 30, Candidates: []uint{1}}}
	free := map[uint][]schedule.Block{1: fullDayFree()}

	plans, err := SolveChain(steps, free, testDay, 15, 630) // nada antes de 10:30
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range plans {
		if p.StartUTC.Before(testDay.Add(10*time.Hour + 30*time.Minute)) {
			t.Fatalf("plan %v starts before the cutoff", p.StartUTC)
		}
	}
}

func TestSolvePinned(t *testing.T) {
	steps := []SolveStep{
		{ServiceID: 1, DurationMin: 30, Candidates: []uint{1}},
		{ServiceID: 2, DurationMin: 30, Candidates: []uint{2}},
	}
	free := map[uint][]schedule.Block{
		1: fullDayFree(),
		2: schedule.Subtract(fullDayFree(), []schedule.Block{{Start: 600, End: 660}}),
	}

	plan, ok := SolvePinned(steps, free, testDay, 15, 540)
	if !ok {
		t.Fatal("expected 09:00 to be feasible")
	}
	if !plan.StartUTC.Equal(testDay.Add(9 * time.Hour)) {
		t.Fatalf("pinned solve must start exactly at the pin, got %v", plan.StartUTC)
	}

	// às 09:30 o segundo passo cai na ocupação de 2: inviável, sem fallback
	if _, ok := SolvePinned(steps, free, testDay, 15, 570); ok {
		t.Fatal("expected 09:30 to be infeasible")
	}
}

func TestValidateChain(t *testing.T) {
	start := testDay.Add(9 * time.Hour)
	good := []ChainAssignment{
		{StaffID: 1, ServiceID: 1, StartUTC: start, EndUTC: start.Add(30 * time.Minute)},
		{StaffID: 2, ServiceID: 2, StartUTC: start.Add(30 * time.Minute), EndUTC: start.Add(time.Hour)},
	}
	if err := ValidateChain(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gap := []ChainAssignment{
		good[0],
		{StaffID: 2, ServiceID: 2, StartUTC: start.Add(45 * time.Minute), EndUTC: start.Add(time.Hour)},
	}
	if err := ValidateChain(gap); !httperr.IsBusiness(err, "chain_gap") {
		t.Fatalf("expected chain_gap, got %v", err)
	}

	inverted := []ChainAssignment{
		{StaffID: 1, ServiceID: 1, StartUTC: start.Add(time.Hour), EndUTC: start},
	}
	if err := ValidateChain(inverted); !httperr.IsBusiness(err, "invalid_assignment") {
		t.Fatalf("expected invalid_assignment, got %v", err)
	}

	if err := ValidateChain(nil); !httperr.IsBusiness(err, "empty_chain") {
		t.Fatalf("expected empty_chain, got %v", err)
	}
}
