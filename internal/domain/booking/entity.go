package booking

import "time"

// StaffAny é a sentinela de "qualquer profissional elegível" num passo da cadeia.
const StaffAny uint = 0

// ChainStep é um passo pedido pelo cliente: serviço + escolha de profissional.
// Não é persistido; só existe durante o solve.
type ChainStep struct {
	ServiceID uint
	StaffID   uint // StaffAny = qualquer elegível
}

// ChainAssignment é um passo já resolvido: profissional e horário definidos.
type ChainAssignment struct {
	StaffID     uint      `json:"staff_id"`
	ServiceID   uint      `json:"service_id"`
	StartUTC    time.Time `json:"start_utc"`
	EndUTC      time.Time `json:"end_utc"`
	DurationMin int       `json:"duration_min"`
	PriceCents  int64     `json:"price_cents"`
}

// ChainPlan é uma candidata completa de reserva encadeada: todos os passos
// cobertos, sem folga entre um fim e o início seguinte.
type ChainPlan struct {
	StartUTC    time.Time         `json:"start_utc"`
	StartLocal  time.Time         `json:"start_local"`
	EndUTC      time.Time         `json:"end_utc"`
	Assignments []ChainAssignment `json:"assignments"`
}

// SolveStep é um ChainStep já resolvido contra os dados de referência:
// duração efetiva, preço e conjunto de candidatos em ordem determinística.
type SolveStep struct {
	ServiceID   uint
	DurationMin int
	PriceCents  int64
	Candidates  []uint
}
