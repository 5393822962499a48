package notify

import (
	"time"

	"go.uber.org/zap"
)

// Event é o contrato com o despachante de ciclo de vida / notificações.
// Disparado estritamente depois do commit da transação, nunca dentro dela.
type Event struct {
	BookingID uint
	PublicID  string
	Action    string // booking_created | booking_rescheduled | booking_cancelled | booking_completed
	StartsAt  time.Time
	EndsAt    time.Time
}

type Dispatcher struct {
	log   *zap.Logger
	queue chan Event
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		log:   log,
		queue: make(chan Event, 100),
	}

	go d.worker()
	return d
}

// worker é o ponto de integração com entrega real (e-mail, lembretes).
// O core só publica o evento; entrega é responsabilidade de colaborador externo.
func (d *Dispatcher) worker() {
	for ev := range d.queue {
		d.log.Info("booking lifecycle event",
			zap.String("action", ev.Action),
			zap.String("booking", ev.PublicID),
			zap.Time("starts_at", ev.StartsAt),
			zap.Time("ends_at", ev.EndsAt),
		)
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return // dispatcher é opcional
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("notify queue full, dropping event", zap.String("action", ev.Action))
	}
}
