package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// StaffDayLock é o lock consultivo por (profissional, dia) tomado em volta do
// commit. Estreita a janela em que duas requisições concorrentes falham na
// recheca transacional; a recheca continua sendo a garantia de correção, e
// sem Redis configurado o lock vira no-op.
type StaffDayLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStaffDayLock(client *redis.Client, ttl time.Duration) *StaffDayLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &StaffDayLock{client: client, ttl: ttl}
}

// TryLock tenta adquirir o lock sem bloquear. Devolve a função de liberação e
// se conseguiu. Falha de aquisição significa outro commit em andamento para o
// mesmo profissional/dia.
func (l *StaffDayLock) TryLock(ctx context.Context, staffID uint, day string) (func(), bool, error) {
	if l == nil || l.client == nil {
		return func() {}, true, nil
	}

	key := fmt.Sprintf("lock:staff:%d:%s", staffID, day)
	ok, err := l.client.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		// Redis fora do ar não derruba o commit; a transação ainda protege.
		return func() {}, true, nil
	}
	if !ok {
		return func() {}, false, nil
	}

	release := func() {
		l.client.Del(context.Background(), key)
	}
	return release, true, nil
}
