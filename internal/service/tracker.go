package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"coffeehouse/internal/repository"
	"coffeehouse/internal/schedule"
)

// OrderTracker двигает статусы заказов по таймеру, пока заказ не завершён.
// На каждый заказ сессии не больше одной задачи.
type OrderTracker struct {
	orders   *OrderService
	sched    schedule.Scheduler
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	handles map[string]schedule.Handle
}

func NewOrderTracker(orders *OrderService, sched schedule.Scheduler, interval time.Duration, logger *zap.Logger) *OrderTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderTracker{
		orders:   orders,
		sched:    sched,
		interval: interval,
		logger:   logger,
		handles:  make(map[string]schedule.Handle),
	}
}

// Track запускает симуляцию для заказа. Повторный вызов и завершённый
// заказ ничего не планируют.
func (t *OrderTracker) Track(ctx context.Context, id string) error {
	session := repository.SessionFromContext(ctx)
	key := trackKey(session, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.handles[key]; ok {
		return nil
	}
	o, err := t.orders.FindOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.Status.Terminal() {
		return nil
	}
	t.handles[key] = t.sched.Every(t.interval, func() { t.tick(session, id) })
	t.logger.Debug("order tracking started", zap.String("session", session), zap.String("order_id", id))
	return nil
}

// Tracking есть ли активная задача для заказа
func (t *OrderTracker) Tracking(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.handles[trackKey(repository.SessionFromContext(ctx), id)]
	return ok
}

// StopAll отменяет все задачи, вызывается при остановке сервиса
func (t *OrderTracker) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, h := range t.handles {
		h.Stop()
		delete(t.handles, key)
	}
}

func (t *OrderTracker) tick(session, id string) {
	ctx := repository.WithSession(context.Background(), session)
	o, _, err := t.orders.Advance(ctx, id)
	if err != nil {
		t.logger.Error("advance order status", zap.String("session", session), zap.String("order_id", id), zap.Error(err))
		t.stop(session, id)
		return
	}
	if o.Status.Terminal() {
		t.stop(session, id)
	}
}

func (t *OrderTracker) stop(session, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := trackKey(session, id)
	if h, ok := t.handles[key]; ok {
		h.Stop()
		delete(t.handles, key)
	}
}

func trackKey(session, id string) string { return session + "/" + id }
