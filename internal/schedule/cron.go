package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronScheduler Scheduler поверх robfig/cron. Паника в задаче логируется
// и не роняет процесс.
type CronScheduler struct {
	c *cron.Cron
}

func NewCronScheduler(logger *zap.Logger) *CronScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := cronLogger{logger.Sugar().Named("cron")}
	return &CronScheduler{
		c: cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l))),
	}
}

var _ Scheduler = (*CronScheduler)(nil)

func (s *CronScheduler) Start() { s.c.Start() }

// Stop останавливает планировщик и ждёт завершения запущенных задач
func (s *CronScheduler) Stop() {
	<-s.c.Stop().Done()
}

// Every интервал меньше секунды округляется до секунды
func (s *CronScheduler) Every(d time.Duration, fn func()) Handle {
	id := s.c.Schedule(cron.Every(d), cron.FuncJob(fn))
	return &cronHandle{c: s.c, id: id}
}

func (s *CronScheduler) After(d time.Duration, fn func()) Handle {
	h := &cronHandle{c: s.c}
	sch := &onceSchedule{at: time.Now().Add(d)}
	var once sync.Once
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = s.c.Schedule(sch, cron.FuncJob(func() {
		sch.fired.Store(true)
		// cron может запустить задачу повторно, пока fired не виден планировщику
		once.Do(func() {
			h.Stop()
			fn()
		})
	}))
	return h
}

type cronHandle struct {
	mu      sync.Mutex
	c       *cron.Cron
	id      cron.EntryID
	stopped bool
}

func (h *cronHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	h.c.Remove(h.id)
}

// onceSchedule срабатывает один раз; нулевое время cron считает "больше никогда"
type onceSchedule struct {
	at    time.Time
	fired atomic.Bool
}

func (o *onceSchedule) Next(time.Time) time.Time {
	if o.fired.Load() {
		return time.Time{}
	}
	return o.at
}

// cronLogger адаптер zap для cron.Logger
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
