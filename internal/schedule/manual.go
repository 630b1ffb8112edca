package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual Scheduler с ручным временем. Задачи выполняются только в Advance,
// в порядке срабатывания, в вызывающей горутине.
type Manual struct {
	mu   sync.Mutex
	now  time.Duration
	seq  int
	jobs map[int]*manualJob
}

type manualJob struct {
	m     *Manual
	id    int
	at    time.Duration
	every time.Duration
	fn    func()
}

func NewManual() *Manual {
	return &Manual{jobs: make(map[int]*manualJob)}
}

var _ Scheduler = (*Manual)(nil)

func (m *Manual) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

func (m *Manual) add(d, every time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	j := &manualJob{m: m, id: m.seq, at: m.now + d, every: every, fn: fn}
	m.jobs[j.id] = j
	return j
}

func (j *manualJob) Stop() {
	j.m.mu.Lock()
	defer j.m.mu.Unlock()
	delete(j.m.jobs, j.id)
}

// Advance сдвигает время на d и выполняет все задачи, срок которых наступил
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		j := m.nextDue(target)
		if j == nil {
			break
		}
		m.now = j.at
		if j.every > 0 {
			j.at += j.every
		} else {
			delete(m.jobs, j.id)
		}
		m.mu.Unlock()
		j.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending число активных задач
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *Manual) nextDue(target time.Duration) *manualJob {
	due := make([]*manualJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		if j.at <= target {
			due = append(due, j)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].at != due[b].at {
			return due[a].at < due[b].at
		}
		return due[a].id < due[b].id
	})
	return due[0]
}
