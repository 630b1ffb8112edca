// Package schedule таймеры для симуляции статусов заказа и автоответов чата.
package schedule

import "time"

// Handle отменяет запланированную задачу. Повторный Stop ничего не делает.
type Handle interface {
	Stop()
}

// Scheduler планировщик отложенных и периодических задач
type Scheduler interface {
	// Every запускает fn каждые d до вызова Stop
	Every(d time.Duration, fn func()) Handle
	// After запускает fn один раз через d
	After(d time.Duration, fn func()) Handle
}
