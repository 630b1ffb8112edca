// Package events внутрипроцессные уведомления о смене статуса заказа и
// новых сообщениях чата.
package events

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"coffeehouse/internal/domain"
)

const (
	TopicOrderStatus = "order:status"
	TopicChatMessage = "chat:message"
)

// OrderStatusChanged заказ создан или перешёл в следующий статус
type OrderStatusChanged struct {
	Session string
	Order   domain.Order
}

// ChatMessagePosted новое сообщение в чате сессии
type ChatMessagePosted struct {
	Session string
	Message domain.ChatMessage
}

// subscriberBuffer события сверх буфера медленному подписчику не доставляются
const subscriberBuffer = 16

// Bus публикует события через EventBus и раздаёт их подписчикам-каналам.
// Каналы нужны SSE-клиентам: отписка по указателю на функцию в EventBus не
// различает замыкания одного литерала.
type Bus struct {
	bus evbus.Bus

	mu   sync.RWMutex
	seq  int
	subs map[string]map[int]chan any
}

func New() *Bus {
	b := &Bus{bus: evbus.New(), subs: make(map[string]map[int]chan any)}
	for _, topic := range []string{TopicOrderStatus, TopicChatMessage} {
		_ = b.bus.Subscribe(topic, b.fanOut(topic))
	}
	return b
}

func (b *Bus) PublishOrderStatus(e OrderStatusChanged) {
	b.bus.Publish(TopicOrderStatus, e)
}

func (b *Bus) PublishChatMessage(e ChatMessagePosted) {
	b.bus.Publish(TopicChatMessage, e)
}

// Subscribe возвращает канал событий темы и функцию отписки.
// После отписки канал закрывается.
func (b *Bus) Subscribe(topic string) (<-chan any, func()) {
	ch := make(chan any, subscriberBuffer)
	b.mu.Lock()
	b.seq++
	id := b.seq
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan any)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// OrderUpdates события конкретного заказа сессии
func (b *Bus) OrderUpdates(session, orderID string) (<-chan domain.Order, func()) {
	src, cancel := b.Subscribe(TopicOrderStatus)
	out := make(chan domain.Order, subscriberBuffer)
	go func() {
		defer close(out)
		for ev := range src {
			e, ok := ev.(OrderStatusChanged)
			if !ok || e.Session != session || e.Order.ID != orderID {
				continue
			}
			select {
			case out <- e.Order:
			default:
			}
		}
	}()
	return out, cancel
}

// ChatUpdates новые сообщения чата сессии
func (b *Bus) ChatUpdates(session string) (<-chan domain.ChatMessage, func()) {
	src, cancel := b.Subscribe(TopicChatMessage)
	out := make(chan domain.ChatMessage, subscriberBuffer)
	go func() {
		defer close(out)
		for ev := range src {
			e, ok := ev.(ChatMessagePosted)
			if !ok || e.Session != session {
				continue
			}
			select {
			case out <- e.Message:
			default:
			}
		}
	}()
	return out, cancel
}

func (b *Bus) fanOut(topic string) func(any) {
	return func(ev any) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		for _, ch := range b.subs[topic] {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
