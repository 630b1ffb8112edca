package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeehouse/internal/domain"
)

func TestOrderUpdates_FiltersBySessionAndOrder(t *testing.T) {
	b := New()
	updates, cancel := b.OrderUpdates("alice", "42")
	defer cancel()

	b.PublishOrderStatus(OrderStatusChanged{Session: "bob", Order: domain.Order{ID: "42"}})
	b.PublishOrderStatus(OrderStatusChanged{Session: "alice", Order: domain.Order{ID: "7"}})
	b.PublishOrderStatus(OrderStatusChanged{Session: "alice", Order: domain.Order{ID: "42", Status: domain.OrderStatusPreparing}})

	select {
	case o := <-updates:
		assert.Equal(t, "42", o.ID)
		assert.Equal(t, domain.OrderStatusPreparing, o.Status)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(TopicChatMessage)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// публикация без подписчиков не блокируется
	b.PublishChatMessage(ChatMessagePosted{Session: "local"})
}

func TestChatUpdates(t *testing.T) {
	b := New()
	first, cancelFirst := b.ChatUpdates("local")
	second, cancelSecond := b.ChatUpdates("local")
	defer cancelSecond()

	b.PublishChatMessage(ChatMessagePosted{Session: "local", Message: domain.ChatMessage{ID: "m1", Text: "hi"}})

	for _, ch := range []<-chan domain.ChatMessage{first, second} {
		select {
		case m := <-ch:
			require.Equal(t, "m1", m.ID)
		case <-time.After(time.Second):
			t.Fatal("no message")
		}
	}

	cancelFirst()
	_, ok := <-first
	assert.False(t, ok)
}
