package repository

import (
	"context"

	"go.uber.org/zap"

	"coffeehouse/internal/domain"
)

// ChatRepository журнал сообщений чата в порядке отправки
type ChatRepository struct{ kv }

func NewChatRepository(store Store, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{kv: newKV(store, logger)}
}

func (r *ChatRepository) List(ctx context.Context) ([]domain.ChatMessage, error) {
	messages := []domain.ChatMessage{}
	err := r.view(ctx, func(tx Tx) error {
		_, err := r.load(ctx, tx, KeyChatMessages, &messages)
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *ChatRepository) Append(ctx context.Context, m domain.ChatMessage) error {
	return r.update(ctx, func(tx Tx) error {
		messages := []domain.ChatMessage{}
		if _, err := r.load(ctx, tx, KeyChatMessages, &messages); err != nil {
			return err
		}
		messages = append(messages, m)
		return r.save(ctx, tx, KeyChatMessages, messages)
	})
}
