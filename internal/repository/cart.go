package repository

import (
	"context"

	"go.uber.org/zap"

	"coffeehouse/internal/domain"
)

// CartRepository состояние корзины (ключ cart)
type CartRepository struct{ kv }

func NewCartRepository(store Store, logger *zap.Logger) *CartRepository {
	return &CartRepository{kv: newKV(store, logger)}
}

// Load позиции корзины; пустой список, если состояния нет
func (r *CartRepository) Load(ctx context.Context) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	err := r.view(ctx, func(tx Tx) error {
		_, err := r.load(ctx, tx, KeyCart, &lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// Save перезаписывает корзину целиком
func (r *CartRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return r.update(ctx, func(tx Tx) error {
		return r.save(ctx, tx, KeyCart, lines)
	})
}

// Clear удаляет корзину
func (r *CartRepository) Clear(ctx context.Context) error {
	return r.update(ctx, func(tx Tx) error {
		return r.remove(ctx, tx, KeyCart)
	})
}
