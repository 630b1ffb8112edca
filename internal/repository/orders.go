package repository

import (
	"context"

	"go.uber.org/zap"

	"coffeehouse/internal/domain"
)

// OrderRepository список заказов, новые первыми (ключ orders)
type OrderRepository struct{ kv }

func NewOrderRepository(store Store, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{kv: newKV(store, logger)}
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.view(ctx, func(tx Tx) error {
		var err error
		orders, err = r.list(ctx, tx)
		return err
	})
	return orders, err
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var found *domain.Order
	err := r.view(ctx, func(tx Tx) error {
		orders, err := r.list(ctx, tx)
		if err != nil {
			return err
		}
		for i := range orders {
			if orders[i].ID == id {
				// return copy
				cp := orders[i]
				found = &cp
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Create добавляет заказ в начало списка
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return r.update(ctx, func(tx Tx) error {
		orders, err := r.list(ctx, tx)
		if err != nil {
			return err
		}
		orders = append([]domain.Order{*o}, orders...)
		return r.save(ctx, tx, KeyOrders, orders)
	})
}

// Update заменяет заказ с тем же id
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	return r.update(ctx, func(tx Tx) error {
		orders, err := r.list(ctx, tx)
		if err != nil {
			return err
		}
		for i := range orders {
			if orders[i].ID == o.ID {
				orders[i] = *o
				return r.save(ctx, tx, KeyOrders, orders)
			}
		}
		return ErrNotFound
	})
}

func (r *OrderRepository) list(ctx context.Context, tx Tx) ([]domain.Order, error) {
	orders := []domain.Order{}
	if _, err := r.load(ctx, tx, KeyOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
