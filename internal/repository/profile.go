package repository

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"coffeehouse/internal/domain"
)

// ProfileRepository контактные данные (user_info) и черновик оформления
type ProfileRepository struct{ kv }

func NewProfileRepository(store Store, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{kv: newKV(store, logger)}
}

// UserInfo nil, если данные ещё не сохранялись
func (r *ProfileRepository) UserInfo(ctx context.Context) (*domain.UserInfo, error) {
	var info *domain.UserInfo
	err := r.view(ctx, func(tx Tx) error {
		var v domain.UserInfo
		ok, err := r.load(ctx, tx, KeyUserInfo, &v)
		if ok {
			info = &v
		}
		return err
	})
	return info, err
}

func (r *ProfileRepository) SaveUserInfo(ctx context.Context, info domain.UserInfo) error {
	return r.update(ctx, func(tx Tx) error {
		return r.save(ctx, tx, KeyUserInfo, info)
	})
}

// Draft выбор из корзины; по умолчанию самовывоз без баллов
func (r *ProfileRepository) Draft(ctx context.Context) (domain.CheckoutDraft, error) {
	draft := domain.CheckoutDraft{DeliveryType: domain.DeliveryTypePickup}
	err := r.view(ctx, func(tx Tx) error {
		if raw, err := tx.Get(ScopedKey(ctx, KeyCheckoutDeliveryType)); err == nil {
			var s string
			if json.Unmarshal(raw, &s) != nil {
				s = strings.TrimSpace(string(raw))
			}
			if t := domain.DeliveryType(s); t.Valid() {
				draft.DeliveryType = t
			}
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if raw, err := tx.Get(ScopedKey(ctx, KeyCheckoutLoyaltyPoints)); err == nil {
			if n, err := parsePoints(raw); err == nil {
				draft.LoyaltyPoints = n
			}
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	})
	if draft.LoyaltyPoints < 0 {
		draft.LoyaltyPoints = 0
	}
	return draft, err
}

func (r *ProfileRepository) SaveDraft(ctx context.Context, d domain.CheckoutDraft) error {
	return r.update(ctx, func(tx Tx) error {
		if err := r.save(ctx, tx, KeyCheckoutDeliveryType, d.DeliveryType); err != nil {
			return err
		}
		return r.save(ctx, tx, KeyCheckoutLoyaltyPoints, d.LoyaltyPoints)
	})
}

func (r *ProfileRepository) ClearDraft(ctx context.Context) error {
	return r.update(ctx, func(tx Tx) error {
		if err := r.remove(ctx, tx, KeyCheckoutDeliveryType); err != nil {
			return err
		}
		return r.remove(ctx, tx, KeyCheckoutLoyaltyPoints)
	})
}
