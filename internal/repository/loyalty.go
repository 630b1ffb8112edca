package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"coffeehouse/internal/domain"
)

// StartingBalance баллы для новой установки
const StartingBalance int64 = 100

// LoyaltyRepository баланс баллов и журнал операций.
// Баланс хранится отдельно от журнала, согласованность обеспечивает сервис.
type LoyaltyRepository struct{ kv }

func NewLoyaltyRepository(store Store, logger *zap.Logger) *LoyaltyRepository {
	return &LoyaltyRepository{kv: newKV(store, logger)}
}

// Balance текущий баланс; StartingBalance, если он ещё не записан
func (r *LoyaltyRepository) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := r.view(ctx, func(tx Tx) error {
		var err error
		balance, err = r.balance(ctx, tx)
		return err
	})
	return balance, err
}

func (r *LoyaltyRepository) SetBalance(ctx context.Context, points int64) error {
	if points < 0 {
		points = 0
	}
	return r.update(ctx, func(tx Tx) error {
		return r.save(ctx, tx, KeyLoyaltyPoints, points)
	})
}

// Transactions журнал, новые первыми
func (r *LoyaltyRepository) Transactions(ctx context.Context) ([]domain.LoyaltyTransaction, error) {
	list := []domain.LoyaltyTransaction{}
	err := r.view(ctx, func(tx Tx) error {
		_, err := r.load(ctx, tx, KeyLoyaltyTransactions, &list)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// PrependTransaction добавляет запись в начало журнала
func (r *LoyaltyRepository) PrependTransaction(ctx context.Context, t domain.LoyaltyTransaction) error {
	return r.update(ctx, func(tx Tx) error {
		list := []domain.LoyaltyTransaction{}
		if _, err := r.load(ctx, tx, KeyLoyaltyTransactions, &list); err != nil {
			return err
		}
		list = append([]domain.LoyaltyTransaction{t}, list...)
		return r.save(ctx, tx, KeyLoyaltyTransactions, list)
	})
}

// значение может быть записано числом или строкой с числом
func (r *LoyaltyRepository) balance(ctx context.Context, tx Tx) (int64, error) {
	key := ScopedKey(ctx, KeyLoyaltyPoints)
	raw, err := tx.Get(key)
	if errors.Is(err, ErrNotFound) {
		return StartingBalance, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	points, err := parsePoints(raw)
	if err != nil || points < 0 {
		r.logger.Warn("malformed loyalty balance, using starting grant", zap.String("key", key), zap.ByteString("value", raw))
		return StartingBalance, nil
	}
	return points, nil
}

// parsePoints целое из JSON-числа или строки ("120", 120, "120\n").
// Строки разбираются только как десятичные.
func parsePoints(raw []byte) (int64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		v = string(raw)
	}
	switch x := v.(type) {
	case nil:
		return 0, errors.New("empty value")
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	default:
		return cast.ToInt64E(x)
	}
}
