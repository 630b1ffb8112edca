package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ключи состояния сессии
const (
	KeyCart                  = "cart"
	KeyOrders                = "orders"
	KeyUserInfo              = "user_info"
	KeyChatMessages          = "chat_messages"
	KeyLoyaltyPoints         = "loyalty_points"
	KeyLoyaltyTransactions   = "loyalty_transactions"
	KeyCheckoutDeliveryType  = "checkout_delivery_type"
	KeyCheckoutLoyaltyPoints = "checkout_loyalty_points"
)

// Tx операции над ключами внутри транзакции хранилища
type Tx interface {
	// Get возвращает ErrNotFound для отсутствующего ключа
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Store локальное key-value хранилище с атомарными пакетами изменений
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	// Update применяет все записи fn целиком или не применяет ничего
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// TxManager абстракция транзакции поверх Store
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultSession сессия по умолчанию: один пользователь, одно устройство
const DefaultSession = "local"

type sessionKey struct{}

// WithSession привязывает контекст к сессии пользователя
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFromContext id сессии или DefaultSession
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id
	}
	return DefaultSession
}

// ScopedKey физический ключ состояния для сессии из контекста
func ScopedKey(ctx context.Context, name string) string {
	return "session:" + SessionFromContext(ctx) + ":" + name
}

// transaction-aware helpers
type txKey struct{}

func txFromContext(ctx context.Context) (Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(Tx)
	return tx, ok
}

// StoreTx TxManager: вложенные вызовы используют уже открытую транзакцию
type StoreTx struct{ store Store }

func NewStoreTx(store Store) *StoreTx { return &StoreTx{store: store} }

var _ TxManager = (*StoreTx)(nil)

func (t *StoreTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	return t.store.Update(ctx, func(tx Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// kv общая часть типизированных репозиториев
type kv struct {
	store  Store
	logger *zap.Logger
}

func newKV(store Store, logger *zap.Logger) kv {
	if logger == nil {
		logger = zap.NewNop()
	}
	return kv{store: store, logger: logger}
}

func (k kv) view(ctx context.Context, fn func(tx Tx) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx)
	}
	return k.store.View(ctx, fn)
}

func (k kv) update(ctx context.Context, fn func(tx Tx) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx)
	}
	return k.store.Update(ctx, fn)
}

// load читает JSON по ключу в v (указатель). Отсутствующее или битое значение
// даёт false без ошибки, v при этом не меняется.
func (k kv) load(ctx context.Context, tx Tx, name string, v any) (bool, error) {
	key := ScopedKey(ctx, name)
	raw, err := tx.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	// v меняется только после успешного декодирования
	target := reflect.ValueOf(v).Elem()
	tmp := reflect.New(target.Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		k.logger.Warn("malformed state treated as empty", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	target.Set(tmp.Elem())
	return true, nil
}

func (k kv) save(ctx context.Context, tx Tx, name string, v any) error {
	key := ScopedKey(ctx, name)
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Put(key, raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (k kv) remove(ctx context.Context, tx Tx, name string) error {
	key := ScopedKey(ctx, name)
	if err := tx.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
