package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore хранилище в redis. Ключи, прочитанные в Update, ставятся под
// WATCH; записи копятся и применяются одним MULTI/EXEC. Если прочитанный ключ
// изменился до EXEC, fn выполняется заново.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

// redisUpdateAttempts сколько раз Update повторяет fn при конфликте
const redisUpdateAttempts = 10

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return fn(&redisTx{ctx: ctx, store: s})
}

func (s *RedisStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	for i := 0; i < redisUpdateAttempts; i++ {
		err := s.Client.Watch(ctx, func(rtx *redis.Tx) error {
			return s.update(ctx, rtx, fn)
		})
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis commit: %d attempts: %w", redisUpdateAttempts, redis.TxFailedErr)
}

func (s *RedisStore) update(ctx context.Context, rtx *redis.Tx, fn func(tx Tx) error) error {
	tx := &redisTx{ctx: ctx, store: s, watch: rtx, writable: true, staged: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.staged) == 0 {
		return nil
	}
	_, err := rtx.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range tx.staged {
			if v == nil {
				p.Del(ctx, s.key(k))
				continue
			}
			p.Set(ctx, s.key(k), v, 0)
		}
		return nil
	})
	if errors.Is(err, redis.TxFailedErr) {
		return err
	}
	if err != nil {
		return fmt.Errorf("redis commit: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.Client.Close() }

func (s *RedisStore) key(k string) string { return s.Prefix + k }

type redisTx struct {
	ctx      context.Context
	store    *RedisStore
	watch    *redis.Tx
	watched  map[string]bool
	writable bool
	staged   map[string][]byte
}

func (t *redisTx) Get(key string) ([]byte, error) {
	if v, ok := t.staged[key]; ok {
		if v == nil {
			return nil, ErrNotFound
		}
		return clone(v), nil
	}
	var get *redis.StringCmd
	if t.watch != nil {
		if err := t.watchKey(key); err != nil {
			return nil, err
		}
		get = t.watch.Get(t.ctx, t.store.key(key))
	} else {
		get = t.store.Client.Get(t.ctx, t.store.key(key))
	}
	v, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (t *redisTx) Put(key string, value []byte) error {
	if !t.writable {
		return errReadOnlyTx
	}
	if value == nil {
		value = []byte{}
	}
	t.staged[key] = clone(value)
	return nil
}

func (t *redisTx) Delete(key string) error {
	if !t.writable {
		return errReadOnlyTx
	}
	t.staged[key] = nil
	return nil
}

// watchKey WATCH до первого чтения ключа, на том же соединении, что и EXEC
func (t *redisTx) watchKey(key string) error {
	if t.watched[key] {
		return nil
	}
	if err := t.watch.Watch(t.ctx, t.store.key(key)).Err(); err != nil {
		return fmt.Errorf("redis watch: %w", err)
	}
	if t.watched == nil {
		t.watched = make(map[string]bool)
	}
	t.watched[key] = true
	return nil
}
