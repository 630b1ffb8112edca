package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const boltBucket = "coffeehouse"

// BoltStore хранилище во встроенном файле bbolt. Писатель один, bbolt
// сериализует Update сам.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt открывает (или создаёт) файл базы
func OpenBolt(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	s := &BoltStore{db: db, bucket: []byte(boltBucket)}
	err = db.Update(func(btx *bolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return s, nil
}

var _ Store = (*BoltStore)(nil)

func (s *BoltStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&boltTx{b: btx.Bucket(s.bucket)})
	})
}

func (s *BoltStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&boltTx{b: btx.Bucket(s.bucket)})
	})
}

func (s *BoltStore) Close() error { return s.db.Close() }

type boltTx struct{ b *bolt.Bucket }

func (t *boltTx) Get(key string) ([]byte, error) {
	v := t.b.Get([]byte(key))
	if v == nil {
		return nil, ErrNotFound
	}
	// значение валидно только внутри транзакции
	return clone(v), nil
}

func (t *boltTx) Put(key string, value []byte) error {
	return t.b.Put([]byte(key), value)
}

func (t *boltTx) Delete(key string) error {
	return t.b.Delete([]byte(key))
}
