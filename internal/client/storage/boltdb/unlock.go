package boltdb

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/geojournal/internal/client/storage"
)

var pinKey = []byte("pin_hash")

// SavePINHash сохраняет bcrypt хеш PIN
func (s *Storage) SavePINHash(ctx context.Context, hash []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUnlock)
		if bucket == nil {
			return fmt.Errorf("unlock bucket not found")
		}
		if err := bucket.Put(pinKey, hash); err != nil {
			return fmt.Errorf("failed to save pin hash: %w", err)
		}
		return nil
	})
}

// GetPINHash возвращает сохраненный хеш или storage.ErrPINNotSet
func (s *Storage) GetPINHash(ctx context.Context) ([]byte, error) {
	var hash []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUnlock)
		if bucket == nil {
			return fmt.Errorf("unlock bucket not found")
		}
		data := bucket.Get(pinKey)
		if data == nil {
			return storage.ErrPINNotSet
		}
		// значение валидно только внутри транзакции
		hash = bytes.Clone(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return hash, nil
}

// DeletePINHash выключает локальную блокировку; отсутствие PIN не ошибка
func (s *Storage) DeletePINHash(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketUnlock)
		if bucket == nil {
			return fmt.Errorf("unlock bucket not found")
		}
		if err := bucket.Delete(pinKey); err != nil {
			return fmt.Errorf("failed to delete pin hash: %w", err)
		}
		return nil
	})
}
