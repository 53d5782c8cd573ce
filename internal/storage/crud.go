package storage

import (
	"errors"
	"time"

	"github.com/avast/retry-go"
	badger "github.com/dgraph-io/badger/v4"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned when a value is larger than the write quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

const writeAttempts = 3

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// GetBytes retrieves raw bytes by key.
func (d *DB) GetBytes(key string) ([]byte, error) {
	var result []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

// SetBytes stores raw bytes with the given key.
func (d *DB) SetBytes(key string, data []byte) error {
	if len(data) > d.maxValueSize {
		return ErrQuotaExceeded
	}
	return d.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// SetMany writes every value and deletes every key in remove in one
// transaction: all changes land or none do.
func (d *DB) SetMany(values map[string][]byte, remove []string) error {
	for _, data := range values {
		if len(data) > d.maxValueSize {
			return ErrQuotaExceeded
		}
	}
	return d.update(func(txn *badger.Txn) error {
		for key, data := range values {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		for _, key := range remove {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a key from the database.
func (d *DB) Delete(key string) error {
	return d.update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Exists checks if a key exists in the database.
func (d *DB) Exists(key string) (bool, error) {
	var exists bool
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// ValueSize returns the stored size of key in bytes, 0 when absent.
func (d *DB) ValueSize(key string) (int64, error) {
	var size int64
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		size = item.ValueSize()
		return nil
	})
	return size, err
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (d *DB) update(fn func(txn *badger.Txn) error) error {
	return retry.Do(
		func() error {
			err := d.db.Update(fn)
			if err != nil && !errors.Is(err, badger.ErrConflict) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Attempts(writeAttempts),
		retry.Delay(10*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
