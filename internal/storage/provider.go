package storage

import (
	"encoding/json"
	stderrors "errors"
	"reflect"

	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/logging"
	"github.com/manav03panchal/creatorbook/internal/model"
)

// Provider is a named-key JSON document store. Every repository reads and
// overwrites its whole document through it.
type Provider interface {
	// Load decodes key into dst. It returns false and leaves dst untouched
	// when the key is missing or its payload is corrupt.
	Load(key string, dst any) bool
	// Save replaces the document under key. On failure it returns a
	// *errors.StorageError and the previous document is kept.
	Save(key string, v any) error
	// Remove deletes key.
	Remove(key string) error
	// SizeEstimate sums the serialized size of every known key.
	SizeEstimate() (int64, error)
	// Keys lists the known keys.
	Keys() []string
}

// Versioned reports a counter that changes on every write.
type Versioned interface {
	Version() uint64
}

var _ Provider = (*DB)(nil)

// Load implements Provider.
func (d *DB) Load(key string, dst any) bool {
	data, err := d.GetBytes(key)
	if err != nil {
		if !IsErrKeyNotFound(err) {
			logging.Warn("storage read failed", logging.KeyKey, key, logging.KeyError, err)
		}
		return false
	}

	if err := decodeInto(data, dst); err != nil {
		logging.Warn("corrupt payload ignored", logging.KeyKey, key, logging.KeyError, err)
		return false
	}
	return true
}

// Save implements Provider.
func (d *DB) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewStorageError("save", key, err)
	}
	if err := d.SetBytes(key, data); err != nil {
		logging.Error("storage write failed", logging.KeyKey, key, logging.KeyBytes, len(data), logging.KeyError, err)
		return errors.NewStorageError("save", key, err)
	}
	d.version.Add(1)
	logging.DebugLog("saved", logging.KeyKey, key, logging.KeyBytes, len(data))
	return nil
}

// Remove implements Provider.
func (d *DB) Remove(key string) error {
	if err := d.Delete(key); err != nil {
		return errors.NewStorageError("remove", key, err)
	}
	d.version.Add(1)
	return nil
}

// ReplaceAll writes every raw document and deletes the keys in remove, in
// one transaction. Either everything is applied or nothing is.
func (d *DB) ReplaceAll(docs map[string]json.RawMessage, remove []string) error {
	values := make(map[string][]byte, len(docs))
	for k, v := range docs {
		values[k] = []byte(v)
	}
	if err := d.SetMany(values, remove); err != nil {
		return errors.NewStorageError("restore", "", err)
	}
	d.version.Add(1)
	return nil
}

// SizeEstimate implements Provider.
func (d *DB) SizeEstimate() (int64, error) {
	var total int64
	for _, key := range d.Keys() {
		n, err := d.ValueSize(key)
		if err != nil {
			return 0, errors.NewStorageError("size", key, err)
		}
		total += n
	}
	return total, nil
}

// Keys implements Provider.
func (d *DB) Keys() []string {
	keys := make([]string, len(model.AllKeys))
	copy(keys, model.AllKeys)
	return keys
}

// Version implements Versioned.
func (d *DB) Version() uint64 {
	return d.version.Load()
}

// decodeInto unmarshals into a fresh value of dst's type and copies it over
// only on success, so a corrupt payload never leaves dst half-written. Struct
// documents are decoded on top of a copy of dst, so fields missing from the
// payload keep the caller's defaults.
func decodeInto(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return stderrors.New("destination must be a non-nil pointer")
	}
	fresh := reflect.New(rv.Elem().Type())
	if rv.Elem().Kind() == reflect.Struct {
		base, err := json.Marshal(dst)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(base, fresh.Interface()); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}
