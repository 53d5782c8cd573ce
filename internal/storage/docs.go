package storage

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. Repositories take one so "current month"
// and timestamps are testable.
type Clock func() time.Time

// loadList reads a JSON array document, returning an empty list when the key
// is missing or corrupt.
func loadList[T any](store Provider, key string) []*T {
	var items []*T
	if !store.Load(key, &items) || items == nil {
		return []*T{}
	}
	out := items[:0]
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// indexOf returns the position of the item with id, or -1.
func indexOf[T any](items []*T, id string, idOf func(*T) string) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}

// removeAt deletes items[i] preserving order.
func removeAt[T any](items []*T, i int) []*T {
	return append(items[:i], items[i+1:]...)
}

// newID generates a time-ordered record id.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
