// Package store holds the key-value backends the ledger persists into.
// Every key holds one whole JSON document; there are no partial updates.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Op is one staged write. A Delete op removes the key and ignores Value.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Put stages a whole-document write.
func Put(key string, value []byte) Op {
	return Op{Key: key, Value: value}
}

// Remove stages a key deletion.
func Remove(key string) Op {
	return Op{Key: key, Delete: true}
}

// Store is a key-value backend. Apply must commit all ops or none.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, ops ...Op) error
	Close() error
}
