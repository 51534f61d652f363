// Package store is the durable device-local key-value store backing the
// mutation queue, per-station bracket state, drafts and judge identity. Values
// are JSON-serializable; every write hits durable storage before returning so
// a crash immediately after a mutation loses nothing.
package store

import "errors"

var ErrClosed = errors.New("store is closed")

type Store interface {
	// Get decodes the value at key into dst. The bool reports whether the
	// key existed; a missing key is not an error.
	Get(key string, dst any) (bool, error)

	// Set encodes val as JSON and writes it durably before returning.
	Set(key string, val any) error

	// Delete removes a key. Deleting a missing key is a no-op.
	Delete(key string) error

	// Reset wipes every key except the named ones. Used by the local
	// "fresh install" action, which preserves judge identity.
	Reset(preserve ...string) error

	Close() error
}
