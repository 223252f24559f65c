// Package tokenstore persists the auth token between app launches.
package tokenstore

import (
	"context"
	"errors"
)

// TokenKey is the canonical storage key for the auth token. Login, logout
// and startup resolution all go through this one key; earlier revisions of
// the app wrote one key and deleted another, leaving stale tokens behind.
const TokenKey = "authToken"

// ErrNotFound is returned by Get when the key has never been set or was
// deleted.
var ErrNotFound = errors.New("token not found")

// Store is an on-device persistent key-value store for credentials.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
