package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an object key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving objects and handing out
// time-limited links to them.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
