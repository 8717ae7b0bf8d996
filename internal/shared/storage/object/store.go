package object

import (
	"context"
	"errors"
	"time"
)

const (
	MinSignedURLTTL     = 30 * time.Second
	MaxSignedURLTTL     = 600 * time.Second
	DefaultSignedURLTTL = 120 * time.Second
)

// ErrInvalidKey is returned for empty or escaping object keys.
var ErrInvalidKey = errors.New("invalid object key")

// Signer issues time-limited download URLs for objects that are not publicly readable.
type Signer interface {
	SignURL(ctx context.Context, objectID string, ttl time.Duration) (string, error)
}

// KeySigner signs a key that is already absolute within the bucket, skipping
// any configured key prefix. Keys taken from a stored object URL need this.
type KeySigner interface {
	SignKey(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ClampTTL keeps a signed URL validity window inside [30s, 600s]. Zero selects 120s.
func ClampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl <= 0:
		return DefaultSignedURLTTL
	case ttl < MinSignedURLTTL:
		return MinSignedURLTTL
	case ttl > MaxSignedURLTTL:
		return MaxSignedURLTTL
	default:
		return ttl
	}
}
