// Package idempotency deduplicates order submissions: a client resending the
// same Idempotency-Key gets the recorded response back instead of placing a
// second order against the storefront.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Entry is the recorded API response for one idempotency key.
type Entry struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// NormalizeKey hashes the caller-supplied key so arbitrary client input never
// lands verbatim in a storage key.
func NormalizeKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("idempotency key is required")
	}
	digest := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(digest[:]), nil
}
