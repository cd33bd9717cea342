// Package lease serializes storefront access: at most one run may drive a
// given merchant's cart at a time. The runner acquires a merchant lease
// before opening a browser session and releases it when the run settles.
package lease

import (
	"context"
	"time"
)

type Manager interface {
	// Acquire takes the lease on resource for owner, returning false when
	// another owner currently holds it.
	Acquire(ctx context.Context, resource, owner string, ttl time.Duration) (bool, error)
	// Release frees the lease if owner still holds it. Releasing a lease
	// held by someone else is a no-op.
	Release(ctx context.Context, resource, owner string) error
}
