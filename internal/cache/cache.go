package cache

import (
	"context"
	"time"

	"equiptrack/backend/internal/domain"
)

// CheckoutCache caches checkouts by master barcode. Del exists because a
// return rewrites the checkout; serving a stale version would break the
// optimistic concurrency contract for readers.
type CheckoutCache interface {
	Get(ctx context.Context, key string) (*domain.ExtendedCheckout, bool, error)
	Set(ctx context.Context, key string, value *domain.ExtendedCheckout, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type NoopCheckoutCache struct{}

func (NoopCheckoutCache) Get(_ context.Context, _ string) (*domain.ExtendedCheckout, bool, error) {
	return nil, false, nil
}

func (NoopCheckoutCache) Set(_ context.Context, _ string, _ *domain.ExtendedCheckout, _ time.Duration) error {
	return nil
}

func (NoopCheckoutCache) Del(_ context.Context, _ string) error {
	return nil
}
