package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a crashed checkout can hold a payment id.
const lockTTL = 10 * time.Minute

// PaymentLock guards a gateway payment id against concurrent or repeated
// checkouts. Key format: payment:<payment_id>
type PaymentLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPaymentLock(client *redis.Client) *PaymentLock {
	return &PaymentLock{client: client, ttl: lockTTL}
}

// Acquire reports whether the caller now holds the lock for paymentID.
// A successful checkout keeps the lock until it expires; the unique index on
// orders is the durable guard after that.
func (l *PaymentLock) Acquire(ctx context.Context, paymentID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(paymentID), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("payment lock acquire: %w", err)
	}
	return ok, nil
}

// Release frees the lock after a failed checkout so the customer can retry.
func (l *PaymentLock) Release(ctx context.Context, paymentID string) error {
	if err := l.client.Del(ctx, l.key(paymentID)).Err(); err != nil {
		return fmt.Errorf("payment lock release: %w", err)
	}
	return nil
}

func (l *PaymentLock) key(paymentID string) string {
	return "payment:" + paymentID
}
