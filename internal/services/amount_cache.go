package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// Pre-capture amount stash: payment:pending_amount:{purchase_id} -> amount
	keyPendingAmount = "payment:pending_amount:%d"

	// TTLPendingAmount bounds how long a quoted amount stays valid before the
	// client must restart the gateway redirect.
	TTLPendingAmount = 30 * time.Minute
)

// AmountCache stashes the client-quoted amount for a purchase between the
// redirect to the gateway and the confirm callback. Entries are evicted by the
// payment.completed consumer after a successful confirmation commits.
type AmountCache struct {
	client *redis.Client
}

// NewAmountCache creates the cache from a redis URL and verifies the
// connection.
func NewAmountCache(redisURL string) (*AmountCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return &AmountCache{client: client}, nil
}

func (c *AmountCache) Put(ctx context.Context, purchaseID uint, amount decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(purchaseID), amount.String(), ttl).Err()
}

// Get returns the stashed amount and whether an entry existed.
func (c *AmountCache) Get(ctx context.Context, purchaseID uint) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(purchaseID)).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached amount for purchase %d: %w", purchaseID, err)
	}
	return amount, true, nil
}

func (c *AmountCache) Delete(ctx context.Context, purchaseID uint) error {
	return c.client.Del(ctx, c.key(purchaseID)).Err()
}

func (c *AmountCache) Close() error {
	return c.client.Close()
}

func (c *AmountCache) key(purchaseID uint) string {
	return fmt.Sprintf(keyPendingAmount, purchaseID)
}
