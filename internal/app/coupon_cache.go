/**
 * @description
 * Redis-backed read cache for coupon metadata. Coupon lookups happen on
 * every checkout attempt, so a short-TTL cache keeps repeat validations off
 * the database. Entries are invalidated on application, which keeps the
 * usage counter close to fresh; a counter read within the TTL may still be
 * slightly stale, which the non-atomic validate/apply design already accepts.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

const defaultCouponCacheTTL = 30 * time.Second

// RedisCouponCache implements CouponCache on top of Redis.
type RedisCouponCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCouponCache creates a coupon cache. An empty prefix falls back to
// "kioskads:coupon"; a non-positive TTL falls back to 30 seconds.
func NewRedisCouponCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCouponCache {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = "kioskads:coupon"
	}
	if ttl <= 0 {
		ttl = defaultCouponCacheTTL
	}
	return &RedisCouponCache{client: client, prefix: trimmed, ttl: ttl}
}

func (c *RedisCouponCache) key(code string) string {
	return fmt.Sprintf("%s:%s", c.prefix, code)
}

// Get returns the cached coupon for a normalized code, or (nil, nil) on miss.
func (c *RedisCouponCache) Get(ctx context.Context, code string) (*domain.Coupon, error) {
	raw, err := c.client.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var coupon domain.Coupon
	if err := json.Unmarshal(raw, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Set stores a coupon under its normalized code with the cache TTL.
func (c *RedisCouponCache) Set(ctx context.Context, code string, coupon *domain.Coupon) error {
	raw, err := json.Marshal(coupon)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(code), raw, c.ttl).Err()
}

// Delete drops a cached coupon, forcing the next lookup to hit the store.
func (c *RedisCouponCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}
