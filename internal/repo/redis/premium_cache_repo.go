package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const premiumCachePrefix = "premium:"

// PremiumCacheRepo keeps a short-lived copy of the premium flag so the
// hot entitlement checks do not hit Postgres on every request.
type PremiumCacheRepo struct {
	client *goredis.Client
}

func NewPremiumCacheRepo(client *goredis.Client) *PremiumCacheRepo {
	return &PremiumCacheRepo{client: client}
}

func (r *PremiumCacheRepo) Get(ctx context.Context, userID int64) (bool, bool, error) {
	if r.client == nil || userID <= 0 {
		return false, false, nil
	}

	value, err := r.client.Get(ctx, premiumCacheKey(userID)).Result()
	if err == goredis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("get premium cache: %w", err)
	}

	return value == "1", true, nil
}

func (r *PremiumCacheRepo) Set(ctx context.Context, userID int64, isPremium bool, ttl time.Duration) error {
	if r.client == nil || userID <= 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	value := "0"
	if isPremium {
		value = "1"
	}

	if err := r.client.Set(ctx, premiumCacheKey(userID), value, ttl).Err(); err != nil {
		return fmt.Errorf("set premium cache: %w", err)
	}

	return nil
}

func (r *PremiumCacheRepo) Invalidate(ctx context.Context, userID int64) error {
	if r.client == nil || userID <= 0 {
		return nil
	}

	if err := r.client.Del(ctx, premiumCacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate premium cache: %w", err)
	}

	return nil
}

func premiumCacheKey(userID int64) string {
	return premiumCachePrefix + strconv.FormatInt(userID, 10)
}
