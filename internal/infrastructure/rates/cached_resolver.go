package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const rateKeyPrefix = "rates:"

// CachedRateResolver decorates a RateResolver with a Redis cache. Rates are
// immutable once published, so entries only expire by TTL. Cache failures
// degrade to the inner resolver; they never fail a run.
type CachedRateResolver struct {
	inner  consolidation.RateResolver
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRateResolver creates a caching decorator around the given resolver
func NewCachedRateResolver(inner consolidation.RateResolver, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRateResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRateResolver{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Resolve returns a cached rate when present, otherwise delegates to the
// inner resolver and caches the result. Misses of the rate itself (a
// *RateUnavailableError) are not cached so a late-loaded rate takes effect
// immediately.
func (r *CachedRateResolver) Resolve(ctx context.Context, from, to valueobject.Currency, date time.Time, class consolidation.RateClass) (decimal.Decimal, error) {
	key := rateKey(from, to, date, class)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return rate, nil
		}
		r.logger.Warn("Discarding unparseable cached rate", zap.String("key", key), zap.Error(parseErr))
	} else if err != redis.Nil {
		r.logger.Warn("Rate cache read failed", zap.String("key", key), zap.Error(err))
	}

	rate, err := r.inner.Resolve(ctx, from, to, date, class)
	if err != nil {
		return decimal.Zero, err
	}

	if setErr := r.client.Set(ctx, key, rate.String(), r.ttl).Err(); setErr != nil {
		r.logger.Warn("Rate cache write failed", zap.String("key", key), zap.Error(setErr))
	}
	return rate, nil
}

// rateKey builds the cache key for one lookup
func rateKey(from, to valueobject.Currency, date time.Time, class consolidation.RateClass) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", rateKeyPrefix, from, to, class, date.Format("2006-01-02"))
}

// Ensure CachedRateResolver implements RateResolver
var _ consolidation.RateResolver = (*CachedRateResolver)(nil)
