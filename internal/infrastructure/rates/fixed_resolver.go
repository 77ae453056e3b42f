package rates

import (
	"context"
	"sync"
	"time"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FixedRateResolver serves rates from an in-memory table. It is meant for
// local development and tests; rates are keyed by currency pair and class,
// ignoring the lookup date.
type FixedRateResolver struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewFixedRateResolver creates an empty fixed-rate resolver
func NewFixedRateResolver() *FixedRateResolver {
	return &FixedRateResolver{rates: make(map[string]decimal.Decimal)}
}

// SetRate registers a rate for a currency pair and class
func (r *FixedRateResolver) SetRate(from, to valueobject.Currency, class consolidation.RateClass, rate decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[fixedKey(from, to, class)] = rate
}

// Resolve returns the registered rate, inverting the opposite pair when only
// that is registered
func (r *FixedRateResolver) Resolve(_ context.Context, from, to valueobject.Currency, date time.Time, class consolidation.RateClass) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if rate, ok := r.rates[fixedKey(from, to, class)]; ok {
		return rate, nil
	}
	if inverse, ok := r.rates[fixedKey(to, from, class)]; ok && !inverse.IsZero() {
		return decimal.NewFromInt(1).DivRound(inverse, 8), nil
	}
	return decimal.Zero, &consolidation.RateUnavailableError{From: from, To: to, Date: date, Class: class}
}

func fixedKey(from, to valueobject.Currency, class consolidation.RateClass) string {
	return string(from) + ":" + string(to) + ":" + string(class)
}

// Ensure FixedRateResolver implements RateResolver
var _ consolidation.RateResolver = (*FixedRateResolver)(nil)
