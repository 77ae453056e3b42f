// Package rates provides RateResolver implementations backed by the
// exchange_rates table, an in-memory fixture resolver, and a Redis caching
// decorator.
package rates

import (
	"context"
	"errors"
	"time"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/groupclose/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRateResolver resolves exchange rates from the exchange_rates table. For
// a lookup date it picks the most recent observation effective on or before
// that date; if only the inverse pair is stored the rate is inverted.
type GormRateResolver struct {
	db *gorm.DB
}

// NewGormRateResolver creates a new GormRateResolver
func NewGormRateResolver(db *gorm.DB) *GormRateResolver {
	return &GormRateResolver{db: db}
}

// Resolve returns the rate converting one unit of from into to for the given
// date and rate class. A missing rate is a *RateUnavailableError, never zero.
func (r *GormRateResolver) Resolve(ctx context.Context, from, to valueobject.Currency, date time.Time, class consolidation.RateClass) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, err := r.lookup(ctx, from, to, date, class)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	inverse, err := r.lookup(ctx, to, from, date, class)
	if err == nil {
		if inverse.IsZero() {
			return decimal.Zero, &consolidation.RateUnavailableError{From: from, To: to, Date: date, Class: class}
		}
		return decimal.NewFromInt(1).DivRound(inverse, 8), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	return decimal.Zero, &consolidation.RateUnavailableError{From: from, To: to, Date: date, Class: class}
}

func (r *GormRateResolver) lookup(ctx context.Context, from, to valueobject.Currency, date time.Time, class consolidation.RateClass) (decimal.Decimal, error) {
	var model models.ExchangeRateModel
	err := r.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ? AND rate_class = ? AND effective_date <= ?",
			from, to, class, date).
		Order("effective_date DESC").
		First(&model).Error
	if err != nil {
		return decimal.Zero, err
	}
	return model.Rate, nil
}

// Ensure GormRateResolver implements RateResolver
var _ consolidation.RateResolver = (*GormRateResolver)(nil)
