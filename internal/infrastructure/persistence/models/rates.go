package models

import (
	"time"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExchangeRateModel stores one exchange rate observation. Rate data is owned
// by the treasury pipeline; the consolidation engine only reads it.
type ExchangeRateModel struct {
	BaseModel
	FromCurrency  valueobject.Currency    `gorm:"type:varchar(3);not null;index:idx_rates_lookup,priority:1"`
	ToCurrency    valueobject.Currency    `gorm:"type:varchar(3);not null;index:idx_rates_lookup,priority:2"`
	RateClass     consolidation.RateClass `gorm:"type:varchar(20);not null;index:idx_rates_lookup,priority:3"`
	EffectiveDate time.Time               `gorm:"not null;index:idx_rates_lookup,priority:4"`
	Rate          decimal.Decimal         `gorm:"type:decimal(18,8);not null"`
	Source        string                  `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}
