package consolidation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateClass selects which exchange rate applies to a statement line
type RateClass string

const (
	RateClassClosing    RateClass = "CLOSING"    // Rate effective on the as-of date (balance sheet)
	RateClassAverage    RateClass = "AVERAGE"    // Period average rate (income statement)
	RateClassHistorical RateClass = "HISTORICAL" // Rate effective on the equity layer's transaction date
)

// IsValid checks if the rate class is valid
func (c RateClass) IsValid() bool {
	switch c {
	case RateClassClosing, RateClassAverage, RateClassHistorical:
		return true
	}
	return false
}

// String returns the string representation
func (c RateClass) String() string {
	return string(c)
}

// RateResolver looks up exchange rates. Rate data is owned elsewhere; the
// engine only consumes lookups. A missing rate is reported as a
// *RateUnavailableError, never as a zero rate.
type RateResolver interface {
	// Resolve returns the rate converting one unit of from into to for the
	// given date and rate class.
	Resolve(ctx context.Context, from, to valueobject.Currency, date time.Time, class RateClass) (decimal.Decimal, error)
}

// TrialBalanceProvider supplies per-company account balances as of a date.
// Balances are expressed in the company's functional currency with natural
// signs (positive = normal balance for the account's nature).
type TrialBalanceProvider interface {
	FetchTrialBalance(ctx context.Context, tenantID, companyID uuid.UUID, asOfDate time.Time) ([]AccountBalance, error)
}

// IntercompanyTransactionProvider supplies the intercompany transactions
// recorded between group members for a reporting period.
type IntercompanyTransactionProvider interface {
	FetchTransactions(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) ([]IntercompanyTransaction, error)
}

// AccountBalance is one line of a member company's trial balance, the raw
// input to consolidation.
type AccountBalance struct {
	AccountID       uuid.UUID             `json:"account_id"`
	AccountCode     string                `json:"account_code"`
	AccountName     string                `json:"account_name"`
	Category        AccountCategory       `json:"category"`
	Balance         decimal.Decimal       `json:"balance"`  // Functional currency, natural sign
	Currency        valueobject.Currency  `json:"currency"` // Functional currency of the company
	IsActive        bool                  `json:"is_active"`
	IsIntercompany  bool                  `json:"is_intercompany"`
	TransactionDate *time.Time            `json:"transaction_date,omitempty"` // Equity layers: date fixing the historical rate
}
