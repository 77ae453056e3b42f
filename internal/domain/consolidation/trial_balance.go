package consolidation

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ConsolidatedLine is one account row of the consolidated trial balance.
// Amounts are in the group reporting currency with natural signs; ParentShare
// and NCIShare always sum exactly to Amount.
type ConsolidatedLine struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Category    AccountCategory `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ParentShare decimal.Decimal `json:"parent_share"`
	NCIShare    decimal.Decimal `json:"nci_share"`
}

// AppliedElimination records one elimination posting subtracted from the
// naively-summed balances, in rule application order.
type AppliedElimination struct {
	RuleID          uuid.UUID       `json:"rule_id"`
	RuleName        string          `json:"rule_name"`
	Type            EliminationType `json:"type"`
	Priority        int             `json:"priority"`
	DebitAccountID  uuid.UUID       `json:"debit_account_id"`
	CreditAccountID uuid.UUID       `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
}

// IsBalanced reports whether the posting is a well-formed debit/credit pair:
// two distinct accounts sharing a single non-negative amount.
func (e AppliedElimination) IsBalanced() bool {
	return e.DebitAccountID != e.CreditAccountID &&
		e.CreditAccountID != uuid.Nil &&
		e.DebitAccountID != uuid.Nil &&
		!e.Amount.IsNegative()
}

// ConsolidatedTrialBalance is the run-scoped output of the consolidation
// pipeline. It is immutable once its run reaches Completed.
type ConsolidatedTrialBalance struct {
	shared.BaseEntity
	TenantID            uuid.UUID            `json:"tenant_id"`
	RunID               uuid.UUID            `json:"run_id"`
	GroupID             uuid.UUID            `json:"group_id"`
	PeriodRef           string               `json:"period_ref"`
	AsOfDate            time.Time            `json:"as_of_date"`
	ReportingCurrency   valueobject.Currency `json:"reporting_currency"`
	Lines               []ConsolidatedLine   `json:"lines"`
	Eliminations        []AppliedElimination `json:"eliminations"`
	PendingEliminations []AppliedElimination `json:"pending_eliminations,omitempty"`
	NetIncomeParent     decimal.Decimal      `json:"net_income_parent"`
	NetIncomeNCI        decimal.Decimal      `json:"net_income_nci"`
}

// NewConsolidatedTrialBalance creates an empty consolidated trial balance for a run
func NewConsolidatedTrialBalance(run *ConsolidationRun, reportingCurrency valueobject.Currency) *ConsolidatedTrialBalance {
	return &ConsolidatedTrialBalance{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          run.TenantID,
		RunID:             run.ID,
		GroupID:           run.GroupID,
		PeriodRef:         run.PeriodRef,
		AsOfDate:          run.AsOfDate,
		ReportingCurrency: reportingCurrency,
		Lines:             make([]ConsolidatedLine, 0),
		Eliminations:      make([]AppliedElimination, 0),
		NetIncomeParent:   decimal.Zero,
		NetIncomeNCI:      decimal.Zero,
	}
}

// FindLine returns the line for an account ID, or nil
func (tb *ConsolidatedTrialBalance) FindLine(accountID uuid.UUID) *ConsolidatedLine {
	for i := range tb.Lines {
		if tb.Lines[i].AccountID == accountID {
			return &tb.Lines[i]
		}
	}
	return nil
}

// FindLineByCode returns the line for an account code, or nil
func (tb *ConsolidatedTrialBalance) FindLineByCode(code string) *ConsolidatedLine {
	for i := range tb.Lines {
		if tb.Lines[i].AccountCode == code {
			return &tb.Lines[i]
		}
	}
	return nil
}

// TotalByNature sums line amounts for a coarse account nature
func (tb *ConsolidatedTrialBalance) TotalByNature(nature AccountNature) decimal.Decimal {
	total := decimal.Zero
	for _, line := range tb.Lines {
		if line.Category.Nature() == nature {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// TotalByCategory sums line amounts for a fine-grained category
func (tb *ConsolidatedTrialBalance) TotalByCategory(category AccountCategory) decimal.Decimal {
	total := decimal.Zero
	for _, line := range tb.Lines {
		if line.Category == category {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// NetIncome returns revenue minus expenses across the income statement lines
func (tb *ConsolidatedTrialBalance) NetIncome() decimal.Decimal {
	return tb.TotalByNature(NatureRevenue).Sub(tb.TotalByNature(NatureExpense))
}

// Imbalance returns debits minus credits under the natural-sign convention:
// (assets + expenses) - (liabilities + equity + revenue). Zero for a balanced
// trial balance.
func (tb *ConsolidatedTrialBalance) Imbalance() decimal.Decimal {
	debits := tb.TotalByNature(NatureAsset).Add(tb.TotalByNature(NatureExpense))
	credits := tb.TotalByNature(NatureLiability).
		Add(tb.TotalByNature(NatureEquity)).
		Add(tb.TotalByNature(NatureRevenue))
	return debits.Sub(credits)
}

// IsBalanced reports whether the imbalance is within tolerance
func (tb *ConsolidatedTrialBalance) IsBalanced(tolerance decimal.Decimal) bool {
	return tb.Imbalance().Abs().LessThanOrEqual(tolerance)
}
