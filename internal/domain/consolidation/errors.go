package consolidation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Consolidation domain errors
var (
	// ErrGroupInactive is returned when a run is initiated against a deactivated group
	ErrGroupInactive = shared.NewDomainError("GROUP_INACTIVE", "Consolidation group is inactive")
	// ErrGroupHasCompletedRuns is returned when deleting a group that has completed runs
	ErrGroupHasCompletedRuns = shared.NewDomainError("GROUP_HAS_COMPLETED_RUNS", "Consolidation group with completed runs can only be deactivated")
	// ErrRunExistsForPeriod is returned when a non-terminal run already exists for the (group, period) pair
	ErrRunExistsForPeriod = shared.NewDomainError("RUN_EXISTS_FOR_PERIOD", "A consolidation run is already pending or in progress for this group and period")
	// ErrRunNotCompleted is returned when a report is requested for a run that has not completed
	ErrRunNotCompleted = shared.NewDomainError("RUN_NOT_COMPLETED", "Consolidated reports are only available for completed runs")
	// ErrRunNotDeletable is returned when deleting a run outside Pending/Failed
	ErrRunNotDeletable = shared.NewDomainError("RUN_NOT_DELETABLE", "Only pending or failed runs may be deleted")
	// ErrDuplicateMember is returned when a company is added to a group twice
	ErrDuplicateMember = shared.NewDomainError("DUPLICATE_MEMBER", "Company is already a member of this consolidation group")
	// ErrRuleReferencedByRun is returned when deleting a rule referenced by a completed run
	ErrRuleReferencedByRun = shared.NewDomainError("RULE_REFERENCED_BY_RUN", "Elimination rule is referenced by a completed run and can only be deactivated, not deleted")
)

// RateUnavailableError reports a missing exchange rate, naming the exact
// lookup that failed so an operator can load the rate and re-initiate.
type RateUnavailableError struct {
	From  valueobject.Currency
	To    valueobject.Currency
	Date  time.Time
	Class RateClass
}

// Error implements the error interface
func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no %s rate available for %s/%s on %s",
		e.Class, e.From, e.To, e.Date.Format("2006-01-02"))
}

// Code returns the domain error code
func (e *RateUnavailableError) Code() string {
	return "RATE_UNAVAILABLE"
}

// NotBalancedError reports a violated statement identity together with the
// observed difference.
type NotBalancedError struct {
	Identity   string
	Difference decimal.Decimal
	Tolerance  decimal.Decimal
}

// Error implements the error interface
func (e *NotBalancedError) Error() string {
	return fmt.Sprintf("identity %q not satisfied: off by %s (tolerance %s)",
		e.Identity, e.Difference.String(), e.Tolerance.String())
}

// Code returns the domain error code
func (e *NotBalancedError) Code() string {
	return "NOT_BALANCED"
}

// UnmatchedTransactionError blocks a run when an unmatched intercompany
// transaction above the materiality threshold would be eliminated.
type UnmatchedTransactionError struct {
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	Materiality   decimal.Decimal
}

// Error implements the error interface
func (e *UnmatchedTransactionError) Error() string {
	return fmt.Sprintf("intercompany transaction %s is unmatched with amount %s above materiality %s",
		e.TransactionID, e.Amount.String(), e.Materiality.String())
}

// Code returns the domain error code
func (e *UnmatchedTransactionError) Code() string {
	return "UNMATCHED_TRANSACTION"
}

// MissingTrialBalanceError reports a member company whose trial balance the
// provider could not supply.
type MissingTrialBalanceError struct {
	CompanyID uuid.UUID
	AsOfDate  time.Time
}

// Error implements the error interface
func (e *MissingTrialBalanceError) Error() string {
	return fmt.Sprintf("no trial balance available for company %s as of %s",
		e.CompanyID, e.AsOfDate.Format("2006-01-02"))
}

// Code returns the domain error code
func (e *MissingTrialBalanceError) Code() string {
	return "TRIAL_BALANCE_MISSING"
}
