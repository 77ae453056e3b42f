package consolidation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EliminationType identifies which class of intercompany double-counting a
// rule removes. It is a closed set; every algorithm step switches over it
// exhaustively.
type EliminationType string

const (
	EliminationReceivablePayable EliminationType = "INTERCOMPANY_RECEIVABLE_PAYABLE"
	EliminationSales             EliminationType = "INTERCOMPANY_SALES"
	EliminationLoans             EliminationType = "INTERCOMPANY_LOANS"
	EliminationDividends         EliminationType = "INTERCOMPANY_DIVIDENDS"
	EliminationUnrealizedProfit  EliminationType = "UNREALIZED_PROFIT"
	EliminationManual            EliminationType = "MANUAL"
)

// IsValid checks if the elimination type is valid
func (t EliminationType) IsValid() bool {
	switch t {
	case EliminationReceivablePayable, EliminationSales, EliminationLoans,
		EliminationDividends, EliminationUnrealizedProfit, EliminationManual:
		return true
	}
	return false
}

// String returns the string representation
func (t EliminationType) String() string {
	return string(t)
}

// AllEliminationTypes returns all valid elimination types
func AllEliminationTypes() []EliminationType {
	return []EliminationType{
		EliminationReceivablePayable,
		EliminationSales,
		EliminationLoans,
		EliminationDividends,
		EliminationUnrealizedProfit,
		EliminationManual,
	}
}

// TransactionTypes returns the intercompany transaction types this
// elimination type draws its source amounts from. Empty means the type is
// balance-driven rather than transaction-driven.
func (t EliminationType) TransactionTypes() []IntercompanyTransactionType {
	switch t {
	case EliminationReceivablePayable:
		return []IntercompanyTransactionType{TransactionTypeReceivablePayable}
	case EliminationSales:
		return []IntercompanyTransactionType{TransactionTypeSale}
	case EliminationLoans:
		return []IntercompanyTransactionType{TransactionTypeLoan}
	case EliminationDividends:
		return []IntercompanyTransactionType{TransactionTypeDividend}
	case EliminationUnrealizedProfit:
		return []IntercompanyTransactionType{TransactionTypeSale, TransactionTypeAssetTransfer}
	case EliminationManual:
		return nil
	}
	return nil
}

// AccountSelector picks source accounts for a trigger condition. A trailing
// "*" in Code matches by prefix. A nil CompanyID matches any group member.
type AccountSelector struct {
	Code      string     `json:"code"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
}

// Matches reports whether the selector covers the given account code
func (s AccountSelector) Matches(code string) bool {
	if s.Code == "" {
		return false
	}
	if s.Code[len(s.Code)-1] == '*' {
		prefix := s.Code[:len(s.Code)-1]
		return len(code) >= len(prefix) && code[:len(prefix)] == prefix
	}
	return s.Code == code
}

// TriggerCondition gates a rule. The condition matches when every selector
// resolves to at least one source item whose magnitude meets MinimumAmount.
type TriggerCondition struct {
	Description    string           `json:"description"`
	SourceAccounts []AccountSelector `json:"source_accounts"`
	MinimumAmount  *decimal.Decimal `json:"minimum_amount,omitempty"`
}

// TriggerConditions is stored as JSONB through GORM
type TriggerConditions []TriggerCondition

// Value implements driver.Valuer for JSONB storage
func (t TriggerConditions) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB retrieval
func (t *TriggerConditions) Scan(value interface{}) error {
	if value == nil {
		*t = TriggerConditions{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TriggerConditions: unsupported type")
	}
	if len(bytes) == 0 {
		*t = TriggerConditions{}
		return nil
	}
	return json.Unmarshal(bytes, t)
}

// AccountSelectors is stored as JSONB through GORM
type AccountSelectors []AccountSelector

// Value implements driver.Valuer for JSONB storage
func (a AccountSelectors) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB retrieval
func (a *AccountSelectors) Scan(value interface{}) error {
	if value == nil {
		*a = AccountSelectors{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan AccountSelectors: unsupported type")
	}
	if len(bytes) == 0 {
		*a = AccountSelectors{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// EliminationRule is the aggregate root for one elimination instruction.
// Rules are matched in ascending Priority order (ties broken by rule ID) and
// post a balanced debit/credit pair when triggered. Once a completed run has
// referenced a rule, edits only affect future runs: runs snapshot rule data
// at initiate time.
type EliminationRule struct {
	shared.TenantAggregateRoot
	GroupID           uuid.UUID         `json:"group_id"`
	Name              string            `json:"name"`
	Type              EliminationType   `json:"type"`
	TriggerConditions TriggerConditions `json:"trigger_conditions"`
	SourceAccounts    AccountSelectors  `json:"source_accounts"`
	TargetAccounts    AccountSelectors  `json:"target_accounts"`
	DebitAccountID    uuid.UUID         `json:"debit_account_id"`
	CreditAccountID   uuid.UUID         `json:"credit_account_id"`
	IsAutomatic       bool              `json:"is_automatic"`
	Priority          int               `json:"priority"`
	IsActive          bool              `json:"is_active"`
	Description       string            `json:"description"`
}

// NewEliminationRule creates a new elimination rule
func NewEliminationRule(
	tenantID, groupID uuid.UUID,
	name string,
	eliminationType EliminationType,
	debitAccountID, creditAccountID uuid.UUID,
	priority int,
	isAutomatic bool,
) (*EliminationRule, error) {
	if groupID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_GROUP", "Group ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_RULE_NAME", "Rule name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_RULE_NAME", "Rule name cannot exceed 100 characters")
	}
	if !eliminationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ELIMINATION_TYPE", "Elimination type is not valid")
	}
	if debitAccountID == uuid.Nil || creditAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POSTING_PAIR", "Debit and credit account IDs are required")
	}
	if debitAccountID == creditAccountID {
		return nil, shared.NewDomainError("INVALID_POSTING_PAIR", "Debit and credit accounts must differ")
	}
	if priority < 0 {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Priority cannot be negative")
	}

	r := &EliminationRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		GroupID:             groupID,
		Name:                name,
		Type:                eliminationType,
		TriggerConditions:   TriggerConditions{},
		SourceAccounts:      AccountSelectors{},
		TargetAccounts:      AccountSelectors{},
		DebitAccountID:      debitAccountID,
		CreditAccountID:     creditAccountID,
		IsAutomatic:         isAutomatic,
		Priority:            priority,
		IsActive:            true,
	}

	r.AddDomainEvent(NewRuleCreatedEvent(r))

	return r, nil
}

// AddTriggerCondition appends a trigger condition
func (r *EliminationRule) AddTriggerCondition(description string, selectors []AccountSelector, minimumAmount *decimal.Decimal) error {
	if len(selectors) == 0 {
		return shared.NewDomainError("INVALID_CONDITION", "Trigger condition requires at least one account selector")
	}
	if minimumAmount != nil && minimumAmount.IsNegative() {
		return shared.NewDomainError("INVALID_CONDITION", "Minimum amount cannot be negative")
	}
	r.TriggerConditions = append(r.TriggerConditions, TriggerCondition{
		Description:    description,
		SourceAccounts: selectors,
		MinimumAmount:  minimumAmount,
	})
	r.Touch()
	r.IncrementVersion()
	return nil
}

// SetAccounts records the source and target account selectors
func (r *EliminationRule) SetAccounts(source, target []AccountSelector) {
	r.SourceAccounts = source
	r.TargetAccounts = target
	r.Touch()
	r.IncrementVersion()
}

// Activate re-enables the rule for future runs
func (r *EliminationRule) Activate() error {
	if r.IsActive {
		return shared.NewDomainError("RULE_ALREADY_ACTIVE", "Elimination rule is already active")
	}
	r.IsActive = true
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewRuleActivationChangedEvent(r))
	return nil
}

// Deactivate disables the rule for future runs
func (r *EliminationRule) Deactivate() error {
	if !r.IsActive {
		return shared.NewDomainError("RULE_ALREADY_INACTIVE", "Elimination rule is already inactive")
	}
	r.IsActive = false
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewRuleActivationChangedEvent(r))
	return nil
}

// Rename changes the rule's display name
func (r *EliminationRule) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_RULE_NAME", "Rule name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_RULE_NAME", "Rule name cannot exceed 100 characters")
	}
	r.Name = name
	r.Touch()
	r.IncrementVersion()
	return nil
}

// SetPostingPair changes the accounts the rule's elimination entry posts to
func (r *EliminationRule) SetPostingPair(debitAccountID, creditAccountID uuid.UUID) error {
	if debitAccountID == uuid.Nil || creditAccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_POSTING_PAIR", "Debit and credit account IDs are required")
	}
	if debitAccountID == creditAccountID {
		return shared.NewDomainError("INVALID_POSTING_PAIR", "Debit and credit accounts must differ")
	}
	r.DebitAccountID = debitAccountID
	r.CreditAccountID = creditAccountID
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Reprioritize changes the rule's evaluation order
func (r *EliminationRule) Reprioritize(priority int) error {
	if priority < 0 {
		return shared.NewDomainError("INVALID_PRIORITY", "Priority cannot be negative")
	}
	old := r.Priority
	r.Priority = priority
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewRuleReprioritizedEvent(r, old))
	return nil
}
