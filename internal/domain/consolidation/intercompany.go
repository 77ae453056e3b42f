package consolidation

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IntercompanyTransactionType classifies a transaction between two group members
type IntercompanyTransactionType string

const (
	TransactionTypeSale              IntercompanyTransactionType = "SALE"
	TransactionTypeReceivablePayable IntercompanyTransactionType = "RECEIVABLE_PAYABLE"
	TransactionTypeLoan              IntercompanyTransactionType = "LOAN"
	TransactionTypeDividend          IntercompanyTransactionType = "DIVIDEND"
	TransactionTypeAssetTransfer     IntercompanyTransactionType = "ASSET_TRANSFER"
	TransactionTypeManagementFee     IntercompanyTransactionType = "MANAGEMENT_FEE"
)

// IsValid checks if the transaction type is valid
func (t IntercompanyTransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeReceivablePayable, TransactionTypeLoan,
		TransactionTypeDividend, TransactionTypeAssetTransfer, TransactionTypeManagementFee:
		return true
	}
	return false
}

// String returns the string representation
func (t IntercompanyTransactionType) String() string {
	return string(t)
}

// MatchingStatus tracks whether both legs of an intercompany transaction have
// been reconciled against each other
type MatchingStatus string

const (
	MatchingStatusUnmatched        MatchingStatus = "UNMATCHED"
	MatchingStatusPartiallyMatched MatchingStatus = "PARTIALLY_MATCHED"
	MatchingStatusMatched          MatchingStatus = "MATCHED"
	MatchingStatusVarianceApproved MatchingStatus = "VARIANCE_APPROVED"
)

// IsValid checks if the matching status is valid
func (s MatchingStatus) IsValid() bool {
	switch s {
	case MatchingStatusUnmatched, MatchingStatusPartiallyMatched,
		MatchingStatusMatched, MatchingStatusVarianceApproved:
		return true
	}
	return false
}

// String returns the string representation
func (s MatchingStatus) String() string {
	return string(s)
}

// IsEliminationReady returns true when a transaction can be eliminated
// without an operator override
func (s MatchingStatus) IsEliminationReady() bool {
	return s == MatchingStatusMatched || s == MatchingStatusVarianceApproved
}

// IntercompanyTransaction is one recorded transaction between two group
// members. The spec's reconciliation workflow owns matching; here the
// transaction is pipeline input.
type IntercompanyTransaction struct {
	ID                  uuid.UUID                   `json:"id"`
	TenantID            uuid.UUID                   `json:"tenant_id"`
	GroupID             uuid.UUID                   `json:"group_id"`
	FromCompanyID       uuid.UUID                   `json:"from_company_id"`
	ToCompanyID         uuid.UUID                   `json:"to_company_id"`
	Type                IntercompanyTransactionType `json:"type"`
	Date                time.Time                   `json:"date"`
	Amount              decimal.Decimal             `json:"amount"` // Group reporting currency
	FromAccountCode     string                      `json:"from_account_code"`
	ToAccountCode       string                      `json:"to_account_code"`
	MatchingStatus      MatchingStatus              `json:"matching_status"`
	FromJournalEntryID  *uuid.UUID                  `json:"from_journal_entry_id,omitempty"`
	ToJournalEntryID    *uuid.UUID                  `json:"to_journal_entry_id,omitempty"`
	VarianceAmount      *decimal.Decimal            `json:"variance_amount,omitempty"`
	VarianceExplanation string                      `json:"variance_explanation,omitempty"`
}

// NewIntercompanyTransaction creates a new intercompany transaction
func NewIntercompanyTransaction(
	tenantID, groupID, fromCompanyID, toCompanyID uuid.UUID,
	txType IntercompanyTransactionType,
	date time.Time,
	amount decimal.Decimal,
	fromAccountCode, toAccountCode string,
) (*IntercompanyTransaction, error) {
	if fromCompanyID == toCompanyID {
		return nil, shared.NewDomainError("SAME_COMPANY", "Intercompany transaction requires two distinct companies")
	}
	if fromCompanyID == uuid.Nil || toCompanyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company IDs cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Intercompany transaction type is not valid")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be zero")
	}

	return &IntercompanyTransaction{
		ID:              uuid.New(),
		TenantID:        tenantID,
		GroupID:         groupID,
		FromCompanyID:   fromCompanyID,
		ToCompanyID:     toCompanyID,
		Type:            txType,
		Date:            date,
		Amount:          amount,
		FromAccountCode: fromAccountCode,
		ToAccountCode:   toAccountCode,
		MatchingStatus:  MatchingStatusUnmatched,
	}, nil
}

// ApproveVariance records an explained variance between the two legs
func (t *IntercompanyTransaction) ApproveVariance(variance decimal.Decimal, explanation string) error {
	if explanation == "" {
		return shared.NewDomainError("INVALID_EXPLANATION", "Variance approval requires an explanation")
	}
	t.VarianceAmount = &variance
	t.VarianceExplanation = explanation
	t.MatchingStatus = MatchingStatusVarianceApproved
	return nil
}

// MarkMatched records that both legs reconcile exactly
func (t *IntercompanyTransaction) MarkMatched(fromEntry, toEntry uuid.UUID) {
	t.FromJournalEntryID = &fromEntry
	t.ToJournalEntryID = &toEntry
	t.MatchingStatus = MatchingStatusMatched
}

// Involves reports whether the given company is on either side
func (t *IntercompanyTransaction) Involves(companyID uuid.UUID) bool {
	return t.FromCompanyID == companyID || t.ToCompanyID == companyID
}
