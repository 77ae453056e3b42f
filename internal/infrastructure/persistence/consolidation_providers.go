package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTrialBalanceProvider serves per-company trial balances from the
// account_balances staging table. Rows are loaded ahead of a close; the
// collection step only reads them.
type GormTrialBalanceProvider struct {
	db *gorm.DB
}

// NewGormTrialBalanceProvider creates a new GormTrialBalanceProvider
func NewGormTrialBalanceProvider(db *gorm.DB) *GormTrialBalanceProvider {
	return &GormTrialBalanceProvider{db: db}
}

// FetchTrialBalance returns the balance snapshot for a company as of a date.
// An empty result is returned as-is; the pipeline decides whether a missing
// trial balance is fatal.
func (p *GormTrialBalanceProvider) FetchTrialBalance(ctx context.Context, tenantID, companyID uuid.UUID, asOfDate time.Time) ([]consolidation.AccountBalance, error) {
	var rows []models.AccountBalanceModel
	if err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND company_id = ? AND as_of_date = ?", tenantID, companyID, asOfDate).
		Order("account_code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]consolidation.AccountBalance, len(rows))
	for i, row := range rows {
		balances[i] = row.ToDomain()
	}
	return balances, nil
}

// GormIntercompanyTransactionProvider serves intercompany transactions from
// the intercompany_transactions staging table keyed by reporting period.
type GormIntercompanyTransactionProvider struct {
	db *gorm.DB
}

// NewGormIntercompanyTransactionProvider creates a new GormIntercompanyTransactionProvider
func NewGormIntercompanyTransactionProvider(db *gorm.DB) *GormIntercompanyTransactionProvider {
	return &GormIntercompanyTransactionProvider{db: db}
}

// FetchTransactions returns the intercompany transactions recorded between
// group members for a reporting period
func (p *GormIntercompanyTransactionProvider) FetchTransactions(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) ([]consolidation.IntercompanyTransaction, error) {
	var rows []models.IntercompanyTransactionModel
	if err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND group_id = ? AND period_ref = ?", tenantID, groupID, periodRef).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	transactions := make([]consolidation.IntercompanyTransaction, len(rows))
	for i, row := range rows {
		transactions[i] = row.ToDomain()
	}
	return transactions, nil
}

// Ensure the providers implement the domain collaborator interfaces
var (
	_ consolidation.TrialBalanceProvider            = (*GormTrialBalanceProvider)(nil)
	_ consolidation.IntercompanyTransactionProvider = (*GormIntercompanyTransactionProvider)(nil)
)
