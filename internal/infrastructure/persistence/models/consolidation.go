package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ConsolidationGroupModel is the persistence model for the ConsolidationGroup aggregate root.
type ConsolidationGroupModel struct {
	TenantAggregateModel
	Name              string                                `gorm:"type:varchar(100);not null"`
	ReportingCurrency valueobject.Currency                  `gorm:"type:varchar(3);not null"`
	DefaultMethod     consolidation.ConsolidationMethod     `gorm:"type:varchar(20);not null"`
	ParentCompanyID   uuid.UUID                             `gorm:"type:uuid;not null;index"`
	IsActive          bool                                  `gorm:"not null;default:true;index"`
	Members           []consolidation.ConsolidationMember   `gorm:"type:jsonb;serializer:json"`
	DeactivatedAt     *time.Time
}

// TableName returns the table name for GORM
func (ConsolidationGroupModel) TableName() string {
	return "consolidation_groups"
}

// ToDomain converts the persistence model to a domain ConsolidationGroup entity.
func (m *ConsolidationGroupModel) ToDomain() *consolidation.ConsolidationGroup {
	members := m.Members
	if members == nil {
		members = make([]consolidation.ConsolidationMember, 0)
	}
	return &consolidation.ConsolidationGroup{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		Name:              m.Name,
		ReportingCurrency: m.ReportingCurrency,
		DefaultMethod:     m.DefaultMethod,
		ParentCompanyID:   m.ParentCompanyID,
		IsActive:          m.IsActive,
		Members:           members,
		DeactivatedAt:     m.DeactivatedAt,
	}
}

// FromDomain populates the persistence model from a domain ConsolidationGroup entity.
func (m *ConsolidationGroupModel) FromDomain(g *consolidation.ConsolidationGroup) {
	m.FromDomainTenantAggregateRoot(g.TenantAggregateRoot)
	m.Name = g.Name
	m.ReportingCurrency = g.ReportingCurrency
	m.DefaultMethod = g.DefaultMethod
	m.ParentCompanyID = g.ParentCompanyID
	m.IsActive = g.IsActive
	m.Members = g.Members
	m.DeactivatedAt = g.DeactivatedAt
}

// ConsolidationGroupModelFromDomain creates a new persistence model from a domain ConsolidationGroup.
func ConsolidationGroupModelFromDomain(g *consolidation.ConsolidationGroup) *ConsolidationGroupModel {
	m := &ConsolidationGroupModel{}
	m.FromDomain(g)
	return m
}

// EliminationRuleModel is the persistence model for the EliminationRule aggregate root.
type EliminationRuleModel struct {
	TenantAggregateModel
	GroupID           uuid.UUID                       `gorm:"type:uuid;not null;index"`
	Name              string                          `gorm:"type:varchar(100);not null"`
	Type              consolidation.EliminationType   `gorm:"type:varchar(40);not null;index"`
	TriggerConditions consolidation.TriggerConditions `gorm:"type:jsonb;default:'[]'"`
	SourceAccounts    consolidation.AccountSelectors  `gorm:"type:jsonb;default:'[]'"`
	TargetAccounts    consolidation.AccountSelectors  `gorm:"type:jsonb;default:'[]'"`
	DebitAccountID    uuid.UUID                       `gorm:"type:uuid;not null"`
	CreditAccountID   uuid.UUID                       `gorm:"type:uuid;not null"`
	IsAutomatic       bool                            `gorm:"not null;default:false"`
	Priority          int                             `gorm:"not null;index"`
	IsActive          bool                            `gorm:"not null;default:true;index"`
	Description       string                          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EliminationRuleModel) TableName() string {
	return "elimination_rules"
}

// ToDomain converts the persistence model to a domain EliminationRule entity.
func (m *EliminationRuleModel) ToDomain() *consolidation.EliminationRule {
	return &consolidation.EliminationRule{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		GroupID:           m.GroupID,
		Name:              m.Name,
		Type:              m.Type,
		TriggerConditions: m.TriggerConditions,
		SourceAccounts:    m.SourceAccounts,
		TargetAccounts:    m.TargetAccounts,
		DebitAccountID:    m.DebitAccountID,
		CreditAccountID:   m.CreditAccountID,
		IsAutomatic:       m.IsAutomatic,
		Priority:          m.Priority,
		IsActive:          m.IsActive,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain EliminationRule entity.
func (m *EliminationRuleModel) FromDomain(r *consolidation.EliminationRule) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.GroupID = r.GroupID
	m.Name = r.Name
	m.Type = r.Type
	m.TriggerConditions = r.TriggerConditions
	m.SourceAccounts = r.SourceAccounts
	m.TargetAccounts = r.TargetAccounts
	m.DebitAccountID = r.DebitAccountID
	m.CreditAccountID = r.CreditAccountID
	m.IsAutomatic = r.IsAutomatic
	m.Priority = r.Priority
	m.IsActive = r.IsActive
	m.Description = r.Description
}

// EliminationRuleModelFromDomain creates a new persistence model from a domain EliminationRule.
func EliminationRuleModelFromDomain(r *consolidation.EliminationRule) *EliminationRuleModel {
	m := &EliminationRuleModel{}
	m.FromDomain(r)
	return m
}

// ConsolidationRunModel is the persistence model for the ConsolidationRun aggregate root.
// A partial unique index on (tenant_id, group_id, period_ref) for non-terminal
// statuses backs the one-active-run-per-period invariant; it lives in the SQL
// migrations because GORM tags cannot express partial indexes.
type ConsolidationRunModel struct {
	TenantAggregateModel
	GroupID         uuid.UUID                 `gorm:"type:uuid;not null;index:idx_runs_group_period,priority:1"`
	PeriodRef       string                    `gorm:"type:varchar(20);not null;index:idx_runs_group_period,priority:2"`
	AsOfDate        time.Time                 `gorm:"not null"`
	Status          consolidation.RunStatus   `gorm:"type:varchar(20);not null;index"`
	Steps           consolidation.StepRecords `gorm:"type:jsonb;default:'[]'"`
	InitiatedBy     uuid.UUID                 `gorm:"type:uuid;not null"`
	Flags           consolidation.RunFlags    `gorm:"type:jsonb;default:'{}'"`
	Warnings        consolidation.RunWarnings `gorm:"type:jsonb;default:'[]'"`
	FailureStep     *consolidation.RunStep    `gorm:"type:varchar(20)"`
	FailureReason   string                    `gorm:"type:text"`
	CancelRequested bool                      `gorm:"not null;default:false"`
	StartedAt       *time.Time
	FinishedAt      *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ConsolidationRunModel) TableName() string {
	return "consolidation_runs"
}

// ToDomain converts the persistence model to a domain ConsolidationRun entity.
func (m *ConsolidationRunModel) ToDomain() *consolidation.ConsolidationRun {
	return &consolidation.ConsolidationRun{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		GroupID:         m.GroupID,
		PeriodRef:       m.PeriodRef,
		AsOfDate:        m.AsOfDate,
		Status:          m.Status,
		Steps:           m.Steps,
		InitiatedBy:     m.InitiatedBy,
		Flags:           m.Flags,
		Warnings:        m.Warnings,
		FailureStep:     m.FailureStep,
		FailureReason:   m.FailureReason,
		CancelRequested: m.CancelRequested,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
	}
}

// FromDomain populates the persistence model from a domain ConsolidationRun entity.
func (m *ConsolidationRunModel) FromDomain(r *consolidation.ConsolidationRun) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.GroupID = r.GroupID
	m.PeriodRef = r.PeriodRef
	m.AsOfDate = r.AsOfDate
	m.Status = r.Status
	m.Steps = r.Steps
	m.InitiatedBy = r.InitiatedBy
	m.Flags = r.Flags
	m.Warnings = r.Warnings
	m.FailureStep = r.FailureStep
	m.FailureReason = r.FailureReason
	m.CancelRequested = r.CancelRequested
	m.StartedAt = r.StartedAt
	m.FinishedAt = r.FinishedAt
}

// ConsolidationRunModelFromDomain creates a new persistence model from a domain ConsolidationRun.
func ConsolidationRunModelFromDomain(r *consolidation.ConsolidationRun) *ConsolidationRunModel {
	m := &ConsolidationRunModel{}
	m.FromDomain(r)
	return m
}

// TrialBalanceModel is the persistence model for the run-scoped
// ConsolidatedTrialBalance entity. One row per run.
type TrialBalanceModel struct {
	BaseModel
	TenantID            uuid.UUID                          `gorm:"type:uuid;not null;index"`
	RunID               uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex"`
	GroupID             uuid.UUID                          `gorm:"type:uuid;not null;index"`
	PeriodRef           string                             `gorm:"type:varchar(20);not null"`
	AsOfDate            time.Time                          `gorm:"not null"`
	ReportingCurrency   valueobject.Currency               `gorm:"type:varchar(3);not null"`
	Lines               []consolidation.ConsolidatedLine   `gorm:"type:jsonb;serializer:json"`
	Eliminations        []consolidation.AppliedElimination `gorm:"type:jsonb;serializer:json"`
	PendingEliminations []consolidation.AppliedElimination `gorm:"type:jsonb;serializer:json"`
	NetIncomeParent     decimal.Decimal                    `gorm:"type:decimal(18,4);not null"`
	NetIncomeNCI        decimal.Decimal                    `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (TrialBalanceModel) TableName() string {
	return "consolidated_trial_balances"
}

// ToDomain converts the persistence model to a domain ConsolidatedTrialBalance entity.
func (m *TrialBalanceModel) ToDomain() *consolidation.ConsolidatedTrialBalance {
	lines := m.Lines
	if lines == nil {
		lines = make([]consolidation.ConsolidatedLine, 0)
	}
	eliminations := m.Eliminations
	if eliminations == nil {
		eliminations = make([]consolidation.AppliedElimination, 0)
	}
	return &consolidation.ConsolidatedTrialBalance{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:            m.TenantID,
		RunID:               m.RunID,
		GroupID:             m.GroupID,
		PeriodRef:           m.PeriodRef,
		AsOfDate:            m.AsOfDate,
		ReportingCurrency:   m.ReportingCurrency,
		Lines:               lines,
		Eliminations:        eliminations,
		PendingEliminations: m.PendingEliminations,
		NetIncomeParent:     m.NetIncomeParent,
		NetIncomeNCI:        m.NetIncomeNCI,
	}
}

// FromDomain populates the persistence model from a domain ConsolidatedTrialBalance entity.
func (m *TrialBalanceModel) FromDomain(tb *consolidation.ConsolidatedTrialBalance) {
	m.FromDomainBaseEntity(tb.BaseEntity)
	m.TenantID = tb.TenantID
	m.RunID = tb.RunID
	m.GroupID = tb.GroupID
	m.PeriodRef = tb.PeriodRef
	m.AsOfDate = tb.AsOfDate
	m.ReportingCurrency = tb.ReportingCurrency
	m.Lines = tb.Lines
	m.Eliminations = tb.Eliminations
	m.PendingEliminations = tb.PendingEliminations
	m.NetIncomeParent = tb.NetIncomeParent
	m.NetIncomeNCI = tb.NetIncomeNCI
}

// TrialBalanceModelFromDomain creates a new persistence model from a domain ConsolidatedTrialBalance.
func TrialBalanceModelFromDomain(tb *consolidation.ConsolidatedTrialBalance) *TrialBalanceModel {
	m := &TrialBalanceModel{}
	m.FromDomain(tb)
	return m
}

// AccountBalanceModel is the staging table for per-company trial balance
// snapshots. Rows are loaded from the bookkeeping system ahead of a close and
// read by the collection step.
type AccountBalanceModel struct {
	BaseModel
	TenantID        uuid.UUID                     `gorm:"type:uuid;not null;index:idx_balances_lookup,priority:1"`
	CompanyID       uuid.UUID                     `gorm:"type:uuid;not null;index:idx_balances_lookup,priority:2"`
	AsOfDate        time.Time                     `gorm:"not null;index:idx_balances_lookup,priority:3"`
	AccountID       uuid.UUID                     `gorm:"type:uuid;not null"`
	AccountCode     string                        `gorm:"type:varchar(50);not null"`
	AccountName     string                        `gorm:"type:varchar(200);not null"`
	Category        consolidation.AccountCategory `gorm:"type:varchar(40);not null"`
	Balance         decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	Currency        valueobject.Currency          `gorm:"type:varchar(3);not null"`
	IsActive        bool                          `gorm:"not null;default:true"`
	IsIntercompany  bool                          `gorm:"not null;default:false"`
	TransactionDate *time.Time
}

// TableName returns the table name for GORM
func (AccountBalanceModel) TableName() string {
	return "account_balances"
}

// ToDomain converts the staging row to a domain AccountBalance.
func (m *AccountBalanceModel) ToDomain() consolidation.AccountBalance {
	return consolidation.AccountBalance{
		AccountID:       m.AccountID,
		AccountCode:     m.AccountCode,
		AccountName:     m.AccountName,
		Category:        m.Category,
		Balance:         m.Balance,
		Currency:        m.Currency,
		IsActive:        m.IsActive,
		IsIntercompany:  m.IsIntercompany,
		TransactionDate: m.TransactionDate,
	}
}

// IntercompanyTransactionModel is the staging table for intercompany
// transactions recorded between group members, keyed by reporting period.
type IntercompanyTransactionModel struct {
	BaseModel
	TenantID            uuid.UUID                                 `gorm:"type:uuid;not null;index:idx_ict_lookup,priority:1"`
	GroupID             uuid.UUID                                 `gorm:"type:uuid;not null;index:idx_ict_lookup,priority:2"`
	PeriodRef           string                                    `gorm:"type:varchar(20);not null;index:idx_ict_lookup,priority:3"`
	FromCompanyID       uuid.UUID                                 `gorm:"type:uuid;not null"`
	ToCompanyID         uuid.UUID                                 `gorm:"type:uuid;not null"`
	Type                consolidation.IntercompanyTransactionType `gorm:"type:varchar(30);not null"`
	Date                time.Time                                 `gorm:"not null"`
	Amount              decimal.Decimal                           `gorm:"type:decimal(18,4);not null"`
	FromAccountCode     string                                    `gorm:"type:varchar(50);not null"`
	ToAccountCode       string                                    `gorm:"type:varchar(50);not null"`
	MatchingStatus      consolidation.MatchingStatus              `gorm:"type:varchar(30);not null;default:'UNMATCHED'"`
	FromJournalEntryID  *uuid.UUID                                `gorm:"type:uuid"`
	ToJournalEntryID    *uuid.UUID                                `gorm:"type:uuid"`
	VarianceAmount      *decimal.Decimal                          `gorm:"type:decimal(18,4)"`
	VarianceExplanation string                                    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (IntercompanyTransactionModel) TableName() string {
	return "intercompany_transactions"
}

// ToDomain converts the staging row to a domain IntercompanyTransaction.
func (m *IntercompanyTransactionModel) ToDomain() consolidation.IntercompanyTransaction {
	return consolidation.IntercompanyTransaction{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		GroupID:             m.GroupID,
		FromCompanyID:       m.FromCompanyID,
		ToCompanyID:         m.ToCompanyID,
		Type:                m.Type,
		Date:                m.Date,
		Amount:              m.Amount,
		FromAccountCode:     m.FromAccountCode,
		ToAccountCode:       m.ToAccountCode,
		MatchingStatus:      m.MatchingStatus,
		FromJournalEntryID:  m.FromJournalEntryID,
		ToJournalEntryID:    m.ToJournalEntryID,
		VarianceAmount:      m.VarianceAmount,
		VarianceExplanation: m.VarianceExplanation,
	}
}

// IntercompanyTransactionModelFromDomain creates a staging row from a domain transaction.
func IntercompanyTransactionModelFromDomain(t *consolidation.IntercompanyTransaction, periodRef string) *IntercompanyTransactionModel {
	return &IntercompanyTransactionModel{
		BaseModel: BaseModel{
			ID:        t.ID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		TenantID:            t.TenantID,
		GroupID:             t.GroupID,
		PeriodRef:           periodRef,
		FromCompanyID:       t.FromCompanyID,
		ToCompanyID:         t.ToCompanyID,
		Type:                t.Type,
		Date:                t.Date,
		Amount:              t.Amount,
		FromAccountCode:     t.FromAccountCode,
		ToAccountCode:       t.ToAccountCode,
		MatchingStatus:      t.MatchingStatus,
		FromJournalEntryID:  t.FromJournalEntryID,
		ToJournalEntryID:    t.ToJournalEntryID,
		VarianceAmount:      t.VarianceAmount,
		VarianceExplanation: t.VarianceExplanation,
	}
}
