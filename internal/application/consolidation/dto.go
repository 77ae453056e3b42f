package consolidation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groupclose/backend/internal/domain/consolidation"
)

// CreateGroupRequest represents a request to create a consolidation group
type CreateGroupRequest struct {
	Name              string    `json:"name" binding:"required,min=1,max=100"`
	ReportingCurrency string    `json:"reporting_currency" binding:"required,len=3"`
	DefaultMethod     string    `json:"default_method" binding:"required,oneof=FULL PROPORTIONATE EQUITY"`
	ParentCompanyID   uuid.UUID `json:"parent_company_id" binding:"required"`
}

// UpdateGroupRequest represents a request to rename a consolidation group
type UpdateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddMemberRequest represents a request to add a company to a group
type AddMemberRequest struct {
	CompanyID           uuid.UUID       `json:"company_id" binding:"required"`
	CompanyName         string          `json:"company_name" binding:"required,min=1,max=200"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage" binding:"required"`
	Method              string          `json:"method" binding:"required,oneof=FULL PROPORTIONATE EQUITY"`
	FunctionalCurrency  string          `json:"functional_currency" binding:"required,len=3"`
	AcquisitionDate     *time.Time      `json:"acquisition_date"`
}

// UpdateMemberRequest represents a request to change a member's stake or method
type UpdateMemberRequest struct {
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage" binding:"required"`
	Method              string          `json:"method" binding:"required,oneof=FULL PROPORTIONATE EQUITY"`
}

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	ID                  uuid.UUID       `json:"id"`
	CompanyID           uuid.UUID       `json:"company_id"`
	CompanyName         string          `json:"company_name"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	Method              string          `json:"method"`
	FunctionalCurrency  string          `json:"functional_currency"`
	AcquisitionDate     *time.Time      `json:"acquisition_date,omitempty"`
	AddedAt             time.Time       `json:"added_at"`
}

// GroupResponse represents a consolidation group in API responses
type GroupResponse struct {
	ID                uuid.UUID        `json:"id"`
	TenantID          uuid.UUID        `json:"tenant_id"`
	Name              string           `json:"name"`
	ReportingCurrency string           `json:"reporting_currency"`
	DefaultMethod     string           `json:"default_method"`
	ParentCompanyID   uuid.UUID        `json:"parent_company_id"`
	IsActive          bool             `json:"is_active"`
	Members           []MemberResponse `json:"members"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int              `json:"version"`
}

// GroupListFilter represents filter options for group list queries
type GroupListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=200"`
}

// ToGroupResponse converts a domain group to a response DTO
func ToGroupResponse(g *consolidation.ConsolidationGroup) *GroupResponse {
	members := make([]MemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = MemberResponse{
			ID:                  m.ID,
			CompanyID:           m.CompanyID,
			CompanyName:         m.CompanyName,
			OwnershipPercentage: m.OwnershipPercentage.Percent(),
			Method:              m.Method.String(),
			FunctionalCurrency:  m.FunctionalCurrency.String(),
			AcquisitionDate:     m.AcquisitionDate,
			AddedAt:             m.AddedAt,
		}
	}
	return &GroupResponse{
		ID:                g.ID,
		TenantID:          g.TenantID,
		Name:              g.Name,
		ReportingCurrency: g.ReportingCurrency.String(),
		DefaultMethod:     g.DefaultMethod.String(),
		ParentCompanyID:   g.ParentCompanyID,
		IsActive:          g.IsActive,
		Members:           members,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
		Version:           g.Version,
	}
}

// AccountSelectorRequest represents one account selector in rule requests
type AccountSelectorRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=20"`
	CompanyID *uuid.UUID `json:"company_id"`
}

// TriggerConditionRequest represents one trigger condition in rule requests
type TriggerConditionRequest struct {
	Description    string                   `json:"description" binding:"max=200"`
	SourceAccounts []AccountSelectorRequest `json:"source_accounts" binding:"required,min=1,dive"`
	MinimumAmount  *decimal.Decimal         `json:"minimum_amount"`
}

// CreateRuleRequest represents a request to create an elimination rule
type CreateRuleRequest struct {
	Name              string                    `json:"name" binding:"required,min=1,max=100"`
	Type              string                    `json:"type" binding:"required"`
	DebitAccountID    uuid.UUID                 `json:"debit_account_id" binding:"required"`
	CreditAccountID   uuid.UUID                 `json:"credit_account_id" binding:"required"`
	Priority          int                       `json:"priority" binding:"min=0"`
	IsAutomatic       bool                      `json:"is_automatic"`
	Description       string                    `json:"description" binding:"max=500"`
	SourceAccounts    []AccountSelectorRequest  `json:"source_accounts" binding:"omitempty,dive"`
	TargetAccounts    []AccountSelectorRequest  `json:"target_accounts" binding:"omitempty,dive"`
	TriggerConditions []TriggerConditionRequest `json:"trigger_conditions" binding:"omitempty,dive"`
}

// UpdateRuleRequest represents a request to update an elimination rule.
// Absent fields are left unchanged; selector and condition lists replace the
// stored ones when present. Completed runs are unaffected because they
// snapshot rule data at initiate time.
type UpdateRuleRequest struct {
	Name              *string                   `json:"name" binding:"omitempty,min=1,max=100"`
	Description       *string                   `json:"description" binding:"omitempty,max=500"`
	DebitAccountID    *uuid.UUID                `json:"debit_account_id"`
	CreditAccountID   *uuid.UUID                `json:"credit_account_id"`
	Priority          *int                      `json:"priority" binding:"omitempty,min=0"`
	IsActive          *bool                     `json:"is_active"`
	SourceAccounts    []AccountSelectorRequest  `json:"source_accounts" binding:"omitempty,dive"`
	TargetAccounts    []AccountSelectorRequest  `json:"target_accounts" binding:"omitempty,dive"`
	TriggerConditions []TriggerConditionRequest `json:"trigger_conditions" binding:"omitempty,dive"`
}

// StandardRuleSetRequest represents a request to create the standard rules
// for a group
type StandardRuleSetRequest struct {
	ReceivableDebitAccountID  uuid.UUID `json:"receivable_debit_account_id" binding:"required"`
	ReceivableCreditAccountID uuid.UUID `json:"receivable_credit_account_id" binding:"required"`
	SalesDebitAccountID       uuid.UUID `json:"sales_debit_account_id" binding:"required"`
	SalesCreditAccountID      uuid.UUID `json:"sales_credit_account_id" binding:"required"`
	LoanDebitAccountID        uuid.UUID `json:"loan_debit_account_id" binding:"required"`
	LoanCreditAccountID       uuid.UUID `json:"loan_credit_account_id" binding:"required"`
	DividendDebitAccountID    uuid.UUID `json:"dividend_debit_account_id" binding:"required"`
	DividendCreditAccountID   uuid.UUID `json:"dividend_credit_account_id" binding:"required"`
}

// RuleResponse represents an elimination rule in API responses
type RuleResponse struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	GroupID         uuid.UUID `json:"group_id"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	DebitAccountID  uuid.UUID `json:"debit_account_id"`
	CreditAccountID uuid.UUID `json:"credit_account_id"`
	IsAutomatic     bool      `json:"is_automatic"`
	Priority        int       `json:"priority"`
	IsActive        bool      `json:"is_active"`
	Description     string    `json:"description,omitempty"`

	SourceAccounts    []AccountSelectorRequest  `json:"source_accounts,omitempty"`
	TriggerConditions []TriggerConditionRequest `json:"trigger_conditions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToRuleResponse converts a domain rule to a response DTO
func ToRuleResponse(r *consolidation.EliminationRule) *RuleResponse {
	resp := &RuleResponse{
		ID:              r.ID,
		TenantID:        r.TenantID,
		GroupID:         r.GroupID,
		Name:            r.Name,
		Type:            r.Type.String(),
		DebitAccountID:  r.DebitAccountID,
		CreditAccountID: r.CreditAccountID,
		IsAutomatic:     r.IsAutomatic,
		Priority:        r.Priority,
		IsActive:        r.IsActive,
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Version:         r.Version,
	}
	for _, sel := range r.SourceAccounts {
		resp.SourceAccounts = append(resp.SourceAccounts, AccountSelectorRequest{
			Code: sel.Code, CompanyID: sel.CompanyID,
		})
	}
	for _, cond := range r.TriggerConditions {
		cr := TriggerConditionRequest{
			Description:   cond.Description,
			MinimumAmount: cond.MinimumAmount,
		}
		for _, sel := range cond.SourceAccounts {
			cr.SourceAccounts = append(cr.SourceAccounts, AccountSelectorRequest{
				Code: sel.Code, CompanyID: sel.CompanyID,
			})
		}
		resp.TriggerConditions = append(resp.TriggerConditions, cr)
	}
	return resp
}

// InitiateRunRequest represents a request to start a consolidation run
type InitiateRunRequest struct {
	GroupID   uuid.UUID `json:"group_id" binding:"required"`
	PeriodRef string    `json:"period_ref" binding:"required,min=1,max=20"`
	AsOfDate  time.Time `json:"as_of_date" binding:"required"`

	SkipValidation                 bool `json:"skip_validation"`
	ContinueOnWarnings             bool `json:"continue_on_warnings"`
	IncludeEquityMethodInvestments bool `json:"include_equity_method_investments"`
	ForceRegeneration              bool `json:"force_regeneration"`
}

// StepResponse represents one pipeline step's status
type StepResponse struct {
	Step        string     `json:"step"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// RunResponse represents a consolidation run in API responses
type RunResponse struct {
	ID              uuid.UUID      `json:"id"`
	TenantID        uuid.UUID      `json:"tenant_id"`
	GroupID         uuid.UUID      `json:"group_id"`
	PeriodRef       string         `json:"period_ref"`
	AsOfDate        time.Time      `json:"as_of_date"`
	Status          string         `json:"status"`
	Steps           []StepResponse `json:"steps"`
	InitiatedBy     uuid.UUID      `json:"initiated_by"`
	Warnings        []string       `json:"warnings,omitempty"`
	FailureStep     string         `json:"failure_step,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	CancelRequested bool           `json:"cancel_requested"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	FinishedAt      *time.Time     `json:"finished_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	Version         int            `json:"version"`
}

// RunListFilter represents filter options for run list queries
type RunListFilter struct {
	GroupID   *uuid.UUID `form:"group_id"`
	PeriodRef string     `form:"period_ref"`
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED FAILED CANCELLED"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=200"`
}

// ToRunResponse converts a domain run to a response DTO
func ToRunResponse(r *consolidation.ConsolidationRun) *RunResponse {
	steps := make([]StepResponse, len(r.Steps))
	for i, s := range r.Steps {
		steps[i] = StepResponse{
			Step:        s.Step.String(),
			Status:      s.Status.String(),
			StartedAt:   s.StartedAt,
			CompletedAt: s.CompletedAt,
			Error:       s.Error,
		}
	}
	resp := &RunResponse{
		ID:              r.ID,
		TenantID:        r.TenantID,
		GroupID:         r.GroupID,
		PeriodRef:       r.PeriodRef,
		AsOfDate:        r.AsOfDate,
		Status:          r.Status.String(),
		Steps:           steps,
		InitiatedBy:     r.InitiatedBy,
		Warnings:        r.Warnings,
		CancelRequested: r.CancelRequested,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		CreatedAt:       r.CreatedAt,
		Version:         r.Version,
	}
	if r.FailureStep != nil {
		resp.FailureStep = r.FailureStep.String()
	}
	resp.FailureReason = r.FailureReason
	return resp
}

// TrialBalanceLineResponse represents one consolidated trial balance line
type TrialBalanceLineResponse struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ParentShare decimal.Decimal `json:"parent_share"`
	NCIShare    decimal.Decimal `json:"nci_share"`
}

// EliminationEntryResponse represents one applied elimination posting
type EliminationEntryResponse struct {
	RuleID          uuid.UUID       `json:"rule_id"`
	RuleName        string          `json:"rule_name"`
	Type            string          `json:"type"`
	Priority        int             `json:"priority"`
	DebitAccountID  uuid.UUID       `json:"debit_account_id"`
	CreditAccountID uuid.UUID       `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
}

// TrialBalanceResponse represents a consolidated trial balance
type TrialBalanceResponse struct {
	RunID               uuid.UUID                  `json:"run_id"`
	GroupID             uuid.UUID                  `json:"group_id"`
	PeriodRef           string                     `json:"period_ref"`
	AsOfDate            time.Time                  `json:"as_of_date"`
	ReportingCurrency   string                     `json:"reporting_currency"`
	Lines               []TrialBalanceLineResponse `json:"lines"`
	Eliminations        []EliminationEntryResponse `json:"eliminations"`
	PendingEliminations []EliminationEntryResponse `json:"pending_eliminations,omitempty"`
	NetIncomeParent     decimal.Decimal            `json:"net_income_parent"`
	NetIncomeNCI        decimal.Decimal            `json:"net_income_nci"`
}

// ToTrialBalanceResponse converts a domain trial balance to a response DTO
func ToTrialBalanceResponse(tb *consolidation.ConsolidatedTrialBalance) *TrialBalanceResponse {
	resp := &TrialBalanceResponse{
		RunID:             tb.RunID,
		GroupID:           tb.GroupID,
		PeriodRef:         tb.PeriodRef,
		AsOfDate:          tb.AsOfDate,
		ReportingCurrency: tb.ReportingCurrency.String(),
		Lines:             make([]TrialBalanceLineResponse, len(tb.Lines)),
		Eliminations:      make([]EliminationEntryResponse, len(tb.Eliminations)),
		NetIncomeParent:   tb.NetIncomeParent,
		NetIncomeNCI:      tb.NetIncomeNCI,
	}
	for i, line := range tb.Lines {
		resp.Lines[i] = TrialBalanceLineResponse{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Category:    line.Category.String(),
			Amount:      line.Amount,
			ParentShare: line.ParentShare,
			NCIShare:    line.NCIShare,
		}
	}
	for i, e := range tb.Eliminations {
		resp.Eliminations[i] = toEliminationEntryResponse(e)
	}
	for _, e := range tb.PendingEliminations {
		resp.PendingEliminations = append(resp.PendingEliminations, toEliminationEntryResponse(e))
	}
	return resp
}

func toEliminationEntryResponse(e consolidation.AppliedElimination) EliminationEntryResponse {
	return EliminationEntryResponse{
		RuleID:          e.RuleID,
		RuleName:        e.RuleName,
		Type:            e.Type.String(),
		Priority:        e.Priority,
		DebitAccountID:  e.DebitAccountID,
		CreditAccountID: e.CreditAccountID,
		Amount:          e.Amount,
		Description:     e.Description,
	}
}
