package consolidation

import (
	"context"

	"github.com/google/uuid"

	"github.com/groupclose/backend/internal/domain/consolidation"
)

// ReportPackage bundles the four consolidated statements for a run
type ReportPackage struct {
	RunID             uuid.UUID                          `json:"run_id"`
	GroupID           uuid.UUID                          `json:"group_id"`
	PeriodRef         string                             `json:"period_ref"`
	ReportingCurrency string                             `json:"reporting_currency"`
	BalanceSheet      *consolidation.BalanceSheet        `json:"balance_sheet"`
	IncomeStatement   *consolidation.IncomeStatement     `json:"income_statement"`
	CashFlowStatement *consolidation.CashFlowStatement   `json:"cash_flow_statement"`
	EquityStatement   *consolidation.EquityStatement     `json:"equity_statement"`
}

// ReportService assembles consolidated statements from completed runs
type ReportService struct {
	runRepo   consolidation.ConsolidationRunRepository
	tbRepo    consolidation.TrialBalanceRepository
	assembler *consolidation.ReportAssembler
}

// NewReportService creates a new ReportService
func NewReportService(
	runRepo consolidation.ConsolidationRunRepository,
	tbRepo consolidation.TrialBalanceRepository,
	assembler *consolidation.ReportAssembler,
) *ReportService {
	return &ReportService{
		runRepo:   runRepo,
		tbRepo:    tbRepo,
		assembler: assembler,
	}
}

func (s *ReportService) load(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.ConsolidationRun, *consolidation.ConsolidatedTrialBalance, error) {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, nil, err
	}
	if run.Status != consolidation.RunStatusCompleted {
		return nil, nil, consolidation.ErrRunNotCompleted
	}
	tb, err := s.tbRepo.FindByRunID(ctx, tenantID, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, tb, nil
}

// GetBalanceSheet assembles the consolidated balance sheet for a run
func (s *ReportService) GetBalanceSheet(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.BalanceSheet, error) {
	run, tb, err := s.load(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return s.assembler.AssembleBalanceSheet(run, tb)
}

// GetIncomeStatement assembles the consolidated income statement for a run
func (s *ReportService) GetIncomeStatement(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.IncomeStatement, error) {
	run, tb, err := s.load(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return s.assembler.AssembleIncomeStatement(run, tb)
}

// GetCashFlowStatement assembles the consolidated cash flow statement for a run
func (s *ReportService) GetCashFlowStatement(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.CashFlowStatement, error) {
	run, tb, err := s.load(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return s.assembler.AssembleCashFlowStatement(run, tb)
}

// GetEquityStatement assembles the consolidated statement of changes in
// equity for a run
func (s *ReportService) GetEquityStatement(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.EquityStatement, error) {
	run, tb, err := s.load(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return s.assembler.AssembleEquityStatement(run, tb)
}

// GetReportPackage assembles all four statements for a run in one call
func (s *ReportService) GetReportPackage(ctx context.Context, tenantID, runID uuid.UUID) (*ReportPackage, error) {
	run, tb, err := s.load(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	bs, err := s.assembler.AssembleBalanceSheet(run, tb)
	if err != nil {
		return nil, err
	}
	is, err := s.assembler.AssembleIncomeStatement(run, tb)
	if err != nil {
		return nil, err
	}
	cf, err := s.assembler.AssembleCashFlowStatement(run, tb)
	if err != nil {
		return nil, err
	}
	eq, err := s.assembler.AssembleEquityStatement(run, tb)
	if err != nil {
		return nil, err
	}

	return &ReportPackage{
		RunID:             run.ID,
		GroupID:           run.GroupID,
		PeriodRef:         run.PeriodRef,
		ReportingCurrency: tb.ReportingCurrency.String(),
		BalanceSheet:      bs,
		IncomeStatement:   is,
		CashFlowStatement: cf,
		EquityStatement:   eq,
	}, nil
}
