package consolidation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
)

// RunService handles consolidation run operations. Pipeline semantics live in
// the domain orchestrator; this service maps requests, dispatches execution
// and exposes run queries.
type RunService struct {
	orchestrator *consolidation.Orchestrator
	runRepo      consolidation.ConsolidationRunRepository
	tbRepo       consolidation.TrialBalanceRepository
	logger       *zap.Logger
}

// NewRunService creates a new RunService
func NewRunService(
	orchestrator *consolidation.Orchestrator,
	runRepo consolidation.ConsolidationRunRepository,
	tbRepo consolidation.TrialBalanceRepository,
	logger *zap.Logger,
) *RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunService{
		orchestrator: orchestrator,
		runRepo:      runRepo,
		tbRepo:       tbRepo,
		logger:       logger,
	}
}

// Initiate creates a Pending run for the requested group and period
func (s *RunService) Initiate(ctx context.Context, tenantID, initiatedBy uuid.UUID, req InitiateRunRequest) (*RunResponse, error) {
	run, err := s.orchestrator.Initiate(ctx, tenantID, req.GroupID, req.PeriodRef, req.AsOfDate, initiatedBy, consolidation.RunFlags{
		SkipValidation:                 req.SkipValidation,
		ContinueOnWarnings:             req.ContinueOnWarnings,
		IncludeEquityMethodInvestments: req.IncludeEquityMethodInvestments,
		ForceRegeneration:              req.ForceRegeneration,
	})
	if err != nil {
		return nil, err
	}
	return ToRunResponse(run), nil
}

// Execute drives a pending run through the pipeline to a terminal state. The
// run records its own failure; the returned error reflects the pipeline
// outcome and the response carries the final run state.
func (s *RunService) Execute(ctx context.Context, tenantID, runID uuid.UUID) (*RunResponse, error) {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	execErr := s.orchestrator.Execute(ctx, run.ID)
	if execErr != nil {
		s.logger.Warn("consolidation run did not complete",
			zap.String("run_id", run.ID.String()),
			zap.Error(execErr))
	}

	run, err = s.runRepo.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return ToRunResponse(run), execErr
}

// Cancel stops a run. Pending runs cancel immediately; in-progress runs are
// flagged and stop at the next step boundary.
func (s *RunService) Cancel(ctx context.Context, tenantID, runID uuid.UUID) (*RunResponse, error) {
	run, err := s.orchestrator.Cancel(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return ToRunResponse(run), nil
}

// GetByID retrieves a run by ID
func (s *RunService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RunResponse, error) {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToRunResponse(run), nil
}

// List retrieves runs with pagination
func (s *RunService) List(ctx context.Context, tenantID uuid.UUID, filter RunListFilter) (*shared.Paginated[RunResponse], error) {
	domainFilter := consolidation.RunFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
		GroupID: filter.GroupID,
	}
	if filter.PeriodRef != "" {
		domainFilter.PeriodRef = &filter.PeriodRef
	}
	if filter.Status != "" {
		status := consolidation.RunStatus(filter.Status)
		domainFilter.Status = &status
	}

	runs, err := s.runRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.runRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]RunResponse, len(runs))
	for i := range runs {
		responses[i] = *ToRunResponse(&runs[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Filter.Page, domainFilter.Filter.PageSize)
	return &result, nil
}

// GetLatestCompleted retrieves the most recently finished completed run for
// a group
func (s *RunService) GetLatestCompleted(ctx context.Context, tenantID, groupID uuid.UUID) (*RunResponse, error) {
	run, err := s.runRepo.FindLatestCompleted(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}
	return ToRunResponse(run), nil
}

// GetTrialBalance retrieves the consolidated trial balance a run produced
func (s *RunService) GetTrialBalance(ctx context.Context, tenantID, runID uuid.UUID) (*TrialBalanceResponse, error) {
	if _, err := s.runRepo.FindByIDForTenant(ctx, tenantID, runID); err != nil {
		return nil, err
	}
	tb, err := s.tbRepo.FindByRunID(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	return ToTrialBalanceResponse(tb), nil
}

// Delete removes a pending or failed run together with any partial trial
// balance. Terminal completed and cancelled runs are retained as the audit
// trail.
func (s *RunService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	run, err := s.runRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !run.IsDeletable() {
		return consolidation.ErrRunNotDeletable
	}

	if err := s.tbRepo.DeleteByRunID(ctx, tenantID, run.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	return s.runRepo.Delete(ctx, tenantID, id)
}
