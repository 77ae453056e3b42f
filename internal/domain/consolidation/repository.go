package consolidation

import (
	"context"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
)

// GroupFilter defines filtering options for group queries
type GroupFilter struct {
	shared.Filter
	IsActive        *bool
	ParentCompanyID *uuid.UUID
}

// ConsolidationGroupRepository persists consolidation groups with their
// member rosters
type ConsolidationGroupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ConsolidationGroup, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ConsolidationGroup, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter GroupFilter) ([]ConsolidationGroup, error)
	Save(ctx context.Context, group *ConsolidationGroup) error
	SaveWithLock(ctx context.Context, group *ConsolidationGroup) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter GroupFilter) (int64, error)
}

// RuleFilter defines filtering options for elimination rule queries
type RuleFilter struct {
	shared.Filter
	GroupID  *uuid.UUID
	IsActive *bool
	Type     *EliminationType
}

// EliminationRuleRepository persists elimination rules
type EliminationRuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EliminationRule, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*EliminationRule, error)
	// FindActiveForGroup returns active rules ordered by ascending priority,
	// ties broken by rule ID.
	FindActiveForGroup(ctx context.Context, tenantID, groupID uuid.UUID) ([]EliminationRule, error)
	FindAllForGroup(ctx context.Context, tenantID, groupID uuid.UUID, filter RuleFilter) ([]EliminationRule, error)
	Save(ctx context.Context, rule *EliminationRule) error
	SaveAll(ctx context.Context, rules []*EliminationRule) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// RunFilter defines filtering options for run queries
type RunFilter struct {
	shared.Filter
	GroupID   *uuid.UUID
	PeriodRef *string
	Status    *RunStatus
}

// ConsolidationRunRepository persists consolidation runs. CreateExclusive
// carries the one-active-run-per-period invariant: the existence check and
// the insert happen atomically, so two concurrent initiations for the same
// (group, period) can never both succeed.
type ConsolidationRunRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ConsolidationRun, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ConsolidationRun, error)
	// FindActiveForPeriod returns the non-terminal run for (group, period), or
	// shared.ErrNotFound.
	FindActiveForPeriod(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) (*ConsolidationRun, error)
	// FindLatestCompleted returns the most recently finished Completed run for
	// a group.
	FindLatestCompleted(ctx context.Context, tenantID, groupID uuid.UUID) (*ConsolidationRun, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RunFilter) ([]ConsolidationRun, error)
	// CreateExclusive inserts the run if and only if no non-terminal run
	// exists for the same (group, period). Returns ErrRunExistsForPeriod
	// otherwise.
	CreateExclusive(ctx context.Context, run *ConsolidationRun) error
	Save(ctx context.Context, run *ConsolidationRun) error
	SaveWithLock(ctx context.Context, run *ConsolidationRun) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter RunFilter) (int64, error)
}

// TrialBalanceRepository persists run-scoped consolidated trial balances
type TrialBalanceRepository interface {
	FindByRunID(ctx context.Context, tenantID, runID uuid.UUID) (*ConsolidatedTrialBalance, error)
	Save(ctx context.Context, tb *ConsolidatedTrialBalance) error
	DeleteByRunID(ctx context.Context, tenantID, runID uuid.UUID) error
	// ExistsForRule reports whether any stored trial balance carries an
	// elimination posted by the given rule.
	ExistsForRule(ctx context.Context, tenantID, ruleID uuid.UUID) (bool, error)
}
