package consolidation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

// Mock implementations

type mockGroupRepository struct {
	mock.Mock
}

func (m *mockGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.ConsolidationGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationGroup), args.Error(1)
}

func (m *mockGroupRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.ConsolidationGroup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationGroup), args.Error(1)
}

func (m *mockGroupRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.GroupFilter) ([]consolidation.ConsolidationGroup, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.ConsolidationGroup), args.Error(1)
}

func (m *mockGroupRepository) Save(ctx context.Context, group *consolidation.ConsolidationGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *mockGroupRepository) SaveWithLock(ctx context.Context, group *consolidation.ConsolidationGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *mockGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *mockGroupRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.GroupFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockRuleRepository struct {
	mock.Mock
}

func (m *mockRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.EliminationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.EliminationRule), args.Error(1)
}

func (m *mockRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.EliminationRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.EliminationRule), args.Error(1)
}

func (m *mockRuleRepository) FindActiveForGroup(ctx context.Context, tenantID, groupID uuid.UUID) ([]consolidation.EliminationRule, error) {
	args := m.Called(ctx, tenantID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.EliminationRule), args.Error(1)
}

func (m *mockRuleRepository) FindAllForGroup(ctx context.Context, tenantID, groupID uuid.UUID, filter consolidation.RuleFilter) ([]consolidation.EliminationRule, error) {
	args := m.Called(ctx, tenantID, groupID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.EliminationRule), args.Error(1)
}

func (m *mockRuleRepository) Save(ctx context.Context, rule *consolidation.EliminationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *mockRuleRepository) SaveAll(ctx context.Context, rules []*consolidation.EliminationRule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *mockRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type mockRunRepository struct {
	mock.Mock
}

func (m *mockRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *mockRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *mockRunRepository) FindActiveForPeriod(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, groupID, periodRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *mockRunRepository) FindLatestCompleted(ctx context.Context, tenantID, groupID uuid.UUID) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *mockRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.RunFilter) ([]consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.ConsolidationRun), args.Error(1)
}

func (m *mockRunRepository) CreateExclusive(ctx context.Context, run *consolidation.ConsolidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunRepository) Save(ctx context.Context, run *consolidation.ConsolidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunRepository) SaveWithLock(ctx context.Context, run *consolidation.ConsolidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *mockRunRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.RunFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockTrialBalanceRepository struct {
	mock.Mock
}

func (m *mockTrialBalanceRepository) FindByRunID(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.ConsolidatedTrialBalance, error) {
	args := m.Called(ctx, tenantID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidatedTrialBalance), args.Error(1)
}

func (m *mockTrialBalanceRepository) Save(ctx context.Context, tb *consolidation.ConsolidatedTrialBalance) error {
	args := m.Called(ctx, tb)
	return args.Error(0)
}

func (m *mockTrialBalanceRepository) DeleteByRunID(ctx context.Context, tenantID, runID uuid.UUID) error {
	args := m.Called(ctx, tenantID, runID)
	return args.Error(0)
}

func (m *mockTrialBalanceRepository) ExistsForRule(ctx context.Context, tenantID, ruleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, ruleID)
	return args.Bool(0), args.Error(1)
}

type mockRateResolver struct {
	mock.Mock
}

func (m *mockRateResolver) Resolve(ctx context.Context, from, to valueobject.Currency, date time.Time, class consolidation.RateClass) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, date, class)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockBalanceProvider struct {
	mock.Mock
}

func (m *mockBalanceProvider) FetchTrialBalance(ctx context.Context, tenantID, companyID uuid.UUID, asOfDate time.Time) ([]consolidation.AccountBalance, error) {
	args := m.Called(ctx, tenantID, companyID, asOfDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.AccountBalance), args.Error(1)
}

type mockTransactionProvider struct {
	mock.Mock
}

func (m *mockTransactionProvider) FetchTransactions(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) ([]consolidation.IntercompanyTransaction, error) {
	args := m.Called(ctx, tenantID, groupID, periodRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.IntercompanyTransaction), args.Error(1)
}

// Shared fixtures

func newActiveGroup(tenantID uuid.UUID) *consolidation.ConsolidationGroup {
	group, err := consolidation.NewConsolidationGroup(
		tenantID, "Nordic Holdings", valueobject.Currency("EUR"),
		consolidation.MethodFull, uuid.New(),
	)
	if err != nil {
		panic(err)
	}
	return group
}

func newRuleForGroup(tenantID, groupID uuid.UUID) *consolidation.EliminationRule {
	rule, err := consolidation.NewEliminationRule(
		tenantID, groupID, "Intercompany sales",
		consolidation.EliminationSales,
		uuid.New(), uuid.New(), 20, true,
	)
	if err != nil {
		panic(err)
	}
	return rule
}
