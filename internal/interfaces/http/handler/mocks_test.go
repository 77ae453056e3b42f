package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

// MockGroupRepository implements consolidation.ConsolidationGroupRepository for testing
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.ConsolidationGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationGroup), args.Error(1)
}

func (m *MockGroupRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.ConsolidationGroup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationGroup), args.Error(1)
}

func (m *MockGroupRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.GroupFilter) ([]consolidation.ConsolidationGroup, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.ConsolidationGroup), args.Error(1)
}

func (m *MockGroupRepository) Save(ctx context.Context, group *consolidation.ConsolidationGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) SaveWithLock(ctx context.Context, group *consolidation.ConsolidationGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockGroupRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.GroupFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockRuleRepository implements consolidation.EliminationRuleRepository for testing
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.EliminationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.EliminationRule), args.Error(1)
}

func (m *MockRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.EliminationRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.EliminationRule), args.Error(1)
}

func (m *MockRuleRepository) FindActiveForGroup(ctx context.Context, tenantID, groupID uuid.UUID) ([]consolidation.EliminationRule, error) {
	args := m.Called(ctx, tenantID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.EliminationRule), args.Error(1)
}

func (m *MockRuleRepository) FindAllForGroup(ctx context.Context, tenantID, groupID uuid.UUID, filter consolidation.RuleFilter) ([]consolidation.EliminationRule, error) {
	args := m.Called(ctx, tenantID, groupID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.EliminationRule), args.Error(1)
}

func (m *MockRuleRepository) Save(ctx context.Context, rule *consolidation.EliminationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) SaveAll(ctx context.Context, rules []*consolidation.EliminationRule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockRunRepository implements consolidation.ConsolidationRunRepository for testing
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *MockRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *MockRunRepository) FindActiveForPeriod(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, groupID, periodRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *MockRunRepository) FindLatestCompleted(ctx context.Context, tenantID, groupID uuid.UUID) (*consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidationRun), args.Error(1)
}

func (m *MockRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.RunFilter) ([]consolidation.ConsolidationRun, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.ConsolidationRun), args.Error(1)
}

func (m *MockRunRepository) CreateExclusive(ctx context.Context, run *consolidation.ConsolidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Save(ctx context.Context, run *consolidation.ConsolidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) SaveWithLock(ctx context.Context, run *consolidation.ConsolidationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockRunRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.RunFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockTrialBalanceRepository implements consolidation.TrialBalanceRepository for testing
type MockTrialBalanceRepository struct {
	mock.Mock
}

func (m *MockTrialBalanceRepository) FindByRunID(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.ConsolidatedTrialBalance, error) {
	args := m.Called(ctx, tenantID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consolidation.ConsolidatedTrialBalance), args.Error(1)
}

func (m *MockTrialBalanceRepository) Save(ctx context.Context, tb *consolidation.ConsolidatedTrialBalance) error {
	args := m.Called(ctx, tb)
	return args.Error(0)
}

func (m *MockTrialBalanceRepository) DeleteByRunID(ctx context.Context, tenantID, runID uuid.UUID) error {
	args := m.Called(ctx, tenantID, runID)
	return args.Error(0)
}

func (m *MockTrialBalanceRepository) ExistsForRule(ctx context.Context, tenantID, ruleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, ruleID)
	return args.Bool(0), args.Error(1)
}

// MockRateResolver implements consolidation.RateResolver for testing
type MockRateResolver struct {
	mock.Mock
}

func (m *MockRateResolver) Resolve(ctx context.Context, from, to valueobject.Currency, date time.Time, class consolidation.RateClass) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to, date, class)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockBalanceProvider implements consolidation.TrialBalanceProvider for testing
type MockBalanceProvider struct {
	mock.Mock
}

func (m *MockBalanceProvider) FetchTrialBalance(ctx context.Context, tenantID, companyID uuid.UUID, asOfDate time.Time) ([]consolidation.AccountBalance, error) {
	args := m.Called(ctx, tenantID, companyID, asOfDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.AccountBalance), args.Error(1)
}

// MockTransactionProvider implements consolidation.IntercompanyTransactionProvider for testing
type MockTransactionProvider struct {
	mock.Mock
}

func (m *MockTransactionProvider) FetchTransactions(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) ([]consolidation.IntercompanyTransaction, error) {
	args := m.Called(ctx, tenantID, groupID, periodRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]consolidation.IntercompanyTransaction), args.Error(1)
}

// Shared fixtures

var testTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newGroupService(groupRepo *MockGroupRepository, runRepo *MockRunRepository) *consolidationapp.GroupService {
	return consolidationapp.NewGroupService(groupRepo, runRepo)
}

func newRunService(
	groupRepo *MockGroupRepository,
	ruleRepo *MockRuleRepository,
	runRepo *MockRunRepository,
	tbRepo *MockTrialBalanceRepository,
) *consolidationapp.RunService {
	orchestrator := consolidation.NewOrchestrator(
		groupRepo, ruleRepo, runRepo, tbRepo,
		new(MockRateResolver), new(MockBalanceProvider), new(MockTransactionProvider),
	)
	return consolidationapp.NewRunService(orchestrator, runRepo, tbRepo, zap.NewNop())
}

func newPendingRun(tenantID, groupID uuid.UUID) *consolidation.ConsolidationRun {
	run, err := consolidation.NewConsolidationRun(
		tenantID, groupID, "2025-Q4",
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		uuid.New(), consolidation.RunFlags{},
	)
	if err != nil {
		panic(err)
	}
	return run
}

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
