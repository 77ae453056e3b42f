package consolidation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/groupclose/backend/internal/domain/consolidation"
)

func newRuleService() (*RuleService, *mockRuleRepository, *mockGroupRepository, *mockTrialBalanceRepository) {
	ruleRepo := new(mockRuleRepository)
	groupRepo := new(mockGroupRepository)
	tbRepo := new(mockTrialBalanceRepository)
	return NewRuleService(ruleRepo, groupRepo, tbRepo), ruleRepo, groupRepo, tbRepo
}

func TestRuleService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates rule with selectors and conditions", func(t *testing.T) {
		svc, ruleRepo, groupRepo, _ := newRuleService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		ruleRepo.On("Save", ctx, mock.AnythingOfType("*consolidation.EliminationRule")).Return(nil)

		minimum := decimal.NewFromInt(500)
		resp, err := svc.Create(ctx, tenantID, group.ID, CreateRuleRequest{
			Name:            "Intercompany sales",
			Type:            "INTERCOMPANY_SALES",
			DebitAccountID:  uuid.New(),
			CreditAccountID: uuid.New(),
			Priority:        20,
			IsAutomatic:     true,
			Description:     "Nets group revenue against group cost of sales",
			SourceAccounts:  []AccountSelectorRequest{{Code: "40*"}},
			TriggerConditions: []TriggerConditionRequest{{
				Description:    "material sales only",
				SourceAccounts: []AccountSelectorRequest{{Code: "40*"}},
				MinimumAmount:  &minimum,
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "INTERCOMPANY_SALES", resp.Type)
		assert.Equal(t, 20, resp.Priority)
		assert.Len(t, resp.SourceAccounts, 1)
		assert.Len(t, resp.TriggerConditions, 1)
		ruleRepo.AssertExpectations(t)
	})

	t.Run("refuses rule on inactive group", func(t *testing.T) {
		svc, ruleRepo, groupRepo, _ := newRuleService()
		group := newActiveGroup(tenantID)
		require.NoError(t, group.Deactivate())
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)

		_, err := svc.Create(ctx, tenantID, group.ID, CreateRuleRequest{
			Name:            "Intercompany sales",
			Type:            "INTERCOMPANY_SALES",
			DebitAccountID:  uuid.New(),
			CreditAccountID: uuid.New(),
		})

		assert.ErrorIs(t, err, consolidation.ErrGroupInactive)
		ruleRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects identical debit and credit accounts", func(t *testing.T) {
		svc, _, groupRepo, _ := newRuleService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)

		accountID := uuid.New()
		_, err := svc.Create(ctx, tenantID, group.ID, CreateRuleRequest{
			Name:            "Broken rule",
			Type:            "INTERCOMPANY_SALES",
			DebitAccountID:  accountID,
			CreditAccountID: accountID,
		})

		require.Error(t, err)
	})
}

func TestRuleService_CreateStandardRuleSet(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("seeds four rules in priority order", func(t *testing.T) {
		svc, ruleRepo, groupRepo, _ := newRuleService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		ruleRepo.On("SaveAll", ctx, mock.AnythingOfType("[]*consolidation.EliminationRule")).Return(nil)

		responses, err := svc.CreateStandardRuleSet(ctx, tenantID, group.ID, StandardRuleSetRequest{
			ReceivableDebitAccountID:  uuid.New(),
			ReceivableCreditAccountID: uuid.New(),
			SalesDebitAccountID:       uuid.New(),
			SalesCreditAccountID:      uuid.New(),
			LoanDebitAccountID:        uuid.New(),
			LoanCreditAccountID:       uuid.New(),
			DividendDebitAccountID:    uuid.New(),
			DividendCreditAccountID:   uuid.New(),
		})

		require.NoError(t, err)
		require.Len(t, responses, 4)
		assert.Equal(t, "INTERCOMPANY_RECEIVABLE_PAYABLE", responses[0].Type)
		assert.Equal(t, 10, responses[0].Priority)
		assert.Equal(t, "INTERCOMPANY_SALES", responses[1].Type)
		assert.Equal(t, 20, responses[1].Priority)
		assert.Equal(t, "INTERCOMPANY_LOANS", responses[2].Type)
		assert.Equal(t, 30, responses[2].Priority)
		assert.Equal(t, "INTERCOMPANY_DIVIDENDS", responses[3].Type)
		assert.Equal(t, 40, responses[3].Priority)
		for _, r := range responses {
			assert.True(t, r.IsAutomatic)
			assert.True(t, r.IsActive)
		}
	})
}

func TestRuleService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("reprioritizes a rule", func(t *testing.T) {
		svc, ruleRepo, _, _ := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)
		ruleRepo.On("Save", ctx, rule).Return(nil)

		priority := 5
		resp, err := svc.Update(ctx, tenantID, rule.ID, UpdateRuleRequest{Priority: &priority})

		require.NoError(t, err)
		assert.Equal(t, 5, resp.Priority)
	})

	t.Run("edits name, posting pair and conditions in one request", func(t *testing.T) {
		svc, ruleRepo, _, _ := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)
		ruleRepo.On("Save", ctx, rule).Return(nil)

		name := "Intercompany loan netting"
		description := "Nets group loans receivable against loans payable"
		debit := uuid.New()
		credit := uuid.New()
		minimum := decimal.NewFromInt(1000)
		resp, err := svc.Update(ctx, tenantID, rule.ID, UpdateRuleRequest{
			Name:            &name,
			Description:     &description,
			DebitAccountID:  &debit,
			CreditAccountID: &credit,
			SourceAccounts:  []AccountSelectorRequest{{Code: "16*"}},
			TriggerConditions: []TriggerConditionRequest{{
				Description:    "material loans only",
				SourceAccounts: []AccountSelectorRequest{{Code: "16*"}},
				MinimumAmount:  &minimum,
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, name, resp.Name)
		assert.Equal(t, description, resp.Description)
		assert.Equal(t, debit, resp.DebitAccountID)
		assert.Equal(t, credit, resp.CreditAccountID)
		assert.Len(t, resp.SourceAccounts, 1)
		assert.Len(t, resp.TriggerConditions, 1)
	})

	t.Run("rejects posting pair collapsing to one account", func(t *testing.T) {
		svc, ruleRepo, _, _ := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)

		debit := rule.CreditAccountID
		_, err := svc.Update(ctx, tenantID, rule.ID, UpdateRuleRequest{DebitAccountID: &debit})

		require.Error(t, err)
		ruleRepo.AssertNotCalled(t, "Save")
	})

	t.Run("reprioritizes even when a completed run applied the rule", func(t *testing.T) {
		// Runs snapshot rule data at initiate, so edits never touch history.
		svc, ruleRepo, _, tbRepo := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)
		ruleRepo.On("Save", ctx, rule).Return(nil)

		priority := 5
		resp, err := svc.Update(ctx, tenantID, rule.ID, UpdateRuleRequest{Priority: &priority})

		require.NoError(t, err)
		assert.Equal(t, 5, resp.Priority)
		tbRepo.AssertNotCalled(t, "ExistsForRule")
	})

	t.Run("deactivates a rule", func(t *testing.T) {
		svc, ruleRepo, _, _ := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)
		ruleRepo.On("Save", ctx, rule).Return(nil)

		active := false
		resp, err := svc.Update(ctx, tenantID, rule.ID, UpdateRuleRequest{IsActive: &active})

		require.NoError(t, err)
		assert.False(t, resp.IsActive)
	})
}

func TestRuleService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes unreferenced rule", func(t *testing.T) {
		svc, ruleRepo, _, tbRepo := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)
		tbRepo.On("ExistsForRule", ctx, tenantID, rule.ID).Return(false, nil)
		ruleRepo.On("Delete", ctx, tenantID, rule.ID).Return(nil)

		err := svc.Delete(ctx, tenantID, rule.ID)

		require.NoError(t, err)
		ruleRepo.AssertExpectations(t)
	})

	t.Run("refuses to delete a referenced rule", func(t *testing.T) {
		svc, ruleRepo, _, tbRepo := newRuleService()
		rule := newRuleForGroup(tenantID, uuid.New())
		ruleRepo.On("FindByIDForTenant", ctx, tenantID, rule.ID).Return(rule, nil)
		tbRepo.On("ExistsForRule", ctx, tenantID, rule.ID).Return(true, nil)

		err := svc.Delete(ctx, tenantID, rule.ID)

		assert.ErrorIs(t, err, consolidation.ErrRuleReferencedByRun)
		ruleRepo.AssertNotCalled(t, "Delete")
	})
}
