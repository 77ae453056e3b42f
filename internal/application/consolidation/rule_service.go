package consolidation

import (
	"context"

	"github.com/google/uuid"

	"github.com/groupclose/backend/internal/domain/consolidation"
)

// RuleService handles elimination rule operations
type RuleService struct {
	ruleRepo  consolidation.EliminationRuleRepository
	groupRepo consolidation.ConsolidationGroupRepository
	tbRepo    consolidation.TrialBalanceRepository
}

// NewRuleService creates a new RuleService
func NewRuleService(
	ruleRepo consolidation.EliminationRuleRepository,
	groupRepo consolidation.ConsolidationGroupRepository,
	tbRepo consolidation.TrialBalanceRepository,
) *RuleService {
	return &RuleService{
		ruleRepo:  ruleRepo,
		groupRepo: groupRepo,
		tbRepo:    tbRepo,
	}
}

// Create creates a new elimination rule for a group
func (s *RuleService) Create(ctx context.Context, tenantID, groupID uuid.UUID, req CreateRuleRequest) (*RuleResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, consolidation.ErrGroupInactive
	}

	rule, err := consolidation.NewEliminationRule(
		tenantID,
		groupID,
		req.Name,
		consolidation.EliminationType(req.Type),
		req.DebitAccountID,
		req.CreditAccountID,
		req.Priority,
		req.IsAutomatic,
	)
	if err != nil {
		return nil, err
	}

	rule.Description = req.Description

	if len(req.SourceAccounts) > 0 || len(req.TargetAccounts) > 0 {
		rule.SetAccounts(toAccountSelectors(req.SourceAccounts), toAccountSelectors(req.TargetAccounts))
	}
	for _, cond := range req.TriggerConditions {
		if err := rule.AddTriggerCondition(cond.Description, toAccountSelectors(cond.SourceAccounts), cond.MinimumAmount); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	return ToRuleResponse(rule), nil
}

// CreateStandardRuleSet seeds the four standard intercompany rules for a
// group. Receivable/payable nets first so balance sweeps precede flow
// eliminations.
func (s *RuleService) CreateStandardRuleSet(ctx context.Context, tenantID, groupID uuid.UUID, req StandardRuleSetRequest) ([]RuleResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, consolidation.ErrGroupInactive
	}

	specs := []struct {
		name     string
		ruleType consolidation.EliminationType
		debit    uuid.UUID
		credit   uuid.UUID
		priority int
	}{
		{"Intercompany receivable/payable", consolidation.EliminationReceivablePayable, req.ReceivableDebitAccountID, req.ReceivableCreditAccountID, 10},
		{"Intercompany sales", consolidation.EliminationSales, req.SalesDebitAccountID, req.SalesCreditAccountID, 20},
		{"Intercompany loans", consolidation.EliminationLoans, req.LoanDebitAccountID, req.LoanCreditAccountID, 30},
		{"Intercompany dividends", consolidation.EliminationDividends, req.DividendDebitAccountID, req.DividendCreditAccountID, 40},
	}

	rules := make([]*consolidation.EliminationRule, 0, len(specs))
	for _, spec := range specs {
		rule, err := consolidation.NewEliminationRule(
			tenantID, groupID, spec.name, spec.ruleType,
			spec.debit, spec.credit, spec.priority, true,
		)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := s.ruleRepo.SaveAll(ctx, rules); err != nil {
		return nil, err
	}

	responses := make([]RuleResponse, len(rules))
	for i, rule := range rules {
		responses[i] = *ToRuleResponse(rule)
	}
	return responses, nil
}

// GetByID retrieves an elimination rule by ID
func (s *RuleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToRuleResponse(rule), nil
}

// ListForGroup retrieves a group's elimination rules
func (s *RuleService) ListForGroup(ctx context.Context, tenantID, groupID uuid.UUID, filter consolidation.RuleFilter) ([]RuleResponse, error) {
	rules, err := s.ruleRepo.FindAllForGroup(ctx, tenantID, groupID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]RuleResponse, len(rules))
	for i := range rules {
		responses[i] = *ToRuleResponse(&rules[i])
	}
	return responses, nil
}

// Update edits a rule. Completed runs snapshot rule data at initiate time,
// so every edit only affects future runs and no field is locked once the
// rule has been applied.
func (s *RuleService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != rule.Name {
		if err := rule.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.Description != nil {
		rule.Description = *req.Description
	}

	if req.DebitAccountID != nil || req.CreditAccountID != nil {
		debit, credit := rule.DebitAccountID, rule.CreditAccountID
		if req.DebitAccountID != nil {
			debit = *req.DebitAccountID
		}
		if req.CreditAccountID != nil {
			credit = *req.CreditAccountID
		}
		if err := rule.SetPostingPair(debit, credit); err != nil {
			return nil, err
		}
	}

	if req.SourceAccounts != nil || req.TargetAccounts != nil {
		rule.SetAccounts(toAccountSelectors(req.SourceAccounts), toAccountSelectors(req.TargetAccounts))
	}

	if req.TriggerConditions != nil {
		rule.TriggerConditions = nil
		for _, cond := range req.TriggerConditions {
			if err := rule.AddTriggerCondition(cond.Description, toAccountSelectors(cond.SourceAccounts), cond.MinimumAmount); err != nil {
				return nil, err
			}
		}
	}

	if req.Priority != nil && *req.Priority != rule.Priority {
		if err := rule.Reprioritize(*req.Priority); err != nil {
			return nil, err
		}
	}

	if req.IsActive != nil && *req.IsActive != rule.IsActive {
		if *req.IsActive {
			err = rule.Activate()
		} else {
			err = rule.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	return ToRuleResponse(rule), nil
}

// Delete removes a rule that no completed run has applied. Applied rules are
// part of the audit trail and can only be deactivated.
func (s *RuleService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	referenced, err := s.tbRepo.ExistsForRule(ctx, tenantID, rule.ID)
	if err != nil {
		return err
	}
	if referenced {
		return consolidation.ErrRuleReferencedByRun
	}

	return s.ruleRepo.Delete(ctx, tenantID, id)
}

func toAccountSelectors(reqs []AccountSelectorRequest) []consolidation.AccountSelector {
	if len(reqs) == 0 {
		return nil
	}
	selectors := make([]consolidation.AccountSelector, len(reqs))
	for i, r := range reqs {
		selectors[i] = consolidation.AccountSelector{Code: r.Code, CompanyID: r.CompanyID}
	}
	return selectors
}
