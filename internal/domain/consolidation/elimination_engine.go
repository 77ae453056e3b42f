package consolidation

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SkippedRule records why a rule produced no posting. Skips are findings,
// not failures.
type SkippedRule struct {
	RuleID   uuid.UUID `json:"rule_id"`
	RuleName string    `json:"rule_name"`
	Reason   string    `json:"reason"`
}

// EliminationOptions tunes one engine evaluation
type EliminationOptions struct {
	// ContinueOnWarnings lets unmatched transactions above materiality be
	// eliminated with a recorded warning instead of blocking the run.
	ContinueOnWarnings bool
	// MaterialityThreshold is the reporting-currency amount above which an
	// unmatched transaction blocks automatic elimination.
	MaterialityThreshold decimal.Decimal
}

// EliminationResult is the outcome of evaluating a group's ruleset
type EliminationResult struct {
	// Applied holds the balanced postings of automatic rules, in strictly
	// ascending (priority, rule id) order.
	Applied []AppliedElimination `json:"applied"`
	// Pending holds computed postings of non-automatic rules awaiting manual
	// application. They are reported but never posted.
	Pending  []AppliedElimination `json:"pending"`
	Skipped  []SkippedRule        `json:"skipped"`
	Warnings []string             `json:"warnings"`
}

// eliminationSource is one candidate amount a rule can draw from: either an
// intercompany transaction or a translated intercompany balance line.
type eliminationSource struct {
	accountCode string
	companyID   uuid.UUID
	amount      decimal.Decimal
	txID        *uuid.UUID
}

// EliminationEngine matches a group's active elimination rules against the
// period's intercompany activity and emits balanced elimination postings.
// Evaluation order is deterministic: ascending priority, ties broken by rule
// ID.
type EliminationEngine struct{}

// NewEliminationEngine creates a new EliminationEngine
func NewEliminationEngine() *EliminationEngine {
	return &EliminationEngine{}
}

// Evaluate runs the ruleset. Rules referencing unknown posting accounts or an
// inactive state are skipped with a reason; an unmatched transaction above
// materiality aborts with *UnmatchedTransactionError unless
// ContinueOnWarnings is set.
func (e *EliminationEngine) Evaluate(
	rules []EliminationRule,
	transactions []IntercompanyTransaction,
	translations []MemberTranslation,
	chart map[uuid.UUID]AccountCategory,
	opts EliminationOptions,
) (*EliminationResult, error) {
	result := &EliminationResult{
		Applied:  make([]AppliedElimination, 0),
		Pending:  make([]AppliedElimination, 0),
		Skipped:  make([]SkippedRule, 0),
		Warnings: make([]string, 0),
	}

	eligible, err := e.gateTransactions(transactions, opts, result)
	if err != nil {
		return nil, err
	}

	ordered := make([]EliminationRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	for _, rule := range ordered {
		if !rule.IsActive {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID: rule.ID, RuleName: rule.Name, Reason: "rule is inactive",
			})
			continue
		}
		if _, ok := chart[rule.DebitAccountID]; !ok {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID: rule.ID, RuleName: rule.Name,
				Reason: fmt.Sprintf("debit account %s not in consolidated chart", rule.DebitAccountID),
			})
			continue
		}
		if _, ok := chart[rule.CreditAccountID]; !ok {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID: rule.ID, RuleName: rule.Name,
				Reason: fmt.Sprintf("credit account %s not in consolidated chart", rule.CreditAccountID),
			})
			continue
		}

		sources := e.collectSources(rule, eligible, translations)

		matched, reason := e.conditionsMatch(rule, sources)
		if !matched {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID: rule.ID, RuleName: rule.Name, Reason: reason,
			})
			continue
		}

		amount := e.eliminationAmount(rule, sources)
		if amount.IsZero() {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID: rule.ID, RuleName: rule.Name, Reason: "no matching source balances",
			})
			continue
		}

		entry := AppliedElimination{
			RuleID:          rule.ID,
			RuleName:        rule.Name,
			Type:            rule.Type,
			Priority:        rule.Priority,
			DebitAccountID:  rule.DebitAccountID,
			CreditAccountID: rule.CreditAccountID,
			Amount:          amount,
			Description:     rule.Description,
		}

		if rule.IsAutomatic {
			result.Applied = append(result.Applied, entry)
		} else {
			result.Pending = append(result.Pending, entry)
		}
	}

	return result, nil
}

// gateTransactions filters transactions eligible for automatic elimination.
// Unmatched transactions above materiality block the run unless
// ContinueOnWarnings downgrades them to warnings.
func (e *EliminationEngine) gateTransactions(
	transactions []IntercompanyTransaction,
	opts EliminationOptions,
	result *EliminationResult,
) ([]IntercompanyTransaction, error) {
	eligible := make([]IntercompanyTransaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.MatchingStatus.IsEliminationReady() {
			eligible = append(eligible, tx)
			continue
		}
		if tx.Amount.Abs().GreaterThan(opts.MaterialityThreshold) {
			if !opts.ContinueOnWarnings {
				return nil, &UnmatchedTransactionError{
					TransactionID: tx.ID,
					Amount:        tx.Amount,
					Materiality:   opts.MaterialityThreshold,
				}
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"unmatched intercompany transaction %s (%s) above materiality eliminated under continue-on-warnings",
				tx.ID, tx.Amount.String()))
			eligible = append(eligible, tx)
			continue
		}
		// Immaterial unmatched transactions are eliminated quietly.
		eligible = append(eligible, tx)
	}
	return eligible, nil
}

// collectSources gathers the candidate amounts a rule can eliminate: the
// period's transactions of the rule type plus translated balance lines on
// intercompany accounts.
func (e *EliminationEngine) collectSources(
	rule EliminationRule,
	transactions []IntercompanyTransaction,
	translations []MemberTranslation,
) []eliminationSource {
	sources := make([]eliminationSource, 0)

	txTypes := rule.Type.TransactionTypes()
	for _, tx := range transactions {
		if !containsTransactionType(txTypes, tx.Type) {
			continue
		}
		sources = append(sources, eliminationSource{
			accountCode: tx.FromAccountCode,
			companyID:   tx.FromCompanyID,
			amount:      tx.Amount,
			txID:        &tx.ID,
		})
	}

	// Balance-driven types also sweep intercompany account lines, so stale
	// balances without a period transaction still get eliminated.
	if rule.Type == EliminationReceivablePayable || rule.Type == EliminationLoans || rule.Type == EliminationManual {
		for _, tr := range translations {
			for _, line := range tr.Lines {
				if !line.IsIntercompany {
					continue
				}
				if !selectorsMatch(rule.SourceAccounts, line.AccountCode) {
					continue
				}
				if line.Category.Nature().IsDebitNormal() {
					sources = append(sources, eliminationSource{
						accountCode: line.AccountCode,
						companyID:   tr.CompanyID,
						amount:      line.TranslatedAmount,
					})
				}
			}
		}
	}

	return sources
}

// conditionsMatch evaluates every trigger condition. A condition matches when
// each of its selectors resolves to at least one source meeting the minimum
// amount. A rule without conditions matches whenever any source exists.
func (e *EliminationEngine) conditionsMatch(rule EliminationRule, sources []eliminationSource) (bool, string) {
	if len(rule.TriggerConditions) == 0 {
		if len(sources) == 0 {
			return false, "no intercompany activity for rule type"
		}
		return true, ""
	}

	for _, cond := range rule.TriggerConditions {
		for _, sel := range cond.SourceAccounts {
			if !selectorResolves(sel, cond.MinimumAmount, sources) {
				reason := fmt.Sprintf("condition %q: selector %s matched no source", cond.Description, sel.Code)
				if cond.MinimumAmount != nil {
					reason += fmt.Sprintf(" above minimum %s", cond.MinimumAmount.String())
				}
				return false, reason
			}
		}
	}
	return true, ""
}

// selectorResolves reports whether at least one source satisfies the selector
// and the minimum amount threshold
func selectorResolves(sel AccountSelector, minimum *decimal.Decimal, sources []eliminationSource) bool {
	for _, src := range sources {
		if !sel.Matches(src.accountCode) {
			continue
		}
		if sel.CompanyID != nil && *sel.CompanyID != src.companyID {
			continue
		}
		if minimum != nil && src.amount.Abs().LessThan(*minimum) {
			continue
		}
		return true
	}
	return false
}

// eliminationAmount sums the matched sources. When the rule carries source
// selectors, only selector-matched sources count; otherwise every source of
// the rule type contributes.
func (e *EliminationEngine) eliminationAmount(rule EliminationRule, sources []eliminationSource) decimal.Decimal {
	total := decimal.Zero
	for _, src := range sources {
		if len(rule.SourceAccounts) > 0 && !selectorsMatch(rule.SourceAccounts, src.accountCode) {
			continue
		}
		total = total.Add(src.amount.Abs())
	}
	return total
}

func selectorsMatch(selectors []AccountSelector, code string) bool {
	for _, sel := range selectors {
		if sel.Matches(code) {
			return true
		}
	}
	return false
}

func containsTransactionType(types []IntercompanyTransactionType, t IntercompanyTransactionType) bool {
	for _, tt := range types {
		if tt == t {
			return true
		}
	}
	return false
}
