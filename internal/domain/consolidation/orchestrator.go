package consolidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrchestratorOption configures the orchestrator
type OrchestratorOption func(*Orchestrator)

// WithLogger attaches a structured logger
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithRoundingTolerance overrides the balance tolerance (default 0.01)
func WithRoundingTolerance(tolerance decimal.Decimal) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tolerance = tolerance
	}
}

// WithMaterialityThreshold overrides the unmatched-transaction materiality
// threshold (default 100)
func WithMaterialityThreshold(threshold decimal.Decimal) OrchestratorOption {
	return func(o *Orchestrator) {
		o.materiality = threshold
	}
}

// Orchestrator drives a consolidation run end to end: collect -> translate ->
// eliminate -> aggregate -> validate -> complete. It is the only writer of
// run state. Each run executes as a single sequential pipeline; runs for
// different groups or periods may execute concurrently because every run
// works from its own snapshot loaded at execution start.
type Orchestrator struct {
	groups        ConsolidationGroupRepository
	rules         EliminationRuleRepository
	runs          ConsolidationRunRepository
	trialBalances TrialBalanceRepository
	rates         RateResolver
	balances      TrialBalanceProvider
	transactions  IntercompanyTransactionProvider

	translator *CurrencyTranslator
	engine     *EliminationEngine
	allocator  *EquityAllocator

	tolerance   decimal.Decimal
	materiality decimal.Decimal
	logger      *zap.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(
	groups ConsolidationGroupRepository,
	rules EliminationRuleRepository,
	runs ConsolidationRunRepository,
	trialBalances TrialBalanceRepository,
	rates RateResolver,
	balances TrialBalanceProvider,
	transactions IntercompanyTransactionProvider,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		groups:        groups,
		rules:         rules,
		runs:          runs,
		trialBalances: trialBalances,
		rates:         rates,
		balances:      balances,
		transactions:  transactions,
		translator:    NewCurrencyTranslator(rates),
		engine:        NewEliminationEngine(),
		allocator:     NewEquityAllocator(),
		tolerance:     decimal.NewFromFloat(0.01),
		materiality:   decimal.NewFromInt(100),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Initiate validates preconditions and creates a Pending run. The existence
// check and insert are atomic inside CreateExclusive; a concurrent initiate
// for the same (group, period) loses with ErrRunExistsForPeriod.
func (o *Orchestrator) Initiate(
	ctx context.Context,
	tenantID, groupID uuid.UUID,
	periodRef string,
	asOfDate time.Time,
	initiatedBy uuid.UUID,
	flags RunFlags,
) (*ConsolidationRun, error) {
	group, err := o.groups.FindByIDForTenant(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrGroupInactive
	}

	if flags.ForceRegeneration {
		prior, err := o.runs.FindActiveForPeriod(ctx, tenantID, groupID, periodRef)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if prior != nil {
			run, err := NewConsolidationRun(tenantID, groupID, periodRef, asOfDate, initiatedBy, flags)
			if err != nil {
				return nil, err
			}
			if err := prior.Supersede(run.ID); err != nil {
				return nil, err
			}
			if err := o.runs.SaveWithLock(ctx, prior); err != nil {
				return nil, err
			}
			if err := o.runs.CreateExclusive(ctx, run); err != nil {
				return nil, err
			}
			o.logger.Info("consolidation run initiated, prior run superseded",
				zap.String("run_id", run.ID.String()),
				zap.String("superseded_run_id", prior.ID.String()),
				zap.String("group_id", groupID.String()),
				zap.String("period_ref", periodRef))
			return run, nil
		}
	}

	run, err := NewConsolidationRun(tenantID, groupID, periodRef, asOfDate, initiatedBy, flags)
	if err != nil {
		return nil, err
	}
	if err := o.runs.CreateExclusive(ctx, run); err != nil {
		return nil, err
	}
	o.logger.Info("consolidation run initiated",
		zap.String("run_id", run.ID.String()),
		zap.String("group_id", groupID.String()),
		zap.String("period_ref", periodRef))
	return run, nil
}

// Cancel requests cancellation. Pending runs cancel immediately; an
// in-progress run cancels at its next step boundary.
func (o *Orchestrator) Cancel(ctx context.Context, tenantID, runID uuid.UUID) (*ConsolidationRun, error) {
	run, err := o.runs.FindByIDForTenant(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}
	if run.Status == RunStatusPending {
		if err := run.Cancel(); err != nil {
			return nil, err
		}
	} else {
		if err := run.RequestCancel(); err != nil {
			return nil, err
		}
	}
	if err := o.runs.SaveWithLock(ctx, run); err != nil {
		return nil, err
	}
	o.logger.Info("consolidation run cancellation requested",
		zap.String("run_id", runID.String()),
		zap.String("status", run.Status.String()))
	return run, nil
}

// GetStatus returns the run with its step statuses
func (o *Orchestrator) GetStatus(ctx context.Context, tenantID, runID uuid.UUID) (*ConsolidationRun, error) {
	return o.runs.FindByIDForTenant(ctx, tenantID, runID)
}

// pipelineState carries intermediate results between steps of one run
type pipelineState struct {
	group        *ConsolidationGroup
	parentLines  []AccountBalance
	memberLines  map[uuid.UUID][]AccountBalance
	transactions []IntercompanyTransaction
	parentTrans  *MemberTranslation
	memberTrans  map[uuid.UUID]*MemberTranslation
	ruleSnapshot []EliminationRule
	eliminations *EliminationResult
	trialBalance *ConsolidatedTrialBalance
}

// Execute runs the pipeline for a Pending run. Any step failure moves the
// run to Failed with the step and reason recorded; nothing is retried.
// A cancellation request is honored at the next step boundary.
func (o *Orchestrator) Execute(ctx context.Context, runID uuid.UUID) error {
	run, err := o.runs.FindByID(ctx, runID)
	if err != nil {
		return err
	}
	if err := run.Start(); err != nil {
		return err
	}
	if err := o.runs.SaveWithLock(ctx, run); err != nil {
		return err
	}

	log := o.logger.With(
		zap.String("run_id", run.ID.String()),
		zap.String("group_id", run.GroupID.String()),
		zap.String("period_ref", run.PeriodRef))
	log.Info("consolidation run started")

	state := &pipelineState{
		memberLines: make(map[uuid.UUID][]AccountBalance),
		memberTrans: make(map[uuid.UUID]*MemberTranslation),
	}

	steps := []struct {
		step RunStep
		fn   func(context.Context, *ConsolidationRun, *pipelineState) error
	}{
		{StepCollecting, o.collect},
		{StepTranslating, o.translate},
		{StepEliminating, o.eliminate},
		{StepAggregating, o.aggregate},
		{StepValidating, o.validate},
	}

	for _, s := range steps {
		cancelled, err := o.refreshCancelRequested(ctx, run)
		if err != nil {
			return err
		}
		if cancelled {
			if err := run.Cancel(); err != nil {
				return err
			}
			if err := o.runs.SaveWithLock(ctx, run); err != nil {
				return o.resolveConflict(ctx, run, s.step, err)
			}
			log.Info("consolidation run cancelled at step boundary",
				zap.String("step", s.step.String()))
			return nil
		}

		if err := run.BeginStep(s.step); err != nil {
			return err
		}
		if err := o.runs.SaveWithLock(ctx, run); err != nil {
			return o.resolveConflict(ctx, run, s.step, err)
		}

		started := time.Now()
		if stepErr := s.fn(ctx, run, state); stepErr != nil {
			if err := run.FailStep(s.step, stepErr.Error()); err != nil {
				return err
			}
			if err := o.runs.SaveWithLock(ctx, run); err != nil {
				return err
			}
			log.Error("consolidation step failed",
				zap.String("step", s.step.String()),
				zap.Error(stepErr))
			return stepErr
		}

		if err := run.CompleteStep(s.step); err != nil {
			return err
		}
		if err := o.runs.SaveWithLock(ctx, run); err != nil {
			return o.resolveConflict(ctx, run, s.step, err)
		}
		log.Info("consolidation step completed",
			zap.String("step", s.step.String()),
			zap.Duration("duration", time.Since(started)))
	}

	if err := o.trialBalances.Save(ctx, state.trialBalance); err != nil {
		return err
	}
	if err := run.Complete(); err != nil {
		return err
	}
	if err := o.runs.SaveWithLock(ctx, run); err != nil {
		return o.resolveConflict(ctx, run, StepValidating, err)
	}
	log.Info("consolidation run completed",
		zap.Int("line_count", len(state.trialBalance.Lines)),
		zap.Int("elimination_count", len(state.trialBalance.Eliminations)),
		zap.Int("warning_count", len(run.Warnings)))
	return nil
}

// refreshCancelRequested re-reads the cancel flag so a cancel issued during
// the previous step is seen at this boundary. The stored version is taken
// over as well: a cancel request bumps it, and without the sync every later
// optimistic-lock write of this pipeline would be rejected.
func (o *Orchestrator) refreshCancelRequested(ctx context.Context, run *ConsolidationRun) (bool, error) {
	fresh, err := o.runs.FindByID(ctx, run.ID)
	if err != nil {
		return false, err
	}
	run.CancelRequested = fresh.CancelRequested
	run.Version = fresh.Version
	return run.CancelRequested, nil
}

// resolveConflict drives a run whose step write was rejected to a terminal
// state. A rejected write means another writer changed the run mid-step; a
// pending cancel is honored, anything else marks the run failed at the step
// so it never sticks in progress.
func (o *Orchestrator) resolveConflict(ctx context.Context, run *ConsolidationRun, step RunStep, cause error) error {
	fresh, err := o.runs.FindByID(ctx, run.ID)
	if err != nil {
		return cause
	}
	if fresh.Status.IsTerminal() {
		return cause
	}
	if fresh.CancelRequested {
		if err := fresh.Cancel(); err != nil {
			return cause
		}
		if err := o.runs.SaveWithLock(ctx, fresh); err != nil {
			return cause
		}
		*run = *fresh
		o.logger.Info("consolidation run cancelled after conflicting write",
			zap.String("run_id", run.ID.String()),
			zap.String("step", step.String()))
		return nil
	}
	if err := fresh.FailStep(step, cause.Error()); err != nil {
		return cause
	}
	if err := o.runs.SaveWithLock(ctx, fresh); err != nil {
		return cause
	}
	*run = *fresh
	return cause
}

// collect loads the configuration snapshot and the raw inputs: the group
// with its roster, every company's trial balance, the period's intercompany
// transactions, and the rule snapshot the rest of the pipeline works from.
func (o *Orchestrator) collect(ctx context.Context, run *ConsolidationRun, state *pipelineState) error {
	group, err := o.groups.FindByIDForTenant(ctx, run.TenantID, run.GroupID)
	if err != nil {
		return err
	}
	if !group.IsActive {
		return ErrGroupInactive
	}
	state.group = group

	parentLines, err := o.balances.FetchTrialBalance(ctx, run.TenantID, group.ParentCompanyID, run.AsOfDate)
	if err != nil {
		return err
	}
	if len(parentLines) == 0 {
		return &MissingTrialBalanceError{CompanyID: group.ParentCompanyID, AsOfDate: run.AsOfDate}
	}
	state.parentLines = parentLines

	for _, member := range group.Members {
		lines, err := o.balances.FetchTrialBalance(ctx, run.TenantID, member.CompanyID, run.AsOfDate)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return &MissingTrialBalanceError{CompanyID: member.CompanyID, AsOfDate: run.AsOfDate}
		}
		state.memberLines[member.CompanyID] = lines
	}

	transactions, err := o.transactions.FetchTransactions(ctx, run.TenantID, run.GroupID, run.PeriodRef)
	if err != nil {
		return err
	}
	state.transactions = transactions

	rules, err := o.rules.FindActiveForGroup(ctx, run.TenantID, run.GroupID)
	if err != nil {
		return err
	}
	state.ruleSnapshot = rules

	return nil
}

// translate converts every company's balances into the group reporting
// currency. The parent is assumed to keep its books in the reporting
// currency, so its translation is the identity.
func (o *Orchestrator) translate(ctx context.Context, run *ConsolidationRun, state *pipelineState) error {
	reporting := state.group.ReportingCurrency

	parentTrans, err := o.translator.Translate(ctx, state.group.ParentCompanyID,
		state.parentLines, reporting, reporting, run.AsOfDate)
	if err != nil {
		return err
	}
	state.parentTrans = parentTrans

	for _, member := range state.group.Members {
		trans, err := o.translator.Translate(ctx, member.CompanyID,
			state.memberLines[member.CompanyID], member.FunctionalCurrency, reporting, run.AsOfDate)
		if err != nil {
			return err
		}
		state.memberTrans[member.CompanyID] = trans
	}

	return nil
}

// eliminate evaluates the rule snapshot against the collected intercompany
// activity. Only line-consolidated balances enter the sweep: full-method
// members at their full amounts, proportionate members scaled by ownership.
// Equity-method members never consolidate line by line, so their balances
// and accounts stay out of the sweep and the chart.
func (o *Orchestrator) eliminate(ctx context.Context, run *ConsolidationRun, state *pipelineState) error {
	translations := make([]MemberTranslation, 0, len(state.memberTrans)+1)
	translations = append(translations, *state.parentTrans)
	for _, member := range state.group.Members {
		tr, ok := state.memberTrans[member.CompanyID]
		if !ok {
			continue
		}
		switch member.Method {
		case MethodFull:
			translations = append(translations, *tr)
		case MethodProportionate:
			translations = append(translations, scaleTranslation(tr, member.OwnershipPercentage.Fraction()))
		}
	}

	chart := make(map[uuid.UUID]AccountCategory)
	for _, tr := range translations {
		for _, line := range tr.Lines {
			chart[line.AccountID] = line.Category
		}
	}

	result, err := o.engine.Evaluate(state.ruleSnapshot, state.transactions, translations, chart, EliminationOptions{
		ContinueOnWarnings:   run.Flags.ContinueOnWarnings,
		MaterialityThreshold: o.materiality,
	})
	if err != nil {
		return err
	}
	state.eliminations = result

	for _, w := range result.Warnings {
		run.AddWarning(w)
	}
	for _, s := range result.Skipped {
		run.AddWarning(fmt.Sprintf("rule %q skipped: %s", s.RuleName, s.Reason))
	}

	return nil
}

// scaleTranslation returns a copy of the translation with every line's
// translated amount scaled by the ownership fraction, matching what the
// allocator consolidates for a proportionate member.
func scaleTranslation(tr *MemberTranslation, fraction decimal.Decimal) MemberTranslation {
	scaled := *tr
	scaled.Lines = make([]TranslatedBalance, len(tr.Lines))
	for i, line := range tr.Lines {
		copied := line
		copied.TranslatedAmount = line.TranslatedAmount.Mul(fraction).Round(2)
		scaled.Lines[i] = copied
	}
	scaled.CTAAmount = tr.CTAAmount.Mul(fraction).Round(2)
	return scaled
}

// aggregate merges the parent's balances with each member's method-weighted
// contribution, then subtracts the applied eliminations
func (o *Orchestrator) aggregate(ctx context.Context, run *ConsolidationRun, state *pipelineState) error {
	tb := NewConsolidatedTrialBalance(run, state.group.ReportingCurrency)

	merged := make(map[uuid.UUID]*ConsolidatedLine)
	order := make([]uuid.UUID, 0)

	addLine := func(line ConsolidatedLine) {
		if existing, ok := merged[line.AccountID]; ok {
			existing.Amount = existing.Amount.Add(line.Amount)
			existing.ParentShare = existing.ParentShare.Add(line.ParentShare)
			existing.NCIShare = existing.NCIShare.Add(line.NCIShare)
			return
		}
		copied := line
		merged[line.AccountID] = &copied
		order = append(order, line.AccountID)
	}

	// The parent consolidates itself at 100% with no NCI.
	for _, line := range state.parentTrans.Lines {
		addLine(ConsolidatedLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Category:    line.Category,
			Amount:      line.TranslatedAmount,
			ParentShare: line.TranslatedAmount,
			NCIShare:    decimal.Zero,
		})
	}

	parentNI := state.parentTrans.NetIncome()
	totalParentNI := parentNI
	totalNCINI := decimal.Zero

	for _, member := range state.group.Members {
		contribution, err := o.allocator.Allocate(member, state.memberTrans[member.CompanyID],
			run.Flags.IncludeEquityMethodInvestments)
		if err != nil {
			return err
		}
		if contribution.Excluded {
			run.AddWarning(fmt.Sprintf(
				"equity-method member %s excluded: include_equity_method_investments not set", member.CompanyName))
			continue
		}
		for _, line := range contribution.Lines {
			addLine(line)
		}
		totalParentNI = totalParentNI.Add(contribution.NetIncomeParent)
		totalNCINI = totalNCINI.Add(contribution.NetIncomeNCI)
	}

	// Eliminations adjust both posting accounts by the same amount, so the
	// trial balance stays balanced through this loop.
	for _, entry := range state.eliminations.Applied {
		if err := applyElimination(merged, entry); err != nil {
			return err
		}
	}

	for _, id := range order {
		tb.Lines = append(tb.Lines, *merged[id])
	}
	tb.Eliminations = state.eliminations.Applied
	tb.PendingEliminations = state.eliminations.Pending

	// Eliminations touch parent-attributable amounts only; the NCI split is
	// fixed at allocation time. Deriving the parent side by subtraction keeps
	// parent + NCI identical to the consolidated figure.
	tb.NetIncomeNCI = totalNCINI
	tb.NetIncomeParent = tb.NetIncome().Sub(totalNCINI)

	state.trialBalance = tb
	return nil
}

// applyElimination posts one balanced entry into the merged line map. Debits
// increase debit-normal accounts and decrease credit-normal ones; credits do
// the reverse.
func applyElimination(merged map[uuid.UUID]*ConsolidatedLine, entry AppliedElimination) error {
	debit, ok := merged[entry.DebitAccountID]
	if !ok {
		return shared.NewDomainError("ELIMINATION_ACCOUNT_MISSING",
			fmt.Sprintf("Elimination rule %q references unknown debit account %s", entry.RuleName, entry.DebitAccountID))
	}
	credit, ok := merged[entry.CreditAccountID]
	if !ok {
		return shared.NewDomainError("ELIMINATION_ACCOUNT_MISSING",
			fmt.Sprintf("Elimination rule %q references unknown credit account %s", entry.RuleName, entry.CreditAccountID))
	}

	if debit.Category.Nature().IsDebitNormal() {
		debit.Amount = debit.Amount.Add(entry.Amount)
		debit.ParentShare = debit.ParentShare.Add(entry.Amount)
	} else {
		debit.Amount = debit.Amount.Sub(entry.Amount)
		debit.ParentShare = debit.ParentShare.Sub(entry.Amount)
	}
	if credit.Category.Nature().IsDebitNormal() {
		credit.Amount = credit.Amount.Sub(entry.Amount)
		credit.ParentShare = credit.ParentShare.Sub(entry.Amount)
	} else {
		credit.Amount = credit.Amount.Add(entry.Amount)
		credit.ParentShare = credit.ParentShare.Add(entry.Amount)
	}
	return nil
}

// validate enforces the closing balance check. skip_validation bypasses it
// entirely; continue_on_warnings downgrades an imbalance to a warning.
func (o *Orchestrator) validate(ctx context.Context, run *ConsolidationRun, state *pipelineState) error {
	if run.Flags.SkipValidation {
		run.AddWarning("final balance validation skipped by request")
		return nil
	}

	imbalance := state.trialBalance.Imbalance()
	if imbalance.Abs().GreaterThan(o.tolerance) {
		err := &NotBalancedError{
			Identity:   "assets + expenses == liabilities + equity + revenue",
			Difference: imbalance,
			Tolerance:  o.tolerance,
		}
		if run.Flags.ContinueOnWarnings {
			run.AddWarning(err.Error())
			return nil
		}
		return err
	}
	if !imbalance.IsZero() {
		run.AddWarning(fmt.Sprintf("trial balance off by %s, within tolerance %s",
			imbalance.String(), o.tolerance.String()))
	}

	nciCheck := state.trialBalance.NetIncomeParent.Add(state.trialBalance.NetIncomeNCI).
		Sub(state.trialBalance.NetIncome())
	if !nciCheck.IsZero() {
		return &NotBalancedError{
			Identity:   "net income parent + NCI == consolidated net income",
			Difference: nciCheck,
			Tolerance:  decimal.Zero,
		}
	}

	return nil
}
