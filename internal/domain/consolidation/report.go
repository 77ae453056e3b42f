package consolidation

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReportLine is a single statement row
type ReportLine struct {
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReportSection groups statement rows under one heading
type ReportSection struct {
	Title string          `json:"title"`
	Lines []ReportLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheet is the consolidated statement of financial position. Assets
// and liabilities are shown at their full consolidated amounts; equity is
// split between the parent's owners and non-controlling interests.
type BalanceSheet struct {
	RunID     uuid.UUID            `json:"run_id"`
	GroupID   uuid.UUID            `json:"group_id"`
	PeriodRef string               `json:"period_ref"`
	AsOfDate  time.Time            `json:"as_of_date"`
	Currency  valueobject.Currency `json:"currency"`

	CurrentAssets    ReportSection   `json:"current_assets"`
	NonCurrentAssets ReportSection   `json:"non_current_assets"`
	TotalAssets      decimal.Decimal `json:"total_assets"`

	CurrentLiabilities    ReportSection   `json:"current_liabilities"`
	NonCurrentLiabilities ReportSection   `json:"non_current_liabilities"`
	TotalLiabilities      decimal.Decimal `json:"total_liabilities"`

	ParentEquity              ReportSection   `json:"parent_equity"`
	NonControllingInterests   decimal.Decimal `json:"non_controlling_interests"`
	TotalEquity               decimal.Decimal `json:"total_equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
}

// IncomeStatement is the consolidated statement of profit or loss
type IncomeStatement struct {
	RunID     uuid.UUID            `json:"run_id"`
	GroupID   uuid.UUID            `json:"group_id"`
	PeriodRef string               `json:"period_ref"`
	Currency  valueobject.Currency `json:"currency"`

	Revenue            ReportSection   `json:"revenue"`
	CostOfSales        ReportSection   `json:"cost_of_sales"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	OperatingExpenses  ReportSection   `json:"operating_expenses"`
	OperatingIncome    decimal.Decimal `json:"operating_income"`
	OtherIncomeExpense ReportSection   `json:"other_income_expense"`
	IncomeBeforeTax    decimal.Decimal `json:"income_before_tax"`
	TaxExpense         ReportSection   `json:"tax_expense"`
	NetIncome          decimal.Decimal `json:"net_income"`

	AttributableToParent decimal.Decimal `json:"attributable_to_parent"`
	AttributableToNCI    decimal.Decimal `json:"attributable_to_nci"`
}

// CashFlowStatement is an indirect-method view derived from the consolidated
// trial balance: net income adjusted for working capital movements, investing
// activity in non-current and equity-method assets, and financing activity in
// long-term debt and equity. The three sections reconcile to the closing
// cash position.
type CashFlowStatement struct {
	RunID     uuid.UUID            `json:"run_id"`
	GroupID   uuid.UUID            `json:"group_id"`
	PeriodRef string               `json:"period_ref"`
	Currency  valueobject.Currency `json:"currency"`

	NetIncome                decimal.Decimal `json:"net_income"`
	WorkingCapitalAdjustment decimal.Decimal `json:"working_capital_adjustment"`
	OperatingActivities      decimal.Decimal `json:"operating_activities"`
	InvestingActivities      decimal.Decimal `json:"investing_activities"`
	FinancingActivities      decimal.Decimal `json:"financing_activities"`
	NetCashMovement          decimal.Decimal `json:"net_cash_movement"`
	ClosingCash              decimal.Decimal `json:"closing_cash"`
}

// EquityStatement is the consolidated statement of changes in equity,
// presented by component with the parent / NCI attribution per component
type EquityStatement struct {
	RunID     uuid.UUID            `json:"run_id"`
	GroupID   uuid.UUID            `json:"group_id"`
	PeriodRef string               `json:"period_ref"`
	Currency  valueobject.Currency `json:"currency"`

	Components []EquityComponent `json:"components"`

	TotalParent decimal.Decimal `json:"total_parent"`
	TotalNCI    decimal.Decimal `json:"total_nci"`
	TotalEquity decimal.Decimal `json:"total_equity"`
}

// EquityComponent is one column of the equity statement
type EquityComponent struct {
	Title  string          `json:"title"`
	Parent decimal.Decimal `json:"parent"`
	NCI    decimal.Decimal `json:"nci"`
	Total  decimal.Decimal `json:"total"`
}

// ReportAssembler builds statement views from a completed run's consolidated
// trial balance. It holds no state beyond the rounding tolerance and never
// mutates its inputs; every view is recomputed on demand.
type ReportAssembler struct {
	tolerance decimal.Decimal
}

// NewReportAssembler creates a ReportAssembler with the given rounding
// tolerance for the statement identities
func NewReportAssembler(tolerance decimal.Decimal) *ReportAssembler {
	return &ReportAssembler{tolerance: tolerance}
}

func (a *ReportAssembler) requireCompleted(run *ConsolidationRun) error {
	if run.Status != RunStatusCompleted {
		return ErrRunNotCompleted
	}
	return nil
}

// section collects the trial balance lines of the given categories, sorted by
// account code. Amounts stay in natural sign, so a credit-normal section with
// normal balances totals positive.
func section(tb *ConsolidatedTrialBalance, title string, categories ...AccountCategory) ReportSection {
	wanted := make(map[AccountCategory]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}
	s := ReportSection{Title: title, Lines: make([]ReportLine, 0), Total: decimal.Zero}
	for _, line := range tb.Lines {
		if !wanted[line.Category] {
			continue
		}
		s.Lines = append(s.Lines, ReportLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Amount:      line.Amount,
		})
		s.Total = s.Total.Add(line.Amount)
	}
	sort.Slice(s.Lines, func(i, j int) bool { return s.Lines[i].AccountCode < s.Lines[j].AccountCode })
	return s
}

// AssembleBalanceSheet builds the consolidated balance sheet and verifies
// total assets equal total liabilities plus total equity within tolerance
func (a *ReportAssembler) AssembleBalanceSheet(run *ConsolidationRun, tb *ConsolidatedTrialBalance) (*BalanceSheet, error) {
	if err := a.requireCompleted(run); err != nil {
		return nil, err
	}

	bs := &BalanceSheet{
		RunID:     run.ID,
		GroupID:   run.GroupID,
		PeriodRef: run.PeriodRef,
		AsOfDate:  run.AsOfDate,
		Currency:  tb.ReportingCurrency,
	}

	bs.CurrentAssets = section(tb, "Current Assets", CategoryCash, CategoryCurrentAsset)
	bs.NonCurrentAssets = section(tb, "Non-Current Assets", CategoryNonCurrentAsset, CategoryEquityInvestment)
	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.NonCurrentAssets.Total)

	bs.CurrentLiabilities = section(tb, "Current Liabilities", CategoryCurrentLiability)
	bs.NonCurrentLiabilities = section(tb, "Non-Current Liabilities", CategoryNonCurrentLiability)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.NonCurrentLiabilities.Total)

	// Equity attributable to the parent: the parent share of each equity
	// layer plus current-period earnings not yet closed to retained earnings.
	parent := ReportSection{Title: "Equity Attributable to Owners of the Parent", Lines: make([]ReportLine, 0)}
	nci := decimal.Zero
	for _, line := range tb.Lines {
		if line.Category.Nature() != NatureEquity {
			continue
		}
		if line.Category == CategoryNonControllingInterest {
			nci = nci.Add(line.Amount)
			continue
		}
		parent.Lines = append(parent.Lines, ReportLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Amount:      line.ParentShare,
		})
		parent.Total = parent.Total.Add(line.ParentShare)
		nci = nci.Add(line.NCIShare)
	}
	sort.Slice(parent.Lines, func(i, j int) bool { return parent.Lines[i].AccountCode < parent.Lines[j].AccountCode })
	parent.Lines = append(parent.Lines, ReportLine{
		AccountName: "Current Period Earnings",
		Amount:      tb.NetIncomeParent,
	})
	parent.Total = parent.Total.Add(tb.NetIncomeParent)

	bs.ParentEquity = parent
	bs.NonControllingInterests = nci.Add(tb.NetIncomeNCI)
	bs.TotalEquity = bs.ParentEquity.Total.Add(bs.NonControllingInterests)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)

	diff := bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity)
	if diff.Abs().GreaterThan(a.tolerance) {
		return nil, &NotBalancedError{
			Identity:   "total assets == total liabilities + total equity",
			Difference: diff,
			Tolerance:  a.tolerance,
		}
	}

	return bs, nil
}

// AssembleIncomeStatement builds the consolidated income statement and
// verifies the net income identity within tolerance
func (a *ReportAssembler) AssembleIncomeStatement(run *ConsolidationRun, tb *ConsolidatedTrialBalance) (*IncomeStatement, error) {
	if err := a.requireCompleted(run); err != nil {
		return nil, err
	}

	is := &IncomeStatement{
		RunID:     run.ID,
		GroupID:   run.GroupID,
		PeriodRef: run.PeriodRef,
		Currency:  tb.ReportingCurrency,
	}

	is.Revenue = section(tb, "Revenue", CategoryRevenue)
	is.CostOfSales = section(tb, "Cost of Sales", CategoryCostOfSales)
	is.GrossProfit = is.Revenue.Total.Sub(is.CostOfSales.Total)

	is.OperatingExpenses = section(tb, "Operating Expenses", CategoryOperatingExpense)
	is.OperatingIncome = is.GrossProfit.Sub(is.OperatingExpenses.Total)

	is.OtherIncomeExpense = section(tb, "Other Income and Expense", CategoryOtherIncomeExpense, CategoryEquityInEarnings)
	is.IncomeBeforeTax = is.OperatingIncome.Add(is.OtherIncomeExpense.Total)

	is.TaxExpense = section(tb, "Income Tax Expense", CategoryTaxExpense)
	is.NetIncome = is.IncomeBeforeTax.Sub(is.TaxExpense.Total)

	is.AttributableToParent = tb.NetIncomeParent
	is.AttributableToNCI = tb.NetIncomeNCI

	diff := is.NetIncome.Sub(tb.NetIncome())
	if diff.Abs().GreaterThan(a.tolerance) {
		return nil, &NotBalancedError{
			Identity:   "net income == revenue - cost of sales - operating expenses - tax + other",
			Difference: diff,
			Tolerance:  a.tolerance,
		}
	}
	attribution := is.AttributableToParent.Add(is.AttributableToNCI).Sub(is.NetIncome)
	if attribution.Abs().GreaterThan(a.tolerance) {
		return nil, &NotBalancedError{
			Identity:   "net income parent + NCI == consolidated net income",
			Difference: attribution,
			Tolerance:  a.tolerance,
		}
	}

	return is, nil
}

// AssembleCashFlowStatement builds the indirect-method cash flow view. The
// trial balance carries cumulative balances, so the three activity sections
// reconcile to the closing cash position rather than to a period movement.
func (a *ReportAssembler) AssembleCashFlowStatement(run *ConsolidationRun, tb *ConsolidatedTrialBalance) (*CashFlowStatement, error) {
	if err := a.requireCompleted(run); err != nil {
		return nil, err
	}

	cf := &CashFlowStatement{
		RunID:     run.ID,
		GroupID:   run.GroupID,
		PeriodRef: run.PeriodRef,
		Currency:  tb.ReportingCurrency,
	}

	cf.NetIncome = tb.NetIncome()

	nonCashCurrentAssets := tb.TotalByCategory(CategoryCurrentAsset)
	currentLiabilities := tb.TotalByCategory(CategoryCurrentLiability)
	cf.WorkingCapitalAdjustment = currentLiabilities.Sub(nonCashCurrentAssets)
	cf.OperatingActivities = cf.NetIncome.Add(cf.WorkingCapitalAdjustment)

	cf.InvestingActivities = tb.TotalByCategory(CategoryNonCurrentAsset).
		Add(tb.TotalByCategory(CategoryEquityInvestment)).Neg()

	equity := tb.TotalByNature(NatureEquity)
	cf.FinancingActivities = tb.TotalByCategory(CategoryNonCurrentLiability).Add(equity)

	cf.NetCashMovement = cf.OperatingActivities.
		Add(cf.InvestingActivities).
		Add(cf.FinancingActivities)
	cf.ClosingCash = tb.TotalByCategory(CategoryCash)

	diff := cf.NetCashMovement.Sub(cf.ClosingCash)
	if diff.Abs().GreaterThan(a.tolerance) {
		return nil, &NotBalancedError{
			Identity:   "operating + investing + financing == closing cash",
			Difference: diff,
			Tolerance:  a.tolerance,
		}
	}

	return cf, nil
}

// AssembleEquityStatement builds the statement of changes in equity by
// component, attributing each component between the parent's owners and NCI
func (a *ReportAssembler) AssembleEquityStatement(run *ConsolidationRun, tb *ConsolidatedTrialBalance) (*EquityStatement, error) {
	if err := a.requireCompleted(run); err != nil {
		return nil, err
	}

	es := &EquityStatement{
		RunID:     run.ID,
		GroupID:   run.GroupID,
		PeriodRef: run.PeriodRef,
		Currency:  tb.ReportingCurrency,
	}

	components := []struct {
		title    string
		category AccountCategory
	}{
		{"Contributed Capital", CategoryContributedCapital},
		{"Retained Earnings", CategoryRetainedEarnings},
		{"Cumulative Translation Adjustment", CategoryTranslationAdjustment},
	}

	for _, c := range components {
		comp := EquityComponent{Title: c.title}
		for _, line := range tb.Lines {
			if line.Category != c.category {
				continue
			}
			comp.Parent = comp.Parent.Add(line.ParentShare)
			comp.NCI = comp.NCI.Add(line.NCIShare)
		}
		comp.Total = comp.Parent.Add(comp.NCI)
		es.Components = append(es.Components, comp)
	}

	earnings := EquityComponent{
		Title:  "Current Period Earnings",
		Parent: tb.NetIncomeParent,
		NCI:    tb.NetIncomeNCI,
		Total:  tb.NetIncomeParent.Add(tb.NetIncomeNCI),
	}
	es.Components = append(es.Components, earnings)

	// Directly carried NCI equity layers (for example on acquisition) sit in
	// their own component rather than being folded into the ones above.
	direct := EquityComponent{Title: "Non-Controlling Interests"}
	for _, line := range tb.Lines {
		if line.Category != CategoryNonControllingInterest {
			continue
		}
		direct.NCI = direct.NCI.Add(line.Amount)
	}
	direct.Total = direct.NCI
	if !direct.Total.IsZero() {
		es.Components = append(es.Components, direct)
	}

	for _, comp := range es.Components {
		es.TotalParent = es.TotalParent.Add(comp.Parent)
		es.TotalNCI = es.TotalNCI.Add(comp.NCI)
	}
	es.TotalEquity = es.TotalParent.Add(es.TotalNCI)

	return es, nil
}
