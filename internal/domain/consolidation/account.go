package consolidation

// AccountNature is the coarse accounting classification of an account
type AccountNature string

const (
	NatureAsset     AccountNature = "ASSET"
	NatureLiability AccountNature = "LIABILITY"
	NatureEquity    AccountNature = "EQUITY"
	NatureRevenue   AccountNature = "REVENUE"
	NatureExpense   AccountNature = "EXPENSE"
)

// IsValid checks if the nature is valid
func (n AccountNature) IsValid() bool {
	switch n {
	case NatureAsset, NatureLiability, NatureEquity, NatureRevenue, NatureExpense:
		return true
	}
	return false
}

// String returns the string representation
func (n AccountNature) String() string {
	return string(n)
}

// IsDebitNormal returns true for accounts whose normal balance is a debit
func (n AccountNature) IsDebitNormal() bool {
	return n == NatureAsset || n == NatureExpense
}

// IsBalanceSheet returns true for statement-of-position accounts
func (n AccountNature) IsBalanceSheet() bool {
	return n == NatureAsset || n == NatureLiability || n == NatureEquity
}

// AccountCategory is the fine-grained statement classification. It drives
// both the translation rate class and the report section an account lands in.
type AccountCategory string

const (
	CategoryCash                   AccountCategory = "CASH"
	CategoryCurrentAsset           AccountCategory = "CURRENT_ASSET"
	CategoryNonCurrentAsset        AccountCategory = "NON_CURRENT_ASSET"
	CategoryEquityInvestment       AccountCategory = "EQUITY_INVESTMENT" // Equity-method investment in associate
	CategoryCurrentLiability       AccountCategory = "CURRENT_LIABILITY"
	CategoryNonCurrentLiability    AccountCategory = "NON_CURRENT_LIABILITY"
	CategoryContributedCapital     AccountCategory = "CONTRIBUTED_CAPITAL"
	CategoryRetainedEarnings       AccountCategory = "RETAINED_EARNINGS"
	CategoryTranslationAdjustment  AccountCategory = "TRANSLATION_ADJUSTMENT"
	CategoryNonControllingInterest AccountCategory = "NON_CONTROLLING_INTEREST"
	CategoryRevenue                AccountCategory = "REVENUE"
	CategoryEquityInEarnings       AccountCategory = "EQUITY_IN_EARNINGS" // Share of associate profit
	CategoryOtherIncomeExpense     AccountCategory = "OTHER_INCOME_EXPENSE"
	CategoryCostOfSales            AccountCategory = "COST_OF_SALES"
	CategoryOperatingExpense       AccountCategory = "OPERATING_EXPENSE"
	CategoryTaxExpense             AccountCategory = "TAX_EXPENSE"
)

// IsValid checks if the category is valid
func (c AccountCategory) IsValid() bool {
	switch c {
	case CategoryCash, CategoryCurrentAsset, CategoryNonCurrentAsset, CategoryEquityInvestment,
		CategoryCurrentLiability, CategoryNonCurrentLiability,
		CategoryContributedCapital, CategoryRetainedEarnings, CategoryTranslationAdjustment,
		CategoryNonControllingInterest,
		CategoryRevenue, CategoryEquityInEarnings, CategoryOtherIncomeExpense,
		CategoryCostOfSales, CategoryOperatingExpense, CategoryTaxExpense:
		return true
	}
	return false
}

// String returns the string representation
func (c AccountCategory) String() string {
	return string(c)
}

// Nature returns the coarse classification of the category
func (c AccountCategory) Nature() AccountNature {
	switch c {
	case CategoryCash, CategoryCurrentAsset, CategoryNonCurrentAsset, CategoryEquityInvestment:
		return NatureAsset
	case CategoryCurrentLiability, CategoryNonCurrentLiability:
		return NatureLiability
	case CategoryContributedCapital, CategoryRetainedEarnings, CategoryTranslationAdjustment, CategoryNonControllingInterest:
		return NatureEquity
	case CategoryRevenue, CategoryEquityInEarnings, CategoryOtherIncomeExpense:
		return NatureRevenue
	case CategoryCostOfSales, CategoryOperatingExpense, CategoryTaxExpense:
		return NatureExpense
	}
	return ""
}

// RateClass returns the exchange rate class used to translate balances of
// this category: closing for assets and liabilities, historical for equity
// layers, average for income statement flows. The translation adjustment
// itself is the plug and is never translated.
func (c AccountCategory) RateClass() RateClass {
	switch c.Nature() {
	case NatureAsset, NatureLiability:
		return RateClassClosing
	case NatureEquity:
		return RateClassHistorical
	default:
		return RateClassAverage
	}
}
