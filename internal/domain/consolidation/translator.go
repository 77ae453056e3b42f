package consolidation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CTAAccountCode is the dedicated equity account receiving the cumulative
// translation adjustment plug. The plug is never silently dropped.
const CTAAccountCode = "3900"

// CTAAccountName is the display name of the translation adjustment line
const CTAAccountName = "Cumulative Translation Adjustment"

// TranslatedBalance is one account line after translation into the group
// reporting currency
type TranslatedBalance struct {
	AccountBalance
	TranslatedAmount decimal.Decimal `json:"translated_amount"`
	RateUsed         decimal.Decimal `json:"rate_used"`
	RateClass        RateClass       `json:"rate_class"`
}

// MemberTranslation is the full translated trial balance of one member
// company, including the CTA plug line when one was required.
type MemberTranslation struct {
	CompanyID          uuid.UUID            `json:"company_id"`
	FunctionalCurrency valueobject.Currency `json:"functional_currency"`
	ReportingCurrency  valueobject.Currency `json:"reporting_currency"`
	Lines              []TranslatedBalance  `json:"lines"`
	CTAAmount          decimal.Decimal      `json:"cta_amount"`
}

// NetIncome returns the member's translated net income (revenue minus expenses)
func (t *MemberTranslation) NetIncome() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		switch line.Category.Nature() {
		case NatureRevenue:
			total = total.Add(line.TranslatedAmount)
		case NatureExpense:
			total = total.Sub(line.TranslatedAmount)
		}
	}
	return total
}

// CurrencyTranslator converts a member company's trial balance from its
// functional currency into the group reporting currency. Balance-sheet
// accounts use the closing rate, equity layers the historical rate on their
// transaction date, and income-statement flows the period average rate. The
// residual between the independently-translated sides is posted to the CTA
// equity line so the translated balance stays exactly balanced.
type CurrencyTranslator struct {
	rates RateResolver
}

// NewCurrencyTranslator creates a new CurrencyTranslator
func NewCurrencyTranslator(rates RateResolver) *CurrencyTranslator {
	return &CurrencyTranslator{rates: rates}
}

// Translate converts balances into the reporting currency. An identity
// translation (functional == reporting) never touches the resolver and
// cannot fail.
func (t *CurrencyTranslator) Translate(
	ctx context.Context,
	companyID uuid.UUID,
	balances []AccountBalance,
	functional, reporting valueobject.Currency,
	asOfDate time.Time,
) (*MemberTranslation, error) {
	result := &MemberTranslation{
		CompanyID:          companyID,
		FunctionalCurrency: functional,
		ReportingCurrency:  reporting,
		Lines:              make([]TranslatedBalance, 0, len(balances)),
		CTAAmount:          decimal.Zero,
	}

	if functional == reporting {
		one := decimal.NewFromInt(1)
		for _, b := range balances {
			result.Lines = append(result.Lines, TranslatedBalance{
				AccountBalance:   b,
				TranslatedAmount: b.Balance,
				RateUsed:         one,
				RateClass:        b.Category.RateClass(),
			})
		}
		return result, nil
	}

	for _, b := range balances {
		class := b.Category.RateClass()
		rateDate := asOfDate
		if class == RateClassHistorical && b.TransactionDate != nil {
			rateDate = *b.TransactionDate
		}

		rate, err := t.rates.Resolve(ctx, functional, reporting, rateDate, class)
		if err != nil {
			return nil, err
		}

		result.Lines = append(result.Lines, TranslatedBalance{
			AccountBalance:   b,
			TranslatedAmount: b.Balance.Mul(rate),
			RateUsed:         rate,
			RateClass:        class,
		})
	}

	// Each side translated at its own rate class no longer nets to zero.
	// The plug lands on the CTA equity line.
	result.CTAAmount = translationImbalance(result.Lines)
	if !result.CTAAmount.IsZero() {
		result.Lines = append(result.Lines, TranslatedBalance{
			AccountBalance: AccountBalance{
				AccountID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(CTAAccountCode+companyID.String())),
				AccountCode: CTAAccountCode,
				AccountName: CTAAccountName,
				Category:    CategoryTranslationAdjustment,
				Balance:     decimal.Zero,
				Currency:    functional,
				IsActive:    true,
			},
			TranslatedAmount: result.CTAAmount,
			RateUsed:         decimal.Zero,
			RateClass:        RateClassHistorical,
		})
	}

	return result, nil
}

// translationImbalance returns debits minus credits over the translated
// lines: the equity amount needed to restore assets = liabilities + equity.
func translationImbalance(lines []TranslatedBalance) decimal.Decimal {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range lines {
		if line.Category.Nature().IsDebitNormal() {
			debits = debits.Add(line.TranslatedAmount)
		} else {
			credits = credits.Add(line.TranslatedAmount)
		}
	}
	return debits.Sub(credits)
}
