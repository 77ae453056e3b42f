package consolidation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consolidatedLine(code string, category AccountCategory, amount string) ConsolidatedLine {
	value := decimal.RequireFromString(amount)
	return ConsolidatedLine{
		AccountID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(code)),
		AccountCode: code,
		AccountName: "Account " + code,
		Category:    category,
		Amount:      value,
		ParentShare: value,
		NCIShare:    decimal.Zero,
	}
}

// balancedTB builds a small consolidated trial balance that satisfies the
// closing identity exactly
func balancedTB(t *testing.T) *ConsolidatedTrialBalance {
	t.Helper()
	run := newTestRun(t)
	tb := NewConsolidatedTrialBalance(run, "USD")
	tb.Lines = []ConsolidatedLine{
		consolidatedLine("1000", CategoryCash, "400"),
		consolidatedLine("1200", CategoryCurrentAsset, "300"),
		consolidatedLine("1500", CategoryNonCurrentAsset, "900"),
		consolidatedLine("2000", CategoryCurrentLiability, "350"),
		consolidatedLine("2500", CategoryNonCurrentLiability, "450"),
		consolidatedLine("3000", CategoryContributedCapital, "500"),
		consolidatedLine("3100", CategoryRetainedEarnings, "100"),
		consolidatedLine("4000", CategoryRevenue, "900"),
		consolidatedLine("5000", CategoryCostOfSales, "360"),
		consolidatedLine("5100", CategoryOperatingExpense, "340"),
	}
	tb.NetIncomeParent = decimal.RequireFromString("200")
	tb.NetIncomeNCI = decimal.Zero
	return tb
}

func TestConsolidatedTrialBalanceTotals(t *testing.T) {
	tb := balancedTB(t)

	t.Run("totals by nature", func(t *testing.T) {
		assert.True(t, tb.TotalByNature(NatureAsset).Equal(decimal.RequireFromString("1600")))
		assert.True(t, tb.TotalByNature(NatureLiability).Equal(decimal.RequireFromString("800")))
		assert.True(t, tb.TotalByNature(NatureEquity).Equal(decimal.RequireFromString("600")))
	})

	t.Run("net income is revenue minus expenses", func(t *testing.T) {
		assert.True(t, tb.NetIncome().Equal(decimal.RequireFromString("200")))
	})

	t.Run("balanced within tolerance", func(t *testing.T) {
		assert.True(t, tb.Imbalance().IsZero())
		assert.True(t, tb.IsBalanced(decimal.RequireFromString("0.01")))
	})

	t.Run("imbalance reports the exact difference", func(t *testing.T) {
		tb := balancedTB(t)
		tb.Lines[0].Amount = tb.Lines[0].Amount.Add(decimal.RequireFromString("0.05"))
		assert.True(t, tb.Imbalance().Equal(decimal.RequireFromString("0.05")))
		assert.False(t, tb.IsBalanced(decimal.RequireFromString("0.01")))
	})
}

func TestConsolidatedTrialBalanceLookup(t *testing.T) {
	tb := balancedTB(t)

	t.Run("finds line by account id and code", func(t *testing.T) {
		want := tb.Lines[2]
		byID := tb.FindLine(want.AccountID)
		require.NotNil(t, byID)
		assert.Equal(t, want.AccountCode, byID.AccountCode)

		byCode := tb.FindLineByCode("2000")
		require.NotNil(t, byCode)
		assert.Equal(t, CategoryCurrentLiability, byCode.Category)
	})

	t.Run("returns nil for unknown account", func(t *testing.T) {
		assert.Nil(t, tb.FindLine(uuid.New()))
		assert.Nil(t, tb.FindLineByCode("9999"))
	})
}

func TestAppliedEliminationIsBalanced(t *testing.T) {
	entry := AppliedElimination{
		DebitAccountID:  uuid.New(),
		CreditAccountID: uuid.New(),
		Amount:          decimal.RequireFromString("250"),
	}
	assert.True(t, entry.IsBalanced())

	entry.CreditAccountID = entry.DebitAccountID
	assert.False(t, entry.IsBalanced())
}
