package consolidation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reserved account codes for the synthetic lines the allocator creates
const (
	EquityInvestmentAccountCode = "1800"
	EquityInvestmentAccountName = "Investment in Equity-Method Associates"
	EquityInEarningsAccountCode = "4800"
	EquityInEarningsAccountName = "Equity in Earnings of Associates"
	NCIEquityAccountCode        = "3800"
	NCIEquityAccountName        = "Non-Controlling Interests"
	EquityPickupAccountCode     = "3850"
	EquityPickupAccountName     = "Equity-Method Investment Reserve"
)

// MemberContribution is what one member adds to the consolidated trial
// balance after its consolidation method is applied
type MemberContribution struct {
	CompanyID       uuid.UUID           `json:"company_id"`
	Method          ConsolidationMethod `json:"method"`
	Lines           []ConsolidatedLine  `json:"lines"`
	NetIncomeTotal  decimal.Decimal     `json:"net_income_total"`
	NetIncomeParent decimal.Decimal     `json:"net_income_parent"`
	NetIncomeNCI    decimal.Decimal     `json:"net_income_nci"`
	Excluded        bool                `json:"excluded"` // Equity-method member skipped by run flags
}

// EquityAllocator splits each member's equity and net income between the
// parent and non-controlling interests according to the member's
// consolidation method. The NCI share is always derived by subtraction from
// the exact total, so parent + NCI reproduces the consolidated figure to the
// last decimal.
type EquityAllocator struct{}

// NewEquityAllocator creates a new EquityAllocator
func NewEquityAllocator() *EquityAllocator {
	return &EquityAllocator{}
}

// Allocate applies the member's consolidation method to its translated trial
// balance. includeEquityMethod mirrors the run flag: when false,
// equity-method members contribute nothing.
func (a *EquityAllocator) Allocate(
	member ConsolidationMember,
	translation *MemberTranslation,
	includeEquityMethod bool,
) (*MemberContribution, error) {
	if !member.Method.IsValid() {
		return nil, fmt.Errorf("member %s has invalid consolidation method %q", member.CompanyID, member.Method)
	}

	switch member.Method {
	case MethodFull:
		return a.allocateFull(member, translation), nil
	case MethodProportionate:
		return a.allocateProportionate(member, translation), nil
	case MethodEquity:
		if !includeEquityMethod {
			return &MemberContribution{
				CompanyID: member.CompanyID,
				Method:    member.Method,
				Lines:     nil,
				Excluded:  true,
			}, nil
		}
		return a.allocateEquityMethod(member, translation), nil
	}
	// Unreachable: IsValid covers the closed set above.
	return nil, fmt.Errorf("unhandled consolidation method %q", member.Method)
}

// allocateFull consolidates every line at 100%. Equity and net income are
// split parent/NCI by the ownership percentage.
func (a *EquityAllocator) allocateFull(member ConsolidationMember, tr *MemberTranslation) *MemberContribution {
	ownFrac := member.OwnershipPercentage.Fraction()
	lines := make([]ConsolidatedLine, 0, len(tr.Lines))

	for _, line := range tr.Lines {
		cl := ConsolidatedLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Category:    line.Category,
			Amount:      line.TranslatedAmount,
		}
		nature := line.Category.Nature()
		if nature == NatureEquity || nature == NatureRevenue || nature == NatureExpense {
			cl.ParentShare = line.TranslatedAmount.Mul(ownFrac).Round(2)
			cl.NCIShare = line.TranslatedAmount.Sub(cl.ParentShare)
		} else {
			cl.ParentShare = line.TranslatedAmount
			cl.NCIShare = decimal.Zero
		}
		lines = append(lines, cl)
	}

	total := tr.NetIncome()
	parent := total.Mul(ownFrac).Round(2)
	return &MemberContribution{
		CompanyID:       member.CompanyID,
		Method:          MethodFull,
		Lines:           lines,
		NetIncomeTotal:  total,
		NetIncomeParent: parent,
		NetIncomeNCI:    total.Sub(parent),
	}
}

// allocateProportionate consolidates the ownership share of every line. The
// unowned remainder is excluded entirely; no NCI arises.
func (a *EquityAllocator) allocateProportionate(member ConsolidationMember, tr *MemberTranslation) *MemberContribution {
	ownFrac := member.OwnershipPercentage.Fraction()
	lines := make([]ConsolidatedLine, 0, len(tr.Lines))

	for _, line := range tr.Lines {
		scaled := line.TranslatedAmount.Mul(ownFrac).Round(2)
		lines = append(lines, ConsolidatedLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Category:    line.Category,
			Amount:      scaled,
			ParentShare: scaled,
			NCIShare:    decimal.Zero,
		})
	}

	share := tr.NetIncome().Mul(ownFrac).Round(2)
	return &MemberContribution{
		CompanyID:       member.CompanyID,
		Method:          MethodProportionate,
		Lines:           lines,
		NetIncomeTotal:  share,
		NetIncomeParent: share,
		NetIncomeNCI:    decimal.Zero,
	}
}

// allocateEquityMethod records a single investment asset line and a single
// equity-in-earnings income line, both scaled by ownership. The member's own
// balances never enter line-by-line.
func (a *EquityAllocator) allocateEquityMethod(member ConsolidationMember, tr *MemberTranslation) *MemberContribution {
	ownFrac := member.OwnershipPercentage.Fraction()

	netAssets := decimal.Zero
	for _, line := range tr.Lines {
		switch line.Category.Nature() {
		case NatureAsset:
			netAssets = netAssets.Add(line.TranslatedAmount)
		case NatureLiability:
			netAssets = netAssets.Sub(line.TranslatedAmount)
		}
	}
	earnings := tr.NetIncome().Mul(ownFrac).Round(2)
	investment := netAssets.Mul(ownFrac).Round(2)

	lines := []ConsolidatedLine{
		{
			AccountID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(EquityInvestmentAccountCode+member.CompanyID.String())),
			AccountCode: EquityInvestmentAccountCode,
			AccountName: EquityInvestmentAccountName,
			Category:    CategoryEquityInvestment,
			Amount:      investment,
			ParentShare: investment,
			NCIShare:    decimal.Zero,
		},
		{
			AccountID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(EquityInEarningsAccountCode+member.CompanyID.String())),
			AccountCode: EquityInEarningsAccountCode,
			AccountName: EquityInEarningsAccountName,
			Category:    CategoryEquityInEarnings,
			Amount:      earnings,
			ParentShare: earnings,
			NCIShare:    decimal.Zero,
		},
	}

	// The investment line is a debit; earnings only credit part of it. The
	// balance of the pickup sits in an equity reserve so the contribution
	// stays self-balancing.
	if reserve := investment.Sub(earnings); !reserve.IsZero() {
		lines = append(lines, ConsolidatedLine{
			AccountID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(EquityPickupAccountCode+member.CompanyID.String())),
			AccountCode: EquityPickupAccountCode,
			AccountName: EquityPickupAccountName,
			Category:    CategoryRetainedEarnings,
			Amount:      reserve,
			ParentShare: reserve,
			NCIShare:    decimal.Zero,
		})
	}

	return &MemberContribution{
		CompanyID:       member.CompanyID,
		Method:          MethodEquity,
		Lines:           lines,
		NetIncomeTotal:  earnings,
		NetIncomeParent: earnings,
		NetIncomeNCI:    decimal.Zero,
	}
}
