package consolidation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

// ConsolidationMethod determines how a member's balances enter the
// consolidated statements
type ConsolidationMethod string

const (
	MethodFull          ConsolidationMethod = "FULL"          // Line-by-line at 100%, NCI carved out of equity and income
	MethodProportionate ConsolidationMethod = "PROPORTIONATE" // Line-by-line at the ownership share, no NCI
	MethodEquity        ConsolidationMethod = "EQUITY"        // Single investment line plus share of earnings
)

// IsValid checks if the method is a valid ConsolidationMethod
func (m ConsolidationMethod) IsValid() bool {
	switch m {
	case MethodFull, MethodProportionate, MethodEquity:
		return true
	}
	return false
}

// String returns the string representation
func (m ConsolidationMethod) String() string {
	return string(m)
}

// AllConsolidationMethods returns all valid consolidation methods
func AllConsolidationMethods() []ConsolidationMethod {
	return []ConsolidationMethod{MethodFull, MethodProportionate, MethodEquity}
}

// ConsolidationMember is a subsidiary or associate inside a group. It is an
// entity within the ConsolidationGroup aggregate; a company appears at most
// once per group and the parent company is never on the roster.
type ConsolidationMember struct {
	ID                  uuid.UUID              `json:"id"`
	CompanyID           uuid.UUID              `json:"company_id"`
	CompanyName         string                 `json:"company_name"`
	OwnershipPercentage valueobject.Percentage `json:"ownership_percentage"`
	Method              ConsolidationMethod    `json:"method"`
	FunctionalCurrency  valueobject.Currency   `json:"functional_currency"`
	AcquisitionDate     *time.Time             `json:"acquisition_date,omitempty"`
	AddedAt             time.Time              `json:"added_at"`
}

// ConsolidationGroup is the aggregate root for a parent company plus its
// subsidiaries, treated as one reporting entity.
type ConsolidationGroup struct {
	shared.TenantAggregateRoot
	Name              string                `json:"name"`
	ReportingCurrency valueobject.Currency  `json:"reporting_currency"`
	DefaultMethod     ConsolidationMethod   `json:"default_method"`
	ParentCompanyID   uuid.UUID             `json:"parent_company_id"`
	IsActive          bool                  `json:"is_active"`
	Members           []ConsolidationMember `json:"members"`
	DeactivatedAt     *time.Time            `json:"deactivated_at,omitempty"`
}

// NewConsolidationGroup creates a new consolidation group
func NewConsolidationGroup(
	tenantID uuid.UUID,
	name string,
	reportingCurrency valueobject.Currency,
	defaultMethod ConsolidationMethod,
	parentCompanyID uuid.UUID,
) (*ConsolidationGroup, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_GROUP_NAME", "Group name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_GROUP_NAME", "Group name cannot exceed 100 characters")
	}
	if !reportingCurrency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Reporting currency %q is not a valid currency code", reportingCurrency))
	}
	if !defaultMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Default consolidation method is not valid")
	}
	if parentCompanyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent company ID cannot be empty")
	}

	g := &ConsolidationGroup{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		ReportingCurrency:   reportingCurrency,
		DefaultMethod:       defaultMethod,
		ParentCompanyID:     parentCompanyID,
		IsActive:            true,
		Members:             make([]ConsolidationMember, 0),
	}

	g.AddDomainEvent(NewGroupCreatedEvent(g))

	return g, nil
}

// Rename updates the group name
func (g *ConsolidationGroup) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_GROUP_NAME", "Group name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_GROUP_NAME", "Group name cannot exceed 100 characters")
	}
	g.Name = name
	g.Touch()
	g.IncrementVersion()
	return nil
}

// Deactivate takes the group out of service. Completed runs remain queryable;
// new runs can no longer be initiated.
func (g *ConsolidationGroup) Deactivate() error {
	if !g.IsActive {
		return shared.NewDomainError("GROUP_INACTIVE", "Consolidation group is already inactive")
	}
	now := time.Now()
	g.IsActive = false
	g.DeactivatedAt = &now
	g.Touch()
	g.IncrementVersion()

	g.AddDomainEvent(NewGroupDeactivatedEvent(g))

	return nil
}

// AddMember adds a subsidiary or associate to the roster
func (g *ConsolidationGroup) AddMember(
	companyID uuid.UUID,
	companyName string,
	ownership valueobject.Percentage,
	method ConsolidationMethod,
	functionalCurrency valueobject.Currency,
	acquisitionDate *time.Time,
) (*ConsolidationMember, error) {
	if !g.IsActive {
		return nil, ErrGroupInactive
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if companyID == g.ParentCompanyID {
		return nil, shared.NewDomainError("PARENT_NOT_MEMBER", "Parent company is implicitly consolidated and cannot be added as a member")
	}
	if companyName == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Consolidation method is not valid")
	}
	if !functionalCurrency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Functional currency %q is not a valid currency code", functionalCurrency))
	}
	if g.FindMember(companyID) != nil {
		return nil, ErrDuplicateMember
	}

	member := ConsolidationMember{
		ID:                  uuid.New(),
		CompanyID:           companyID,
		CompanyName:         companyName,
		OwnershipPercentage: ownership,
		Method:              method,
		FunctionalCurrency:  functionalCurrency,
		AcquisitionDate:     acquisitionDate,
		AddedAt:             time.Now(),
	}
	g.Members = append(g.Members, member)
	g.Touch()
	g.IncrementVersion()

	g.AddDomainEvent(NewMemberAddedEvent(g, &member))

	return &member, nil
}

// UpdateMember changes a member's stake or method
func (g *ConsolidationGroup) UpdateMember(
	companyID uuid.UUID,
	ownership valueobject.Percentage,
	method ConsolidationMethod,
) (*ConsolidationMember, error) {
	if !g.IsActive {
		return nil, ErrGroupInactive
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Consolidation method is not valid")
	}
	for i := range g.Members {
		if g.Members[i].CompanyID == companyID {
			g.Members[i].OwnershipPercentage = ownership
			g.Members[i].Method = method
			g.Touch()
			g.IncrementVersion()
			return &g.Members[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// RemoveMember drops a company from the roster
func (g *ConsolidationGroup) RemoveMember(companyID uuid.UUID) error {
	if !g.IsActive {
		return ErrGroupInactive
	}
	for i := range g.Members {
		if g.Members[i].CompanyID == companyID {
			removed := g.Members[i]
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			g.Touch()
			g.IncrementVersion()
			g.AddDomainEvent(NewMemberRemovedEvent(g, &removed))
			return nil
		}
	}
	return shared.ErrNotFound
}

// FindMember returns the member for a company, or nil
func (g *ConsolidationGroup) FindMember(companyID uuid.UUID) *ConsolidationMember {
	for i := range g.Members {
		if g.Members[i].CompanyID == companyID {
			return &g.Members[i]
		}
	}
	return nil
}

// MemberCount returns the number of roster members (parent excluded)
func (g *ConsolidationGroup) MemberCount() int {
	return len(g.Members)
}
