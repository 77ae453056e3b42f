package consolidation

import (
	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

// GroupCreatedEvent is raised when a new consolidation group is created
type GroupCreatedEvent struct {
	shared.BaseDomainEvent
	GroupID           uuid.UUID            `json:"group_id"`
	Name              string               `json:"name"`
	ReportingCurrency valueobject.Currency `json:"reporting_currency"`
	ParentCompanyID   uuid.UUID            `json:"parent_company_id"`
}

// EventType returns the event type name
func (e *GroupCreatedEvent) EventType() string {
	return "ConsolidationGroupCreated"
}

// NewGroupCreatedEvent creates a new GroupCreatedEvent
func NewGroupCreatedEvent(g *ConsolidationGroup) *GroupCreatedEvent {
	return &GroupCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("ConsolidationGroupCreated", "ConsolidationGroup", g.ID, g.TenantID),
		GroupID:           g.ID,
		Name:              g.Name,
		ReportingCurrency: g.ReportingCurrency,
		ParentCompanyID:   g.ParentCompanyID,
	}
}

// GroupDeactivatedEvent is raised when a group is taken out of service
type GroupDeactivatedEvent struct {
	shared.BaseDomainEvent
	GroupID uuid.UUID `json:"group_id"`
	Name    string    `json:"name"`
}

// EventType returns the event type name
func (e *GroupDeactivatedEvent) EventType() string {
	return "ConsolidationGroupDeactivated"
}

// NewGroupDeactivatedEvent creates a new GroupDeactivatedEvent
func NewGroupDeactivatedEvent(g *ConsolidationGroup) *GroupDeactivatedEvent {
	return &GroupDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationGroupDeactivated", "ConsolidationGroup", g.ID, g.TenantID),
		GroupID:         g.ID,
		Name:            g.Name,
	}
}

// MemberAddedEvent is raised when a company joins the roster
type MemberAddedEvent struct {
	shared.BaseDomainEvent
	GroupID             uuid.UUID              `json:"group_id"`
	CompanyID           uuid.UUID              `json:"company_id"`
	CompanyName         string                 `json:"company_name"`
	OwnershipPercentage valueobject.Percentage `json:"ownership_percentage"`
	Method              ConsolidationMethod    `json:"method"`
}

// EventType returns the event type name
func (e *MemberAddedEvent) EventType() string {
	return "ConsolidationMemberAdded"
}

// NewMemberAddedEvent creates a new MemberAddedEvent
func NewMemberAddedEvent(g *ConsolidationGroup, m *ConsolidationMember) *MemberAddedEvent {
	return &MemberAddedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent("ConsolidationMemberAdded", "ConsolidationGroup", g.ID, g.TenantID),
		GroupID:             g.ID,
		CompanyID:           m.CompanyID,
		CompanyName:         m.CompanyName,
		OwnershipPercentage: m.OwnershipPercentage,
		Method:              m.Method,
	}
}

// MemberRemovedEvent is raised when a company leaves the roster
type MemberRemovedEvent struct {
	shared.BaseDomainEvent
	GroupID   uuid.UUID `json:"group_id"`
	CompanyID uuid.UUID `json:"company_id"`
}

// EventType returns the event type name
func (e *MemberRemovedEvent) EventType() string {
	return "ConsolidationMemberRemoved"
}

// NewMemberRemovedEvent creates a new MemberRemovedEvent
func NewMemberRemovedEvent(g *ConsolidationGroup, m *ConsolidationMember) *MemberRemovedEvent {
	return &MemberRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationMemberRemoved", "ConsolidationGroup", g.ID, g.TenantID),
		GroupID:         g.ID,
		CompanyID:       m.CompanyID,
	}
}
