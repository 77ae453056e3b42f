package consolidation

import (
	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
)

// RuleCreatedEvent is raised when a new elimination rule is created
type RuleCreatedEvent struct {
	shared.BaseDomainEvent
	RuleID   uuid.UUID       `json:"rule_id"`
	GroupID  uuid.UUID       `json:"group_id"`
	Name     string          `json:"name"`
	RuleType EliminationType `json:"rule_type"`
	Priority int             `json:"priority"`
}

// EventType returns the event type name
func (e *RuleCreatedEvent) EventType() string {
	return "EliminationRuleCreated"
}

// NewRuleCreatedEvent creates a new RuleCreatedEvent
func NewRuleCreatedEvent(r *EliminationRule) *RuleCreatedEvent {
	return &RuleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EliminationRuleCreated", "EliminationRule", r.ID, r.TenantID),
		RuleID:          r.ID,
		GroupID:         r.GroupID,
		Name:            r.Name,
		RuleType:        r.Type,
		Priority:        r.Priority,
	}
}

// RuleActivationChangedEvent is raised when a rule is activated or deactivated
type RuleActivationChangedEvent struct {
	shared.BaseDomainEvent
	RuleID   uuid.UUID `json:"rule_id"`
	GroupID  uuid.UUID `json:"group_id"`
	IsActive bool      `json:"is_active"`
}

// EventType returns the event type name
func (e *RuleActivationChangedEvent) EventType() string {
	return "EliminationRuleActivationChanged"
}

// NewRuleActivationChangedEvent creates a new RuleActivationChangedEvent
func NewRuleActivationChangedEvent(r *EliminationRule) *RuleActivationChangedEvent {
	return &RuleActivationChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EliminationRuleActivationChanged", "EliminationRule", r.ID, r.TenantID),
		RuleID:          r.ID,
		GroupID:         r.GroupID,
		IsActive:        r.IsActive,
	}
}

// RuleReprioritizedEvent is raised when a rule's evaluation order changes
type RuleReprioritizedEvent struct {
	shared.BaseDomainEvent
	RuleID      uuid.UUID `json:"rule_id"`
	GroupID     uuid.UUID `json:"group_id"`
	OldPriority int       `json:"old_priority"`
	NewPriority int       `json:"new_priority"`
}

// EventType returns the event type name
func (e *RuleReprioritizedEvent) EventType() string {
	return "EliminationRuleReprioritized"
}

// NewRuleReprioritizedEvent creates a new RuleReprioritizedEvent
func NewRuleReprioritizedEvent(r *EliminationRule, oldPriority int) *RuleReprioritizedEvent {
	return &RuleReprioritizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EliminationRuleReprioritized", "EliminationRule", r.ID, r.TenantID),
		RuleID:          r.ID,
		GroupID:         r.GroupID,
		OldPriority:     oldPriority,
		NewPriority:     r.Priority,
	}
}
