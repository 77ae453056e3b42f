package consolidation

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
)

// RunInitiatedEvent is raised when a consolidation run is created
type RunInitiatedEvent struct {
	shared.BaseDomainEvent
	RunID       uuid.UUID `json:"run_id"`
	GroupID     uuid.UUID `json:"group_id"`
	PeriodRef   string    `json:"period_ref"`
	AsOfDate    time.Time `json:"as_of_date"`
	InitiatedBy uuid.UUID `json:"initiated_by"`
	Flags       RunFlags  `json:"flags"`
}

// EventType returns the event type name
func (e *RunInitiatedEvent) EventType() string {
	return "ConsolidationRunInitiated"
}

// NewRunInitiatedEvent creates a new RunInitiatedEvent
func NewRunInitiatedEvent(r *ConsolidationRun) *RunInitiatedEvent {
	return &RunInitiatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationRunInitiated", "ConsolidationRun", r.ID, r.TenantID),
		RunID:           r.ID,
		GroupID:         r.GroupID,
		PeriodRef:       r.PeriodRef,
		AsOfDate:        r.AsOfDate,
		InitiatedBy:     r.InitiatedBy,
		Flags:           r.Flags,
	}
}

// RunStepCompletedEvent is raised after each pipeline step succeeds
type RunStepCompletedEvent struct {
	shared.BaseDomainEvent
	RunID uuid.UUID `json:"run_id"`
	Step  RunStep   `json:"step"`
}

// EventType returns the event type name
func (e *RunStepCompletedEvent) EventType() string {
	return "ConsolidationRunStepCompleted"
}

// NewRunStepCompletedEvent creates a new RunStepCompletedEvent
func NewRunStepCompletedEvent(r *ConsolidationRun, step RunStep) *RunStepCompletedEvent {
	return &RunStepCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationRunStepCompleted", "ConsolidationRun", r.ID, r.TenantID),
		RunID:           r.ID,
		Step:            step,
	}
}

// RunCompletedEvent is raised when a run reaches Completed
type RunCompletedEvent struct {
	shared.BaseDomainEvent
	RunID        uuid.UUID `json:"run_id"`
	GroupID      uuid.UUID `json:"group_id"`
	PeriodRef    string    `json:"period_ref"`
	WarningCount int       `json:"warning_count"`
}

// EventType returns the event type name
func (e *RunCompletedEvent) EventType() string {
	return "ConsolidationRunCompleted"
}

// NewRunCompletedEvent creates a new RunCompletedEvent
func NewRunCompletedEvent(r *ConsolidationRun) *RunCompletedEvent {
	return &RunCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationRunCompleted", "ConsolidationRun", r.ID, r.TenantID),
		RunID:           r.ID,
		GroupID:         r.GroupID,
		PeriodRef:       r.PeriodRef,
		WarningCount:    len(r.Warnings),
	}
}

// RunFailedEvent is raised when a step failure terminates a run
type RunFailedEvent struct {
	shared.BaseDomainEvent
	RunID     uuid.UUID `json:"run_id"`
	GroupID   uuid.UUID `json:"group_id"`
	PeriodRef string    `json:"period_ref"`
	Step      RunStep   `json:"step"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *RunFailedEvent) EventType() string {
	return "ConsolidationRunFailed"
}

// NewRunFailedEvent creates a new RunFailedEvent
func NewRunFailedEvent(r *ConsolidationRun, step RunStep, reason string) *RunFailedEvent {
	return &RunFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationRunFailed", "ConsolidationRun", r.ID, r.TenantID),
		RunID:           r.ID,
		GroupID:         r.GroupID,
		PeriodRef:       r.PeriodRef,
		Step:            step,
		Reason:          reason,
	}
}

// RunCancelledEvent is raised when a run is cancelled
type RunCancelledEvent struct {
	shared.BaseDomainEvent
	RunID     uuid.UUID `json:"run_id"`
	GroupID   uuid.UUID `json:"group_id"`
	PeriodRef string    `json:"period_ref"`
}

// EventType returns the event type name
func (e *RunCancelledEvent) EventType() string {
	return "ConsolidationRunCancelled"
}

// NewRunCancelledEvent creates a new RunCancelledEvent
func NewRunCancelledEvent(r *ConsolidationRun) *RunCancelledEvent {
	return &RunCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConsolidationRunCancelled", "ConsolidationRun", r.ID, r.TenantID),
		RunID:           r.ID,
		GroupID:         r.GroupID,
		PeriodRef:       r.PeriodRef,
	}
}
