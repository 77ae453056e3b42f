package consolidation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/shared"
)

// RunStatus is the lifecycle state of a consolidation run
type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
	RunStatusCancelled  RunStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RunStatus
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusInProgress, RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s RunStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the run can no longer change state
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// runTransitions is the transition table validated on every status mutation,
// so illegal transitions (e.g. Completed -> InProgress) are unrepresentable.
var runTransitions = map[RunStatus][]RunStatus{
	RunStatusPending:    {RunStatusInProgress, RunStatusCancelled, RunStatusFailed},
	RunStatusInProgress: {RunStatusCompleted, RunStatusFailed, RunStatusCancelled},
	RunStatusCompleted:  {},
	RunStatusFailed:     {},
	RunStatusCancelled:  {},
}

// CanTransitionTo reports whether the transition table allows the move
func (s RunStatus) CanTransitionTo(target RunStatus) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// RunStep names one stage of the consolidation pipeline
type RunStep string

const (
	StepCollecting  RunStep = "COLLECTING"
	StepTranslating RunStep = "TRANSLATING"
	StepEliminating RunStep = "ELIMINATING"
	StepAggregating RunStep = "AGGREGATING"
	StepValidating  RunStep = "VALIDATING"
)

// String returns the string representation
func (s RunStep) String() string {
	return string(s)
}

// RunSteps returns the pipeline steps in execution order
func RunSteps() []RunStep {
	return []RunStep{StepCollecting, StepTranslating, StepEliminating, StepAggregating, StepValidating}
}

// StepStatus is the state of a single pipeline step
type StepStatus string

const (
	StepStatusNotStarted StepStatus = "NOT_STARTED"
	StepStatusInProgress StepStatus = "IN_PROGRESS"
	StepStatusSucceeded  StepStatus = "SUCCEEDED"
	StepStatusFailed     StepStatus = "FAILED"
)

// String returns the string representation
func (s StepStatus) String() string {
	return string(s)
}

// StepRecord preserves diagnostic granularity when a run partially fails
type StepRecord struct {
	Step        RunStep    `json:"step"`
	Status      StepStatus `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// StepRecords is stored as JSONB through GORM
type StepRecords []StepRecord

// Value implements driver.Valuer for JSONB storage
func (r StepRecords) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB retrieval
func (r *StepRecords) Scan(value interface{}) error {
	if value == nil {
		*r = StepRecords{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan StepRecords: unsupported type")
	}
	if len(bytes) == 0 {
		*r = StepRecords{}
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// RunFlags are the operator-requested options for a run
type RunFlags struct {
	SkipValidation                 bool `json:"skip_validation"`
	ContinueOnWarnings             bool `json:"continue_on_warnings"`
	IncludeEquityMethodInvestments bool `json:"include_equity_method_investments"`
	ForceRegeneration              bool `json:"force_regeneration"`
}

// Value implements driver.Valuer for JSONB storage
func (f RunFlags) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB retrieval
func (f *RunFlags) Scan(value interface{}) error {
	if value == nil {
		*f = RunFlags{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan RunFlags: unsupported type")
	}
	return json.Unmarshal(bytes, f)
}

// RunWarnings is a list of non-fatal findings persisted with the run
type RunWarnings []string

// Value implements driver.Valuer for JSONB storage
func (w RunWarnings) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner for JSONB retrieval
func (w *RunWarnings) Scan(value interface{}) error {
	if value == nil {
		*w = RunWarnings{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan RunWarnings: unsupported type")
	}
	if len(bytes) == 0 {
		*w = RunWarnings{}
		return nil
	}
	return json.Unmarshal(bytes, w)
}

// ConsolidationRun is the aggregate root tracking one end-to-end
// consolidation. Only the orchestrator mutates it; terminal runs are retained
// permanently as the audit trail.
type ConsolidationRun struct {
	shared.TenantAggregateRoot
	GroupID         uuid.UUID   `json:"group_id"`
	PeriodRef       string      `json:"period_ref"`
	AsOfDate        time.Time   `json:"as_of_date"`
	Status          RunStatus   `json:"status"`
	Steps           StepRecords `json:"steps"`
	InitiatedBy     uuid.UUID   `json:"initiated_by"`
	Flags           RunFlags    `json:"flags"`
	Warnings        RunWarnings `json:"warnings"`
	FailureStep     *RunStep    `json:"failure_step,omitempty"`
	FailureReason   string      `json:"failure_reason,omitempty"`
	CancelRequested bool        `json:"cancel_requested"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	FinishedAt      *time.Time  `json:"finished_at,omitempty"`
}

// NewConsolidationRun creates a run in Pending state with all steps NotStarted
func NewConsolidationRun(
	tenantID, groupID uuid.UUID,
	periodRef string,
	asOfDate time.Time,
	initiatedBy uuid.UUID,
	flags RunFlags,
) (*ConsolidationRun, error) {
	if groupID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_GROUP", "Group ID cannot be empty")
	}
	if periodRef == "" {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period reference cannot be empty")
	}
	if asOfDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_AS_OF_DATE", "As-of date is required")
	}
	if initiatedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INITIATOR", "Initiator is required")
	}

	steps := make(StepRecords, 0, len(RunSteps()))
	for _, s := range RunSteps() {
		steps = append(steps, StepRecord{Step: s, Status: StepStatusNotStarted})
	}

	run := &ConsolidationRun{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		GroupID:             groupID,
		PeriodRef:           periodRef,
		AsOfDate:            asOfDate,
		Status:              RunStatusPending,
		Steps:               steps,
		InitiatedBy:         initiatedBy,
		Flags:               flags,
		Warnings:            RunWarnings{},
	}

	run.AddDomainEvent(NewRunInitiatedEvent(run))

	return run, nil
}

// transition validates and applies a status change against the transition table
func (r *ConsolidationRun) transition(target RunStatus) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_RUN_TRANSITION",
			fmt.Sprintf("Run cannot move from %s to %s", r.Status, target))
	}
	r.Status = target
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Start moves the run from Pending into InProgress
func (r *ConsolidationRun) Start() error {
	if err := r.transition(RunStatusInProgress); err != nil {
		return err
	}
	now := time.Now()
	r.StartedAt = &now
	return nil
}

// stepRecord returns the record for a step, or nil
func (r *ConsolidationRun) stepRecord(step RunStep) *StepRecord {
	for i := range r.Steps {
		if r.Steps[i].Step == step {
			return &r.Steps[i]
		}
	}
	return nil
}

// StepStatusOf returns the recorded status for a step
func (r *ConsolidationRun) StepStatusOf(step RunStep) StepStatus {
	if rec := r.stepRecord(step); rec != nil {
		return rec.Status
	}
	return StepStatusNotStarted
}

// BeginStep marks a pipeline step as running. Steps execute strictly in
// order; beginning a step requires the run to be InProgress and every earlier
// step to have succeeded.
func (r *ConsolidationRun) BeginStep(step RunStep) error {
	if r.Status != RunStatusInProgress {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot begin step %s while run is %s", step, r.Status))
	}
	for _, s := range RunSteps() {
		if s == step {
			break
		}
		if r.StepStatusOf(s) != StepStatusSucceeded {
			return shared.NewDomainError("STEP_ORDER_VIOLATION",
				fmt.Sprintf("Step %s cannot begin before %s has succeeded", step, s))
		}
	}
	rec := r.stepRecord(step)
	if rec == nil {
		return shared.NewDomainError("UNKNOWN_STEP", fmt.Sprintf("Unknown pipeline step %s", step))
	}
	if rec.Status != StepStatusNotStarted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Step %s has already started", step))
	}
	now := time.Now()
	rec.Status = StepStatusInProgress
	rec.StartedAt = &now
	r.Touch()
	r.IncrementVersion()
	return nil
}

// CompleteStep marks a running step as succeeded
func (r *ConsolidationRun) CompleteStep(step RunStep) error {
	rec := r.stepRecord(step)
	if rec == nil || rec.Status != StepStatusInProgress {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Step %s is not in progress", step))
	}
	now := time.Now()
	rec.Status = StepStatusSucceeded
	rec.CompletedAt = &now
	r.Touch()
	r.IncrementVersion()
	r.AddDomainEvent(NewRunStepCompletedEvent(r, step))
	return nil
}

// FailStep records a step failure and moves the run to Failed. All step
// statuses recorded so far are retained.
func (r *ConsolidationRun) FailStep(step RunStep, reason string) error {
	rec := r.stepRecord(step)
	if rec == nil {
		return shared.NewDomainError("UNKNOWN_STEP", fmt.Sprintf("Unknown pipeline step %s", step))
	}
	now := time.Now()
	rec.Status = StepStatusFailed
	rec.CompletedAt = &now
	rec.Error = reason
	r.FailureStep = &step
	r.FailureReason = reason
	if err := r.transition(RunStatusFailed); err != nil {
		return err
	}
	r.FinishedAt = &now
	r.AddDomainEvent(NewRunFailedEvent(r, step, reason))
	return nil
}

// Complete moves the run to Completed once every step has succeeded
func (r *ConsolidationRun) Complete() error {
	for _, s := range RunSteps() {
		if r.StepStatusOf(s) != StepStatusSucceeded {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot complete run while step %s is %s", s, r.StepStatusOf(s)))
		}
	}
	if err := r.transition(RunStatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	r.FinishedAt = &now
	r.AddDomainEvent(NewRunCompletedEvent(r))
	return nil
}

// RequestCancel flags the run for cancellation. The orchestrator honors the
// request at the next step boundary; steps are not preempted mid-computation.
func (r *ConsolidationRun) RequestCancel() error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel run in terminal state %s", r.Status))
	}
	r.CancelRequested = true
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Cancel moves the run to Cancelled
func (r *ConsolidationRun) Cancel() error {
	if err := r.transition(RunStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	r.FinishedAt = &now
	r.AddDomainEvent(NewRunCancelledEvent(r))
	return nil
}

// Supersede cancels a non-terminal run displaced by a force-regenerated one
func (r *ConsolidationRun) Supersede(byRunID uuid.UUID) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot supersede run in terminal state %s", r.Status))
	}
	r.AddWarning(fmt.Sprintf("superseded by run %s", byRunID))
	return r.Cancel()
}

// AddWarning records a non-fatal finding
func (r *ConsolidationRun) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
	r.Touch()
}

// IsDeletable returns true for runs the API may delete
func (r *ConsolidationRun) IsDeletable() bool {
	return r.Status == RunStatusPending || r.Status == RunStatusFailed
}

// Duration returns the wall-clock run time, zero until started
func (r *ConsolidationRun) Duration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.FinishedAt != nil {
		end = *r.FinishedAt
	}
	return end.Sub(*r.StartedAt)
}
