package domain

import "time"

// RunState enumerates orchestrator lifecycle states.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// PipelineStatus is the orchestrator's view of the current or last run.
type PipelineStatus struct {
	Status       RunState   `json:"status"`
	RunID        string     `json:"run_id,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	BriefingID   string     `json:"briefing_id,omitempty"`
}
