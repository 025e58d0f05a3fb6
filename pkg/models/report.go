package models

import "time"

// PhaseResult is the persisted outcome of one phase execution within
// a cycle.
type PhaseResult struct {
	// CycleID identifies the cycle this result belongs to.
	CycleID string `json:"cycle_id"`
	// TaskID identifies the task the cycle is working.
	TaskID string `json:"task_id"`
	// Phase is the phase that produced this result.
	Phase Phase `json:"phase"`
	// Outputs holds the phase's structured outputs keyed by name.
	Outputs map[string]any `json:"outputs"`
	// CompletedAt is when the phase handler finished.
	CompletedAt time.Time `json:"completed_at"`
}

// FinalReport is the structured report assembled when Retrospect
// completes, closing the cycle.
type FinalReport struct {
	// CycleID identifies the cycle the report closes.
	CycleID string `json:"cycle_id"`
	// TaskID identifies the task the cycle worked.
	TaskID string `json:"task_id"`
	// TaskSummary restates the task.
	TaskSummary string `json:"task_summary"`
	// PhaseSummaries summarizes each phase's outcome, keyed by phase.
	PhaseSummaries map[Phase]string `json:"phase_summaries"`
	// ChosenPlan is the implementation plan selected during Refine.
	ChosenPlan []string `json:"chosen_plan,omitempty"`
	// NextSteps lists follow-up actions surfaced during Retrospect.
	NextSteps []string `json:"next_steps,omitempty"`
	// Considerations lists open concerns for future cycles.
	Considerations []string `json:"considerations,omitempty"`
	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`
}
