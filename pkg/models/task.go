package models

import "time"

// Task is the unit of work opinions, conflicts and decisions attach to.
type Task struct {
	// ID is the unique identifier for this task. Assigned on first use
	// if empty.
	ID string `json:"id"`
	// Description explains what the task is about.
	Description string `json:"description"`
	// Requirements lists optional constraints or acceptance notes.
	Requirements string `json:"requirements,omitempty"`
	// Phase tags the task with the cycle phase it belongs to.
	// Defaults to Expand when empty.
	Phase Phase `json:"phase,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Opinion is one agent's current position on a task. Only the most
// recent opinion per agent counts as current.
type Opinion struct {
	// Agent is the name of the agent holding this opinion.
	Agent string `json:"agent"`
	// TaskID is the task the opinion attaches to.
	TaskID string `json:"task_id"`
	// Text is the opinion itself.
	Text string `json:"text"`
	// Rationale explains why the agent holds this opinion.
	Rationale string `json:"rationale,omitempty"`
	// Timestamp is when the opinion was recorded.
	Timestamp time.Time `json:"timestamp"`
}
