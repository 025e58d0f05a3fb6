package models

// ConflictType categorizes why two opinions diverge.
type ConflictType string

const (
	// ConflictTradeOff marks opposing recommendations that trade one
	// quality against another.
	ConflictTradeOff ConflictType = "trade_off"
	// ConflictResourceAllocation marks disagreement over budget, time
	// or capacity.
	ConflictResourceAllocation ConflictType = "resource_allocation"
	// ConflictImplementation marks divergent named approaches to the
	// same goal.
	ConflictImplementation ConflictType = "implementation"
	// ConflictConceptual marks disagreement about the problem itself.
	ConflictConceptual ConflictType = "conceptual"
)

// Valid returns true if the conflict type is a known value.
func (c ConflictType) Valid() bool {
	switch c {
	case ConflictTradeOff, ConflictResourceAllocation, ConflictImplementation, ConflictConceptual:
		return true
	default:
		return false
	}
}

// Severity bands. High is anything above 0.7; medium starts at 0.4.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// SeverityBand maps a severity value in [0,1] to its band label.
func SeverityBand(severity float64) string {
	switch {
	case severity > 0.7:
		return SeverityHigh
	case severity >= 0.4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// PriorityForSeverity derives the integer priority for a severity.
// High-severity conflicts always map to priority 2 or better.
func PriorityForSeverity(severity float64) int {
	switch {
	case severity >= 0.9:
		return 1
	case severity > 0.7:
		return 2
	case severity >= 0.4:
		return 3
	default:
		return 4
	}
}

// Conflict records a divergence between two agents' current opinions
// on the same task. The agent pair is unordered.
type Conflict struct {
	// TaskID is the task the conflicting opinions attach to.
	TaskID string `json:"task_id"`
	// AgentA and AgentB are the two agents in conflict.
	AgentA string `json:"agent_a"`
	AgentB string `json:"agent_b"`
	// OpinionA and OpinionB are the conflicting opinion texts.
	OpinionA string `json:"opinion_a"`
	OpinionB string `json:"opinion_b"`
	// RationaleA and RationaleB are the agents' stated rationales.
	RationaleA string `json:"rationale_a,omitempty"`
	RationaleB string `json:"rationale_b,omitempty"`
	// Type categorizes the disagreement.
	Type ConflictType `json:"type"`
	// Severity is the conflict's severity in [0,1].
	Severity float64 `json:"severity"`
	// Priority is derived from Severity; lower is more urgent.
	Priority int `json:"priority"`
	// Assumptions documents each discipline's implicit assumptions
	// surfaced by the conflict, keyed by discipline name.
	Assumptions map[string]string `json:"assumptions,omitempty"`
}

// Involves returns true if the named agent is one of the pair.
func (c Conflict) Involves(agent string) bool {
	return c.AgentA == agent || c.AgentB == agent
}
