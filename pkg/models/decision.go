package models

import "time"

// Decision methods.
const (
	// MethodMajorityOpinion marks a decision made by picking the most
	// frequent opinion when no conflicts were detected.
	MethodMajorityOpinion = "majority_opinion"
	// MethodConflictResolutionSynthesis marks a decision produced by
	// weighted-expertise synthesis of conflicting opinions.
	MethodConflictResolutionSynthesis = "conflict_resolution_synthesis"
)

// Decision is one durable consensus outcome for a task. Decisions are
// append-only: once recorded, only the implementation fields may
// change, and Implemented only ever moves from false to true.
type Decision struct {
	// ID is the decision identifier: task id plus timestamp.
	ID string `json:"id"`
	// TaskID references the task the decision resolves.
	TaskID string `json:"task_id"`
	// Method is how the decision was reached.
	Method string `json:"method"`
	// Opinions are the considered opinions, in team order.
	Opinions []Opinion `json:"opinions"`
	// Text is the synthesis or majority text.
	Text string `json:"text"`
	// ConflictCount is how many conflicts were resolved.
	ConflictCount int `json:"conflict_count"`
	// Contributors are the names of agents whose opinions counted.
	Contributors []string `json:"contributors"`
	// Implemented reports whether the decision has been carried out.
	// Monotonic: never reset to false.
	Implemented bool `json:"implemented"`
	// ImplementationDetails describes how the decision was carried
	// out, if recorded.
	ImplementationDetails string `json:"implementation_details,omitempty"`
	// Explanation is the generated stakeholder explanation.
	Explanation string `json:"explanation"`
	// Synthesis holds the full synthesis record for synthesis-method
	// decisions.
	Synthesis *Synthesis `json:"synthesis,omitempty"`
	// Timestamp is when the decision was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// ConsensusResult is the value returned to the caller of a consensus
// round.
type ConsensusResult struct {
	// Method is how consensus was reached.
	Method string `json:"method"`
	// Contributors are the agents whose opinions were considered.
	Contributors []string `json:"contributors"`
	// Text is the resolved decision text.
	Text string `json:"text"`
	// DecisionID references the recorded decision.
	DecisionID string `json:"decision_id"`
	// ConflictCount is how many conflicts were identified.
	ConflictCount int `json:"conflict_count"`
	// Explanation is the generated stakeholder explanation.
	Explanation string `json:"explanation"`
	// Timestamp is when consensus was reached.
	Timestamp time.Time `json:"timestamp"`
}
