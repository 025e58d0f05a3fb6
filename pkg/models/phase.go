package models

// Phase identifies one of the four ordered cycle phases.
type Phase string

const (
	// PhaseExpand generates diverse ideas and gathers knowledge.
	PhaseExpand Phase = "expand"
	// PhaseDifferentiate compares options and forms decision criteria.
	PhaseDifferentiate Phase = "differentiate"
	// PhaseRefine selects and elaborates the chosen option into a plan.
	PhaseRefine Phase = "refine"
	// PhaseRetrospect extracts learnings and produces the final report.
	PhaseRetrospect Phase = "retrospect"
)

// PhaseOrder is the fixed traversal order of a cycle. Progression
// within a cycle is strictly forward and never repeats a phase.
var PhaseOrder = []Phase{PhaseExpand, PhaseDifferentiate, PhaseRefine, PhaseRetrospect}

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// Index returns the phase's position in PhaseOrder, or -1 if unknown.
func (p Phase) Index() int {
	for i, ph := range PhaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p, or false if p is the last
// phase or unknown.
func (p Phase) Next() (Phase, bool) {
	i := p.Index()
	if i < 0 || i == len(PhaseOrder)-1 {
		return "", false
	}
	return PhaseOrder[i+1], true
}

// ParsePhase converts a string into a Phase, reporting whether the
// string names a known phase.
func ParsePhase(s string) (Phase, bool) {
	p := Phase(s)
	return p, p.Valid()
}
