package models

// Role identifies the function an agent currently serves on a team.
// The set is closed: exactly five roles exist, and at most one agent
// holds each role at any instant.
type Role string

const (
	// RolePrimus is the transiently elected team lead.
	RolePrimus Role = "primus"
	// RoleWorker carries out the bulk of implementation work.
	RoleWorker Role = "worker"
	// RoleSupervisor reviews work and watches for process problems.
	RoleSupervisor Role = "supervisor"
	// RoleDesigner shapes the structure and interfaces of the solution.
	RoleDesigner Role = "designer"
	// RoleEvaluator assesses outcomes against the task's requirements.
	RoleEvaluator Role = "evaluator"
)

// RoleOrder is the total order over roles. Assignment always fills
// roles in this order, starting with Primus.
var RoleOrder = []Role{RolePrimus, RoleWorker, RoleSupervisor, RoleDesigner, RoleEvaluator}

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RolePrimus, RoleWorker, RoleSupervisor, RoleDesigner, RoleEvaluator:
		return true
	default:
		return false
	}
}

// Agent is implemented by anything that can serve on a team.
// Expertise returns the agent's ordered expertise tags; an empty
// slice is valid and simply scores zero during role election.
type Agent interface {
	Name() string
	Expertise() []string
}
