// Package team provides the team registry: the ordered agent set,
// role map, message log and solution/decision ledgers shared by the
// role manager, consensus builder and phase coordinator.
//
// The registry holds data and enforces invariants; it carries no
// policy. It also holds no locks: callers that mutate one team from
// multiple goroutines must serialize access themselves.
package team

import (
	"fmt"

	"github.com/forgelight/quorum/pkg/models"
)

// Member is one agent's standing within a team: the agent itself plus
// its role history and Primus fairness flag.
type Member struct {
	// Agent is the externally supplied agent.
	Agent models.Agent
	// CurrentRole is the role the agent holds now, empty if none.
	CurrentRole models.Role
	// PreviousRole is the role the agent held before the last
	// assignment, empty if none.
	PreviousRole models.Role
	// HasBeenPrimus is set when the agent serves as Primus and reset
	// once every agent on the team has served.
	HasBeenPrimus bool
}

// Name returns the member's agent name.
func (m *Member) Name() string {
	return m.Agent.Name()
}

// Expertise returns the member's expertise tags. A nil agent
// expertise list yields an empty slice, never a failure.
func (m *Member) Expertise() []string {
	tags := m.Agent.Expertise()
	if tags == nil {
		return []string{}
	}
	return tags
}

// Team is the registry for one non-hierarchical agent team.
type Team struct {
	name      string
	members   []*Member
	roleMap   map[models.Role]*Member
	messages  []models.Message
	opinions  []models.Opinion
	solutions map[string][]map[string]any
	decisions map[string]*models.Decision
}

// New creates an empty team with the given name.
func New(name string) *Team {
	return &Team{
		name:      name,
		roleMap:   make(map[models.Role]*Member),
		solutions: make(map[string][]map[string]any),
		decisions: make(map[string]*models.Decision),
	}
}

// Name returns the team's name.
func (t *Team) Name() string {
	return t.name
}

// AddAgent registers an agent as a team member. Encounter order is
// preserved; it is the tiebreak order for role election. Adding an
// agent whose name is already registered is an error.
func (t *Team) AddAgent(agent models.Agent) error {
	if agent == nil || agent.Name() == "" {
		return fmt.Errorf("add agent: agent must have a name")
	}
	if t.Member(agent.Name()) != nil {
		return fmt.Errorf("add agent: %q is already a team member", agent.Name())
	}
	t.members = append(t.members, &Member{Agent: agent})
	return nil
}

// Members returns the team's members in encounter order.
func (t *Team) Members() []*Member {
	return t.members
}

// Member returns the member with the given agent name, or nil.
func (t *Team) Member(name string) *Member {
	for _, m := range t.members {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// Size returns the number of team members.
func (t *Team) Size() int {
	return len(t.members)
}

// RoleHolder returns the member currently holding the role, or nil.
func (t *Team) RoleHolder(role models.Role) *Member {
	return t.roleMap[role]
}

// SetRole installs member as the holder of role, releasing any role
// the member held before and any previous holder of the role. This
// preserves the invariants: at most one agent per role, at most one
// role per agent.
func (t *Team) SetRole(role models.Role, member *Member) {
	if prev := t.roleMap[role]; prev != nil && prev != member {
		prev.PreviousRole = prev.CurrentRole
		prev.CurrentRole = ""
	}
	if member.CurrentRole != "" && member.CurrentRole != role {
		delete(t.roleMap, member.CurrentRole)
	}
	member.PreviousRole = member.CurrentRole
	member.CurrentRole = role
	t.roleMap[role] = member
	if role == models.RolePrimus {
		member.HasBeenPrimus = true
	}
}

// ClearRoles empties the role map, recording each member's released
// role as its previous role.
func (t *Team) ClearRoles() {
	for role, m := range t.roleMap {
		m.PreviousRole = m.CurrentRole
		m.CurrentRole = ""
		delete(t.roleMap, role)
	}
}

// Primus returns the member currently holding the Primus role, or nil.
func (t *Team) Primus() *Member {
	return t.roleMap[models.RolePrimus]
}

// AddOpinion appends an opinion to the opinion ledger. The most
// recent opinion per agent per task is that agent's current opinion.
func (t *Team) AddOpinion(op models.Opinion) {
	t.opinions = append(t.opinions, op)
}

// CurrentOpinions returns each member's current opinion on the task,
// in team order. Members with no opinion are omitted.
func (t *Team) CurrentOpinions(taskID string) []models.Opinion {
	latest := make(map[string]models.Opinion)
	for _, op := range t.opinions {
		if op.TaskID == taskID {
			latest[op.Agent] = op
		}
	}

	var current []models.Opinion
	for _, m := range t.members {
		if op, ok := latest[m.Name()]; ok {
			current = append(current, op)
		}
	}
	return current
}

// AddSolution appends a proposed solution to the task's solution
// ledger.
func (t *Team) AddSolution(taskID string, solution map[string]any) {
	t.solutions[taskID] = append(t.solutions[taskID], solution)
}

// Solutions returns the task's solution ledger in append order.
func (t *Team) Solutions(taskID string) []map[string]any {
	return t.solutions[taskID]
}

// RecordDecision appends a decision to the decision ledger. Recording
// a decision under an existing id is an error: the ledger is
// append-only except for the implementation fields, which are mutated
// through the tracked decision itself.
func (t *Team) RecordDecision(d *models.Decision) error {
	if d.ID == "" {
		return fmt.Errorf("record decision: decision has no id")
	}
	if _, exists := t.decisions[d.ID]; exists {
		return fmt.Errorf("record decision: decision %q already recorded", d.ID)
	}
	t.decisions[d.ID] = d
	return nil
}

// Decision returns the recorded decision with the given id, or nil.
func (t *Team) Decision(id string) *models.Decision {
	return t.decisions[id]
}

// Decisions returns every recorded decision. Order is unspecified.
func (t *Team) Decisions() []*models.Decision {
	out := make([]*models.Decision, 0, len(t.decisions))
	for _, d := range t.decisions {
		out = append(out, d)
	}
	return out
}
