package roles

import (
	"errors"
	"fmt"

	"github.com/forgelight/quorum/internal/team"
	"github.com/forgelight/quorum/pkg/models"
)

// ErrInvalidRole indicates an assignment named an unknown role or an
// agent that is not a team member.
var ErrInvalidRole = errors.New("invalid role assignment")

// ErrNotEnoughAgents indicates an operation that needs at least two
// team members was called on a smaller team.
var ErrNotEnoughAgents = errors.New("operation requires at least two agents")

// Manager computes and mutates a team's role map. It shares the
// team's role state by reference and holds no locks of its own;
// callers serialize concurrent mutations per team.
type Manager struct {
	team *team.Team
}

// NewManager creates a role manager for the given team.
func NewManager(t *team.Team) *Manager {
	return &Manager{team: t}
}

// Assign installs an explicit role mapping. Every named role must be
// valid and every named agent must be a team member; a violation
// leaves the role map unchanged. A nil mapping performs automatic
// assignment instead.
func (m *Manager) Assign(mapping map[models.Role]string) error {
	if mapping == nil {
		return m.AutoAssign()
	}

	// Validate before any mutation.
	members := make(map[models.Role]*team.Member, len(mapping))
	seen := make(map[string]models.Role, len(mapping))
	for role, agent := range mapping {
		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidRole, role)
		}
		member := m.team.Member(agent)
		if member == nil {
			return fmt.Errorf("%w: agent %q is not a team member", ErrInvalidRole, agent)
		}
		if _, dup := seen[agent]; dup {
			return fmt.Errorf("%w: agent %q named for multiple roles", ErrInvalidRole, agent)
		}
		seen[agent] = role
		members[role] = member
	}

	m.team.ClearRoles()
	for _, role := range models.RoleOrder {
		if member, ok := members[role]; ok {
			m.team.SetRole(role, member)
		}
	}
	return nil
}

// AutoAssign performs automatic assignment: it elects a Primus with
// fairness (preferring agents that have not yet served) and fills the
// remaining roles in fixed role order from the remaining agents in
// team order.
func (m *Manager) AutoAssign() error {
	return m.assignWithPrimus(nil)
}

// AssignForPhase tailors the role map to a phase: it elects the
// Primus by expertise against the task in that phase's context, then
// fills the remaining roles in fixed order from the remaining agents
// in team order.
func (m *Manager) AssignForPhase(phase models.Phase, task *models.Task) error {
	if !phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidRole, phase)
	}
	tailored := models.Task{}
	if task != nil {
		tailored = *task
	}
	tailored.Phase = phase
	return m.assignWithPrimus(&tailored)
}

// assignWithPrimus elects a Primus for the task (nil scores everyone
// equally) and assigns the remaining roles in order.
func (m *Manager) assignWithPrimus(task *models.Task) error {
	if m.team.Size() == 0 {
		return fmt.Errorf("%w: team has no members", ErrInvalidRole)
	}

	primus, err := m.SelectPrimusByExpertise(task)
	if err != nil {
		return err
	}

	m.team.ClearRoles()
	m.team.SetRole(models.RolePrimus, primus)

	remaining := models.RoleOrder[1:]
	i := 0
	for _, member := range m.team.Members() {
		if member == primus {
			continue
		}
		if i >= len(remaining) {
			break
		}
		m.team.SetRole(remaining[i], member)
		i++
	}
	return nil
}

// Rotate performs a pure cyclic permutation of the current role
// holders: the last holder (in role order) moves to the front and
// every populated role is reassigned in order. An empty role map
// falls back to automatic assignment. Requires at least two agents.
func (m *Manager) Rotate() error {
	if m.team.Size() < 2 {
		return ErrNotEnoughAgents
	}

	var populated []models.Role
	var holders []*team.Member
	for _, role := range models.RoleOrder {
		if member := m.team.RoleHolder(role); member != nil {
			populated = append(populated, role)
			holders = append(holders, member)
		}
	}

	if len(holders) == 0 {
		return m.AutoAssign()
	}

	// Cyclic shift: last holder to the front.
	rotated := make([]*team.Member, 0, len(holders))
	rotated = append(rotated, holders[len(holders)-1])
	rotated = append(rotated, holders[:len(holders)-1]...)

	m.team.ClearRoles()
	for i, role := range populated {
		m.team.SetRole(role, rotated[i])
	}
	return nil
}

// SelectPrimusByExpertise elects the next Primus for the task. Agents
// that already served as Primus are excluded unless every agent has
// served; in that case the fairness flags are cleared for everyone
// but the new pick. The highest expertise score wins, ties broken by
// encounter order. The election itself does not mutate the role map.
func (m *Manager) SelectPrimusByExpertise(task *models.Task) (*team.Member, error) {
	members := m.team.Members()
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: team has no members", ErrInvalidRole)
	}

	eligible := make([]*team.Member, 0, len(members))
	for _, member := range members {
		if !member.HasBeenPrimus {
			eligible = append(eligible, member)
		}
	}

	allServed := len(eligible) == 0
	if allServed {
		eligible = members
	}

	tokens := taskTokens(task)
	var winner *team.Member
	best := -1
	for _, member := range eligible {
		score := scoreExpertise(member.Expertise(), models.RolePrimus, tokens)
		if score > best {
			best = score
			winner = member
		}
	}

	if allServed {
		for _, member := range members {
			member.HasBeenPrimus = member == winner
		}
	} else {
		winner.HasBeenPrimus = true
	}
	return winner, nil
}

// DynamicReassignment re-elects the Primus for the task and performs
// phase-tailored assignment for the task's declared phase, defaulting
// to Expand.
func (m *Manager) DynamicReassignment(task *models.Task) error {
	phase := models.PhaseExpand
	if task != nil && task.Phase.Valid() {
		phase = task.Phase
	}
	return m.AssignForPhase(phase, task)
}

// RoleMap returns a read-only projection keyed by role name.
func (m *Manager) RoleMap() map[models.Role]string {
	out := make(map[models.Role]string)
	for _, role := range models.RoleOrder {
		if member := m.team.RoleHolder(role); member != nil {
			out[role] = member.Name()
		}
	}
	return out
}

// RoleAssignments returns a read-only projection keyed by agent name.
func (m *Manager) RoleAssignments() map[string]models.Role {
	out := make(map[string]models.Role)
	for _, member := range m.team.Members() {
		if member.CurrentRole != "" {
			out[member.Name()] = member.CurrentRole
		}
	}
	return out
}
