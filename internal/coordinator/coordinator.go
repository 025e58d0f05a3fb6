// Package coordinator drives one task through the four ordered
// phases Expand, Differentiate, Refine, and Retrospect, optionally
// gated by a manifest's dependency graph.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgelight/quorum/internal/capability"
	"github.com/forgelight/quorum/internal/consensus"
	"github.com/forgelight/quorum/internal/manifest"
	"github.com/forgelight/quorum/internal/roles"
	"github.com/forgelight/quorum/internal/store"
	"github.com/forgelight/quorum/internal/team"
	"github.com/forgelight/quorum/pkg/models"
)

// ErrNoActivePhase is returned by ExecuteCurrentPhase when no cycle
// phase is in progress.
var ErrNoActivePhase = errors.New("no active phase")

// ErrNoActiveCycle is returned when a phase transition is requested
// outside a cycle.
var ErrNoActiveCycle = errors.New("no active cycle")

// ErrInvalidTransition is returned when a requested phase would move
// the cycle backward or repeat the current phase.
var ErrInvalidTransition = errors.New("invalid phase transition")

// PhaseExecutionError wraps a failed phase handler. The coordinator
// keeps the failed phase current so the caller can retry with
// ExecuteCurrentPhase.
type PhaseExecutionError struct {
	Phase models.Phase
	Err   error
}

func (e *PhaseExecutionError) Error() string {
	return fmt.Sprintf("phase %s execution failed: %v", e.Phase, e.Err)
}

func (e *PhaseExecutionError) Unwrap() error {
	return e.Err
}

// Coordinator runs EDRR cycles for one team. It is not safe for
// concurrent use; callers serialize cycles per coordinator.
type Coordinator struct {
	team      *team.Team
	roles     *roles.Manager
	consensus *consensus.Builder
	store     store.Store
	provider  capability.Provider
	logger    *DebugLogger

	cycleID  string
	task     *models.Task
	current  models.Phase
	manifest *manifest.Manifest
	trace    *manifest.Trace
	results  map[models.Phase]map[string]any
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger enables enhanced phase logging.
func WithLogger(l *DebugLogger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New creates a coordinator over the team, store, and capability
// provider.
func New(t *team.Team, s store.Store, p capability.Provider, opts ...Option) *Coordinator {
	c := &Coordinator{
		team:      t,
		roles:     roles.NewManager(t),
		consensus: consensus.NewBuilder(t, p, consensus.WithStore(s)),
		store:     s,
		provider:  p,
		logger:    NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CycleID returns the active cycle's id, empty if none.
func (c *Coordinator) CycleID() string {
	return c.cycleID
}

// Team returns the team the coordinator drives.
func (c *Coordinator) Team() *team.Team {
	return c.team
}

// Task returns the task the active cycle is working, nil if none.
func (c *Coordinator) Task() *models.Task {
	return c.task
}

// CurrentPhase reports the phase in progress. ok is false before the
// first cycle starts.
func (c *Coordinator) CurrentPhase() (models.Phase, bool) {
	if c.current == "" {
		return "", false
	}
	return c.current, true
}

// Trace returns the manifest execution trace, nil when the cycle was
// started without a manifest.
func (c *Coordinator) Trace() *manifest.Trace {
	return c.trace
}

// StartCycle begins a fresh cycle for the task: a new cycle id, the
// task persisted, and Expand entered. Any prior cycle state is
// discarded.
func (c *Coordinator) StartCycle(ctx context.Context, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("start cycle: task is required")
	}
	return c.startCycle(ctx, task, nil)
}

// StartCycleFromManifest parses an inline manifest and starts a cycle
// gated by its dependency graph. A parse failure aborts the start
// before any cycle state changes.
func (c *Coordinator) StartCycleFromManifest(ctx context.Context, source []byte) error {
	m, err := manifest.Parse(source)
	if err != nil {
		return fmt.Errorf("start cycle: %w", err)
	}
	return c.startCycle(ctx, c.manifestTask(m), m)
}

// StartCycleFromManifestFile is StartCycleFromManifest reading the
// manifest from a file.
func (c *Coordinator) StartCycleFromManifestFile(ctx context.Context, path string) error {
	m, err := manifest.ParseFile(path)
	if err != nil {
		return fmt.Errorf("start cycle: %w", err)
	}
	return c.startCycle(ctx, c.manifestTask(m), m)
}

func (c *Coordinator) manifestTask(m *manifest.Manifest) *models.Task {
	return &models.Task{
		ID:           m.ID,
		Description:  m.Description,
		Requirements: m.Requirements,
		CreatedAt:    time.Now().UTC(),
	}
}

func (c *Coordinator) startCycle(ctx context.Context, task *models.Task, m *manifest.Manifest) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	c.cycleID = uuid.NewString()
	c.task = task
	c.current = ""
	c.manifest = m
	c.trace = nil
	c.results = make(map[models.Phase]map[string]any)
	if m != nil {
		c.trace = manifest.NewTrace()
	}

	meta := c.metadata()
	if m != nil {
		meta["manifest_id"] = m.ID
	}
	if err := c.store.StoreWithEDRRPhase(ctx, task, "task", models.PhaseExpand, meta); err != nil {
		return fmt.Errorf("start cycle: %w", err)
	}
	if m != nil {
		if err := c.store.StoreWithEDRRPhase(ctx, m, "manifest", models.PhaseExpand, meta); err != nil {
			return fmt.Errorf("start cycle: %w", err)
		}
	}
	c.logger.Log("cycle %s started for task %s (%s)", c.cycleID, task.ID, task.Description)

	return c.ProgressToPhase(ctx, models.PhaseExpand)
}

// ProgressToPhase moves the cycle to the given phase and runs its
// handler. Movement is strictly forward; with a manifest active, the
// phase's declared dependencies must be completed first. Dependency
// and persistence failures leave the previous phase current; handler
// failures leave the new phase current for retry.
func (c *Coordinator) ProgressToPhase(ctx context.Context, phase models.Phase) error {
	if !phase.Valid() {
		return fmt.Errorf("progress to phase: unknown phase %q", phase)
	}
	if c.cycleID == "" {
		return fmt.Errorf("progress to phase %s: %w", phase, ErrNoActiveCycle)
	}
	if c.current != "" && phase.Index() <= c.current.Index() {
		return fmt.Errorf("progress from %s to %s: %w", c.current, phase, ErrInvalidTransition)
	}

	if c.manifest != nil {
		if err := c.manifest.CheckDependencies(phase, c.trace); err != nil {
			return err
		}
		c.trace.MarkStarted(phase)
	}

	transition := map[string]any{
		"cycle_id": c.cycleID,
		"from":     string(c.current),
		"to":       string(phase),
		"at":       time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.store.StoreWithEDRRPhase(ctx, transition, "phase_transition", phase, c.metadata()); err != nil {
		return fmt.Errorf("record transition to %s: %w", phase, err)
	}

	from := c.current
	c.current = phase
	c.task.Phase = phase
	c.logger.Log("cycle %s transition %s -> %s", c.cycleID, from, phase)

	if c.team.Size() > 0 {
		if err := c.roles.AssignForPhase(phase, c.task); err != nil {
			return &PhaseExecutionError{Phase: phase, Err: err}
		}
		if p := c.team.Primus(); p != nil {
			c.logger.Log("cycle %s phase %s primus: %s", c.cycleID, phase, p.Name())
		}
	}

	return c.executePhase(ctx, phase)
}

// ExecuteCurrentPhase re-runs the active phase's handler. Handlers
// are idempotent with respect to phase and cycle keyed persisted
// results, so this is the retry path after a PhaseExecutionError.
func (c *Coordinator) ExecuteCurrentPhase(ctx context.Context) error {
	if c.current == "" {
		return ErrNoActivePhase
	}
	return c.executePhase(ctx, c.current)
}

func (c *Coordinator) executePhase(ctx context.Context, phase models.Phase) error {
	started := time.Now()
	outputs, err := c.runHandler(ctx, phase)
	if err != nil {
		c.logger.Log("cycle %s phase %s failed: %v", c.cycleID, phase, err)
		return &PhaseExecutionError{Phase: phase, Err: err}
	}

	result := models.PhaseResult{
		CycleID:     c.cycleID,
		TaskID:      c.task.ID,
		Phase:       phase,
		Outputs:     outputs,
		CompletedAt: time.Now().UTC(),
	}
	if err := c.store.StoreWithEDRRPhase(ctx, result, "phase_result", phase, c.metadata()); err != nil {
		return fmt.Errorf("persist %s results: %w", phase, err)
	}
	c.results[phase] = outputs

	if c.manifest != nil {
		c.trace.MarkCompleted(phase)
	}
	c.logger.Log("cycle %s phase %s completed in %s with %d outputs",
		c.cycleID, phase, time.Since(started).Round(time.Millisecond), len(outputs))
	return nil
}

func (c *Coordinator) metadata() map[string]string {
	meta := map[string]string{"cycle_id": c.cycleID}
	if c.task != nil {
		meta["task_id"] = c.task.ID
	}
	return meta
}

// priorOutputs returns the persisted outputs of an earlier phase in
// the active cycle, preferring the in-memory copy and falling back to
// the store so a handler can re-run after a restart. A missing result
// yields nil rather than an error.
func (c *Coordinator) priorOutputs(ctx context.Context, phase models.Phase) map[string]any {
	if outputs, ok := c.results[phase]; ok {
		return outputs
	}
	payload, err := c.store.RetrieveWithEDRRPhase(ctx, "phase_result", phase, c.metadata())
	if err != nil {
		return nil
	}
	outputs, _ := payload["outputs"].(map[string]any)
	return outputs
}
