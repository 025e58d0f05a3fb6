package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/forgelight/quorum/internal/capability"
	"github.com/forgelight/quorum/internal/manifest"
	"github.com/forgelight/quorum/internal/store"
	"github.com/forgelight/quorum/internal/team"
	"github.com/forgelight/quorum/pkg/models"
)

type stubAgent struct {
	name string
	tags []string
}

func (a stubAgent) Name() string        { return a.name }
func (a stubAgent) Expertise() []string { return a.tags }

func newTestTeam(t *testing.T) *team.Team {
	t.Helper()
	tm := team.New("platform")
	agents := []stubAgent{
		{"ada", []string{"architecture decisions", "planning"}},
		{"grace", []string{"implementation", "coding"}},
		{"edsger", []string{"testing", "code review"}},
	}
	for _, a := range agents {
		if err := tm.AddAgent(a); err != nil {
			t.Fatalf("AddAgent(%s): %v", a.name, err)
		}
	}
	return tm
}

func newTestCoordinator(t *testing.T) (*Coordinator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	c := New(newTestTeam(t), mem, capability.NewRuleBased())
	return c, mem
}

const testManifest = `
id: session-cache
description: design a session cache
phases:
  expand:
    instructions: widen the option space
  differentiate:
    depends_on: [expand]
  refine:
    depends_on: [differentiate]
  retrospect:
    depends_on: [refine]
`

func TestStartCycleEntersExpand(t *testing.T) {
	c, mem := newTestCoordinator(t)
	ctx := context.Background()

	task := &models.Task{Description: "design a session cache"}
	if err := c.StartCycle(ctx, task); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}

	if c.CycleID() == "" {
		t.Error("cycle id not assigned")
	}
	if task.ID == "" {
		t.Error("task id not assigned")
	}
	if phase, ok := c.CurrentPhase(); !ok || phase != models.PhaseExpand {
		t.Errorf("current phase = %v %v, want expand", phase, ok)
	}

	// Expand results and the task are persisted.
	if _, err := mem.RetrieveWithEDRRPhase(ctx, "phase_result", models.PhaseExpand, nil); err != nil {
		t.Errorf("expand result not persisted: %v", err)
	}
	if _, err := mem.RetrieveWithEDRRPhase(ctx, "task", models.PhaseExpand, nil); err != nil {
		t.Errorf("task not persisted: %v", err)
	}

	// Roles were assigned for the phase.
	if c.team.Primus() == nil {
		t.Error("no primus assigned for expand")
	}

	if err := c.StartCycle(ctx, nil); err == nil {
		t.Error("StartCycle(nil) should fail")
	}
}

func TestFullCycle(t *testing.T) {
	c, mem := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.StartCycle(ctx, &models.Task{Description: "design a session cache"}); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}
	for _, phase := range models.PhaseOrder[1:] {
		if err := c.ProgressToPhase(ctx, phase); err != nil {
			t.Fatalf("ProgressToPhase(%s): %v", phase, err)
		}
	}

	if phase, _ := c.CurrentPhase(); phase != models.PhaseRetrospect {
		t.Errorf("current phase = %v, want retrospect", phase)
	}
	for _, phase := range models.PhaseOrder {
		if _, err := mem.RetrieveWithEDRRPhase(ctx, "phase_result", phase, map[string]string{"cycle_id": c.CycleID()}); err != nil {
			t.Errorf("%s result not persisted: %v", phase, err)
		}
	}

	report, err := mem.RetrieveWithEDRRPhase(ctx, "final_report", models.PhaseRetrospect, map[string]string{"cycle_id": c.CycleID()})
	if err != nil {
		t.Fatalf("final report not persisted: %v", err)
	}
	if report["task_summary"] != "design a session cache" {
		t.Errorf("task_summary = %v", report["task_summary"])
	}
	summaries, ok := report["phase_summaries"].(map[string]any)
	if !ok || len(summaries) != 3 {
		t.Errorf("phase_summaries = %v, want 3 entries", report["phase_summaries"])
	}
	if plan, ok := report["chosen_plan"].([]any); !ok || len(plan) == 0 {
		t.Errorf("chosen_plan = %v, want non-empty", report["chosen_plan"])
	}

	// Refine recorded a team consensus.
	refine, err := mem.RetrieveWithEDRRPhase(ctx, "phase_result", models.PhaseRefine, nil)
	if err != nil {
		t.Fatalf("retrieve refine: %v", err)
	}
	outputs := refine["outputs"].(map[string]any)
	if _, ok := outputs["consensus"]; !ok {
		t.Error("refine outputs carry no consensus")
	}
	if len(c.team.Decisions()) == 0 {
		t.Error("no decision recorded on the team ledger")
	}

	// The consensus decision itself is durable, keyed by the task.
	decision, err := mem.RetrieveWithEDRRPhase(ctx, "decision", models.PhaseRefine, map[string]string{"task_id": c.Task().ID})
	if err != nil {
		t.Fatalf("decision not persisted: %v", err)
	}
	if decision["text"] == "" {
		t.Error("stored decision has no text")
	}
}

func TestProgressBackwardRejected(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.StartCycle(ctx, &models.Task{Description: "x"}); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}
	if err := c.ProgressToPhase(ctx, models.PhaseDifferentiate); err != nil {
		t.Fatalf("ProgressToPhase(differentiate): %v", err)
	}

	for _, phase := range []models.Phase{models.PhaseExpand, models.PhaseDifferentiate} {
		if err := c.ProgressToPhase(ctx, phase); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("ProgressToPhase(%s) err = %v, want ErrInvalidTransition", phase, err)
		}
	}

	if err := c.ProgressToPhase(ctx, "polish"); err == nil {
		t.Error("unknown phase should be rejected")
	}
}

func TestProgressWithoutCycle(t *testing.T) {
	c, _ := newTestCoordinator(t)

	if err := c.ProgressToPhase(context.Background(), models.PhaseExpand); !errors.Is(err, ErrNoActiveCycle) {
		t.Errorf("err = %v, want ErrNoActiveCycle", err)
	}
	if err := c.ExecuteCurrentPhase(context.Background()); !errors.Is(err, ErrNoActivePhase) {
		t.Errorf("err = %v, want ErrNoActivePhase", err)
	}
}

func TestManifestGatesPhaseSkip(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.StartCycleFromManifest(ctx, []byte(testManifest)); err != nil {
		t.Fatalf("StartCycleFromManifest: %v", err)
	}
	if task := c.Task(); task == nil || task.ID != "session-cache" {
		t.Fatalf("task = %+v, want id session-cache", c.Task())
	}

	// Jumping to refine with differentiate not completed is refused
	// and the phase stays expand.
	err := c.ProgressToPhase(ctx, models.PhaseRefine)
	if !errors.Is(err, manifest.ErrDependencyUnmet) {
		t.Fatalf("err = %v, want ErrDependencyUnmet", err)
	}
	if phase, _ := c.CurrentPhase(); phase != models.PhaseExpand {
		t.Errorf("current phase = %v, want expand", phase)
	}
	if c.Trace().Started(models.PhaseRefine) {
		t.Error("refused phase must not be marked started")
	}

	// The dependency chain satisfied in order succeeds.
	for _, phase := range models.PhaseOrder[1:] {
		if err := c.ProgressToPhase(ctx, phase); err != nil {
			t.Fatalf("ProgressToPhase(%s): %v", phase, err)
		}
	}
	if !c.Trace().Completed(models.PhaseRetrospect) {
		t.Error("trace missing retrospect completion")
	}
}

func TestManifestPersistedAtStart(t *testing.T) {
	c, mem := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.StartCycleFromManifest(ctx, []byte(testManifest)); err != nil {
		t.Fatalf("StartCycleFromManifest: %v", err)
	}

	record, err := mem.RetrieveWithEDRRPhase(ctx, "manifest", models.PhaseExpand, map[string]string{"manifest_id": "session-cache"})
	if err != nil {
		t.Fatalf("manifest not persisted: %v", err)
	}
	if record["description"] != "design a session cache" {
		t.Errorf("description = %v", record["description"])
	}
	phases, ok := record["phases"].(map[string]any)
	if !ok || len(phases) != 4 {
		t.Fatalf("phases = %v, want 4 entries", record["phases"])
	}
	refine, _ := phases["refine"].(map[string]any)
	deps, _ := refine["depends_on"].([]any)
	if len(deps) != 1 || deps[0] != "differentiate" {
		t.Errorf("refine depends_on = %v, want [differentiate]", deps)
	}
}

func TestManifestParseFailureAbortsStart(t *testing.T) {
	c, mem := newTestCoordinator(t)

	err := c.StartCycleFromManifest(context.Background(), []byte("phases: [not, a, map]"))
	if !errors.Is(err, manifest.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if c.CycleID() != "" {
		t.Error("failed start must not create a cycle")
	}
	if mem.Len() != 0 {
		t.Errorf("failed start persisted %d items", mem.Len())
	}
}

// flakyProvider fails EvaluateOptions until allowed.
type flakyProvider struct {
	*capability.RuleBased
	fail bool
}

func (p *flakyProvider) EvaluateOptions(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	if p.fail {
		return nil, errors.New("evaluator unavailable")
	}
	return p.RuleBased.EvaluateOptions(ctx, task, ideas)
}

func TestHandlerFailureKeepsPhaseForRetry(t *testing.T) {
	provider := &flakyProvider{RuleBased: capability.NewRuleBased(), fail: true}
	c := New(newTestTeam(t), store.NewMemory(), provider)
	ctx := context.Background()

	if err := c.StartCycle(ctx, &models.Task{Description: "x"}); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}

	err := c.ProgressToPhase(ctx, models.PhaseDifferentiate)
	var phaseErr *PhaseExecutionError
	if !errors.As(err, &phaseErr) {
		t.Fatalf("err = %v, want PhaseExecutionError", err)
	}
	if phaseErr.Phase != models.PhaseDifferentiate {
		t.Errorf("failed phase = %v, want differentiate", phaseErr.Phase)
	}
	// The failed phase stays current so the caller can retry.
	if phase, _ := c.CurrentPhase(); phase != models.PhaseDifferentiate {
		t.Errorf("current phase = %v, want differentiate", phase)
	}

	provider.fail = false
	if err := c.ExecuteCurrentPhase(ctx); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if err := c.ProgressToPhase(ctx, models.PhaseRefine); err != nil {
		t.Fatalf("ProgressToPhase(refine) after retry: %v", err)
	}
}

func TestStartCycleResetsState(t *testing.T) {
	c, _ := newTestCoordinator(t)
	ctx := context.Background()

	if err := c.StartCycleFromManifest(ctx, []byte(testManifest)); err != nil {
		t.Fatalf("StartCycleFromManifest: %v", err)
	}
	first := c.CycleID()

	// A fresh cycle restarts at Expand with no manifest carried over.
	if err := c.StartCycle(ctx, &models.Task{Description: "second task"}); err != nil {
		t.Fatalf("second StartCycle: %v", err)
	}
	if c.CycleID() == first {
		t.Error("cycle id not regenerated")
	}
	if phase, _ := c.CurrentPhase(); phase != models.PhaseExpand {
		t.Errorf("current phase = %v, want expand", phase)
	}
	if c.Trace() != nil {
		t.Error("manifest trace leaked into manifest-less cycle")
	}
}
