package consensus

import (
	"context"
	"testing"

	"github.com/forgelight/quorum/internal/store"
	"github.com/forgelight/quorum/pkg/models"
)

func buildDecision(t *testing.T, b *Builder, taskID string) string {
	t.Helper()
	result, err := b.BuildConsensus(context.Background(), &models.Task{ID: taskID, Description: "work on " + taskID})
	if err != nil {
		t.Fatalf("BuildConsensus failed: %v", err)
	}
	return result.DecisionID
}

func TestBuilder_MarkDecisionImplemented_Monotonic(t *testing.T) {
	tm := newTeam(t, stubAgent{name: "ada"})
	addOpinions(tm, "t1", map[string]string{"ada": "Proceed"})
	b := NewBuilder(tm, nil)
	id := buildDecision(t, b, "t1")

	d, _ := b.TrackedDecision(id)
	if d.Implemented {
		t.Fatal("new decision should not be marked implemented")
	}

	if err := b.MarkDecisionImplemented(context.Background(), id); err != nil {
		t.Fatalf("MarkDecisionImplemented failed: %v", err)
	}
	if !d.Implemented {
		t.Error("decision should be implemented after marking")
	}

	// Marking again keeps it true; no operation resets the flag.
	if err := b.MarkDecisionImplemented(context.Background(), id); err != nil {
		t.Fatalf("second MarkDecisionImplemented failed: %v", err)
	}
	if !d.Implemented {
		t.Error("implemented flag must stay true")
	}

	if err := b.MarkDecisionImplemented(context.Background(), "missing"); err == nil {
		t.Error("marking an unknown decision should fail")
	}
}

func TestBuilder_HasDecisionDocumentation(t *testing.T) {
	tm := newTeam(t, stubAgent{name: "ada"})
	addOpinions(tm, "t1", map[string]string{"ada": "Proceed"})
	b := NewBuilder(tm, nil)
	id := buildDecision(t, b, "t1")

	// Text exists but no implementation details yet.
	if b.HasDecisionDocumentation(id) {
		t.Error("documentation requires implementation details")
	}

	if err := b.AddDecisionImplementationDetails(context.Background(), id, "rolled out behind a flag"); err != nil {
		t.Fatalf("AddDecisionImplementationDetails failed: %v", err)
	}
	if !b.HasDecisionDocumentation(id) {
		t.Error("documentation should exist once text and details are present")
	}

	if b.HasDecisionDocumentation("missing") {
		t.Error("unknown decisions have no documentation")
	}
	if err := b.AddDecisionImplementationDetails(context.Background(), "missing", "x"); err == nil {
		t.Error("adding details to an unknown decision should fail")
	}
}

func TestBuilder_QueryDecisions(t *testing.T) {
	tm := newTeam(t, stubAgent{name: "ada"})
	addOpinions(tm, "t1", map[string]string{"ada": "Proceed"})
	addOpinions(tm, "t2", map[string]string{"ada": "Hold"})
	b := NewBuilder(tm, nil)

	id1 := buildDecision(t, b, "t1")
	id2 := buildDecision(t, b, "t2")
	if err := b.MarkDecisionImplemented(context.Background(), id1); err != nil {
		t.Fatalf("MarkDecisionImplemented failed: %v", err)
	}

	tests := []struct {
		name    string
		filters map[string]string
		want    int
	}{
		{"no filters returns all", nil, 2},
		{"by task", map[string]string{"task_id": "t1"}, 1},
		{"by id", map[string]string{"id": id2}, 1},
		{"by method", map[string]string{"method": models.MethodMajorityOpinion}, 2},
		{"by implemented", map[string]string{"implemented": "true"}, 1},
		{"by not implemented", map[string]string{"implemented": "false"}, 1},
		{"combined", map[string]string{"task_id": "t1", "implemented": "true"}, 1},
		{"exact match misses", map[string]string{"task_id": "t"}, 0},
		{"unknown key matches nothing", map[string]string{"color": "blue"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.QueryDecisions(tt.filters); len(got) != tt.want {
				t.Errorf("QueryDecisions(%v) returned %d decisions, want %d", tt.filters, len(got), tt.want)
			}
		})
	}
}

func TestBuilder_PersistsDecisions(t *testing.T) {
	tm := newTeam(t, stubAgent{name: "ada"})
	addOpinions(tm, "t1", map[string]string{"ada": "Proceed"})
	mem := store.NewMemory()
	b := NewBuilder(tm, nil, WithStore(mem))
	id := buildDecision(t, b, "t1")

	ctx := context.Background()
	record, err := mem.RetrieveWithEDRRPhase(ctx, "decision", models.PhaseRefine, map[string]string{"task_id": "t1"})
	if err != nil {
		t.Fatalf("decision not retrievable after consensus: %v", err)
	}
	if record["id"] != id {
		t.Errorf("stored decision id = %v, want %s", record["id"], id)
	}
	if implemented, _ := record["implemented"].(bool); implemented {
		t.Error("fresh decision should not be stored as implemented")
	}

	// Mutations append fresh records so the latest retrieval reflects them.
	if err := b.MarkDecisionImplemented(ctx, id); err != nil {
		t.Fatalf("MarkDecisionImplemented failed: %v", err)
	}
	if err := b.AddDecisionImplementationDetails(ctx, id, "merged in run 7"); err != nil {
		t.Fatalf("AddDecisionImplementationDetails failed: %v", err)
	}

	record, err = mem.RetrieveWithEDRRPhase(ctx, "decision", models.PhaseRefine, map[string]string{"decision_id": id})
	if err != nil {
		t.Fatalf("decision not retrievable after update: %v", err)
	}
	if implemented, _ := record["implemented"].(bool); !implemented {
		t.Error("latest record should carry the implemented flag")
	}
	if record["implementation_details"] != "merged in run 7" {
		t.Errorf("implementation_details = %v, want %q", record["implementation_details"], "merged in run 7")
	}
}

func TestBuilder_PersistsUnderTaskPhase(t *testing.T) {
	tm := newTeam(t, stubAgent{name: "ada"})
	addOpinions(tm, "t1", map[string]string{"ada": "Proceed"})
	mem := store.NewMemory()
	b := NewBuilder(tm, nil, WithStore(mem))

	task := &models.Task{ID: "t1", Description: "work on t1", Phase: models.PhaseDifferentiate}
	if _, err := b.BuildConsensus(context.Background(), task); err != nil {
		t.Fatalf("BuildConsensus failed: %v", err)
	}

	if _, err := mem.RetrieveWithEDRRPhase(context.Background(), "decision", models.PhaseDifferentiate, nil); err != nil {
		t.Errorf("decision should be stored under the task's phase: %v", err)
	}
}
