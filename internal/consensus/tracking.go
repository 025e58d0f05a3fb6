package consensus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/forgelight/quorum/pkg/models"
)

// TrackedDecision returns the decision with the given id, if tracked.
func (b *Builder) TrackedDecision(id string) (*models.Decision, bool) {
	d, ok := b.tracked[id]
	return d, ok
}

// MarkDecisionImplemented flips the decision's implemented flag to
// true and re-persists the decision. The flag is monotonic: there is
// no way to reset it.
func (b *Builder) MarkDecisionImplemented(ctx context.Context, id string) error {
	d, ok := b.tracked[id]
	if !ok {
		return fmt.Errorf("mark implemented: unknown decision %q", id)
	}
	d.Implemented = true
	if err := b.persistDecision(ctx, d); err != nil {
		return fmt.Errorf("persist decision: %w", err)
	}
	return nil
}

// AddDecisionImplementationDetails records how the decision was
// carried out and re-persists the decision.
func (b *Builder) AddDecisionImplementationDetails(ctx context.Context, id, details string) error {
	d, ok := b.tracked[id]
	if !ok {
		return fmt.Errorf("add implementation details: unknown decision %q", id)
	}
	d.ImplementationDetails = details
	if err := b.persistDecision(ctx, d); err != nil {
		return fmt.Errorf("persist decision: %w", err)
	}
	return nil
}

// HasDecisionDocumentation reports whether the decision carries both
// a resolved text and implementation details.
func (b *Builder) HasDecisionDocumentation(id string) bool {
	d, ok := b.tracked[id]
	return ok && d.Text != "" && d.ImplementationDetails != ""
}

// QueryDecisions returns the tracked decisions matching every filter
// exactly, in recording order. Supported filter keys: id, task_id,
// method, implemented ("true"/"false"). An unknown filter key matches
// nothing.
func (b *Builder) QueryDecisions(filters map[string]string) []*models.Decision {
	var out []*models.Decision
	for _, id := range b.order {
		d := b.tracked[id]
		if decisionMatches(d, filters) {
			out = append(out, d)
		}
	}
	return out
}

func decisionMatches(d *models.Decision, filters map[string]string) bool {
	for key, want := range filters {
		switch key {
		case "id":
			if d.ID != want {
				return false
			}
		case "task_id":
			if d.TaskID != want {
				return false
			}
		case "method":
			if d.Method != want {
				return false
			}
		case "implemented":
			if strconv.FormatBool(d.Implemented) != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}
