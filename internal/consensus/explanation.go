package consensus

import (
	"fmt"

	"github.com/forgelight/quorum/pkg/models"
)

// stakeholderExplanation renders the deterministic explanation
// recorded with every decision: the method, the resolved text, the
// conflict and supporter counts, and for syntheses the computed grade
// level.
func stakeholderExplanation(d *models.Decision, opinions []models.Opinion) string {
	switch d.Method {
	case models.MethodConflictResolutionSynthesis:
		return fmt.Sprintf(
			"The team resolved %d conflict(s) on task %s through weighted expertise synthesis. "+
				"Resolved position: %s "+
				"%d contributors informed the synthesis. "+
				"This explanation reads at a Flesch-Kincaid grade level of %.1f.",
			d.ConflictCount, d.TaskID, d.Text, len(opinions), d.Synthesis.Readability.FleschKincaidGrade)
	default:
		supporters := 0
		for _, op := range opinions {
			if op.Text == d.Text {
				supporters++
			}
		}
		return fmt.Sprintf(
			"The team reached consensus on task %s by majority opinion with no conflicts identified. "+
				"Resolved position: %s. "+
				"%d of %d contributors supported this position.",
			d.TaskID, d.Text, supporters, len(opinions))
	}
}
