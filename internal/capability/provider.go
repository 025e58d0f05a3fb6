// Package capability defines the provider interface phase handlers
// call for ideation, analysis, and retrospection work. Providers are
// opaque to the engine: the same handler code runs against the
// rule-based provider or a model-backed one.
package capability

import (
	"context"

	"github.com/forgelight/quorum/pkg/models"
)

// Provider supplies the named operations the phase handlers depend
// on. Implementations must be safe for sequential reuse across
// cycles; they are never called concurrently for one coordinator.
type Provider interface {
	// Expand operations.

	// GenerateDiverseIdeas proposes up to max distinct approaches to
	// the task. Each idea carries at least "idea" and "rationale"
	// string fields.
	GenerateDiverseIdeas(ctx context.Context, task *models.Task, max int) ([]map[string]any, error)
	// RetrieveRelevantKnowledge surfaces prior knowledge relevant to
	// the task.
	RetrieveRelevantKnowledge(ctx context.Context, task *models.Task) ([]string, error)
	// AnalyzeProjectStructure describes the structural context the
	// task operates in.
	AnalyzeProjectStructure(ctx context.Context, task *models.Task) (map[string]any, error)

	// Differentiate operations.

	// CreateComparisonMatrix scores each idea against shared
	// comparison dimensions.
	CreateComparisonMatrix(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error)
	// EvaluateOptions annotates each idea with strengths and
	// weaknesses.
	EvaluateOptions(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error)
	// AnalyzeTradeOffs names the trade-offs between competing ideas.
	AnalyzeTradeOffs(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error)
	// FormulateDecisionCriteria produces weighted criteria for
	// selecting among options.
	FormulateDecisionCriteria(ctx context.Context, task *models.Task) (map[string]float64, error)

	// Refine operations.

	// SelectBestOption picks one evaluated option using the criteria.
	SelectBestOption(ctx context.Context, task *models.Task, options []map[string]any, criteria map[string]float64) (map[string]any, error)
	// ElaborateDetails expands the selected option into concrete
	// design details.
	ElaborateDetails(ctx context.Context, task *models.Task, option map[string]any) ([]string, error)
	// CreateImplementationPlan orders the details into plan steps.
	CreateImplementationPlan(ctx context.Context, task *models.Task, details []string) ([]string, error)
	// OptimizeImplementation suggests refinements to the plan.
	OptimizeImplementation(ctx context.Context, task *models.Task, plan []string) (map[string]any, error)
	// PerformQualityAssurance checks the plan for gaps and risks.
	PerformQualityAssurance(ctx context.Context, task *models.Task, plan []string) (map[string]any, error)

	// Retrospect operations.

	// ExtractLearnings distills lessons from the cycle's phase
	// results.
	ExtractLearnings(ctx context.Context, task *models.Task, results map[models.Phase]map[string]any) ([]string, error)
	// RecognizePatterns finds recurring themes across learnings.
	RecognizePatterns(ctx context.Context, learnings []string) ([]string, error)
	// IntegrateKnowledge folds learnings and patterns into a
	// knowledge summary for future cycles.
	IntegrateKnowledge(ctx context.Context, task *models.Task, learnings, patterns []string) (map[string]any, error)
	// GenerateImprovementSuggestions proposes process improvements
	// for the next cycle.
	GenerateImprovementSuggestions(ctx context.Context, task *models.Task, learnings []string) ([]string, error)
}
