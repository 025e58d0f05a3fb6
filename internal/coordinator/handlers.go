package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/forgelight/quorum/pkg/models"
)

const maxIdeas = 5

func (c *Coordinator) runHandler(ctx context.Context, phase models.Phase) (map[string]any, error) {
	switch phase {
	case models.PhaseExpand:
		return c.handleExpand(ctx)
	case models.PhaseDifferentiate:
		return c.handleDifferentiate(ctx)
	case models.PhaseRefine:
		return c.handleRefine(ctx)
	case models.PhaseRetrospect:
		return c.handleRetrospect(ctx)
	}
	return nil, fmt.Errorf("no handler for phase %q", phase)
}

// handleExpand widens the option space: diverse ideas, prior
// knowledge, and structural context.
func (c *Coordinator) handleExpand(ctx context.Context) (map[string]any, error) {
	ideas, err := c.provider.GenerateDiverseIdeas(ctx, c.task, maxIdeas)
	if err != nil {
		return nil, fmt.Errorf("generate ideas: %w", err)
	}
	knowledge, err := c.provider.RetrieveRelevantKnowledge(ctx, c.task)
	if err != nil {
		return nil, fmt.Errorf("retrieve knowledge: %w", err)
	}
	structure, err := c.provider.AnalyzeProjectStructure(ctx, c.task)
	if err != nil {
		return nil, fmt.Errorf("analyze structure: %w", err)
	}

	return map[string]any{
		"ideas":     ideas,
		"knowledge": knowledge,
		"structure": structure,
	}, nil
}

// handleDifferentiate compares the expanded ideas and formulates the
// criteria Refine will select by.
func (c *Coordinator) handleDifferentiate(ctx context.Context) (map[string]any, error) {
	ideas := toMapSlice(c.priorOutputs(ctx, models.PhaseExpand)["ideas"])
	if len(ideas) == 0 {
		// Expand results were lost; regenerate so the cycle can
		// still progress.
		regenerated, err := c.provider.GenerateDiverseIdeas(ctx, c.task, maxIdeas)
		if err != nil {
			return nil, fmt.Errorf("regenerate ideas: %w", err)
		}
		ideas = regenerated
	}

	matrix, err := c.provider.CreateComparisonMatrix(ctx, c.task, ideas)
	if err != nil {
		return nil, fmt.Errorf("create comparison matrix: %w", err)
	}
	evaluated, err := c.provider.EvaluateOptions(ctx, c.task, ideas)
	if err != nil {
		return nil, fmt.Errorf("evaluate options: %w", err)
	}
	tradeOffs, err := c.provider.AnalyzeTradeOffs(ctx, c.task, ideas)
	if err != nil {
		return nil, fmt.Errorf("analyze trade-offs: %w", err)
	}
	criteria, err := c.provider.FormulateDecisionCriteria(ctx, c.task)
	if err != nil {
		return nil, fmt.Errorf("formulate criteria: %w", err)
	}

	return map[string]any{
		"comparison_matrix": matrix,
		"evaluated_options": evaluated,
		"trade_offs":        tradeOffs,
		"criteria":          criteria,
	}, nil
}

// handleRefine selects and elaborates one option into a verified
// plan, then runs a consensus round so the decision is the team's.
func (c *Coordinator) handleRefine(ctx context.Context) (map[string]any, error) {
	prior := c.priorOutputs(ctx, models.PhaseDifferentiate)
	options := toMapSlice(prior["evaluated_options"])
	if len(options) == 0 {
		return nil, fmt.Errorf("no evaluated options to refine")
	}
	criteria := toFloat64Map(prior["criteria"])

	selected, err := c.provider.SelectBestOption(ctx, c.task, options, criteria)
	if err != nil {
		return nil, fmt.Errorf("select best option: %w", err)
	}
	details, err := c.provider.ElaborateDetails(ctx, c.task, selected)
	if err != nil {
		return nil, fmt.Errorf("elaborate details: %w", err)
	}
	plan, err := c.provider.CreateImplementationPlan(ctx, c.task, details)
	if err != nil {
		return nil, fmt.Errorf("create implementation plan: %w", err)
	}
	optimizations, err := c.provider.OptimizeImplementation(ctx, c.task, plan)
	if err != nil {
		return nil, fmt.Errorf("optimize implementation: %w", err)
	}
	qa, err := c.provider.PerformQualityAssurance(ctx, c.task, plan)
	if err != nil {
		return nil, fmt.Errorf("perform quality assurance: %w", err)
	}

	outputs := map[string]any{
		"selected_option": selected,
		"details":         details,
		"plan":            plan,
		"optimizations":   optimizations,
		"qa":              qa,
	}

	if c.team.Size() > 0 {
		result, err := c.consensus.BuildConsensus(ctx, c.task)
		if err != nil {
			return nil, fmt.Errorf("build consensus: %w", err)
		}
		outputs["consensus"] = map[string]any{
			"method":         result.Method,
			"text":           result.Text,
			"decision_id":    result.DecisionID,
			"contributors":   result.Contributors,
			"conflict_count": result.ConflictCount,
		}
	}
	return outputs, nil
}

// handleRetrospect closes the cycle: learnings, patterns, integrated
// knowledge, and the persisted final report.
func (c *Coordinator) handleRetrospect(ctx context.Context) (map[string]any, error) {
	priorResults := make(map[models.Phase]map[string]any)
	for _, phase := range models.PhaseOrder {
		if phase == models.PhaseRetrospect {
			break
		}
		if outputs := c.priorOutputs(ctx, phase); outputs != nil {
			priorResults[phase] = outputs
		}
	}

	learnings, err := c.provider.ExtractLearnings(ctx, c.task, priorResults)
	if err != nil {
		return nil, fmt.Errorf("extract learnings: %w", err)
	}
	patterns, err := c.provider.RecognizePatterns(ctx, learnings)
	if err != nil {
		return nil, fmt.Errorf("recognize patterns: %w", err)
	}
	knowledge, err := c.provider.IntegrateKnowledge(ctx, c.task, learnings, patterns)
	if err != nil {
		return nil, fmt.Errorf("integrate knowledge: %w", err)
	}
	suggestions, err := c.provider.GenerateImprovementSuggestions(ctx, c.task, learnings)
	if err != nil {
		return nil, fmt.Errorf("generate improvement suggestions: %w", err)
	}

	report := c.assembleFinalReport(priorResults, suggestions)
	if err := c.store.StoreWithEDRRPhase(ctx, report, "final_report", models.PhaseRetrospect, c.metadata()); err != nil {
		return nil, fmt.Errorf("persist final report: %w", err)
	}
	c.logger.Log("cycle %s final report persisted", c.cycleID)

	return map[string]any{
		"learnings":    learnings,
		"patterns":     patterns,
		"knowledge":    knowledge,
		"suggestions":  suggestions,
		"final_report": report,
	}, nil
}

func (c *Coordinator) assembleFinalReport(priorResults map[models.Phase]map[string]any, suggestions []string) models.FinalReport {
	summaries := make(map[models.Phase]string, len(priorResults))
	for phase, outputs := range priorResults {
		summaries[phase] = summarizeOutputs(phase, outputs)
	}

	report := models.FinalReport{
		CycleID:        c.cycleID,
		TaskID:         c.task.ID,
		TaskSummary:    c.task.Description,
		PhaseSummaries: summaries,
		NextSteps:      suggestions,
		GeneratedAt:    time.Now().UTC(),
	}
	if refine, ok := priorResults[models.PhaseRefine]; ok {
		report.ChosenPlan = toStringSlice(refine["plan"])
		if qa := toAnyMap(refine["qa"]); qa != nil {
			report.Considerations = toStringSlice(qa["gaps"])
		}
	}
	return report
}

func summarizeOutputs(phase models.Phase, outputs map[string]any) string {
	switch phase {
	case models.PhaseExpand:
		return fmt.Sprintf("explored %d candidate ideas", len(toMapSlice(outputs["ideas"])))
	case models.PhaseDifferentiate:
		return fmt.Sprintf("evaluated %d options against %d criteria",
			len(toMapSlice(outputs["evaluated_options"])), len(toFloat64Map(outputs["criteria"])))
	case models.PhaseRefine:
		return fmt.Sprintf("produced a %d-step implementation plan", len(toStringSlice(outputs["plan"])))
	}
	return fmt.Sprintf("produced %d outputs", len(outputs))
}

// Conversion helpers. Phase outputs read back from the store have
// been through a JSON round-trip, so slices arrive as []any and
// numbers as float64; in-memory outputs keep their original types.

func toMapSlice(v any) []map[string]any {
	switch s := v.(type) {
	case []map[string]any:
		return s
	case []any:
		out := make([]map[string]any, 0, len(s))
		for _, item := range s {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func toStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func toFloat64Map(v any) map[string]float64 {
	switch m := v.(type) {
	case map[string]float64:
		return m
	case map[string]any:
		out := make(map[string]float64, len(m))
		for k, val := range m {
			if f, ok := val.(float64); ok {
				out[k] = f
			}
		}
		return out
	}
	return nil
}

func toAnyMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}
