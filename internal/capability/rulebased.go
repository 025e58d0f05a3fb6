package capability

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/forgelight/quorum/pkg/models"
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// angle is one ideation template the rule-based provider instantiates
// per task.
type angle struct {
	name      string
	idea      string
	rationale string
}

var ideaAngles = []angle{
	{"incremental", "Deliver %s incrementally behind a feature flag", "small reversible steps limit blast radius"},
	{"simplest", "Implement the simplest version of %s first", "a working baseline makes later comparison concrete"},
	{"reuse", "Adapt an existing component to cover %s", "reuse avoids a second implementation to maintain"},
	{"isolate", "Isolate %s behind a narrow interface", "a seam keeps alternatives swappable"},
	{"measure", "Prototype %s and measure before committing", "data settles design arguments faster than debate"},
}

var comparisonDimensions = []string{"complexity", "risk", "effort", "maintainability"}

var riskTerms = []string{"migration", "rewrite", "distributed", "concurrent", "security", "deprecat"}

// RuleBased is a deterministic Provider built from keyword heuristics
// and templates. It needs no network or credentials, so the engine
// can run a full cycle offline; model-backed providers slot in behind
// the same interface.
type RuleBased struct{}

// NewRuleBased returns the deterministic provider.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

var _ Provider = (*RuleBased)(nil)

func taskSubject(task *models.Task) string {
	if task == nil || strings.TrimSpace(task.Description) == "" {
		return "the task"
	}
	return strings.TrimSpace(task.Description)
}

func taskWords(task *models.Task) []string {
	if task == nil {
		return nil
	}
	text := strings.ToLower(task.Description + " " + task.Requirements)
	return wordPattern.FindAllString(text, -1)
}

// GenerateDiverseIdeas instantiates up to max ideation templates for
// the task.
func (p *RuleBased) GenerateDiverseIdeas(ctx context.Context, task *models.Task, max int) ([]map[string]any, error) {
	if max <= 0 || max > len(ideaAngles) {
		max = len(ideaAngles)
	}
	subject := taskSubject(task)

	ideas := make([]map[string]any, 0, max)
	for _, a := range ideaAngles[:max] {
		ideas = append(ideas, map[string]any{
			"name":      a.name,
			"idea":      fmt.Sprintf(a.idea, subject),
			"rationale": a.rationale,
		})
	}
	return ideas, nil
}

// RetrieveRelevantKnowledge returns one knowledge line per distinct
// task word longer than three characters, capped at five.
func (p *RuleBased) RetrieveRelevantKnowledge(ctx context.Context, task *models.Task) ([]string, error) {
	seen := make(map[string]bool)
	var knowledge []string
	for _, w := range taskWords(task) {
		if len(w) <= 3 || seen[w] {
			continue
		}
		seen[w] = true
		knowledge = append(knowledge, fmt.Sprintf("Prior work touching %q exists; review it before designing anew", w))
		if len(knowledge) == 5 {
			break
		}
	}
	return knowledge, nil
}

// AnalyzeProjectStructure summarizes the task's apparent scope from
// its vocabulary.
func (p *RuleBased) AnalyzeProjectStructure(ctx context.Context, task *models.Task) (map[string]any, error) {
	words := taskWords(task)
	risky := 0
	for _, w := range words {
		for _, term := range riskTerms {
			if strings.Contains(w, term) {
				risky++
				break
			}
		}
	}
	scope := "narrow"
	if len(words) > 12 {
		scope = "broad"
	}
	return map[string]any{
		"subject":    taskSubject(task),
		"scope":      scope,
		"risk_terms": risky,
	}, nil
}

// CreateComparisonMatrix scores each idea 1..len per dimension. The
// scoring is positional and deterministic: earlier templates are
// simpler, later ones riskier.
func (p *RuleBased) CreateComparisonMatrix(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	matrix := make([]map[string]any, 0, len(ideas))
	for i, idea := range ideas {
		row := map[string]any{"idea": idea["idea"]}
		for j, dim := range comparisonDimensions {
			// Alternate ascending and descending so no idea dominates
			// every dimension.
			score := i + 1
			if j%2 == 1 {
				score = len(ideas) - i
			}
			row[dim] = score
		}
		matrix = append(matrix, row)
	}
	return matrix, nil
}

// EvaluateOptions tags each idea with a strength and a weakness
// derived from its position in the ideation order.
func (p *RuleBased) EvaluateOptions(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	evaluated := make([]map[string]any, 0, len(ideas))
	for i, idea := range ideas {
		out := map[string]any{
			"idea":      idea["idea"],
			"rationale": idea["rationale"],
			"score":     len(ideas) - i,
		}
		if i == 0 {
			out["strength"] = "lowest integration risk"
			out["weakness"] = "may defer hard problems"
		} else {
			out["strength"] = "addresses the problem more directly"
			out["weakness"] = "costs more up front"
		}
		evaluated = append(evaluated, out)
	}
	return evaluated, nil
}

// AnalyzeTradeOffs pairs adjacent ideas and names the axis they
// trade on.
func (p *RuleBased) AnalyzeTradeOffs(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	var tradeOffs []map[string]any
	for i := 0; i+1 < len(ideas); i++ {
		tradeOffs = append(tradeOffs, map[string]any{
			"option_a": ideas[i]["idea"],
			"option_b": ideas[i+1]["idea"],
			"axis":     comparisonDimensions[i%len(comparisonDimensions)],
		})
	}
	return tradeOffs, nil
}

// FormulateDecisionCriteria weights the comparison dimensions,
// shifting weight toward risk when the task vocabulary flags it.
func (p *RuleBased) FormulateDecisionCriteria(ctx context.Context, task *models.Task) (map[string]float64, error) {
	criteria := map[string]float64{
		"complexity":      0.3,
		"risk":            0.2,
		"effort":          0.2,
		"maintainability": 0.3,
	}
	for _, w := range taskWords(task) {
		for _, term := range riskTerms {
			if strings.Contains(w, term) {
				criteria["risk"] = 0.4
				criteria["complexity"] = 0.2
				criteria["effort"] = 0.1
				return criteria, nil
			}
		}
	}
	return criteria, nil
}

// SelectBestOption picks the option with the highest score field,
// ties broken by input order.
func (p *RuleBased) SelectBestOption(ctx context.Context, task *models.Task, options []map[string]any, criteria map[string]float64) (map[string]any, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("select best option: no options to choose from")
	}
	best := options[0]
	bestScore := optionScore(options[0])
	for _, opt := range options[1:] {
		if s := optionScore(opt); s > bestScore {
			best, bestScore = opt, s
		}
	}
	return best, nil
}

func optionScore(opt map[string]any) float64 {
	switch v := opt["score"].(type) {
	case int:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// ElaborateDetails expands the chosen option into design details.
func (p *RuleBased) ElaborateDetails(ctx context.Context, task *models.Task, option map[string]any) ([]string, error) {
	idea, _ := option["idea"].(string)
	if idea == "" {
		idea = taskSubject(task)
	}
	return []string{
		fmt.Sprintf("Define the public interface for: %s", idea),
		"Enumerate error cases and their recovery behavior",
		"Identify the data that must survive restarts",
		"Sketch the test seams before writing the implementation",
	}, nil
}

// CreateImplementationPlan orders the details into numbered steps
// with a verification step appended.
func (p *RuleBased) CreateImplementationPlan(ctx context.Context, task *models.Task, details []string) ([]string, error) {
	plan := make([]string, 0, len(details)+1)
	for i, d := range details {
		plan = append(plan, fmt.Sprintf("Step %d: %s", i+1, d))
	}
	plan = append(plan, fmt.Sprintf("Step %d: Verify against the stated requirements", len(details)+1))
	return plan, nil
}

// OptimizeImplementation flags steps that can run in parallel and
// steps worth deferring.
func (p *RuleBased) OptimizeImplementation(ctx context.Context, task *models.Task, plan []string) (map[string]any, error) {
	out := map[string]any{"step_count": len(plan)}
	if len(plan) > 3 {
		out["parallelizable"] = []any{plan[1], plan[2]}
	}
	return out, nil
}

// PerformQualityAssurance checks the plan for missing test and
// verification coverage.
func (p *RuleBased) PerformQualityAssurance(ctx context.Context, task *models.Task, plan []string) (map[string]any, error) {
	var gaps []any
	joined := strings.ToLower(strings.Join(plan, " "))
	if !strings.Contains(joined, "test") {
		gaps = append(gaps, "plan has no explicit testing step")
	}
	if !strings.Contains(joined, "verify") {
		gaps = append(gaps, "plan has no verification step")
	}
	return map[string]any{
		"gaps":   gaps,
		"passed": len(gaps) == 0,
	}, nil
}

// ExtractLearnings pulls one learning per completed phase, in phase
// order.
func (p *RuleBased) ExtractLearnings(ctx context.Context, task *models.Task, results map[models.Phase]map[string]any) ([]string, error) {
	var learnings []string
	for _, phase := range models.PhaseOrder {
		r, ok := results[phase]
		if !ok {
			continue
		}
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		learnings = append(learnings, fmt.Sprintf("%s produced %d outputs (%s)", phase, len(r), strings.Join(keys, ", ")))
	}
	return learnings, nil
}

// RecognizePatterns reports words recurring across learnings.
func (p *RuleBased) RecognizePatterns(ctx context.Context, learnings []string) ([]string, error) {
	counts := make(map[string]int)
	var order []string
	for _, l := range learnings {
		for _, w := range wordPattern.FindAllString(strings.ToLower(l), -1) {
			if len(w) <= 3 {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	var patterns []string
	for _, w := range order {
		if counts[w] > 1 {
			patterns = append(patterns, fmt.Sprintf("recurring theme: %s", w))
		}
	}
	return patterns, nil
}

// IntegrateKnowledge folds learnings and patterns into one summary
// record.
func (p *RuleBased) IntegrateKnowledge(ctx context.Context, task *models.Task, learnings, patterns []string) (map[string]any, error) {
	return map[string]any{
		"subject":        taskSubject(task),
		"learning_count": len(learnings),
		"pattern_count":  len(patterns),
		"summary":        fmt.Sprintf("Cycle over %q yielded %d learnings and %d recurring patterns", taskSubject(task), len(learnings), len(patterns)),
	}, nil
}

// GenerateImprovementSuggestions proposes one follow-up per learning,
// capped at three.
func (p *RuleBased) GenerateImprovementSuggestions(ctx context.Context, task *models.Task, learnings []string) ([]string, error) {
	suggestions := []string{"Capture phase outputs in the same shape every cycle so retrospectives can compare them"}
	for i, l := range learnings {
		if i == 2 {
			break
		}
		suggestions = append(suggestions, fmt.Sprintf("Revisit next cycle: %s", l))
	}
	return suggestions, nil
}
