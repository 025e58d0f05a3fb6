package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/forgelight/quorum/pkg/models"
)

const anthropicSystemPrompt = "You are one capability of a multi-agent " +
	"software planning engine. Answer with JSON only, no prose around it."

// AnthropicConfig configures a model-backed provider.
type AnthropicConfig struct {
	// Model is the model to use. Empty selects a default.
	Model anthropic.Model
	// APIKey is the Anthropic API key. If empty, uses the
	// ANTHROPIC_API_KEY env var.
	APIKey string
	// MaxTokens caps each response. Zero selects a default.
	MaxTokens int64
}

// Anthropic is a Provider backed by the Anthropic Messages API. Each
// operation is one prompt; responses are parsed from the JSON the
// model returns.
type Anthropic struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic creates a model-backed provider.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	model := cfg.Model
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &Anthropic{
		inner:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *Anthropic) run(ctx context.Context, prompt string) (string, error) {
	resp, err := p.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: anthropicSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}
	return result.String(), nil
}

// runJSON executes a prompt and parses the JSON object or array found
// in the response into target.
func (p *Anthropic) runJSON(ctx context.Context, prompt string, target any) error {
	response, err := p.run(ctx, prompt)
	if err != nil {
		return err
	}

	start := strings.IndexAny(response, "{[")
	end := strings.LastIndexAny(response, "}]")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no valid JSON found in response: %s", truncate(response, 200))
	}

	if err := json.Unmarshal([]byte(response[start:end+1]), target); err != nil {
		return fmt.Errorf("parse JSON: %w (response: %s)", err, truncate(response[start:end+1], 200))
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func taskContext(task *models.Task) string {
	if task == nil {
		return "Task: (unspecified)"
	}
	ctx := "Task: " + task.Description
	if task.Requirements != "" {
		ctx += "\nRequirements: " + task.Requirements
	}
	return ctx
}

func (p *Anthropic) GenerateDiverseIdeas(ctx context.Context, task *models.Task, max int) ([]map[string]any, error) {
	if max <= 0 {
		max = 5
	}
	prompt := fmt.Sprintf(`%s

Propose up to %d genuinely different approaches. Return a JSON array of
objects with fields "name", "idea", "rationale".`, taskContext(task), max)

	var ideas []map[string]any
	if err := p.runJSON(ctx, prompt, &ideas); err != nil {
		return nil, fmt.Errorf("generate diverse ideas: %w", err)
	}
	if len(ideas) > max {
		ideas = ideas[:max]
	}
	return ideas, nil
}

func (p *Anthropic) RetrieveRelevantKnowledge(ctx context.Context, task *models.Task) ([]string, error) {
	prompt := fmt.Sprintf(`%s

List established practices and prior art relevant to this task. Return
a JSON array of strings.`, taskContext(task))

	var knowledge []string
	if err := p.runJSON(ctx, prompt, &knowledge); err != nil {
		return nil, fmt.Errorf("retrieve relevant knowledge: %w", err)
	}
	return knowledge, nil
}

func (p *Anthropic) AnalyzeProjectStructure(ctx context.Context, task *models.Task) (map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Describe the structural context this task operates in. Return a JSON
object with fields "subject", "scope" ("narrow" or "broad"), and any
other dimensions worth noting.`, taskContext(task))

	var analysis map[string]any
	if err := p.runJSON(ctx, prompt, &analysis); err != nil {
		return nil, fmt.Errorf("analyze project structure: %w", err)
	}
	return analysis, nil
}

func (p *Anthropic) CreateComparisonMatrix(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Options:
%s

Score each option 1-5 on complexity, risk, effort, and maintainability.
Return a JSON array of objects with fields "idea", "complexity",
"risk", "effort", "maintainability".`, taskContext(task), formatOptions(ideas))

	var matrix []map[string]any
	if err := p.runJSON(ctx, prompt, &matrix); err != nil {
		return nil, fmt.Errorf("create comparison matrix: %w", err)
	}
	return matrix, nil
}

func (p *Anthropic) EvaluateOptions(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Options:
%s

Evaluate each option. Return a JSON array of objects with fields
"idea", "strength", "weakness", "score" (higher is better).`, taskContext(task), formatOptions(ideas))

	var evaluated []map[string]any
	if err := p.runJSON(ctx, prompt, &evaluated); err != nil {
		return nil, fmt.Errorf("evaluate options: %w", err)
	}
	return evaluated, nil
}

func (p *Anthropic) AnalyzeTradeOffs(ctx context.Context, task *models.Task, ideas []map[string]any) ([]map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Options:
%s

Name the trade-offs between competing options. Return a JSON array of
objects with fields "option_a", "option_b", "axis".`, taskContext(task), formatOptions(ideas))

	var tradeOffs []map[string]any
	if err := p.runJSON(ctx, prompt, &tradeOffs); err != nil {
		return nil, fmt.Errorf("analyze trade-offs: %w", err)
	}
	return tradeOffs, nil
}

func (p *Anthropic) FormulateDecisionCriteria(ctx context.Context, task *models.Task) (map[string]float64, error) {
	prompt := fmt.Sprintf(`%s

Produce weighted decision criteria for choosing among approaches to
this task. Return a JSON object mapping criterion name to a weight;
weights must sum to 1.0.`, taskContext(task))

	var criteria map[string]float64
	if err := p.runJSON(ctx, prompt, &criteria); err != nil {
		return nil, fmt.Errorf("formulate decision criteria: %w", err)
	}
	return criteria, nil
}

func (p *Anthropic) SelectBestOption(ctx context.Context, task *models.Task, options []map[string]any, criteria map[string]float64) (map[string]any, error) {
	criteriaJSON, _ := json.Marshal(criteria)
	prompt := fmt.Sprintf(`%s

Options:
%s

Criteria weights: %s

Select the single best option under these criteria. Return it as a
JSON object, copying its fields and adding "selection_reason".`, taskContext(task), formatOptions(options), criteriaJSON)

	var selected map[string]any
	if err := p.runJSON(ctx, prompt, &selected); err != nil {
		return nil, fmt.Errorf("select best option: %w", err)
	}
	return selected, nil
}

func (p *Anthropic) ElaborateDetails(ctx context.Context, task *models.Task, option map[string]any) ([]string, error) {
	optionJSON, _ := json.Marshal(option)
	prompt := fmt.Sprintf(`%s

Chosen option: %s

Expand the chosen option into concrete design details. Return a JSON
array of strings.`, taskContext(task), optionJSON)

	var details []string
	if err := p.runJSON(ctx, prompt, &details); err != nil {
		return nil, fmt.Errorf("elaborate details: %w", err)
	}
	return details, nil
}

func (p *Anthropic) CreateImplementationPlan(ctx context.Context, task *models.Task, details []string) ([]string, error) {
	prompt := fmt.Sprintf(`%s

Design details:
%s

Order these into a numbered implementation plan ending with a
verification step. Return a JSON array of strings.`, taskContext(task), formatLines(details))

	var plan []string
	if err := p.runJSON(ctx, prompt, &plan); err != nil {
		return nil, fmt.Errorf("create implementation plan: %w", err)
	}
	return plan, nil
}

func (p *Anthropic) OptimizeImplementation(ctx context.Context, task *models.Task, plan []string) (map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Plan:
%s

Suggest refinements: steps that can run in parallel, steps worth
deferring. Return a JSON object.`, taskContext(task), formatLines(plan))

	var optimized map[string]any
	if err := p.runJSON(ctx, prompt, &optimized); err != nil {
		return nil, fmt.Errorf("optimize implementation: %w", err)
	}
	return optimized, nil
}

func (p *Anthropic) PerformQualityAssurance(ctx context.Context, task *models.Task, plan []string) (map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Plan:
%s

Check the plan for gaps and risks. Return a JSON object with fields
"gaps" (array of strings) and "passed" (boolean).`, taskContext(task), formatLines(plan))

	var qa map[string]any
	if err := p.runJSON(ctx, prompt, &qa); err != nil {
		return nil, fmt.Errorf("perform quality assurance: %w", err)
	}
	return qa, nil
}

func (p *Anthropic) ExtractLearnings(ctx context.Context, task *models.Task, results map[models.Phase]map[string]any) ([]string, error) {
	resultsJSON, _ := json.Marshal(results)
	prompt := fmt.Sprintf(`%s

Phase results: %s

Distill the lessons from this cycle. Return a JSON array of strings.`, taskContext(task), resultsJSON)

	var learnings []string
	if err := p.runJSON(ctx, prompt, &learnings); err != nil {
		return nil, fmt.Errorf("extract learnings: %w", err)
	}
	return learnings, nil
}

func (p *Anthropic) RecognizePatterns(ctx context.Context, learnings []string) ([]string, error) {
	prompt := fmt.Sprintf(`Learnings:
%s

Name the recurring themes across these learnings. Return a JSON array
of strings.`, formatLines(learnings))

	var patterns []string
	if err := p.runJSON(ctx, prompt, &patterns); err != nil {
		return nil, fmt.Errorf("recognize patterns: %w", err)
	}
	return patterns, nil
}

func (p *Anthropic) IntegrateKnowledge(ctx context.Context, task *models.Task, learnings, patterns []string) (map[string]any, error) {
	prompt := fmt.Sprintf(`%s

Learnings:
%s

Patterns:
%s

Fold these into one knowledge summary for future cycles. Return a JSON
object with at least a "summary" field.`, taskContext(task), formatLines(learnings), formatLines(patterns))

	var knowledge map[string]any
	if err := p.runJSON(ctx, prompt, &knowledge); err != nil {
		return nil, fmt.Errorf("integrate knowledge: %w", err)
	}
	return knowledge, nil
}

func (p *Anthropic) GenerateImprovementSuggestions(ctx context.Context, task *models.Task, learnings []string) ([]string, error) {
	prompt := fmt.Sprintf(`%s

Learnings:
%s

Propose process improvements for the next cycle. Return a JSON array
of strings.`, taskContext(task), formatLines(learnings))

	var suggestions []string
	if err := p.runJSON(ctx, prompt, &suggestions); err != nil {
		return nil, fmt.Errorf("generate improvement suggestions: %w", err)
	}
	return suggestions, nil
}

func formatOptions(options []map[string]any) string {
	var b strings.Builder
	for i, opt := range options {
		idea, _ := opt["idea"].(string)
		if idea == "" {
			encoded, _ := json.Marshal(opt)
			idea = string(encoded)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, idea)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	return strings.TrimRight(b.String(), "\n")
}
