package consensus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/forgelight/quorum/internal/team"
	"github.com/forgelight/quorum/pkg/models"
)

// IdeaSource produces candidate positions for a task. It is consulted
// once per consensus round, and only when no agent has opined at all.
type IdeaSource interface {
	GenerateDiverseIdeas(ctx context.Context, task *models.Task, max int) ([]map[string]any, error)
}

// DecisionStore persists decision records. A store failure is fatal
// to the consensus round that issued the write.
type DecisionStore interface {
	StoreWithEDRRPhase(ctx context.Context, payload any, kind string, phase models.Phase, metadata map[string]string) error
}

// Builder runs consensus rounds for one team and tracks the resulting
// decisions. It holds no locks; callers serialize concurrent rounds
// against the same team.
type Builder struct {
	team     *team.Team
	ideas    IdeaSource
	analyzer OpinionAnalyzer
	store    DecisionStore
	tracked  map[string]*models.Decision
	phaseOf  map[string]models.Phase
	order    []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithAnalyzer replaces the default keyword analyzer.
func WithAnalyzer(a OpinionAnalyzer) Option {
	return func(b *Builder) { b.analyzer = a }
}

// WithStore makes the builder write every decision, and every later
// change to its implementation fields, to the durable store.
func WithStore(s DecisionStore) Option {
	return func(b *Builder) { b.store = s }
}

// NewBuilder creates a consensus builder for the team. ideas may be
// nil, in which case synthetic opinions fall back to a fixed template.
func NewBuilder(t *team.Team, ideas IdeaSource, opts ...Option) *Builder {
	b := &Builder{
		team:     t,
		ideas:    ideas,
		analyzer: NewKeywordAnalyzer(),
		tracked:  make(map[string]*models.Decision),
		phaseOf:  make(map[string]models.Phase),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildConsensus runs one consensus round for the task: it collects
// each agent's current opinion (generating one synthetic round if none
// exist), identifies conflicts, resolves them by weighted synthesis or
// takes the majority opinion, and records the decision with a
// stakeholder explanation.
func (b *Builder) BuildConsensus(ctx context.Context, task *models.Task) (*models.ConsensusResult, error) {
	if task == nil {
		return nil, fmt.Errorf("build consensus: task is nil")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	opinions := b.team.CurrentOpinions(task.ID)
	if len(opinions) == 0 {
		if err := b.generateSyntheticOpinions(ctx, task); err != nil {
			return nil, fmt.Errorf("generate synthetic opinions: %w", err)
		}
		opinions = b.team.CurrentOpinions(task.ID)
	}
	if len(opinions) == 0 {
		return nil, fmt.Errorf("build consensus: team %q has no members to opine", b.team.Name())
	}

	var conflicts []models.Conflict
	for i := 0; i < len(opinions); i++ {
		for j := i + 1; j < len(opinions); j++ {
			if c, ok := b.analyzer.DetectConflict(task, opinions[i], opinions[j]); ok {
				conflicts = append(conflicts, c)
			}
		}
	}

	contributors := make([]string, 0, len(opinions))
	for _, op := range opinions {
		contributors = append(contributors, op.Agent)
	}

	now := time.Now().UTC()
	decision := &models.Decision{
		ID:            task.ID + "_" + strconv.FormatInt(now.UnixNano(), 10),
		TaskID:        task.ID,
		Opinions:      opinions,
		ConflictCount: len(conflicts),
		Contributors:  contributors,
		Timestamp:     now,
	}

	if len(conflicts) > 0 {
		synthesis := buildSynthesis(task, opinions, conflicts, b.teamExpertise(), b.analyzer)
		decision.Method = models.MethodConflictResolutionSynthesis
		decision.Text = synthesis.Text
		decision.Synthesis = synthesis
	} else {
		decision.Method = models.MethodMajorityOpinion
		decision.Text = majorityOpinion(opinions)
	}

	decision.Explanation = stakeholderExplanation(decision, opinions)

	if err := b.team.RecordDecision(decision); err != nil {
		return nil, err
	}
	b.tracked[decision.ID] = decision
	b.phaseOf[decision.ID] = decisionPhase(task)
	b.order = append(b.order, decision.ID)

	if err := b.persistDecision(ctx, decision); err != nil {
		return nil, fmt.Errorf("persist decision: %w", err)
	}

	return &models.ConsensusResult{
		Method:        decision.Method,
		Contributors:  contributors,
		Text:          decision.Text,
		DecisionID:    decision.ID,
		ConflictCount: len(conflicts),
		Explanation:   decision.Explanation,
		Timestamp:     now,
	}, nil
}

// persistDecision writes the decision to the durable store, tagged by
// the phase the consensus round ran in. Re-invoked whenever the
// implementation fields change, appending a fresh record so the
// latest retrieval reflects them.
func (b *Builder) persistDecision(ctx context.Context, d *models.Decision) error {
	if b.store == nil {
		return nil
	}
	return b.store.StoreWithEDRRPhase(ctx, d, "decision", b.phaseOf[d.ID], map[string]string{
		"task_id":     d.TaskID,
		"decision_id": d.ID,
		"method":      d.Method,
	})
}

// decisionPhase is the phase a decision is stored under: the task's
// declared phase, defaulting to Refine, where consensus rounds run
// during a cycle.
func decisionPhase(task *models.Task) models.Phase {
	if task.Phase.Valid() {
		return task.Phase
	}
	return models.PhaseRefine
}

// generateSyntheticOpinions runs one round of opinion generation so a
// consensus round always has positions to work with.
func (b *Builder) generateSyntheticOpinions(ctx context.Context, task *models.Task) error {
	members := b.team.Members()

	var ideas []map[string]any
	if b.ideas != nil {
		generated, err := b.ideas.GenerateDiverseIdeas(ctx, task, len(members))
		if err != nil {
			return err
		}
		ideas = generated
	}

	now := time.Now().UTC()
	for i, member := range members {
		text := "No strong position on: " + task.Description
		rationale := "Generated in the absence of a stated opinion."
		if len(ideas) > 0 {
			idea := ideas[i%len(ideas)]
			if s, ok := idea["idea"].(string); ok && s != "" {
				text = s
			}
			if s, ok := idea["rationale"].(string); ok && s != "" {
				rationale = s
			}
		}
		b.team.AddOpinion(models.Opinion{
			Agent:     member.Name(),
			TaskID:    task.ID,
			Text:      text,
			Rationale: rationale,
			Timestamp: now,
		})
	}
	return nil
}

// majorityOpinion returns the most frequent opinion text, ties broken
// by team order.
func majorityOpinion(opinions []models.Opinion) string {
	counts := make(map[string]int)
	for _, op := range opinions {
		counts[op.Text]++
	}

	best := ""
	bestCount := 0
	for _, op := range opinions {
		if counts[op.Text] > bestCount {
			best = op.Text
			bestCount = counts[op.Text]
		}
	}
	return best
}

// teamExpertise snapshots each member's expertise tags by name.
func (b *Builder) teamExpertise() map[string][]string {
	out := make(map[string][]string)
	for _, member := range b.team.Members() {
		out[member.Name()] = member.Expertise()
	}
	return out
}
