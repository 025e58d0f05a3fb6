package consensus

import (
	"regexp"
	"sort"
	"strings"

	"github.com/forgelight/quorum/pkg/models"
)

var (
	nounPhrasePattern = regexp.MustCompile(`\bthe\s+([a-z0-9]+(?:\s+[a-z0-9]+)?)`)
	imperativePattern = regexp.MustCompile(`\b(?:should|must)\s+([a-z0-9]+)`)
)

// keyPoint is one candidate sentence for the synthesis, carrying its
// author's weight and conflict involvement for ordering.
type keyPoint struct {
	text      string
	agent     string
	weight    float64
	conflicts int
}

// buildSynthesis merges the key points of every opinion into one
// deduplicated, expertise-weighted synthesis.
//
// Each agent is weighted 0.5 + 0.5 x (expertise-token overlap with
// the task). Points are ordered by weight descending, then by the
// author's conflict count ascending, and a point survives only if its
// derived topic has not been seen yet.
func buildSynthesis(task *models.Task, opinions []models.Opinion, conflicts []models.Conflict, expertise map[string][]string, analyzer OpinionAnalyzer) *models.Synthesis {
	weights := make(map[string]float64, len(opinions))
	conflictCounts := make(map[string]int)
	for _, c := range conflicts {
		conflictCounts[c.AgentA]++
		conflictCounts[c.AgentB]++
	}

	var points []keyPoint
	for _, op := range opinions {
		w := expertiseWeight(expertise[op.Agent], task)
		weights[op.Agent] = w

		for _, text := range []string{op.Text, op.Rationale} {
			if strings.TrimSpace(text) == "" {
				continue
			}
			for _, sentence := range analyzer.KeySentences(text) {
				points = append(points, keyPoint{
					text:      sentence,
					agent:     op.Agent,
					weight:    w,
					conflicts: conflictCounts[op.Agent],
				})
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].weight != points[j].weight {
			return points[i].weight > points[j].weight
		}
		return points[i].conflicts < points[j].conflicts
	})

	seen := make(map[string]bool)
	var kept []string
	for _, p := range points {
		topic := deriveTopic(p.text)
		if seen[topic] {
			continue
		}
		seen[topic] = true
		kept = append(kept, p.text)
	}

	text := strings.Join(kept, ". ")
	if text != "" {
		text += "."
	}

	return &models.Synthesis{
		Text:        text,
		KeyPoints:   kept,
		Weights:     weights,
		Method:      models.MethodConflictResolutionSynthesis,
		Readability: analyzeReadability(text),
	}
}

// expertiseWeight maps an agent's expertise relevance to [0.5, 1.0]:
// 0.5 base plus half the fraction of task tokens covered by the
// agent's expertise tags.
func expertiseWeight(tags []string, task *models.Task) float64 {
	if task == nil || len(tags) == 0 {
		return 0.5
	}

	text := strings.ToLower(task.Description + " " + task.Requirements)
	tokens := tokenPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return 0.5
	}

	joined := strings.ToLower(strings.Join(tags, " "))
	matched := 0
	for _, tok := range tokens {
		if strings.Contains(joined, tok) {
			matched++
		}
	}
	return 0.5 + 0.5*float64(matched)/float64(len(tokens))
}

// deriveTopic reduces a key point to its topic for deduplication:
// the first noun phrase after "the", else the token following
// "should" or "must", else the first three words.
func deriveTopic(point string) string {
	lower := strings.ToLower(point)

	if m := nounPhrasePattern.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	if m := imperativePattern.FindStringSubmatch(lower); m != nil {
		return m[1]
	}

	words := tokenPattern.FindAllString(lower, -1)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
