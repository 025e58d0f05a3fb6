// Package consensus merges divergent agent opinions into a single
// recorded decision: it detects conflicts between current opinions,
// resolves them by weighted-expertise synthesis or majority vote, and
// maintains the durable decision ledger with generated stakeholder
// explanations.
package consensus

import (
	"regexp"
	"strings"

	"github.com/forgelight/quorum/pkg/models"
)

// OpinionAnalyzer is the pluggable text-analysis strategy behind
// conflict detection and key-point extraction. The default is
// keyword/regex driven; an embedding-based implementation can replace
// it without touching the consensus control flow.
type OpinionAnalyzer interface {
	// DetectConflict reports whether two current opinions on the same
	// task conflict, and describes the conflict if so.
	DetectConflict(task *models.Task, a, b models.Opinion) (models.Conflict, bool)
	// KeySentences extracts the decision-bearing sentences of a text.
	// If no sentence qualifies, all sentences are returned.
	KeySentences(text string) []string
}

// Conflict severities by detection rule.
const (
	severityDirectNegation    = 0.9
	severityOpposingRecommend = 0.8
	severityDivergentApproach = 0.6
)

// overlapThreshold is the token-overlap fraction below which two
// opinions about the same solution topic count as conflicting.
const overlapThreshold = 0.3

var (
	affirmativeTerms = []string{"yes", "agree", "definitely", "certainly", "absolutely"}
	negatingTerms    = []string{"no", "not", "never", "disagree", "oppose", "reject"}

	// Generic solution-topic words; low-overlap opinions conflict only
	// when both are talking about one of these.
	solutionTopics = []string{"approach", "method", "solution", "implementation", "design"}

	decisionIndicators = []string{"should", "must", "recommend", "suggest", "important", "critical", "key", "essential"}

	resourceTerms = []string{"budget", "cost", "time", "resource", "resources", "capacity", "allocation"}

	namedApproachPattern = regexp.MustCompile(`\buse\s+([a-z0-9_-]+)`)
	recommendPattern     = regexp.MustCompile(`\b(?:should|recommend|suggest)\s+([a-z0-9_-]+)`)
	rejectPattern        = regexp.MustCompile(`\b(?:should\s+not|shouldn't|avoid|reject|against)\s+([a-z0-9_-]+)`)
	sentencePattern      = regexp.MustCompile(`[.!?]+`)
	tokenPattern         = regexp.MustCompile(`[a-z0-9]+`)
)

// KeywordAnalyzer is the default regex/keyword opinion analyzer.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer returns the default analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// DetectConflict applies the detection rules in order of decreasing
// severity:
//  1. direct affirmative/negative contradiction (severity 0.9)
//  2. one side recommends an action the other rejects (0.8)
//  3. both name a concrete approach and the names differ (0.6)
//  4. token overlap below 30% while both discuss a solution topic
//     (severity 1 - overlap)
func (k *KeywordAnalyzer) DetectConflict(task *models.Task, a, b models.Opinion) (models.Conflict, bool) {
	textA := strings.ToLower(a.Text)
	textB := strings.ToLower(b.Text)

	severity := -1.0
	var kind models.ConflictType

	switch {
	case directNegation(textA, textB):
		severity = severityDirectNegation
		kind = models.ConflictConceptual
	case opposingRecommendation(textA, textB):
		severity = severityOpposingRecommend
		kind = models.ConflictTradeOff
	case divergentNamedApproach(textA, textB):
		severity = severityDivergentApproach
		kind = models.ConflictImplementation
	default:
		overlap := tokenOverlap(textA, textB)
		if overlap < overlapThreshold && mentionsSolutionTopic(textA) && mentionsSolutionTopic(textB) {
			severity = 1 - overlap
			kind = models.ConflictConceptual
		}
	}

	if severity < 0 {
		return models.Conflict{}, false
	}

	// Disagreements framed around resources override the rule-derived
	// category.
	if containsAnyTerm(textA, resourceTerms) && containsAnyTerm(textB, resourceTerms) {
		kind = models.ConflictResourceAllocation
	}

	taskID := ""
	if task != nil {
		taskID = task.ID
	}
	return models.Conflict{
		TaskID:      taskID,
		AgentA:      a.Agent,
		AgentB:      b.Agent,
		OpinionA:    a.Text,
		OpinionB:    b.Text,
		RationaleA:  a.Rationale,
		RationaleB:  b.Rationale,
		Type:        kind,
		Severity:    severity,
		Priority:    models.PriorityForSeverity(severity),
		Assumptions: documentAssumptions(a, b),
	}, true
}

// KeySentences returns the sentences containing a decision-indicator
// word, or every sentence if none qualifies.
func (k *KeywordAnalyzer) KeySentences(text string) []string {
	var sentences []string
	for _, s := range sentencePattern.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	var keyed []string
	for _, s := range sentences {
		if containsAnyTerm(strings.ToLower(s), decisionIndicators) {
			keyed = append(keyed, s)
		}
	}
	if len(keyed) == 0 {
		return sentences
	}
	return keyed
}

func directNegation(a, b string) bool {
	return (containsAnyTerm(a, affirmativeTerms) && containsAnyTerm(b, negatingTerms)) ||
		(containsAnyTerm(b, affirmativeTerms) && containsAnyTerm(a, negatingTerms))
}

func opposingRecommendation(a, b string) bool {
	return rejectsRecommendation(a, b) || rejectsRecommendation(b, a)
}

// rejectsRecommendation reports whether the second text explicitly
// rejects an action the first text recommends.
func rejectsRecommendation(recommends, rejects string) bool {
	rejected := make(map[string]bool)
	for _, m := range rejectPattern.FindAllStringSubmatch(rejects, -1) {
		rejected[m[1]] = true
	}
	if len(rejected) == 0 {
		return false
	}
	for _, m := range recommendPattern.FindAllStringSubmatch(recommends, -1) {
		if m[1] != "not" && rejected[m[1]] {
			return true
		}
	}
	return false
}

func divergentNamedApproach(a, b string) bool {
	ma := namedApproachPattern.FindStringSubmatch(a)
	mb := namedApproachPattern.FindStringSubmatch(b)
	return ma != nil && mb != nil && ma[1] != mb[1]
}

// tokenOverlap computes the Jaccard overlap of the two texts' word
// sets.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		set[tok] = true
	}
	return set
}

func mentionsSolutionTopic(text string) bool {
	return containsAnyTerm(text, solutionTopics)
}

// containsAnyTerm reports whether text contains any of the terms as a
// whole word.
func containsAnyTerm(text string, terms []string) bool {
	tokens := tokenSet(text)
	for _, term := range terms {
		if strings.ContainsAny(term, " ") {
			if strings.Contains(text, term) {
				return true
			}
			continue
		}
		if tokens[term] {
			return true
		}
	}
	return false
}

// disciplines maps each documented discipline to the vocabulary that
// places an opinion inside it.
var disciplines = map[string][]string{
	"architecture": {"architecture", "structure", "modular", "component"},
	"security":     {"security", "auth", "authentication", "encryption"},
	"performance":  {"performance", "latency", "cache", "caching", "throughput"},
	"testing":      {"test", "testing", "coverage", "validation"},
}

// documentAssumptions records, per discipline touched by either
// opinion, that the two agents hold differing assumptions there.
func documentAssumptions(a, b models.Opinion) map[string]string {
	textA := strings.ToLower(a.Text + " " + a.Rationale)
	textB := strings.ToLower(b.Text + " " + b.Rationale)

	out := make(map[string]string)
	for discipline, vocab := range disciplines {
		inA := containsAnyTerm(textA, vocab)
		inB := containsAnyTerm(textB, vocab)
		if !inA && !inB {
			continue
		}
		switch {
		case inA && inB:
			out[discipline] = a.Agent + " and " + b.Agent + " hold differing assumptions about " + discipline
		case inA:
			out[discipline] = a.Agent + " raises " + discipline + " concerns that " + b.Agent + " does not address"
		default:
			out[discipline] = b.Agent + " raises " + discipline + " concerns that " + a.Agent + " does not address"
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
