package roles

import (
	"regexp"
	"strings"

	"github.com/forgelight/quorum/pkg/models"
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// taskTokens tokenizes the task's description and requirements into
// lowercase words. The task's phase tag contributes a token so that
// phase-tailored assignment can favor phase-relevant expertise.
func taskTokens(task *models.Task) []string {
	if task == nil {
		return nil
	}
	text := strings.ToLower(task.Description + " " + task.Requirements + " " + string(task.Phase))
	return wordPattern.FindAllString(text, -1)
}

// scoreExpertise computes an agent's expertise score for the target
// role on the given task tokens.
//
// The score has two parts:
//   - keyword relevance: each expertise tag containing a role keyword
//     scores 2 when the keyword belongs to the target role and 1 when
//     it belongs to any other role;
//   - task relevance: each (task token, tag) substring match scores 1.
//
// Agents with no expertise tags score 0.
func scoreExpertise(tags []string, target models.Role, tokens []string) int {
	if len(tags) == 0 {
		return 0
	}

	score := 0
	for _, tag := range tags {
		tag = strings.ToLower(tag)

		for role, keywords := range RoleKeywords {
			if !tagContainsAny(tag, keywords) {
				continue
			}
			if role == target {
				score += 2
			} else {
				score++
			}
		}

		for _, token := range tokens {
			if strings.Contains(tag, token) {
				score++
			}
		}
	}
	return score
}

func tagContainsAny(tag string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(tag, kw) {
			return true
		}
	}
	return false
}
