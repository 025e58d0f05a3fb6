// Package roles computes and mutates a team's role map: explicit
// assignment, automatic assignment, phase-tailored assignment,
// round-robin rotation, and Primus election by weighted expertise.
package roles

import "github.com/forgelight/quorum/pkg/models"

// RoleKeywords is the single source of truth for role-relevance
// keywords. An expertise tag containing a keyword counts toward the
// owning role's score: weight 2 when scoring for that role itself,
// weight 1 when scoring for any other role.
var RoleKeywords = map[models.Role][]string{
	models.RolePrimus: {
		"leadership",
		"coordination",
		"architecture",
		"planning",
		"strategy",
	},
	models.RoleWorker: {
		"implementation",
		"coding",
		"development",
		"programming",
		"refactoring",
	},
	models.RoleSupervisor: {
		"review",
		"oversight",
		"quality",
		"security",
		"compliance",
	},
	models.RoleDesigner: {
		"design",
		"interface",
		"modeling",
		"ux",
		"api",
	},
	models.RoleEvaluator: {
		"testing",
		"evaluation",
		"validation",
		"metrics",
		"benchmarking",
	},
}
