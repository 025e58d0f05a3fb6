// Package manifest parses declarative cycle manifests and gates phase
// progression by their dependency graphs.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgelight/quorum/pkg/models"
)

// ErrParse indicates a manifest could not be parsed or validated.
var ErrParse = errors.New("manifest parse error")

// ErrDependencyUnmet indicates a phase was entered before one of its
// declared dependencies completed.
var ErrDependencyUnmet = errors.New("phase dependency unmet")

// PhaseSpec is one phase's entry in a manifest.
type PhaseSpec struct {
	// DependsOn lists phases that must complete before this one runs.
	DependsOn []string `yaml:"depends_on" json:"depends_on,omitempty"`
	// Instructions carries free-form guidance for the phase handler.
	Instructions string `yaml:"instructions" json:"instructions,omitempty"`
}

// Manifest is a declarative, dependency-annotated cycle description.
type Manifest struct {
	// ID identifies the manifest (and seeds the task id).
	ID string `yaml:"id" json:"id"`
	// Description describes the cycle's task.
	Description string `yaml:"description" json:"description"`
	// Requirements carries optional task requirements.
	Requirements string `yaml:"requirements" json:"requirements,omitempty"`
	// Phases holds per-phase dependency and instruction metadata,
	// keyed by phase name. Phases absent from the map have no
	// declared dependencies.
	Phases map[string]PhaseSpec `yaml:"phases" json:"phases,omitempty"`
}

// Parse parses and validates a manifest from YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseFile parses a manifest from a YAML file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrParse, path, err)
	}
	return Parse(data)
}

// validate checks that every phase name and dependency is a known
// phase and that the dependency graph is acyclic.
func (m *Manifest) validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: manifest has no id", ErrParse)
	}

	for name, spec := range m.Phases {
		if _, ok := models.ParsePhase(name); !ok {
			return fmt.Errorf("%w: unknown phase %q", ErrParse, name)
		}
		for _, dep := range spec.DependsOn {
			if _, ok := models.ParsePhase(dep); !ok {
				return fmt.Errorf("%w: phase %q depends on unknown phase %q", ErrParse, name, dep)
			}
		}
	}

	if m.hasCycle() {
		return fmt.Errorf("%w: circular phase dependency", ErrParse)
	}
	return nil
}

// hasCycle runs a colored depth-first search over the dependency
// edges: white (0) unvisited, gray (1) in progress, black (2) done.
// A gray-to-gray edge is a cycle.
func (m *Manifest) hasCycle() bool {
	colors := make(map[string]int)

	var visit func(name string) bool
	visit = func(name string) bool {
		colors[name] = 1
		for _, dep := range m.Phases[name].DependsOn {
			switch colors[dep] {
			case 1:
				return true
			case 0:
				if visit(dep) {
					return true
				}
			}
		}
		colors[name] = 2
		return false
	}

	for name := range m.Phases {
		if colors[name] == 0 {
			if visit(name) {
				return true
			}
		}
	}
	return false
}

// Dependencies returns the declared dependency phases of a phase.
func (m *Manifest) Dependencies(phase models.Phase) []models.Phase {
	spec, ok := m.Phases[string(phase)]
	if !ok {
		return nil
	}
	deps := make([]models.Phase, 0, len(spec.DependsOn))
	for _, d := range spec.DependsOn {
		deps = append(deps, models.Phase(d))
	}
	return deps
}

// Instructions returns the declared instructions for a phase.
func (m *Manifest) Instructions(phase models.Phase) string {
	return m.Phases[string(phase)].Instructions
}

// CheckDependencies verifies that every declared dependency of the
// phase has completed in the trace.
func (m *Manifest) CheckDependencies(phase models.Phase, trace *Trace) error {
	for _, dep := range m.Dependencies(phase) {
		if !trace.Completed(dep) {
			return fmt.Errorf("%w: phase %q requires %q to complete first", ErrDependencyUnmet, phase, dep)
		}
	}
	return nil
}
