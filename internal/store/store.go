// Package store provides the durable store the coordination engine
// persists phase results and decisions into. Items are keyed by
// (kind, phase) plus caller metadata such as the cycle id.
//
// Retry, fallback and circuit-breaking are the store implementation's
// own concern; a failed call is fatal to the phase transition that
// issued it.
package store

import (
	"context"
	"errors"

	"github.com/forgelight/quorum/pkg/models"
)

// ErrNotFound indicates no stored item matched the retrieval key.
var ErrNotFound = errors.New("no matching item in store")

// Store is the durable store interface. Both calls block until the
// backend finishes or fails.
type Store interface {
	// StoreWithEDRRPhase persists a payload under the given kind and
	// phase, annotated with metadata.
	StoreWithEDRRPhase(ctx context.Context, payload any, kind string, phase models.Phase, metadata map[string]string) error
	// RetrieveWithEDRRPhase returns the most recently stored payload
	// matching the kind, phase and every metadata entry, decoded into
	// a map. Returns ErrNotFound if nothing matches.
	RetrieveWithEDRRPhase(ctx context.Context, kind string, phase models.Phase, metadata map[string]string) (map[string]any, error)
	// Close releases the backend.
	Close() error
}

// Lister is implemented by stores that can enumerate every item of a
// kind across phases, newest first.
type Lister interface {
	// ListWithKind returns every stored payload of the given kind
	// matching all metadata entries, most recent first. An empty
	// result is not an error.
	ListWithKind(ctx context.Context, kind string, metadata map[string]string) ([]map[string]any, error)
}

// metadataSubset reports whether have contains every entry of want.
func metadataSubset(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
