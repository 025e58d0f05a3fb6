package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/forgelight/quorum/pkg/models"
)

type memoryItem struct {
	kind     string
	phase    models.Phase
	metadata map[string]string
	payload  map[string]any
}

// Memory is an in-process Store. It carries the same JSON round-trip
// semantics as the SQLite store so callers see identical payload
// shapes regardless of backend.
type Memory struct {
	mu    sync.RWMutex
	items []memoryItem
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// StoreWithEDRRPhase appends the payload after a JSON round-trip.
func (m *Memory) StoreWithEDRRPhase(ctx context.Context, payload any, kind string, phase models.Phase, metadata map[string]string) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	copied := make(map[string]string, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, memoryItem{
		kind:     kind,
		phase:    phase,
		metadata: copied,
		payload:  decoded,
	})
	return nil
}

// RetrieveWithEDRRPhase returns the most recently stored matching item.
func (m *Memory) RetrieveWithEDRRPhase(ctx context.Context, kind string, phase models.Phase, metadata map[string]string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.items) - 1; i >= 0; i-- {
		item := m.items[i]
		if item.kind != kind || item.phase != phase {
			continue
		}
		if !metadataSubset(item.metadata, metadata) {
			continue
		}
		return item.payload, nil
	}
	return nil, fmt.Errorf("%w: kind=%s phase=%s", ErrNotFound, kind, phase)
}

// ListWithKind returns every matching payload of the kind, newest
// first, regardless of phase.
func (m *Memory) ListWithKind(ctx context.Context, kind string, metadata map[string]string) ([]map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []map[string]any
	for i := len(m.items) - 1; i >= 0; i-- {
		item := m.items[i]
		if item.kind != kind {
			continue
		}
		if !metadataSubset(item.metadata, metadata) {
			continue
		}
		out = append(out, item.payload)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

// Len reports the number of stored items.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
