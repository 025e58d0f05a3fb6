package main

import (
	"testing"
)

func TestFilterDecisions(t *testing.T) {
	// Newest first, as ListWithKind returns them. d1 appears twice:
	// the later record carries the implemented flag.
	records := []map[string]any{
		{"id": "d1", "task_id": "t1", "method": "majority_opinion", "implemented": true},
		{"id": "d2", "task_id": "t2", "method": "synthesis", "implemented": false},
		{"id": "d1", "task_id": "t1", "method": "majority_opinion", "implemented": false},
	}

	tests := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"no filters dedupes by id", nil, []string{"d1", "d2"}},
		{"by task", map[string]string{"task_id": "t2"}, []string{"d2"}},
		{"by id", map[string]string{"id": "d1"}, []string{"d1"}},
		{"by method", map[string]string{"method": "synthesis"}, []string{"d2"}},
		{"implemented uses latest record", map[string]string{"implemented": "true"}, []string{"d1"}},
		{"not implemented", map[string]string{"implemented": "false"}, []string{"d2"}},
		{"exact match misses", map[string]string{"task_id": "t"}, nil},
		{"unknown key matches nothing", map[string]string{"color": "blue"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterDecisions(records, tt.filters)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d decisions, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i]["id"] != want {
					t.Errorf("decision %d id = %v, want %s", i, got[i]["id"], want)
				}
			}
		})
	}
}
