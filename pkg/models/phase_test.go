package models

import "testing"

func TestPhase_Valid(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		want  bool
	}{
		{"expand is valid", PhaseExpand, true},
		{"differentiate is valid", PhaseDifferentiate, true},
		{"refine is valid", PhaseRefine, true},
		{"retrospect is valid", PhaseRetrospect, true},
		{"empty string is invalid", Phase(""), false},
		{"unknown phase is invalid", Phase("deploy"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.phase.Valid(); got != tt.want {
				t.Errorf("Phase(%q).Valid() = %v, want %v", tt.phase, got, tt.want)
			}
		})
	}
}

func TestPhase_Index(t *testing.T) {
	tests := []struct {
		phase Phase
		want  int
	}{
		{PhaseExpand, 0},
		{PhaseDifferentiate, 1},
		{PhaseRefine, 2},
		{PhaseRetrospect, 3},
		{Phase("unknown"), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			if got := tt.phase.Index(); got != tt.want {
				t.Errorf("Phase(%q).Index() = %d, want %d", tt.phase, got, tt.want)
			}
		})
	}
}

func TestPhase_Next(t *testing.T) {
	tests := []struct {
		name   string
		phase  Phase
		want   Phase
		wantOK bool
	}{
		{"expand advances to differentiate", PhaseExpand, PhaseDifferentiate, true},
		{"differentiate advances to refine", PhaseDifferentiate, PhaseRefine, true},
		{"refine advances to retrospect", PhaseRefine, PhaseRetrospect, true},
		{"retrospect is terminal", PhaseRetrospect, "", false},
		{"unknown phase has no next", Phase("bogus"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.phase.Next()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Phase(%q).Next() = (%q, %v), want (%q, %v)", tt.phase, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
