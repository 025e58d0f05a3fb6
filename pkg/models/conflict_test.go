package models

import "testing"

func TestSeverityBand(t *testing.T) {
	tests := []struct {
		name     string
		severity float64
		want     string
	}{
		{"direct negation is high", 0.9, SeverityHigh},
		{"just above boundary is high", 0.71, SeverityHigh},
		{"boundary itself is medium", 0.7, SeverityMedium},
		{"divergent approach is medium", 0.6, SeverityMedium},
		{"medium floor", 0.4, SeverityMedium},
		{"below medium floor is low", 0.39, SeverityLow},
		{"zero is low", 0.0, SeverityLow},
		{"maximum is high", 1.0, SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeverityBand(tt.severity); got != tt.want {
				t.Errorf("SeverityBand(%v) = %q, want %q", tt.severity, got, tt.want)
			}
		})
	}
}

func TestPriorityForSeverity(t *testing.T) {
	tests := []struct {
		severity float64
		want     int
	}{
		{1.0, 1},
		{0.9, 1},
		{0.8, 2},
		{0.71, 2},
		{0.7, 3},
		{0.4, 3},
		{0.39, 4},
		{0.0, 4},
	}

	for _, tt := range tests {
		if got := PriorityForSeverity(tt.severity); got != tt.want {
			t.Errorf("PriorityForSeverity(%v) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

// High-severity conflicts must always derive priority 2 or better.
func TestPriorityForSeverity_HighSeverityFloor(t *testing.T) {
	for _, sev := range []float64{0.71, 0.75, 0.8, 0.9, 0.95, 1.0} {
		if got := PriorityForSeverity(sev); got > 2 {
			t.Errorf("PriorityForSeverity(%v) = %d, want <= 2 for high severity", sev, got)
		}
	}
}

func TestConflict_Involves(t *testing.T) {
	c := Conflict{AgentA: "ada", AgentB: "grace"}

	if !c.Involves("ada") {
		t.Error("Involves(ada) = false, want true")
	}
	if !c.Involves("grace") {
		t.Error("Involves(grace) = false, want true")
	}
	if c.Involves("alan") {
		t.Error("Involves(alan) = true, want false")
	}
}

func TestConflictType_Valid(t *testing.T) {
	for _, ct := range []ConflictType{ConflictTradeOff, ConflictResourceAllocation, ConflictImplementation, ConflictConceptual} {
		if !ct.Valid() {
			t.Errorf("ConflictType(%q).Valid() = false, want true", ct)
		}
	}
	if ConflictType("personal").Valid() {
		t.Error(`ConflictType("personal").Valid() = true, want false`)
	}
}
