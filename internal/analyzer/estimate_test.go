package analyzer

import (
	"testing"
)

func i64(v int64) *int64 { return &v }

func TestClassifyRatio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  EstimateClass
	}{
		{1.0, EstimateAccurate},
		{0.5, EstimateAccurate},
		{2.0, EstimateAccurate},
		{2.01, EstimateUnder},
		{10.0, EstimateUnder},
		{10.01, EstimateSevere},
		{50.0, EstimateSevere},
		{0.49, EstimateOver},
		{0.1, EstimateOver},
		{0.09, EstimateSevere},
	}

	for _, tt := range tests {
		if got := classifyRatio(tt.ratio); got != tt.want {
			t.Errorf("classifyRatio(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestAnalyzeEstimates_SkipsNodesWithoutData(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "no-actuals", PlanRows: 100},
		{ID: "no-estimate", PlanRows: 0, ActualRows: i64(50)},
		{ID: "both", PlanRows: 100, ActualRows: i64(100)},
	}

	got := AnalyzeEstimates(nodes)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].NodeID != "both" {
		t.Errorf("NodeID = %q, want both", got[0].NodeID)
	}
	if got[0].Class != EstimateAccurate {
		t.Errorf("Class = %v, want accurate", got[0].Class)
	}
}

func TestAnalyzeEstimates_SevereRatio(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "n", PlanRows: 100, ActualRows: i64(5000)},
	}

	got := AnalyzeEstimates(nodes)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Ratio != 50 {
		t.Errorf("Ratio = %v, want 50", got[0].Ratio)
	}
	if got[0].Class != EstimateSevere {
		t.Errorf("Class = %v, want severe", got[0].Class)
	}
}

func TestAnalyzeEstimates_WorstFirst(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "accurate", PlanRows: 100, ActualRows: i64(110)},
		{ID: "over", PlanRows: 100, ActualRows: i64(20)},
		{ID: "severe", PlanRows: 100, ActualRows: i64(9000)},
		{ID: "under", PlanRows: 100, ActualRows: i64(500)},
	}

	got := AnalyzeEstimates(nodes)
	wantOrder := []string{"severe", "under", "over", "accurate"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(got))
	}
	for i, want := range wantOrder {
		if got[i].NodeID != want {
			t.Errorf("position %d = %q, want %q", i, got[i].NodeID, want)
		}
	}
}
