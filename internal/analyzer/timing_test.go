package analyzer

import "testing"

func f64(v float64) *float64 { return &v }

func TestAggregateTimings_NoTimingData(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "a", NodeType: "Seq Scan", PlanRows: 100},
	}

	if got := AggregateTimings(nodes, 0, 0); got != nil {
		t.Fatalf("expected nil for plain EXPLAIN output, got %+v", got)
	}
}

func TestAggregateTimings_Shares(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "root", NodeType: "Hash Join", ActualTotalTime: f64(100), ActualRows: i64(1000)},
		{ID: "scan", NodeType: "Seq Scan", RelationName: "users", ActualTotalTime: f64(80), ActualRows: i64(1000)},
	}

	got := AggregateTimings(nodes, 200, 1.5)
	if got == nil {
		t.Fatal("expected metrics")
	}
	if !got.HasActualData {
		t.Error("HasActualData = false, want true")
	}
	if got.ExecutionTimeMs != 200 || got.PlanningTimeMs != 1.5 {
		t.Errorf("envelope times = %v/%v, want 200/1.5", got.ExecutionTimeMs, got.PlanningTimeMs)
	}
	if len(got.Timings) != 2 {
		t.Fatalf("expected 2 timings, got %d", len(got.Timings))
	}
	if got.Timings[0].NodeID != "root" || got.Timings[0].Percentage != 50 {
		t.Errorf("first timing = %+v, want root at 50%%", got.Timings[0])
	}
	if got.Timings[1].Percentage != 40 {
		t.Errorf("second timing percentage = %v, want 40", got.Timings[1].Percentage)
	}
}

func TestAggregateTimings_LoopMultiplier(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "root", NodeType: "Nested Loop", ActualTotalTime: f64(100), ActualRows: i64(10)},
		{ID: "inner", NodeType: "Index Scan", ActualTotalTime: f64(2), ActualLoops: i64(10), ActualRows: i64(1)},
	}

	got := AggregateTimings(nodes, 0, 0)
	if got == nil {
		t.Fatal("expected metrics")
	}
	// Reference falls back to the root's elapsed time.
	var inner NodeTiming
	for _, tm := range got.Timings {
		if tm.NodeID == "inner" {
			inner = tm
		}
	}
	if inner.TotalTimeMs != 20 {
		t.Errorf("inner TotalTimeMs = %v, want 2ms x 10 loops = 20", inner.TotalTimeMs)
	}
	if inner.Percentage != 20 {
		t.Errorf("inner Percentage = %v, want 20", inner.Percentage)
	}
}

func TestAggregateTimings_ZeroReference(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "root", NodeType: "Result", ActualTotalTime: f64(0), ActualRows: i64(1)},
	}

	got := AggregateTimings(nodes, 0, 0)
	if got == nil {
		t.Fatal("expected metrics: node carries actuals even with zero time")
	}
	if len(got.Timings) != 1 || got.Timings[0].Percentage != 0 {
		t.Fatalf("zero reference should yield zero percentages, got %+v", got.Timings)
	}
}

func TestAggregateTimings_EnvelopeTimeOnly(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "a", NodeType: "Seq Scan"},
	}

	got := AggregateTimings(nodes, 12.5, 0.3)
	if got == nil {
		t.Fatal("expected metrics when envelope carries execution time")
	}
	if got.HasActualData {
		t.Error("HasActualData = true, want false without per-node actuals")
	}
	if len(got.Timings) != 0 {
		t.Errorf("expected no per-node timings, got %d", len(got.Timings))
	}
}
