package analyzer

import (
	"strings"
	"testing"
)

func TestGenerateSuggestions_SeqScanIndex(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "scan", NodeType: "Seq Scan", RelationName: "users", Filter: "(status = 1)", PlanRows: 50000, TotalCost: 900},
	}
	contribs := map[string]CostContribution{
		"scan": {TotalCost: 900, Percentage: 90},
	}

	got := GenerateSuggestions(nodes, contribs)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	sug := got[0]
	if sug.Category != CategoryIndex {
		t.Errorf("Category = %q, want index", sug.Category)
	}
	if sug.Priority != TierCritical {
		t.Errorf("Priority = %v, want critical", sug.Priority)
	}
	if sug.NodeID != "scan" {
		t.Errorf("NodeID = %q, want scan", sug.NodeID)
	}
	wantSQL := "CREATE INDEX idx_users_status ON users (status);"
	if sug.SQL != wantSQL {
		t.Errorf("SQL = %q, want %q", sug.SQL, wantSQL)
	}
}

func TestGenerateSuggestions_SeqScanUnresolvedColumn(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "scan", NodeType: "Seq Scan", RelationName: "events", Filter: "(random() < '0.5'::double precision)", PlanRows: 20000},
	}

	got := GenerateSuggestions(nodes, map[string]CostContribution{})
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if !strings.HasPrefix(got[0].SQL, "--") {
		t.Errorf("unresolved column SQL should be a commented placeholder, got %q", got[0].SQL)
	}
	if got[0].Priority != TierLow {
		t.Errorf("Priority = %v, want low without a contribution entry", got[0].Priority)
	}
}

func TestGenerateSuggestions_SeqScanBelowThreshold(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "scan", NodeType: "Seq Scan", RelationName: "users", Filter: "(status = 1)", PlanRows: 500},
	}

	if got := GenerateSuggestions(nodes, map[string]CostContribution{}); len(got) != 0 {
		t.Fatalf("expected no suggestions below row threshold, got %d", len(got))
	}
}

func TestGenerateSuggestions_SortIndexBorrowsRelation(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "sort", NodeType: "Sort", SortKey: []string{"created_at DESC"}, PlanRows: 200000},
		{ID: "scan", ParentID: "sort", NodeType: "Seq Scan", RelationName: "orders", PlanRows: 200000},
	}
	contribs := map[string]CostContribution{
		"sort": {Percentage: 30},
	}

	got := GenerateSuggestions(nodes, contribs)
	var sortSug *OptimizationSuggestion
	for i := range got {
		if got[i].Category == CategorySort {
			sortSug = &got[i]
		}
	}
	if sortSug == nil {
		t.Fatal("expected a sort suggestion")
	}
	if sortSug.Priority != TierHigh {
		t.Errorf("Priority = %v, want high at 30%% share", sortSug.Priority)
	}
	wantSQL := "CREATE INDEX idx_orders_created_at ON orders (created_at);"
	if sortSug.SQL != wantSQL {
		t.Errorf("SQL = %q, want %q", sortSug.SQL, wantSQL)
	}
}

func TestGenerateSuggestions_NestedLoop(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "nl", NodeType: "Nested Loop", PlanRows: 80000},
	}

	got := GenerateSuggestions(nodes, map[string]CostContribution{})
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if got[0].Category != CategoryJoin {
		t.Errorf("Category = %q, want join", got[0].Category)
	}
	if !strings.Contains(got[0].SQL, "enable_nestloop") {
		t.Errorf("SQL should propose an enable_nestloop experiment, got %q", got[0].SQL)
	}
}

func TestGenerateSuggestions_FilterEscalation(t *testing.T) {
	base := []FlattenedNode{
		{ID: "idx", NodeType: "Index Scan", RelationName: "orders", Filter: "(region = 'eu')", PlanRows: 20000},
	}

	low := GenerateSuggestions(base, map[string]CostContribution{
		"idx": {Percentage: 5},
	})
	if len(low) != 1 || low[0].Priority != TierMedium {
		t.Fatalf("small share: got %+v, want one medium suggestion", low)
	}

	high := GenerateSuggestions(base, map[string]CostContribution{
		"idx": {Percentage: 25},
	})
	if len(high) != 1 || high[0].Priority != TierHigh {
		t.Fatalf("large share: got %+v, want one high suggestion", high)
	}
}

func TestGenerateSuggestions_FilterSkipsIndexCond(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "idx", NodeType: "Index Scan", RelationName: "orders", Filter: "(region = 'eu')", IndexCond: "(id = 5)", PlanRows: 20000},
	}

	if got := GenerateSuggestions(nodes, map[string]CostContribution{}); len(got) != 0 {
		t.Fatalf("filters already backed by an index condition should not suggest, got %d", len(got))
	}
}

func TestGenerateSuggestions_CTEMaterialization(t *testing.T) {
	nodes := []FlattenedNode{
		{ID: "cte", NodeType: "CTE Scan", CTEName: "recent", PlanRows: 15000},
	}

	got := GenerateSuggestions(nodes, map[string]CostContribution{})
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if got[0].Category != CategoryGeneral {
		t.Errorf("Category = %q, want general", got[0].Category)
	}
	if !strings.Contains(got[0].Title, "recent") {
		t.Errorf("Title should name the CTE, got %q", got[0].Title)
	}
}

func TestGenerateSuggestions_CapAndOrder(t *testing.T) {
	var nodes []FlattenedNode
	contribs := map[string]CostContribution{}
	for i := 0; i < 12; i++ {
		id := string(rune('a' + i))
		nodes = append(nodes, FlattenedNode{
			ID: id, NodeType: "Nested Loop", PlanRows: 80000,
		})
		contribs[id] = CostContribution{Percentage: float64(i)}
	}
	// One critical-share node that appears late in input order.
	nodes = append(nodes, FlattenedNode{ID: "big", NodeType: "Nested Loop", PlanRows: 90000})
	contribs["big"] = CostContribution{Percentage: 60}

	got := GenerateSuggestions(nodes, contribs)
	if len(got) != maxSuggestions {
		t.Fatalf("expected cap of %d, got %d", maxSuggestions, len(got))
	}
	if got[0].NodeID != "big" {
		t.Errorf("highest priority should sort first, got %q", got[0].NodeID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Priority > got[i-1].Priority {
			t.Errorf("priorities not descending at %d", i)
		}
	}
}
