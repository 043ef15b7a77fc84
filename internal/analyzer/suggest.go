package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups suggestions by the kind of change they propose.
type Category string

const (
	CategoryIndex   Category = "index"
	CategoryJoin    Category = "join"
	CategorySort    Category = "sort"
	CategoryFilter  Category = "filter"
	CategoryScan    Category = "scan"
	CategoryGeneral Category = "general"
)

// Priority thresholds on cost share, used where a rule does not set its
// own priority.
const (
	priorityCriticalPct = 40.0
	priorityHighPct     = 25.0
	priorityMediumPct   = 10.0

	filterEscalationPct = 20.0

	maxSuggestions = 10
)

// OptimizationSuggestion is one concrete remediation proposal. Ids are
// unique within a generation run only; every analysis regenerates the
// whole list from scratch.
type OptimizationSuggestion struct {
	ID             string   `json:"id"`
	NodeID         string   `json:"node_id"`
	Priority       Tier     `json:"priority"`
	Category       Category `json:"category"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	SQL            string   `json:"sql,omitempty"`
	Impact         string   `json:"impact"`
	RelatedNodeIDs []string `json:"related_node_ids,omitempty"`
}

type suggester struct {
	byID     map[string]*FlattenedNode
	children map[string][]*FlattenedNode
	contribs map[string]CostContribution
	seq      int
	out      []OptimizationSuggestion
}

// GenerateSuggestions matches every node against the remediation
// patterns and returns the winners sorted by priority tier (stable
// within a tier), capped at ten entries.
func GenerateSuggestions(nodes []FlattenedNode, contribs map[string]CostContribution) []OptimizationSuggestion {
	s := &suggester{
		byID:     make(map[string]*FlattenedNode, len(nodes)),
		children: make(map[string][]*FlattenedNode),
		contribs: contribs,
	}
	for i := range nodes {
		node := &nodes[i]
		s.byID[node.ID] = node
		if node.ParentID != "" {
			s.children[node.ParentID] = append(s.children[node.ParentID], node)
		}
	}

	for i := range nodes {
		node := &nodes[i]
		s.suggestSeqScanIndex(node)
		s.suggestSortIndex(node)
		s.suggestNestedLoop(node)
		s.suggestFilterIndex(node)
		s.suggestCTEMaterialization(node)
	}

	sort.SliceStable(s.out, func(a, b int) bool {
		return s.out[a].Priority > s.out[b].Priority
	})
	if len(s.out) > maxSuggestions {
		s.out = s.out[:maxSuggestions]
	}
	return s.out
}

func (s *suggester) suggestSeqScanIndex(node *FlattenedNode) {
	if node.NodeType != "Seq Scan" || node.Filter == "" || node.PlanRows < seqScanRowThreshold || node.RelationName == "" {
		return
	}

	col, ok := ExtractFilterColumn(node.Filter)
	sql := ""
	desc := fmt.Sprintf("Sequential scan on %s evaluates %q against an estimated %d rows.",
		node.RelationName, node.Filter, node.PlanRows)
	if ok {
		sql = fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);", node.RelationName, col, node.RelationName, col)
		desc += fmt.Sprintf(" An index on %s.%s would let the planner skip the full scan.", node.RelationName, col)
	} else {
		// Still worth surfacing even when the column can't be parsed out.
		sql = fmt.Sprintf("-- CREATE INDEX idx_%s_<column> ON %s (<column>); -- choose the column(s) from: %s",
			node.RelationName, node.RelationName, node.Filter)
		desc += " The filter column could not be determined automatically; review the predicate and index accordingly."
	}

	s.emit(OptimizationSuggestion{
		NodeID:      node.ID,
		Priority:    s.priorityFor(node.ID),
		Category:    CategoryIndex,
		Title:       fmt.Sprintf("Add index to %s", node.RelationName),
		Description: desc,
		SQL:         sql,
		Impact:      fmt.Sprintf("Avoids scanning ~%d rows on %s", node.PlanRows, node.RelationName),
	})
}

func (s *suggester) suggestSortIndex(node *FlattenedNode) {
	if node.NodeType != "Sort" || len(node.SortKey) == 0 || node.PlanRows < sortRowThreshold {
		return
	}

	// Sort nodes rarely name a relation themselves; borrow one from the
	// subtree below, or failing that from an ancestor's subtree.
	rel := s.nearbyRelation(node, make(map[string]bool))
	if rel == "" {
		return
	}

	var cols []string
	for _, key := range node.SortKey {
		if col, ok := ExtractSortColumn(key); ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return
	}

	s.emit(OptimizationSuggestion{
		NodeID:   node.ID,
		Priority: s.priorityFor(node.ID),
		Category: CategorySort,
		Title:    fmt.Sprintf("Presort %s with a composite index", rel),
		Description: fmt.Sprintf("Sorting an estimated %d rows on (%s). An index matching the sort order lets the planner read rows presorted.",
			node.PlanRows, strings.Join(node.SortKey, ", ")),
		SQL: fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);",
			rel, strings.Join(cols, "_"), rel, strings.Join(cols, ", ")),
		Impact: fmt.Sprintf("Eliminates an explicit sort of ~%d rows", node.PlanRows),
	})
}

func (s *suggester) suggestNestedLoop(node *FlattenedNode) {
	if node.NodeType != "Nested Loop" || node.PlanRows < nestedLoopRowThreshold {
		return
	}

	s.emit(OptimizationSuggestion{
		NodeID:   node.ID,
		Priority: s.priorityFor(node.ID),
		Category: CategoryJoin,
		Title:    "Nested loop over a large row set",
		Description: fmt.Sprintf("A nested loop join is estimated to produce %d rows; hash or merge joins usually scale better at this size.",
			node.PlanRows),
		SQL:    "SET enable_nestloop = off; -- rerun EXPLAIN and compare total cost, then reset",
		Impact: "A different join strategy may reduce join cost substantially",
	})
}

func (s *suggester) suggestFilterIndex(node *FlattenedNode) {
	if node.NodeType == "Seq Scan" || node.Filter == "" || node.IndexCond != "" || node.PlanRows < filterRowThreshold {
		return
	}

	rel := s.nearbyRelation(node, make(map[string]bool))
	if rel == "" {
		return
	}
	col, ok := ExtractFilterColumn(node.Filter)
	if !ok {
		return
	}

	priority := TierMedium
	if contrib, found := s.contribs[node.ID]; found && contrib.Percentage >= filterEscalationPct {
		priority = TierHigh
	}

	s.emit(OptimizationSuggestion{
		NodeID:   node.ID,
		Priority: priority,
		Category: CategoryFilter,
		Title:    fmt.Sprintf("Index the filter column on %s", rel),
		Description: fmt.Sprintf("%s applies %q to an estimated %d rows without index support.",
			node.NodeType, node.Filter, node.PlanRows),
		SQL:    fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);", rel, col, rel, col),
		Impact: fmt.Sprintf("Filter on %s.%s could be resolved by the index instead of row-by-row", rel, col),
	})
}

func (s *suggester) suggestCTEMaterialization(node *FlattenedNode) {
	if node.NodeType != "CTE Scan" || node.PlanRows < filterRowThreshold || node.CTEName == "" {
		return
	}

	s.emit(OptimizationSuggestion{
		NodeID:   node.ID,
		Priority: s.priorityFor(node.ID),
		Category: CategoryGeneral,
		Title:    fmt.Sprintf("Review materialization of CTE %s", node.CTEName),
		Description: fmt.Sprintf("CTE %s is scanned with an estimated %d rows. Try MATERIALIZED / NOT MATERIALIZED on the WITH clause to control whether it is computed once or inlined.",
			node.CTEName, node.PlanRows),
		Impact: "Inlining or materializing the CTE changes how often it is evaluated",
	})
}

// nearbyRelation resolves a relation name for nodes that don't carry
// one: first the node's own subtree, then ancestors' subtrees. Visited
// tracking keeps the children-then-parent walk from revisiting branches.
func (s *suggester) nearbyRelation(node *FlattenedNode, visited map[string]bool) string {
	if node.RelationName != "" {
		return node.RelationName
	}
	if visited[node.ID] {
		return ""
	}
	visited[node.ID] = true

	if rel := s.subtreeRelation(node.ID, visited); rel != "" {
		return rel
	}
	if parent, ok := s.byID[node.ParentID]; ok {
		return s.nearbyRelation(parent, visited)
	}
	return ""
}

func (s *suggester) subtreeRelation(id string, visited map[string]bool) string {
	for _, child := range s.children[id] {
		if visited[child.ID] {
			continue
		}
		visited[child.ID] = true
		if child.RelationName != "" {
			return child.RelationName
		}
		if rel := s.subtreeRelation(child.ID, visited); rel != "" {
			return rel
		}
	}
	return ""
}

func (s *suggester) priorityFor(nodeID string) Tier {
	contrib, ok := s.contribs[nodeID]
	if !ok {
		return TierLow
	}
	switch {
	case contrib.Percentage >= priorityCriticalPct:
		return TierCritical
	case contrib.Percentage >= priorityHighPct:
		return TierHigh
	case contrib.Percentage >= priorityMediumPct:
		return TierMedium
	default:
		return TierLow
	}
}

func (s *suggester) emit(sug OptimizationSuggestion) {
	s.seq++
	sug.ID = fmt.Sprintf("sug-%d", s.seq)
	s.out = append(s.out, sug)
}
