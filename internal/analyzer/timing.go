package analyzer

import "sort"

// NodeTiming is one node's share of measured wall time. TotalTimeMs
// already includes the loop multiplier.
type NodeTiming struct {
	NodeID       string  `json:"node_id"`
	NodeType     string  `json:"node_type"`
	RelationName string  `json:"relation_name,omitempty"`
	TotalTimeMs  float64 `json:"total_time_ms"`
	Percentage   float64 `json:"percentage"`
}

// AnalyzeMetrics summarizes ANALYZE runtime data for the whole plan.
type AnalyzeMetrics struct {
	ExecutionTimeMs float64      `json:"execution_time_ms"`
	PlanningTimeMs  float64      `json:"planning_time_ms"`
	HasActualData   bool         `json:"has_actual_data"`
	Timings         []NodeTiming `json:"timings,omitempty"`
}

// AggregateTimings derives per-node wall-time shares. It returns nil
// when neither any node nor the envelope carries timing - "no timing
// data" is a normal outcome for plain EXPLAIN, not an error. Reference
// time is the envelope execution time when nonzero, else the root's own
// elapsed time; a zero reference yields zero percentages rather than a
// division error.
func AggregateTimings(nodes []FlattenedNode, executionTimeMs, planningTimeMs float64) *AnalyzeMetrics {
	hasActuals := false
	for i := range nodes {
		if nodes[i].HasActuals() {
			hasActuals = true
			break
		}
	}
	if !hasActuals && executionTimeMs == 0 {
		return nil
	}

	reference := executionTimeMs
	if reference == 0 && len(nodes) > 0 && nodes[0].ActualTotalTime != nil {
		reference = *nodes[0].ActualTotalTime * float64(nodes[0].Loops())
	}

	var timings []NodeTiming
	for i := range nodes {
		node := &nodes[i]
		if node.ActualTotalTime == nil {
			continue
		}
		elapsed := *node.ActualTotalTime * float64(node.Loops())
		pct := 0.0
		if reference > 0 {
			pct = elapsed / reference * 100
		}
		timings = append(timings, NodeTiming{
			NodeID:       node.ID,
			NodeType:     node.NodeType,
			RelationName: node.RelationName,
			TotalTimeMs:  elapsed,
			Percentage:   pct,
		})
	}

	sort.SliceStable(timings, func(a, b int) bool {
		return timings[a].Percentage > timings[b].Percentage
	})

	return &AnalyzeMetrics{
		ExecutionTimeMs: executionTimeMs,
		PlanningTimeMs:  planningTimeMs,
		HasActualData:   hasActuals,
		Timings:         timings,
	}
}
