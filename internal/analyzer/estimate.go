package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
)

// EstimateClass grades how far the planner's row estimate strayed from
// the rows actually produced.
type EstimateClass int

const (
	EstimateAccurate EstimateClass = iota
	EstimateOver
	EstimateUnder
	EstimateSevere
)

func (c EstimateClass) String() string {
	switch c {
	case EstimateSevere:
		return "severe"
	case EstimateUnder:
		return "underestimate"
	case EstimateOver:
		return "overestimate"
	default:
		return "accurate"
	}
}

func (c EstimateClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *EstimateClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "severe":
		*c = EstimateSevere
	case "underestimate":
		*c = EstimateUnder
	case "overestimate":
		*c = EstimateOver
	case "accurate":
		*c = EstimateAccurate
	default:
		return fmt.Errorf("unknown estimate class %q", s)
	}
	return nil
}

// EstimateAccuracy compares planner row estimates to ANALYZE actuals for
// one node. Ratio is actual/estimated.
type EstimateAccuracy struct {
	NodeID        string        `json:"node_id"`
	NodeType      string        `json:"node_type"`
	RelationName  string        `json:"relation_name,omitempty"`
	EstimatedRows int64         `json:"estimated_rows"`
	ActualRows    int64         `json:"actual_rows"`
	Ratio         float64       `json:"ratio"`
	Class         EstimateClass `json:"class"`
}

// AnalyzeEstimates classifies every node that has both a positive row
// estimate and measured actual rows. Worst misjudgments sort first:
// severe, then underestimates, then overestimates, then accurate.
func AnalyzeEstimates(nodes []FlattenedNode) []EstimateAccuracy {
	var out []EstimateAccuracy

	for i := range nodes {
		node := &nodes[i]
		if node.ActualRows == nil || node.PlanRows <= 0 {
			continue
		}

		ratio := float64(*node.ActualRows) / float64(node.PlanRows)
		out = append(out, EstimateAccuracy{
			NodeID:        node.ID,
			NodeType:      node.NodeType,
			RelationName:  node.RelationName,
			EstimatedRows: node.PlanRows,
			ActualRows:    *node.ActualRows,
			Ratio:         ratio,
			Class:         classifyRatio(ratio),
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Class > out[b].Class
	})
	return out
}

func classifyRatio(ratio float64) EstimateClass {
	switch {
	case ratio > 10 || ratio < 0.1:
		return EstimateSevere
	case ratio > 2.0:
		return EstimateUnder
	case ratio < 0.5:
		return EstimateOver
	default:
		return EstimateAccurate
	}
}
