package analyzer

import (
	"encoding/json"
	"fmt"
)

// Tier grades bottleneck severity and suggestion priority.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "critical":
		*t = TierCritical
	case "high":
		*t = TierHigh
	case "medium":
		*t = TierMedium
	case "low":
		*t = TierLow
	default:
		return fmt.Errorf("unknown tier %q", s)
	}
	return nil
}

// PlanAnalysisResult is the aggregate returned to callers: a pure
// computed value, safe to serialize and safe to discard. Metrics is nil
// when the plan carried no ANALYZE data at all.
type PlanAnalysisResult struct {
	Nodes         []FlattenedNode             `json:"nodes"`
	Contributions map[string]CostContribution `json:"cost_contributions"`
	Bottlenecks   []BottleneckNode            `json:"bottlenecks"`
	Suggestions   []OptimizationSuggestion    `json:"suggestions"`
	Estimates     []EstimateAccuracy          `json:"estimate_accuracy,omitempty"`
	TotalCost     float64                     `json:"total_cost"`
	RootNodeType  string                      `json:"root_node_type"`
	Metrics       *AnalyzeMetrics             `json:"analyze_metrics,omitempty"`
}
