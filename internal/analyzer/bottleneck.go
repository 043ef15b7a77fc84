package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// Scoring heuristics. Each rule contributes a fixed number of points and
// a reason fragment; a node qualifies as a bottleneck at 15 points.
const (
	costShareCriticalPct = 50.0
	costShareHighPct     = 30.0
	costShareMediumPct   = 15.0

	seqScanRowThreshold    = 10_000
	nestedLoopRowThreshold = 50_000
	sortRowThreshold       = 100_000
	filterRowThreshold     = 10_000
	bitmapHeapRowThreshold = 100_000
	hashBuildRowThreshold  = 100_000

	bottleneckMinScore = 15
	maxBottlenecks     = 5
)

// BottleneckNode is a flattened node judged likely to dominate the plan,
// with the heuristics that fired. Score is a ranking aid only, not a
// stable scale.
type BottleneckNode struct {
	Node         FlattenedNode    `json:"node"`
	Contribution CostContribution `json:"contribution"`
	Severity     Tier             `json:"severity"`
	Reason       string           `json:"reason"`
	Score        int              `json:"score"`
}

// DetectBottlenecks scores every node that has a cost contribution and
// returns the top offenders, sorted by descending score and capped at
// five entries so callers are not overwhelmed.
func DetectBottlenecks(nodes []FlattenedNode, contribs map[string]CostContribution) []BottleneckNode {
	var out []BottleneckNode

	for i := range nodes {
		node := &nodes[i]
		contrib, ok := contribs[node.ID]
		if !ok {
			continue
		}

		score, reasons := scoreNode(node, contrib)
		if score < bottleneckMinScore {
			continue
		}

		out = append(out, BottleneckNode{
			Node:         *node,
			Contribution: contrib,
			Severity:     severityForScore(score),
			Reason:       strings.Join(reasons, "; "),
			Score:        score,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	if len(out) > maxBottlenecks {
		out = out[:maxBottlenecks]
	}
	return out
}

func scoreNode(node *FlattenedNode, contrib CostContribution) (int, []string) {
	score := 0
	var reasons []string

	// Only the highest cost-share bracket fires.
	switch {
	case contrib.Percentage >= costShareCriticalPct:
		score += 40
		reasons = append(reasons, fmt.Sprintf("consumes %.1f%% of total plan cost", contrib.Percentage))
	case contrib.Percentage >= costShareHighPct:
		score += 25
		reasons = append(reasons, fmt.Sprintf("consumes %.1f%% of total plan cost", contrib.Percentage))
	case contrib.Percentage >= costShareMediumPct:
		score += 15
		reasons = append(reasons, fmt.Sprintf("consumes %.1f%% of total plan cost", contrib.Percentage))
	}

	if node.NodeType == "Seq Scan" && node.PlanRows >= seqScanRowThreshold {
		score += 30
		reasons = append(reasons, fmt.Sprintf("sequential scan over %d estimated rows", node.PlanRows))
	}

	if node.NodeType == "Nested Loop" && node.PlanRows >= nestedLoopRowThreshold {
		score += 25
		reasons = append(reasons, fmt.Sprintf("nested loop join producing %d estimated rows", node.PlanRows))
	}

	if node.NodeType == "Sort" && node.PlanRows >= sortRowThreshold {
		score += 20
		reasons = append(reasons, fmt.Sprintf("sort of %d estimated rows", node.PlanRows))
	}

	if node.Filter != "" && node.IndexCond == "" && node.PlanRows >= filterRowThreshold {
		score += 15
		reasons = append(reasons, "filter predicate without index support")
	}

	if node.NodeType == "Bitmap Heap Scan" && node.PlanRows >= bitmapHeapRowThreshold {
		score += 10
		reasons = append(reasons, fmt.Sprintf("bitmap heap scan over %d estimated rows", node.PlanRows))
	}

	if node.NodeType == "Hash" && node.PlanRows >= hashBuildRowThreshold {
		score += 10
		reasons = append(reasons, fmt.Sprintf("hash build over %d estimated rows", node.PlanRows))
	}

	return score, reasons
}

func severityForScore(score int) Tier {
	switch {
	case score >= 50:
		return TierCritical
	case score >= 35:
		return TierHigh
	case score >= 20:
		return TierMedium
	default:
		return TierLow
	}
}
