package analyzer

import "sort"

// CostContribution is a node's share of the root's total estimated cost.
type CostContribution struct {
	TotalCost            float64 `json:"total_cost"`
	Percentage           float64 `json:"percentage"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
}

// CostContributions computes each node's percentage of rootTotalCost,
// clamped to [0,100], plus the running cumulative percentage when nodes
// are ranked by descending cost (ties keep traversal order). A root cost
// of zero or less yields an empty map: percentages are undefined there,
// not divided by zero.
func CostContributions(nodes []FlattenedNode, rootTotalCost float64) map[string]CostContribution {
	contribs := make(map[string]CostContribution, len(nodes))
	if rootTotalCost <= 0 {
		return contribs
	}

	order := make([]int, len(nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return nodes[order[a]].TotalCost > nodes[order[b]].TotalCost
	})

	cumulative := 0.0
	for _, i := range order {
		node := &nodes[i]
		pct := node.TotalCost / rootTotalCost * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		cumulative += pct
		contribs[node.ID] = CostContribution{
			TotalCost:            node.TotalCost,
			Percentage:           pct,
			CumulativePercentage: cumulative,
		}
	}

	return contribs
}
