package comparator

import (
	"math"

	"github.com/pglens/pglens/internal/plan"
)

func (c *Comparator) diffNodes(old, new *plan.PlanNode) NodeDelta {
	delta := NodeDelta{
		Relation: coalesce(old.RelationName, new.RelationName),
	}

	if old.Label() != new.Label() {
		delta.ChangeType = TypeChanged
		delta.OldNodeType = old.Label()
		delta.NewNodeType = new.Label()
		delta.NodeType = new.Label()
	} else {
		delta.ChangeType = Modified
		delta.NodeType = old.Label()
	}

	delta.OldCost = old.TotalCost
	delta.NewCost = new.TotalCost
	delta.CostDelta = new.TotalCost - old.TotalCost
	delta.CostPct = pctChange(old.TotalCost, new.TotalCost)
	delta.CostDir = c.direction(old.TotalCost, new.TotalCost)

	oldTime := elapsed(old)
	newTime := elapsed(new)
	delta.OldTime = oldTime
	delta.NewTime = newTime
	delta.TimeDelta = newTime - oldTime
	delta.TimePct = pctChange(oldTime, newTime)
	delta.TimeDir = c.direction(oldTime, newTime)

	oldRows := actualOrPlanned(old)
	newRows := actualOrPlanned(new)
	delta.OldRows = oldRows
	delta.NewRows = newRows
	delta.RowsDelta = newRows - oldRows
	delta.RowsPct = pctChange(float64(oldRows), float64(newRows))

	delta.OldFilter = old.Filter
	delta.NewFilter = new.Filter
	delta.OldIndexCond = old.IndexCond
	delta.NewIndexCond = new.IndexCond
	delta.OldIndexName = old.IndexName
	delta.NewIndexName = new.IndexName

	if delta.ChangeType == Modified && !c.isSignificant(delta) {
		delta.ChangeType = NoChange
	}

	delta.Children = c.diffChildren(old.Plans, new.Plans)

	return delta
}

func (c *Comparator) diffChildren(oldKids, newKids []plan.PlanNode) []NodeDelta {
	var deltas []NodeDelta

	for i := 0; i < max(len(oldKids), len(newKids)); i++ {
		if i >= len(oldKids) {
			deltas = append(deltas, addedNode(&newKids[i]))
			continue
		}
		if i >= len(newKids) {
			deltas = append(deltas, removedNode(&oldKids[i]))
			continue
		}
		deltas = append(deltas, c.diffNodes(&oldKids[i], &newKids[i]))
	}

	return deltas
}

func addedNode(node *plan.PlanNode) NodeDelta {
	delta := NodeDelta{
		ChangeType: Added,
		NodeType:   node.Label(),
		Relation:   node.RelationName,
		NewCost:    node.TotalCost,
		NewTime:    elapsed(node),
		NewRows:    actualOrPlanned(node),
	}

	for i := range node.Plans {
		delta.Children = append(delta.Children, addedNode(&node.Plans[i]))
	}

	return delta
}

func removedNode(node *plan.PlanNode) NodeDelta {
	delta := NodeDelta{
		ChangeType: Removed,
		NodeType:   node.Label(),
		Relation:   node.RelationName,
		OldCost:    node.TotalCost,
		OldTime:    elapsed(node),
		OldRows:    actualOrPlanned(node),
	}

	for i := range node.Plans {
		delta.Children = append(delta.Children, removedNode(&node.Plans[i]))
	}

	return delta
}

func (c *Comparator) isSignificant(d NodeDelta) bool {
	if math.Abs(d.CostPct) > c.Threshold {
		return true
	}
	if math.Abs(d.TimePct) > c.Threshold {
		return true
	}
	if d.OldFilter != d.NewFilter || d.OldIndexCond != d.NewIndexCond || d.OldIndexName != d.NewIndexName {
		return true
	}
	return false
}

// direction treats lower cost/time as an improvement and ignores
// movements under the significance threshold.
func (c *Comparator) direction(old, new float64) Direction {
	if old == new {
		return Unchanged
	}
	pct := math.Abs(pctChange(old, new))
	if pct < SignificanceThresholdPct {
		return Unchanged
	}
	if new < old {
		return Improved
	}
	return Regressed
}

func elapsed(node *plan.PlanNode) float64 {
	if node.ActualTotalTime == nil {
		return 0
	}
	return *node.ActualTotalTime * float64(node.Loops())
}

func actualOrPlanned(node *plan.PlanNode) int64 {
	if node.ActualRows != nil {
		return *node.ActualRows
	}
	return node.PlanRows
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return (new - old) / old * 100
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
