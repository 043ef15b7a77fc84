package comparator

import (
	"github.com/pglens/pglens/internal/analyzer"
	"github.com/pglens/pglens/internal/plan"
)

// Comparator diffs two plans position-by-position. Threshold is the
// percentage change below which a node counts as unchanged.
type Comparator struct {
	Threshold float64
}

func (c *Comparator) Compare(old, new *plan.ParsedPlan) ComparisonResult {
	rootDelta := c.diffNodes(&old.Root, &new.Root)

	summary := Summary{
		OldTotalCost: old.Root.TotalCost,
		NewTotalCost: new.Root.TotalCost,
		CostDelta:    new.Root.TotalCost - old.Root.TotalCost,
		CostPct:      pctChange(old.Root.TotalCost, new.Root.TotalCost),
		CostDir:      c.direction(old.Root.TotalCost, new.Root.TotalCost),

		OldExecutionTime: old.ExecutionTime,
		NewExecutionTime: new.ExecutionTime,
		TimeDelta:        new.ExecutionTime - old.ExecutionTime,
		TimePct:          pctChange(old.ExecutionTime, new.ExecutionTime),
		TimeDir:          c.direction(old.ExecutionTime, new.ExecutionTime),

		OldPlanningTime: old.PlanningTime,
		NewPlanningTime: new.PlanningTime,
		PlanningDir:     c.direction(old.PlanningTime, new.PlanningTime),

		OldBottlenecks: bottleneckCounts(old),
		NewBottlenecks: bottleneckCounts(new),
	}

	countChanges(&rootDelta, &summary)
	summary.Verdict = verdict(&summary)

	return ComparisonResult{
		Deltas:  []NodeDelta{rootDelta},
		Summary: summary,
	}
}

// bottleneckCounts runs the analyzer's detector so the diff can report
// whether the change added or removed hot spots, not just cost deltas.
func bottleneckCounts(p *plan.ParsedPlan) map[string]int {
	counts := make(map[string]int)
	for _, b := range analyzer.AnalyzeParsed(p).Bottlenecks {
		counts[b.Severity.String()]++
	}
	return counts
}

func countChanges(delta *NodeDelta, summary *Summary) {
	switch delta.ChangeType {
	case Added:
		summary.NodesAdded++
	case Removed:
		summary.NodesRemoved++
	case Modified:
		summary.NodesModified++
	case TypeChanged:
		summary.NodesTypeChanged++
	}

	for i := range delta.Children {
		countChanges(&delta.Children[i], summary)
	}
}

func verdict(s *Summary) string {
	switch {
	case s.CostDir == Improved && s.TimeDir != Regressed:
		return "improvement"
	case s.CostDir == Regressed && s.TimeDir != Improved:
		return "regression"
	case s.CostDir == Unchanged && s.TimeDir == Unchanged:
		return "equivalent"
	default:
		return "mixed"
	}
}
