package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pglens/pglens/internal/analyzer"
	"github.com/pglens/pglens/internal/comparator"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Timing entries shown in the text view; the full list stays available
// in JSON output.
const timingDisplayLimit = 5

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderAnalysisText(w io.Writer, result *analyzer.PlanAnalysisResult) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sPlan Summary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Root Node:      %s\n", result.RootNodeType)
	tw.printf("  Total Cost:     %.2f\n", result.TotalCost)
	tw.printf("  Nodes:          %d\n", len(result.Nodes))
	if result.Metrics != nil {
		if result.Metrics.ExecutionTimeMs > 0 {
			tw.printf("  Execution Time: %.3f ms\n", result.Metrics.ExecutionTimeMs)
		}
		if result.Metrics.PlanningTimeMs > 0 {
			tw.printf("  Planning Time:  %.3f ms\n", result.Metrics.PlanningTimeMs)
		}
	}
	tw.printf("\n")

	tw.renderBottlenecks(result)
	tw.renderSuggestions(result)
	tw.renderEstimates(result)
	tw.renderTimings(result)

	return tw.err
}

func (tw *textWriter) renderBottlenecks(result *analyzer.PlanAnalysisResult) {
	if len(result.Bottlenecks) == 0 {
		tw.printf("%s%sNo bottlenecks detected.%s\n\n", colorBold, colorGreen, colorReset)
		return
	}

	tw.printf("%s%sBottlenecks (%d)%s\n\n", colorBold, colorCyan, len(result.Bottlenecks), colorReset)
	for _, b := range result.Bottlenecks {
		label, color := tierFormat(b.Severity)
		tw.printf("  %s%-8s%s %s%s: %s\n", color, label, colorReset, b.Node.NodeType, relationSuffix(b.Node.RelationName), b.Reason)
		tw.printf("  %s%.1f%% of plan cost (%.2f)%s\n\n", colorDim, b.Contribution.Percentage, b.Contribution.TotalCost, colorReset)
	}
}

func (tw *textWriter) renderSuggestions(result *analyzer.PlanAnalysisResult) {
	if len(result.Suggestions) == 0 {
		return
	}

	tw.printf("%s%sSuggestions (%d)%s\n\n", colorBold, colorCyan, len(result.Suggestions), colorReset)
	for _, s := range result.Suggestions {
		label, color := tierFormat(s.Priority)
		tw.printf("  %s%-8s%s [%s] %s\n", color, label, colorReset, s.Category, s.Title)
		tw.printf("  %s%s%s\n", colorDim, s.Description, colorReset)
		if s.SQL != "" {
			for _, line := range strings.Split(s.SQL, "\n") {
				tw.printf("    %s\n", line)
			}
		}
		tw.printf("  %s→ %s%s\n\n", colorDim, s.Impact, colorReset)
	}
}

func (tw *textWriter) renderEstimates(result *analyzer.PlanAnalysisResult) {
	var off []analyzer.EstimateAccuracy
	for _, e := range result.Estimates {
		if e.Class != analyzer.EstimateAccurate {
			off = append(off, e)
		}
	}
	if len(off) == 0 {
		return
	}

	tw.printf("%s%sEstimate Mismatches (%d)%s\n\n", colorBold, colorCyan, len(off), colorReset)
	for _, e := range off {
		color := colorYellow
		if e.Class == analyzer.EstimateSevere {
			color = colorRed
		}
		tw.printf("  %s%-13s%s %s%s: estimated %d, actual %d (×%.1f)\n",
			color, e.Class, colorReset, e.NodeType, relationSuffix(e.RelationName), e.EstimatedRows, e.ActualRows, e.Ratio)
	}
	tw.printf("\n")
}

func (tw *textWriter) renderTimings(result *analyzer.PlanAnalysisResult) {
	if result.Metrics == nil || len(result.Metrics.Timings) == 0 {
		return
	}

	timings := result.Metrics.Timings
	if len(timings) > timingDisplayLimit {
		timings = timings[:timingDisplayLimit]
	}

	tw.printf("%s%sTime Breakdown%s\n\n", colorBold, colorCyan, colorReset)
	for _, t := range timings {
		tw.printf("  %5.1f%%  %.3f ms  %s%s\n", t.Percentage, t.TotalTimeMs, t.NodeType, relationSuffix(t.RelationName))
	}
	tw.printf("\n")
}

func tierFormat(t analyzer.Tier) (string, string) {
	switch t {
	case analyzer.TierCritical:
		return "CRITICAL", colorRed
	case analyzer.TierHigh:
		return "HIGH", colorRed
	case analyzer.TierMedium:
		return "MEDIUM", colorYellow
	default:
		return "LOW", colorCyan
	}
}

func relationSuffix(relation string) string {
	if relation == "" {
		return ""
	}
	return " on " + relation
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Cost:           %s\n", formatDelta(s.OldTotalCost, s.NewTotalCost, s.CostPct, s.CostDir, "%.2f"))
	if s.OldExecutionTime > 0 || s.NewExecutionTime > 0 {
		tw.printf("  Execution Time: %s\n", formatDelta(s.OldExecutionTime, s.NewExecutionTime, s.TimePct, s.TimeDir, "%.3f ms"))
	}
	if s.OldPlanningTime > 0 || s.NewPlanningTime > 0 {
		tw.printf("  Planning Time:  %s\n", formatDelta(s.OldPlanningTime, s.NewPlanningTime, pctOf(s.OldPlanningTime, s.NewPlanningTime), s.PlanningDir, "%.3f ms"))
	}
	tw.renderBottleneckMovement(s)
	tw.printf("\n")

	changes := s.NodesAdded + s.NodesRemoved + s.NodesModified + s.NodesTypeChanged
	if changes == 0 {
		tw.printf("%s%sPlans are identical.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("  Changes: %d modified, %d type changed, %d added, %d removed\n\n",
		s.NodesModified, s.NodesTypeChanged, s.NodesAdded, s.NodesRemoved)

	tw.printf("%s%sNode Details%s\n\n", colorBold, colorCyan, colorReset)

	for _, delta := range result.Deltas {
		tw.renderDelta(delta, 0)
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderBottleneckMovement(s comparator.Summary) {
	oldTotal, newTotal := 0, 0
	for _, n := range s.OldBottlenecks {
		oldTotal += n
	}
	for _, n := range s.NewBottlenecks {
		newTotal += n
	}
	if oldTotal == 0 && newTotal == 0 {
		return
	}

	color := colorDim
	if newTotal < oldTotal {
		color = colorGreen
	} else if newTotal > oldTotal {
		color = colorRed
	}
	tw.printf("  Bottlenecks:    %s%d→%d%s\n", color, oldTotal, newTotal, colorReset)
}

func (tw *textWriter) renderDelta(d comparator.NodeDelta, depth int) {
	indent := strings.Repeat("  ", depth+1)

	switch d.ChangeType {
	case comparator.NoChange:
		for _, child := range d.Children {
			tw.renderDelta(child, depth)
		}
		return
	case comparator.Added:
		tw.printf("%s%s+ %s%s (cost %.2f)%s\n", indent, colorGreen, d.NodeType, relationSuffix(d.Relation), d.NewCost, colorReset)
	case comparator.Removed:
		tw.printf("%s%s- %s%s (cost %.2f)%s\n", indent, colorRed, d.NodeType, relationSuffix(d.Relation), d.OldCost, colorReset)
	case comparator.TypeChanged:
		tw.printf("%s%s~ %s → %s%s%s\n", indent, colorYellow, d.OldNodeType, d.NewNodeType, relationSuffix(d.Relation), colorReset)
		tw.printf("%s  cost %s\n", indent, formatDelta(d.OldCost, d.NewCost, d.CostPct, d.CostDir, "%.2f"))
	case comparator.Modified:
		tw.printf("%s~ %s%s\n", indent, d.NodeType, relationSuffix(d.Relation))
		tw.printf("%s  cost %s\n", indent, formatDelta(d.OldCost, d.NewCost, d.CostPct, d.CostDir, "%.2f"))
		if d.OldTime > 0 || d.NewTime > 0 {
			tw.printf("%s  time %s\n", indent, formatDelta(d.OldTime, d.NewTime, d.TimePct, d.TimeDir, "%.3f ms"))
		}
		if d.OldIndexName != d.NewIndexName {
			tw.printf("%s  index %s → %s\n", indent, orNone(d.OldIndexName), orNone(d.NewIndexName))
		}
	}

	for _, child := range d.Children {
		tw.renderDelta(child, depth+1)
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	color := colorYellow
	switch s.Verdict {
	case "improvement":
		color = colorGreen
	case "regression":
		color = colorRed
	}
	tw.printf("\n%s%sVerdict: %s%s\n", colorBold, color, s.Verdict, colorReset)
}

func formatDelta(old, new, pct float64, dir comparator.Direction, numFormat string) string {
	arrow := fmt.Sprintf(numFormat+" → "+numFormat, old, new)

	switch dir {
	case comparator.Improved:
		return fmt.Sprintf("%s %s(%.1f%%)%s", arrow, colorGreen, pct, colorReset)
	case comparator.Regressed:
		return fmt.Sprintf("%s %s(+%.1f%%)%s", arrow, colorRed, pct, colorReset)
	default:
		return arrow
	}
}

func pctOf(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return (new - old) / old * 100
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
