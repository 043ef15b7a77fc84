package analyzer

import (
	"github.com/pglens/pglens/internal/plan"
)

// Analyze parses raw EXPLAIN JSON and runs the full diagnostic pipeline.
// Input with no recognizable plan returns plan.ErrNoPlan; truly invalid
// JSON returns a decode error. Each call is independent and stateless,
// so concurrent analyses never interfere.
func Analyze(data []byte) (*PlanAnalysisResult, error) {
	parsed, err := plan.Parse(data)
	if err != nil {
		return nil, err
	}
	return AnalyzeParsed(parsed), nil
}

// AnalyzeParsed runs the pipeline on an already-normalized plan:
// flatten, attribute cost, detect bottlenecks, compare estimates,
// generate suggestions and aggregate timings into one result value.
func AnalyzeParsed(parsed *plan.ParsedPlan) *PlanAnalysisResult {
	nodes := Flatten(&parsed.Root)
	contribs := CostContributions(nodes, parsed.Root.TotalCost)

	return &PlanAnalysisResult{
		Nodes:         nodes,
		Contributions: contribs,
		Bottlenecks:   DetectBottlenecks(nodes, contribs),
		Suggestions:   GenerateSuggestions(nodes, contribs),
		Estimates:     AnalyzeEstimates(nodes),
		TotalCost:     parsed.Root.TotalCost,
		RootNodeType:  parsed.Root.Label(),
		Metrics:       AggregateTimings(nodes, parsed.ExecutionTime, parsed.PlanningTime),
	}
}
