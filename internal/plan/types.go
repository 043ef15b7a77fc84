package plan

// UnknownNodeType is the fallback label for nodes missing "Node Type".
const UnknownNodeType = "Unknown"

// PlanNode is one step of an EXPLAIN (FORMAT JSON) plan tree. PostgreSQL
// omits most fields depending on node type and whether ANALYZE ran, so
// estimated numerics default to zero and actual-execution fields are
// pointers to keep "absent" distinguishable from "0".
type PlanNode struct {
	NodeType           string `json:"Node Type"`
	ParentRelationship string `json:"Parent Relationship,omitempty"`

	// Relation/index info
	RelationName string `json:"Relation Name,omitempty"`
	Alias        string `json:"Alias,omitempty"`
	IndexName    string `json:"Index Name,omitempty"`
	CTEName      string `json:"CTE Name,omitempty"`
	SubplanName  string `json:"Subplan Name,omitempty"`

	// Planner estimates
	StartupCost float64 `json:"Startup Cost"`
	TotalCost   float64 `json:"Total Cost"`
	PlanRows    int64   `json:"Plan Rows"`
	PlanWidth   int     `json:"Plan Width"`

	// Conditions
	Filter     string   `json:"Filter,omitempty"`
	IndexCond  string   `json:"Index Cond,omitempty"`
	JoinType   string   `json:"Join Type,omitempty"`
	JoinFilter string   `json:"Join Filter,omitempty"`
	HashCond   string   `json:"Hash Cond,omitempty"`
	MergeCond  string   `json:"Merge Cond,omitempty"`
	SortKey    []string `json:"Sort Key,omitempty"`

	// Actuals, present only with ANALYZE
	ActualStartupTime *float64 `json:"Actual Startup Time,omitempty"`
	ActualTotalTime   *float64 `json:"Actual Total Time,omitempty"`
	ActualRows        *int64   `json:"Actual Rows,omitempty"`
	ActualLoops       *int64   `json:"Actual Loops,omitempty"`

	Plans []PlanNode `json:"Plans,omitempty"`
}

// Label returns the node type, falling back to UnknownNodeType.
func (n *PlanNode) Label() string {
	if n.NodeType == "" {
		return UnknownNodeType
	}
	return n.NodeType
}

// Loops returns the actual loop count, defaulting to 1 when absent.
func (n *PlanNode) Loops() int64 {
	if n.ActualLoops == nil || *n.ActualLoops <= 0 {
		return 1
	}
	return *n.ActualLoops
}

// HasActuals reports whether this node carries any ANALYZE data.
func (n *PlanNode) HasActuals() bool {
	return n.ActualRows != nil || n.ActualTotalTime != nil
}

// ParsedPlan is the normalized top-level EXPLAIN output: one root node
// plus whatever timing the envelope carried (zero when absent).
type ParsedPlan struct {
	Root          PlanNode
	ExecutionTime float64
	PlanningTime  float64
}
