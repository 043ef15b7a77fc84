package analyzer

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/pglens/pglens/internal/plan"
)

// MaxDepth bounds the flattening recursion. Plans nested deeper than
// this (pathological or cyclic input) are truncated to a partial list
// rather than overflowing the stack.
const MaxDepth = 256

// FlattenedNode is one plan node lifted out of the tree. Ids are derived
// purely from the node's own position and labels, so re-flattening the
// same input yields the same ids.
type FlattenedNode struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Depth    int    `json:"depth"`

	NodeType     string `json:"node_type"`
	RelationName string `json:"relation_name,omitempty"`
	Alias        string `json:"alias,omitempty"`
	IndexName    string `json:"index_name,omitempty"`
	CTEName      string `json:"cte_name,omitempty"`

	StartupCost float64 `json:"startup_cost"`
	TotalCost   float64 `json:"total_cost"`
	PlanRows    int64   `json:"plan_rows"`
	PlanWidth   int     `json:"plan_width"`

	Filter     string   `json:"filter,omitempty"`
	IndexCond  string   `json:"index_cond,omitempty"`
	JoinFilter string   `json:"join_filter,omitempty"`
	HashCond   string   `json:"hash_cond,omitempty"`
	MergeCond  string   `json:"merge_cond,omitempty"`
	SortKey    []string `json:"sort_key,omitempty"`

	ActualStartupTime *float64 `json:"actual_startup_time,omitempty"`
	ActualTotalTime   *float64 `json:"actual_total_time,omitempty"`
	ActualRows        *int64   `json:"actual_rows,omitempty"`
	ActualLoops       *int64   `json:"actual_loops,omitempty"`

	Source *plan.PlanNode `json:"-"`
}

// Loops returns the actual loop count, defaulting to 1 when absent.
func (n *FlattenedNode) Loops() int64 {
	if n.ActualLoops == nil || *n.ActualLoops <= 0 {
		return 1
	}
	return *n.ActualLoops
}

// HasActuals reports whether the node carries any ANALYZE data.
func (n *FlattenedNode) HasActuals() bool {
	return n.ActualRows != nil || n.ActualTotalTime != nil
}

// Flatten walks the tree depth-first in pre-order, producing exactly one
// FlattenedNode per input node (up to MaxDepth). Every node's ParentID
// refers to an id that appears earlier in the returned slice.
func Flatten(root *plan.PlanNode) []FlattenedNode {
	var out []FlattenedNode
	flattenInto(root, "", 0, 0, &out)
	return out
}

func flattenInto(node *plan.PlanNode, parentID string, depth, ordinal int, out *[]FlattenedNode) {
	id := nodeID(node, parentID, depth, ordinal)

	*out = append(*out, FlattenedNode{
		ID:       id,
		ParentID: parentID,
		Depth:    depth,

		NodeType:     node.Label(),
		RelationName: node.RelationName,
		Alias:        node.Alias,
		IndexName:    node.IndexName,
		CTEName:      node.CTEName,

		StartupCost: node.StartupCost,
		TotalCost:   node.TotalCost,
		PlanRows:    node.PlanRows,
		PlanWidth:   node.PlanWidth,

		Filter:     node.Filter,
		IndexCond:  node.IndexCond,
		JoinFilter: node.JoinFilter,
		HashCond:   node.HashCond,
		MergeCond:  node.MergeCond,
		SortKey:    node.SortKey,

		ActualStartupTime: node.ActualStartupTime,
		ActualTotalTime:   node.ActualTotalTime,
		ActualRows:        node.ActualRows,
		ActualLoops:       node.ActualLoops,

		Source: node,
	})

	if depth >= MaxDepth {
		return
	}
	for i := range node.Plans {
		flattenInto(&node.Plans[i], id, depth+1, i, out)
	}
}

// nodeID derives a stable identifier from the node's type, relation,
// alias, depth, parent id and position among its siblings. The sibling
// ordinal keeps repeated same-type siblings distinct without introducing
// anything random or time-based.
func nodeID(node *plan.PlanNode, parentID string, depth, ordinal int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d|%s|%d", node.Label(), node.RelationName, node.Alias, depth, parentID, ordinal)
	return fmt.Sprintf("%s-%x", slug(node.Label()), h.Sum64())
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
