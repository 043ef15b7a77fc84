package plan

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoPlan is returned when structurally valid JSON contains no
// recognizable plan. Pasting arbitrary JSON is a normal user action, so
// callers should branch on this with errors.Is and render an empty state.
var ErrNoPlan = errors.New("no query plan found in input")

type envelope struct {
	Plan          *PlanNode `json:"Plan"`
	PlanningTime  float64   `json:"Planning Time"`
	ExecutionTime float64   `json:"Execution Time"`
}

// Parse normalizes the EXPLAIN JSON shapes PostgreSQL and its tooling
// emit into a single root node plus top-level timing. Accepted shapes,
// in precedence order:
//
//  1. an array whose first element has a "Plan" field (raw EXPLAIN output)
//  2. an object with a "Plan" field (a single unwrapped envelope)
//  3. an object that is itself a plan node (has "Node Type")
//
// Anything else yields ErrNoPlan. Input that is not valid JSON at all is
// a decode failure, reported as a distinct wrapped error.
func Parse(data []byte) (*ParsedPlan, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid EXPLAIN JSON: %w", firstSyntaxError(data))
	}

	// Only the first element matters; decoding the sequence as raw
	// messages keeps stray trailing elements from sinking the whole
	// array.
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err == nil {
		if len(elems) == 0 {
			return nil, ErrNoPlan
		}
		var env envelope
		if err := json.Unmarshal(elems[0], &env); err != nil || env.Plan == nil {
			return nil, ErrNoPlan
		}
		return &ParsedPlan{
			Root:          *env.Plan,
			ExecutionTime: env.ExecutionTime,
			PlanningTime:  env.PlanningTime,
		}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Plan != nil {
		return &ParsedPlan{
			Root:          *env.Plan,
			ExecutionTime: env.ExecutionTime,
			PlanningTime:  env.PlanningTime,
		}, nil
	}

	// A bare node pasted without its envelope carries no timing.
	var node PlanNode
	if err := json.Unmarshal(data, &node); err == nil && node.NodeType != "" {
		return &ParsedPlan{Root: node}, nil
	}

	return nil, ErrNoPlan
}

func firstSyntaxError(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return errors.New("malformed input")
}
