package output

import "time"

// EvalOutput is the JSON result of eval and run.
type EvalOutput struct {
	Program     string             `json:"program"`
	Description string             `json:"description"`
	Value       *float64           `json:"value"` // null when not finite
	Display     string             `json:"display"`
	Variables   []string           `json:"variables"`
	Bindings    map[string]float64 `json:"bindings,omitempty"`
}

// DescribeOutput is the JSON result of describe.
type DescribeOutput struct {
	Program     string   `json:"program"`
	Description string   `json:"description"`
	Expressions []string `json:"expressions"`
}

// VarsOutput is the JSON result of vars.
type VarsOutput struct {
	Program   string   `json:"program"`
	Variables []string `json:"variables"`
}

// GraphPoint is one sample in GraphOutput.
type GraphPoint struct {
	X       float64  `json:"x"`
	Y       *float64 `json:"y"`
	Defined bool     `json:"defined"`
}

// GraphOutput is the JSON result of graph.
type GraphOutput struct {
	Title    string       `json:"title"`
	Variable string       `json:"variable"`
	XMin     float64      `json:"x_min"`
	XMax     float64      `json:"x_max"`
	Points   []GraphPoint `json:"points"`
	Segments int          `json:"segments"`
}

// ProgramInfo describes a saved program.
type ProgramInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Hash        string    `json:"hash"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EvaluationInfo describes one history entry.
type EvaluationInfo struct {
	ID          string    `json:"id"`
	ProgramID   string    `json:"program_id,omitempty"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Value       *float64  `json:"value"`
	Display     string    `json:"display"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// OperatorInfo describes a registered operator.
type OperatorInfo struct {
	Symbol     string   `json:"symbol"`
	Arity      string   `json:"arity"`
	Precedence int      `json:"precedence,omitempty"`
	Style      string   `json:"style"`
	Aliases    []string `json:"aliases,omitempty"`
	Doc        string   `json:"doc,omitempty"`
}
