package tools

import (
	"context"
	"fmt"

	"github.com/havenforge/agentcore/agent"
)

// CalculatorArgs is calculate's argument shape: two operands and one of
// the four basic arithmetic operators.
type CalculatorArgs struct {
	Operation string  `json:"operation" jsonschema:"required,enum=add,enum=subtract,enum=multiply,enum=divide,description=Arithmetic operation to perform"`
	A         float64 `json:"a" jsonschema:"required,description=First operand"`
	B         float64 `json:"b" jsonschema:"required,description=Second operand"`
}

// Calculator evaluates one arithmetic operation on two operands. Division
// by zero is reported as a failed ToolResult, not a Go error — it is an
// ordinary, expected outcome of a bad argument, not a tool malfunction.
type Calculator struct{}

func (Calculator) Name() string { return "calculate" }

func (Calculator) Description() string {
	return "Perform one arithmetic operation (add, subtract, multiply, divide) on two numbers."
}

func (Calculator) Parameters() map[string]any {
	return reflectParameters(&CalculatorArgs{})
}

func (Calculator) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	op, _ := args["operation"].(string)
	a, _ := args["a"].(float64)
	b, _ := args["b"].(float64)

	switch op {
	case "add":
		return agent.ToolResult{Success: true, Content: fmt.Sprintf("%g", a+b)}, nil
	case "subtract":
		return agent.ToolResult{Success: true, Content: fmt.Sprintf("%g", a-b)}, nil
	case "multiply":
		return agent.ToolResult{Success: true, Content: fmt.Sprintf("%g", a*b)}, nil
	case "divide":
		if b == 0 {
			return agent.ToolResult{Success: false, Content: "", Error: "division by zero"}, nil
		}
		return agent.ToolResult{Success: true, Content: fmt.Sprintf("%g", a/b)}, nil
	default:
		return agent.ToolResult{Success: false, Content: "", Error: fmt.Sprintf("unsupported operation: %q", op)}, nil
	}
}
