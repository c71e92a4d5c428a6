package tools

import (
	"context"

	"github.com/havenforge/agentcore/agent"
)

// EchoArgs is echo's argument shape.
type EchoArgs struct {
	Text string `json:"text" jsonschema:"required,description=Text to echo back"`
}

// Echo is the simplest possible tool: it returns exactly what it was
// given. Useful as a no-op fixture in loop tests that only care about the
// tool-call/tool-result plumbing, not what any particular tool computes.
type Echo struct{}

func (Echo) Name() string        { return "echo" }
func (Echo) Description() string { return "Echo the given text back unchanged." }

func (Echo) Parameters() map[string]any {
	return reflectParameters(&EchoArgs{})
}

func (Echo) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	text, _ := args["text"].(string)
	return agent.ToolResult{Success: true, Content: text}, nil
}
