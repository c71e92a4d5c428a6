package agent

import (
	"context"

	"github.com/havenforge/agentcore/llmwire"
)

// ToolResult is the outcome of one tool invocation.
type ToolResult struct {
	Success bool
	Content string
	Error   string
}

// Tool is a single callable the model may invoke. Spec() is consulted by
// the loop once per Run to build the llmwire.ToolSpec list passed to the
// dispatcher; Execute is called by the tool executor once per matched
// tool call.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// Spec renders t as the provider-agnostic schema description llmwire's
// adapters render into each vendor's tool-declaration shape.
func Spec(t Tool) llmwire.ToolSpec {
	return llmwire.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// specs converts a Tool slice to the llmwire.ToolSpec slice a Dispatcher
// call expects.
func specs(tools []Tool) []llmwire.ToolSpec {
	out := make([]llmwire.ToolSpec, len(tools))
	for i, t := range tools {
		out[i] = Spec(t)
	}
	return out
}

// findTool returns the tool in tools named name, or nil.
func findTool(tools []Tool, name string) Tool {
	for _, t := range tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}
