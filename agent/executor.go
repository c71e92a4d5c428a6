package agent

import (
	"context"
	"fmt"
	"runtime/debug"
)

// execute runs the named tool against args and always returns a ToolResult
// rather than an error: an unknown tool name and a tool that panics or
// returns an error are both reported through ToolResult.Error, never
// propagated, so one misbehaving tool can never crash the loop.
func execute(ctx context.Context, tools []Tool, name string, args map[string]any) ToolResult {
	tool := findTool(tools, name)
	if tool == nil {
		return ToolResult{Success: false, Content: "", Error: fmt.Sprintf("Unknown tool: %s", name)}
	}
	return runTool(ctx, tool, args)
}

// runTool isolates a single tool invocation: any panic it raises is caught
// here and reported the same way a returned error is, with a captured
// stack trace standing in for a traceback.
func runTool(ctx context.Context, tool Tool, args map[string]any) (result ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ToolResult{
				Success: false,
				Content: "",
				Error:   fmt.Sprintf("Tool execution failed: %s: %v\n\nTraceback:\n%s", tool.Name(), r, debug.Stack()),
			}
		}
	}()

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return ToolResult{
			Success: false,
			Content: "",
			Error:   fmt.Sprintf("Tool execution failed: %s: %v\n\nTraceback:\n%s", tool.Name(), err, debug.Stack()),
		}
	}
	return res
}
