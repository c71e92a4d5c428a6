// Package llmwire implements the four provider adapters (Anthropic
// Messages, OpenAI Responses, OpenAI Chat Completions, Google Gemini), the
// dispatcher that selects among them, and the shared error/retry machinery
// every adapter's network call runs through.
package llmwire

import "github.com/havenforge/agentcore/message"

// TokenUsage is the provider-reported token accounting for one response.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is the canonical LLM response every adapter's decode function
// produces, regardless of which wire protocol it came from.
type Response struct {
	Content        string
	Thinking       string
	ReasoningItems []message.ReasoningItem
	ToolCalls      []message.ToolCall
	FinishReason   string
	Usage          *TokenUsage
}

// ToolSpec is the provider-agnostic description of a tool an adapter may
// offer the model: name, description, and a JSON Schema parameters object.
// It carries no execution behavior — that lives on agent.Tool, whose
// Name/Description/Parameters agent.Spec renders into a ToolSpec.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// AnthropicSchema renders the tool in Anthropic's nested input_schema form.
func (t ToolSpec) AnthropicSchema() map[string]any {
	return map[string]any{
		"name":         t.Name,
		"description":  t.Description,
		"input_schema": t.parametersOrEmpty(),
	}
}

// OpenAISchema renders the tool in Chat Completions' nested function form.
func (t ToolSpec) OpenAISchema() map[string]any {
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"parameters":  t.parametersOrEmpty(),
		},
	}
}

// ResponsesSchema renders the tool in the Responses API's flat form. strict
// is explicitly nil (not omitted, not false) per the wire contract the
// Responses item model expects when the caller does not opt into strict
// schema enforcement.
func (t ToolSpec) ResponsesSchema() map[string]any {
	return map[string]any{
		"type":        "function",
		"name":        t.Name,
		"description": t.Description,
		"parameters":  t.parametersOrEmpty(),
		"strict":      nil,
	}
}

// GeminiSchema renders the tool as a Gemini functionDeclarations entry,
// passing the JSON Schema through unchanged under parametersJsonSchema.
func (t ToolSpec) GeminiSchema() map[string]any {
	return map[string]any{
		"name":                 t.Name,
		"description":          t.Description,
		"parametersJsonSchema": t.parametersOrEmpty(),
	}
}

func (t ToolSpec) parametersOrEmpty() map[string]any {
	if t.Parameters != nil {
		return t.Parameters
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
