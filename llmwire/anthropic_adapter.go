package llmwire

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/havenforge/agentcore/message"
)

// anthropicAdapter speaks the Anthropic Messages wire protocol directly
// through anthropic-sdk-go.
type anthropicAdapter struct {
	client *anthropic.Client
	model  string
}

func newAnthropicAdapter(cfg Config) *anthropicAdapter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &anthropicAdapter{client: &client, model: cfg.Model}
}

func (a *anthropicAdapter) generate(ctx context.Context, messages []message.Message, tools []ToolSpec) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		Messages:  encodeAnthropicMessages(messages),
		MaxTokens: 4096,
	}
	if sys := systemText(messages); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}
	if len(tools) > 0 {
		params.Tools = encodeAnthropicTools(tools)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, translateAnthropicError(err)
	}
	if resp.StopReason == "refusal" {
		return nil, NewContentFilterError("anthropic", string(resp.StopReason))
	}
	return decodeAnthropicResponse(resp)
}

// encodeAnthropicMessages is pure: it never mutates messages. The system
// message is lifted out by the caller via systemText and excluded here.
func encodeAnthropicMessages(messages []message.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case message.RoleSystem:
			continue
		case message.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.TextContent())))
		case message.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.CallID, m.TextContent(), false)))
		case message.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(encodeAnthropicAssistantBlocks(m)...))
		}
	}
	return out
}

func encodeAnthropicAssistantBlocks(m message.Message) []anthropic.ContentBlockParamUnion {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(m.ToolCalls))
	if m.Thinking != "" {
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfThinking: &anthropic.ThinkingBlockParam{Thinking: m.Thinking},
		})
	}
	if text := m.TextContent(); text != "" {
		blocks = append(blocks, anthropic.NewTextBlock(text))
	}
	for _, tc := range m.ToolCalls {
		input, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			input = json.RawMessage("{}")
		}
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    tc.CallID,
				Name:  tc.Function.Name,
				Input: input,
			},
		})
	}
	return blocks
}

func encodeAnthropicTools(tools []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		props, _ := t.Parameters["properties"].(map[string]any)
		if props == nil {
			props = map[string]any{}
		}
		required := stringSlice(t.Parameters["required"])
		out[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   required,
				},
			},
		}
	}
	return out
}

// stringSlice normalizes a schema's "required" field, which arrives as
// []string when a ToolSpec is built by hand but as []interface{} when it
// comes back through an encoding/json round trip (tools.reflectParameters
// goes through json.Marshal/Unmarshal, so a JSON array always decodes into
// []interface{}, never []string).
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func decodeAnthropicResponse(resp *anthropic.Message) (*Response, error) {
	out := &Response{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Content += block.AsText().Text
		case "thinking":
			out.Thinking += block.AsThinking().Thinking
		case "tool_use":
			tu := block.AsToolUse()
			var args map[string]any
			if err := json.Unmarshal(tu.Input, &args); err != nil {
				return nil, NewInvalidToolCallError("anthropic", tu.Name, err)
			}
			out.ToolCalls = append(out.ToolCalls, message.ToolCall{
				CallID: tu.ID,
				Type:   "function",
				Function: message.ToolCallFunction{
					Name:      tu.Name,
					Arguments: args,
				},
			})
		}
	}
	out.FinishReason = string(resp.StopReason)
	out.Usage = &TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.InputTokens) + int(resp.Usage.OutputTokens),
	}
	return out, nil
}

// systemText concatenates every system-role message's text, in case the
// caller seeded more than one (the loop itself only ever emits one, but
// encode must not assume it).
func systemText(messages []message.Message) string {
	var text string
	for _, m := range messages {
		if m.Role == message.RoleSystem {
			if text != "" {
				text += "\n\n"
			}
			text += m.TextContent()
		}
	}
	return text
}

func translateAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if ae, ok := err.(*anthropic.Error); ok {
		apiErr = ae
		return ErrorFromStatusCode(apiErr.StatusCode, apiErr.Error(), "anthropic", "", nil, nil)
	}
	return &NetworkError{SDKError: SDKError{Message: "anthropic request failed", Cause: err}}
}
