package llmwire

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/havenforge/agentcore/message"
)

// openAIResponsesAdapter speaks the OpenAI Responses item-based wire
// format: a flat sequence of typed items rather than role-tagged turns. A
// single canonical assistant message may expand into several items.
type openAIResponsesAdapter struct {
	client *openai.Client
	model  string
}

func newOpenAIResponsesAdapter(cfg Config) *openAIResponsesAdapter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBaseURL))
	}
	client := openai.NewClient(opts...)
	return &openAIResponsesAdapter{client: &client, model: cfg.Model}
}

func (a *openAIResponsesAdapter) generate(ctx context.Context, messages []message.Message, tools []ToolSpec) (*Response, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
	}
	items := encodeResponsesInput(messages)
	params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: items}
	if instructions := systemText(messages); instructions != "" {
		params.Instructions = openai.String(instructions)
	}
	if len(tools) > 0 {
		params.Tools = encodeResponsesTools(tools)
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, translateOpenAIError(err, "openai")
	}
	return decodeResponsesResponse(resp)
}

// encodeResponsesInput is pure: it never mutates messages. It expands each
// canonical assistant message into reasoning items, then function_call
// items, then an optional output message item, in that order.
func encodeResponsesInput(messages []message.Message) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(messages)+2)
	for _, m := range messages {
		switch m.Role {
		case message.RoleSystem:
			continue
		case message.RoleUser:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.TextContent(), responses.EasyInputMessageRoleUser))
		case message.RoleTool:
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(m.CallID, m.TextContent()))
		case message.RoleAssistant:
			items = append(items, encodeResponsesAssistantItems(m)...)
		}
	}
	return items
}

func encodeResponsesAssistantItems(m message.Message) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(m.ReasoningItems)+len(m.ToolCalls)+1)
	for _, ri := range m.ReasoningItems {
		items = append(items, responses.ResponseInputItemUnionParam{
			OfReasoning: &responses.ResponseReasoningItemParam{
				ID:      ri.ID,
				Summary: []responses.ResponseReasoningItemSummaryParam{{Text: ri.Summary, Type: "summary_text"}},
			},
		})
	}
	for _, tc := range m.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		item := responses.ResponseInputItemParamOfFunctionCall(string(args), tc.CallID, tc.Function.Name)
		if item.OfFunctionCall != nil {
			id := tc.ID
			if id == "" {
				id = tc.CallID
			}
			item.OfFunctionCall.ID = openai.String(id)
		}
		items = append(items, item)
	}
	if text := m.TextContent(); text != "" {
		items = append(items, responses.ResponseInputItemParamOfOutputMessage(
			[]responses.ResponseOutputMessageContentUnionParam{
				{OfOutputText: &responses.ResponseOutputTextParam{Text: text, Annotations: []responses.ResponseOutputTextAnnotationUnionParam{}}},
			},
			"msg_"+uuid.NewString(),
			responses.ResponseOutputMessageStatusCompleted,
		))
	}
	return items
}

func encodeResponsesTools(tools []ToolSpec) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, len(tools))
	for i, t := range tools {
		tool := responses.ToolParamOfFunction(t.Name, t.parametersOrEmpty(), false)
		if tool.OfFunction != nil {
			tool.OfFunction.Description = openai.String(t.Description)
		}
		out[i] = tool
	}
	return out
}

func decodeResponsesResponse(resp *responses.Response) (*Response, error) {
	out := &Response{}
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			msg := item.AsMessage()
			for _, part := range msg.Content {
				if part.Type == "output_text" {
					out.Content += part.Text
				}
			}
		case "reasoning":
			r := item.AsReasoning()
			out.ReasoningItems = append(out.ReasoningItems, message.ReasoningItem{ID: r.ID, Summary: summaryText(r.Summary)})
			out.Thinking += summaryText(r.Summary)
		case "function_call":
			fc := item.AsFunctionCall()
			var args map[string]any
			if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
				return nil, NewInvalidToolCallError("openai", fc.Name, err)
			}
			out.ToolCalls = append(out.ToolCalls, message.ToolCall{
				CallID: fc.CallID,
				ID:     fc.ID,
				Type:   "function",
				Function: message.ToolCallFunction{
					Name:      fc.Name,
					Arguments: args,
				},
			})
		}
	}
	out.FinishReason = mapResponsesStatus(resp.Status)
	out.Usage = &TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	return out, nil
}

func summaryText(summary []responses.ResponseReasoningItemSummary) string {
	var text string
	for _, s := range summary {
		text += s.Text
	}
	return text
}

func mapResponsesStatus(status responses.ResponseStatus) string {
	switch status {
	case responses.ResponseStatusCompleted:
		return "stop"
	case responses.ResponseStatusIncomplete:
		return "length"
	case responses.ResponseStatusFailed:
		return "error"
	case responses.ResponseStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
