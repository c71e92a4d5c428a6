package llmwire

import (
	"context"
	"encoding/json"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/havenforge/agentcore/message"
)

// openAIChatAdapter speaks the flat OpenAI Chat Completions wire format.
// It has no notion of reasoning items; thinking always round-trips as
// empty, and a tool call's single id is decoded into ToolCall.CallID
// (ToolCall.ID is left empty) and encoded back from CallID.
type openAIChatAdapter struct {
	client *openai.Client
	model  string
}

func newOpenAIChatAdapter(cfg Config) *openAIChatAdapter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBaseURL))
	}
	client := openai.NewClient(opts...)
	return &openAIChatAdapter{client: &client, model: cfg.Model}
}

func (a *openAIChatAdapter) generate(ctx context.Context, messages []message.Message, tools []ToolSpec) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(a.model),
		Messages: encodeChatMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = encodeChatTools(tools)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, translateOpenAIError(err, "openai")
	}
	if len(resp.Choices) == 0 {
		return nil, &InvalidRequestError{ProviderError: ProviderError{
			SDKError: SDKError{Message: "chat completion returned no choices"},
			Provider: "openai",
		}}
	}
	if resp.Choices[0].FinishReason == "content_filter" {
		return nil, NewContentFilterError("openai", "content_filter")
	}
	return decodeChatResponse(resp)
}

func encodeChatMessages(messages []message.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case message.RoleSystem:
			out = append(out, openai.SystemMessage(m.TextContent()))
		case message.RoleUser:
			out = append(out, openai.UserMessage(m.TextContent()))
		case message.RoleTool:
			out = append(out, openai.ToolMessage(m.TextContent(), m.CallID))
		case message.RoleAssistant:
			out = append(out, encodeChatAssistantMessage(m))
		}
	}
	return out
}

func encodeChatAssistantMessage(m message.Message) openai.ChatCompletionMessageParamUnion {
	asst := openai.ChatCompletionAssistantMessageParam{}
	if text := m.TextContent(); text != "" {
		asst.Content.OfString = openai.String(text)
	}
	if len(m.ToolCalls) > 0 {
		asst.ToolCalls = make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			asst.ToolCalls[i] = openai.ChatCompletionMessageToolCallParam{
				ID: tc.CallID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      tc.Function.Name,
					Arguments: string(args),
				},
			}
		}
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

func encodeChatTools(tools []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		out[i] = openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.parametersOrEmpty()),
			},
		}
	}
	return out
}

func decodeChatResponse(resp *openai.ChatCompletion) (*Response, error) {
	choice := resp.Choices[0]
	out := &Response{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}
	// Reasoning is not modeled by this wire format; ToolCalls and Thinking
	// stay at their zero values unless a tool call is present below.
	if len(choice.Message.ToolCalls) > 0 {
		out.ToolCalls = make([]message.ToolCall, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			if tc.Type != "" && tc.Type != "function" {
				continue
			}
			var args map[string]any
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, NewInvalidToolCallError("openai", tc.Function.Name, err)
			}
			out.ToolCalls = append(out.ToolCalls, message.ToolCall{
				CallID: tc.ID,
				Type:   "function",
				Function: message.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: args,
				},
			})
		}
	}
	out.Usage = &TokenUsage{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	return out, nil
}

func translateOpenAIError(err error, provider string) error {
	if apiErr, ok := err.(*openai.Error); ok {
		return ErrorFromStatusCode(apiErr.StatusCode, apiErr.Error(), provider, apiErr.Code, nil, nil)
	}
	return &NetworkError{SDKError: SDKError{Message: provider + " request failed", Cause: err}}
}
