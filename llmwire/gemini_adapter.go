package llmwire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/havenforge/agentcore/message"
)

// defaultGeminiBaseURL is used when a Config leaves APIBaseURL empty. No
// Gemini SDK exists anywhere in the reference pack this adapter was
// learned from, so it speaks the REST wire format directly over
// net/http+encoding/json instead — see DESIGN.md for the full rationale.
const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// geminiAdapter speaks the Google Gemini generateContent wire format
// directly. Unlike the other three adapters it has no vendor SDK to wrap.
type geminiAdapter struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func newGeminiAdapter(cfg Config) *geminiAdapter {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &geminiAdapter{
		httpClient: http.DefaultClient,
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      cfg.Model,
	}
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	Thought          bool                    `json:"thought,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiFunctionDeclaration struct {
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	ParametersJSONSchema map[string]any `json:"parametersJsonSchema,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (a *geminiAdapter) generate(ctx context.Context, messages []message.Message, tools []ToolSpec) (*Response, error) {
	reqBody := encodeGeminiRequest(messages, tools)
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &InvalidRequestError{ProviderError: ProviderError{SDKError: SDKError{Message: "failed to encode gemini request", Cause: err}, Provider: "gemini"}}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", a.baseURL, a.model, a.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "failed to build gemini request", Cause: err}}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "gemini request failed", Cause: err}}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "failed to read gemini response body", Cause: err}}
	}

	if httpResp.StatusCode >= 300 {
		var errBody geminiErrorBody
		_ = json.Unmarshal(body, &errBody)
		msg := errBody.Error.Message
		if msg == "" {
			msg = string(body)
		}
		return nil, ErrorFromStatusCode(httpResp.StatusCode, msg, "gemini", errBody.Error.Status, nil, nil)
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &InvalidRequestError{ProviderError: ProviderError{SDKError: SDKError{Message: "failed to decode gemini response", Cause: err}, Provider: "gemini"}}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == "SAFETY" {
		return nil, NewContentFilterError("gemini", resp.Candidates[0].FinishReason)
	}
	return decodeGeminiResponse(resp), nil
}

// encodeGeminiRequest is pure: it never mutates messages.
func encodeGeminiRequest(messages []message.Message, tools []ToolSpec) geminiRequest {
	var req geminiRequest
	if sys := systemText(messages); sys != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: sys}}}
	}
	for _, m := range messages {
		switch m.Role {
		case message.RoleSystem:
			continue
		case message.RoleUser:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.TextContent()}}})
		case message.RoleTool:
			req.Contents = append(req.Contents, geminiContent{
				Role: "user",
				Parts: []geminiPart{{FunctionResponse: &geminiFunctionResponse{
					ID:       m.CallID,
					Name:     m.Name,
					Response: map[string]any{"result": m.TextContent()},
				}}},
			})
		case message.RoleAssistant:
			req.Contents = append(req.Contents, encodeGeminiAssistantContent(m))
		}
	}
	if len(tools) > 0 {
		decls := make([]geminiFunctionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = geminiFunctionDeclaration{Name: t.Name, Description: t.Description, ParametersJSONSchema: t.parametersOrEmpty()}
		}
		req.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}
	return req
}

func encodeGeminiAssistantContent(m message.Message) geminiContent {
	var parts []geminiPart
	if m.Thinking != "" {
		parts = append(parts, geminiPart{Text: m.Thinking, Thought: true})
	}
	if text := m.TextContent(); text != "" {
		parts = append(parts, geminiPart{Text: text})
	}
	for _, tc := range m.ToolCalls {
		parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{
			ID:   tc.CallID,
			Name: tc.Function.Name,
			Args: tc.Function.Arguments,
		}})
	}
	if len(parts) == 0 {
		// Empty parts arrays are rejected by the wire format.
		parts = []geminiPart{{Text: ""}}
	}
	return geminiContent{Role: "model", Parts: parts}
}

func decodeGeminiResponse(resp geminiResponse) *Response {
	out := &Response{}
	if len(resp.Candidates) == 0 {
		return out
	}
	candidate := resp.Candidates[0]
	for i, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			callID := part.FunctionCall.ID
			if callID == "" {
				callID = synthesizeGeminiCallID(i)
			}
			out.ToolCalls = append(out.ToolCalls, message.ToolCall{
				CallID: callID,
				Type:   "function",
				Function: message.ToolCallFunction{
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				},
			})
		case part.Thought:
			out.Thinking += part.Text
		default:
			out.Content += part.Text
		}
	}
	out.FinishReason = candidate.FinishReason
	out.Usage = &TokenUsage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:  resp.UsageMetadata.TotalTokenCount,
	}
	return out
}

// synthesizeGeminiCallID produces the fallback correlation ID used when the
// provider response omits a functionCall id, so the subsequent tool-role
// message can still be matched to this call.
func synthesizeGeminiCallID(partIndex int) string {
	return fmt.Sprintf("gemini_call_%d_%d", time.Now().UnixNano(), partIndex)
}
