package llmwire

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenforge/agentcore/message"
)

// TestGeminiEncodeAssistantPartOrderAndRoleMapping covers the encoding half
// of scenario S6; TestGeminiDecodeFunctionCallMissingIDGetsSynthesizedFallback
// covers the decoding half.
func TestGeminiEncodeAssistantPartOrderAndRoleMapping(t *testing.T) {
	m := message.NewAssistantMessage("", "…", nil,
		[]message.ToolCall{{CallID: "c1", Type: "function", Function: message.ToolCallFunction{Name: "f", Arguments: map[string]any{"x": 1.0}}}})

	content := encodeGeminiAssistantContent(m)
	assert.Equal(t, "model", content.Role)
	require.Len(t, content.Parts, 2)
	assert.True(t, content.Parts[0].Thought)
	assert.Equal(t, "…", content.Parts[0].Text)
	require.NotNil(t, content.Parts[1].FunctionCall)
	assert.Equal(t, "f", content.Parts[1].FunctionCall.Name)
	assert.Equal(t, "c1", content.Parts[1].FunctionCall.ID)
	assert.Equal(t, map[string]any{"x": 1.0}, content.Parts[1].FunctionCall.Args)
}

func TestGeminiEncodeDegenerateAssistantMessageGetsEmptyTextPart(t *testing.T) {
	m := message.NewAssistantMessage("", "", nil, nil)
	content := encodeGeminiAssistantContent(m)
	require.Len(t, content.Parts, 1, "empty parts arrays are rejected by the wire format")
	assert.Equal(t, "", content.Parts[0].Text)
	assert.False(t, content.Parts[0].Thought)
}

func TestGeminiDecodeFunctionCallMissingIDGetsSynthesizedFallback(t *testing.T) {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{
				{FunctionCall: &geminiFunctionCall{Name: "f", Args: map[string]any{"x": 1.0}}},
			}}},
		},
	}
	out := decodeGeminiResponse(resp)
	require.Len(t, out.ToolCalls, 1)
	assert.Regexp(t, regexp.MustCompile(`^gemini_call_\d+_\d+$`), out.ToolCalls[0].CallID)
}

func TestGeminiDecodePreservesExplicitFunctionCallID(t *testing.T) {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{
				{FunctionCall: &geminiFunctionCall{ID: "c1", Name: "f", Args: map[string]any{}}},
			}}},
		},
	}
	out := decodeGeminiResponse(resp)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "c1", out.ToolCalls[0].CallID)
}

func TestGeminiDecodeThinkingAndTextSeparated(t *testing.T) {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{
				{Text: "reasoning...", Thought: true},
				{Text: "final answer"},
			}}},
		},
	}
	out := decodeGeminiResponse(resp)
	assert.Equal(t, "reasoning...", out.Thinking)
	assert.Equal(t, "final answer", out.Content)
}

func TestGeminiSystemInstructionLifted(t *testing.T) {
	messages := []message.Message{
		message.NewSystemMessage("S"),
		message.NewUserMessage("hi"),
	}
	req := encodeGeminiRequest(messages, nil)
	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "S", req.SystemInstruction.Parts[0].Text)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
}

func TestGeminiToolResultMapsToUserRoleFunctionResponse(t *testing.T) {
	messages := []message.Message{message.NewToolMessage("c1", "get_weather", "sunny")}
	req := encodeGeminiRequest(messages, nil)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
	require.NotNil(t, req.Contents[0].Parts[0].FunctionResponse)
	assert.Equal(t, "c1", req.Contents[0].Parts[0].FunctionResponse.ID)
}
