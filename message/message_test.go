package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	sys := NewSystemMessage("You are helpful.")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, "You are helpful.", sys.TextContent())

	usr := NewUserMessage("hi")
	assert.Equal(t, RoleUser, usr.Role)
	assert.Equal(t, "hi", usr.TextContent())

	asst := NewAssistantMessage("hello", "thinking...", []ReasoningItem{{ID: "r1", Summary: "s"}},
		[]ToolCall{{CallID: "c1", Type: "function", Function: ToolCallFunction{Name: "f", Arguments: map[string]any{"x": 1.0}}}})
	assert.Equal(t, RoleAssistant, asst.Role)
	assert.Equal(t, "hello", asst.TextContent())
	assert.Equal(t, "thinking...", asst.Thinking)
	require.Len(t, asst.ReasoningItems, 1)
	assert.True(t, asst.HasToolCalls())

	tool := NewToolMessage("c1", "f", "72F and sunny")
	assert.Equal(t, RoleTool, tool.Role)
	assert.Equal(t, "c1", tool.CallID)
	assert.Equal(t, "f", tool.Name)
	assert.Equal(t, "72F and sunny", tool.TextContent())
}

func TestTextContentBlocks(t *testing.T) {
	m := Message{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "image", Raw: map[string]any{"url": "http://example.com"}},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", m.TextContent())
}

func TestSummaryMessage(t *testing.T) {
	m := NewSummaryMessage("Summarized R1-R2.")
	require.True(t, m.IsSummary())
	assert.Equal(t, RoleUser, m.Role)
	assert.Contains(t, m.TextContent(), "Summarized R1-R2.")

	plain := NewUserMessage("[Context Summary] is not a real summary unless built via NewSummaryMessage, but the prefix check only looks at text")
	assert.True(t, plain.IsSummary(), "prefix check is purely textual")

	notSummary := NewUserMessage("hello")
	assert.False(t, notSummary.IsSummary())
}

func TestHasToolCalls(t *testing.T) {
	assert.False(t, NewAssistantMessage("hi", "", nil, nil).HasToolCalls())
	assert.True(t, NewAssistantMessage("", "", nil, []ToolCall{{CallID: "c1"}}).HasToolCalls())
}
