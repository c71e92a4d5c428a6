// Package message defines the canonical, provider-neutral conversation
// model shared by every adapter in llmwire and by the agent loop. It is the
// lingua franca that lets four otherwise incompatible wire protocols be
// interchanged behind one loop: adapters translate to and from this shape,
// and nothing downstream of an adapter needs to know which provider
// produced a Message.
package message

import "strings"

// Role identifies who produced a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// SummaryPrefix marks the synthetic summary message the compressor injects.
// It is a stable textual contract: both the marker the compressor writes and
// the marker it looks for to detect an existing summary to merge.
const SummaryPrefix = "[Context Summary]"

// ContentBlock is one opaque block of structured content. Adapters that
// decode multi-part provider output (images, documents, anything the loop
// itself never interprets) attach it here instead of forcing everything
// through the Thinking/ToolCalls fields.
type ContentBlock struct {
	Type string         `json:"type"`
	Text string         `json:"text,omitempty"`
	Raw  map[string]any `json:"raw,omitempty"`
}

// ReasoningItem preserves a single provider-identified reasoning block so it
// can be round-tripped on providers (the OpenAI Responses adapter) that
// require the item's id to reappear verbatim on the next request.
type ReasoningItem struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// ToolCallFunction is the name/arguments pair the model asked to invoke.
type ToolCallFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCall is a single model-initiated tool invocation.
//
// CallID is the correlation id: it is what links this call to the
// tool-role Message carrying its result, and it is required. ID is a
// separate item id some providers (OpenAI Responses) surface in addition to
// the correlation id; providers that only have one id (Anthropic, Chat
// Completions) leave ID empty and let CallID serve both purposes.
type ToolCall struct {
	CallID   string           `json:"call_id"`
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// Message is the canonical unit of conversation.
//
// Content is either a string (the common case: plain user/assistant/system
// text, or a tool result's textual payload) or an ordered []ContentBlock
// for structured content an adapter decoded but the loop does not
// interpret. Exactly one of the two is populated.
type Message struct {
	Role           Role
	Content        any
	Thinking       string
	ReasoningItems []ReasoningItem
	ToolCalls      []ToolCall
	CallID         string
	Name           string
}

// NewSystemMessage creates a system-role Message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewUserMessage creates a user-role Message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant-role Message carrying any
// combination of text, thinking, reasoning items, and tool calls.
func NewAssistantMessage(text, thinking string, reasoningItems []ReasoningItem, toolCalls []ToolCall) Message {
	return Message{
		Role:           RoleAssistant,
		Content:        text,
		Thinking:       thinking,
		ReasoningItems: reasoningItems,
		ToolCalls:      toolCalls,
	}
}

// NewToolMessage creates a tool-role Message carrying one tool's result.
// callID must match the CallID of the ToolCall it answers.
func NewToolMessage(callID, name, content string) Message {
	return Message{
		Role:    RoleTool,
		Content: content,
		CallID:  callID,
		Name:    name,
	}
}

// NewSummaryMessage creates the synthetic user-role message the compressor
// injects in place of the rounds it compressed. Placing the summary as role
// user (not system) keeps it separate from the real system prompt on
// providers that segregate the two, and the fixed prefix makes it
// detectable on a later compression pass so it can be merged rather than
// duplicated.
func NewSummaryMessage(summaryText string) Message {
	return NewUserMessage(SummaryPrefix +
		"\n\nThe following is a summary of our previous conversation, not a new user request.\n\n" +
		summaryText)
}

// TextContent returns the message's content as plain text: the string
// directly if Content is a string, or the concatenation of all "text"
// blocks if Content is a []ContentBlock.
func (m Message) TextContent() string {
	switch c := m.Content.(type) {
	case string:
		return c
	case []ContentBlock:
		var sb strings.Builder
		for _, b := range c {
			if b.Type == "text" {
				sb.WriteString(b.Text)
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// IsSummary reports whether m is a synthetic context-summary message: role
// user with content beginning with SummaryPrefix. At most one such message
// may exist in a conversation at a time (see agent's summarizer).
func (m Message) IsSummary() bool {
	return m.Role == RoleUser && strings.HasPrefix(m.TextContent(), SummaryPrefix)
}

// HasToolCalls reports whether the message carries at least one tool call.
// The loop's "finished?" test is a single call to this method: an assistant
// turn with no tool calls ends the step.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
