package agent

import "github.com/havenforge/agentcore/message"

// EventKind tags the variant of an Event.
type EventKind string

const (
	// EventThinking carries a provider's reasoning trace for the step that
	// just completed, when the provider exposed one.
	EventThinking EventKind = "thinking"
	// EventAssistantMessage carries the assistant's final text for a step
	// that produced no tool calls.
	EventAssistantMessage EventKind = "assistantMessage"
	// EventToolCall announces a tool the model asked to invoke, before the
	// executor runs it.
	EventToolCall EventKind = "toolCall"
	// EventToolResult reports what a tool call produced, after the executor
	// has already caught any panic or error it raised.
	EventToolResult EventKind = "toolResult"
	// EventSummarized reports a completed context-compression pass.
	EventSummarized EventKind = "summarized"
	// EventCancelled is the terminal event of a run that ended because its
	// context was cancelled.
	EventCancelled EventKind = "cancelled"
)

// Event is one item of the lazy, finite event sequence a Run produces.
// Which payload fields are populated is selected by Kind, as noted on each
// field; EventCancelled carries none.
type Event struct {
	Kind EventKind

	// Content holds the text for EventThinking (the thinking text itself)
	// and EventAssistantMessage.
	Content string

	// ToolCall is set for EventToolCall and EventToolResult.
	ToolCall *message.ToolCall
	// ToolResult is set for EventToolResult.
	ToolResult *ToolResult

	// BeforeTokens and AfterTokens are set for EventSummarized.
	BeforeTokens int
	AfterTokens  int
}
