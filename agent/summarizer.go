package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/havenforge/agentcore/message"
	"github.com/havenforge/agentcore/tokenizer"
)

// retainedRounds is the number of most-recent conversation rounds the
// summarizer never compresses, regardless of how far over the token
// budget the conversation runs.
const retainedRounds = 3

// messageOverheadTokens approximates the per-message framing cost (role
// markers, turn delimiters) that provider wire formats add on top of a
// message's raw content.
const messageOverheadTokens = 4

const summarizerSystemPrompt = "You are a context-compression assistant for a conversational agent. " +
	"Summarize the conversation below concisely, in English, in 2000 words or fewer. " +
	"If a previous context summary is included, integrate it into the new summary instead of discarding it. " +
	"Preserve facts, decisions, and open threads; omit pleasantries and restating tool mechanics."

// existingSummaryMarker is the fixed text NewSummaryMessage writes between
// its fixed preamble and the summary body, used here to strip the preamble
// back off when a previously-injected summary is folded into a new one.
const existingSummaryMarker = "not a new user request.\n\n"

// summarizer implements the hierarchical context-compression pass: it
// decides whether a conversation is over budget, and if so collapses its
// oldest rounds into one synthetic summary message via an LLM call.
type summarizer struct {
	client     Client
	tokenLimit int

	// skipNextTokenCheck debounces the token check for exactly one step
	// after any compression attempt, successful or not, so a compression
	// that only partially reduces token count (or one whose failure the
	// next step would otherwise retry immediately) doesn't fire twice in
	// a row.
	skipNextTokenCheck bool
}

func newSummarizer(client Client, tokenLimit int) *summarizer {
	return &summarizer{client: client, tokenLimit: tokenLimit}
}

// round is a [startIdx, endIdx) span of messages beginning at a user-role
// message and running up to (but excluding) the next one.
type round struct {
	startIdx, endIdx int
}

// partitionRounds splits messages[1:] (index 0, the system message, is
// never part of a round) into rounds, one per user-role message.
func partitionRounds(messages []message.Message) []round {
	var rounds []round
	for i := 1; i < len(messages); i++ {
		if messages[i].Role == message.RoleUser {
			if len(rounds) > 0 {
				rounds[len(rounds)-1].endIdx = i
			}
			rounds = append(rounds, round{startIdx: i})
		}
	}
	if len(rounds) > 0 {
		rounds[len(rounds)-1].endIdx = len(messages)
	}
	return rounds
}

// estimateTokens approximates the token cost of messages: text content
// counted directly, structured content block lists counted via their JSON
// encoding, thinking text and the tool calls' JSON encoding counted too,
// plus a fixed per-message overhead for role framing.
func estimateTokens(messages []message.Message) int {
	total := 0
	for _, m := range messages {
		total += messageOverheadTokens
		switch c := m.Content.(type) {
		case string:
			total += tokenizer.Count(c)
		case []message.ContentBlock:
			if b, err := json.Marshal(c); err == nil {
				total += tokenizer.Count(string(b))
			}
		}
		if m.Thinking != "" {
			total += tokenizer.Count(m.Thinking)
		}
		if len(m.ToolCalls) > 0 {
			if b, err := json.Marshal(m.ToolCalls); err == nil {
				total += tokenizer.Count(string(b))
			}
		}
	}
	return total
}

// extractSummaryBody strips NewSummaryMessage's fixed preamble off a
// previously-injected summary message's text, leaving just the body a new
// compression pass should fold in.
func extractSummaryBody(text string) string {
	idx := strings.Index(text, existingSummaryMarker)
	if idx == -1 {
		return text
	}
	return text[idx+len(existingSummaryMarker):]
}

// gatherForCompression collects the messages belonging to rounds[0:k) —
// the rounds a compression pass is about to fold — excluding any existing
// summary message found among them, whose body is returned separately.
func gatherForCompression(messages []message.Message, rounds []round, k int) (gathered []message.Message, existingSummary string) {
	start := rounds[0].startIdx
	end := rounds[k-1].endIdx
	for i := start; i < end; i++ {
		m := messages[i]
		if m.IsSummary() {
			existingSummary = extractSummaryBody(m.TextContent())
			continue
		}
		gathered = append(gathered, m)
	}
	return gathered, existingSummary
}

// toolResultTruncateLimit caps how much of a single tool result's text
// feeds into the compression input, so one verbose tool call can't crowd
// out everything else the summarizer needs to see.
const toolResultTruncateLimit = 500

// buildCompressionInput renders the gathered rounds (and, if present, the
// prior summary) as the plain-text transcript the summarizer LLM call
// receives as its user message.
func buildCompressionInput(existingSummary string, gathered []message.Message) string {
	var b strings.Builder
	if existingSummary != "" {
		b.WriteString("Previous Context Summary\n")
		b.WriteString(existingSummary)
		b.WriteString("\n\n")
	}
	for _, m := range gathered {
		switch m.Role {
		case message.RoleUser:
			b.WriteString("User: ")
			b.WriteString(m.TextContent())
			b.WriteString("\n")
		case message.RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(m.TextContent())
			b.WriteString("\n")
			if len(m.ToolCalls) > 0 {
				names := make([]string, len(m.ToolCalls))
				for i, tc := range m.ToolCalls {
					names[i] = tc.Function.Name
				}
				b.WriteString("Tools called: ")
				b.WriteString(strings.Join(names, ", "))
				b.WriteString("\n")
			}
		case message.RoleTool:
			content := m.TextContent()
			if len(content) > toolResultTruncateLimit {
				content = content[:toolResultTruncateLimit]
			}
			b.WriteString("Tool result: ")
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// summarize checks whether messages is over tokenLimit and, if so,
// replaces its oldest rounds with one synthetic summary message. It
// returns the (possibly unchanged) message list and, only on a successful
// compression, an EventSummarized describing the before/after token
// counts — nil otherwise, including on every path that leaves messages
// untouched.
func (s *summarizer) summarize(ctx context.Context, messages []message.Message, apiTotalTokens int) ([]message.Message, *Event) {
	if s.skipNextTokenCheck {
		s.skipNextTokenCheck = false
		return messages, nil
	}

	estimated := estimateTokens(messages)
	if estimated <= s.tokenLimit && apiTotalTokens <= s.tokenLimit {
		return messages, nil
	}

	rounds := partitionRounds(messages)
	if len(rounds) <= retainedRounds {
		return messages, nil
	}

	k := len(rounds) - retainedRounds
	gathered, existingSummary := gatherForCompression(messages, rounds, k)
	input := buildCompressionInput(existingSummary, gathered)

	resp, err := s.client.Generate(ctx, []message.Message{
		message.NewSystemMessage(summarizerSystemPrompt),
		message.NewUserMessage(input),
	}, nil)
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		s.skipNextTokenCheck = true
		return messages, nil
	}

	newMessages := make([]message.Message, 0, 2+len(messages)-rounds[k].startIdx)
	newMessages = append(newMessages, messages[0], message.NewSummaryMessage(resp.Content))
	newMessages = append(newMessages, messages[rounds[k].startIdx:]...)

	s.skipNextTokenCheck = true
	return newMessages, &Event{
		Kind:         EventSummarized,
		BeforeTokens: estimated,
		AfterTokens:  estimateTokens(newMessages),
	}
}
