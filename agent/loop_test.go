package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenforge/agentcore/llmwire"
	"github.com/havenforge/agentcore/message"
)

type weatherTool struct{}

func (weatherTool) Name() string        { return "get_weather" }
func (weatherTool) Description() string { return "fetch current weather for a city" }
func (weatherTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
		"required":   []string{"city"},
	}
}
func (weatherTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	return ToolResult{Success: true, Content: "sunny 25C"}, nil
}

func drain(run *Run) []Event {
	var events []Event
	for e := range run.Events() {
		events = append(events, e)
	}
	return events
}

// TestScenarioS1 covers scenario S1: a weather-tool round trip producing
// the exact event order toolCall -> toolResult -> assistantMessage, and a
// final history of [system, user, assistant, tool, assistant].
func TestScenarioS1WeatherToolRoundTrip(t *testing.T) {
	toolCall := message.ToolCall{CallID: "c1", Type: "function",
		Function: message.ToolCallFunction{Name: "get_weather", Arguments: map[string]any{"city": "Boston"}}}
	client := &stubClient{responses: []stubResponse{
		{resp: &llmwire.Response{ToolCalls: []message.ToolCall{toolCall}}},
		{resp: &llmwire.Response{Content: "It's sunny and 25C in Boston."}},
	}}

	a, err := New(client, "you are a helpful assistant", []Tool{weatherTool{}}, DefaultOptions(), nil)
	require.NoError(t, err)
	a.AddUserMessage("what's the weather in Boston?")

	run := a.Run(context.Background())
	events := drain(run)
	answer, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, "It's sunny and 25C in Boston.", answer)

	require.Len(t, events, 3)
	assert.Equal(t, EventToolCall, events[0].Kind)
	assert.Equal(t, "get_weather", events[0].ToolCall.Function.Name)
	assert.Equal(t, EventToolResult, events[1].Kind)
	require.True(t, events[1].ToolResult.Success)
	assert.Equal(t, "sunny 25C", events[1].ToolResult.Content)
	assert.Equal(t, EventAssistantMessage, events[2].Kind)
	assert.Equal(t, "It's sunny and 25C in Boston.", events[2].Content)

	assert.Len(t, a.Messages(), 5)
}

type trackingTool struct {
	onExecute func()
}

func (trackingTool) Name() string        { return "get_weather" }
func (trackingTool) Description() string { return "fetch current weather for a city" }
func (trackingTool) Parameters() map[string]any {
	return map[string]any{"type": "object"}
}
func (t *trackingTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	if t.onExecute != nil {
		t.onExecute()
	}
	return ToolResult{Success: true, Content: "sunny 25C"}, nil
}

// TestScenarioS2 covers scenario S2: the context is cancelled after the
// provider responds with a tool call but before that tool executes. The
// run ends with a single cancelled event, the tool is never invoked, and
// the dangling assistant turn is dropped from history.
func TestScenarioS2CancellationBeforeToolExecutes(t *testing.T) {
	toolCall := message.ToolCall{CallID: "c1", Type: "function",
		Function: message.ToolCallFunction{Name: "get_weather", Arguments: map[string]any{"city": "Boston"}}}

	ctx, cancel := context.WithCancel(context.Background())
	executed := false
	tool := &trackingTool{onExecute: func() { executed = true }}

	client := &stubClient{
		responses: []stubResponse{{resp: &llmwire.Response{ToolCalls: []message.ToolCall{toolCall}}}},
		onCall:    func(i int, _ []message.Message) { cancel() },
	}

	a, err := New(client, "sys", []Tool{tool}, DefaultOptions(), nil)
	require.NoError(t, err)
	a.AddUserMessage("what's the weather in Boston?")

	run := a.Run(ctx)
	events := drain(run)
	answer, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, "Task cancelled by user.", answer)

	require.Len(t, events, 1)
	assert.Equal(t, EventCancelled, events[0].Kind)
	assert.False(t, executed, "the tool must never run once cancellation is observed")
	assert.Len(t, a.Messages(), 2, "the dangling assistant turn is dropped")
}

func seedOverBudgetRounds(a *Agent, n int) {
	for i := 0; i < n; i++ {
		a.messages = append(a.messages,
			message.NewUserMessage(fmt.Sprintf("question %d carries enough filler text to cost real tokens", i)),
			message.NewAssistantMessage(fmt.Sprintf("answer %d also has enough filler text to cost tokens", i), "", nil, nil))
	}
	a.messages = append(a.messages, message.NewUserMessage("final question"))
}

// TestScenarioS3 covers scenario S3: with tokenLimit set low and five
// pre-seeded rounds, exactly one summarized event fires and the history
// collapses to [system, summary, ...retained rounds].
func TestScenarioS3SummarizationTriggers(t *testing.T) {
	client := &stubClient{responses: []stubResponse{{resp: &llmwire.Response{Content: "a compact summary of the early rounds"}}}}
	a, err := New(client, "sys", nil, Options{TokenLimit: 10, MaxSteps: 50}, nil)
	require.NoError(t, err)
	seedOverBudgetRounds(a, 5)

	run := a.Run(context.Background())
	events := drain(run)
	_, err = run.Wait()
	require.NoError(t, err)

	summarized := 0
	for _, e := range events {
		if e.Kind == EventSummarized {
			summarized++
			assert.Greater(t, e.BeforeTokens, e.AfterTokens)
		}
	}
	assert.Equal(t, 1, summarized)
	require.True(t, a.messages[0].Role == message.RoleSystem)
	require.True(t, a.messages[1].IsSummary())
}

// TestScenarioS4 covers scenario S4: a second compression pass folds the
// prior summary's body into the new compression input instead of
// discarding it.
func TestScenarioS4SecondCompressionMergesPriorSummary(t *testing.T) {
	client := &stubClient{responses: []stubResponse{{resp: &llmwire.Response{Content: "merged summary"}}}}
	a, err := New(client, "sys", nil, Options{TokenLimit: 10, MaxSteps: 50}, nil)
	require.NoError(t, err)

	a.messages = append(a.messages, message.NewSummaryMessage("earlier decisions and facts"))
	seedOverBudgetRounds(a, 5)

	var capturedInput string
	client.onCall = func(i int, messages []message.Message) {
		if i == 0 {
			capturedInput = messages[1].TextContent()
		}
	}

	run := a.Run(context.Background())
	drain(run)
	_, err = run.Wait()
	require.NoError(t, err)

	assert.Contains(t, capturedInput, "Previous Context Summary")
	assert.Contains(t, capturedInput, "earlier decisions and facts")
}

// TestScenarioS5 covers scenario S5: the summarizer's own LLM call fails.
// The failure is swallowed, no summarized event fires, and the summarizer
// leaves history as it was: the only change is the answer the following
// main provider call appends.
func TestScenarioS5SummarizerFailureIsSwallowed(t *testing.T) {
	client := &stubClient{responses: []stubResponse{
		{err: fmt.Errorf("provider unavailable")},
		{resp: &llmwire.Response{Content: "a normal answer"}},
	}}
	a, err := New(client, "sys", nil, Options{TokenLimit: 10, MaxSteps: 50}, nil)
	require.NoError(t, err)
	seedOverBudgetRounds(a, 5)
	before := a.Messages()

	run := a.Run(context.Background())
	events := drain(run)
	_, err = run.Wait()
	require.NoError(t, err)

	for _, e := range events {
		assert.NotEqual(t, EventSummarized, e.Kind)
	}
	require.Len(t, a.messages, len(before)+1)
	assert.Equal(t, before, a.messages[:len(before)])
	assert.Equal(t, "a normal answer", a.messages[len(before)].TextContent())
}

func TestRunReturnsAssistantAnswerDirectlyWhenNoToolCallsOnFirstStep(t *testing.T) {
	client := &stubClient{responses: []stubResponse{{resp: &llmwire.Response{Content: "hi there"}}}}
	a, err := New(client, "sys", nil, DefaultOptions(), nil)
	require.NoError(t, err)
	a.AddUserMessage("hello")

	run := a.Run(context.Background())
	drain(run)
	answer, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, "hi there", answer)
	assert.Len(t, a.Messages(), 3)
}

func TestRunStopsAtMaxStepsWithoutAnswer(t *testing.T) {
	toolCall := message.ToolCall{CallID: "c1", Function: message.ToolCallFunction{Name: "get_weather", Arguments: map[string]any{}}}
	client := &stubClient{}
	for i := 0; i < 5; i++ {
		client.responses = append(client.responses, stubResponse{resp: &llmwire.Response{ToolCalls: []message.ToolCall{toolCall}}})
	}
	a, err := New(client, "sys", []Tool{weatherTool{}}, Options{TokenLimit: 1_000_000, MaxSteps: 3}, nil)
	require.NoError(t, err)
	a.AddUserMessage("loop forever")

	run := a.Run(context.Background())
	drain(run)
	answer, err := run.Wait()
	require.NoError(t, err)
	assert.Contains(t, answer, "3 steps")
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(&stubClient{}, "sys", nil, Options{TokenLimit: 0, MaxSteps: 0}, nil)
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
