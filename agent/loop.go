// Package agent implements the model-driven loop: it holds a growing
// conversation, asks an llmwire.Dispatcher what to do next, runs whatever
// tools the model asks for, keeps the conversation under its token budget
// via the summarizer, and streams everything that happened as an ordered
// sequence of Events while a caller's context decides when to stop.
package agent

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/havenforge/agentcore/llmwire"
	"github.com/havenforge/agentcore/message"
)

// Client is the subset of llmwire.Dispatcher the loop depends on. A
// *llmwire.Dispatcher satisfies it directly; tests substitute a stub.
type Client interface {
	Generate(ctx context.Context, messages []message.Message, tools []llmwire.ToolSpec) (*llmwire.Response, error)
}

// Options configures an Agent's resource limits.
type Options struct {
	// TokenLimit is the conversation-size budget the summarizer compresses
	// against.
	TokenLimit int `validate:"gt=0"`
	// MaxSteps bounds how many model round-trips a single Run will make
	// before giving up and returning without an answer.
	MaxSteps int `validate:"gt=0"`
}

// DefaultOptions returns the Options a zero-value caller gets: an 80,000
// token budget and a 50-step cap.
func DefaultOptions() Options {
	return Options{TokenLimit: 80000, MaxSteps: 50}
}

var optionsValidator = validator.New()

// Agent holds one growing conversation and the collaborators needed to
// drive it: the provider dispatcher, the tool set the model may call, and
// the summarizer keeping the conversation under budget.
type Agent struct {
	client    Client
	tools     []Tool
	toolSpecs []llmwire.ToolSpec
	summarize *summarizer
	opts      Options
	logger    *zap.Logger

	messages       []message.Message
	apiTotalTokens int
}

// New constructs an Agent seeded with systemPrompt as its only message.
// A nil logger is replaced with a no-op one. An Options failing validation
// (TokenLimit or MaxSteps <= 0) is reported as a *ConfigurationError rather
// than a panic.
func New(client Client, systemPrompt string, tools []Tool, opts Options, logger *zap.Logger) (*Agent, error) {
	if err := optionsValidator.Struct(opts); err != nil {
		return nil, &ConfigurationError{Message: "invalid agent options", Cause: err}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		client:    client,
		tools:     tools,
		toolSpecs: specs(tools),
		summarize: newSummarizer(client, opts.TokenLimit),
		opts:      opts,
		logger:    logger,
		messages:  []message.Message{message.NewSystemMessage(systemPrompt)},
	}, nil
}

// AddUserMessage appends a user turn to the conversation. Call it before
// Run, or between one Run's completion and the next.
func (a *Agent) AddUserMessage(text string) {
	a.messages = append(a.messages, message.NewUserMessage(text))
}

// Messages returns a copy of the current conversation, for inspection or
// for seeding a new Agent with prior context.
func (a *Agent) Messages() []message.Message {
	out := make([]message.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// Run is one in-progress execution of the loop: a finite, lazily-produced
// sequence of Events paired with a Wait that blocks for the final answer.
type Run struct {
	events   chan Event
	resultCh chan runResult
}

type runResult struct {
	answer string
	err    error
}

// Events returns the channel Run delivers its events on. It is closed
// after the run's terminal event (or immediately, if the run ends with no
// events at all). Every event sent on it is guaranteed delivered — Run
// never drops an event the way a bounded fan-out buffer might.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Wait blocks until the run finishes and returns its final answer, or the
// error that ended it early. Cancellation is not reported as an error: a
// cancelled run returns a descriptive string and a nil error.
func (r *Run) Wait() (string, error) {
	res := <-r.resultCh
	return res.answer, res.err
}

// Run starts the loop and returns immediately with a Run a caller drains
// via Events and Wait. The loop itself runs on its own goroutine; ctx
// governs cancellation exactly at the checkpoints documented on
// cleanupIncompleteMessages and generateWithSignal.
func (a *Agent) Run(ctx context.Context) *Run {
	run := &Run{
		events:   make(chan Event),
		resultCh: make(chan runResult, 1),
	}
	go func() {
		defer close(run.events)
		answer, err := a.runSteps(ctx, run.events)
		run.resultCh <- runResult{answer: answer, err: err}
	}()
	return run
}

func (a *Agent) runSteps(ctx context.Context, events chan Event) (string, error) {
	for step := 0; step < a.opts.MaxSteps; step++ {
		if ctx.Err() != nil {
			return a.cancelled(events)
		}

		newMessages, summaryEvent := a.summarize.summarize(ctx, a.messages, a.apiTotalTokens)
		a.messages = newMessages
		if summaryEvent != nil {
			a.logger.Info("compressed context",
				zap.Int("beforeTokens", summaryEvent.BeforeTokens),
				zap.Int("afterTokens", summaryEvent.AfterTokens))
			events <- *summaryEvent
		}

		resp, err := generateWithSignal(ctx, a.client, a.messages, a.toolSpecs)
		if err != nil {
			if ctx.Err() != nil {
				return a.cancelled(events)
			}
			a.logger.Error("provider call failed", zap.Error(err))
			return "", err
		}
		if resp.Usage != nil {
			a.apiTotalTokens = resp.Usage.TotalTokens
		}

		assistantMsg := message.NewAssistantMessage(resp.Content, resp.Thinking, resp.ReasoningItems, resp.ToolCalls)
		a.messages = append(a.messages, assistantMsg)

		if resp.Thinking != "" {
			events <- Event{Kind: EventThinking, Content: resp.Thinking}
		}
		if resp.Content != "" && !assistantMsg.HasToolCalls() {
			events <- Event{Kind: EventAssistantMessage, Content: resp.Content}
		}
		if !assistantMsg.HasToolCalls() {
			return resp.Content, nil
		}

		if ctx.Err() != nil {
			return a.cancelled(events)
		}

		for _, tc := range resp.ToolCalls {
			events <- Event{Kind: EventToolCall, ToolCall: &tc}

			result := execute(ctx, a.tools, tc.Function.Name, tc.Function.Arguments)
			a.logger.Debug("tool executed", zap.String("tool", tc.Function.Name), zap.Bool("success", result.Success))
			events <- Event{Kind: EventToolResult, ToolCall: &tc, ToolResult: &result}

			content := result.Content
			if !result.Success {
				content = "Error: " + result.Error
			}
			a.messages = append(a.messages, message.NewToolMessage(tc.CallID, tc.Function.Name, content))

			if ctx.Err() != nil {
				return a.cancelled(events)
			}
		}
	}
	return fmt.Sprintf("Task couldn't be completed after %d steps.", a.opts.MaxSteps), nil
}

func (a *Agent) cancelled(events chan Event) (string, error) {
	a.messages = cleanupIncompleteMessages(a.messages)
	a.logger.Info("run cancelled")
	events <- Event{Kind: EventCancelled}
	return "Task cancelled by user.", nil
}
