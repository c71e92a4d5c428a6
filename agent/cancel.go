package agent

import (
	"context"

	"github.com/havenforge/agentcore/llmwire"
	"github.com/havenforge/agentcore/message"
)

// cleanupIncompleteMessages drops the trailing turn left behind when a run
// is cancelled mid-step: everything from the last assistant-role message
// onward, i.e. that assistant message and any tool results that followed
// it. The last assistant turn is dropped even when every one of its tool
// calls already has a result. A cancellation that lands before any
// assistant message was appended leaves messages unchanged.
func cleanupIncompleteMessages(messages []message.Message) []message.Message {
	lastAssistant := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == message.RoleAssistant {
			lastAssistant = i
			break
		}
	}
	if lastAssistant == -1 {
		return messages
	}
	return messages[:lastAssistant]
}

// generateWithSignal races a dispatcher call against ctx's cancellation.
// If ctx is already done it returns ctx.Err() without ever starting the
// call. Otherwise the call runs in its own goroutine with the same ctx
// (so a ctx-aware client aborts its own request when ctx is cancelled),
// and generateWithSignal returns as soon as ctx is done without waiting
// for it. The call's outcome is delivered over a buffered channel so that
// goroutine never blocks trying to hand off a result nobody is listening
// for anymore.
func generateWithSignal(ctx context.Context, client Client, messages []message.Message, tools []llmwire.ToolSpec) (*llmwire.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		resp *llmwire.Response
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		resp, err := client.Generate(ctx, messages, tools)
		ch <- outcome{resp, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-ch:
		return o.resp, o.err
	}
}
