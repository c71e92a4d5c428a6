package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/havenforge/agentcore/agent"
	"github.com/havenforge/agentcore/llmwire"
	"github.com/havenforge/agentcore/tools"
)

const defaultSystemPrompt = "You are a helpful assistant with access to a small set of tools. " +
	"Use them when they help answer the user's question; otherwise answer directly."

var (
	provider string
	model    string
	apiKey   string
	baseURL  string
	prompt   string
	verbose  bool

	tokenLimit int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentdemo",
		Short: "Run one prompt through the agent loop and print its event stream",
		Long: `agentdemo wires an llmwire.Dispatcher, the reference tool set in the
tools package, and the agent loop together, then runs a single prompt and
prints every event the loop emits as it arrives.`,
		RunE: runDemo,
	}

	cmd.Flags().StringVar(&provider, "provider", "anthropic", "provider: anthropic, openai, openai-responses, or gemini")
	cmd.Flags().StringVar(&model, "model", "claude-sonnet-4-5", "model id to request")
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("AGENTCORE_API_KEY"), "provider API key (default: $AGENTCORE_API_KEY)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the provider's default API base URL")
	cmd.Flags().StringVar(&prompt, "prompt", "", "the user prompt to run (required)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode logging")
	cmd.Flags().IntVar(&tokenLimit, "token-limit", 0, "conversation token budget (default: the model's catalog context window)")
	cmd.MarkFlagRequired("prompt")

	return cmd
}

func runDemo(cmd *cobra.Command, args []string) error {
	logger := mustLogger(verbose)
	defer logger.Sync()

	if apiKey == "" {
		return fmt.Errorf("no API key: set --api-key or AGENTCORE_API_KEY")
	}

	dispatcher, err := llmwire.NewDispatcher(llmwire.Config{
		APIKey:     apiKey,
		Provider:   provider,
		APIBaseURL: baseURL,
		Model:      model,
	})
	if err != nil {
		return fmt.Errorf("configuring dispatcher: %w", err)
	}
	dispatcher.OnRetry = func(err error, attempt int, delay time.Duration) {
		logger.Warn("retrying provider call", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("delay", delay))
	}

	toolSet := []agent.Tool{tools.Weather{}, tools.Echo{}, tools.Calculator{}}

	opts := agent.DefaultOptions()
	if tokenLimit > 0 {
		opts.TokenLimit = tokenLimit
	} else {
		opts.TokenLimit = dispatcher.ContextWindowSize(opts.TokenLimit)
	}

	a, err := agent.New(dispatcher, defaultSystemPrompt, toolSet, opts, logger)
	if err != nil {
		return fmt.Errorf("constructing agent: %w", err)
	}
	a.AddUserMessage(prompt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Println("\ninterrupted, cancelling...")
		cancel()
	}()

	run := a.Run(ctx)
	for event := range run.Events() {
		printEvent(event)
	}

	answer, err := run.Wait()
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	fmt.Printf("\n=== answer ===\n%s\n", answer)
	return nil
}

func printEvent(e agent.Event) {
	switch e.Kind {
	case agent.EventThinking:
		fmt.Printf("[thinking] %s\n", e.Content)
	case agent.EventAssistantMessage:
		fmt.Printf("[assistant] %s\n", e.Content)
	case agent.EventToolCall:
		fmt.Printf("[tool_call] %s(%v)\n", e.ToolCall.Function.Name, e.ToolCall.Function.Arguments)
	case agent.EventToolResult:
		if e.ToolResult.Success {
			fmt.Printf("[tool_result] %s -> %s\n", e.ToolCall.Function.Name, e.ToolResult.Content)
		} else {
			fmt.Printf("[tool_result] %s -> error: %s\n", e.ToolCall.Function.Name, e.ToolResult.Error)
		}
	case agent.EventSummarized:
		fmt.Printf("[summarized] %d -> %d tokens\n", e.BeforeTokens, e.AfterTokens)
	case agent.EventCancelled:
		fmt.Println("[cancelled]")
	}
}
