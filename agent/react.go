package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultSystemPrompt = "You are a research agent. Break the question down, " +
	"use the available tools to gather evidence, and answer only once you have " +
	"enough to give a complete, sourced answer."

// maxObservationLen caps tool output fed back into the transcript so a single
// large page cannot blow the context window
const maxObservationLen = 20000

// eventBufferSize sets channel buffering for run events
const eventBufferSize = 64

// Options configures a ReactAgent
type Options struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	SystemPrompt string
}

// ReactAgent drives a reason-act loop against an OpenAI-compatible backend
// with tool calling. It implements Runner; each Run streams events on its own
// channel, so one agent serves concurrent runs.
type ReactAgent struct {
	client       *openai.Client
	openaiTools  []openai.Tool
	toolMap      map[string]Tool
	systemPrompt string
	logger       *zap.Logger
}

// NewReactAgent creates a ReactAgent with the given tool set
func NewReactAgent(opts Options, tools []Tool, logger *zap.Logger) *ReactAgent {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	openaiTools := make([]openai.Tool, 0, len(tools))
	toolMap := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		openaiTools = append(openaiTools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
		toolMap[tool.Name()] = tool
	}

	return &ReactAgent{
		client:       openai.NewClientWithConfig(cfg),
		openaiTools:  openaiTools,
		toolMap:      toolMap,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Run implements Runner
func (a *ReactAgent) Run(ctx context.Context, model, query string, maxIterations int) (<-chan Event, <-chan error) {
	events := make(chan Event, eventBufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		if err := a.run(ctx, model, query, maxIterations, events); err != nil {
			errs <- err
		}
	}()

	return events, errs
}

func (a *ReactAgent) run(ctx context.Context, model, query string, maxIterations int, events chan<- Event) error {
	runID := uuid.NewString()
	start := time.Now()

	a.logger.Debug("starting agent run",
		zap.String("run_id", runID),
		zap.String("model", model),
		zap.Int("max_iterations", maxIterations))

	events <- Event{Type: EventRunStart, Model: model}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: a.systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		events <- Event{Type: EventIteration, Model: model, Iterations: iteration}

		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			Tools:       a.openaiTools,
			Temperature: 0,
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("model %s returned no choices", model)
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg)

		// No tool calls means the model produced its final answer
		if len(msg.ToolCalls) == 0 {
			events <- Event{
				Type:       EventDone,
				Model:      model,
				Answer:     msg.Content,
				Iterations: iteration,
				TotalTime:  float64(time.Since(start).Milliseconds()),
			}
			a.logger.Debug("agent run finished",
				zap.String("run_id", runID),
				zap.Int("iterations", iteration))
			return nil
		}

		for _, tc := range msg.ToolCalls {
			observation := a.executeTool(ctx, runID, tc, events)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Function.Name,
				Content:    observation,
			})
		}
	}

	return fmt.Errorf("no final answer after %d iterations", maxIterations)
}

// executeTool runs one tool call, emitting tool_start and tool_end events.
// Tool failures become error observations for the model rather than run
// failures, so the loop can recover.
func (a *ReactAgent) executeTool(ctx context.Context, runID string, tc openai.ToolCall, events chan<- Event) string {
	name := tc.Function.Name
	args := decodeArgs(tc.Function.Arguments)

	events <- Event{Type: EventToolStart, Tool: name, Args: args}

	toolStart := time.Now()
	var observation string

	tool, ok := a.toolMap[name]
	if !ok {
		observation = fmt.Sprintf("Error: unknown tool %q", name)
	} else {
		result, err := tool.Call(ctx, tc.Function.Arguments)
		if err != nil {
			observation = "Error: " + err.Error()
		} else {
			observation = result
		}
	}

	duration := float64(time.Since(toolStart).Milliseconds())
	events <- Event{Type: EventToolEnd, Tool: name, Args: args, Duration: &duration}

	a.logger.Debug("tool executed",
		zap.String("run_id", runID),
		zap.String("tool", name),
		zap.Float64("duration_ms", duration))

	if len(observation) > maxObservationLen {
		observation = observation[:maxObservationLen] + "\n... (truncated)"
	}
	return observation
}

// decodeArgs parses the raw JSON argument string the model produced. Malformed
// arguments still surface in events under a raw key so the stream keeps the
// original payload.
func decodeArgs(raw string) map[string]any {
	args := make(map[string]any)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"raw": raw}
	}
	return args
}
