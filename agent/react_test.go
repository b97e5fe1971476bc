package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// echoTool records its invocations and returns a fixed observation
type echoTool struct {
	calls []string
}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "Echo the input back." }
func (e *echoTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}
}

func (e *echoTool) Call(ctx context.Context, input string) (string, error) {
	e.calls = append(e.calls, input)
	return "echoed", nil
}

// failingTool always errors
type failingTool struct{}

func (failingTool) Name() string               { return "broken" }
func (failingTool) Description() string        { return "Always fails." }
func (failingTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (failingTool) Call(context.Context, string) (string, error) {
	return "", fmt.Errorf("tool exploded")
}

// chatResponse builds an OpenAI chat completion response body
func chatResponse(content string, toolCalls ...map[string]any) map[string]any {
	message := map[string]any{"role": "assistant", "content": content}
	if len(toolCalls) > 0 {
		message["tool_calls"] = toolCalls
	}
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"choices": []map[string]any{{"index": 0, "message": message, "finish_reason": "stop"}},
	}
}

func toolCall(id, name, args string) map[string]any {
	return map[string]any{
		"id":   id,
		"type": "function",
		"function": map[string]any{
			"name":      name,
			"arguments": args,
		},
	}
}

// newScriptedBackend serves one canned response per request, in order
func newScriptedBackend(t *testing.T, responses ...any) *httptest.Server {
	t.Helper()
	var call int
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Less(t, call, len(responses), "backend called more times than scripted")
		resp := responses[call]
		call++

		if status, ok := resp.(int); ok {
			http.Error(w, "backend unavailable", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestAgent(backend *httptest.Server, tools ...Tool) *ReactAgent {
	return NewReactAgent(Options{
		APIKey:  "test-key",
		BaseURL: backend.URL,
		Timeout: 5 * time.Second,
	}, tools, zap.NewNop())
}

// collect drains a run to completion
func collect(events <-chan Event, errs <-chan error) ([]Event, error) {
	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	select {
	case err := <-errs:
		return got, err
	default:
		return got, nil
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestReactAgentRun(t *testing.T) {
	ctx := context.Background()

	t.Run("tool call then final answer", func(t *testing.T) {
		backend := newScriptedBackend(t,
			chatResponse("", toolCall("call_1", "echo", `{"text":"hi"}`)),
			chatResponse("final answer"),
		)
		defer backend.Close()

		tool := &echoTool{}
		a := newTestAgent(backend, tool)

		events, errs := a.Run(ctx, "test-model", "say hi", 5)
		got, err := collect(events, errs)
		require.NoError(t, err)

		assert.Equal(t, []EventType{
			EventRunStart, EventIteration, EventToolStart, EventToolEnd, EventIteration, EventDone,
		}, eventTypes(got))

		toolEnd := got[3]
		assert.Equal(t, "echo", toolEnd.Tool)
		assert.Equal(t, map[string]any{"text": "hi"}, toolEnd.Args)
		require.NotNil(t, toolEnd.Duration)
		assert.GreaterOrEqual(t, *toolEnd.Duration, 0.0)

		done := got[len(got)-1]
		assert.Equal(t, "final answer", done.Answer)
		assert.Equal(t, 2, done.Iterations)
		assert.GreaterOrEqual(t, done.TotalTime, 0.0)

		assert.Equal(t, []string{`{"text":"hi"}`}, tool.calls)
	})

	t.Run("direct answer without tools", func(t *testing.T) {
		backend := newScriptedBackend(t, chatResponse("42"))
		defer backend.Close()

		a := newTestAgent(backend, &echoTool{})

		events, errs := a.Run(ctx, "test-model", "meaning of life", 5)
		got, err := collect(events, errs)
		require.NoError(t, err)

		done := got[len(got)-1]
		assert.Equal(t, EventDone, done.Type)
		assert.Equal(t, "42", done.Answer)
		assert.Equal(t, 1, done.Iterations)
	})

	t.Run("backend failure delivers error after channel close", func(t *testing.T) {
		backend := newScriptedBackend(t, http.StatusInternalServerError)
		defer backend.Close()

		a := newTestAgent(backend, &echoTool{})

		events, errs := a.Run(ctx, "test-model", "q", 5)
		got, err := collect(events, errs)
		require.Error(t, err)

		for _, ev := range got {
			assert.NotEqual(t, EventDone, ev.Type)
		}
	})

	t.Run("tool failure becomes observation, run continues", func(t *testing.T) {
		backend := newScriptedBackend(t,
			chatResponse("", toolCall("call_1", "broken", `{}`)),
			chatResponse("recovered"),
		)
		defer backend.Close()

		a := newTestAgent(backend, failingTool{})

		events, errs := a.Run(ctx, "test-model", "q", 5)
		got, err := collect(events, errs)
		require.NoError(t, err)

		done := got[len(got)-1]
		assert.Equal(t, "recovered", done.Answer)
	})

	t.Run("unknown tool becomes observation, run continues", func(t *testing.T) {
		backend := newScriptedBackend(t,
			chatResponse("", toolCall("call_1", "nonexistent", `{}`)),
			chatResponse("still fine"),
		)
		defer backend.Close()

		a := newTestAgent(backend, &echoTool{})

		events, errs := a.Run(ctx, "test-model", "q", 5)
		got, err := collect(events, errs)
		require.NoError(t, err)
		assert.Equal(t, "still fine", got[len(got)-1].Answer)
	})

	t.Run("iteration budget exhausted is an error, not done", func(t *testing.T) {
		backend := newScriptedBackend(t,
			chatResponse("", toolCall("call_1", "echo", `{"text":"a"}`)),
			chatResponse("", toolCall("call_2", "echo", `{"text":"b"}`)),
		)
		defer backend.Close()

		a := newTestAgent(backend, &echoTool{})

		events, errs := a.Run(ctx, "test-model", "q", 2)
		got, err := collect(events, errs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no final answer after 2 iterations")

		for _, ev := range got {
			assert.NotEqual(t, EventDone, ev.Type)
		}
	})
}

func TestDecodeArgs(t *testing.T) {
	t.Run("valid json", func(t *testing.T) {
		assert.Equal(t, map[string]any{"url": "https://go.dev"}, decodeArgs(`{"url":"https://go.dev"}`))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, map[string]any{}, decodeArgs(""))
	})

	t.Run("malformed json preserved under raw key", func(t *testing.T) {
		assert.Equal(t, map[string]any{"raw": "{broken"}, decodeArgs("{broken"))
	})
}
