package agent

import "context"

// EventType identifies the kind of a run event
type EventType string

const (
	// EventRunStart marks the beginning of a run
	EventRunStart EventType = "run_start"
	// EventIteration marks the beginning of one reasoning iteration
	EventIteration EventType = "iteration"
	// EventToolStart marks the beginning of a tool invocation
	EventToolStart EventType = "tool_start"
	// EventToolEnd marks a completed tool invocation
	EventToolEnd EventType = "tool_end"
	// EventDone is the terminal success event carrying the final answer.
	// A run that ends without emitting it did not succeed.
	EventDone EventType = "done"
)

// Event is one element of a run's event stream. Fields are populated per
// type: Tool/Args/Duration for tool events, Answer/Iterations/TotalTime for
// the terminal done event. Consumers must ignore types they do not know.
type Event struct {
	Type       EventType      `json:"type"`
	Model      string         `json:"model,omitempty"`
	Tool       string         `json:"tool,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	Duration   *float64       `json:"duration,omitempty"` // milliseconds
	Answer     string         `json:"answer,omitempty"`
	Iterations int            `json:"iterations,omitempty"`
	TotalTime  float64        `json:"totalTime,omitempty"` // milliseconds
}

// Runner starts agent runs. Run returns a single-pass, in-order event
// channel that is closed when the run ends, and a 1-buffered error channel.
// A run either emits a terminal done event or delivers exactly one error;
// the error is buffered before the event channel closes, so a consumer that
// drains events to completion can then poll the error channel without racing.
type Runner interface {
	Run(ctx context.Context, model, query string, maxIterations int) (<-chan Event, <-chan error)
}

// Tool is a capability the agent can invoke during a run. Call receives the
// raw JSON argument string produced by the model and returns an observation
// for the transcript.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, input string) (string, error)
}
