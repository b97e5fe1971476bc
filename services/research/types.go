package research

// ToolCallRecord captures one completed tool invocation observed during a run
type ToolCallRecord struct {
	Tool     string         `json:"tool"`
	Args     map[string]any `json:"args"`
	Duration *float64       `json:"duration,omitempty"` // milliseconds
}

// RunResult is the reduced outcome of one successful agent run. It is built
// only from a run that emitted a terminal done event and is immutable once
// returned.
type RunResult struct {
	Answer     string           `json:"answer"`
	ToolCalls  []ToolCallRecord `json:"toolCalls"`
	Iterations int              `json:"iterations"`
	TotalTime  float64          `json:"totalTime"` // milliseconds
	Model      string           `json:"model"`
}

// Request carries one research query into the service
type Request struct {
	Query         string
	Model         string // optional per-request override
	MaxIterations int    // 0 means use the configured default
}
