package research

import (
	"fmt"
	"strings"
)

// AttemptFailure records one failed model attempt
type AttemptFailure struct {
	Model   string `json:"model"`
	Message string `json:"message"`
}

// AllModelsFailedError reports that every model in the chain failed, carrying
// the failures in attempt order
type AllModelsFailedError struct {
	Failures []AttemptFailure
}

// Error implements the error interface
func (e *AllModelsFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Model, f.Message))
	}
	return "All models failed. " + strings.Join(parts, " | ")
}
