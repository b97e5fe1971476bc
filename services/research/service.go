package research

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/research-gateway/agent"
	"github.com/upb/research-gateway/config"
	"github.com/upb/research-gateway/services"
	"go.uber.org/zap"
)

// Service orchestrates research runs: it builds the model chain for a
// request and drives one agent run per model until one succeeds
type Service struct {
	cfg    config.ResearchConfig
	runner agent.Runner
	logger *zap.Logger
}

// NewService creates a research service
func NewService(cfg config.ResearchConfig, runner agent.Runner, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		runner: runner,
		logger: logger,
	}
}

// Research answers one query, falling back across the configured model chain
func (s *Service) Research(ctx context.Context, req Request) (*RunResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, services.ErrEmptyQuery
	}

	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.cfg.MaxIterations
	}

	chain := BuildChain(req.Model, s.cfg.DefaultModel, s.cfg.FallbackModels)
	return s.RunWithFallback(ctx, req.Query, chain, maxIterations)
}

// RunWithFallback iterates the chain strictly in order, one sequential agent
// run per model. It returns the first successful RunResult; a failed attempt
// is recorded and the next model tried, never the same model twice. When the
// chain is exhausted it returns an AllModelsFailedError carrying every
// failure in attempt order.
func (s *Service) RunWithFallback(ctx context.Context, query string, chain []string, maxIterations int) (*RunResult, error) {
	failures := make([]AttemptFailure, 0, len(chain))

	for _, model := range chain {
		runID := uuid.NewString()
		s.logger.Info("starting model attempt",
			zap.String("run_id", runID),
			zap.String("model", model))

		result, err := s.runAttempt(ctx, model, query, maxIterations)
		if err != nil {
			s.logger.Warn("model attempt failed",
				zap.String("run_id", runID),
				zap.String("model", model),
				zap.Error(err))
			failures = append(failures, AttemptFailure{Model: model, Message: err.Error()})
			continue
		}

		s.logger.Info("model attempt succeeded",
			zap.String("run_id", runID),
			zap.String("model", model),
			zap.Int("iterations", result.Iterations),
			zap.Int("tool_calls", len(result.ToolCalls)),
			zap.Float64("total_time_ms", result.TotalTime))
		return result, nil
	}

	return nil, &AllModelsFailedError{Failures: failures}
}

// runAttempt drives one agent run and reduces its event stream to a
// RunResult. The stream is consumed exactly once, to the end: tool_end
// events accumulate ToolCallRecords in arrival order, the terminal done
// event captures answer, iteration count and elapsed time, and every other
// event type is ignored. A stream that ends without done, or that delivers
// an error, fails the attempt.
func (s *Service) runAttempt(ctx context.Context, model, query string, maxIterations int) (*RunResult, error) {
	events, errs := s.runner.Run(ctx, model, query, maxIterations)

	toolCalls := make([]ToolCallRecord, 0)
	var result *RunResult

	for ev := range events {
		switch ev.Type {
		case agent.EventToolEnd:
			toolCalls = append(toolCalls, ToolCallRecord{
				Tool:     ev.Tool,
				Args:     ev.Args,
				Duration: ev.Duration,
			})
		case agent.EventDone:
			result = &RunResult{
				Answer:     ev.Answer,
				Iterations: ev.Iterations,
				TotalTime:  ev.TotalTime,
				Model:      model,
			}
		}
	}

	if result == nil {
		select {
		case err := <-errs:
			if err != nil {
				return nil, err
			}
		default:
		}
		return nil, errors.New("run ended without a final answer")
	}

	result.ToolCalls = toolCalls
	return result, nil
}
