package app

import (
	"go.uber.org/zap"

	"github.com/upb/research-gateway/agent"
	"github.com/upb/research-gateway/config"
	"github.com/upb/research-gateway/handlers"
	"github.com/upb/research-gateway/services/research"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection: the agent runner, the research
// service on top of it, and the handlers the router mounts.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Runner          agent.Runner
	ResearchService *research.Service

	ResearchHandler *handlers.ResearchHandler
	HealthHandler   *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(cfg *config.Config, logger *zap.Logger) *Dependencies {
	runner := agent.NewReactAgent(agent.Options{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	}, agent.DefaultTools(), logger)

	researchService := research.NewService(cfg.Research, runner, logger)

	deps := &Dependencies{
		Config:          cfg,
		Logger:          logger,
		Runner:          runner,
		ResearchService: researchService,
		ResearchHandler: handlers.NewResearchHandler(researchService, logger),
		HealthHandler:   handlers.NewHealthHandler(cfg.Research, logger),
	}

	logger.Info("all dependencies initialized",
		zap.String("default_model", cfg.Research.DefaultModel),
		zap.String("fallback_models", cfg.Research.FallbackModels))
	return deps
}
