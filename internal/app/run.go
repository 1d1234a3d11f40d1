package app

import (
	"context"
	"fmt"

	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/executor"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.PlanOnly {
		fmt.Fprint(a.outW, a.plan.Render(a.executables()))
		a.logger.Debug("Plan-only mode, no execution.")
		return nil
	}

	if len(a.plan.Steps) == 0 {
		a.logger.Warn("No rules found in plan, execution not required.")
		return nil
	}

	if err := a.runOnce(ctx); err != nil {
		return err
	}

	if a.config.Watch {
		return a.watch(ctx)
	}
	return nil
}

// runOnce drives a single pass of the executor over the plan.
func (a *App) runOnce(ctx context.Context) error {
	a.logger.Info("Starting generation run.", "steps", len(a.plan.Steps), "workers", a.config.WorkerCount)
	exec := executor.New(a.plan, a.executables(), a.config.WorkerCount)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Generation run finished.")
	return nil
}
