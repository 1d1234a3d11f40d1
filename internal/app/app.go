package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/locator"
	"github.com/vk/lexgen/internal/manifest"
	"github.com/vk/lexgen/internal/plan"
	"github.com/vk/lexgen/internal/rule"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *rule.Registry
	plan     *plan.Plan
	tools    map[rule.Kind]*locator.Tool
}

// NewApp is the constructor for the main application. It locates the
// generator tools, loads all manifests, registers every rule, and builds the
// plan. Fatal startup errors panic; the caller recovers and reports them.
func NewApp(outW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: rule.New(),
		tools:    make(map[rule.Kind]*locator.Tool),
	}

	a.locateTools(ctx)

	loader := manifest.NewLoader(manifest.BuildEvalContext(a.tools[rule.KindScanner], a.tools[rule.KindParser]))
	model, err := loader.Load(ctx, appConfig.ManifestPath)
	if err != nil {
		panic(fmt.Errorf("failed to load manifests: %w", err))
	}
	logger.Debug("Manifests loaded.", "rules", len(model.Rules), "edges", len(model.Edges))

	for _, cfg := range model.Rules {
		if _, err := a.registry.Register(ctx, cfg); err != nil {
			panic(fmt.Errorf("rule registration failed: %w", err))
		}
	}
	for _, edge := range model.Edges {
		if err := a.registry.AddParserDependency(ctx, edge.Scanner, edge.Parser); err != nil {
			panic(fmt.Errorf("dependency registration failed: %w", err))
		}
	}

	a.plan, err = plan.Build(ctx, a.registry)
	if err != nil {
		panic(fmt.Errorf("failed to build generation plan: %w", err))
	}
	logger.Debug("Generation plan built.", "steps", len(a.plan.Steps))

	return a
}

// locateTools discovers flex and bison. A missing or probe-failing tool is a
// warning unless the configuration declared it required, in which case it is
// a fatal startup error.
func (a *App) locateTools(ctx context.Context) {
	specs := []struct {
		kind rule.Kind
		spec locator.Spec
	}{
		{rule.KindScanner, locator.Spec{
			Name:         "flex",
			PathOverride: a.config.FlexPath,
			Required:     a.config.RequireFlex,
			MinVersion:   a.config.MinFlexVersion,
		}},
		{rule.KindParser, locator.Spec{
			Name:         "bison",
			PathOverride: a.config.BisonPath,
			Required:     a.config.RequireBison,
			MinVersion:   a.config.MinBisonVersion,
		}},
	}

	for _, s := range specs {
		tool, err := locator.Locate(ctx, s.spec)
		switch {
		case err == nil:
			a.logger.Info("Generator located.", "tool", tool.Name, "path", tool.Path, "version", tool.Version)
			a.tools[s.kind] = tool
		case s.spec.Required:
			panic(fmt.Errorf("required tool %s unavailable: %w", s.spec.Name, err))
		case errors.Is(err, locator.ErrToolNotFound):
			a.logger.Warn("Generator not found; dependent rules will fail if executed.", "tool", s.spec.Name)
		default:
			// Probe or constraint failure on an optional tool: keep whatever
			// was discovered (path, raw streams) and carry on.
			a.logger.Warn("Generator probe failed.", "tool", s.spec.Name, "error", err)
			if tool != nil {
				a.tools[s.kind] = tool
			}
		}
	}
}

// Registry returns the application's rule registry. This is primarily for testing.
func (a *App) Registry() *rule.Registry {
	return a.registry
}

// Plan returns the built generation plan. This is primarily for testing.
func (a *App) Plan() *plan.Plan {
	return a.plan
}

// Tool returns the discovered tool for a rule kind, or nil when unavailable.
func (a *App) Tool(kind rule.Kind) *locator.Tool {
	return a.tools[kind]
}

// executables maps each rule kind to its discovered executable path.
func (a *App) executables() map[rule.Kind]string {
	out := make(map[rule.Kind]string, len(a.tools))
	for kind, tool := range a.tools {
		out[kind] = tool.Path
	}
	return out
}
