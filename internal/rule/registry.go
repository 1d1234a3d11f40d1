package rule

import (
	"context"
	"fmt"

	"github.com/kballard/go-shellquote"
	"github.com/vk/lexgen/internal/ctxlog"
)

// Config carries the caller-supplied attributes for one registration.
// CompileFlags and DefinesFile are optional; everything else is required.
type Config struct {
	Name         string
	Kind         Kind
	Input        string
	Output       string
	CompileFlags string
	DefinesFile  string
	SourceRoot   string
}

// Registry owns all generation rules for a single application instance.
// It replaces ambient name-scoped state with an explicit caller-owned mapping.
type Registry struct {
	rules map[string]*Rule
	order []string
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Register validates cfg, resolves its flag list, and stores the resulting
// rule under cfg.Name. Any malformed configuration is a hard error; nothing
// is stored on failure.
func (reg *Registry) Register(ctx context.Context, cfg Config) (*Rule, error) {
	logger := ctxlog.FromContext(ctx)

	if cfg.Name == "" || cfg.Input == "" || cfg.Output == "" {
		return nil, fmt.Errorf("%s rule requires a name, an input, and an output (got name=%q input=%q output=%q)",
			kindOrDefault(cfg.Kind), cfg.Name, cfg.Input, cfg.Output)
	}
	if cfg.Kind != KindScanner && cfg.Kind != KindParser {
		return nil, fmt.Errorf("rule '%s': unknown kind %q", cfg.Name, cfg.Kind)
	}
	if _, exists := reg.rules[cfg.Name]; exists {
		return nil, fmt.Errorf("rule '%s' is already registered; rule names are write-once", cfg.Name)
	}

	flags, err := shellquote.Split(cfg.CompileFlags)
	if err != nil {
		return nil, fmt.Errorf("rule '%s': malformed compile_flags %q: %w", cfg.Name, cfg.CompileFlags, err)
	}

	outputs := []string{cfg.Output}
	headerPath := ""
	if cfg.DefinesFile != "" {
		outputs = append(outputs, cfg.DefinesFile)
		// The header-emission flag is appended after all caller flags so a
		// caller-supplied header flag is never silently overridden.
		flags = append(flags, cfg.Kind.headerFlag(cfg.DefinesFile))
		headerPath = cfg.DefinesFile
	}

	r := &Rule{
		Name:       cfg.Name,
		Kind:       cfg.Kind,
		Input:      cfg.Input,
		Output:     cfg.Output,
		Outputs:    outputs,
		Flags:      flags,
		HeaderPath: headerPath,
		SourceRoot: cfg.SourceRoot,
		Defined:    true,
	}

	reg.rules[cfg.Name] = r
	reg.order = append(reg.order, cfg.Name)
	logger.Debug("Generation rule registered.", "name", r.Name, "kind", r.Kind, "input", r.Input, "outputs", r.Outputs)
	return r, nil
}

// Get retrieves a rule by name.
func (reg *Registry) Get(name string) (*Rule, bool) {
	r, ok := reg.rules[name]
	return r, ok
}

// Rules returns all rules in registration order.
func (reg *Registry) Rules() []*Rule {
	out := make([]*Rule, 0, len(reg.order))
	for _, name := range reg.order {
		out = append(out, reg.rules[name])
	}
	return out
}

// Len returns the number of registered rules.
func (reg *Registry) Len() int {
	return len(reg.rules)
}

// AddParserDependency records that scannerName's generated source also depends
// on parserName's generated header, so regeneration of that header reorders
// work on the scanner side. Both rules must already be registered and the
// parser rule must actually emit a header.
func (reg *Registry) AddParserDependency(ctx context.Context, scannerName, parserName string) error {
	logger := ctxlog.FromContext(ctx)

	scanner, ok := reg.rules[scannerName]
	if !ok {
		return fmt.Errorf("scanner rule '%s' is not registered; register it before declaring a parser dependency", scannerName)
	}
	parser, ok := reg.rules[parserName]
	if !ok {
		return fmt.Errorf("parser rule '%s' is not registered; register it before declaring a parser dependency", parserName)
	}
	if parser.HeaderPath == "" {
		return fmt.Errorf("parser rule '%s' does not declare a defines_file; it has no header for '%s' to depend on", parserName, scannerName)
	}

	scanner.ExtraInputs = append(scanner.ExtraInputs, parser.HeaderPath)
	scanner.DependsOn = append(scanner.DependsOn, parser.Name)
	logger.Debug("Parser dependency attached.", "scanner", scannerName, "parser", parserName, "header", parser.HeaderPath)
	return nil
}

func kindOrDefault(k Kind) Kind {
	if k == "" {
		return "generation"
	}
	return k
}
