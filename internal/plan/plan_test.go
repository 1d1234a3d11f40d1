package plan_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/lexgen/internal/plan"
	"github.com/vk/lexgen/internal/rule"
)

func stepNames(p *plan.Plan) []string {
	names := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		names = append(names, s.Rule.Name)
	}
	return names
}

func TestBuild_ParserOrderedBeforeDependentScanner(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	reg := rule.New()
	ctx := context.Background()
	_, err := reg.Register(ctx, rule.Config{
		Name: "lexer", Kind: rule.KindScanner, Input: "lexer.l", Output: "lexer.cpp",
	})
	require.NoError(t, err)
	_, err = reg.Register(ctx, rule.Config{
		Name: "grammar", Kind: rule.KindParser, Input: "grammar.y", Output: "grammar.cpp", DefinesFile: "grammar.h",
	})
	require.NoError(t, err)
	require.NoError(t, reg.AddParserDependency(ctx, "lexer", "grammar"))

	// --- Act ---
	p, err := plan.Build(ctx, reg)

	// --- Assert ---
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"grammar", "lexer"}, stepNames(p)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"grammar"}, p.Steps[1].Deps)
}

func TestBuild_DependencyKeptWhenParsersShareHeaderFilename(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Two parsers in different source roots both emit grammar.h. The edge
	// must stay bound to the declared parser, not whichever parser emits a
	// matching header filename.
	reg := rule.New()
	ctx := context.Background()
	_, err := reg.Register(ctx, rule.Config{
		Name: "frontend", Kind: rule.KindParser, Input: "grammar.y", Output: "grammar.cpp",
		DefinesFile: "grammar.h", SourceRoot: "/src/frontend",
	})
	require.NoError(t, err)
	_, err = reg.Register(ctx, rule.Config{
		Name: "lexer", Kind: rule.KindScanner, Input: "lexer.l", Output: "lexer.cpp",
		SourceRoot: "/src/frontend",
	})
	require.NoError(t, err)
	require.NoError(t, reg.AddParserDependency(ctx, "lexer", "frontend"))
	_, err = reg.Register(ctx, rule.Config{
		Name: "backend", Kind: rule.KindParser, Input: "grammar.y", Output: "grammar.cpp",
		DefinesFile: "grammar.h", SourceRoot: "/src/backend",
	})
	require.NoError(t, err)

	// --- Act ---
	p, err := plan.Build(ctx, reg)

	// --- Assert ---
	require.NoError(t, err)
	for _, s := range p.Steps {
		if s.Rule.Name == "lexer" {
			require.Equal(t, []string{"frontend"}, s.Deps)
			return
		}
	}
	t.Fatal("lexer step missing from plan")
}

func TestBuild_DependencyOnUnregisteredRule(t *testing.T) {
	t.Parallel()

	reg := rule.New()
	ctx := context.Background()
	r, err := reg.Register(ctx, rule.Config{
		Name: "lexer", Kind: rule.KindScanner, Input: "lexer.l", Output: "lexer.cpp",
	})
	require.NoError(t, err)
	r.DependsOn = append(r.DependsOn, "ghost")

	_, err = plan.Build(ctx, reg)

	require.Error(t, err)
	require.Contains(t, err.Error(), "'ghost' which is not registered")
}

func TestBuild_IndependentRulesOrderedByName(t *testing.T) {
	t.Parallel()

	reg := rule.New()
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := reg.Register(ctx, rule.Config{
			Name: name, Kind: rule.KindScanner, Input: name + ".l", Output: name + ".cpp",
		})
		require.NoError(t, err)
	}

	p, err := plan.Build(ctx, reg)

	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mid", "zeta"}, stepNames(p))
}

func TestBuild_EmptyRegistry(t *testing.T) {
	t.Parallel()

	p, err := plan.Build(context.Background(), rule.New())
	require.NoError(t, err)
	require.Empty(t, p.Steps)
}

func TestRender_CommandsPerStep(t *testing.T) {
	t.Parallel()

	reg := rule.New()
	ctx := context.Background()
	_, err := reg.Register(ctx, rule.Config{
		Name: "lexer", Kind: rule.KindScanner, Input: "lexer.l", Output: "lexer.cpp",
		CompileFlags: "-Cem", DefinesFile: "lexer.h",
	})
	require.NoError(t, err)

	p, err := plan.Build(ctx, reg)
	require.NoError(t, err)

	rendered := p.Render(map[rule.Kind]string{rule.KindScanner: "/usr/bin/flex"})
	require.Equal(t, "lexer: /usr/bin/flex -Cem --header-file=lexer.h -olexer.cpp lexer.l\n", rendered)
}

func TestRender_MissingExecutableIsVisible(t *testing.T) {
	t.Parallel()

	reg := rule.New()
	ctx := context.Background()
	_, err := reg.Register(ctx, rule.Config{
		Name: "lexer", Kind: rule.KindScanner, Input: "lexer.l", Output: "lexer.cpp",
	})
	require.NoError(t, err)

	p, err := plan.Build(ctx, reg)
	require.NoError(t, err)

	rendered := p.Render(map[rule.Kind]string{})
	require.Contains(t, rendered, "<scanner generator not found>")
}
