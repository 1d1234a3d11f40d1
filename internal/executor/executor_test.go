package executor_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/executor"
	"github.com/vk/lexgen/internal/plan"
	"github.com/vk/lexgen/internal/rule"
	"github.com/vk/lexgen/internal/testutil"
)

// buildFixture registers a parser and a dependent scanner rooted in dir and
// returns the built plan.
func buildFixture(t *testing.T, ctx context.Context, dir string) *plan.Plan {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lexer.l"), []byte("%%\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grammar.y"), []byte("%%\n"), 0644))

	reg := rule.New()
	_, err := reg.Register(ctx, rule.Config{
		Name: "grammar", Kind: rule.KindParser, Input: "grammar.y", Output: "grammar.cpp",
		DefinesFile: "grammar.h", SourceRoot: dir,
	})
	require.NoError(t, err)
	_, err = reg.Register(ctx, rule.Config{
		Name: "lexer", Kind: rule.KindScanner, Input: "lexer.l", Output: "lexer.cpp",
		SourceRoot: dir,
	})
	require.NoError(t, err)
	require.NoError(t, reg.AddParserDependency(ctx, "lexer", "grammar"))

	p, err := plan.Build(ctx, reg)
	require.NoError(t, err)
	return p
}

func testContext(t *testing.T) (context.Context, *testutil.SafeBuffer) {
	t.Helper()
	buf := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

func TestRun_GeneratesAllOutputs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	ctx, _ := testContext(t)
	p := buildFixture(t, ctx, dir)

	flex := testutil.WriteFakeGenerator(t, dir, "fake-flex")
	bison := testutil.WriteFakeGenerator(t, dir, "fake-bison")

	// --- Act ---
	exec := executor.New(p, map[rule.Kind]string{
		rule.KindScanner: flex,
		rule.KindParser:  bison,
	}, 4)
	err := exec.Run(ctx)

	// --- Assert ---
	require.NoError(t, err)
	for _, out := range []string{"lexer.cpp", "grammar.cpp", "grammar.h"} {
		require.FileExists(t, filepath.Join(dir, out))
	}
}

func TestRun_FailureSkipsDependentsAndCarriesStderr(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The parser fails, so the dependent scanner must be skipped and the
	// run error must surface the parser's stderr, not the skip symptom.
	dir := t.TempDir()
	ctx, buf := testContext(t)
	p := buildFixture(t, ctx, dir)

	flex := testutil.WriteFakeGenerator(t, dir, "fake-flex")
	badBison := testutil.WriteFakeTool(t, dir, "fake-bison", `echo "grammar.y:3: syntax error" >&2
exit 1`)

	// --- Act ---
	exec := executor.New(p, map[rule.Kind]string{
		rule.KindScanner: flex,
		rule.KindParser:  badBison,
	}, 4)
	err := exec.Run(ctx)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "generation failed for grammar")
	require.Contains(t, err.Error(), "grammar.y:3: syntax error")
	require.Contains(t, buf.String(), "Skipping dependent rule")
	require.NoFileExists(t, filepath.Join(dir, "lexer.cpp"))
}

func TestRun_SecondPassSkipsUpToDateRules(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	ctx, _ := testContext(t)
	p := buildFixture(t, ctx, dir)

	tools := map[rule.Kind]string{
		rule.KindScanner: testutil.WriteFakeGenerator(t, dir, "fake-flex"),
		rule.KindParser:  testutil.WriteFakeGenerator(t, dir, "fake-bison"),
	}
	require.NoError(t, executor.New(p, tools, 2).Run(ctx))

	// --- Act ---
	ctx2, buf := testContext(t)
	require.NoError(t, executor.New(p, tools, 2).Run(ctx2))

	// --- Assert ---
	require.Contains(t, buf.String(), "Outputs up to date, skipping generation.")
}

func TestRun_ForceRegeneratesUpToDateRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, _ := testContext(t)
	p := buildFixture(t, ctx, dir)

	tools := map[rule.Kind]string{
		rule.KindScanner: testutil.WriteFakeGenerator(t, dir, "fake-flex"),
		rule.KindParser:  testutil.WriteFakeGenerator(t, dir, "fake-bison"),
	}
	require.NoError(t, executor.New(p, tools, 2).Run(ctx))

	ctx2, buf := testContext(t)
	forced := executor.New(p, tools, 2)
	forced.Force = true
	require.NoError(t, forced.Run(ctx2))

	require.NotContains(t, buf.String(), "Outputs up to date")
}

func TestRun_MissingGeneratorFailsExecution(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx, _ := testContext(t)
	p := buildFixture(t, ctx, dir)

	// Only the scanner generator is available; the parser rule must fail.
	exec := executor.New(p, map[rule.Kind]string{
		rule.KindScanner: testutil.WriteFakeGenerator(t, dir, "fake-flex"),
	}, 2)
	err := exec.Run(ctx)

	require.Error(t, err)
	require.Contains(t, err.Error(), "no parser generator available")
}
