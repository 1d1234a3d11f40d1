package locator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Not parallel: runtimePrefixes is a package-level variable and gets swapped
// for the duration of the test.
func TestLocate_RuntimeDiscoverySurvivesVersionConstraintFailure(t *testing.T) {
	// --- Arrange ---
	prefix := t.TempDir()
	libPath := filepath.Join(prefix, "lib", "libfl.a")
	require.NoError(t, os.MkdirAll(filepath.Dir(libPath), 0755))
	require.NoError(t, os.WriteFile(libPath, []byte("!<arch>\n"), 0644))
	headerDir := filepath.Join(prefix, "include")
	require.NoError(t, os.MkdirAll(headerDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(headerDir, "FlexLexer.h"), []byte("// FlexLexer\n"), 0644))

	savedPrefixes := runtimePrefixes
	runtimePrefixes = []string{prefix}
	defer func() { runtimePrefixes = savedPrefixes }()

	toolDir := t.TempDir()
	exePath := filepath.Join(toolDir, "flex")
	require.NoError(t, os.WriteFile(exePath, []byte("#!/bin/sh\necho \"flex 2.5.4\"\n"), 0755))

	// --- Act ---
	tool, err := Locate(context.Background(), Spec{
		Name:         "flex",
		PathOverride: exePath,
		MinVersion:   "2.6.0",
	})

	// --- Assert ---
	// The constraint fails, but a caller that keeps the tool anyway still
	// sees the runtime artifacts.
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not satisfy minimum 2.6.0")
	require.NotNil(t, tool)
	require.Equal(t, libPath, tool.RuntimeLibrary)
	require.Equal(t, headerDir, tool.IncludeDir)
}
