package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_PositionalManifestPath(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	config, shouldExit, err := Parse([]string{"rules.hcl"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "rules.hcl", config.ManifestPath)
	require.Equal(t, "text", config.LogFormat)
	require.Equal(t, 4, config.WorkerCount)
}

func TestParse_FlagsOverrideDefaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	config, shouldExit, err := Parse([]string{
		"-m", "rules",
		"--flex", "/opt/flex/bin/flex",
		"--min-flex-version", "2.5.4",
		"--require-flex",
		"--plan",
		"--workers", "8",
		"--log-format", "json",
		"--log-level", "debug",
	}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "rules", config.ManifestPath)
	require.Equal(t, "/opt/flex/bin/flex", config.FlexPath)
	require.Equal(t, "2.5.4", config.MinFlexVersion)
	require.True(t, config.RequireFlex)
	require.True(t, config.PlanOnly)
	require.Equal(t, 8, config.WorkerCount)
	require.Equal(t, "json", config.LogFormat)
	require.Equal(t, "debug", config.LogLevel)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	config, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Nil(t, config)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidLogFormat(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"--log-format", "xml", "rules.hcl"}, out)

	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	require.Equal(t, 2, exitErr.Code)
}

func TestParse_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, err := Parse([]string{"--log-level", "loud", "rules.hcl"}, out)

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log-level")
}
