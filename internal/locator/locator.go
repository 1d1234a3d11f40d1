// Package locator discovers the generator executables on the host, probes
// each one's version banner, and validates optional minimum-version
// constraints. Discovery of a tool's optional runtime artifacts (library,
// header directory) rides along and is never an error.
package locator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/Masterminds/semver/v3"
	"github.com/vk/lexgen/internal/ctxlog"
)

// ErrToolNotFound is returned when no candidate executable could be resolved.
// Callers decide whether this is fatal based on whether the tool was required.
var ErrToolNotFound = errors.New("tool not found")

// Spec describes how a single generator tool should be located.
type Spec struct {
	// Name is the executable name searched on PATH, e.g. "flex".
	Name string

	// PathOverride, when non-empty, bypasses the PATH search entirely.
	PathOverride string

	// Required upgrades discovery and probe failures to hard errors.
	Required bool

	// MinVersion is an optional semver lower bound, e.g. "2.5.4".
	MinVersion string
}

// Tool is the immutable result of a successful discovery pass.
type Tool struct {
	Name    string
	Path    string
	Version string

	// Raw streams captured from the version probe, trailing whitespace stripped.
	ProbeStdout string
	ProbeStderr string

	// Optional companion artifacts. Empty when not found; never an error.
	RuntimeLibrary string
	IncludeDir     string
}

// Locate resolves the executable for spec, probes its version once, and
// validates the optional minimum-version constraint. A missing executable
// returns ErrToolNotFound regardless of spec.Required; the caller escalates.
func Locate(ctx context.Context, spec Spec) (*Tool, error) {
	logger := ctxlog.FromContext(ctx)

	path, err := resolvePath(spec)
	if err != nil {
		logger.Debug("Tool executable not resolved.", "tool", spec.Name, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, spec.Name)
	}
	logger.Debug("Tool executable resolved.", "tool", spec.Name, "path", path)

	tool := &Tool{Name: spec.Name, Path: path}

	stdout, stderr, probeErr := probeVersion(ctx, path)
	tool.ProbeStdout = stdout
	tool.ProbeStderr = stderr
	if probeErr != nil {
		// The version stays empty; severity is the caller's call. The raw
		// streams travel with the error so diagnostics stay verbatim.
		return tool, &ProbeError{Tool: spec.Name, Stdout: stdout, Stderr: stderr, Err: probeErr}
	}

	tool.Version = ParseVersionBanner(stdout, path)
	logger.Debug("Tool version probed.", "tool", spec.Name, "version", tool.Version)

	// Runtime discovery is never an error; it runs before the constraint
	// check so a tool kept despite a version warning still reports its
	// runtime artifacts.
	discoverRuntime(ctx, tool)

	if spec.MinVersion != "" {
		if err := checkMinVersion(tool, spec.MinVersion); err != nil {
			return tool, err
		}
	}
	return tool, nil
}

// resolvePath picks the executable path from the override or the PATH search.
func resolvePath(spec Spec) (string, error) {
	if spec.PathOverride != "" {
		return exec.LookPath(spec.PathOverride)
	}
	return exec.LookPath(spec.Name)
}

// checkMinVersion enforces the caller's lower bound. An unparsable or empty
// probed version cannot satisfy a constraint and is reported as such.
func checkMinVersion(tool *Tool, minVersion string) error {
	if tool.Version == "" {
		return fmt.Errorf("%s: version constraint >=%s given, but the version banner could not be parsed", tool.Name, minVersion)
	}

	constraint, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q for %s: %w", minVersion, tool.Name, err)
	}

	version, err := semver.NewVersion(tool.Version)
	if err != nil {
		return fmt.Errorf("%s reported unparsable version %q: %w", tool.Name, tool.Version, err)
	}

	if !constraint.Check(version) {
		return fmt.Errorf("%s version %s does not satisfy minimum %s", tool.Name, tool.Version, minVersion)
	}
	return nil
}

// ProbeError reports a version probe that exited non-zero. Both captured
// streams are carried verbatim for the diagnostic.
type ProbeError struct {
	Tool   string
	Stdout string
	Stderr string
	Err    error
}

// Error implements the error interface for ProbeError.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("version probe for %s failed: %v\nstdout: %s\nstderr: %s", e.Tool, e.Err, e.Stdout, e.Stderr)
}

// Unwrap exposes the underlying exec error for errors.Is/As.
func (e *ProbeError) Unwrap() error {
	return e.Err
}
