package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/rule"
)

// executeNode runs one rule's generator command. Rules whose outputs are
// already newer than the declared input are skipped unless Force is set; the
// rule's declared dependency is the input file only, so a flag-only change
// does not force regeneration.
func (e *Executor) executeNode(ctx context.Context, node *Node) error {
	logger := ctxlog.FromContext(ctx).With("rule", node.ID)
	r := node.Rule

	exe, ok := e.executables[r.Kind]
	if !ok || exe == "" {
		return fmt.Errorf("no %s generator available for rule '%s'", r.Kind, r.Name)
	}

	if !e.Force && upToDate(r) {
		logger.Info("Outputs up to date, skipping generation.")
		return nil
	}

	argv := r.Command(exe)
	logger.Info("Running generator.", "command", argv, "dir", r.SourceRoot)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.SourceRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rule '%s': %s failed: %w\nstdout: %s\nstderr: %s",
			r.Name, r.Kind, err, stdout.String(), stderr.String())
	}

	if stderr.Len() > 0 {
		// flex and bison write warnings to stderr even on success.
		logger.Warn("Generator reported warnings.", "stderr", stderr.String())
	}
	logger.Debug("Generation succeeded.", "outputs", r.Outputs)
	return nil
}

// upToDate reports whether every declared output exists and is at least as
// new as the input. Any stat failure counts as stale.
func upToDate(r *rule.Rule) bool {
	inputInfo, err := os.Stat(resolve(r.SourceRoot, r.Input))
	if err != nil {
		return false
	}
	for _, out := range r.Outputs {
		outInfo, err := os.Stat(resolve(r.SourceRoot, out))
		if err != nil || outInfo.ModTime().Before(inputInfo.ModTime()) {
			return false
		}
	}
	return true
}

// resolve joins path onto root unless path is already absolute.
func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
