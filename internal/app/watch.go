package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window for editors that fire several events per save.
const watchSettle = 200 * time.Millisecond

// watch blocks, re-running the plan whenever any rule input changes, until
// the context is canceled.
func (a *App) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directories holding inputs rather than the files themselves;
	// editors that rename-on-save would otherwise detach the watch.
	watched := make(map[string]struct{})
	inputs := make(map[string]struct{})
	for _, step := range a.plan.Steps {
		r := step.Rule
		input := r.Input
		if !filepath.IsAbs(input) {
			input = filepath.Join(r.SourceRoot, input)
		}
		inputs[filepath.Clean(input)] = struct{}{}

		dir := filepath.Dir(input)
		if _, ok := watched[dir]; !ok {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watched[dir] = struct{}{}
		}
	}
	a.logger.Info("Watching rule inputs for changes.", "dirs", len(watched), "inputs", len(inputs))

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, relevant := inputs[filepath.Clean(event.Name)]; !relevant {
				continue
			}
			a.logger.Debug("Input changed.", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchSettle)
			} else {
				timer.Reset(watchSettle)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if err := a.runOnce(ctx); err != nil {
				// A failed regeneration keeps the watch alive; the next edit
				// gets another chance.
				a.logger.Error("Regeneration failed.", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("File watcher error.", "error", err)
		}
	}
}
