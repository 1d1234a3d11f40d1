// Package executor runs a generation plan concurrently.
//
// Each plan step becomes a node; a worker pool drains the ready set, running
// nodes whose dependencies have completed. A failed node cancels the run and
// marks its dependents as skipped; the first real failure is reported as the
// root cause.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/plan"
	"github.com/vk/lexgen/internal/rule"
)

// Node states.
const (
	statePending int32 = iota
	stateRunning
	stateDone
	stateFailed
)

// Node is one schedulable generation step.
type Node struct {
	ID         string
	Rule       *rule.Rule
	Deps       []*Node
	Dependents []*Node

	depCount atomic.Int32
	state    atomic.Int32
	skipOnce sync.Once
	err      error
}

// Executor drives a plan to completion with a fixed-size worker pool.
type Executor struct {
	nodes       map[string]*Node
	executables map[rule.Kind]string
	numWorkers  int

	// Force disables the up-to-date check so every rule regenerates.
	Force bool

	wg sync.WaitGroup
}

// New builds an executor for the given plan. executables maps each rule kind
// to the discovered generator path; a step whose kind has no executable fails
// at execution time, not here.
func New(p *plan.Plan, executables map[rule.Kind]string, numWorkers int) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	e := &Executor{
		nodes:       make(map[string]*Node, len(p.Steps)),
		executables: executables,
		numWorkers:  numWorkers,
	}

	for _, step := range p.Steps {
		e.nodes[step.Rule.Name] = &Node{ID: step.Rule.Name, Rule: step.Rule}
	}
	for _, step := range p.Steps {
		node := e.nodes[step.Rule.Name]
		for _, depName := range step.Deps {
			dep := e.nodes[depName]
			node.Deps = append(node.Deps, dep)
			dep.Dependents = append(dep.Dependents, node)
		}
		node.depCount.Store(int32(len(node.Deps)))
	}
	return e
}

// Run executes all nodes and returns an error if any failed. It respects
// cancellation from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *Node, len(e.nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rootNodeCount := 0
	for _, node := range e.nodes {
		if node.depCount.Load() == 0 {
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Executor initialized.", "nodes", len(e.nodes), "roots", rootNodeCount, "workers", e.numWorkers)

	e.wg.Add(len(e.nodes))
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	var failedNodes []string
	var rootCauseError error
	for _, node := range e.nodes {
		if node.state.Load() == stateFailed {
			logger.Error("Generation step failed.", "rule", node.ID, "error", node.err)
			if node.err != nil && !strings.HasPrefix(node.err.Error(), "skipped") && !errors.Is(node.err, context.Canceled) {
				failedNodes = append(failedNodes, node.ID)
				if rootCauseError == nil {
					rootCauseError = node.err
				}
			}
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("generation failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "rule", node.ID)

		if ctx.Err() != nil {
			node.skipOnce.Do(func() {
				node.state.Store(stateFailed)
				node.err = ctx.Err()
				e.wg.Done()
			})
			continue
		}

		workerLogger.Debug("Worker picked up rule.")
		node.state.Store(stateRunning)

		err := e.executeNode(ctx, node)
		if err != nil {
			workerLogger.Error("Rule execution failed.", "error", err)
			node.state.Store(stateFailed)
			node.err = err
			cancel()
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		node.state.Store(stateDone)
		for _, dependent := range node.Dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent rule.", "dependent", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
}

// skipDependents recursively marks all downstream nodes as failed.
func (e *Executor) skipDependents(ctx context.Context, node *Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping dependent rule due to upstream failure.", "rule", dependent.ID, "dependency", node.ID)
			dependent.state.Store(stateFailed)
			dependent.err = fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}
