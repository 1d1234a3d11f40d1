// Package plan orders registered generation rules into an executable plan.
//
// A rule depends on another when one of its extra compile-order inputs is the
// other rule's generated header. The plan is a deterministic topological
// order over those edges; a cycle is a hard configuration error.
package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/lexgen/internal/ctxlog"
	"github.com/vk/lexgen/internal/rule"
)

// Step is one rule together with the names of the rules it must run after.
type Step struct {
	Rule *rule.Rule
	Deps []string
}

// Plan is the ordered list of steps. Order is topological and deterministic:
// ties are broken by rule name.
type Plan struct {
	Steps []*Step
}

// Build derives the plan from the registry's rules and their recorded
// dependency edges.
func Build(ctx context.Context, reg *rule.Registry) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	rules := reg.Rules()

	deps := make(map[string][]string, len(rules))
	dependents := make(map[string][]string, len(rules))
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		seen[r.Name] = struct{}{}
	}
	for _, r := range rules {
		// Edges carry the producer's name directly; header paths are not
		// unique across source roots and must never be used to re-derive
		// the producer.
		for _, dep := range r.DependsOn {
			if _, ok := seen[dep]; !ok {
				return nil, fmt.Errorf("rule '%s' depends on '%s' which is not registered", r.Name, dep)
			}
			if dep == r.Name {
				return nil, fmt.Errorf("rule '%s' depends on itself", r.Name)
			}
			deps[r.Name] = append(deps[r.Name], dep)
			dependents[dep] = append(dependents[dep], r.Name)
		}
	}

	// Kahn's algorithm with a sorted ready set for deterministic output.
	indegree := make(map[string]int, len(rules))
	byName := make(map[string]*rule.Rule, len(rules))
	for _, r := range rules {
		indegree[r.Name] = len(deps[r.Name])
		byName[r.Name] = r
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	p := &Plan{}
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]

		depNames := append([]string(nil), deps[name]...)
		sort.Strings(depNames)
		p.Steps = append(p.Steps, &Step{Rule: byName[name], Deps: depNames})

		var unlocked []string
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				unlocked = append(unlocked, dep)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}

	if len(p.Steps) != len(rules) {
		var stuck []string
		for name, n := range indegree {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("dependency cycle among rules: %s", strings.Join(stuck, ", "))
	}

	logger.Debug("Plan built.", "steps", len(p.Steps))
	return p, nil
}

// Render formats each step's resolved command, one per line, using the
// executable registered for that step's kind.
func (p *Plan) Render(executables map[rule.Kind]string) string {
	var b strings.Builder
	for _, step := range p.Steps {
		exe := executables[step.Rule.Kind]
		if exe == "" {
			exe = "<" + string(step.Rule.Kind) + " generator not found>"
		}
		fmt.Fprintf(&b, "%s: %s\n", step.Rule.Name, strings.Join(step.Rule.Command(exe), " "))
	}
	return b.String()
}
