// Package orchestrator executes one user turn against the two model
// backends and owns the retry and circuit-breaker policy around them.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/gammazero/toposort"
)

// Stage is one backend call within a turn. DependsOn lists stages whose
// output this stage consumes; execution order is derived from these
// edges, so the data dependency between the reasoning draft and the
// conversational call is enforced structurally.
type Stage struct {
	ID        string
	DependsOn []string
	Run       func(ctx context.Context) error
}

// Pipeline is an ordered sequence of stages. Stages run strictly
// sequentially; there is no speculative or parallel execution.
type Pipeline struct {
	stages map[string]*Stage
	order  []string
}

// NewPipeline validates the stage graph and computes the execution
// order via topological sort. Duplicate IDs, unknown dependencies, and
// cycles are construction errors.
func NewPipeline(stages ...*Stage) (*Pipeline, error) {
	byID := make(map[string]*Stage, len(stages))
	for _, s := range stages {
		if _, exists := byID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate stage ID %q", s.ID)
		}
		byID[s.ID] = s
	}

	for id, s := range byID {
		for _, dep := range s.DependsOn {
			if _, exists := byID[dep]; !exists {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", id, dep)
			}
		}
	}

	var edges []toposort.Edge
	for id, s := range byID {
		if len(s.DependsOn) == 0 {
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, dep := range s.DependsOn {
			edges = append(edges, toposort.Edge{dep, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("stage graph contains cycle: %w", err)
	}

	order := make([]string, 0, len(byID))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	if len(order) != len(byID) {
		return nil, fmt.Errorf("topological sort lost stages: got %d of %d", len(order), len(byID))
	}

	return &Pipeline{stages: byID, order: order}, nil
}

// Order returns the computed execution order.
func (p *Pipeline) Order() []string {
	return append([]string(nil), p.order...)
}

// Execute runs the stages in order, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context) error {
	for _, id := range p.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.stages[id].Run(ctx); err != nil {
			return fmt.Errorf("stage %q: %w", id, err)
		}
	}
	return nil
}
