package agent

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tribunal/core"
)

// ParallelAgent coordinates the concurrent execution of multiple child agents.
//
// Each child agent receives a cloned context with its own branch label and
// isolated pending delta buffers, so concurrent children never share a write
// path. All children are joined before Run returns; the first error (if any)
// is reported after every child has finished or been cancelled.
//
// The advocate and opponent workers of a deliberation round run under a
// ParallelAgent.
type ParallelAgent struct {
	BaseAgent              // Embedded base agent functionality
	children  []core.Agent // Child agents to execute in parallel
}

// NewParallelAgent creates a new parallel execution coordinator.
func NewParallelAgent(name string, children ...core.Agent) *ParallelAgent {
	return &ParallelAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
}

// buildBranchPath joins the parent branch with a child suffix.
func buildBranchPath(parent, suffix string) string {
	if parent == "" {
		return suffix
	}
	return strings.Join([]string{parent, suffix}, ".")
}

// branchCtxForSubAgent clones the parent context and assigns a branch path for
// the child agent ensuring isolation of pending deltas / artifacts.
func (p *ParallelAgent) branchCtxForSubAgent(runCtx *core.RunContext, subAgent core.Agent) *core.RunContext {
	clonedCtx := runCtx.Clone()
	branchSuffix := fmt.Sprintf("%s.%s", p.Name(), subAgent.Name())
	clonedCtx.Branch = buildBranchPath(runCtx.Branch, branchSuffix)

	return clonedCtx
}

// Run implements core.Agent launching all children concurrently. The group is
// always joined: Run returns only after every child goroutine has completed.
// The first error cancels the remaining children via the derived context.
func (p *ParallelAgent) Run(runCtx *core.RunContext) error {
	g, ctx := errgroup.WithContext(runCtx.Context)

	for _, child := range p.children {
		child := child
		branchCtx := p.branchCtxForSubAgent(runCtx, child)
		branchCtx.Context = ctx

		g.Go(func() error {
			if err := child.Run(branchCtx); err != nil {
				return fmt.Errorf("parallel execution failed for agent %s: %w", child.Name(), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return nil
}
