package agent

import (
	"fmt"

	"github.com/hupe1980/tribunal/core"
)

// SequentialAgent coordinates the execution of multiple child agents in sequence.
//
// Each child runs against the same RunContext, so state written by one stage
// is visible to the stages after it. Execution stops at the first error.
//
// The tribunal pipeline itself is a SequentialAgent: reset, research,
// deliberation loop, report.
type SequentialAgent struct {
	BaseAgent              // Embedded base agent functionality
	children  []core.Agent // Child agents to execute in sequence
}

// NewSequentialAgent creates a new sequential execution coordinator.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	return &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
}

// Run implements core.Agent. It executes each child agent in the supplied
// context order; errors stop further processing immediately.
func (s *SequentialAgent) Run(runCtx *core.RunContext) error {
	for _, child := range s.children {
		runCtx.LogDebug("sequential.stage.start", "coordinator", s.Name(), "agent", child.Name())

		// Pass the same run context to maintain shared state
		if err := child.Run(runCtx); err != nil {
			return fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
	}

	return nil
}
