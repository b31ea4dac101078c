package tool

import (
	"github.com/hupe1980/tribunal/core"
)

// NewExitLoopTool returns a tool that signals the enclosing loop agent to
// stop iterating. Calling it sets the escalate flag on the emitted event; the
// loop agent intercepts the flag and finishes its current iteration early.
//
// The judge calls this once both evidence thresholds are satisfied.
func NewExitLoopTool() *FunctionTool {
	return NewFunctionTool(
		"exit_loop",
		"End the deliberation loop. Call this only when the case is complete and no further rounds are needed.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			toolCtx.Escalate()

			return map[string]any{"status": "loop_exit_requested"}, nil
		},
	)
}
