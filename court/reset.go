package court

import (
	"github.com/hupe1980/tribunal/agent"
	"github.com/hupe1980/tribunal/core"
)

// ResetAgent clears the case record before a trial begins.
//
// Resetting is purely mechanical, so no model is involved: the agent stages
// the full reset delta and emits a single event carrying it.
type ResetAgent struct {
	agent.BaseAgent
}

// NewResetAgent constructs the case resetter for a tribunal.
func NewResetAgent(name string) *ResetAgent {
	a := &ResetAgent{BaseAgent: agent.NewBaseAgent(name)}
	a.SetDescription("Clears the case record so a fresh trial can begin.")
	return a
}

// Run implements core.Agent.
func (r *ResetAgent) Run(runCtx *core.RunContext) error {
	runCtx.ApplyStateDelta(core.CaseResetDelta())

	runCtx.LogInfo("case.reset", "agent", r.Name())

	if err := runCtx.EmitEvent(core.NewEvent(runCtx.RunID, r.Name())); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}
