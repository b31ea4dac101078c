package court

import (
	"fmt"

	"github.com/hupe1980/tribunal/agent"
	"github.com/hupe1980/tribunal/core"
)

// EvidenceThreshold is the minimum number of findings each side must present
// before the judge closes the trial.
const EvidenceThreshold = 4

// Ruling is the judge's decision rule as a pure function of the evidence
// counts. The negative side is checked first, so when both sides are short
// the feedback mentions only the negative shortfall. Done is true exactly
// when both sides have reached the threshold; feedback is empty in that case.
func Ruling(posCount, negCount int) (feedback string, done bool) {
	if negCount < EvidenceThreshold {
		return fmt.Sprintf(
			"Found only %d points. Please find MORE specific controversies or failed projects.",
			negCount,
		), false
	}

	if posCount < EvidenceThreshold {
		return fmt.Sprintf(
			"Found only %d points. Please find MORE diverse achievements in science, art, or engineering.",
			posCount,
		), false
	}

	return "", true
}

// JudgeAgent evaluates the evidence gathered in a trial round and either
// requests more findings or closes the deliberation loop.
//
// The decision itself is the deterministic Ruling function over the two
// evidence counts; the agent only reads state, applies the ruling and emits
// the matching event. When the trial is complete it raises the escalation
// signal that terminates the enclosing loop.
type JudgeAgent struct {
	agent.BaseAgent
}

// NewJudgeAgent constructs the adjudicator for a tribunal.
func NewJudgeAgent(name string) *JudgeAgent {
	a := &JudgeAgent{BaseAgent: agent.NewBaseAgent(name)}
	a.SetDescription("Reviews both evidence lists and decides whether the trial can close.")
	return a
}

// Run implements core.Agent.
func (j *JudgeAgent) Run(runCtx *core.RunContext) error {
	// The workers' appends land in the session store; re-read it so the
	// ruling sees this round's evidence.
	if runCtx.SessionStore != nil {
		if err := runCtx.RefreshSession(); err != nil {
			return fmt.Errorf("judge %s: refresh session: %w", j.Name(), err)
		}
	}

	posVal, _ := runCtx.GetState(core.StatePosData)
	negVal, _ := runCtx.GetState(core.StateNegData)

	posCount := len(core.StateStrings(posVal))
	negCount := len(core.StateStrings(negVal))

	feedback, done := Ruling(posCount, negCount)

	runCtx.LogInfo(
		"judge.ruling",
		"judge", j.Name(),
		"pos_count", posCount,
		"neg_count", negCount,
		"done", done,
	)

	var ev core.Event
	if done {
		ev = agent.NewEscalationEvent(runCtx.RunID, j.Name(), nil)
	} else {
		runCtx.SetState(core.StateJudgeFeedback, feedback)
		ev = core.NewEvent(runCtx.RunID, j.Name())
	}

	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}
