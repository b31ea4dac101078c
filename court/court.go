// Package court assembles the historical court pipeline: a sequential run of
// case reset, topic extraction, a bounded deliberation loop with two parallel
// investigation workers and a gating judge, and a final verdict report.
//
// The pipeline roles form a closed set. The clerk and the two investigation
// workers are model-backed; the resetter, judge and scribe core are
// deterministic so the trial's control flow never depends on generated text.
package court

import (
	"fmt"

	"github.com/hupe1980/tribunal/agent"
	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/model"
	"github.com/hupe1980/tribunal/tool"
)

// Default pipeline agent names.
const (
	PipelineName          = "historical_court_system"
	ResetterName          = "resetter"
	ClerkName             = "clerk"
	AdmirerName           = "admirer"
	CriticName            = "critic"
	InvestigationTeamName = "investigation_team"
	JudgeName             = "judge"
	TrialRoundName        = "trial_round"
	CourtTrialName        = "court_trial"
	ScribeName            = "verdict_scribe"
)

// DefaultMaxRounds bounds the deliberation loop. With two findings per side
// per round, a cooperative run reaches the evidence threshold in round two;
// the cap only matters when workers underdeliver.
const DefaultMaxRounds = 6

const clerkInstruction = `Extract ONLY the historical topic from user input.

Call:
set_case_field(field="topic", value="<topic_name>")

Do NOT output text.
Stop immediately.`

const admirerInstruction = `You are The Admirer.

Goal:
Collect POSITIVE achievements of {topic}.

SEARCH STRATEGY:
- Use wikipedia_lookup with queries such as:
  "{topic} achievements"
  "{topic} accomplishments"
  "{topic} positive impact"
  "{topic} scientific contributions"
- If this feedback from the judge is present, refine your search using it:
  {judge_feedback?}

RULES:
- Each round add ONLY 2 NEW distinct achievements.
- Avoid duplication.
- Write concise bullet-style sentences.
- Append EACH point using:
  append_case_data(field="pos_data", value="...")

Do not output explanation text.`

const criticInstruction = `You are The Critic.

Goal:
Collect NEGATIVE aspects or controversies of {topic}.

SEARCH STRATEGY:
- Use wikipedia_lookup with queries such as:
  "{topic} controversy"
  "{topic} criticism"
  "{topic} failure"
  "{topic} historical rivalry"
- If this feedback from the judge is present, refine your search using it:
  {judge_feedback?}

RULES:
- Each round add ONLY 2 NEW distinct criticisms.
- Avoid duplication.
- Write concise bullet-style sentences.
- Append EACH point using:
  append_case_data(field="neg_data", value="...")

Do not output explanation text.`

// Options configure a court pipeline.
type Options struct {
	// ReportsDir is where the verdict file ends up.
	ReportsDir string
	// MaxRounds caps the deliberation loop.
	MaxRounds int
	// LookupTool is the knowledge lookup handed to both investigation
	// workers. Defaults to the Wikipedia tool.
	LookupTool tool.Tool
	// SynthesizeWithModel routes the scribe's synthesis section through the
	// pipeline model instead of the deterministic summary.
	SynthesizeWithModel bool
}

// New composes the full historical court pipeline around a single shared
// model. The returned agent is the sequential root:
//
//	resetter -> clerk -> court_trial{ investigation_team || judge } -> verdict_scribe
func New(llm model.Model, optFns ...func(o *Options)) (core.Agent, error) {
	if llm == nil {
		return nil, fmt.Errorf("court: model must not be nil")
	}

	opts := Options{
		ReportsDir: "court_reports",
		MaxRounds:  DefaultMaxRounds,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRounds <= 0 {
		return nil, fmt.Errorf("court: max rounds must be positive, got %d", opts.MaxRounds)
	}

	lookup := opts.LookupTool
	if lookup == nil {
		lookup = tool.NewWikipediaTool()
	}

	resetter := NewResetAgent(ResetterName)

	clerk := agent.NewModelAgent(ClerkName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(clerkInstruction)
		o.Tools = []tool.Tool{tool.NewSetCaseFieldTool()}
	})

	admirer := agent.NewModelAgent(AdmirerName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(admirerInstruction)
		o.Tools = []tool.Tool{lookup, tool.NewAppendCaseDataTool()}
	})

	critic := agent.NewModelAgent(CriticName, llm, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(criticInstruction)
		o.Tools = []tool.Tool{lookup, tool.NewAppendCaseDataTool()}
	})

	investigationTeam := agent.NewParallelAgent(InvestigationTeamName, admirer, critic)

	judge := NewJudgeAgent(JudgeName)

	trialRound := agent.NewSequentialAgent(TrialRoundName, investigationTeam, judge)

	courtTrial := agent.NewLoopAgent(CourtTrialName, trialRound, agent.WithMaxIters(opts.MaxRounds))

	scribe := NewScribeAgent(ScribeName, func(o *ScribeAgentOptions) {
		o.ReportsDir = opts.ReportsDir
		if opts.SynthesizeWithModel {
			o.Synthesizer = llm
		}
	})

	root := agent.NewSequentialAgent(PipelineName, resetter, clerk, courtTrial, scribe)

	if err := root.SetSubAgents(resetter, clerk, courtTrial, scribe); err != nil {
		return nil, err
	}

	return root, nil
}
