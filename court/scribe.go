package court

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tribunal/agent"
	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/model"
	"github.com/hupe1980/tribunal/tool"
)

// ReportFilename derives the deterministic verdict filename for a topic.
func ReportFilename(topic string) string {
	return topic + "_verdict.txt"
}

// ScribeAgentOptions configure a ScribeAgent.
type ScribeAgentOptions struct {
	// ReportsDir is the directory the verdict file is written into.
	ReportsDir string
	// Synthesizer optionally generates the closing synthesis section. When
	// nil a deterministic summary is produced instead.
	Synthesizer model.Model
}

// ScribeAgent writes the final verdict report.
//
// The achievements and controversies sections are assembled mechanically from
// the evidence lists, so every bullet in the report traces back to an entry a
// worker appended. Only the closing synthesis involves language generation,
// and that concern is isolated behind an optional model so it can be mocked
// or omitted entirely.
type ScribeAgent struct {
	agent.BaseAgent
	reportsDir  string
	synthesizer model.Model
	writeFile   *tool.FunctionTool
}

// NewScribeAgent constructs the report writer for a tribunal.
func NewScribeAgent(name string, optFns ...func(o *ScribeAgentOptions)) *ScribeAgent {
	opts := ScribeAgentOptions{
		ReportsDir: "court_reports",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ScribeAgent{
		BaseAgent:   agent.NewBaseAgent(name),
		reportsDir:  opts.ReportsDir,
		synthesizer: opts.Synthesizer,
		writeFile: tool.NewWriteFileTool(func(o *tool.WriteFileOptions) {
			o.Dir = opts.ReportsDir
		}),
	}
	a.SetDescription("Compiles the gathered evidence into a written verdict report.")

	return a
}

// ReportsDir returns the directory verdict files are written into.
func (s *ScribeAgent) ReportsDir() string { return s.reportsDir }

// Run implements core.Agent. It reads the final case state, composes the
// three report sections and persists the verdict file through the write_file
// tool. Whatever evidence exists at loop exit is used, even below threshold.
func (s *ScribeAgent) Run(runCtx *core.RunContext) error {
	if runCtx.SessionStore != nil {
		if err := runCtx.RefreshSession(); err != nil {
			return fmt.Errorf("scribe %s: refresh session: %w", s.Name(), err)
		}
	}

	topicVal, _ := runCtx.GetState(core.StateTopic)
	topic, _ := topicVal.(string)
	if topic == "" {
		return fmt.Errorf("scribe %s: no topic on case record", s.Name())
	}

	posVal, _ := runCtx.GetState(core.StatePosData)
	negVal, _ := runCtx.GetState(core.StateNegData)
	posData := core.StateStrings(posVal)
	negData := core.StateStrings(negVal)

	synthesis, err := s.synthesize(runCtx, topic, posData, negData)
	if err != nil {
		return err
	}

	report := composeReport(topic, posData, negData, synthesis)

	toolCtx := core.NewToolContext(runCtx, core.NewID())
	result, err := s.writeFile.Call(toolCtx, map[string]any{
		"filename": ReportFilename(topic),
		"content":  report,
	})
	if err != nil {
		return fmt.Errorf("scribe %s: write verdict: %w", s.Name(), err)
	}

	runCtx.LogInfo("scribe.report.written", "scribe", s.Name(), "topic", topic, "result", fmt.Sprintf("%v", result))

	ev := core.NewMessageEvent(runCtx.RunID, s.Name(), report)
	ev.TurnComplete = boolPtr(true)
	toolCtx.InternalApplyActions(&ev)

	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}

// synthesize produces the closing synthesis section, via the configured model
// when present and a deterministic summary otherwise.
func (s *ScribeAgent) synthesize(runCtx *core.RunContext, topic string, posData, negData []string) (string, error) {
	if s.synthesizer == nil {
		return fmt.Sprintf(
			"Weighing %d recorded achievements against %d recorded criticisms, the legacy of %s "+
				"resists a one-sided reading. The evidence above supports both admiration and reservation, "+
				"and a balanced judgement must hold the two in view together.",
			len(posData), len(negData), topic,
		), nil
	}

	if runCtx.Limiter != nil {
		if err := runCtx.Limiter.Increment(); err != nil {
			return "", fmt.Errorf("scribe %s: %w", s.Name(), err)
		}
	}

	prompt := fmt.Sprintf(
		"Write a short, neutral, analytical synthesis paragraph about %s.\n\nAchievements:\n%s\n\nCriticisms:\n%s\n\n"+
			"Balance both sides without taking a position. Output only the paragraph.",
		topic, strings.Join(posData, "\n"), strings.Join(negData, "\n"),
	)

	req := model.Request{
		Instructions: "You are a neutral academic scribe. Respond with plain text only.",
		Contents:     []core.Content{core.NewUserText(prompt)},
	}

	respCh, errCh := s.synthesizer.Generate(runCtx.Context, req)

	var text string
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				text = resp.Content.Text()
			}
		case genErr, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if genErr != nil {
				return "", fmt.Errorf("scribe %s: synthesis failed: %w", s.Name(), genErr)
			}
		case <-runCtx.Done():
			return "", runCtx.Err()
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("scribe %s: synthesis produced no text", s.Name())
	}

	return text, nil
}

// composeReport renders the three fixed report sections in order.
func composeReport(topic string, posData, negData []string, synthesis string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Verdict Report: %s\n\n", topic)

	b.WriteString("1) Achievements\n")
	writeBullets(&b, posData)

	b.WriteString("\n2) Controversies and Criticisms\n")
	writeBullets(&b, negData)

	b.WriteString("\n3) Balanced Synthesis\n")
	b.WriteString(synthesis)
	b.WriteString("\n")

	return b.String()
}

// writeBullets renders one bullet line per finding.
func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- (no findings recorded)\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// boolPtr creates a pointer to a boolean value.
func boolPtr(v bool) *bool { return &v }
