package tribunal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tribunal/config"
	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/court"
	"github.com/hupe1980/tribunal/model"
	"github.com/hupe1980/tribunal/tool"
)

// scriptedModel plays all three model-backed roles of a trial. Each role
// alternates a tool-calling turn with a closing text turn; the first call can
// fail once to exercise the retry wrapper.
type scriptedModel struct {
	topic     string
	failFirst bool

	mu    sync.Mutex
	calls map[string]int
}

func newScriptedModel(topic string) *scriptedModel {
	return &scriptedModel{topic: topic, calls: make(map[string]int)}
}

func (m *scriptedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	respCh := make(chan model.Response, 4)
	errCh := make(chan error, 1)

	var role string
	switch {
	case strings.Contains(req.Instructions, "Extract ONLY the historical topic"):
		role = "clerk"
	case strings.Contains(req.Instructions, "The Admirer"):
		role = "admirer"
	case strings.Contains(req.Instructions, "The Critic"):
		role = "critic"
	}

	m.mu.Lock()
	m.calls[role]++
	call := m.calls[role]
	fail := m.failFirst && role == "clerk" && call == 1
	if fail {
		m.calls[role]--
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if fail {
			errCh <- fmt.Errorf("transient provider error")
			return
		}

		respCh <- m.respond(role, call)
	}()

	return respCh, errCh
}

func (m *scriptedModel) respond(role string, call int) model.Response {
	toolTurn := call%2 == 1
	round := (call + 1) / 2

	calls := func(parts ...core.Part) model.Response {
		return model.Response{
			Content:      core.Content{Role: "assistant", Parts: parts},
			FinishReason: "tool_calls",
		}
	}
	text := func(s string) model.Response {
		return model.Response{
			Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: s}}},
			FinishReason: "stop",
		}
	}
	appendPart := func(n int, field, value string) core.Part {
		return core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        fmt.Sprintf("%s-%d-%d", role, round, n),
			Name:      "append_case_data",
			Arguments: fmt.Sprintf(`{"field":%q,"value":%q}`, field, value),
		}}
	}

	switch role {
	case "clerk":
		if call == 1 {
			return calls(core.FunctionCallPart{FunctionCall: core.FunctionCall{
				ID:        "clerk-1",
				Name:      "set_case_field",
				Arguments: fmt.Sprintf(`{"field":"topic","value":%q}`, m.topic),
			}})
		}
		return text("Topic recorded.")

	case "admirer":
		if toolTurn {
			return calls(
				appendPart(1, "pos_data", fmt.Sprintf("achievement %d-1", round)),
				appendPart(2, "pos_data", fmt.Sprintf("achievement %d-2", round)),
			)
		}
		return text("Recorded achievements.")

	case "critic":
		if toolTurn {
			return calls(
				appendPart(1, "neg_data", fmt.Sprintf("criticism %d-1", round)),
				appendPart(2, "neg_data", fmt.Sprintf("criticism %d-2", round)),
			)
		}
		return text("Recorded criticisms.")

	default:
		return text("Nothing to do.")
	}
}

func (m *scriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "mock", SupportsTools: true}
}

func noopLookup() tool.Tool {
	return tool.NewFunctionTool(
		"wikipedia_lookup", "Stubbed lookup",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return map[string]any{"found": false}, nil
		},
	)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "unknown"

	_, err := New(cfg)
	require.Error(t, err)
}

func TestBuildModel_PerProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = config.ProviderAnthropic
	cfg.Model = "claude-3-5-haiku-latest"
	cfg.APIKey = "test-key"

	m, err := buildModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-haiku-latest", m.Info().Name)
	assert.Equal(t, "anthropic", m.Info().Provider)

	cfg.Provider = config.ProviderOpenAI
	cfg.Model = "gpt-4o"

	m, err = buildModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", m.Info().Name)
	assert.Equal(t, "openai", m.Info().Provider)

	cfg.Provider = "unknown"
	_, err = buildModel(cfg)
	require.Error(t, err)
}

func TestNew_ConfigAccessor(t *testing.T) {
	cfg := config.Default()
	cfg.ReportsDir = t.TempDir()

	trib, err := New(cfg, func(o *Options) {
		o.Model = newScriptedModel("x")
		o.LookupTool = noopLookup()
	})
	require.NoError(t, err)
	assert.Equal(t, cfg.ReportsDir, trib.Config().ReportsDir)
	assert.NotNil(t, trib.Runner())
}

func TestTrySync_FullTrial(t *testing.T) {
	cfg := config.Default()
	cfg.ReportsDir = t.TempDir()
	cfg.RetryBackoff = time.Millisecond

	llm := newScriptedModel("Leonardo da Vinci")
	llm.failFirst = true // one transient failure, absorbed by the retry policy

	trib, err := New(cfg, func(o *Options) {
		o.Model = llm
		o.LookupTool = noopLookup()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runID, events, err := trib.TrySync(ctx, "sess-1", "Put Leonardo da Vinci on trial")
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.NotEmpty(t, events)

	verdictPath := filepath.Join(cfg.ReportsDir, court.ReportFilename("Leonardo da Vinci"))
	data, err := os.ReadFile(verdictPath)
	require.NoError(t, err)

	report := string(data)
	assert.Contains(t, report, "Verdict Report: Leonardo da Vinci")
	assert.Contains(t, report, "- achievement 2-2")
	assert.Contains(t, report, "- criticism 1-1")

	sess, err := trib.Runner().SessionStore().Get("sess-1")
	require.NoError(t, err)
	topic, _ := sess.GetState(core.StateTopic)
	assert.Equal(t, "Leonardo da Vinci", topic)

	// The verdict is also mirrored into the artifact store
	stored, err := trib.Runner().ArtifactStore().Get("sess-1", court.ReportFilename("Leonardo da Vinci"))
	require.NoError(t, err)
	assert.Equal(t, report, string(stored))
}
