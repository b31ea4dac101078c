package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tribunal/core"
)

func TestLoopAgent_RespectsMaxIters(t *testing.T) {
	count := 0
	child := newFakeAgent("round", func(runCtx *core.RunContext) error {
		count++
		return nil
	})

	loop := NewLoopAgent("deliberation", child, WithMaxIters(4))

	_, err := runAgent(t, loop, newTestStore(), "go", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestLoopAgent_StopsOnEscalation(t *testing.T) {
	count := 0
	child := newFakeAgent("round", func(runCtx *core.RunContext) error {
		count++

		ev := core.NewMessageEvent(runCtx.RunID, "round", "another round")
		if count == 2 {
			ev = NewEscalationEvent(runCtx.RunID, "round", nil)
		}
		if err := runCtx.EmitEvent(ev); err != nil {
			return err
		}
		return runCtx.WaitForResume()
	})

	loop := NewLoopAgent("deliberation", child, WithMaxIters(10))

	events, err := runAgent(t, loop, newTestStore(), "go", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, events, 2)
	assert.True(t, events[1].IsEscalation())
}

func TestLoopAgent_EscalationFinishesCurrentIteration(t *testing.T) {
	var emitted []string
	child := newFakeAgent("round", func(runCtx *core.RunContext) error {
		for _, ev := range []core.Event{
			NewEscalationEvent(runCtx.RunID, "round", nil),
			core.NewMessageEvent(runCtx.RunID, "round", "closing remarks"),
		} {
			if err := runCtx.EmitEvent(ev); err != nil {
				return err
			}
			if err := runCtx.WaitForResume(); err != nil {
				return err
			}
			emitted = append(emitted, ev.Author)
		}
		return nil
	})

	loop := NewLoopAgent("deliberation", child, WithMaxIters(10))

	events, err := runAgent(t, loop, newTestStore(), "go", 0)
	require.NoError(t, err)

	// The child's trailing event still got through before the loop stopped
	require.Len(t, events, 2)
	assert.Equal(t, "closing remarks", events[1].Content.Text())
	assert.Len(t, emitted, 2)
}

func TestLoopAgent_ChildErrorStopsLoop(t *testing.T) {
	count := 0
	child := newFakeAgent("round", func(runCtx *core.RunContext) error {
		count++
		return errors.New("round failed")
	})

	loop := NewLoopAgent("deliberation", child, WithMaxIters(5))

	_, err := runAgent(t, loop, newTestStore(), "go", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loop iteration 1 failed for agent round")
	assert.Equal(t, 1, count)
}

func TestLoopAgent_ContinueOnError(t *testing.T) {
	count := 0
	child := newFakeAgent("round", func(runCtx *core.RunContext) error {
		count++
		return errors.New("round failed")
	})

	loop := NewLoopAgent("deliberation", child, WithMaxIters(3), WithContinueOnError())

	_, err := runAgent(t, loop, newTestStore(), "go", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNewEscalationEvent(t *testing.T) {
	content := &core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: "enough evidence"}}}
	ev := NewEscalationEvent("run-1", "judge", content)

	assert.True(t, ev.IsEscalation())
	assert.Equal(t, "judge", ev.Author)
	assert.Equal(t, "enough evidence", ev.Content.Text())
}
