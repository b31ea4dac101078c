package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tribunal/core"
)

func newStateRunContext(state map[string]any) *core.RunContext {
	emit := make(chan core.Event, 16)
	runCtx := core.NewRunContext(
		context.Background(), "sess-1", "run-1",
		core.AgentInfo{Name: "tester"}, core.NewUserText("hi"),
		0, emit, nil, core.NewSession("sess-1"), nil, nil, nil,
	)
	for k, v := range state {
		runCtx.SetState(k, v)
	}
	return runCtx
}

func TestInstruction_Static(t *testing.T) {
	instr := NewInstructionFromText("You extract the topic.")
	assert.True(t, instr.IsStatic())

	text, err := instr.Resolve(newStateRunContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "You extract the topic.", text)
}

func TestInstruction_PlaceholderSubstitution(t *testing.T) {
	instr := NewInstructionFromText("Investigate the achievements of {topic}.")

	text, err := instr.Resolve(newStateRunContext(map[string]any{"topic": "Ada Lovelace"}))
	require.NoError(t, err)
	assert.Equal(t, "Investigate the achievements of Ada Lovelace.", text)
}

func TestInstruction_MissingRequiredKey(t *testing.T) {
	instr := NewInstructionFromText("Investigate {topic}.")

	_, err := instr.Resolve(newStateRunContext(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic")
}

func TestInstruction_OptionalKeyResolvesEmpty(t *testing.T) {
	instr := NewInstructionFromText("Guidance so far: {judge_feedback?}")

	text, err := instr.Resolve(newStateRunContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "Guidance so far: ", text)
}

func TestInstruction_ListRendering(t *testing.T) {
	instr := NewInstructionFromText("Evidence:\n{pos_data}")

	text, err := instr.Resolve(newStateRunContext(map[string]any{
		"pos_data": []string{"first finding", "second finding"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Evidence:\nfirst finding\nsecond finding", text)
}

func TestInstruction_Provider(t *testing.T) {
	instr := NewInstructionFromFunc(func(runCtx *core.RunContext) (string, error) {
		return "Consider {topic}.", nil
	})
	assert.False(t, instr.IsStatic())

	text, err := instr.Resolve(newStateRunContext(map[string]any{"topic": "Cleopatra"}))
	require.NoError(t, err)
	assert.Equal(t, "Consider Cleopatra.", text)
}
