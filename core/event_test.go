package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventConstructors(t *testing.T) {
	ev := NewMessageEvent("run-1", "scribe", "verdict ready")
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, "assistant", ev.Content.Role)
	assert.Equal(t, "verdict ready", ev.Content.Text())
	assert.False(t, ev.IsPartial())
	assert.False(t, ev.IsEscalation())
	assert.True(t, ev.IsFinalResponse())
}

func TestEvent_FunctionCallRoundTrip(t *testing.T) {
	callEv := NewFunctionCallEvent("run-1", "advocate", "append_case_data", `{"field":"pos_data"}`)

	calls := callEv.GetFunctionCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "append_case_data", calls[0].Name)
	assert.False(t, callEv.IsFinalResponse())

	respEv := NewFunctionResponseEvent("run-1", "advocate", "call-1", "append_case_data", map[string]any{"length": 1}, nil)

	responses := respEv.GetFunctionResponses()
	assert.Len(t, responses, 1)
	assert.Equal(t, "call-1", responses[0].ID)
	assert.Empty(t, responses[0].Error)
	assert.Equal(t, "tool", respEv.Content.Role)
	assert.False(t, respEv.IsFinalResponse())

	failed := NewFunctionResponseEvent("run-1", "advocate", "call-2", "append_case_data", nil, assert.AnError)
	assert.Equal(t, assert.AnError.Error(), failed.GetFunctionResponses()[0].Error)
}

func TestEvent_EscalationAndPartialFlags(t *testing.T) {
	ev := NewEvent("run-1", "judge")
	assert.False(t, ev.IsEscalation())

	escalate := true
	ev.Actions.Escalate = &escalate
	assert.True(t, ev.IsEscalation())

	partial := true
	msg := NewMessageEvent("run-1", "clerk", "frag")
	msg.Partial = &partial
	assert.True(t, msg.IsPartial())
	assert.False(t, msg.IsFinalResponse())
}
