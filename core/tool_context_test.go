package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRunContext() *RunContext {
	emit := make(chan Event, 16)
	sess := NewSession("sess-1")

	return NewRunContext(
		context.Background(),
		"sess-1",
		"run-1",
		AgentInfo{Name: "tester", Type: "worker"},
		NewUserText("hello"),
		0,
		emit,
		nil,
		sess,
		nil,
		nil,
		nil,
	)
}

func TestToolContext_SetStateDualWrite(t *testing.T) {
	rc := testRunContext()
	tc := NewToolContext(rc, "fc1")

	tc.SetState("topic", "Ada Lovelace")

	v, ok := rc.GetState("topic")
	assert.True(t, ok)
	assert.Equal(t, "Ada Lovelace", v)

	assert.Equal(t, "Ada Lovelace", tc.Actions().StateDelta["topic"])
}

func TestToolContext_AppendStateRoundTrip(t *testing.T) {
	rc := testRunContext()
	tc := NewToolContext(rc, "fc1")

	n := tc.AppendState(StatePosData, "first finding")
	assert.Equal(t, 1, n)

	n = tc.AppendState(StatePosData, "second finding")
	assert.Equal(t, 2, n)

	v, _ := rc.GetState(StatePosData)
	seq := StateStrings(v)
	assert.Len(t, seq, 2)
	assert.Equal(t, "second finding", seq[len(seq)-1])
}

func TestToolContext_AppendStateCoercesScalar(t *testing.T) {
	rc := testRunContext()
	rc.SetState(StateNegData, "not a list")

	tc := NewToolContext(rc, "fc1")
	n := tc.AppendState(StateNegData, "only finding")

	// The prior scalar is silently discarded
	assert.Equal(t, 1, n)
	v, _ := rc.GetState(StateNegData)
	assert.Equal(t, []string{"only finding"}, StateStrings(v))
}

func TestToolContext_ResetCase(t *testing.T) {
	rc := testRunContext()
	rc.SetState(StateTopic, "Napoleon")
	rc.SetState(StatePosData, []string{"a", "b"})
	rc.SetState(StateJudgeFeedback, "more please")

	tc := NewToolContext(rc, "fc1")
	tc.ResetCase()

	topic, _ := rc.GetState(StateTopic)
	pos, _ := rc.GetState(StatePosData)
	neg, _ := rc.GetState(StateNegData)
	feedback, _ := rc.GetState(StateJudgeFeedback)

	assert.Equal(t, "", topic)
	assert.Equal(t, []string{}, pos)
	assert.Equal(t, []string{}, neg)
	assert.Equal(t, "", feedback)
}

func TestToolContext_EscalateAppliesToEvent(t *testing.T) {
	rc := testRunContext()
	tc := NewToolContext(rc, "fc1")

	tc.SetState("k", "v")
	tc.Escalate()

	ev := NewEvent("run-1", "judge")
	tc.InternalApplyActions(&ev)

	assert.True(t, ev.IsEscalation())
	assert.Equal(t, "v", ev.Actions.StateDelta["k"])
}

func TestRunContext_EmitEventMergesDelta(t *testing.T) {
	emit := make(chan Event, 1)
	sess := NewSession("sess-1")
	rc := NewRunContext(
		context.Background(), "sess-1", "run-1",
		AgentInfo{Name: "tester"}, NewUserText("hi"),
		0, emit, nil, sess, nil, nil, nil,
	)

	rc.SetState("topic", "Cleopatra")
	err := rc.EmitEvent(NewEvent("run-1", "tester"))
	assert.NoError(t, err)

	ev := <-emit
	assert.Equal(t, "Cleopatra", ev.Actions.StateDelta["topic"])
	// The pending delta is flushed on emit
	assert.Empty(t, rc.StateDelta)
}

func TestRunContext_CloneIsolatesDelta(t *testing.T) {
	rc := testRunContext()
	rc.SetState("a", 1)

	clone := rc.Clone()
	clone.SetState("b", 2)

	_, ok := rc.GetState("b")
	assert.False(t, ok)

	v, ok := clone.GetState("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestModelLimiter(t *testing.T) {
	ml := NewModelLimiter(2)

	assert.NoError(t, ml.Increment())
	assert.NoError(t, ml.Increment())
	assert.Error(t, ml.Increment())
	assert.Equal(t, 3, ml.Count())

	unlimited := NewModelLimiter(0)
	for i := 0; i < 10; i++ {
		assert.NoError(t, unlimited.Increment())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}
