package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tribunal/agent"
	"github.com/hupe1980/tribunal/core"
)

// stubAgent runs a plain function as the pipeline root.
type stubAgent struct {
	agent.BaseAgent
	run func(runCtx *core.RunContext) error
}

func newStubAgent(name string, run func(runCtx *core.RunContext) error) *stubAgent {
	return &stubAgent{BaseAgent: agent.NewBaseAgent(name), run: run}
}

func (s *stubAgent) Run(runCtx *core.RunContext) error { return s.run(runCtx) }

func drain(t *testing.T, eventsCh <-chan core.Event, errsCh <-chan error) ([]core.Event, []error) {
	t.Helper()

	var (
		events []core.Event
		errs   []error
	)

	for eventsCh != nil || errsCh != nil {
		select {
		case ev, ok := <-eventsCh:
			if !ok {
				eventsCh = nil
				continue
			}
			events = append(events, ev)
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			errs = append(errs, err)
		case <-time.After(10 * time.Second):
			t.Fatal("run did not finish")
		}
	}

	return events, errs
}

func TestRunner_StreamsEventsAndPersistsState(t *testing.T) {
	root := newStubAgent("root", func(runCtx *core.RunContext) error {
		runCtx.SetState("topic", "Hypatia")
		if err := runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, "root", "working")); err != nil {
			return err
		}
		if err := runCtx.WaitForResume(); err != nil {
			return err
		}

		// The delta is already visible through the store
		if err := runCtx.RefreshSession(); err != nil {
			return err
		}
		v, _ := runCtx.GetState("topic")
		if v != "Hypatia" {
			return errors.New("state not persisted before resume")
		}
		return nil
	})

	r := New(root)

	runID, eventsCh, errsCh, err := r.Run(context.Background(), "sess-1", core.NewUserText("begin"))
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	events, errs := drain(t, eventsCh, errsCh)
	assert.Empty(t, errs)
	require.Len(t, events, 1)
	assert.Equal(t, "working", events[0].Content.Text())
	assert.Equal(t, runID, events[0].RunID)

	sess, err := r.SessionStore().Get("sess-1")
	require.NoError(t, err)

	v, ok := sess.GetState("topic")
	require.True(t, ok)
	assert.Equal(t, "Hypatia", v)

	// History holds the user request plus the emitted message
	history := sess.GetConversationHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "begin", history[0].Content.Text())
}

func TestRunner_SurfacesAgentError(t *testing.T) {
	root := newStubAgent("root", func(runCtx *core.RunContext) error {
		return errors.New("pipeline exploded")
	})

	_, eventsCh, errsCh, err := New(root).Run(context.Background(), "sess-1", core.NewUserText("begin"))
	require.NoError(t, err)

	events, errs := drain(t, eventsCh, errsCh)
	assert.Empty(t, events)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "pipeline exploded")
}

func TestRunner_Cancel(t *testing.T) {
	started := make(chan struct{})
	root := newStubAgent("root", func(runCtx *core.RunContext) error {
		close(started)
		<-runCtx.Done()
		return runCtx.Err()
	})

	r := New(root)

	runID, eventsCh, errsCh, err := r.Run(context.Background(), "sess-1", core.NewUserText("begin"))
	require.NoError(t, err)

	<-started
	require.NoError(t, r.Cancel(runID))

	drain(t, eventsCh, errsCh)

	// The run deregisters itself shortly after cancellation
	assert.Eventually(t, func() bool {
		return r.Cancel(runID) != nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunner_IndependentSessions(t *testing.T) {
	root := newStubAgent("root", func(runCtx *core.RunContext) error {
		runCtx.SetState("marker", runCtx.SessionID)
		if err := runCtx.EmitEvent(core.NewEvent(runCtx.RunID, "root")); err != nil {
			return err
		}
		return runCtx.WaitForResume()
	})

	r := New(root)

	for _, sessionID := range []string{"sess-a", "sess-b"} {
		_, eventsCh, errsCh, err := r.Run(context.Background(), sessionID, core.NewUserText("begin"))
		require.NoError(t, err)
		_, errs := drain(t, eventsCh, errsCh)
		assert.Empty(t, errs)
	}

	sessA, err := r.SessionStore().Get("sess-a")
	require.NoError(t, err)
	markerA, _ := sessA.GetState("marker")
	assert.Equal(t, "sess-a", markerA)

	sessB, err := r.SessionStore().Get("sess-b")
	require.NoError(t, err)
	markerB, _ := sessB.GetState("marker")
	assert.Equal(t, "sess-b", markerB)
}
