package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/session"
)

// fakeAgent wraps a plain function as an agent for coordinator tests.
type fakeAgent struct {
	BaseAgent
	run func(runCtx *core.RunContext) error
}

func newFakeAgent(name string, run func(runCtx *core.RunContext) error) *fakeAgent {
	return &fakeAgent{BaseAgent: NewBaseAgent(name), run: run}
}

func (f *fakeAgent) Run(runCtx *core.RunContext) error { return f.run(runCtx) }

// runAgent drives an agent the way the runner does: emitted events are
// persisted into the store, then a resume signal is sent back. It returns all
// collected events and the agent's error.
func runAgent(t *testing.T, ag core.Agent, store core.SessionStore, userText string, maxModelCalls int) ([]core.Event, error) {
	t.Helper()

	emit := make(chan core.Event, 64)
	resume := make(chan struct{}, 1)

	sess, err := store.Get("sess-1")
	require.NoError(t, err)

	runCtx := core.NewRunContext(
		context.Background(),
		"sess-1",
		"run-1",
		core.AgentInfo{Name: ag.Name()},
		core.NewUserText(userText),
		maxModelCalls,
		emit,
		resume,
		sess,
		store,
		nil,
		nil,
	)

	var (
		events []core.Event
		wg     sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range emit {
			events = append(events, ev)
			if ev.IsPartial() {
				continue
			}
			if len(ev.Actions.StateDelta) > 0 {
				_ = store.ApplyDelta("sess-1", ev.Actions.StateDelta)
			}
			_ = store.AppendEvent("sess-1", ev)
			resume <- struct{}{}
		}
	}()

	runErr := ag.Run(runCtx)
	close(emit)
	wg.Wait()

	return events, runErr
}

func newTestStore() *session.InMemoryStore { return session.NewInMemoryStore() }
