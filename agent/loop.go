package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tribunal/core"
)

// ErrEscalated is returned when a child agent signals escalation.
var ErrEscalated = errors.New("child agent escalated")

// LoopAgent coordinates the repeated execution of a child agent.
//
// The child runs up to maxIters times against the same shared state. Emitted
// events are intercepted so an escalate flag from the child (via the exit_loop
// tool) terminates the loop after the current iteration. Hitting the iteration
// cap without an escalation is not an error; the loop simply stops.
//
// The deliberation loop of a tribunal wraps one round (advocate/opponent fan
// out, then the judge) and relies on the judge's escalation to finish early.
type LoopAgent struct {
	BaseAgent
	child       core.Agent    // Child agent to execute repeatedly
	maxIters    int           // Maximum number of iterations allowed
	interval    time.Duration // Time delay between iterations
	stopOnError bool          // Whether to stop execution on child agent errors
}

// LoopOption defines a configuration function for customizing LoopAgent behavior.
type LoopOption func(*LoopAgent)

// WithMaxIters sets the maximum number of iterations for the loop.
// The loop terminates after this many iterations even without escalation.
func WithMaxIters(n int) LoopOption {
	return func(l *LoopAgent) { l.maxIters = n }
}

// WithInterval sets the time delay between loop iterations.
func WithInterval(d time.Duration) LoopOption {
	return func(l *LoopAgent) { l.interval = d }
}

// WithContinueOnError keeps iterating when a child iteration fails instead of
// returning the error.
func WithContinueOnError() LoopOption {
	return func(l *LoopAgent) { l.stopOnError = false }
}

// NewLoopAgent constructs a looping coordinator around a child agent.
// Defaults: 100 iterations, no interval, stop on first error.
func NewLoopAgent(name string, child core.Agent, opts ...LoopOption) *LoopAgent {
	la := &LoopAgent{
		BaseAgent:   NewBaseAgent(name),
		child:       child,
		maxIters:    100,
		interval:    0,
		stopOnError: true,
	}

	for _, o := range opts {
		o(la)
	}

	return la
}

// Run implements core.Agent performing iterative execution with escalation
// detection. It returns early (nil error) on escalation events.
func (l *LoopAgent) Run(runCtx *core.RunContext) error {
	for i := 0; i < l.maxIters; i++ {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		runCtx.LogInfo("loop.iteration.start", "loop", l.Name(), "iteration", i+1, "max", l.maxIters)

		childErr := l.runChildWithEscalationMonitoring(runCtx)

		if errors.Is(childErr, ErrEscalated) {
			runCtx.LogInfo("loop.escalated", "loop", l.Name(), "iteration", i+1)
			return nil // Escalation is early termination, not an error
		}

		if childErr != nil {
			if l.stopOnError {
				return fmt.Errorf("loop iteration %d failed for agent %s: %w", i+1, l.child.Name(), childErr)
			}
			runCtx.LogWarn("loop.iteration.failed", "loop", l.Name(), "iteration", i+1, "error", childErr.Error())
		}

		if l.interval > 0 && i < l.maxIters-1 {
			select {
			case <-runCtx.Done():
				return runCtx.Err()
			case <-time.After(l.interval):
			}
		}
	}

	runCtx.LogInfo("loop.completed", "loop", l.Name(), "iterations", l.maxIters)

	return nil
}

// runChildWithEscalationMonitoring wraps child execution routing its emitted
// events through an intercept channel to inspect for escalation flags before
// forwarding to the parent context.
func (l *LoopAgent) runChildWithEscalationMonitoring(runCtx *core.RunContext) error {
	interceptChan := make(chan core.Event, 10)
	resumeChan := make(chan struct{}, 10)
	childCtx := runCtx.NewChildContext(interceptChan, resumeChan, runCtx.Branch)

	done := make(chan error, 1)

	go func() {
		defer close(done)
		done <- l.child.Run(childCtx)
	}()

	// An escalation does not abort the child mid-turn; the flag is remembered
	// and reported once the child finishes its iteration.
	escalated := false

	for {
		select {
		case event, ok := <-interceptChan:
			if !ok {
				// Child closed the channel, wait for completion
				if err := <-done; err != nil {
					return err
				}
				if escalated {
					return ErrEscalated
				}
				return nil
			}

			if event.IsEscalation() {
				runCtx.LogDebug("loop.escalation.detected", "loop", l.Name(), "author", event.Author)
				escalated = true
			}

			if err := runCtx.EmitEvent(event); err != nil {
				return err
			}

			// Route the persistence resume signal back to the child. Partial
			// events are never waited on, so only full events get a signal.
			if !event.IsPartial() {
				if runCtx.Resume != nil {
					if err := runCtx.WaitForResume(); err != nil {
						return err
					}
				}

				select {
				case resumeChan <- struct{}{}:
				case <-runCtx.Done():
					return runCtx.Err()
				}
			}

		case err := <-done:
			if err != nil {
				return err
			}
			if escalated {
				return ErrEscalated
			}
			return nil

		case <-runCtx.Done():
			return runCtx.Err()
		}
	}
}

// NewEscalationEvent constructs an event carrying the loop completion signal.
func NewEscalationEvent(runID, author string, content *core.Content) core.Event {
	escalate := true
	ev := core.NewEvent(runID, author)
	ev.Actions.Escalate = &escalate
	ev.Content = content
	return ev
}
