package core

// Agent defines the core interface all pipeline steps implement.
//
// Agents are single-purpose processing units. They receive a RunContext,
// perform their work (possibly invoking models or tools) and emit events to
// communicate results and state changes back to the runner. Composite agents
// (sequential, parallel, loop) coordinate child agents through the sub-agent
// management methods.
//
// Implementations must respect context cancellation and emit all observable
// effects as events through the provided RunContext.
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
}

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes the implementation
// (e.g. "sequential", "loop", "worker", "judge").
type AgentInfo struct{ Name, Type string }
