// Package core contains the shared primitives of the tribunal pipeline:
// the Event model exchanged between agents and the runner, the Session
// acting as the per-run case state store, the RunContext threaded through
// every pipeline step, and the ToolContext exposing a constrained mutation
// surface to tools. Higher level packages (agent, tool, court, runner)
// depend on core only.
package core
