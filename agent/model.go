package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/model"
	"github.com/hupe1980/tribunal/tool"
)

// boolPtr creates a pointer to a boolean value.
func boolPtr(b bool) *bool {
	return &b
}

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction        Instruction
	EnableStreaming    bool
	ToolTimeout        time.Duration
	OutputKey          string
	MaxHistoryMessages int
	Tools              []tool.Tool
}

// ModelAgent integrates with a language model to implement one pipeline role.
//
// A ModelAgent resolves its instruction (with session state substitution),
// sends the conversation to its model and executes any requested tool calls
// inline, feeding the results back for further model turns until the model
// emits a final text response. State mutations performed by tools travel on
// the emitted events as deltas; a configured OutputKey additionally stores
// the final response text in session state.
type ModelAgent struct {
	BaseAgent                          // Embedded base agent functionality
	llm                model.Model     // Language model interface
	instruction        Instruction     // Instruction resolved per run
	tools              map[string]tool.Tool
	enableStreaming    bool
	toolTimeout        time.Duration
	outputKey          string
	maxHistoryMessages int
}

// NewModelAgent creates a new model-based agent with sensible defaults.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful assistant.", name)),
		EnableStreaming:    false,
		ToolTimeout:        15 * time.Second,
		MaxHistoryMessages: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:          NewBaseAgent(name),
		llm:                llm,
		instruction:        opts.Instruction,
		enableStreaming:    opts.EnableStreaming,
		toolTimeout:        opts.ToolTimeout,
		outputKey:          opts.OutputKey,
		maxHistoryMessages: opts.MaxHistoryMessages,
		tools:              make(map[string]tool.Tool),
	}

	a.RegisterTools(opts.Tools...)

	return a
}

// RegisterTool adds a function tool to the agent's capability set.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the names of all registered tools.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	return names
}

// OutputKey returns the session state key for saving final responses.
func (a *ModelAgent) OutputKey() string {
	return a.outputKey
}

// ResolveInstructions produces the final instruction string (system prompt)
// by resolving static or dynamic instruction sources against session state.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// executeTool deserializes JSON arguments and invokes the named tool returning
// its result or an error if the tool is unknown or validation fails.
func (a *ModelAgent) executeTool(toolCtx *core.ToolContext, toolName, args string) (any, error) {
	t, exists := a.tools[toolName]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", toolName)
	}

	argsMap := make(map[string]any)
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal args: %w", err)
		}
	}

	return t.Call(toolCtx, argsMap)
}

// Run implements core.Agent. It performs model turns until a final response
// is produced, executing requested tool calls between turns.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID)

	for {
		ev, err := a.runTurn(runCtx)
		if err != nil {
			runCtx.LogError("agent.run.error", "agent", a.Name(), "error", err.Error())
			return err
		}
		if ev == nil {
			return fmt.Errorf("agent %s: model produced no response", a.Name())
		}

		// Tool responses feed another model turn; a final response ends the run.
		if len(ev.GetFunctionResponses()) > 0 {
			continue
		}
		if ev.IsFinalResponse() {
			runCtx.LogDebug("agent.run.complete", "agent", a.Name())
			return nil
		}
	}
}

// runTurn performs one model turn (including any tool executions) and returns
// the last emitted Event. A nil event signals termination without output.
func (a *ModelAgent) runTurn(runCtx *core.RunContext) (*core.Event, error) {
	// Refresh the session snapshot so the request sees the latest
	// conversation, including tool responses from the previous turn.
	if runCtx.SessionStore != nil {
		if err := runCtx.RefreshSession(); err != nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
	}

	req, err := a.buildRequest(runCtx)
	if err != nil {
		return nil, err
	}

	if runCtx.Limiter != nil {
		if err := runCtx.Limiter.Increment(); err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
		}
	}

	respCh, errCh := a.llm.Generate(runCtx.Context, req)

	var lastEvent *core.Event

	for {
		select {
		case resp, ok := <-respCh:
			if !ok {
				// The provider may buffer a failure and close both channels
				// together. Check for it before concluding the turn was empty.
				if errCh != nil {
					select {
					case genErr, ok := <-errCh:
						if ok && genErr != nil {
							return nil, fmt.Errorf("agent %s: model generation failed: %w", a.Name(), genErr)
						}
					case <-runCtx.Done():
						return nil, runCtx.Err()
					}
				}
				return lastEvent, nil
			}

			ev, err := a.handleResponse(runCtx, resp)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				lastEvent = ev
			}

		case genErr, ok := <-errCh:
			if ok && genErr != nil {
				return nil, fmt.Errorf("agent %s: model generation failed: %w", a.Name(), genErr)
			}
			errCh = nil // closed; keep draining respCh

		case <-runCtx.Done():
			return nil, runCtx.Err()
		}
	}
}

// buildRequest assembles the model request from instruction, history and tools.
func (a *ModelAgent) buildRequest(runCtx *core.RunContext) (model.Request, error) {
	instructions, err := a.ResolveInstructions(runCtx)
	if err != nil {
		return model.Request{}, fmt.Errorf("failed to resolve instruction: %w", err)
	}

	var contents []core.Content
	if runCtx.Session != nil {
		events := runCtx.Session.GetConversationHistory()
		if len(events) > a.maxHistoryMessages {
			events = events[len(events)-a.maxHistoryMessages:]
		}
		for _, ev := range events {
			if ev.Content != nil && len(ev.Content.Parts) > 0 {
				contents = append(contents, *ev.Content)
			}
		}
	}
	if len(contents) == 0 && len(runCtx.UserContent.Parts) > 0 {
		contents = append(contents, runCtx.UserContent)
	}

	req := model.Request{
		Instructions: instructions,
		Contents:     contents,
		Stream:       a.enableStreaming,
	}

	if len(a.tools) > 0 {
		defs := make([]model.ToolDefinition, 0, len(a.tools))
		for _, t := range a.tools {
			defs = append(defs, model.ToolDefinition{
				Type: "function",
				Function: model.FunctionDefinition{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
		req.Tools = defs
	}

	return req, nil
}

// handleResponse converts a model response chunk into events, executing any
// requested tool calls. It returns the last event emitted for the chunk.
func (a *ModelAgent) handleResponse(runCtx *core.RunContext, resp model.Response) (*core.Event, error) {
	ev := core.NewEvent(runCtx.RunID, a.Name())
	ev.Content = &resp.Content
	ev.Partial = boolPtr(resp.Partial)
	if runCtx.Branch != "" {
		branch := runCtx.Branch
		ev.Branch = &branch
	}

	fnCalls := ev.GetFunctionCalls()

	// Mark turn complete on the final assistant response with no pending calls
	if !resp.Partial && len(fnCalls) == 0 {
		ev.TurnComplete = boolPtr(true)

		if a.outputKey != "" {
			runCtx.SetState(a.outputKey, resp.Content.Text())
		}
	}

	if resp.Partial {
		// Partial fragments bypass delta merging and persistence waits
		select {
		case runCtx.Emit <- ev:
		case <-runCtx.Done():
			return nil, runCtx.Err()
		}
		return &ev, nil
	}

	if err := runCtx.EmitEvent(ev); err != nil {
		return nil, err
	}
	if err := runCtx.WaitForResume(); err != nil {
		return nil, err
	}

	lastEvent := &ev

	for _, fnCall := range fnCalls {
		respEv, err := a.runToolCall(runCtx, fnCall)
		if err != nil {
			return nil, err
		}
		lastEvent = respEv
	}

	return lastEvent, nil
}

// runToolCall executes one requested tool call and emits its response event.
func (a *ModelAgent) runToolCall(runCtx *core.RunContext, fnCall core.FunctionCall) (*core.Event, error) {
	toolCtx := core.NewToolContext(runCtx, fnCall.ID)

	start := time.Now()
	result, callErr := a.executeTool(toolCtx, fnCall.Name, fnCall.Arguments)
	dur := time.Since(start)

	runCtx.LogInfo(
		"agent.tool.executed",
		"agent", a.Name(),
		"tool", fnCall.Name,
		"duration_ms", dur.Milliseconds(),
		"error", callErr != nil,
	)

	respEv := core.NewFunctionResponseEvent(runCtx.RunID, a.Name(), fnCall.ID, fnCall.Name, result, callErr)
	if runCtx.Branch != "" {
		branch := runCtx.Branch
		respEv.Branch = &branch
	}

	// Attach escalation / artifact signals accumulated by the tool
	toolCtx.InternalApplyActions(&respEv)

	if err := runCtx.EmitEvent(respEv); err != nil {
		return nil, err
	}
	if err := runCtx.WaitForResume(); err != nil {
		return nil, err
	}

	// Reload the session so a follow-up tool call in the same turn sees the
	// delta this event just persisted.
	if runCtx.SessionStore != nil {
		if err := runCtx.RefreshSession(); err != nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
	}

	return &respEv, nil
}
