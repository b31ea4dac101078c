package tool

import (
	"fmt"

	"github.com/hupe1980/tribunal/core"
)

// NewAppendCaseDataTool returns a tool that appends a finding to one of the
// evidence lists on the case record (pos_data or neg_data). A prior value
// that is not a list is replaced by an empty list before appending, so the
// result is always a list ending with the new finding.
func NewAppendCaseDataTool() *FunctionTool {
	return NewFunctionTool(
		"append_case_data",
		"Append a single finding to an evidence list on the case record. "+
			"Use field 'pos_data' for achievements and field 'neg_data' for failings.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"field": map[string]any{
					"type":        "string",
					"enum":        []string{core.StatePosData, core.StateNegData},
					"description": "The evidence list to append to",
				},
				"value": map[string]any{
					"type":        "string",
					"description": "The finding to record",
				},
			},
			"required": []string{"field", "value"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			field, _ := args["field"].(string)
			value, _ := args["value"].(string)

			if field != core.StatePosData && field != core.StateNegData {
				return nil, NewToolError(
					"append_case_data",
					fmt.Sprintf("field %q is not an evidence list", field),
					"VALIDATION_ERROR",
				)
			}

			length := toolCtx.AppendState(field, value)

			toolCtx.LogDebug("case.append", "field", field, "length", length)

			return map[string]any{
				"field":  field,
				"length": length,
				"status": "appended",
			}, nil
		},
	)
}

// NewSetCaseFieldTool returns a tool that overwrites one of the scalar case
// fields (topic or judge_feedback). The evidence lists are deliberately not
// settable through this tool; use append_case_data for those.
func NewSetCaseFieldTool() *FunctionTool {
	return NewFunctionTool(
		"set_case_field",
		"Set a scalar field on the case record. "+
			"Use field 'topic' for the figure under review and 'judge_feedback' for deliberation notes.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"field": map[string]any{
					"type":        "string",
					"enum":        []string{core.StateTopic, core.StateJudgeFeedback},
					"description": "The scalar field to set",
				},
				"value": map[string]any{
					"type":        "string",
					"description": "The value to store",
				},
			},
			"required": []string{"field", "value"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			field, _ := args["field"].(string)
			value, _ := args["value"].(string)

			if field != core.StateTopic && field != core.StateJudgeFeedback {
				return nil, NewToolError(
					"set_case_field",
					fmt.Sprintf("field %q is not a scalar case field", field),
					"VALIDATION_ERROR",
				)
			}

			toolCtx.SetState(field, value)

			return map[string]any{
				"field":  field,
				"status": "set",
			}, nil
		},
	)
}

// NewResetCaseTool returns a tool that clears the full case record in one
// delta: topic and judge feedback become empty strings and both evidence
// lists become empty lists.
func NewResetCaseTool() *FunctionTool {
	return NewFunctionTool(
		"reset_case",
		"Clear the case record so a fresh trial can begin. Removes the topic, "+
			"both evidence lists and any judge feedback.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			toolCtx.ResetCase()

			toolCtx.LogInfo("case.reset", "agent", toolCtx.AgentName())

			return map[string]any{"status": "reset"}, nil
		},
	)
}
