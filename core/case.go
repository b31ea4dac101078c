package core

import "fmt"

// Case state field names. The fields form the entire contract between the
// pipeline steps: the clerk writes StateTopic once, the two investigation
// workers append to their own evidence list, the judge overwrites
// StateJudgeFeedback each round and the scribe reads everything at the end.
const (
	// StateTopic is the historical subject under investigation, set once.
	StateTopic = "topic"
	// StatePosData holds supporting evidence bullets in insertion order.
	StatePosData = "pos_data"
	// StateNegData holds opposing evidence bullets in insertion order.
	StateNegData = "neg_data"
	// StateJudgeFeedback is the judge's guidance, overwritten each round.
	StateJudgeFeedback = "judge_feedback"
	// StatePosRound / StateNegRound are part of the reset contract but no
	// component increments them.
	StatePosRound = "pos_round"
	StateNegRound = "neg_round"
)

// CaseResetDelta returns the state delta that (re)initializes a case:
// empty topic and feedback, empty evidence lists, zeroed round counters.
func CaseResetDelta() map[string]any {
	return map[string]any{
		StateTopic:         "",
		StatePosData:       []string{},
		StateNegData:       []string{},
		StateJudgeFeedback: "",
		StatePosRound:      0,
		StateNegRound:      0,
	}
}

// StateStrings coerces a stored state value into a string slice. Values that
// are not a sequence yield nil, which callers treat as an empty list; a prior
// scalar value is thereby silently discarded on the next append.
func StateStrings(v any) []string {
	switch seq := v.(type) {
	case nil:
		return nil
	case []string:
		return seq
	case []any:
		out := make([]string, 0, len(seq))
		for _, item := range seq {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
