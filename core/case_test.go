package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseResetDelta(t *testing.T) {
	delta := CaseResetDelta()

	assert.Equal(t, "", delta[StateTopic])
	assert.Equal(t, []string{}, delta[StatePosData])
	assert.Equal(t, []string{}, delta[StateNegData])
	assert.Equal(t, "", delta[StateJudgeFeedback])
	assert.Equal(t, 0, delta[StatePosRound])
	assert.Equal(t, 0, delta[StateNegRound])
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "nil", value: nil, want: nil},
		{name: "string slice", value: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "any slice", value: []any{"a", 2}, want: []string{"a", "2"}},
		{name: "scalar is discarded", value: "not-a-list", want: nil},
		{name: "int is discarded", value: 42, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateStrings(tt.value))
		})
	}
}
