package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_StateRoundTrip(t *testing.T) {
	s := NewSession("s1")

	_, ok := s.GetState("topic")
	assert.False(t, ok)

	s.SetState("topic", "Leonardo da Vinci")
	v, ok := s.GetState("topic")
	assert.True(t, ok)
	assert.Equal(t, "Leonardo da Vinci", v)
}

func TestSession_MergeState(t *testing.T) {
	s := NewSession("s1")
	s.SetState("a", 1)

	s.MergeState(map[string]any{"a": 2, "b": "x"})

	a, _ := s.GetState("a")
	b, _ := s.GetState("b")
	assert.Equal(t, 2, a)
	assert.Equal(t, "x", b)
}

func TestSession_CloneIsolation(t *testing.T) {
	s := NewSession("s1")
	s.SetState("topic", "Napoleon")
	s.AddEvent(NewMessageEvent("run1", "clerk", "hello"))

	clone := s.Clone()
	clone.SetState("topic", "changed")
	clone.AddEvent(NewMessageEvent("run1", "clerk", "extra"))

	v, _ := s.GetState("topic")
	assert.Equal(t, "Napoleon", v)
	assert.Len(t, s.GetEvents(), 1)
	assert.Len(t, clone.GetEvents(), 2)
}

func TestSession_GetConversationHistory(t *testing.T) {
	s := NewSession("s1")

	s.AddEvent(NewUserContentEvent("run1", &Content{Role: "user", Parts: []Part{TextPart{Text: "hi"}}}))
	s.AddEvent(NewMessageEvent("run1", "clerk", "reply"))

	// Partial fragments are excluded
	partial := NewMessageEvent("run1", "clerk", "frag")
	p := true
	partial.Partial = &p
	s.AddEvent(partial)

	// Content-less control events are excluded
	s.AddEvent(NewEvent("run1", "judge"))

	history := s.GetConversationHistory()
	assert.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Content.Role)
	assert.Equal(t, "assistant", history[1].Content.Role)
}
