package agent

import (
	"github.com/hupe1980/tribunal/core"
	"github.com/hupe1980/tribunal/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from session state, environment, etc.
type Provider interface {
	Instruction(*core.RunContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.RunContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(runCtx *core.RunContext) (string, error) { return f(runCtx) }

// Instruction represents either a static instruction string or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way.
//
// Resolved text may contain {key} placeholders that are substituted with
// session state values before the request is sent to the model. {key} requires
// the state key to exist; {key?} resolves to the empty string when missing.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text with state placeholders substituted,
// invoking the provider first if the instruction is dynamic.
func (i Instruction) Resolve(runCtx *core.RunContext) (string, error) {
	text := i.text
	if i.provider != nil {
		var err error
		if text, err = i.provider.Instruction(runCtx); err != nil {
			return "", err
		}
	}

	return util.InjectState(text, runCtx.GetState)
}
