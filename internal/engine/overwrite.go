package engine

import (
	"context"
	"fmt"
)

// OverwriteMode selects how conflicts with existing files are resolved.
type OverwriteMode int

const (
	// Prompt asks the operator about each conflicting file.
	Prompt OverwriteMode = iota
	// Force overwrites without asking.
	Force
)

func (m OverwriteMode) String() string {
	if m == Force {
		return "force"
	}
	return "prompt"
}

// Confirmer asks the operator a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// Decision is the outcome of an overwrite check.
type Decision int

const (
	Proceed Decision = iota
	Skip
)

// OverwritePolicy decides whether a non-identical existing file is replaced.
// Answers are never remembered; every conflict is decided on its own.
type OverwritePolicy struct {
	mode    OverwriteMode
	confirm Confirmer
}

// NewOverwritePolicy returns a policy for mode. confirm may be nil in Force mode.
func NewOverwritePolicy(mode OverwriteMode, confirm Confirmer) (*OverwritePolicy, error) {
	if mode == Prompt && confirm == nil {
		return nil, fmt.Errorf("%w: prompt mode needs a confirmer", ErrInvalidRequest)
	}
	return &OverwritePolicy{mode: mode, confirm: confirm}, nil
}

// Decide returns Proceed or Skip for the existing destination file dst. An
// error means the operator could not be asked (for example the context was
// cancelled while waiting) and the run should stop.
func (p *OverwritePolicy) Decide(ctx context.Context, dst string) (Decision, error) {
	if p.mode == Force {
		return Proceed, nil
	}

	ok, err := p.confirm.Confirm(ctx,
		fmt.Sprintf("Destination file %s already exists. Do you want to overwrite it?", dst))
	if err != nil {
		return Skip, err
	}
	if !ok {
		return Skip, nil
	}
	return Proceed, nil
}
