package testutil

import (
	"fmt"

	"github.com/mrtamaki/mt/internal/prompt"
)

// FakePrompter answers prompts from pre-configured queues.
// An exhausted queue returns an error so unexpected prompts fail the test.
type FakePrompter struct {
	Confirms []bool
	Inputs   []string
	Selects  []string

	// Err, when set, is returned by every prompt (e.g. prompt.ErrAborted).
	Err error

	// Asked records every prompt title, in order.
	Asked []string
}

var _ prompt.Prompter = (*FakePrompter)(nil)

// Confirm pops the next confirm answer.
func (p *FakePrompter) Confirm(message string) (bool, error) {
	p.Asked = append(p.Asked, message)
	if p.Err != nil {
		return false, p.Err
	}
	if len(p.Confirms) == 0 {
		return false, fmt.Errorf("FakePrompter: unexpected confirm %q", message)
	}
	v := p.Confirms[0]
	p.Confirms = p.Confirms[1:]
	return v, nil
}

// Input pops the next input answer and runs validate on it.
func (p *FakePrompter) Input(title, _ string, validate func(string) error) (string, error) {
	p.Asked = append(p.Asked, title)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Inputs) == 0 {
		return "", fmt.Errorf("FakePrompter: unexpected input %q", title)
	}
	v := p.Inputs[0]
	p.Inputs = p.Inputs[1:]
	if validate != nil {
		if err := validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

// Select pops the next select answer. The answer must be one of the option values.
func (p *FakePrompter) Select(title string, options []prompt.Option) (string, error) {
	p.Asked = append(p.Asked, title)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Selects) == 0 {
		return "", fmt.Errorf("FakePrompter: unexpected select %q", title)
	}
	v := p.Selects[0]
	p.Selects = p.Selects[1:]
	for _, o := range options {
		if o.Value == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("FakePrompter: %q is not an option of %q", v, title)
}
