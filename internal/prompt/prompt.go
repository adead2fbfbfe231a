// Package prompt wraps the interactive questions mt asks after a command has
// been chosen: confirmations for destructive operations, free-text input and
// picking one item from a list.
package prompt

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/mrtamaki/mt/internal/errkind"
)

// ErrAborted는 사용자가 ctrl+c/esc로 입력을 중단했을 때의 에러다.
var ErrAborted = fmt.Errorf("prompt aborted: %w", errkind.ErrCancelled)

// Option은 선택지 하나다.
type Option struct {
	Label string
	Value string
}

// Prompter는 사용자 입력 인터페이스다.
type Prompter interface {
	// Confirm은 예/아니오를 묻는다. 기본값은 아니오다.
	Confirm(message string) (bool, error)
	// Input은 한 줄 입력을 받는다. validate가 nil이 아니면 통과할 때까지 다시 묻는다.
	Input(title, placeholder string, validate func(string) error) (string, error)
	// Select는 목록에서 하나를 고른다.
	Select(title string, options []Option) (string, error)
}

// HuhPrompter는 charmbracelet/huh 기반의 Prompter 구현이다.
type HuhPrompter struct {
	Theme *huh.Theme
}

var _ Prompter = (*HuhPrompter)(nil)

func (h *HuhPrompter) run(op string, fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...))
	if h.Theme != nil {
		form = form.WithTheme(h.Theme)
	}
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("prompt.%s: %w", op, ErrAborted)
		}
		return fmt.Errorf("prompt.%s: %w", op, err)
	}
	return nil
}

// Confirm은 확인 프롬프트를 표시한다.
func (h *HuhPrompter) Confirm(message string) (bool, error) {
	confirm := false
	err := h.run("Confirm", huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm))
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// Input은 입력 프롬프트를 표시한다.
func (h *HuhPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	var value string
	in := huh.NewInput().Title(title).Placeholder(placeholder).Value(&value)
	if validate != nil {
		in = in.Validate(validate)
	}
	if err := h.run("Input", in); err != nil {
		return "", err
	}
	return value, nil
}

// Select는 선택 UI를 표시한다.
func (h *HuhPrompter) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("prompt.Select: no options: %w", errkind.ErrNotFound)
	}
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value)
	}
	var selected string
	if err := h.run("Select", huh.NewSelect[string]().Title(title).Options(opts...).Value(&selected)); err != nil {
		return "", err
	}
	return selected, nil
}

// NotEmpty는 빈 입력을 거부하는 검증 함수다.
func NotEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
