// Package spin shows a terminal spinner while a blocking task runs.
// The spinner polls the task on a fixed interval and stops waiting after a
// bounded duration; the task itself is never cancelled by the spinner.
package spin

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// ErrTimeout는 제한 시간 내에 작업이 끝나지 않았을 때 반환된다.
// 작업은 백그라운드에서 계속 실행된다.
var ErrTimeout = errors.New("spin: still running after time limit")

var (
	frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Spinner는 Wait 설정이다. 0 값이면 기본값을 사용한다.
type Spinner struct {
	Out      io.Writer
	Interval time.Duration
	Limit    time.Duration
	Frames   []string
}

// New는 bubbles Dot 프레임을 쓰는 Spinner를 생성한다.
func New(out io.Writer, limit time.Duration) *Spinner {
	return &Spinner{
		Out:      out,
		Interval: spinner.Dot.FPS,
		Limit:    limit,
		Frames:   spinner.Dot.Frames,
	}
}

// Wait는 fn을 실행하고 끝날 때까지 label과 함께 스피너를 그린다.
// Limit가 지나면 경고를 출력하고 ErrTimeout을 반환한다. Limit가 0이면 무제한이다.
func (s *Spinner) Wait(label string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	interval := s.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	frames := s.Frames
	if len(frames) == 0 {
		frames = []string{"|", "/", "-", "\\"}
	}
	out := s.Out
	if out == nil {
		out = io.Discard
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if s.Limit > 0 {
		timer := time.NewTimer(s.Limit)
		defer timer.Stop()
		deadline = timer.C
	}

	i := 0
	for {
		select {
		case err := <-done:
			fmt.Fprint(out, "\r\033[K")
			return err
		case <-ticker.C:
			fmt.Fprintf(out, "\r%s %s", frameStyle.Render(frames[i%len(frames)]), label)
			i++
		case <-deadline:
			fmt.Fprintf(out, "\r\033[K%s\n", warnStyle.Render(fmt.Sprintf("! %s: no result after %s, leaving it running", label, s.Limit)))
			return ErrTimeout
		}
	}
}
