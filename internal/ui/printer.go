// Package ui renders colored terminal output for mt commands.
package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Printer는 stdout/stderr로 스타일이 적용된 메시지를 쓴다.
// 프로세스당 하나를 만들어 App에 보관한다.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Theme Theme
	// Color가 false면 JSON 하이라이트를 끈다 (파이프, 테스트).
	Color bool

	bannerShown bool
}

// NewPrinter는 Printer를 생성한다.
func NewPrinter(out, errOut io.Writer, theme Theme, color bool) *Printer {
	return &Printer{Out: out, Err: errOut, Theme: theme, Color: color}
}

func (p *Printer) style(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Title은 굵은 강조색 제목을 출력한다.
func (p *Printer) Title(format string, a ...any) {
	fmt.Fprintln(p.Out, p.style(p.Theme.Accent).Bold(true).Render(fmt.Sprintf(format, a...)))
}

// Info는 일반 메시지를 출력한다.
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.Out, format+"\n", a...)
}

// Success는 성공 메시지를 출력한다.
func (p *Printer) Success(format string, a ...any) {
	fmt.Fprintln(p.Out, p.style(p.Theme.Success).Render("✓ "+fmt.Sprintf(format, a...)))
}

// Warn은 stderr로 경고를 출력한다.
func (p *Printer) Warn(format string, a ...any) {
	fmt.Fprintln(p.Err, p.style(p.Theme.Warning).Render("! "+fmt.Sprintf(format, a...)))
}

// Error는 stderr로 에러를 출력한다.
func (p *Printer) Error(format string, a ...any) {
	fmt.Fprintln(p.Err, p.style(p.Theme.Error).Render("Error: "+fmt.Sprintf(format, a...)))
}

// Muted는 흐린 보조 텍스트를 출력한다.
func (p *Printer) Muted(format string, a ...any) {
	fmt.Fprintln(p.Out, p.style(p.Theme.Muted).Render(fmt.Sprintf(format, a...)))
}

// KeyValues는 key: value 목록을 키 정렬 순으로 출력한다.
func (p *Printer) KeyValues(kv map[string]string) {
	keys := make([]string, 0, len(kv))
	width := 0
	for k := range kv {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)
	keyStyle := p.style(p.Theme.Highlight)
	for _, k := range keys {
		fmt.Fprintf(p.Out, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-*s", width, k)), kv[k])
	}
}

// JSON은 v를 들여쓴 JSON으로 출력한다. Color면 chroma로 하이라이트한다.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ui.JSON: %w", err)
	}
	if !p.Color {
		_, err := fmt.Fprintln(p.Out, string(data))
		return err
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(data), "json", "terminal256", "monokai"); err != nil {
		_, err := fmt.Fprintln(p.Out, string(data))
		return err
	}
	_, err = fmt.Fprintln(p.Out, strings.TrimRight(buf.String(), "\n"))
	return err
}

// RawJSON은 v를 한 줄 JSON으로 출력한다.
func (p *Printer) RawJSON(v any) error {
	return json.NewEncoder(p.Out).Encode(v)
}

// YAML은 v를 YAML로 출력한다.
func (p *Printer) YAML(v any) error {
	enc := yaml.NewEncoder(p.Out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("ui.YAML: %w", err)
	}
	return enc.Close()
}
