package ui

import "github.com/charmbracelet/lipgloss"

// Theme는 메뉴와 출력에 쓰는 색상 모음이다.
type Theme struct {
	Name      string
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
}

var themes = map[string]Theme{
	"default": {
		Name:      "default",
		Accent:    lipgloss.Color("6"),
		Highlight: lipgloss.Color("3"),
		Success:   lipgloss.Color("2"),
		Warning:   lipgloss.Color("3"),
		Error:     lipgloss.Color("1"),
		Muted:     lipgloss.Color("8"),
		Border:    lipgloss.Color("8"),
	},
	"ocean": {
		Name:      "ocean",
		Accent:    lipgloss.Color("4"),
		Highlight: lipgloss.Color("6"),
		Success:   lipgloss.Color("2"),
		Warning:   lipgloss.Color("3"),
		Error:     lipgloss.Color("1"),
		Muted:     lipgloss.Color("8"),
		Border:    lipgloss.Color("4"),
	},
	"sunset": {
		Name:      "sunset",
		Accent:    lipgloss.Color("5"),
		Highlight: lipgloss.Color("3"),
		Success:   lipgloss.Color("2"),
		Warning:   lipgloss.Color("214"),
		Error:     lipgloss.Color("1"),
		Muted:     lipgloss.Color("8"),
		Border:    lipgloss.Color("5"),
	},
}

// ThemeByName은 이름의 테마를 반환한다. 모르는 이름이면 default.
func ThemeByName(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["default"]
}

// ThemeNames는 사용할 수 있는 테마 이름이다.
func ThemeNames() []string {
	return []string{"default", "ocean", "sunset"}
}
