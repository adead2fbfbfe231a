package menu

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"

	"github.com/mrtamaki/mt/internal/bookmark"
	"github.com/mrtamaki/mt/internal/fileops"
	"github.com/mrtamaki/mt/internal/ui"
)

type mode int

const (
	modeMain mode = iota
	modeBookmarks
	modeTree
)

const defaultWidth = 80

// Options는 메뉴 모델 구성이다.
type Options struct {
	Dir       string
	Store     *bookmark.Store
	Theme     ui.Theme
	TreeDepth int
}

// Model은 파일 메뉴의 bubbletea 모델이다.
type Model struct {
	opts    Options
	keys    keyMap
	entries []Entry
	dir     fileops.DirContext
	marks   []bookmark.Bookmark

	mode       mode
	selected   int
	bmSelected int
	tree       string
	status     string
	width      int
	// pendingDelete는 삭제 확인을 기다리는 북마크 이름이다.
	pendingDelete string

	result *Selection
	done   bool
}

// NewModel은 현재 디렉토리 정보와 북마크를 읽어 모델을 만든다.
// 읽기 실패는 화면의 상태 줄에 표시된다.
func NewModel(opts Options) Model {
	if opts.TreeDepth <= 0 {
		opts.TreeDepth = 2
	}
	m := Model{
		opts:    opts,
		keys:    defaultKeyMap(),
		entries: Entries(),
		width:   defaultWidth,
	}
	dc, err := fileops.ReadDirContext(opts.Dir)
	if err != nil {
		m.status = err.Error()
	}
	m.dir = dc
	m.reloadBookmarks()
	return m
}

func (m *Model) reloadBookmarks() {
	if m.opts.Store == nil {
		return
	}
	marks, err := m.opts.Store.List()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.marks = marks
}

// total은 "Exit" 항목을 포함한 메인 목록 길이다.
func (m Model) total() int {
	return len(m.entries) + 1
}

// Selection은 종료 시점의 선택을 반환한다.
func (m Model) Selection() (Selection, bool) {
	if m.result == nil {
		return Selection{}, false
	}
	return *m.result, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.done = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeBookmarks:
			return m.updateBookmarks(msg)
		case modeTree:
			if key.Matches(msg, m.keys.Back, m.keys.Enter, m.keys.Tree) {
				m.mode = modeMain
			}
			return m, nil
		default:
			return m.updateMain(msg)
		}
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected - 1 + m.total()) % m.total()
	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % m.total()
	case key.Matches(msg, m.keys.Tree):
		m.openTree()
	case key.Matches(msg, m.keys.Bookmarks):
		m.openBookmarks()
	case key.Matches(msg, m.keys.Back):
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Enter):
		if m.selected >= len(m.entries) {
			m.done = true
			return m, tea.Quit
		}
		switch cmd := m.entries[m.selected].Command; cmd {
		case CmdTree:
			m.openTree()
		case CmdJump:
			m.openBookmarks()
		default:
			sel := CommandSelection(cmd)
			m.result = &sel
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateBookmarks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != "" {
		return m.confirmDelete(msg)
	}
	n := len(m.marks)
	switch {
	case key.Matches(msg, m.keys.Up):
		if n > 0 {
			m.bmSelected = (m.bmSelected - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Down):
		if n > 0 {
			m.bmSelected = (m.bmSelected + 1) % n
		}
	case key.Matches(msg, m.keys.Enter):
		if n > 0 {
			sel := CDSelection(m.marks[m.bmSelected].Path)
			m.result = &sel
			m.done = true
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.Delete):
		if n > 0 {
			m.pendingDelete = m.marks[m.bmSelected].Name
			m.status = fmt.Sprintf("delete bookmark %s? (y/N)", m.pendingDelete)
		}
	case key.Matches(msg, m.keys.Back, m.keys.Bookmarks):
		m.mode = modeMain
	}
	return m, nil
}

// confirmDelete는 y 키에서만 대기 중인 북마크를 지운다. 다른 키는 모두 취소다.
func (m Model) confirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	name := m.pendingDelete
	m.pendingDelete = ""
	if msg.Type != tea.KeyRunes || (string(msg.Runes) != "y" && string(msg.Runes) != "Y") {
		m.status = "cancelled, nothing changed"
		return m, nil
	}
	m.status = ""
	if err := m.opts.Store.Delete(name); err != nil {
		m.status = err.Error()
	}
	m.reloadBookmarks()
	if m.bmSelected >= len(m.marks) {
		m.bmSelected = max(0, len(m.marks)-1)
	}
	if len(m.marks) == 0 {
		m.mode = modeMain
	}
	return m, nil
}

func (m *Model) openBookmarks() {
	if len(m.marks) == 0 {
		m.status = "no bookmarks yet (use Bookmark to save one)"
		return
	}
	m.mode = modeBookmarks
	m.bmSelected = 0
}

func (m *Model) openTree() {
	if m.tree == "" {
		t, err := fileops.Tree(m.opts.Dir, m.opts.TreeDepth)
		if err != nil {
			m.status = err.Error()
			return
		}
		m.tree = t
	}
	m.mode = modeTree
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	th := m.opts.Theme
	accent := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(th.Muted)
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border).Padding(0, 1)

	header := box.Width(m.width - 2).Render(
		accent.Render("mt files") + "  " + m.dir.Path + "\n" +
			muted.Render(fmt.Sprintf("%d files, %d dirs", m.dir.Files, m.dir.Dirs)),
	)

	var body string
	switch m.mode {
	case modeTree:
		body = box.Width(m.width - 2).Render(m.tree)
	case modeBookmarks:
		body = box.Width(m.width - 2).Render(m.renderBookmarks())
	default:
		half := m.width/2 - 2
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			box.Width(half).Render(m.renderCommands()),
			box.Width(half).Render(m.renderInfo()),
		)
	}

	footer := muted.Render(m.footer())
	if m.status != "" {
		footer = lipgloss.NewStyle().Foreground(th.Warning).Render(m.status) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderCommands() string {
	th := m.opts.Theme
	sel := lipgloss.NewStyle().Foreground(th.Highlight).Bold(true)
	alias := lipgloss.NewStyle().Foreground(th.Muted)

	var sb strings.Builder
	for i := 0; i < m.total(); i++ {
		title, al := "Exit", "return"
		if i < len(m.entries) {
			title, al = m.entries[i].Title, m.entries[i].Alias
		}
		line := fmt.Sprintf("%-16s %s", title, alias.Render(al))
		if i == m.selected {
			sb.WriteString(sel.Render("> " + title))
			sb.WriteString(" " + alias.Render(al))
		} else {
			sb.WriteString("  " + line)
		}
		if i < m.total()-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m Model) renderInfo() string {
	th := m.opts.Theme
	accent := lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	var sb strings.Builder
	if m.selected < len(m.entries) {
		sb.WriteString(m.entries[m.selected].Description)
	} else {
		sb.WriteString("Return to the shell")
	}

	sb.WriteString("\n\n" + accent.Render("Recent files") + "\n")
	if len(m.dir.Recent) == 0 {
		sb.WriteString(muted.Render("  none"))
	}
	for i, f := range m.dir.Recent {
		sb.WriteString(fmt.Sprintf("  %s %s", filepath.Base(f.Path), muted.Render(units.HumanSize(float64(f.Size)))))
		if i < len(m.dir.Recent)-1 {
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n\n" + accent.Render("Bookmarks") + "\n")
	if len(m.marks) == 0 {
		sb.WriteString(muted.Render("  none"))
	} else {
		sb.WriteString(fmt.Sprintf("  %d saved", len(m.marks)))
	}
	return sb.String()
}

func (m Model) renderBookmarks() string {
	th := m.opts.Theme
	sel := lipgloss.NewStyle().Foreground(th.Highlight).Bold(true)
	muted := lipgloss.NewStyle().Foreground(th.Muted)

	var sb strings.Builder
	for i, b := range m.marks {
		line := fmt.Sprintf("%-14s %s", b.Name, muted.Render(b.Path))
		if i == m.bmSelected {
			line = sel.Render("> "+b.Name) + " " + muted.Render(b.Path)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		if i < len(m.marks)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m Model) footer() string {
	k := m.keys
	switch m.mode {
	case modeBookmarks:
		return helpLine(k.Up, k.Down, k.Enter, k.Delete, k.Back)
	case modeTree:
		return helpLine(k.Back)
	default:
		return helpLine(k.Up, k.Down, k.Enter, k.Bookmarks, k.Tree, k.Back)
	}
}

// Run은 메뉴를 전체 화면으로 실행하고 선택을 반환한다.
func Run(ctx context.Context, opts Options) (Selection, bool, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Selection{}, false, fmt.Errorf("menu.Run: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return Selection{}, false, nil
	}
	sel, ok := fm.Selection()
	return sel, ok, nil
}
