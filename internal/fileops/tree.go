package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// MaxTreeEntries는 디렉토리 하나에서 보여줄 최대 항목 수다.
const MaxTreeEntries = 15

var (
	dirStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	codeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	docStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	imageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	treeEnumSty = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1)
)

// Tree는 root 아래를 depth 단계까지 그린 트리 문자열을 반환한다.
// 숨김 파일과 무시 대상은 건너뛰고, 디렉토리가 먼저 온다.
func Tree(root string, depth int) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("fileops.Tree: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("fileops.Tree: %w", notFound(err))
	}
	if !info.IsDir() {
		return "", fmt.Errorf("fileops.Tree: %s is not a directory: %w", abs, ErrInvalidInput)
	}
	name := filepath.Base(abs)
	t := buildTree(abs, dirStyle.Render(name), depth, LoadIgnore(abs))
	return t.String(), nil
}

func buildTree(dir, label string, depth int, ig *Matcher) *tree.Tree {
	t := tree.Root(label).EnumeratorStyle(treeEnumSty)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return t.Child(mutedStyle.Render("permission denied"))
	}

	visible := entries[:0:0]
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || ig.Ignored(filepath.Join(dir, e.Name()), e.IsDir()) {
			continue
		}
		visible = append(visible, e)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsDir() != visible[j].IsDir() {
			return visible[i].IsDir()
		}
		return strings.ToLower(visible[i].Name()) < strings.ToLower(visible[j].Name())
	})

	shown := visible
	if len(shown) > MaxTreeEntries {
		shown = shown[:MaxTreeEntries]
	}
	for _, e := range shown {
		switch {
		case e.IsDir() && depth > 1:
			t.Child(buildTree(filepath.Join(dir, e.Name()), dirStyle.Render(e.Name()+"/"), depth-1, ig))
		case e.IsDir():
			t.Child(dirStyle.Render(e.Name() + "/"))
		default:
			t.Child(fileStyle(e.Name()).Render(e.Name()))
		}
	}
	if rest := len(visible) - len(shown); rest > 0 {
		t.Child(mutedStyle.Render(fmt.Sprintf("... and %d more", rest)))
	}
	return t
}

func fileStyle(name string) lipgloss.Style {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".go", ".py", ".js", ".ts", ".sh", ".zsh":
		return codeStyle
	case ".md", ".txt", ".json", ".yaml", ".yml", ".toml":
		return docStyle
	case ".jpg", ".jpeg", ".png", ".gif", ".svg":
		return imageStyle
	default:
		return lipgloss.NewStyle()
	}
}
