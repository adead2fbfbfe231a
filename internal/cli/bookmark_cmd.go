package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/bookmark"
	"github.com/mrtamaki/mt/internal/prompt"
)

func (a *App) newBookmarkCmd() *cobra.Command {
	cmd := newGroupCmd("bm", "디렉토리 북마크",
		a.newBookmarkSaveCmd(),
		a.newBookmarkJumpCmd(),
		a.newBookmarkListCmd(),
		a.newBookmarkDeleteCmd(),
	)
	cmd.Aliases = []string{"bookmark"}
	return cmd
}

func (a *App) newBookmarkSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [name] [path]",
		Short: "디렉토리를 북마크한다 (기본: 현재 디렉토리)",
		Args:  usageArgs(cobra.MaximumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name, path string
			if len(args) > 0 {
				name = args[0]
			}
			if len(args) > 1 {
				path = args[1]
			}
			return a.runBookmarkSave(name, path)
		},
	}
}

// runBookmarkSave는 name이 비어 있으면 물어본다. 정제 후 이름이 입력과 다르면 알린다.
func (a *App) runBookmarkSave(name, path string) error {
	store, err := a.bookmarks()
	if err != nil {
		return err
	}
	if path == "" {
		if path, err = cwd(); err != nil {
			return err
		}
	}
	if name == "" {
		name, err = a.Prompter.Input("Bookmark name", filepath.Base(path), validBookmarkName)
		if err != nil {
			return err
		}
	}

	saved, err := store.Save(name, path)
	if err != nil {
		return err
	}
	if saved != name {
		a.ui().Muted("name sanitized to %q", saved)
	}
	abs, _ := filepath.Abs(path) // Save가 같은 변환을 이미 성공했다
	a.ui().Success("bookmarked %s → %s", saved, abs)
	return nil
}

func validBookmarkName(s string) error {
	if bookmark.Sanitize(s) == "" {
		return fmt.Errorf("use letters, digits, '_' or '-': %w", bookmark.ErrInvalidName)
	}
	return nil
}

func (a *App) newBookmarkJumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jump [name]",
		Short: "북마크한 디렉토리로 이동한다",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return a.runBookmarkJump(name)
		},
	}
}

// runBookmarkJump는 저장된 경로가 아직 디렉토리인지 확인한 뒤 이동한다.
// name이 비어 있으면 목록에서 고른다.
func (a *App) runBookmarkJump(name string) error {
	store, err := a.bookmarks()
	if err != nil {
		return err
	}
	if name == "" {
		marks, err := store.List()
		if err != nil {
			return err
		}
		if len(marks) == 0 {
			a.ui().Muted("no bookmarks yet (mt bm save <name>)")
			return nil
		}
		opts := make([]prompt.Option, 0, len(marks))
		for _, m := range marks {
			opts = append(opts, prompt.Option{Label: m.Name + "  " + m.Path, Value: m.Name})
		}
		if name, err = a.Prompter.Select("Jump to", opts); err != nil {
			return err
		}
	}

	path, err := store.Resolve(name)
	if err != nil {
		return err
	}
	if err := bookmark.CheckDir(path); err != nil {
		return fmt.Errorf("cli.bm.jump: %q: %w", name, err)
	}
	return a.changeDir(path, "")
}

func (a *App) newBookmarkListCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "북마크 목록을 출력한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBookmarkList(output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "출력 형식 (table, json, yaml)")
	return cmd
}

func (a *App) runBookmarkList(output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	store, err := a.bookmarks()
	if err != nil {
		return err
	}
	marks, err := store.List()
	if err != nil {
		return err
	}

	p := a.ui()
	switch output {
	case outputJSON:
		return p.JSON(marks)
	case outputYAML:
		return p.YAML(marks)
	}
	if len(marks) == 0 {
		p.Muted("no bookmarks yet (mt bm save <name>)")
		return nil
	}
	width := 0
	for _, m := range marks {
		width = max(width, len(m.Name))
	}
	for _, m := range marks {
		line := fmt.Sprintf("%-*s  %s", width, m.Name, m.Path)
		if bookmark.CheckDir(m.Path) != nil {
			p.Muted("%s  (missing)", line)
			continue
		}
		p.Info("%s", line)
	}
	return nil
}

func (a *App) newBookmarkDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "북마크를 삭제한다",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBookmarkDelete(args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "확인 없이 진행")
	return cmd
}

func (a *App) runBookmarkDelete(name string, yes bool) error {
	store, err := a.bookmarks()
	if err != nil {
		return err
	}
	path, err := store.Resolve(name)
	if err != nil {
		return err
	}
	ok, err := a.confirm(yes, "Delete bookmark %s (%s)?", name, path)
	if err != nil || !ok {
		return err
	}
	if err := store.Delete(name); err != nil {
		return err
	}
	a.ui().Success("deleted bookmark %s", name)
	return nil
}
