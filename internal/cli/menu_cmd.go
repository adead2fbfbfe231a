package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/fileops"
	"github.com/mrtamaki/mt/internal/menu"
	"github.com/mrtamaki/mt/internal/prompt"
	"github.com/mrtamaki/mt/internal/ui"
)

func (a *App) newFilesMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "대화형 파일 메뉴를 연다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilesMenu(cmd.Context())
		},
	}
}

// runFilesMenu는 메뉴를 자식 프로세스로 띄우고, 자식이 끝난 뒤 선택을 실행한다.
func (a *App) runFilesMenu(ctx context.Context) error {
	exe, err := a.executable()
	if err != nil {
		return err
	}
	a.ui().Banner("file menu")

	l := &menu.Launcher{
		Commander:  a.Commander,
		Executable: exe,
		Args:       []string{"--config", a.CfgPath},
		Logger:     a.Logger,
	}
	sel, ok, err := l.Launch(ctx)
	if err != nil {
		return err
	}
	if !ok {
		a.Logger.Debug("menu closed without selection")
		return nil
	}
	return a.dispatch(ctx, sel)
}

// dispatch는 메뉴 선택을 실행한다. 추가 입력은 여기서 받는다.
func (a *App) dispatch(ctx context.Context, sel menu.Selection) error {
	if sel.Kind == menu.KindCD {
		return a.changeDir(sel.Path, "")
	}

	dir, err := cwd()
	if err != nil {
		return err
	}
	switch sel.Command {
	case menu.CmdEditRC:
		return a.runEditRC(ctx, "")
	case menu.CmdSearch:
		term, err := a.Prompter.Input("Search for", "text", prompt.NotEmpty("search term"))
		if err != nil {
			return err
		}
		return a.runSearch(ctx, dir, term, fileops.SearchOptions{Limit: defaultSearchLimit})
	case menu.CmdMkcd:
		name, err := a.Prompter.Input("Directory name", "new-dir", prompt.NotEmpty("directory name"))
		if err != nil {
			return err
		}
		return a.runMkcd(name)
	case menu.CmdLast:
		return a.runLast(ctx, dir, false)
	case menu.CmdLarge:
		return a.runLarge(dir, "")
	case menu.CmdTempDir:
		return a.runTempDir()
	case menu.CmdBackup:
		file, err := a.Prompter.Input("File to back up", "notes.txt", prompt.NotEmpty("file"))
		if err != nil {
			return err
		}
		return a.runBackup(file)
	case menu.CmdDatedDir:
		return a.runDatedDir("")
	case menu.CmdTree:
		return a.runTree(dir, 2)
	case menu.CmdBookmark:
		return a.runBookmarkSave("", dir)
	case menu.CmdJump:
		return a.runBookmarkJump("")
	default:
		return fmt.Errorf("cli.dispatch: %q: %w", sel.Command, menu.ErrUnknownCommand)
	}
}

func (a *App) newMenuUICmd() *cobra.Command {
	var resultFile, session string
	cmd := &cobra.Command{
		Use:    "menu-ui",
		Short:  "메뉴 자식 프로세스 (내부용)",
		Hidden: true,
		Args:   usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resultFile == "" || session == "" {
				return fmt.Errorf("%w: --result-file and --session are required", ErrUsage)
			}
			return a.runMenuUI(cmd.Context(), resultFile, session)
		},
	}
	cmd.Flags().StringVar(&resultFile, "result-file", "", "선택 결과를 쓸 파일")
	cmd.Flags().StringVar(&session, "session", "", "부모가 만든 세션 ID")
	return cmd
}

// runMenuUI는 메뉴를 실행하고 선택을 결과 파일에 기록한다.
// 선택 없이 끝나면 ErrNoSelection으로 0이 아닌 코드로 종료한다.
func (a *App) runMenuUI(ctx context.Context, resultFile, session string) error {
	dir, err := cwd()
	if err != nil {
		return err
	}
	opts := menu.Options{Dir: dir, Theme: ui.ThemeByName("default")}
	if cfg, err := a.config(); err == nil {
		opts.Theme = ui.ThemeByName(cfg.Theme)
		opts.Store, _ = a.bookmarks() // config가 있으면 실패하지 않는다
	} else {
		a.Logger.Warn("menu without bookmarks", "error", err)
	}

	sel, ok, err := a.RunMenu(ctx, opts)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSelection
	}

	var buf bytes.Buffer
	if err := menu.Encode(&buf, session, sel); err != nil {
		return err
	}
	if err := os.WriteFile(resultFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("cli.menu-ui: %w", err)
	}
	return nil
}
