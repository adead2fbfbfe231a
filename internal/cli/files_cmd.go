package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/fileops"
	"github.com/mrtamaki/mt/internal/shell"
)

const defaultSearchLimit = 200

func (a *App) newFilesCmd() *cobra.Command {
	return newGroupCmd("files", "파일 도구와 대화형 파일 메뉴",
		a.newFilesMenuCmd(),
		a.newSearchCmd(),
		a.newMkcdCmd(),
		a.newLastCmd(),
		a.newLargeCmd(),
		a.newBackupCmd(),
		a.newDatedDirCmd(),
		a.newTempDirCmd(),
		a.newTreeCmd(),
		a.newEditRCCmd(),
	)
}

func cwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cli: current directory: %w", err)
	}
	return dir, nil
}

// dirArg는 선택 인자 디렉토리를 돌려준다. 없으면 현재 디렉토리다.
func dirArg(args []string, i int) (string, error) {
	if len(args) > i {
		return filepath.Abs(args[i])
	}
	return cwd()
}

func (a *App) newSearchCmd() *cobra.Command {
	var opts fileops.SearchOptions
	cmd := &cobra.Command{
		Use:   "search <term> [dir]",
		Short: "하위 파일에서 텍스트를 찾는다",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args, 1)
			if err != nil {
				return err
			}
			return a.runSearch(cmd.Context(), dir, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Glob, "glob", "g", "", "파일 이름 패턴 (예: '*.go')")
	cmd.Flags().BoolVarP(&opts.IgnoreCase, "ignore-case", "i", false, "대소문자 무시")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", defaultSearchLimit, "최대 결과 수 (0은 무제한)")
	return cmd
}

func (a *App) runSearch(ctx context.Context, dir, term string, opts fileops.SearchOptions) error {
	matches, err := fileops.Search(ctx, dir, term, opts)
	if err != nil {
		return err
	}
	p := a.ui()
	if len(matches) == 0 {
		p.Muted("no matches for %q", term)
		return nil
	}
	for _, m := range matches {
		rel, err := filepath.Rel(dir, m.Path)
		if err != nil {
			rel = m.Path
		}
		p.Info("%s:%d: %s", rel, m.Line, m.Text)
	}
	if opts.Limit > 0 && len(matches) >= opts.Limit {
		p.Muted("stopped after %d matches (use --limit to change)", opts.Limit)
	}
	return nil
}

func (a *App) newMkcdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkcd <dir>",
		Short: "디렉토리를 만들고 이동한다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMkcd(args[0])
		},
	}
}

func (a *App) runMkcd(name string) error {
	dir, err := fileops.MakeDir(name)
	if err != nil {
		return err
	}
	return a.changeDir(dir, "created "+dir)
}

func (a *App) newLastCmd() *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "last [dir]",
		Short: "가장 최근에 수정된 파일을 연다",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args, 0)
			if err != nil {
				return err
			}
			return a.runLast(cmd.Context(), dir, printOnly)
		},
	}
	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "열지 않고 경로만 출력")
	return cmd
}

func (a *App) runLast(ctx context.Context, dir string, printOnly bool) error {
	f, err := fileops.LastModified(dir)
	if err != nil {
		return err
	}
	p := a.ui()
	p.Info("%s  %s  %s", f.Path, units.HumanSize(float64(f.Size)), f.ModTime.Format("2006-01-02 15:04"))
	if printOnly {
		return nil
	}
	if _, err := a.Commander.LookPath("open"); err != nil {
		p.Warn("cannot open files here: %v", err)
		return nil
	}
	return a.Commander.RunInteractive(ctx, "open", f.Path)
}

func (a *App) newLargeCmd() *cobra.Command {
	var threshold string
	cmd := &cobra.Command{
		Use:   "large [dir]",
		Short: "기준보다 큰 파일을 찾는다",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args, 0)
			if err != nil {
				return err
			}
			return a.runLarge(dir, threshold)
		},
	}
	cmd.Flags().StringVarP(&threshold, "threshold", "t", "", "크기 기준 (예: 50MB). 비어 있으면 설정값")
	return cmd
}

func (a *App) runLarge(dir, threshold string) error {
	var limit int64
	if threshold != "" {
		n, err := units.FromHumanSize(threshold)
		if err != nil {
			return fmt.Errorf("%w: --threshold %q: %v", ErrUsage, threshold, err)
		}
		limit = n
	} else {
		cfg, err := a.config()
		if err != nil {
			return err
		}
		if limit, err = cfg.ThresholdBytes(); err != nil {
			return err
		}
	}

	files, err := fileops.LargeFiles(dir, limit)
	if err != nil {
		return err
	}
	p := a.ui()
	if len(files) == 0 {
		p.Muted("no files larger than %s", units.HumanSize(float64(limit)))
		return nil
	}
	p.Title("%d files larger than %s", len(files), units.HumanSize(float64(limit)))
	for _, f := range files {
		rel, err := filepath.Rel(dir, f.Path)
		if err != nil {
			rel = f.Path
		}
		p.Info("%10s  %s", units.HumanSize(float64(f.Size)), rel)
	}
	return nil
}

func (a *App) newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "파일의 타임스탬프 백업을 만든다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBackup(args[0])
		},
	}
}

func (a *App) runBackup(path string) error {
	dst, err := fileops.Backup(path, a.Now())
	if err != nil {
		return err
	}
	a.ui().Success("backup created: %s", dst)
	return nil
}

func (a *App) newDatedDirCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "dated-dir",
		Short: "Desktop에 날짜 폴더를 만들고 이동한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDatedDir(base)
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "상위 디렉토리 (기본 ~/Desktop)")
	return cmd
}

func (a *App) runDatedDir(base string) error {
	if base == "" {
		base = filepath.Join(a.home(), "Desktop")
	}
	dir, err := fileops.DatedDir(base, a.Now())
	if err != nil {
		return err
	}
	return a.changeDir(dir, "created "+dir)
}

func (a *App) newTempDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tempdir",
		Short: "임시 디렉토리를 만들고 이동한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTempDir()
		},
	}
}

func (a *App) runTempDir() error {
	dir, err := fileops.TempDir()
	if err != nil {
		return err
	}
	return a.changeDir(dir, "created "+dir)
}

func (a *App) newTreeCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree [dir]",
		Short: "디렉토리 트리를 출력한다",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args, 0)
			if err != nil {
				return err
			}
			return a.runTree(dir, depth)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 2, "깊이")
	return cmd
}

func (a *App) runTree(dir string, depth int) error {
	out, err := fileops.Tree(dir, depth)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, out)
	return nil
}

func (a *App) newEditRCCmd() *cobra.Command {
	var rc string
	cmd := &cobra.Command{
		Use:   "edit-rc",
		Short: "셸 rc 파일을 백업하고 에디터로 연다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEditRC(cmd.Context(), rc)
		},
	}
	cmd.Flags().StringVar(&rc, "rc", "", "편집할 파일 (기본: 설정의 rc_file)")
	return cmd
}

func (a *App) runEditRC(ctx context.Context, rc string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	if rc == "" {
		rc = cfg.RCFile
	}

	editor := &fileops.RCEditor{
		Commander: a.Commander,
		Editor:    cfg.Editor,
		Now:       a.Now,
		Logger:    a.Logger,
	}
	res, err := editor.Edit(ctx, rc)
	if err != nil {
		return err
	}
	p := a.ui()
	p.Muted("backup: %s", res.Backup)
	if !res.Changed {
		p.Muted("%s unchanged", rc)
		return nil
	}
	hooked, err := shell.Emit(a.Getenv(shell.EnvEvalFile), a.out, shell.Source(rc))
	if err != nil {
		return err
	}
	if hooked {
		p.Success("%s changed, reloaded", rc)
	}
	return nil
}
