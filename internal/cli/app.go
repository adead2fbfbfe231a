package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mrtamaki/mt/internal/bookmark"
	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/config"
	"github.com/mrtamaki/mt/internal/menu"
	"github.com/mrtamaki/mt/internal/prompt"
	"github.com/mrtamaki/mt/internal/shell"
	"github.com/mrtamaki/mt/internal/spin"
	"github.com/mrtamaki/mt/internal/ui"
	"github.com/mrtamaki/mt/internal/venv"
)

// installWarnAfter는 pip 설치가 이 시간을 넘기면 스피너가 경고를 낸다.
const installWarnAfter = 5 * time.Minute

// App은 한 번의 mt 실행에 필요한 의존성을 보관한다.
// 비어 있는 필드는 NewRootCmd 실행 시점에 기본값으로 채워진다.
type App struct {
	Commander cmdexec.Commander
	CfgPath   string
	Verbose   bool
	Color     bool
	Version   string

	Prompter  prompt.Prompter
	Clipboard ui.Clipboard
	Logger    *slog.Logger

	// Home은 ~ 대신 쓰는 디렉토리다. 비어 있으면 os.UserHomeDir().
	Home string
	// Executable은 메뉴 자식 프로세스로 실행할 바이너리다. 비어 있으면 os.Executable().
	Executable string
	Getenv     func(string) string
	Now        func() time.Time
	// RunMenu는 menu-ui가 호출하는 대화형 메뉴다. 비어 있으면 menu.Run.
	RunMenu func(ctx context.Context, opts menu.Options) (menu.Selection, bool, error)

	out     io.Writer
	errOut  io.Writer
	printer *ui.Printer
	cfg     *config.Config
	cfgErr  error
	boot    *venv.Bootstrapper
}

// NewApp은 실제 명령 실행기와 터미널 프롬프트를 쓰는 App을 생성한다.
func NewApp() *App {
	return &App{
		Commander: &cmdexec.RealCommander{},
		Prompter:  &prompt.HuhPrompter{},
		Clipboard: ui.SystemClipboard{},
	}
}

// init은 실행 직전에 출력 대상과 빈 의존성을 채운다.
func (a *App) init(out, errOut io.Writer) {
	a.out, a.errOut = out, errOut
	a.printer = nil
	if a.Commander == nil {
		a.Commander = &cmdexec.RealCommander{}
	}
	if a.Prompter == nil {
		a.Prompter = &prompt.HuhPrompter{}
	}
	if a.Clipboard == nil {
		a.Clipboard = ui.SystemClipboard{}
	}
	if a.Logger == nil {
		level := slog.LevelWarn
		if a.Verbose {
			level = slog.LevelDebug
		}
		a.Logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	}
	if a.Getenv == nil {
		a.Getenv = os.Getenv
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.RunMenu == nil {
		a.RunMenu = menu.Run
	}
	if a.CfgPath == "" {
		a.CfgPath = config.DefaultPath()
	}
}

// config는 설정을 한 번만 읽는다. 실패도 기억한다.
func (a *App) config() (*config.Config, error) {
	if a.cfg == nil && a.cfgErr == nil {
		a.cfg, a.cfgErr = config.Load(a.CfgPath)
		if a.cfgErr == nil {
			a.Logger.Debug("config loaded", "path", a.CfgPath, "theme", a.cfg.Theme)
		}
	}
	return a.cfg, a.cfgErr
}

// ui는 설정된 테마를 쓰는 Printer를 반환한다. 설정을 읽지 못하면 기본 테마다.
func (a *App) ui() *ui.Printer {
	if a.printer == nil {
		theme := ui.ThemeByName("default")
		if cfg, err := a.config(); err == nil {
			theme = ui.ThemeByName(cfg.Theme)
		}
		a.printer = ui.NewPrinter(a.out, a.errOut, theme, a.Color)
	}
	return a.printer
}

func (a *App) bookmarks() (*bookmark.Store, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return bookmark.NewStore(cfg.BookmarksFile), nil
}

// bootstrapper는 프로세스 안에서 인터프리터 캐시를 공유하도록 하나만 만든다.
func (a *App) bootstrapper() (*venv.Bootstrapper, error) {
	if a.boot != nil {
		return a.boot, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	b := venv.New(cfg.EnvsDir, cfg.Python, a.Commander)
	b.Waiter = spin.New(a.errOut, installWarnAfter)
	b.Logger = a.Logger
	a.boot = b
	return b, nil
}

func (a *App) home() string {
	if a.Home != "" {
		return a.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		a.Logger.Warn("home directory lookup failed", "error", err)
		return "."
	}
	return home
}

func (a *App) executable() (string, error) {
	if a.Executable != "" {
		return a.Executable, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cli.executable: %w", err)
	}
	return filepath.Clean(exe), nil
}

// changeDir는 셸 hook이 실행할 cd 명령을 남긴다. hook 밖이면 stdout에 출력하므로
// 안내 문구는 stderr로 보낸다.
func (a *App) changeDir(path, note string) error {
	hooked, err := shell.Emit(a.Getenv(shell.EnvEvalFile), a.out, shell.Cd(path))
	if err != nil {
		return err
	}
	if hooked {
		if note != "" {
			a.ui().Success("%s", note)
		}
		return nil
	}
	if note != "" {
		fmt.Fprintln(a.errOut, note)
	}
	fmt.Fprintln(a.errOut, "hint: run `mt shell install` so mt can change the current directory")
	return nil
}

// confirm은 기본값 아니오로 묻는다. assumeYes면 묻지 않는다.
// 거절하면 안내를 출력하고 false를 반환한다.
func (a *App) confirm(assumeYes bool, format string, args ...any) (bool, error) {
	if assumeYes {
		return true, nil
	}
	ok, err := a.Prompter.Confirm(fmt.Sprintf(format, args...))
	if err != nil {
		return false, err
	}
	if !ok {
		a.ui().Muted("cancelled, nothing changed")
	}
	return ok, nil
}
