package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/menu"
	"github.com/mrtamaki/mt/internal/shell"
)

// builtinAliases는 셸 내장 명령과 겹쳐 hook에서 정의하지 않는 별칭이다.
var builtinAliases = map[string]bool{"fg": true}

// menuAlias는 hook에 넣는 메뉴 자체의 별칭이다.
const menuAlias = "fm"

func (a *App) newShellCmd() *cobra.Command {
	return newGroupCmd("shell", "셸 통합 (디렉토리 이동, 별칭)",
		a.newShellHookCmd(),
		a.newShellInstallCmd(),
	)
}

// aliasCommand는 메뉴 명령을 실행하는 mt 명령 줄이다.
func aliasCommand(c menu.Command) string {
	switch c {
	case menu.CmdBookmark:
		return "mt bm save"
	case menu.CmdJump:
		return "mt bm jump"
	default:
		return "mt files " + string(c)
	}
}

// hookAliases는 메뉴 항목의 예전 셸 함수 이름을 mt 명령에 연결한다.
func hookAliases() []shell.Alias {
	aliases := []shell.Alias{{Name: menuAlias, Command: "mt files menu"}}
	for _, e := range menu.Entries() {
		if builtinAliases[e.Alias] {
			continue
		}
		aliases = append(aliases, shell.Alias{Name: e.Alias, Command: aliasCommand(e.Command)})
	}
	return aliases
}

func (a *App) newShellHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook [zsh|bash]",
		Short: "셸 hook 스니펫을 출력한다 (eval 용)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := shell.DetectShell(a.Getenv("SHELL"))
			if len(args) == 1 {
				sh = args[0]
			}
			snippet := shell.HookSnippet(sh, hookAliases())
			if snippet == "" {
				return fmt.Errorf("cli.shell.hook: %w: %q", shell.ErrUnsupportedShell, sh)
			}
			fmt.Fprint(a.out, snippet)
			return nil
		},
	}
}

func (a *App) newShellInstallCmd() *cobra.Command {
	var shellType, rcPath string
	cmd := &cobra.Command{
		Use:   "install",
		Short: "rc 파일에 hook을 추가한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShellInstall(shellType, rcPath)
		},
	}
	cmd.Flags().StringVar(&shellType, "shell", "", "셸 유형 (zsh, bash). 비어 있으면 $SHELL")
	cmd.Flags().StringVar(&rcPath, "rc", "", "rc 파일 경로")
	return cmd
}

func (a *App) runShellInstall(shellType, rcPath string) error {
	if shellType == "" {
		shellType = shell.DetectShell(a.Getenv("SHELL"))
	}
	if rcPath == "" {
		rcPath = shell.RCPath(a.home(), shellType)
	}
	added, err := shell.Install(shellType, rcPath)
	if err != nil {
		return err
	}
	if !added {
		a.ui().Muted("hook already installed in %s", rcPath)
		return nil
	}
	a.ui().Success("hook added to %s", rcPath)
	a.ui().Info("restart the shell or run: source %s", rcPath)
	return nil
}
