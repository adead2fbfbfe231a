package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/config"
)

// NewRootCmd는 mt CLI의 루트 명령을 생성한다.
func (a *App) NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mt",
		Short:         "개인용 macOS 셸 도구 모음",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.init(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}
	if a.Version != "" {
		cmd.Version = a.Version
	}

	defaultCfg := a.CfgPath
	if defaultCfg == "" {
		defaultCfg = config.DefaultPath()
	}
	cmd.PersistentFlags().StringVar(&a.CfgPath, "config", defaultCfg, "설정 파일 경로")
	cmd.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "상세 출력")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	cmd.AddCommand(
		a.newProxyCmd(),
		a.newIPCmd(),
		a.newEnvCmd(),
		a.newDepsCmd(),
		a.newDNSCmd(),
		a.newFilesCmd(),
		a.newBookmarkCmd(),
		a.newLookupCmd(),
		a.newDoctorCmd(),
		a.newShellCmd(),
		a.newSetupCmd(),
		a.newVersionCmd(),
		a.newMenuUICmd(),
	)
	return cmd
}

// newGroupCmd는 하위 명령만 가진 명령을 만든다. 알 수 없는 하위 명령은 사용법 에러다.
func newGroupCmd(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(children...)
	return cmd
}

// usageArgs는 인자 검사 실패를 ErrUsage로 감싼다.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}
