package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/venv"
)

func (a *App) newEnvCmd() *cobra.Command {
	return newGroupCmd("env", "기능별 Python 가상환경을 관리한다",
		a.newEnvListCmd(),
		a.newEnvEnsureCmd(),
		a.newEnvPurgeCmd(),
		a.newEnvDeleteCmd(),
	)
}

func featureNames() string {
	var names []string
	for _, f := range venv.Features() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

func (a *App) newEnvListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "환경 상태를 표시한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEnvList()
		},
	}
}

func (a *App) runEnvList() error {
	boot, err := a.bootstrapper()
	if err != nil {
		return err
	}
	p := a.ui()
	for _, s := range boot.Status() {
		state := "missing"
		switch {
		case s.Ready:
			state = "ready"
		case s.Exists:
			state = "incomplete"
		}
		p.Info("  %-8s %-10s %s  (%s)", s.Feature, state, s.Dir, strings.Join(s.Feature.Packages(), " "))
	}
	return nil
}

func (a *App) newEnvEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure <feature>",
		Short: "환경을 만들고 패키지를 설치한다 (" + featureNames() + ")",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEnvEnsure(cmd.Context(), args[0])
		},
	}
}

func (a *App) runEnvEnsure(ctx context.Context, name string) error {
	f, err := venv.ParseFeature(name)
	if err != nil {
		return err
	}
	boot, err := a.bootstrapper()
	if err != nil {
		return err
	}
	interp, err := boot.Ensure(ctx, f)
	if err != nil {
		return err
	}
	a.ui().Success("%s environment ready: %s", f, interp)
	return nil
}

func (a *App) newEnvPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge <feature>",
		Short: "환경의 패키지를 모두 제거한다 (pip, setuptools, wheel 제외)",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := venv.ParseFeature(args[0])
			if err != nil {
				return err
			}
			return a.runPurge(cmd.Context(), []venv.Feature{f}, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "확인 없이 진행")
	return cmd
}

func (a *App) newEnvDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <feature>",
		Short: "환경 디렉토리를 삭제한다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEnvDelete(args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "확인 없이 진행")
	return cmd
}

func (a *App) runEnvDelete(name string, yes bool) error {
	f, err := venv.ParseFeature(name)
	if err != nil {
		return err
	}
	boot, err := a.bootstrapper()
	if err != nil {
		return err
	}
	ok, err := a.confirm(yes, "Delete the %s environment at %s?", f, boot.Dir(f))
	if err != nil || !ok {
		return err
	}
	removed, err := boot.Delete(f)
	if err != nil {
		return err
	}
	if !removed {
		a.ui().Muted("%s environment does not exist", f)
		return nil
	}
	a.ui().Success("deleted %s environment", f)
	return nil
}

func (a *App) newDepsCmd() *cobra.Command {
	var yes bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "만들어진 모든 환경의 패키지를 제거한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPurge(cmd.Context(), venv.Features(), yes)
		},
	}
	purge.Flags().BoolVarP(&yes, "yes", "y", false, "확인 없이 진행")
	return newGroupCmd("deps", "helper 스크립트 의존성 관리", purge)
}

// runPurge는 한 번 확인한 뒤 features의 패키지를 제거한다.
// 만들어지지 않은 환경은 건너뛴다. 단일 기능이면 없을 때 에러다.
func (a *App) runPurge(ctx context.Context, features []venv.Feature, yes bool) error {
	boot, err := a.bootstrapper()
	if err != nil {
		return err
	}

	var names []string
	for _, f := range features {
		names = append(names, f.String())
	}
	ok, err := a.confirm(yes, "Uninstall all packages from %s?", strings.Join(names, ", "))
	if err != nil || !ok {
		return err
	}

	p := a.ui()
	for _, f := range features {
		removed, err := boot.Purge(ctx, f)
		switch {
		case errors.Is(err, venv.ErrNotCreated) && len(features) > 1:
			p.Muted("%s: not created, skipped", f)
			continue
		case err != nil:
			return err
		}
		if len(removed) == 0 {
			p.Muted("%s: nothing to remove", f)
			continue
		}
		p.Success("%s: removed %d packages (%s)", f, len(removed), strings.Join(removed, ", "))
	}
	return nil
}
