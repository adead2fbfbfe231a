package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/doctor"
	"github.com/mrtamaki/mt/internal/shell"
)

func (a *App) newDoctorCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "환경 설정을 진단한다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "출력 형식 (table, json, yaml)")
	return cmd
}

func (a *App) runDoctor(ctx context.Context, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}

	var results []doctor.DiagResult
	in := doctor.Inputs{
		Python: "python3",
		Getenv: a.Getenv,
	}
	if sh := shell.DetectShell(a.Getenv("SHELL")); sh != "" {
		in.RCPath = shell.RCPath(a.home(), sh)
	}

	cfg, err := a.config()
	if err != nil {
		results = append(results, doctor.DiagResult{
			Name:    "config",
			Status:  doctor.StatusFail,
			Message: err.Error(),
			Fix:     "mt setup 실행 또는 " + a.CfgPath + " 확인",
		})
	} else {
		results = append(results, doctor.DiagResult{Name: "config", Status: doctor.StatusOK, Message: a.CfgPath})
		in.Python = cfg.Python
		if boot, err := a.bootstrapper(); err == nil {
			in.Envs = boot.Status()
		}
		in.Bookmarks, _ = a.bookmarks() // config가 있으면 실패하지 않는다
	}
	results = append(results, doctor.RunAll(ctx, a.Commander, in)...)

	switch output {
	case outputJSON:
		if err := a.ui().JSON(results); err != nil {
			return err
		}
	case outputYAML:
		if err := a.ui().YAML(results); err != nil {
			return err
		}
	default:
		a.printDiagResults(results)
	}

	if doctor.HasFailure(results) {
		return fmt.Errorf("cli.doctor: some checks failed")
	}
	return nil
}

// printDiagResults는 진단 결과 목록을 출력한다.
func (a *App) printDiagResults(results []doctor.DiagResult) {
	p := a.ui()
	for _, r := range results {
		p.Info("  [%s] %s: %s", statusIcon(r.Status), r.Name, MaskTokens(r.Message))
		if r.Fix != "" {
			p.Muted("      Fix: %s", r.Fix)
		}
	}
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return "OK"
	case doctor.StatusWarn:
		return "!!"
	case doctor.StatusFail:
		return "FAIL"
	default:
		return "??"
	}
}
