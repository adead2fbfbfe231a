package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/reputation"
)

func (a *App) newIPCmd() *cobra.Command {
	return newGroupCmd("ip", "IP 주소 정보",
		a.newIPCheckCmd(),
	)
}

func (a *App) newIPCheckCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check <ip>",
		Short: "IP 평판(VPN, 프록시, 호스팅 여부)을 조회한다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIPCheck(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "출력 형식 (table, json, yaml)")
	return cmd
}

func (a *App) runIPCheck(ctx context.Context, ip, output string) error {
	if err := checkOutput(output); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}

	checker := reputation.New(cfg.Reputation.URL, cfg.Reputation.Token, cfg.Timeout(), cfg.RetryCount())
	checker.HTTP.Logger = a.Logger
	report, err := checker.Check(ctx, ip)
	if err != nil {
		return err
	}

	switch output {
	case outputJSON:
		return a.ui().JSON(report)
	case outputYAML:
		return a.ui().YAML(report)
	}

	p := a.ui()
	p.Title("IP %s", report.IP)
	kv := map[string]string{
		"verdict": report.Verdict(),
	}
	for k, v := range map[string]string{
		"hostname": report.Hostname,
		"location": joinNonEmpty(", ", report.City, report.Region, report.Country),
		"org":      report.Org,
		"flags":    strings.Join(report.Flags(), ", "),
	} {
		if v != "" {
			kv[k] = v
		}
	}
	p.KeyValues(kv)
	if report.Privacy == nil && !report.Bogon {
		p.Muted("privacy data needs an %s token", "IPINFO_TOKEN")
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}

// 출력 형식.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func checkOutput(output string) error {
	switch output {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("%w: --output must be table, json or yaml, got %q", ErrUsage, output)
	}
}
