package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/config"
	"github.com/mrtamaki/mt/internal/prompt"
	"github.com/mrtamaki/mt/internal/proxy"
	"github.com/mrtamaki/mt/internal/ui"
)

func (a *App) newSetupCmd() *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "mt 설정 파일을 만든다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSetup(defaults)
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "묻지 않고 기본값으로 만든다")
	return cmd
}

// runSetup는 테마와 프록시 업스트림을 물어 config.toml을 생성한다.
// 자격 증명은 파일에 쓰지 않는다.
func (a *App) runSetup(defaults bool) error {
	if _, err := os.Stat(a.CfgPath); err == nil {
		return fmt.Errorf("cli.setup: config already exists: %s: %w", a.CfgPath, ErrConfig)
	}

	cfg := config.Default()
	if !defaults {
		if err := a.askSetup(cfg); err != nil {
			return err
		}
	}

	if err := config.Save(a.CfgPath, cfg); err != nil {
		return err
	}
	p := a.ui()
	p.Success("config written: %s", a.CfgPath)
	p.Info("set %s, %s and %s in the environment or in %s/.env",
		config.EnvLookupKey, config.EnvProxyUser, config.EnvProxyPass, config.DefaultDir())
	p.Info("then run `mt doctor` to check the environment")
	return nil
}

func (a *App) askSetup(cfg *config.Config) error {
	var themes []prompt.Option
	for _, name := range ui.ThemeNames() {
		themes = append(themes, prompt.Option{Label: name, Value: name})
	}
	theme, err := a.Prompter.Select("Menu theme", themes)
	if err != nil {
		return err
	}
	cfg.Theme = theme

	host, err := a.Prompter.Input("Proxy host (empty to skip)", "proxy.example.net", nil)
	if err != nil {
		return err
	}
	if host == "" {
		return nil
	}
	cfg.Proxy.Host = host

	port, err := a.Prompter.Input("Proxy port", "8080", validPort)
	if err != nil {
		return err
	}
	cfg.Proxy.Port, _ = strconv.Atoi(port) // validPort가 확인했다
	return nil
}

func validPort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return proxy.ErrInvalidPort
	}
	return nil
}
