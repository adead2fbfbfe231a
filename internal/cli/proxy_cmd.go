package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/config"
	"github.com/mrtamaki/mt/internal/httpx"
	"github.com/mrtamaki/mt/internal/proxy"
)

// bindFileName은 프록시 변환기가 홈 디렉토리에 남기는 바인딩 기록이다.
const bindFileName = ".bindproxy.json"

func (a *App) newProxyCmd() *cobra.Command {
	return newGroupCmd("proxy", "프록시 URL 생성, 연결 확인, 변환기 실행",
		a.newProxyURLCmd(),
		a.newProxyTestCmd(),
		a.newProxyConvertCmd(),
	)
}

func (a *App) newProxyURLCmd() *cobra.Command {
	var format string
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "url [user:pass@host:port]",
		Short: "프록시 URL을 출력한다",
		Long: "인자가 없으면 설정과 MT_PROXY_* 환경변수로 URL을 만든다.\n" +
			"형식: " + strings.Join(formatNames(), ", "),
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProxyURL(args, format, copyOut)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(proxy.FormatURL), "출력 형식")
	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "클립보드에 복사")
	return cmd
}

func formatNames() []string {
	var names []string
	for _, f := range proxy.Formats() {
		names = append(names, string(f))
	}
	return names
}

// proxySettings는 인자 또는 설정에서 프록시를 만든다.
func (a *App) proxySettings(args []string) (proxy.Settings, error) {
	cfg, err := a.config()
	if err != nil {
		return proxy.Settings{}, err
	}
	if len(args) == 1 {
		return proxy.Parse(args[0], cfg.Proxy.Scheme)
	}
	if err := cfg.RequireProxy(); err != nil {
		return proxy.Settings{}, err
	}
	s := proxy.Settings{
		Scheme: cfg.Proxy.Scheme,
		Host:   cfg.Proxy.Host,
		Port:   cfg.Proxy.Port,
		User:   cfg.Proxy.User,
		Pass:   cfg.Proxy.Pass,
	}
	if err := s.Validate(); err != nil {
		return proxy.Settings{}, fmt.Errorf("cli.proxy: %s/%s: %w", config.EnvProxyHost, config.EnvProxyPort, err)
	}
	return s, nil
}

func (a *App) runProxyURL(args []string, format string, copyOut bool) error {
	f, err := proxy.ParseFormat(format)
	if err != nil {
		return fmt.Errorf("cli.proxy.url: %w", err)
	}
	s, err := a.proxySettings(args)
	if err != nil {
		return err
	}
	text, err := proxy.Render(s, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, text)

	if copyOut {
		if err := a.Clipboard.WriteAll(text); err != nil {
			a.ui().Warn("clipboard unavailable: %v", err)
			return nil
		}
		a.ui().Success("copied to clipboard")
	}
	return nil
}

func (a *App) newProxyTestCmd() *cobra.Command {
	var echoURL string

	cmd := &cobra.Command{
		Use:   "test [user:pass@host:port]",
		Short: "프록시를 거쳐 외부 IP를 확인한다",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProxyTest(cmd.Context(), args, echoURL)
		},
	}
	cmd.Flags().StringVar(&echoURL, "echo-url", proxy.DefaultEchoURL, "IP를 돌려주는 URL")
	return cmd
}

func (a *App) runProxyTest(ctx context.Context, args []string, echoURL string) error {
	s, err := a.proxySettings(args)
	if err != nil {
		return err
	}
	cfg, _ := a.config() // proxySettings에서 이미 읽었다

	tester := &proxy.Tester{
		Commander: a.Commander,
		EchoURL:   echoURL,
		Timeout:   cfg.Timeout(),
		Policy:    httpx.DefaultPolicy(cfg.RetryCount()),
		Logger:    a.Logger,
	}
	a.ui().Muted("testing %s", s.Redacted())
	ip, err := tester.Test(ctx, s)
	if err != nil {
		return err
	}
	a.ui().Success("proxy works, exit IP %s", ip)
	return nil
}

func (a *App) newProxyConvertCmd() *cobra.Command {
	var clean, yes bool

	cmd := &cobra.Command{
		Use:   "convert [-- args...]",
		Short: "프록시 변환기를 proxy 환경에서 실행한다",
		Long:  "`--` 뒤의 인자는 변환 스크립트에 그대로 전달된다.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clean {
				if len(args) > 0 {
					return fmt.Errorf("%w: --clean takes no script arguments", ErrUsage)
				}
				return a.runProxyClean(yes)
			}
			return a.runProxyConvert(cmd.Context(), args)
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "바인딩 기록(~/"+bindFileName+")을 지운다")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "확인 없이 진행")
	return cmd
}

func (a *App) runProxyConvert(ctx context.Context, args []string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	boot, err := a.bootstrapper()
	if err != nil {
		return err
	}
	a.ui().Banner("proxy converter")

	conv := &proxy.Converter{Commander: a.Commander, Env: boot, Script: cfg.Proxy.Script}
	return conv.Run(ctx, args)
}

func (a *App) runProxyClean(yes bool) error {
	path := filepath.Join(a.home(), bindFileName)
	ok, err := a.confirm(yes, "Delete %s?", path)
	if err != nil || !ok {
		return err
	}
	removed, err := proxy.RemoveBindFile(path)
	if err != nil {
		return err
	}
	if !removed {
		a.ui().Muted("%s does not exist", path)
		return nil
	}
	a.ui().Success("removed %s", path)
	return nil
}
