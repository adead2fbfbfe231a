package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/lookup"
)

// lookupFlags는 모든 lookup 하위 명령이 공유하는 출력 옵션이다.
type lookupFlags struct {
	raw       bool
	noSummary bool
	output    string
	timeout   int
}

func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.raw, "raw", false, "한 줄 JSON 그대로 출력")
	cmd.Flags().BoolVar(&f.noSummary, "no-summary", false, "요약 표 없이 JSON 출력")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputTable, "출력 형식 (table, json, yaml)")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "요청 제한 시간(초). 0이면 설정값")
}

func (a *App) newLookupCmd() *cobra.Command {
	var f lookupFlags
	return newGroupCmd("lookup", "1lookup API 조회 (ONELOOKUP_API_KEY 필요)",
		a.newLookupIPCmd(&f),
		a.newLookupEmailCmd(&f),
		a.newLookupEmailAppendCmd(&f),
		a.newLookupReverseEmailCmd(&f),
		a.newLookupReverseIPCmd(&f),
	)
}

type lookupCall func(ctx context.Context, c *lookup.Client) (lookup.Result, error)

func validIP(s string) func() error {
	return func() error {
		_, err := lookup.ValidateIP(s)
		return err
	}
}

func validEmail(s string) func() error {
	return func() error {
		_, err := lookup.ValidateEmail(s)
		return err
	}
}

// runLookup은 입력을 검증하고 키를 확인한 뒤 호출 결과를 형식에 맞게 출력한다.
// 잘못된 입력은 키가 없어도 검증 에러로 보고된다.
func (a *App) runLookup(ctx context.Context, f *lookupFlags, title string, validate func() error, call lookupCall) error {
	if err := checkOutput(f.output); err != nil {
		return err
	}
	if f.timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", ErrUsage)
	}
	if err := validate(); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	key, err := cfg.RequireLookupKey()
	if err != nil {
		return err
	}
	timeout := cfg.Timeout()
	if f.timeout > 0 {
		timeout = time.Duration(f.timeout) * time.Second
	}

	client := lookup.New(cfg.Lookup.BaseURL, key, timeout, cfg.RetryCount())
	client.HTTP.Logger = a.Logger
	res, err := call(ctx, client)
	if err != nil {
		return err
	}

	p := a.ui()
	switch {
	case f.raw:
		return p.RawJSON(res)
	case f.output == outputYAML:
		return p.YAML(res)
	case f.noSummary || f.output == outputJSON:
		return p.JSON(res)
	}

	p.Title("%s", title)
	kv := make(map[string]string)
	for _, field := range lookup.Flatten(res) {
		kv[field.Key] = field.Value
	}
	if len(kv) == 0 {
		p.Muted("empty response")
		return nil
	}
	p.KeyValues(kv)
	return nil
}

func (a *App) newLookupIPCmd(f *lookupFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ip <ip>",
		Short: "IP 주소 정보와 위험도를 조회한다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLookup(cmd.Context(), f, "IP Lookup: "+args[0], validIP(args[0]), func(ctx context.Context, c *lookup.Client) (lookup.Result, error) {
				return c.IP(ctx, args[0])
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) newLookupEmailCmd(f *lookupFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email <email>",
		Short: "이메일 주소를 검증한다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLookup(cmd.Context(), f, "Email Verification: "+args[0], validEmail(args[0]), func(ctx context.Context, c *lookup.Client) (lookup.Result, error) {
				return c.Email(ctx, args[0])
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) newLookupEmailAppendCmd(f *lookupFlags) *cobra.Command {
	var in lookup.AppendInput
	cmd := &cobra.Command{
		Use:   "email-append",
		Short: "이름과 주소로 이메일을 찾는다",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"first", "last", "city", "zip"} {
				if !cmd.Flags().Changed(name) {
					return fmt.Errorf("%w: required flag --%s not set", ErrUsage, name)
				}
			}
			title := fmt.Sprintf("Email Append: %s %s", in.FirstName, in.LastName)
			return a.runLookup(cmd.Context(), f, title, in.Validate, func(ctx context.Context, c *lookup.Client) (lookup.Result, error) {
				return c.EmailAppend(ctx, in)
			})
		},
	}
	cmd.Flags().StringVar(&in.FirstName, "first", "", "이름")
	cmd.Flags().StringVar(&in.LastName, "last", "", "성")
	cmd.Flags().StringVar(&in.City, "city", "", "도시")
	cmd.Flags().StringVar(&in.Zip, "zip", "", "우편번호")
	cmd.Flags().StringVar(&in.Address, "address", "", "주소 (선택)")
	f.register(cmd)
	return cmd
}

func (a *App) newLookupReverseEmailCmd(f *lookupFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reverse-email <email>",
		Short: "이메일로 인물 정보를 찾는다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLookup(cmd.Context(), f, "Reverse Email: "+args[0], validEmail(args[0]), func(ctx context.Context, c *lookup.Client) (lookup.Result, error) {
				return c.ReverseEmail(ctx, args[0])
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) newLookupReverseIPCmd(f *lookupFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reverse-ip <ip>",
		Short: "IP 주소로 상세 정보를 찾는다",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLookup(cmd.Context(), f, "Reverse IP: "+args[0], validIP(args[0]), func(ctx context.Context, c *lookup.Client) (lookup.Result, error) {
				return c.ReverseIP(ctx, args[0])
			})
		},
	}
	f.register(cmd)
	return cmd
}
