package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrtamaki/mt/internal/dns"
)

func (a *App) newDNSCmd() *cobra.Command {
	flush := &cobra.Command{
		Use:   "flush",
		Short: "macOS DNS 캐시를 비운다 (sudo 필요)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDNSFlush(cmd.Context())
		},
	}
	return newGroupCmd("dns", "DNS 캐시", flush)
}

func (a *App) runDNSFlush(ctx context.Context) error {
	f := &dns.Flusher{Commander: a.Commander}
	steps, err := f.Flush(ctx)
	for _, s := range steps {
		a.ui().Muted("ran: sudo %s", s)
	}
	if err != nil {
		return err
	}
	a.ui().Success("DNS cache flushed")
	return nil
}
