package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/mrtamaki/mt/internal/cli"
)

// version은 빌드 시 -ldflags "-X main.version=..."로 채운다.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp()
	app.Version = version
	app.Color = isatty.IsTerminal(os.Stdout.Fd())

	cmd := app.NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !cli.Silent(err) {
		fmt.Fprintf(os.Stderr, "mt: %s\n", app.MaskError(err))
		if cli.MapExitCode(err) == cli.ExitUsage {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		}
	}
	stop()
	os.Exit(int(cli.MapExitCode(err)))
}
