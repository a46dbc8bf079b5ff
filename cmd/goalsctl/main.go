package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/careercoach-backend/internal/app"
	"github.com/yungbote/careercoach-backend/internal/cli"
	"github.com/yungbote/careercoach-backend/internal/platform/shutdown"
)

func main() {
	// Engine logs go to stderr; keep them quiet unless asked.
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "warn")
	}
	log, err := app.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	root := cli.NewRootCommand(&cli.RootOptions{Open: cli.DefaultOpener(log)})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
