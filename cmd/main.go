package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/careercoach-backend/internal/app"
	"github.com/yungbote/careercoach-backend/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	if err := a.Start(); err != nil {
		a.Log.Error("start failed", "error", err)
		closeApp(a)
		os.Exit(1)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run() }()

	exitCode := 0
	select {
	case <-ctx.Done():
		a.Log.Info("Shutdown signal received")
	case err := <-runErr:
		if err != nil {
			a.Log.Error("server exited", "error", err)
			exitCode = 1
		}
	}
	if err := closeApp(a); err != nil {
		exitCode = 1
	}
	os.Exit(exitCode)
}

func closeApp(a *app.App) error {
	ctx, cancel := shutdown.GraceContext(shutdown.DefaultGrace)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		fmt.Printf("shutdown: %v\n", err)
		return err
	}
	return nil
}
