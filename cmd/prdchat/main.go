package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/prdchat/internal/cli"
	"github.com/alexanderramin/prdchat/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env in the working directory is optional.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Config:       cfg,
		In:           os.Stdin,
		Out:          os.Stdout,
		PromptAPIKey: cli.PromptAPIKey,
	}

	// Detect interactive terminal to choose between the chat UI and line mode.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	err = rootCmd.ExecuteContext(ctx)
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
	return err
}
