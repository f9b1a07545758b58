//go:build !ebiten

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"kilo/internal/app"
)

// Without the ebiten tag the viewer falls back to a terminal preview. Logs
// go to -log-file when set and are dropped otherwise so they do not tear the
// screen.
func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	logger := zap.NewNop()
	if cfg.LogFile != "" {
		l, err := cfg.Logger(true)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger = l
	}
	defer logger.Sync()

	session, err := cfg.Setup(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = app.NewTerminal(screen, session, cfg, logger).Run(ctx)
	stop()
	screen.Fini()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
