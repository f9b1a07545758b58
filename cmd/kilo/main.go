//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"go.uber.org/zap"

	"kilo/internal/app"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	logger, err := cfg.Logger(true)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	session, err := cfg.Setup(logger)
	if err != nil {
		logger.Fatal("setup failed", zap.Error(err))
	}

	game := app.New(session, cfg, logger)
	ebiten.SetWindowTitle("kilo - " + session.Mode().String())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(game.WindowSize())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("game exited", zap.Error(err))
	}
}
