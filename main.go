package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/arena/config"
	"github.com/milk9111/arena/logging"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.Path("config/arena.toml"), "path to the TOML config")
	mapName := flag.String("map", "", "map to load when skipping the menu (overrides game.default_map)")
	modeName := flag.String("mode", "", "built-in mode name or .tengo script (overrides game.default_mode)")
	skipMenu := flag.Bool("skip-menu", false, "go straight to the arena")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *mapName != "" {
		cfg.Game.DefaultMap = *mapName
	}
	if *modeName != "" {
		cfg.Game.DefaultMode = *modeName
	}
	if *skipMenu {
		cfg.Game.SkipMenu = true
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Game.ScreenWidth, cfg.Game.ScreenHeight)
	ebiten.SetWindowTitle(cfg.Game.Title)
	ebiten.SetTPS(cfg.Game.TickRate)

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal("start game", zap.Error(err))
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run game", zap.Error(err))
	}
}
