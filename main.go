package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var (
		levelName = flag.String("level", "arena.yaml", "level prefab to load")
		debug     = flag.Bool("debug", false, "start with perception debug overlays on")
	)
	flag.Parse()

	game, err := NewGame(*levelName, *debug)
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	if game.watcher != nil {
		defer game.watcher.Close()
	}

	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("holdout AI sandbox")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("main: %v", err)
	}
}
