package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/phys"
	"github.com/milk9111/holdout/prefabs"
)

// Level is a sandbox layout loaded from a prefab: occluder boxes, enemy
// spawn points, and the player spawn.
type Level struct {
	Spec *prefabs.LevelSpec
}

// LoadLevel loads a level prefab by filename (e.g. "arena.yaml").
func LoadLevel(name string) (*Level, error) {
	spec, err := prefabs.LoadLevelSpec(name)
	if err != nil {
		return nil, err
	}
	return &Level{Spec: spec}, nil
}

// PlayerSpawn returns the player start position.
func (l *Level) PlayerSpawn() common.Vec2 {
	if l == nil || l.Spec == nil {
		return common.Vec2{}
	}
	return common.Vec2{X: l.Spec.PlayerSpawn.X, Y: l.Spec.PlayerSpawn.Y}
}

// Populate builds the level's static collision shapes in the physics world.
func (l *Level) Populate(w *phys.World) {
	if l == nil || l.Spec == nil || w == nil {
		return
	}
	w.AddBounds(l.Spec.Width, l.Spec.Height)
	for _, box := range l.Spec.Occluders {
		w.AddOccluder(box.X, box.Y, box.Width, box.Height)
	}
}

// Draw renders the occluder boxes.
func (l *Level) Draw(screen *ebiten.Image) {
	if l == nil || l.Spec == nil || screen == nil {
		return
	}
	c := color.RGBA{R: 0x55, G: 0x55, B: 0x60, A: 0xff}
	for _, box := range l.Spec.Occluders {
		vector.DrawFilledRect(
			screen,
			float32(box.X*pixelsPerUnit),
			float32(box.Y*pixelsPerUnit),
			float32(box.Width*pixelsPerUnit),
			float32(box.Height*pixelsPerUnit),
			c,
			false,
		)
	}
}
