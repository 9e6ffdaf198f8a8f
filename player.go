package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/phys"
)

const (
	playerSpeed  = 4.5
	playerRadius = 0.4
	// how long after the trigger a shot stays audible to AI hearing
	gunshotWindow = 0.5
)

// Player is the sandbox-controlled target the AI hunts. Its movement and
// fire state feed the perception inputs each tick.
type Player struct {
	Pos        common.Vec2
	Targetable bool

	body       *phys.Agent
	moving     bool
	fireWindow float64
}

func NewPlayer(pos common.Vec2, world *phys.World) *Player {
	p := &Player{
		Pos:        pos,
		Targetable: true,
	}
	if world != nil {
		p.body = world.AddAgent(pos, playerRadius)
	}
	return p
}

// Update polls input, moves the player, and syncs the physics body.
func (p *Player) Update(dt float64) {
	if p == nil {
		return
	}

	var dir common.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dir.X -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		dir.X += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		dir.Y -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		dir.Y += 1
	}

	p.moving = dir.Len() > 0
	if p.moving {
		p.Pos = p.Pos.Add(dir.Normalized().Scale(playerSpeed * dt))
	}
	if p.body != nil {
		p.body.SetPosition(p.Pos)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		p.fireWindow = gunshotWindow
	}
	if p.fireWindow > 0 {
		p.fireWindow -= dt
		if p.fireWindow < 0 {
			p.fireWindow = 0
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		p.Targetable = !p.Targetable
	}
}

// Collider returns the player's shape identity for LOS disambiguation.
func (p *Player) Collider() phys.Collider {
	if p == nil || p.body == nil {
		return nil
	}
	return p.body.Collider()
}

// Moving reports whether the player makes footstep noise this tick.
func (p *Player) Moving() bool {
	return p != nil && p.moving
}

// FiredRecently reports whether a gunshot is still audible.
func (p *Player) FiredRecently() bool {
	return p != nil && p.fireWindow > 0
}

// Draw renders the player marker.
func (p *Player) Draw(screen *ebiten.Image) {
	if p == nil || screen == nil {
		return
	}
	c := color.RGBA{R: 0x3a, G: 0xa0, B: 0xff, A: 0xff}
	if !p.Targetable {
		c = color.RGBA{R: 0x3a, G: 0xa0, B: 0xff, A: 0x60}
	}
	vector.DrawFilledCircle(screen, float32(p.Pos.X*pixelsPerUnit), float32(p.Pos.Y*pixelsPerUnit), float32(playerRadius*pixelsPerUnit), c, true)
}
