package main

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/holdout/ai"
	"github.com/milk9111/holdout/common"
	"github.com/milk9111/holdout/config"
	"github.com/milk9111/holdout/phys"
	"github.com/milk9111/holdout/prefabs"
)

const (
	baseWidth  = 960
	baseHeight = 720

	// world units to pixels for the top-down debug view
	pixelsPerUnit = 24

	simDT = 1.0 / 60.0

	grenadeRadius = 3.0
	grenadeDamage = 2.0

	shotFlashDuration  = 0.12
	blastFlashDuration = 0.4
)

// poseModel is the sandbox stand-in for an animated enemy model. It records
// the requested pose so the debug view can show it.
type poseModel struct {
	current string
}

func (p *poseModel) Play(pose string) {
	if p == nil {
		return
	}
	p.current = pose
}

type shotMark struct {
	from common.Vec2
	to   common.Vec2
	ttl  float64
}

type blastMark struct {
	pos    common.Vec2
	radius float64
	ttl    float64
}

type scriptedEnemy struct {
	enemy  *ai.Enemy
	script string
}

// Game is the AI sandbox: a top-down arena where the player kites a squad of
// enemies around occluders while tuning the perception settings live.
type Game struct {
	settings   *config.Store
	presets    config.Presets
	difficulty config.Difficulty

	world   *phys.World
	level   *Level
	player  *Player
	manager *ai.Manager

	scripted []scriptedEnemy
	watcher  *prefabs.Watcher

	ui           *ebitenui.UI
	showSettings bool

	shots  []shotMark
	blasts []blastMark

	debug bool
}

func NewGame(levelName string, debug bool) (*Game, error) {
	g := &Game{
		difficulty: config.DifficultyNormal,
		debug:      debug,
	}

	presets, err := prefabs.LoadSpec[config.Presets]("settings.yaml")
	if err != nil {
		log.Printf("game: settings prefab unavailable, using built-ins: %v", err)
		presets = config.DefaultPresets()
	}
	g.presets = presets
	g.settings = config.NewStore(g.presets.For(g.difficulty))

	level, err := LoadLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("game: load level: %w", err)
	}
	g.level = level

	g.world = phys.NewWorld()
	g.level.Populate(g.world)

	g.player = NewPlayer(g.level.PlayerSpawn(), g.world)

	g.manager = ai.NewManager(g.world, g.settings)
	g.manager.OnFire = func(e *ai.Enemy, target common.Vec2) {
		if e == nil {
			return
		}
		g.shots = append(g.shots, shotMark{from: e.Pos, to: target, ttl: shotFlashDuration})
	}

	for _, spawn := range g.level.Spec.Spawns {
		if err := g.spawnEnemy(spawn); err != nil {
			log.Printf("game: spawn %s: %v", spawn.Archetype, err)
		}
	}

	watcher, err := prefabs.NewWatcher("prefabs", filepath.Join("prefabs", "scripts"))
	if err != nil {
		log.Printf("game: hot reload disabled: %v", err)
	} else {
		g.watcher = watcher
	}

	g.ui = NewSettingsUI(g)
	return g, nil
}

func (g *Game) spawnEnemy(spawn prefabs.SpawnSpec) error {
	spec, err := prefabs.LoadEnemySpec(spawn.Archetype)
	if err != nil {
		return err
	}

	pos := common.Vec2{X: spawn.X, Y: spawn.Y}
	e := ai.NewEnemy(0, pos, spawn.Facing, spec.Health, spec.MoveSpeed)
	e.Archetype = spec.Name
	e.Body = g.world.AddAgent(pos, spec.Radius)
	e.Model = &poseModel{}

	if spec.Script != "" {
		machine, err := g.scriptedMachine(spec.Script)
		if err != nil {
			log.Printf("game: script %s for %s, falling back to built-in behavior: %v", spec.Script, spec.Name, err)
		} else {
			e.Machine = machine
			g.scripted = append(g.scripted, scriptedEnemy{enemy: e, script: spec.Script})
		}
	}

	g.manager.AddEnemy(e)
	return nil
}

// scriptedMachine builds a machine whose alert behavior comes from a tengo
// script. Each enemy compiles its own instance so script state never leaks.
func (g *Game) scriptedMachine(script string) (*ai.Machine, error) {
	src, err := prefabs.LoadScript(script)
	if err != nil {
		return nil, err
	}
	state, err := ai.NewScriptState(g.manager, ai.StateAlert, src)
	if err != nil {
		return nil, err
	}
	return ai.NewEnemyMachineWith(g.manager, state), nil
}

func (g *Game) applyDifficulty(d config.Difficulty) {
	g.difficulty = d
	g.settings.Replace(g.presets.For(d))
	log.Printf("game: difficulty set to %s", d)
}

// drainReloads applies any pending prefab edits without blocking the tick.
func (g *Game) drainReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ev, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(ev)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: prefab watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(ev prefabs.ReloadEvent) {
	switch ev.Kind {
	case prefabs.ReloadScript:
		g.reloadScripts()
	case prefabs.ReloadSettings:
		presets, err := prefabs.LoadSpec[config.Presets]("settings.yaml")
		if err != nil {
			log.Printf("game: reload settings: %v", err)
			return
		}
		g.presets = presets
		g.settings.Replace(g.presets.For(g.difficulty))
		log.Printf("game: reloaded settings presets")
	case prefabs.ReloadSpec:
		// archetypes and levels are read at spawn time
		log.Printf("game: %s changed; takes effect on restart", filepath.Base(ev.Path))
	}
}

// reloadScripts recompiles every scripted enemy's machine. The machine
// restarts in idle; the built-in states take over until the next alert.
func (g *Game) reloadScripts() {
	for _, se := range g.scripted {
		if se.enemy == nil || !se.enemy.Alive() {
			continue
		}
		machine, err := g.scriptedMachine(se.script)
		if err != nil {
			log.Printf("game: reload script %s: %v", se.script, err)
			continue
		}
		se.enemy.Machine = machine
		machine.Start(ai.StateIdle, se.enemy)
	}
	log.Printf("game: reloaded behavior scripts")
}

func (g *Game) Update() error {
	g.drainReloads()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.showSettings = !g.showSettings
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}

	if g.showSettings {
		g.ui.Update()
		return nil
	}

	g.player.Update(simDT)
	g.manager.SetPlayerState(
		g.player.Pos,
		g.player.Collider(),
		g.player.Moving(),
		g.player.FiredRecently(),
		g.player.Targetable,
	)
	g.manager.Update(simDT)
	g.world.Step(simDT)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		mx, my := ebiten.CursorPosition()
		at := common.Vec2{X: float64(mx) / pixelsPerUnit, Y: float64(my) / pixelsPerUnit}
		g.manager.DamageEnemiesInRadius(at, grenadeRadius, grenadeDamage)
		g.blasts = append(g.blasts, blastMark{pos: at, radius: grenadeRadius, ttl: blastFlashDuration})
	}

	g.shots = decayShots(g.shots, simDT)
	g.blasts = decayBlasts(g.blasts, simDT)
	return nil
}

func decayShots(shots []shotMark, dt float64) []shotMark {
	out := shots[:0]
	for _, s := range shots {
		s.ttl -= dt
		if s.ttl > 0 {
			out = append(out, s)
		}
	}
	return out
}

func decayBlasts(blasts []blastMark, dt float64) []blastMark {
	out := blasts[:0]
	for _, b := range blasts {
		b.ttl -= dt
		if b.ttl > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x1c, G: 0x1c, B: 0x22, A: 0xff})

	g.level.Draw(screen)

	for _, e := range g.manager.Enemies() {
		g.drawEnemy(screen, e)
	}

	g.player.Draw(screen)

	for _, s := range g.shots {
		vector.StrokeLine(
			screen,
			float32(s.from.X*pixelsPerUnit), float32(s.from.Y*pixelsPerUnit),
			float32(s.to.X*pixelsPerUnit), float32(s.to.Y*pixelsPerUnit),
			1,
			color.RGBA{R: 0xff, G: 0xe0, B: 0x66, A: 0xff},
			true,
		)
	}
	for _, b := range g.blasts {
		vector.StrokeCircle(
			screen,
			float32(b.pos.X*pixelsPerUnit), float32(b.pos.Y*pixelsPerUnit),
			float32(b.radius*pixelsPerUnit),
			2,
			color.RGBA{R: 0xff, G: 0x88, B: 0x33, A: 0xff},
			true,
		)
	}

	hud := fmt.Sprintf(
		"difficulty: %s  targetable: %t\nwasd move  lmb/space fire  rmb grenade  t toggle targetable  esc settings  f1 debug",
		g.difficulty, g.player.Targetable,
	)
	ebitenutil.DebugPrint(screen, hud)

	if g.showSettings {
		g.ui.Draw(screen)
	}
}

func (g *Game) drawEnemy(screen *ebiten.Image, e *ai.Enemy) {
	if e == nil {
		return
	}

	sx := float32(e.Pos.X * pixelsPerUnit)
	sy := float32(e.Pos.Y * pixelsPerUnit)
	radius := float32(0.4 * pixelsPerUnit)

	state := ""
	if e.Machine != nil {
		state = e.Machine.Current()
	}
	vector.DrawFilledCircle(screen, sx, sy, radius, stateColor(state), true)

	// facing tick
	fwd := e.Forward().Scale(0.8)
	vector.StrokeLine(
		screen,
		sx, sy,
		sx+float32(fwd.X*pixelsPerUnit), sy+float32(fwd.Y*pixelsPerUnit),
		1,
		color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff},
		true,
	)

	if !g.debug || !e.Alive() {
		return
	}

	s := g.manager.Settings()
	for _, off := range []float64{-s.FOVHalfAngle, s.FOVHalfAngle} {
		edge := common.FromAngle(e.FacingAngle + off).Scale(s.SightRange)
		vector.StrokeLine(
			screen,
			sx, sy,
			sx+float32(edge.X*pixelsPerUnit), sy+float32(edge.Y*pixelsPerUnit),
			1,
			color.RGBA{R: 0x44, G: 0x66, B: 0x44, A: 0xff},
			true,
		)
	}

	if e.LastKnown != nil {
		vector.StrokeCircle(
			screen,
			float32(e.LastKnown.X*pixelsPerUnit), float32(e.LastKnown.Y*pixelsPerUnit),
			4,
			1,
			color.RGBA{R: 0xcc, G: 0x44, B: 0xcc, A: 0xff},
			true,
		)
	}

	label := state
	if p := g.manager.Perception(e); p.CanSeePlayer {
		label += " (sees)"
	} else if p.CanHearPlayer {
		label += " (hears)"
	}
	ebitenutil.DebugPrintAt(screen, label, int(sx)-12, int(sy)-int(radius)-14)
}

func stateColor(state string) color.RGBA {
	switch state {
	case ai.StateAlert:
		return color.RGBA{R: 0xe0, G: 0xc0, B: 0x30, A: 0xff}
	case ai.StateAttack:
		return color.RGBA{R: 0xe0, G: 0x40, B: 0x40, A: 0xff}
	case ai.StateDead:
		return color.RGBA{R: 0x38, G: 0x38, B: 0x40, A: 0xff}
	default:
		return color.RGBA{R: 0x80, G: 0x88, B: 0x80, A: 0xff}
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
