package config

import "sync/atomic"

// Settings holds the AI perception tunables. Values are world units and
// radians; SightConfirmDuration is seconds of continuous visibility required
// before a state reacts to seeing the player.
type Settings struct {
	SightRange           float64 `yaml:"sight_range"`
	FOVHalfAngle         float64 `yaml:"fov_half_angle"`
	HearingGunshotRange  float64 `yaml:"hearing_gunshot_range"`
	HearingFootstepRange float64 `yaml:"hearing_footstep_range"`
	SightConfirmDuration float64 `yaml:"sight_confirm_duration"`
}

// Presets maps difficulty names to settings, matching the layout of
// prefabs/settings.yaml.
type Presets struct {
	Easy   Settings `yaml:"easy"`
	Normal Settings `yaml:"normal"`
	Hard   Settings `yaml:"hard"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// For returns the preset for a difficulty, defaulting to normal.
func (p Presets) For(d Difficulty) Settings {
	switch d {
	case DifficultyEasy:
		return p.Easy
	case DifficultyHard:
		return p.Hard
	default:
		return p.Normal
	}
}

// Default returns the built-in normal-difficulty settings, used when no
// settings prefab could be loaded.
func Default() Settings {
	return Settings{
		SightRange:           18,
		FOVHalfAngle:         1.0472, // 60 degrees
		HearingGunshotRange:  30,
		HearingFootstepRange: 6,
		SightConfirmDuration: 0.6,
	}
}

// DefaultPresets returns built-in presets for all difficulties.
func DefaultPresets() Presets {
	normal := Default()

	easy := normal
	easy.SightRange = 14
	easy.FOVHalfAngle = 0.7854 // 45 degrees
	easy.HearingFootstepRange = 4
	easy.SightConfirmDuration = 1.0

	hard := normal
	hard.SightRange = 24
	hard.FOVHalfAngle = 1.3090 // 75 degrees
	hard.HearingFootstepRange = 9
	hard.SightConfirmDuration = 0.3

	return Presets{Easy: easy, Normal: normal, Hard: hard}
}

// Store is the process-wide settings provider. The settings UI replaces the
// snapshot at any time; AI code polls Snapshot once per tick and never writes.
type Store struct {
	cur atomic.Pointer[Settings]
}

// NewStore creates a store seeded with s.
func NewStore(s Settings) *Store {
	st := &Store{}
	st.cur.Store(&s)
	return st
}

// Snapshot returns the current settings by value.
func (s *Store) Snapshot() Settings {
	if s == nil {
		return Default()
	}
	p := s.cur.Load()
	if p == nil {
		return Default()
	}
	return *p
}

// Replace swaps in a new settings value.
func (s *Store) Replace(next Settings) {
	if s == nil {
		return
	}
	s.cur.Store(&next)
}
