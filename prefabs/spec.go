package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadSpec loads and unmarshals a yaml prefab into T.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// EnemySpec describes an enemy archetype. Script, when set, names a tengo
// file under prefabs/scripts that replaces the built-in alert behavior.
type EnemySpec struct {
	Name      string  `yaml:"name"`
	Health    float64 `yaml:"health"`
	MoveSpeed float64 `yaml:"move_speed"`
	Radius    float64 `yaml:"radius"`
	Script    string  `yaml:"script"`
}

// LoadEnemySpec loads an enemy archetype by prefab filename.
func LoadEnemySpec(filename string) (*EnemySpec, error) {
	spec, err := LoadSpec[EnemySpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Health <= 0 {
		spec.Health = 3
	}
	if spec.MoveSpeed <= 0 {
		spec.MoveSpeed = 3
	}
	if spec.Radius <= 0 {
		spec.Radius = 0.4
	}
	return &spec, nil
}

// BoxSpec is an axis-aligned occluder box in world units.
type BoxSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PointSpec is a world-space point.
type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// SpawnSpec places one enemy archetype in a level.
type SpawnSpec struct {
	Archetype string  `yaml:"archetype"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Facing    float64 `yaml:"facing"`
}

// LevelSpec describes a sandbox level layout.
type LevelSpec struct {
	Name        string      `yaml:"name"`
	Width       float64     `yaml:"width"`
	Height      float64     `yaml:"height"`
	PlayerSpawn PointSpec   `yaml:"player_spawn"`
	Occluders   []BoxSpec   `yaml:"occluders"`
	Spawns      []SpawnSpec `yaml:"spawns"`
}

// LoadLevelSpec loads a level layout by prefab filename.
func LoadLevelSpec(filename string) (*LevelSpec, error) {
	spec, err := LoadSpec[LevelSpec](filename)
	if err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("prefabs: level %s has degenerate size %.1fx%.1f", filename, spec.Width, spec.Height)
	}
	return &spec, nil
}
