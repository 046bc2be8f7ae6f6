package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/cullgo/internal/model"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration for the cull simulator.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	Culling    Culling        `yaml:"culling"`
	Simulation Simulation     `yaml:"simulation"`
	Database   DatabaseConfig `yaml:"database"`
	DebugAPI   DebugAPI       `yaml:"debug_api"`
}

// Culling holds the fixed numeric configuration of the culling manager.
type Culling struct {
	WorldScale         float32 `yaml:"world_scale"`          // unscaled units → scene units
	UnscaledBlockRange float32 `yaml:"unscaled_block_range"` // cull distance before scaling
	BlockHalfExtent    float32 `yaml:"block_half_extent"`    // dungeon block half footprint before scaling
	BillboardRange     float32 `yaml:"billboard_range"`      // fixed, not scaled
}

// Simulation describes the synthetic world and the reference point path.
type Simulation struct {
	TickInterval time.Duration `yaml:"tick_interval"` // frame period (default: 16ms)
	MaxFrames    int           `yaml:"max_frames"`    // 0 = run until stopped
	Seed         uint64        `yaml:"seed"`

	Spread        float32        `yaml:"spread"`         // objects are placed within ±spread of the origin
	Population    map[string]int `yaml:"population"`     // category name → object count
	DungeonBlocks Grid           `yaml:"dungeon_blocks"` // block grid laid out from the origin
	AutomapBlocks int            `yaml:"automap_blocks"` // blocks mirrored under the Automap root
	DespawnChance float64        `yaml:"despawn_chance"` // per-frame chance one random object is destroyed

	Waypoints []Waypoint `yaml:"waypoints"`
	Loop      bool       `yaml:"loop"` // restart the path after the last waypoint
}

// Grid is a rows × columns layout.
type Grid struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
}

// Waypoint is one leg of the reference point path.
type Waypoint struct {
	Position [3]float32 `yaml:"position"`
	Frames   int        `yaml:"frames"`   // frames spent travelling to Position
	Inside   bool       `yaml:"inside"`   // context once Position is reached
	Teleport bool       `yaml:"teleport"` // jump instead of travelling
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	DBName        string        `yaml:"dbname"`
	SSLMode       string        `yaml:"sslmode"`
	FlushInterval time.Duration `yaml:"flush_interval"` // how often stats are recorded
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DebugAPI configures the HTTP status endpoint.
type DebugAPI struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	StreamInterval time.Duration `yaml:"stream_interval"` // websocket push period
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Culling: Culling{
			WorldScale:         0.025,
			UnscaledBlockRange: 2060,
			BlockHalfExtent:    1024,
			BillboardRange:     150,
		},
		Simulation: Simulation{
			TickInterval: 16 * time.Millisecond,
			Seed:         1,
			Spread:       200,
			Population: map[string]int{
				model.CategoryActionDoor.String():     30,
				model.CategoryEnemy.String():          40,
				model.CategoryFoeSpawner.String():     10,
				model.CategoryLoot.String():           60,
				model.CategoryStaticNPC.String():      25,
				model.CategoryBillboard.String():      200,
				model.CategoryCivilianMobile.String(): 10,
			},
			DungeonBlocks: Grid{Columns: 6, Rows: 6},
			AutomapBlocks: 4,
			DespawnChance: 0.01,
			Waypoints: []Waypoint{
				{Position: [3]float32{0, 0, 0}, Frames: 0},
				{Position: [3]float32{120, 0, 40}, Frames: 600},
				{Position: [3]float32{-150, 0, -150}, Teleport: true},
				{Position: [3]float32{-150, 0, -150}, Inside: true},
				{Position: [3]float32{-60, 0, -120}, Frames: 400, Inside: true},
				{Position: [3]float32{0, 0, 0}, Frames: 300},
			},
			Loop: true,
		},
		Database: DatabaseConfig{
			Enabled:       false,
			Host:          "127.0.0.1",
			Port:          5432,
			User:          "cullgo",
			Password:      "cullgo",
			DBName:        "cullgo",
			SSLMode:       "disable",
			FlushInterval: 10 * time.Second,
		},
		DebugAPI: DebugAPI{
			Enabled:        true,
			Addr:           "127.0.0.1:8089",
			StreamInterval: 500 * time.Millisecond,
		},
	}
}

// Load loads config from a YAML file and validates it.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges. Every error wraps ErrInvalid.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}

	if c.Culling.WorldScale <= 0 {
		return fmt.Errorf("%w: culling.world_scale must be positive", ErrInvalid)
	}
	if c.Culling.UnscaledBlockRange <= 0 || c.Culling.BlockHalfExtent <= 0 || c.Culling.BillboardRange <= 0 {
		return fmt.Errorf("%w: culling ranges must be positive", ErrInvalid)
	}

	sim := c.Simulation
	if sim.TickInterval <= 0 {
		return fmt.Errorf("%w: simulation.tick_interval must be positive", ErrInvalid)
	}
	if sim.MaxFrames < 0 {
		return fmt.Errorf("%w: simulation.max_frames must not be negative", ErrInvalid)
	}
	if sim.Spread < 0 {
		return fmt.Errorf("%w: simulation.spread must not be negative", ErrInvalid)
	}
	for name, n := range sim.Population {
		cat, ok := model.ParseCategory(name)
		if !ok {
			return fmt.Errorf("%w: unknown category %q in simulation.population", ErrInvalid, name)
		}
		if cat == model.CategoryDungeonBlock {
			return fmt.Errorf("%w: dungeon blocks are configured by simulation.dungeon_blocks", ErrInvalid)
		}
		if n < 0 {
			return fmt.Errorf("%w: negative population for %q", ErrInvalid, name)
		}
	}
	if sim.DungeonBlocks.Columns < 0 || sim.DungeonBlocks.Rows < 0 || sim.AutomapBlocks < 0 {
		return fmt.Errorf("%w: block counts must not be negative", ErrInvalid)
	}
	if sim.DespawnChance < 0 || sim.DespawnChance > 1 {
		return fmt.Errorf("%w: simulation.despawn_chance must be within [0, 1]", ErrInvalid)
	}
	for i, wp := range sim.Waypoints {
		if wp.Frames < 0 {
			return fmt.Errorf("%w: waypoint %d has negative frames", ErrInvalid, i)
		}
	}

	if c.Database.Enabled && c.Database.FlushInterval <= 0 {
		return fmt.Errorf("%w: database.flush_interval must be positive", ErrInvalid)
	}
	if c.DebugAPI.Enabled && c.DebugAPI.Addr == "" {
		return fmt.Errorf("%w: debug_api.addr is required", ErrInvalid)
	}
	if c.DebugAPI.Enabled && c.DebugAPI.StreamInterval <= 0 {
		return fmt.Errorf("%w: debug_api.stream_interval must be positive", ErrInvalid)
	}
	return nil
}
