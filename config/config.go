package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "ARENA_CONFIG"

type Config struct {
	Game    GameConfig    `toml:"game"`
	Loading LoadingConfig `toml:"loading"`
	Physics PhysicsConfig `toml:"physics"`
	Weapon  WeaponConfig  `toml:"weapon"`
	Logging LoggingConfig `toml:"logging"`
}

type GameConfig struct {
	Title        string `toml:"title"`
	TickRate     int    `toml:"tick_rate"` // ticks per second
	ScreenWidth  int    `toml:"screen_width"`
	ScreenHeight int    `toml:"screen_height"`
	CatalogDir   string `toml:"catalog_dir"`
	DefaultMap   string `toml:"default_map"`
	DefaultMode  string `toml:"default_mode"`
	SkipMenu     bool   `toml:"skip_menu"`
}

type LoadingConfig struct {
	// MaxTicks is how many ticks a map may stay unresolved before the load
	// is declared stalled. 0 disables the budget.
	MaxTicks int `toml:"max_ticks"`
}

type PhysicsConfig struct {
	Density    float64 `toml:"density"`
	Iterations int     `toml:"iterations"`
	// Gravity is a constant drift along world +Z on the ground plane, not a
	// vertical pull: the space is the XZ projection of the map. Keep it 0 for
	// a top-down arena.
	Gravity float64 `toml:"gravity"`
	// Scale converts world units to debug-draw pixels.
	Scale float64 `toml:"scale"`
}

type WeaponConfig struct {
	Name           string `toml:"name"`
	MagazineLength int    `toml:"magazine_length"`
	MagazineCount  int    `toml:"magazine_count"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console, json
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the ARENA_CONFIG override or fallback.
func Path(fallback string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return fallback
}

func (c *Config) Validate() error {
	switch {
	case c.Game.TickRate <= 0:
		return fmt.Errorf("game.tick_rate must be positive, got %d", c.Game.TickRate)
	case c.Loading.MaxTicks < 0:
		return fmt.Errorf("loading.max_ticks must not be negative, got %d", c.Loading.MaxTicks)
	case c.Physics.Density <= 0:
		return fmt.Errorf("physics.density must be positive, got %g", c.Physics.Density)
	case c.Weapon.MagazineLength < 0 || c.Weapon.MagazineCount < 0:
		return fmt.Errorf("weapon magazine must not be negative, got %dx%d", c.Weapon.MagazineCount, c.Weapon.MagazineLength)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Game: GameConfig{
			Title:        "Arena",
			TickRate:     60,
			ScreenWidth:  1280,
			ScreenHeight: 720,
			CatalogDir:   "maps",
			DefaultMap:   "Warehouse",
			DefaultMode:  "one_enemy",
		},
		Loading: LoadingConfig{
			MaxTicks: 600, // 10s at 60 ticks
		},
		Physics: PhysicsConfig{
			Density:    400,
			Iterations: 10,
			Gravity:    0,
			Scale:      8,
		},
		Weapon: WeaponConfig{
			Name:           "Pistol",
			MagazineLength: 12,
			MagazineCount:  4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
