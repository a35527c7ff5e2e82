package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tuning value of the simulation plus the ambient settings of the binary.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Player     PlayerConfig     `json:"player" yaml:"player"`
	Weapon     WeaponConfig     `json:"weapon" yaml:"weapon"`
	Enemy      EnemyConfig      `json:"enemy" yaml:"enemy"`
	Knockback  KnockbackConfig  `json:"knockback" yaml:"knockback"`
	Rift       RiftConfig       `json:"rift" yaml:"rift"`
	Pickup     PickupConfig     `json:"pickup" yaml:"pickup"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

type SimulationConfig struct {
	// TickRate is the number of fixed simulation ticks per second.
	TickRate float64 `json:"tick_rate" yaml:"tick_rate"`
	// Seed drives every random choice; equal seeds and inputs replay identically.
	Seed uint64 `json:"seed" yaml:"seed"`
	// MaxCatchUpTicks bounds how many ticks the loop runs after a stall.
	MaxCatchUpTicks int `json:"max_catch_up_ticks" yaml:"max_catch_up_ticks"`
}

type PlayerConfig struct {
	Size          float64       `json:"size" yaml:"size"`
	Speed         float64       `json:"speed" yaml:"speed"`
	Health        float64       `json:"health" yaml:"health"`
	Invulnerable  time.Duration `json:"invulnerable" yaml:"invulnerable"`
	AimDeadZone   float64       `json:"aim_dead_zone" yaml:"aim_dead_zone"`
	ContactDamage float64       `json:"contact_damage" yaml:"contact_damage"`
}

type WeaponConfig struct {
	Cooldown        time.Duration `json:"cooldown" yaml:"cooldown"`
	OrbitOffset     float64       `json:"orbit_offset" yaml:"orbit_offset"`
	Width           float64       `json:"width" yaml:"width"`
	Height          float64       `json:"height" yaml:"height"`
	NozzleOffset    float64       `json:"nozzle_offset" yaml:"nozzle_offset"`
	Range           float64       `json:"range" yaml:"range"`
	ProjectileSize  float64       `json:"projectile_size" yaml:"projectile_size"`
	ProjectileSpeed float64       `json:"projectile_speed" yaml:"projectile_speed"`
	Damage          float64       `json:"damage" yaml:"damage"`
}

type EnemyConfig struct {
	Size          float64 `json:"size" yaml:"size"`
	Speed         float64 `json:"speed" yaml:"speed"`
	Health        float64 `json:"health" yaml:"health"`
	XpValue       float64 `json:"xp_value" yaml:"xp_value"`
	MaxDistance   float64 `json:"max_distance" yaml:"max_distance"`
	GemDropChance float64 `json:"gem_drop_chance" yaml:"gem_drop_chance"`
	GemSize       float64 `json:"gem_size" yaml:"gem_size"`
}

type KnockbackConfig struct {
	Speed    float64 `json:"speed" yaml:"speed"`
	Distance float64 `json:"distance" yaml:"distance"`
}

type RiftConfig struct {
	Interval      time.Duration `json:"interval" yaml:"interval"`
	SpawnInterval time.Duration `json:"spawn_interval" yaml:"spawn_interval"`
	Radius        float64       `json:"radius" yaml:"radius"`
	Quota         int           `json:"quota" yaml:"quota"`
	Size          float64       `json:"size" yaml:"size"`
}

type PickupConfig struct {
	Radius float64 `json:"radius" yaml:"radius"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

type ServerConfig struct {
	Enabled       bool          `json:"enabled" yaml:"enabled"`
	ListenAddr    string        `json:"listen_addr" yaml:"listen_addr"`
	BroadcastRate float64       `json:"broadcast_rate" yaml:"broadcast_rate"`
	WriteTimeout  time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ReadLimit     int64         `json:"read_limit" yaml:"read_limit"`
}

// Default returns the design defaults.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			TickRate:        64,
			Seed:            1,
			MaxCatchUpTicks: 8,
		},
		Player: PlayerConfig{
			Size:          50,
			Speed:         300,
			Health:        10,
			Invulnerable:  time.Second,
			AimDeadZone:   10,
			ContactDamage: 1,
		},
		Weapon: WeaponConfig{
			Cooldown:        100 * time.Millisecond,
			OrbitOffset:     52,
			Width:           30,
			Height:          10,
			NozzleOffset:    20,
			Range:           700,
			ProjectileSize:  5,
			ProjectileSpeed: 500,
			Damage:          1,
		},
		Enemy: EnemyConfig{
			Size:          50,
			Speed:         100,
			Health:        2,
			XpValue:       1,
			MaxDistance:   2000,
			GemDropChance: 0.5,
			GemSize:       10,
		},
		Knockback: KnockbackConfig{
			Speed:    1280,
			Distance: 10,
		},
		Rift: RiftConfig{
			Interval:      4 * time.Second,
			SpawnInterval: 2 * time.Second,
			Radius:        500,
			Quota:         5,
			Size:          100,
		},
		Pickup: PickupConfig{
			Radius: 75,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Server: ServerConfig{
			Enabled:       true,
			ListenAddr:    "127.0.0.1:8080",
			BroadcastRate: 30,
			WriteTimeout:  time.Second,
			ReadLimit:     4096,
		},
	}
}

// TickDuration returns the fixed tick length in seconds.
func (c Config) TickDuration() float64 {
	return 1 / c.Simulation.TickRate
}

// Load decodes YAML from r on top of Default. Keys missing from the document keep their defaults.
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile reads a YAML config file. An empty path returns Default.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the configuration for values the simulation cannot run with.
func (c Config) Validate() error {
	positives := []struct {
		name  string
		value float64
	}{
		{"simulation.tick_rate", c.Simulation.TickRate},
		{"player.size", c.Player.Size},
		{"player.speed", c.Player.Speed},
		{"player.health", c.Player.Health},
		{"player.contact_damage", c.Player.ContactDamage},
		{"weapon.damage", c.Weapon.Damage},
		{"weapon.range", c.Weapon.Range},
		{"weapon.projectile_size", c.Weapon.ProjectileSize},
		{"weapon.projectile_speed", c.Weapon.ProjectileSpeed},
		{"enemy.size", c.Enemy.Size},
		{"enemy.health", c.Enemy.Health},
		{"enemy.max_distance", c.Enemy.MaxDistance},
		{"knockback.speed", c.Knockback.Speed},
		{"knockback.distance", c.Knockback.Distance},
		{"rift.radius", c.Rift.Radius},
		{"pickup.radius", c.Pickup.Radius},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"player.invulnerable", c.Player.Invulnerable},
		{"weapon.cooldown", c.Weapon.Cooldown},
		{"rift.interval", c.Rift.Interval},
		{"rift.spawn_interval", c.Rift.SpawnInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, d.name, d.value)
		}
	}

	if c.Enemy.GemDropChance < 0 || c.Enemy.GemDropChance > 1 {
		return fmt.Errorf("%w: enemy.gem_drop_chance must be within [0,1], got %v", ErrInvalidConfig, c.Enemy.GemDropChance)
	}
	if c.Rift.Quota < 0 {
		return fmt.Errorf("%w: rift.quota must not be negative, got %d", ErrInvalidConfig, c.Rift.Quota)
	}
	if c.Enemy.Speed < 0 {
		return fmt.Errorf("%w: enemy.speed must not be negative", ErrInvalidConfig)
	}
	if c.Simulation.MaxCatchUpTicks < 1 {
		return fmt.Errorf("%w: simulation.max_catch_up_ticks must be at least 1", ErrInvalidConfig)
	}
	if c.Server.Enabled {
		if c.Server.ListenAddr == "" {
			return fmt.Errorf("%w: server.listen_addr is required", ErrInvalidConfig)
		}
		if c.Server.BroadcastRate <= 0 {
			return fmt.Errorf("%w: server.broadcast_rate must be positive", ErrInvalidConfig)
		}
	}

	return nil
}
