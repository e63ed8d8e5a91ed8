package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Network  NetworkConfig  `toml:"network"`
	World    WorldConfig    `toml:"world"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress      string        `toml:"bind_address"`
	WSBindAddress    string        `toml:"ws_bind_address"` // empty = websocket listener off
	WSPath           string        `toml:"ws_path"`
	OutQueueSize     int           `toml:"out_queue_size"`
	PacketsPerSecond int           `toml:"packets_per_second"` // 0 = unlimited
	ReadTimeout      time.Duration `toml:"read_timeout"`
	WriteTimeout     time.Duration `toml:"write_timeout"`
}

type WorldConfig struct {
	Width         int32         `toml:"width"`
	Height        int32         `toml:"height"`
	SectorSize    int32         `toml:"sector_size"`
	Speed         float64       `toml:"speed"` // world units per second
	TickRate      time.Duration `toml:"tick_rate"`
	IdleTimeout   time.Duration `toml:"idle_timeout"`
	ArriveEpsilon float64       `toml:"arrive_epsilon"`
	Algorithm     string        `toml:"algorithm"` // "jps" or "astar"
	Seed          int64         `toml:"seed"`      // 0 = time based
	MapFile       string        `toml:"map_file"`  // "x y" per line
	MapYAML       string        `toml:"map_yaml"`
	ScriptDir     string        `toml:"script_dir"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty = no database map source
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	MapName         string        `toml:"map_name"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate rejects settings the world cannot run with.
func (c *Config) Validate() error {
	w := c.World
	switch {
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("world size must be positive, got %dx%d", w.Width, w.Height)
	case w.SectorSize <= 0:
		return fmt.Errorf("sector_size must be positive, got %d", w.SectorSize)
	case w.Speed <= 0:
		return fmt.Errorf("speed must be positive, got %v", w.Speed)
	case w.TickRate <= 0:
		return fmt.Errorf("tick_rate must be positive, got %v", w.TickRate)
	case w.ArriveEpsilon < 0:
		return fmt.Errorf("arrive_epsilon must not be negative, got %v", w.ArriveEpsilon)
	}
	if w.Algorithm != "jps" && w.Algorithm != "astar" {
		return fmt.Errorf("unknown algorithm %q (want jps or astar)", w.Algorithm)
	}
	if c.Network.OutQueueSize <= 0 {
		return fmt.Errorf("out_queue_size must be positive, got %d", c.Network.OutQueueSize)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "jpsworld",
			ID:   1,
		},
		Network: NetworkConfig{
			BindAddress:      "0.0.0.0:8811",
			WSPath:           "/ws",
			OutQueueSize:     256,
			PacketsPerSecond: 60,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     10 * time.Second,
		},
		World: WorldConfig{
			Width:         100,
			Height:        100,
			SectorSize:    5,
			Speed:         4.0,
			TickRate:      20 * time.Millisecond,
			IdleTimeout:   40 * time.Second,
			ArriveEpsilon: 1e-6,
			Algorithm:     "jps",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			MapName:         "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
