package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/worldkit/internal/model"
)

// WorldServer holds all configuration for the world server.
type WorldServer struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Simulation
	TickInterval time.Duration `yaml:"tick_interval"` // default: 100ms

	// Navigation
	NavMesh NavMeshConfig `yaml:"navmesh"`

	// Prefab catalog (YAML); missing file means built-in prefabs only
	CatalogPath string `yaml:"catalog_path"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Objects scheduled when the server starts
	Spawns []SpawnEntry `yaml:"spawns"`
}

// NavMeshConfig holds navigation mesh bake parameters.
type NavMeshConfig struct {
	Delta   float64 `yaml:"delta"`   // point location search distance
	Persist bool    `yaml:"persist"` // store baked meshes in the database
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SpawnEntry is one startup spawn.
type SpawnEntry struct {
	Object    model.GameObject    `yaml:"object"`
	Delay     uint                `yaml:"delay"` // ticks; 0 spawns on the first tick
	Transform model.TransformSpec `yaml:"transform"`
}

// DefaultWorldServer returns WorldServer config with sensible defaults.
func DefaultWorldServer() WorldServer {
	return WorldServer{
		LogLevel:     "info",
		TickInterval: 100 * time.Millisecond,
		NavMesh: NavMeshConfig{
			Delta: 10.0,
		},
		CatalogPath: "config/catalog.yaml",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "worldkit",
			Password: "worldkit",
			DBName:   "worldkit",
			SSLMode:  "disable",
		},
		Spawns: []SpawnEntry{
			{Object: model.GameObjectSunlight},
			{Object: model.GameObjectLevel, Delay: 1},
			{Object: model.GameObjectPlayer, Delay: 2, Transform: model.TransformSpec{Translation: [3]float64{0, 1, 0}}},
		},
	}
}

// Validate checks values the server cannot run with.
func (c WorldServer) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.NavMesh.Delta < 0 {
		return fmt.Errorf("navmesh.delta must not be negative, got %v", c.NavMesh.Delta)
	}
	if c.NavMesh.Persist && !c.Database.Enabled {
		return fmt.Errorf("navmesh.persist requires database.enabled")
	}
	for i, s := range c.Spawns {
		if s.Object == "" {
			return fmt.Errorf("spawns[%d]: object is empty", i)
		}
	}
	return nil
}

// LoadWorldServer loads world server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadWorldServer(path string) (WorldServer, error) {
	cfg := DefaultWorldServer()

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
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
