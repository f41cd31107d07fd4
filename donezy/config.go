package donezy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	DB        DBConfig        `toml:"db"`
	LocalDB   LocalDBConfig   `toml:"localdb"`
	Engine    EngineConfig    `toml:"engine"`
	Migration MigrationConfig `toml:"migration"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// DBConfig configures the authoritative Postgres store.
type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// LocalDBConfig configures the local fallback store.
type LocalDBConfig struct {
	Path string `toml:"path"`
}

// MigrationConfig points the legacy importer at the old deployment.
type MigrationConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type EngineConfig struct {
	// Level curve
	LevelBase         int64   `toml:"level_base"`
	LevelMultiplier   float64 `toml:"level_multiplier"`
	LevelUpMultiplier int64   `toml:"level_up_multiplier"`

	// Quest generation
	MinQuestsPerPeriod int `toml:"min_quests_per_period"`
	MaxQuestsPerPeriod int `toml:"max_quests_per_period"`

	// Background cadence, seconds
	RecomputeIntervalSecs int `toml:"recompute_interval_secs"`
	RefreshIntervalSecs   int `toml:"refresh_interval_secs"`

	// Readiness polling bounds
	ReadyAttempts     int `toml:"ready_attempts"`
	ReadyIntervalMsec int `toml:"ready_interval_msec"`
}
