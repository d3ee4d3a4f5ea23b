// Package config loads springbox configuration from a TOML file with
// environment variable overrides for deployment secrets.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/pipeline"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Mongo   MongoConfig   `toml:"mongo"`
	Redis   RedisConfig   `toml:"redis"`
	Physics PhysicsConfig `toml:"physics"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// MongoConfig configures the article store connection.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisConfig configures the optional Redis cache backend.
// An empty Addr means the file cache is used instead.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// PhysicsConfig sets server-side defaults for layout requests that omit
// physics parameters. Zero values fall back to the pipeline defaults.
type PhysicsConfig struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	Charge     float64 `toml:"charge"`
	Mass       float64 `toml:"mass"`
	TimeStep   float64 `toml:"time_step"`
	Iterations int     `toml:"iterations"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "springbox",
		},
		Physics: PhysicsConfig{
			Width:      pipeline.DefaultWidth,
			Height:     pipeline.DefaultHeight,
			Charge:     pipeline.DefaultCharge,
			Mass:       pipeline.DefaultMass,
			TimeStep:   pipeline.DefaultTimeStep,
			Iterations: pipeline.DefaultIterations,
		},
	}
}

// Load reads the TOML file at path, merged over Default. A missing file
// is not an error; the defaults are returned. Environment variables
// SPRINGBOX_MONGO_URI, SPRINGBOX_REDIS_ADDR, SPRINGBOX_REDIS_PASSWORD,
// SPRINGBOX_REDIS_DB, and SPRINGBOX_ADDR override file values so secrets
// stay out of config files.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read config %s", path)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SPRINGBOX_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SPRINGBOX_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("SPRINGBOX_MONGO_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("SPRINGBOX_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SPRINGBOX_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SPRINGBOX_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
}

// PipelineOptions seeds layout options from the configured physics defaults.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Width:      c.Physics.Width,
		Height:     c.Physics.Height,
		Charge:     c.Physics.Charge,
		Mass:       c.Physics.Mass,
		TimeStep:   c.Physics.TimeStep,
		Iterations: c.Physics.Iterations,
	}
}
