package config

import (
	"fmt"
	"os"
	"strconv"

	"git.fiblab.net/sim/transit-catalogue/router"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var log = logrus.WithField("module", "config")

type Config struct {
	MongoURI string `yaml:"mongo_uri"`
	// 快照文件，请求文档中的serialization_settings优先
	Snapshot string        `yaml:"snapshot"`
	Listen   string        `yaml:"listen" validate:"required,hostname_port"`
	Pprof    string        `yaml:"pprof" validate:"omitempty,hostname_port"`
	Routing  RoutingConfig `yaml:"routing"`
	Bench    BenchConfig   `yaml:"benchmark"`
}

// 请求文档中没有routing_settings时使用
type RoutingConfig struct {
	BusWaitTime float64 `yaml:"bus_wait_time" validate:"gte=0"`
	BusVelocity float64 `yaml:"bus_velocity" validate:"gt=0"`
}

type BenchConfig struct {
	Queries int   `yaml:"queries" validate:"gt=0"`
	Seed    int64 `yaml:"seed"`
}

func Default() *Config {
	return &Config{
		Listen: "localhost:52101",
		Routing: RoutingConfig{
			BusWaitTime: 6,
			BusVelocity: 40,
		},
		Bench: BenchConfig{
			Queries: 100000,
			Seed:    1,
		},
	}
}

// Load 依次应用默认值、YAML文件（path为空时跳过）和TRANSIT_*环境变量，最后校验
// 当前目录下的.env会先被载入环境变量
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env")
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"TRANSIT_MONGO_URI": &cfg.MongoURI,
		"TRANSIT_SNAPSHOT":  &cfg.Snapshot,
		"TRANSIT_LISTEN":    &cfg.Listen,
		"TRANSIT_PPROF":     &cfg.Pprof,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	floats := map[string]*float64{
		"TRANSIT_BUS_WAIT_TIME": &cfg.Routing.BusWaitTime,
		"TRANSIT_BUS_VELOCITY":  &cfg.Routing.BusVelocity,
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %q", key, v)
			}
			*dst = f
		}
	}
	return nil
}

func (c *Config) RoutingSettings() router.Settings {
	return router.Settings{
		BusWaitTime: c.Routing.BusWaitTime,
		BusVelocity: c.Routing.BusVelocity,
	}
}
