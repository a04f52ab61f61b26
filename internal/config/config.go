package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/secintel/kevfeed/internal/kev"
	"github.com/secintel/kevfeed/internal/mongo"
)

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type Source struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

func (s Source) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type Target struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type Pipeline struct {
	Name   string `yaml:"name"`
	Source Source `yaml:"source"`
	Target Target `yaml:"target"`
}

type Config struct {
	Global   Global   `yaml:"global"`
	Pipeline Pipeline `yaml:"pipeline"`
}

func Default() *Config {
	return &Config{
		Global: Global{
			Logger: Logger{Level: "info"},
		},
		Pipeline: Pipeline{
			Name: "cisa-kev",
			Source: Source{
				Endpoint:       kev.DefaultEndpoint,
				TimeoutSeconds: 20,
			},
			Target: Target{
				Database:   mongo.DefaultDatabase,
				Collection: mongo.DefaultCollection,
			},
		},
	}
}

func NewFromFile(fpath string) (*Config, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, err
	}

	return c, nil
}

// ApplyEnv layers environment overrides over the config. MONGO_URI and
// DB_NAME keep the names the deployments have always used.
func (c *Config) ApplyEnv() {
	v := viper.New()
	v.AutomaticEnv()

	if uri := v.GetString("MONGO_URI"); uri != "" {
		c.Pipeline.Target.URI = uri
	}
	if db := v.GetString("DB_NAME"); db != "" {
		c.Pipeline.Target.Database = db
	}
}

func (c *Config) Validate() error {
	if c.Pipeline.Target.URI == "" {
		return fmt.Errorf("mongodb connection string is required (set MONGO_URI or pipeline.target.uri)")
	}
	return nil
}
