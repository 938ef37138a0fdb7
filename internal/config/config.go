// Package config holds the viewer settings read from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root of the settings file.
type Config struct {
	View View `yaml:"view"`
	Log  Log  `yaml:"log"`
}

// View configures the initial camera and the interactive steps.
type View struct {
	TileSize  int     `yaml:"tileSize" default:"256" validate:"gt=0"`
	Zoom      float64 `yaml:"zoom" validate:"gte=-4,lte=22"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `yaml:"latitude" validate:"gte=-85.0511,lte=85.0511"`
	// Angle is the map rotation in degrees.
	Angle float64 `yaml:"angle"`

	PanStep    float64 `yaml:"panStep" default:"16" validate:"gt=0"`
	ZoomStep   float64 `yaml:"zoomStep" default:"1.2" validate:"gt=1"`
	RotateStep float64 `yaml:"rotateStep" default:"15" validate:"gt=0,lt=360"`

	ShowGrid       bool `yaml:"showGrid" default:"true"`
	MaxCachedTiles int  `yaml:"maxCachedTiles" default:"256" validate:"gt=0"`
}

// Log configures the log file. An empty File discards log output.
type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	// only fails on malformed default tags
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return c
}

// UnmarshalYAML fills defaults before decoding so absent keys keep them.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if err := defaults.Set(c); err != nil {
		return err
	}
	type plain Config // no UnmarshalYAML, avoids recursion
	return value.Decode((*plain)(c))
}

// Validate checks the value ranges.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// Load reads path. A missing file yields the defaults when optional is set.
func Load(path string, optional bool) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}
