package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings file LoadFile reads when given an empty path.
const DefaultFile = "worldtick.yaml"

// ErrUnsupportedFormat indicates a settings file whose extension is not
// .yaml, .yml or .json.
var ErrUnsupportedFormat = errors.New("unsupported config file extension")

// LoadFile reads and validates server settings in one step.
// An empty path reads DefaultFile from the working directory.
func LoadFile(path string) (Settings, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := Load(cfg)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FromFile decodes a settings file, choosing the format by extension.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	case ".json":
		cfg, err = FromJSON(data)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML decodes a YAML document. An empty document yields an empty Config,
// so every setting takes its default.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON decodes a JSON object. Numbers arrive as float64; Int accepts
// them when they are whole.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}
