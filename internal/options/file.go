package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned when a config file's top level is not a mapping.
var ErrNotMapping = errors.New("top-level config must be a mapping/object")

// LoadFile reads a launch options file and returns it as a JSON object.
// The format follows the extension: .json, .toml, anything else is YAML.
// An empty document yields {}.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return fromJSON(data)
	case ".toml":
		return fromTOML(data)
	default:
		return fromYAML(data)
	}
}

func fromJSON(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse JSON config: invalid document")
	}
	result := gjson.ParseBytes(data)
	switch {
	case result.Type == gjson.Null:
		return []byte("{}"), nil
	case !result.IsObject():
		return nil, ErrNotMapping
	}
	return []byte(result.Raw), nil
}

func fromTOML(data []byte) ([]byte, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return marshalMapping(config)
}

func fromYAML(data []byte) ([]byte, error) {
	var config any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if config == nil {
		return []byte("{}"), nil
	}
	mapping, ok := config.(map[string]any)
	if !ok {
		return nil, ErrNotMapping
	}
	return marshalMapping(mapping)
}

func marshalMapping(config map[string]any) ([]byte, error) {
	if config == nil {
		return []byte("{}"), nil
	}
	doc, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config to JSON: %w", err)
	}
	return doc, nil
}
