package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads the JSON file at path on top of the defaults. Fields missing in the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err = json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	return cfg, nil
}
