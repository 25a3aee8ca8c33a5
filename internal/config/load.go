package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and decodes a pipeline file. The format follows the file
// extension: .yaml/.yml decode as YAML, everything else as JSON.
func Load(path string) (Pipeline, error) {
	var p Pipeline

	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return p, fmt.Errorf("decode yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &p); err != nil {
			return p, fmt.Errorf("decode json config %s: %w", path, err)
		}
	}
	return p, nil
}
