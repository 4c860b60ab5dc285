package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML reads the settings under the "postageapp" key of a YAML
// document. A document without that key yields an empty store.
func ParseYAML(data []byte) (Map, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if m := namespaced(doc); m != nil {
		return m, nil
	}
	return Map{}, nil
}

// LoadYAML reads a YAML credentials file. A missing file yields an empty
// store so that resolution falls through to the environment.
func LoadYAML(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	m, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
