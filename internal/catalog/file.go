package catalog

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed default_catalog.toml
var defaultCatalog string

type fileTable struct {
	Labels map[string]RawBundle `toml:"labels"`
}

// LoadFile reads a TOML catalog. An empty path yields the built-in catalog.
func LoadFile(path string) (map[string]RawBundle, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	var table fileTable
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, fmt.Errorf("decode catalog file %s failed: %w", path, err)
	}
	return nonNil(table.Labels), nil
}

// Parse decodes a TOML catalog held in memory.
func Parse(data string) (map[string]RawBundle, error) {
	var table fileTable
	if _, err := toml.Decode(data, &table); err != nil {
		return nil, fmt.Errorf("decode catalog failed: %w", err)
	}
	return nonNil(table.Labels), nil
}

func nonNil(m map[string]RawBundle) map[string]RawBundle {
	if m == nil {
		return map[string]RawBundle{}
	}
	return m
}
