// Package catalog holds the brand/model catalog and the filter used when
// browsing it.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Model is a phone model within a brand.
type Model struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Brand is a top-level catalog entry.
type Brand struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Models []Model `json:"models,omitempty" yaml:"models,omitempty"`
}

// ItemName implements Item.
func (b Brand) ItemName() string {
	return b.Name
}

// SubItemNames implements Item.
func (b Brand) SubItemNames() []string {
	names := make([]string, len(b.Models))
	for i, m := range b.Models {
		names[i] = m.Name
	}
	return names
}

// File is the on-disk catalog layout. YAML is a superset of JSON, so either
// format loads.
type File struct {
	Brands []Brand `json:"brands" yaml:"brands"`
}

// LoadFile reads a catalog from a YAML or JSON file.
func LoadFile(path string) ([]Brand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return f.Brands, nil
}
