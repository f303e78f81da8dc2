package mockapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Product is a sellable part as the stub backend knows it.
type Product struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	BrandID   string `yaml:"brand_id"`
	Brand     string `yaml:"brand"`
	ModelID   string `yaml:"model_id,omitempty"`
	ModelName string `yaml:"model,omitempty"`
}

// Seed is the YAML layout accepted by LoadSeed.
type Seed struct {
	Products []Product      `yaml:"products"`
	Popular  map[string]int `yaml:"popular,omitempty"`
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// DefaultSeed is a small spare-parts catalog for local development.
func DefaultSeed() *Seed {
	return &Seed{
		Products: []Product{
			{ID: "p1", Name: "Samsung A14", Category: "display", BrandID: "samsung", Brand: "Samsung", ModelID: "a14", ModelName: "Galaxy A14"},
			{ID: "p2", Name: "Samsung A14 Battery", Category: "battery", BrandID: "samsung", Brand: "Samsung", ModelID: "a14", ModelName: "Galaxy A14"},
			{ID: "p3", Name: "Samsung S23 Display", Category: "display", BrandID: "samsung", Brand: "Samsung", ModelID: "s23", ModelName: "Galaxy S23"},
			{ID: "p4", Name: "Vivo V21 Charging Port", Category: "charging", BrandID: "vivo", Brand: "Vivo", ModelID: "v21", ModelName: "V21"},
			{ID: "p5", Name: "Vivo Y20 Back Panel", Category: "body", BrandID: "vivo", Brand: "Vivo", ModelID: "y20", ModelName: "Y20"},
			{ID: "p6", Name: "Redmi Note 12 Display", Category: "display", BrandID: "xiaomi", Brand: "Xiaomi", ModelID: "note12", ModelName: "Redmi Note 12"},
			{ID: "p7", Name: "iPhone 13 Battery", Category: "battery", BrandID: "apple", Brand: "Apple", ModelID: "ip13", ModelName: "iPhone 13"},
			{ID: "p8", Name: "iPhone 13 Camera Lens", Category: "camera", BrandID: "apple", Brand: "Apple", ModelID: "ip13", ModelName: "iPhone 13"},
			{ID: "p9", Name: "Universal Tempered Glass", Category: "accessories"},
		},
		Popular: map[string]int{
			"samsung":       12,
			"iphone 13":     9,
			"battery":       7,
			"display":       5,
			"charging port": 3,
		},
	}
}
