package seed

import (
	_ "embed"
	"fmt"

	"quill/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yml
var defaultCatalog []byte

// CatalogCategory is one entry of the category catalogue.
type CatalogCategory struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type catalogFile struct {
	Categories []CatalogCategory `yaml:"categories"`
}

// LoadCatalog parses the embedded category catalogue.
func LoadCatalog() ([]CatalogCategory, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog parses a YAML catalogue, filling in missing slugs and
// rejecting duplicates.
func ParseCatalog(raw []byte) ([]CatalogCategory, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse category catalogue: %w", err)
	}

	seen := make(map[string]bool, len(file.Categories))
	out := make([]CatalogCategory, 0, len(file.Categories))
	for i, c := range file.Categories {
		if err := validation.ValidateCategoryName(c.Name); err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		if c.Slug == "" {
			c.Slug = validation.Slugify(c.Name)
		}
		if c.Slug == "" || seen[c.Slug] {
			return nil, fmt.Errorf("category %q: empty or duplicate slug %q", c.Name, c.Slug)
		}
		seen[c.Slug] = true
		out = append(out, c)
	}
	return out, nil
}
