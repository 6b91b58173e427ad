package seed

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var catalogYAML []byte

// Account is a seeded user.
type Account struct {
	FullName      string `yaml:"fullName"`
	Email         string `yaml:"email"`
	ContactNumber string `yaml:"contactNumber"`
	Password      string `yaml:"password"`
}

// CatalogProject is a seeded project record.
type CatalogProject struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Year   int    `yaml:"year"`
	Field  string `yaml:"field"`
}

// Catalog is the demo dataset shipped with the binary.
type Catalog struct {
	Admin    Account `yaml:"admin"`
	Students struct {
		ContactNumber string    `yaml:"contactNumber"`
		Password      string    `yaml:"password"`
		Accounts      []Account `yaml:"accounts"`
	} `yaml:"students"`
	Saves struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	} `yaml:"saves"`
	Projects []CatalogProject `yaml:"projects"`
}

// LoadCatalog parses the embedded dataset.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes and checks a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if c.Admin.Email == "" {
		return nil, errors.New("catalog: admin email is required")
	}
	if c.Saves.Min < 0 || c.Saves.Max < c.Saves.Min {
		return nil, fmt.Errorf("catalog: invalid saves range %d..%d", c.Saves.Min, c.Saves.Max)
	}
	for i, p := range c.Projects {
		if p.Title == "" || p.Author == "" || p.Field == "" || p.Year == 0 {
			return nil, fmt.Errorf("catalog: project %d is incomplete", i)
		}
	}
	return &c, nil
}

// Fields returns the distinct project fields in catalog order.
func (c *Catalog) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.Projects {
		if !seen[p.Field] {
			seen[p.Field] = true
			out = append(out, p.Field)
		}
	}
	return out
}
