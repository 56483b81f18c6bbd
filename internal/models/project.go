// internal/models/project.go
package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Project struct to match the YAML structure
type Project struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Subtitle    string `yaml:"subtitle" json:"subtitle"`
	Description string `yaml:"description" json:"description"`
	Color       string `yaml:"color" json:"color"`
}

// Catalog holds the read-only list of projects shown on the landing page.
type Catalog struct {
	Projects []Project `yaml:"projects" json:"projects"`
}

// DefaultCatalog returns the built-in project list.
func DefaultCatalog() *Catalog {
	return &Catalog{Projects: []Project{
		{ID: "model-i", Name: "Model-I", Subtitle: "Acera-1310", Description: "Functional Testing Summary", Color: "#8b5cf6"},
		{ID: "model-h", Name: "Model-H", Subtitle: "Acera-1320", Description: "Hardware Testing Dashboard", Color: "#3b82f6"},
		{ID: "model-k", Name: "Model-K", Subtitle: "Edimax 11be", Description: "Kernel Performance Metrics", Color: "#10b981"},
	}}
}

// LoadCatalog reads the projects file. A missing file yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal projects YAML: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	if len(c.Projects) == 0 {
		return errors.New("projects file lists no projects")
	}
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p.ID == "" {
			return fmt.Errorf("project %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate project id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Lookup returns the project with the given identifier.
func (c *Catalog) Lookup(id string) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// IDs returns project identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		ids = append(ids, p.ID)
	}
	return ids
}
