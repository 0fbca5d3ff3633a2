package mappings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/petr-muller/jironimo/internal/config"
)

const (
	mappingsFileName = "colors.yaml"

	// DefaultSizeKey is the issue type whose size is used for unknown types
	DefaultSizeKey = "task"
)

// PriorityColor assigns a color class to a JIRA priority id
type PriorityColor struct {
	ID    string `yaml:"id"`
	Class string `yaml:"class"`
}

// Mappings holds the tables used to classify issues for display
type Mappings struct {
	// PriorityColors maps priority ids to color classes; the first entry is
	// used for issues without a known priority
	PriorityColors []PriorityColor `yaml:"priorityColors"`
	// TypeSizes maps lower-cased issue type names to size classes
	TypeSizes map[string]string `yaml:"typeSizes"`
}

// DefaultMappings returns the built-in tables
func DefaultMappings() *Mappings {
	return &Mappings{
		PriorityColors: []PriorityColor{
			{ID: "0", Class: "blue"},
			{ID: "1", Class: "red"},
			{ID: "2", Class: "orange"},
			{ID: "3", Class: "yellow"},
			{ID: "4", Class: "green"},
			{ID: "5", Class: "teal"},
		},
		TypeSizes: map[string]string{
			"task":        "small",
			"sub-task":    "small",
			"bug":         "small",
			"improvement": "medium",
			"new feature": "medium",
			"story":       "medium",
			"epic":        "large",
		},
	}
}

// LoadMappings loads the tables from the default location, returns the
// built-in tables if the file doesn't exist
func LoadMappings() (*Mappings, error) {
	return LoadMappingsFrom(config.MustJironimoConfigDir())
}

// LoadMappingsFrom loads the tables from dir
func LoadMappingsFrom(dir string) (*Mappings, error) {
	mappingsPath := filepath.Join(dir, mappingsFileName)

	data, err := os.ReadFile(mappingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultMappings(), nil
		}
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	var mappings Mappings
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("failed to parse mappings file: %w", err)
	}

	defaults := DefaultMappings()
	if len(mappings.PriorityColors) == 0 {
		mappings.PriorityColors = defaults.PriorityColors
	}
	if mappings.TypeSizes == nil {
		mappings.TypeSizes = defaults.TypeSizes
	}
	if _, ok := mappings.TypeSizes[DefaultSizeKey]; !ok {
		mappings.TypeSizes[DefaultSizeKey] = defaults.TypeSizes[DefaultSizeKey]
	}

	return &mappings, nil
}

// SaveMappings saves the tables to dir
func (m *Mappings) SaveMappings(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal mappings: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, mappingsFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write mappings file: %w", err)
	}

	return nil
}

// ColorFor returns the color class of a priority, falling back to the first entry
func (m *Mappings) ColorFor(priorityID string) string {
	if len(m.PriorityColors) == 0 {
		return ""
	}
	for _, entry := range m.PriorityColors {
		if entry.ID == priorityID {
			return entry.Class
		}
	}
	return m.PriorityColors[0].Class
}

// SizeFor returns the size class of an issue type, falling back to the task size
func (m *Mappings) SizeFor(issueType string) string {
	if size, ok := m.TypeSizes[strings.ToLower(issueType)]; ok {
		return size
	}
	return m.TypeSizes[DefaultSizeKey]
}

// Types returns the issue types with a size, sorted
func (m *Mappings) Types() []string {
	types := make([]string, 0, len(m.TypeSizes))
	for issueType := range m.TypeSizes {
		types = append(types, issueType)
	}
	sort.Strings(types)
	return types
}
