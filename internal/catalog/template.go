// ABOUTME: YAML workout templates for seeding a new workout's first round.
// ABOUTME: A template names the workout, its type and the round-one activities.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/reps/internal/models"
	"gopkg.in/yaml.v3"
)

// Template describes a workout to create.
//
//	name: Cindy
//	type: amrap
//	activities:
//	  - Pull-ups
//	  - Push-ups
//	  - Air squats
type Template struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type,omitempty"`
	Activities []string `yaml:"activities,omitempty"`
}

// ParseTemplate decodes a YAML template.
func ParseTemplate(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("%w: parse template: %v", models.ErrValidation, err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplate reads and decodes a YAML template file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ParseTemplate(data)
}

// Validate checks the template has a name and a known type.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", models.ErrValidation)
	}
	if _, err := models.ParseWorkoutType(t.typeOrDefault()); err != nil {
		return err
	}
	return nil
}

// typeOrDefault falls back to AMRAP, the default of the add workout form.
func (t *Template) typeOrDefault() string {
	if strings.TrimSpace(t.Type) == "" {
		return string(models.WorkoutAMRAP)
	}
	return t.Type
}
