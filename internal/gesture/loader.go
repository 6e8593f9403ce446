package gesture

import (
	"encoding/json"
	"fmt"
	"os"
)

// templateFile is the on-disk layout read by LoadTemplates.
type templateFile struct {
	Templates []Template `json:"templates"`
}

// LoadTemplates reads seed templates from a JSON file of the form
// {"templates": [{"name": ..., "points": [{"x", "y", "stroke_id"}]}]}.
// The points are returned raw; pass them to New to have them normalized.
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}

	var f templateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	for i, t := range f.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("template %d in %s: %w", i, path, ErrEmptyName)
		}
		if len(t.Points) == 0 {
			return nil, fmt.Errorf("template %q in %s: %w", t.Name, path, ErrEmptyTemplate)
		}
	}
	return f.Templates, nil
}

// SaveTemplates writes templates in the format read by LoadTemplates.
func SaveTemplates(path string, templates []Template) error {
	data, err := json.MarshalIndent(templateFile{Templates: templates}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write templates %s: %w", path, err)
	}
	return nil
}
