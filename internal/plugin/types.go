// Package plugin discovers and runs external actuator processes that carry
// out recognized commands.
package plugin

import "encoding/json"

// Manifest is the plugin.json descriptor found in each plugin directory.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the manifest lists action. A manifest without
// actions accepts any.
func (m Manifest) Supports(action string) bool {
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request is written to the plugin's stdin as a single JSON document.
type Request struct {
	Action        string          `json:"action"`
	Command       string          `json:"command"`
	Gesture       string          `json:"gesture"`
	Score         float64         `json:"score"`
	RecognitionID string          `json:"recognition_id,omitempty"`
	Params        json.RawMessage `json:"params,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
