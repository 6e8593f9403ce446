// Package config loads the mudra runtime configuration from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Binding routes a recognized command to a plugin action.
type Binding struct {
	Plugin string `json:"plugin"`
	Action string `json:"action"`
}

// Config is the root runtime configuration. Every field is optional; the
// Get* methods fall back to defaults for fields left out of the file.
type Config struct {
	// Segmentation
	InactivityTimeout *string `json:"inactivity_timeout,omitempty"` // duration string like "1.5s"
	MinPoints         *int    `json:"min_points,omitempty"`
	PointsPerStroke   *int    `json:"points_per_stroke,omitempty"`

	// Pinch detection, in normalized landmark units
	PinchThreshold *float64 `json:"pinch_threshold,omitempty"`

	// Recognition
	MinScore      *float64 `json:"min_score,omitempty"`
	TemplatesFile *string  `json:"templates_file,omitempty"`

	// Service
	ListenAddr    *string            `json:"listen_addr,omitempty"`
	DBPath        *string            `json:"db_path,omitempty"`
	PluginDir     *string            `json:"plugin_dir,omitempty"`
	PluginTimeout *string            `json:"plugin_timeout,omitempty"`
	Bindings      map[string]Binding `json:"bindings,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Default returns a Config with every field set to its default.
func Default() *Config {
	return &Config{
		InactivityTimeout: ptrString("1.5s"),
		MinPoints:         ptrInt(10),
		PointsPerStroke:   ptrInt(20),
		PinchThreshold:    ptrFloat64(0.05),
		MinScore:          ptrFloat64(0.75),
		ListenAddr:        ptrString(":8080"),
		PluginTimeout:     ptrString("5s"),
		Bindings: map[string]Binding{
			"play":  {Plugin: "media-control", Action: "play"},
			"pause": {Plugin: "media-control", Action: "pause"},
		},
	}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and be at most 1MB. Fields omitted from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set values are usable.
func (c *Config) Validate() error {
	for name, v := range map[string]*string{
		"inactivity_timeout": c.InactivityTimeout,
		"plugin_timeout":     c.PluginTimeout,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if c.MinPoints != nil && *c.MinPoints < 1 {
		return fmt.Errorf("min_points must be at least 1, got %d", *c.MinPoints)
	}
	if c.PointsPerStroke != nil && *c.PointsPerStroke < 2 {
		return fmt.Errorf("points_per_stroke must be at least 2, got %d", *c.PointsPerStroke)
	}
	if c.PinchThreshold != nil && *c.PinchThreshold <= 0 {
		return fmt.Errorf("pinch_threshold must be positive, got %f", *c.PinchThreshold)
	}
	if c.MinScore != nil && (*c.MinScore < 0 || *c.MinScore > 1) {
		return fmt.Errorf("min_score must be between 0 and 1, got %f", *c.MinScore)
	}

	for _, cmd := range sortedKeys(c.Bindings) {
		b := c.Bindings[cmd]
		if b.Plugin == "" || b.Action == "" {
			return fmt.Errorf("binding %q needs both plugin and action", cmd)
		}
	}
	return nil
}

// GetInactivityTimeout returns the segmenter timeout or the 1.5s default.
func (c *Config) GetInactivityTimeout() time.Duration {
	return parseDuration(c.InactivityTimeout, 1500*time.Millisecond)
}

// GetMinPoints returns the min_points value or the default.
func (c *Config) GetMinPoints() int {
	if c.MinPoints == nil {
		return 10
	}
	return *c.MinPoints
}

// GetPointsPerStroke returns the points_per_stroke value or the default.
func (c *Config) GetPointsPerStroke() int {
	if c.PointsPerStroke == nil {
		return 20
	}
	return *c.PointsPerStroke
}

// GetPinchThreshold returns the pinch_threshold value or the default.
func (c *Config) GetPinchThreshold() float64 {
	if c.PinchThreshold == nil {
		return 0.05
	}
	return *c.PinchThreshold
}

// GetMinScore returns the min_score value or the default.
func (c *Config) GetMinScore() float64 {
	if c.MinScore == nil {
		return 0.75
	}
	return *c.MinScore
}

// GetTemplatesFile returns the templates_file value, empty when unset.
func (c *Config) GetTemplatesFile() string {
	if c.TemplatesFile == nil {
		return ""
	}
	return *c.TemplatesFile
}

// GetListenAddr returns the listen_addr value or the default.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetDBPath returns the db_path value, empty when unset.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetPluginDir returns the plugin_dir value, empty when unset.
func (c *Config) GetPluginDir() string {
	if c.PluginDir == nil {
		return ""
	}
	return *c.PluginDir
}

// GetPluginTimeout returns the plugin_timeout value or the 5s default.
func (c *Config) GetPluginTimeout() time.Duration {
	return parseDuration(c.PluginTimeout, 5*time.Second)
}

// GetBindings returns the command bindings. A config without a bindings
// section uses the default play/pause routing.
func (c *Config) GetBindings() map[string]Binding {
	if c.Bindings == nil {
		return Default().Bindings
	}
	return c.Bindings
}

func parseDuration(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

func sortedKeys(m map[string]Binding) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
