package config

import "sort"

// Presets mirror the layers of the landing page plus a few tuned variations.
var Presets = map[string]func(*Config){
	"hero": func(c *Config) {
		c.Variant, c.Opacity = "background", 0.2
	},
	"cursor": func(c *Config) {
		c.Variant, c.Opacity = "mouse", 0.6
		c.Pointer.MoveEvery = 1
	},
	"trail": func(c *Config) {
		c.Variant, c.Opacity = "trail", 0.6
		c.Pointer.MoveEvery = 1
	},
	"dense": func(c *Config) {
		c.Variant, c.Opacity = "background", 0.35
		c.Count = 600
		c.Pointer.MoveEvery = 4
	},
	"calm": func(c *Config) {
		c.Variant, c.Opacity = "mouse", 0.4
		c.Physics.Jitter = 0.02
		c.Physics.Damping = 0.9
		c.Pointer.MoveEvery = 8
	},
}

// GetPreset returns a fresh default config with the named preset applied,
// or nil if there is no such preset.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
