package config

import (
	"fmt"
	"math"
	"sort"
)

// tunables are the numeric fields a sweep or search may set by name.
var tunables = map[string]func(*Config, float64){
	"count":           func(c *Config, v float64) { c.Count = int(math.Round(v)) },
	"opacity":         func(c *Config, v float64) { c.Opacity = v },
	"repel_radius":    func(c *Config, v float64) { c.Physics.RepelRadius = v },
	"repel_step":      func(c *Config, v float64) { c.Physics.RepelStep = v },
	"attract_radius":  func(c *Config, v float64) { c.Physics.AttractRadius = v },
	"attract_divisor": func(c *Config, v float64) { c.Physics.AttractDivisor = v },
	"jitter":          func(c *Config, v float64) { c.Physics.Jitter = v },
	"damping":         func(c *Config, v float64) { c.Physics.Damping = v },
	"link_radius":     func(c *Config, v float64) { c.Physics.LinkRadius = v },
	"orbit":           func(c *Config, v float64) { c.Pointer.Orbit = v },
}

// SetParam sets a tunable field by its yaml name. The result is not
// validated.
func (c *Config) SetParam(name string, v float64) error {
	set, ok := tunables[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalid, name)
	}
	set(c, v)
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func TunableParams() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
