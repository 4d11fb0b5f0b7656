package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/pointer"
	"github.com/san-kum/fieldsim/internal/sim"
)

const (
	DefaultVariant = "background"
	DefaultOpacity = 0.2
	DefaultFPS     = 60
	DefaultTicks   = 600
	DefaultWidth   = 1280.0
	DefaultHeight  = 720.0
	DefaultDPR     = 1.0
	DefaultTheme   = "gold"
)

var (
	ErrInvalid       = errors.New("config: invalid value")
	ErrUnknownPreset = errors.New("config: unknown preset")
)

type Config struct {
	Variant  string         `yaml:"variant"`
	Opacity  float64        `yaml:"opacity"`
	Count    int            `yaml:"count"`
	Seed     int64          `yaml:"seed"`
	FPS      int            `yaml:"fps"`
	Ticks    int            `yaml:"ticks"`
	Theme    string         `yaml:"theme"`
	Viewport ViewportConfig `yaml:"viewport"`
	Pointer  PointerConfig  `yaml:"pointer"`
	Physics  PhysicsConfig  `yaml:"physics"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DPR    float64 `yaml:"dpr"`
}

// PointerConfig drives a synthetic pointer in headless runs. With MoveEvery
// zero the pointer never moves.
type PointerConfig struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Orbit     float64 `yaml:"orbit"`
	MoveEvery int     `yaml:"move_every"`
}

type PhysicsConfig struct {
	RepelRadius    float64       `yaml:"repel_radius"`
	RepelStep      float64       `yaml:"repel_step"`
	AttractRadius  float64       `yaml:"attract_radius"`
	AttractDivisor float64       `yaml:"attract_divisor"`
	Jitter         float64       `yaml:"jitter"`
	Damping        float64       `yaml:"damping"`
	LinkRadius     float64       `yaml:"link_radius"`
	GridThreshold  int           `yaml:"grid_threshold"`
	ActiveWindow   time.Duration `yaml:"active_window"`
}

func DefaultConfig() *Config {
	return &Config{
		Variant: DefaultVariant,
		Opacity: DefaultOpacity,
		Count:   sim.DefaultCount,
		FPS:     DefaultFPS,
		Ticks:   DefaultTicks,
		Theme:   DefaultTheme,
		Viewport: ViewportConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			DPR:    DefaultDPR,
		},
		Pointer: PointerConfig{
			X:     DefaultWidth / 2,
			Y:     DefaultHeight / 2,
			Orbit: 120,
		},
		Physics: PhysicsConfig{
			RepelRadius:    sim.DefaultRepelRadius,
			RepelStep:      sim.DefaultRepelStep,
			AttractRadius:  sim.DefaultAttractRadius,
			AttractDivisor: sim.DefaultAttractDiv,
			Jitter:         sim.DefaultJitter,
			Damping:        sim.DefaultDamping,
			LinkRadius:     sim.DefaultLinkRadius,
			GridThreshold:  sim.DefaultGridThreshold,
			ActiveWindow:   pointer.DefaultActiveWindow,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg. Fields the file leaves out
// keep their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := host.ParseVariant(c.Variant); err != nil {
		bad("variant %q", c.Variant)
	}
	if math.IsNaN(c.Opacity) || c.Opacity < 0 || c.Opacity > 1 {
		bad("opacity %v outside [0,1]", c.Opacity)
	}
	if c.Count < 0 {
		bad("count %d", c.Count)
	}
	if c.FPS <= 0 {
		bad("fps %d", c.FPS)
	}
	if c.Ticks < 0 {
		bad("ticks %d", c.Ticks)
	}
	if !finite(c.Viewport.Width, c.Viewport.Height) || c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		bad("viewport %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if !finite(c.Viewport.DPR) || c.Viewport.DPR <= 0 {
		bad("dpr %v", c.Viewport.DPR)
	}
	if !finite(c.Pointer.X, c.Pointer.Y, c.Pointer.Orbit) {
		bad("pointer (%v,%v) orbit %v", c.Pointer.X, c.Pointer.Y, c.Pointer.Orbit)
	}
	ph := c.Physics
	if !finite(ph.RepelRadius, ph.RepelStep, ph.AttractRadius, ph.AttractDivisor, ph.Jitter, ph.Damping, ph.LinkRadius) {
		bad("physics values must be finite")
	}
	if c.Pointer.MoveEvery < 0 {
		bad("pointer.move_every %d", c.Pointer.MoveEvery)
	}
	if c.Physics.ActiveWindow < 0 {
		bad("physics.active_window %v", c.Physics.ActiveWindow)
	}
	if err := c.SimParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SimParams maps the physics block onto simulator parameters. Render
// constants keep their defaults.
func (c *Config) SimParams() sim.Params {
	p := sim.DefaultParams()
	p.Count = c.Count
	p.RepelRadius = c.Physics.RepelRadius
	p.RepelStep = c.Physics.RepelStep
	p.AttractRadius = c.Physics.AttractRadius
	p.AttractDiv = c.Physics.AttractDivisor
	p.Jitter = c.Physics.Jitter
	p.Damping = c.Physics.Damping
	p.LinkRadius = c.Physics.LinkRadius
	p.GridThreshold = c.Physics.GridThreshold
	return p
}

func (c *Config) HostVariant() (host.Variant, error) {
	return host.ParseVariant(c.Variant)
}

func (c *Config) HostViewport() host.Viewport {
	return host.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height, DPR: c.Viewport.DPR}
}

// FrameInterval is the wall time of one frame at the configured rate.
func (c *Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.FPS)
}
