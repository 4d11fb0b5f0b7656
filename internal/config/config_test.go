package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Variant != "background" {
		t.Errorf("expected variant background, got %s", cfg.Variant)
	}
	if cfg.Count != 50 {
		t.Errorf("expected 50 particles, got %d", cfg.Count)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.SimParams() != sim.DefaultParams() {
		t.Error("default physics should map onto default simulator params")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cursor")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Variant != "mouse" || cfg.Opacity != 0.6 {
		t.Errorf("cursor preset = %s at %v", cfg.Variant, cfg.Opacity)
	}

	cfg.Opacity = 0.1
	if GetPreset("cursor").Opacity != 0.6 {
		t.Error("presets must not share state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Variant = "sparkles"
	cfg.Opacity = 2
	cfg.FPS = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 3 {
		t.Errorf("expected three joined errors, got %v", err)
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Config)
	}{
		{"nan width", func(c *Config) { c.Viewport.Width = math.NaN() }},
		{"infinite width", func(c *Config) { c.Viewport.Width = math.Inf(1) }},
		{"infinite height", func(c *Config) { c.Viewport.Height = math.Inf(1) }},
		{"nan dpr", func(c *Config) { c.Viewport.DPR = math.NaN() }},
		{"infinite dpr", func(c *Config) { c.Viewport.DPR = math.Inf(1) }},
		{"nan pointer", func(c *Config) { c.Pointer.X = math.NaN() }},
		{"nan link radius", func(c *Config) { c.Physics.LinkRadius = math.NaN() }},
		{"infinite jitter", func(c *Config) { c.Physics.Jitter = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.set(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadRejectsNonFiniteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.yaml")
	body := "viewport:\n  width: .nan\n  height: .inf\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for .nan/.inf viewport, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.yaml")

	cfg := GetPreset("calm")
	cfg.Seed = 42
	cfg.Physics.ActiveWindow = 250 * time.Millisecond
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("loaded %+v, want %+v", got, cfg)
	}

	v, err := got.HostVariant()
	if err != nil || v != host.MouseFollow {
		t.Errorf("variant = %v, %v", v, err)
	}
}

func TestLoadIntoKeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("seed: 9\nphysics:\n  jitter: 0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := GetPreset("dense")
	if err := LoadInto(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 9 || cfg.Physics.Jitter != 0.3 {
		t.Errorf("file values not applied: seed=%d jitter=%v", cfg.Seed, cfg.Physics.Jitter)
	}
	if cfg.Count != 600 || cfg.Opacity != 0.35 {
		t.Errorf("preset values lost: count=%d opacity=%v", cfg.Count, cfg.Opacity)
	}
	if cfg.Physics.Damping != sim.DefaultDamping {
		t.Errorf("nested default lost: damping=%v", cfg.Physics.Damping)
	}

	if err := LoadInto(filepath.Join(t.TempDir(), "missing.yaml"), cfg); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 50
	if got := cfg.FrameInterval(); got != 20*time.Millisecond {
		t.Errorf("frame interval = %v", got)
	}
}

func TestSetParam(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		check func(*Config) bool
	}{
		{"link_radius", 90, func(c *Config) bool { return c.Physics.LinkRadius == 90 }},
		{"count", 49.6, func(c *Config) bool { return c.Count == 50 }},
		{"damping", 0.9, func(c *Config) bool { return c.Physics.Damping == 0.9 }},
		{"orbit", 120, func(c *Config) bool { return c.Pointer.Orbit == 120 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.SetParam(tt.name, tt.value); err != nil {
				t.Fatal(err)
			}
			if !tt.check(cfg) {
				t.Errorf("%s=%v not applied", tt.name, tt.value)
			}
		})
	}

	if err := DefaultConfig().SetParam("gravity", 1); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown parameter should be ErrInvalid, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	b.Physics.Jitter = 9
	if a.Physics.Jitter == 9 {
		t.Error("clone shares the physics block")
	}
	if len(TunableParams()) == 0 {
		t.Error("no tunable parameters")
	}
}
