package sim

import (
	"errors"
	"fmt"
	"image/color"
)

const (
	DefaultCount         = 50
	DefaultRepelRadius   = 100.0
	DefaultRepelStep     = 2.0
	DefaultAttractRadius = 200.0
	DefaultAttractDiv    = 10000.0
	DefaultJitter        = 0.1
	DefaultDamping       = 0.95
	DefaultLinkRadius    = 100.0
	DefaultLineWidth     = 0.5
	DefaultGlowBlur      = 15.0
	DefaultGridThreshold = 256
)

// Params holds the constants of both update rules and the render pass.
type Params struct {
	Count int

	RepelRadius float64
	RepelStep   float64

	AttractRadius float64
	AttractDiv    float64
	Jitter        float64
	Damping       float64

	LinkRadius float64
	// BackgroundLinkDiv and MouseLinkDiv turn (LinkRadius - d) into an edge alpha.
	BackgroundLinkDiv float64
	MouseLinkDiv      float64
	LineWidth         float64

	GlowBlur  float64
	GlowColor color.NRGBA
	LinkColor color.NRGBA

	// GridThreshold switches edge search to a uniform grid above this count.
	GridThreshold int
}

func DefaultParams() Params {
	return Params{
		Count:             DefaultCount,
		RepelRadius:       DefaultRepelRadius,
		RepelStep:         DefaultRepelStep,
		AttractRadius:     DefaultAttractRadius,
		AttractDiv:        DefaultAttractDiv,
		Jitter:            DefaultJitter,
		Damping:           DefaultDamping,
		LinkRadius:        DefaultLinkRadius,
		BackgroundLinkDiv: 1000,
		MouseLinkDiv:      500,
		LineWidth:         DefaultLineWidth,
		GlowBlur:          DefaultGlowBlur,
		GlowColor:         WithAlpha(Gold500, 0.5),
		LinkColor:         Gold500,
		GridThreshold:     DefaultGridThreshold,
	}
}

func (p Params) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParams}, args...)...))
		}
	}
	check(p.Count >= 0, "count must be non-negative, got %d", p.Count)
	check(p.RepelRadius >= 0, "repel radius must be non-negative, got %f", p.RepelRadius)
	check(p.AttractRadius >= 0, "attract radius must be non-negative, got %f", p.AttractRadius)
	check(p.AttractDiv > 0, "attract divisor must be positive, got %f", p.AttractDiv)
	check(p.Damping >= 0 && p.Damping <= 1, "damping must be in [0,1], got %f", p.Damping)
	check(p.Jitter >= 0, "jitter must be non-negative, got %f", p.Jitter)
	check(p.LinkRadius > 0, "link radius must be positive, got %f", p.LinkRadius)
	check(p.BackgroundLinkDiv > 0 && p.MouseLinkDiv > 0, "link alpha divisors must be positive")
	check(p.LineWidth > 0, "line width must be positive, got %f", p.LineWidth)
	return errors.Join(errs...)
}
