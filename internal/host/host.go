// Package host mounts particle layers onto a drawing host: anything that can
// report its viewport, schedule frames, deliver pointer and resize
// notifications and hand out drawing contexts.
package host

import (
	"errors"
	"time"

	"github.com/san-kum/fieldsim/internal/surface"
)

var (
	// ErrInvalidOpacity indicates a layer opacity outside [0,1].
	ErrInvalidOpacity = errors.New("host: invalid opacity")

	// ErrUnknownVariant indicates an unrecognised layer variant.
	ErrUnknownVariant = errors.New("host: unknown variant")
)

// Viewport is the host's visible area in CSS pixels plus its device pixel
// ratio.
type Viewport struct {
	Width, Height float64
	DPR           float64
}

// FrameID is the cancellation token of a requested frame.
type FrameID uint64

// Host is the runtime a layer mounts into. All callbacks are delivered on one
// goroutine, serialized with frames.
type Host interface {
	surface.Acquirer

	Viewport() Viewport
	Now() time.Time

	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)

	// OnPointerMove and OnResize return a func that removes the subscription.
	OnPointerMove(fn func(globalX, globalY float64)) (cancel func())
	OnResize(fn func(Viewport)) (cancel func())

	// Append stacks a layer above previously appended ones; Remove takes it out.
	Append(l *Layer)
	Remove(l *Layer)
}

// Variant selects what a layer draws.
type Variant int

const (
	Background Variant = iota
	MouseFollow
	Trail
)

func (v Variant) String() string {
	switch v {
	case Background:
		return "background"
	case MouseFollow:
		return "mouse"
	case Trail:
		return "trail"
	}
	return "unknown"
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "background", "bg":
		return Background, nil
	case "mouse", "mouse-following", "follow":
		return MouseFollow, nil
	case "trail":
		return Trail, nil
	}
	return 0, ErrUnknownVariant
}
