package sim

// Kind selects the update rule applied to the pool.
type Kind int

const (
	// Background drifts at constant velocity and steps away from an active pointer.
	Background Kind = iota
	// MouseFollow is attracted to the pointer with jitter and velocity damping.
	MouseFollow
)

func (k Kind) String() string {
	switch k {
	case Background:
		return "background"
	case MouseFollow:
		return "mouse"
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "background", "bg":
		return Background, nil
	case "mouse", "mouse-following", "follow":
		return MouseFollow, nil
	}
	return 0, ErrUnknownKind
}

// State is the simulator lifecycle: Unstarted -> Running -> Stopped.
type State int

const (
	Unstarted State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Pointer is read once at the start of every tick.
type Pointer interface {
	Snapshot() (x, y float64, active bool)
}

type Rand interface {
	Float64() float64
}

// FrameStats describes the draw calls issued by one tick.
type FrameStats struct {
	Tick   int
	Discs  int
	Edges  int
	Active bool
}

// DrawCalls is the number of discs plus edges.
func (f FrameStats) DrawCalls() int { return f.Discs + f.Edges }

type Metric interface {
	Name() string
	Observe(stats FrameStats, pool []Particle)
	Value() float64
	Reset()
}

// Observer sees the pool after each rendered tick. The slice is only valid
// for the duration of the call.
type Observer interface {
	OnTick(stats FrameStats, pool []Particle)
}
