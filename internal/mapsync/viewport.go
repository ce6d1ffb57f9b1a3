package mapsync

import (
	"time"

	"github.com/Potowai/nomad-nantes/internal/events"
)

// ViewportState is the observable camera and visibility of a viewport.
type ViewportState struct {
	Center  events.LatLng `json:"center"`
	Zoom    float64       `json:"zoom"`
	Visible bool          `json:"visible"`
	// SizeValid is false after the viewport was hidden until InvalidateSize runs.
	SizeValid bool `json:"sizeValid"`
}

// Viewport is the camera the engine drives. Implementations wrap a map
// rendering backend; MemoryViewport records transitions for tests and for
// clients that render remotely.
type Viewport interface {
	SetView(center events.LatLng, zoom float64, animate bool)
	FlyTo(center events.LatLng, zoom float64, duration time.Duration)
	InvalidateSize()
	SetVisible(visible bool)
	State() ViewportState
}

// TransitionKind names a viewport movement.
type TransitionKind string

const (
	TransitionSetView TransitionKind = "set_view"
	TransitionFlyTo   TransitionKind = "fly_to"
)

// Transition is one recorded camera movement.
type Transition struct {
	Kind     TransitionKind `json:"kind"`
	Center   events.LatLng  `json:"center"`
	Zoom     float64        `json:"zoom"`
	Animate  bool           `json:"animate"`
	Duration time.Duration  `json:"duration"`
}

// MemoryViewport is an in-memory Viewport. Camera moves complete immediately.
type MemoryViewport struct {
	state         ViewportState
	transitions   []Transition
	invalidations int
}

// NewMemoryViewport returns a visible viewport at the zero camera.
func NewMemoryViewport() *MemoryViewport {
	return &MemoryViewport{state: ViewportState{Visible: true, SizeValid: true}}
}

func (v *MemoryViewport) SetView(center events.LatLng, zoom float64, animate bool) {
	v.state.Center = center
	v.state.Zoom = zoom
	v.transitions = append(v.transitions, Transition{Kind: TransitionSetView, Center: center, Zoom: zoom, Animate: animate})
}

func (v *MemoryViewport) FlyTo(center events.LatLng, zoom float64, duration time.Duration) {
	v.state.Center = center
	v.state.Zoom = zoom
	v.transitions = append(v.transitions, Transition{Kind: TransitionFlyTo, Center: center, Zoom: zoom, Animate: true, Duration: duration})
}

func (v *MemoryViewport) InvalidateSize() {
	v.invalidations++
	v.state.SizeValid = v.state.Visible
}

func (v *MemoryViewport) SetVisible(visible bool) {
	if !visible {
		v.state.SizeValid = false
	}
	v.state.Visible = visible
}

func (v *MemoryViewport) State() ViewportState {
	return v.state
}

// Transitions returns the recorded camera movements, oldest first.
func (v *MemoryViewport) Transitions() []Transition {
	return append([]Transition(nil), v.transitions...)
}

// Invalidations returns how many times InvalidateSize ran.
func (v *MemoryViewport) Invalidations() int {
	return v.invalidations
}
