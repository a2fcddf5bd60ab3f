// Package globe contains the geographic view's math: the orthographic
// projection, horizon clipping, graticule, location clustering and the
// drag/momentum rotation model.  Nothing here performs I/O or keeps time;
// callers supply elapsed durations explicitly.
package globe

import (
	"math"
	"time"
)

const (
	InitialLongitude = -30.0
	InitialLatitude  = -20.0
	InitialScale     = 280.0

	MinScale   = 150.0
	MaxScale   = 800.0
	ZoomFactor = 1.3

	// MinVelocity is the speed below which momentum stops.
	MinVelocity = 0.05

	// FrameDuration is the reference frame length that velocities are
	// expressed against.
	FrameDuration = 16 * time.Millisecond

	ViewportWidth  = 600.0
	ViewportHeight = 600.0
)

// Phase is the rotation state machine's state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseMomentum
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseMomentum:
		return "momentum"
	default:
		return "idle"
	}
}

// Vec2 is a velocity in degrees per reference frame.
type Vec2 struct {
	X, Y float64
}

// Len returns the Euclidean length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// RotationState is the globe camera.  Rotation holds (λ, φ) in degrees;
// φ always lies in [-90, 90].
type RotationState struct {
	Rotation [2]float64 `json:"rotation"`
	Scale    float64    `json:"scale"`
	Velocity Vec2       `json:"velocity"`
	Phase    Phase      `json:"phase"`
}

// NewRotationState returns the initial camera.
func NewRotationState() RotationState {
	return RotationState{
		Rotation: [2]float64{InitialLongitude, InitialLatitude},
		Scale:    InitialScale,
	}
}

// Dynamics are the zoom-dependent drag and momentum parameters.  Zoomed in,
// rotation is slower, stops sooner and is smoother.
type Dynamics struct {
	Sensitivity    float64
	Damping        float64
	VelocityBlend  float64
	MaxVelocity    float64
	ZoomNormalized float64
}

// ZoomNormalized maps scale onto [0, 1] across [MinScale, MaxScale].
func ZoomNormalized(scale float64) float64 {
	return (scale - MinScale) / (MaxScale - MinScale)
}

// DynamicsFor derives the rotation parameters for scale.
func DynamicsFor(scale float64) Dynamics {
	z := ZoomNormalized(scale)
	return Dynamics{
		Sensitivity:    0.4 * (1 - z*0.6),
		Damping:        0.92 - z*(0.92-0.75),
		VelocityBlend:  0.6 - z*(0.6-0.4),
		MaxVelocity:    6 * (1 - z*0.5),
		ZoomNormalized: z,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampLatitude(lat float64) float64 { return clamp(lat, -90, 90) }

// BeginDrag enters Dragging from any phase, cancelling momentum and zeroing
// velocity.
func BeginDrag(s RotationState) RotationState {
	s.Phase = PhaseDragging
	s.Velocity = Vec2{}
	return s
}

// Drag applies one pointer movement of (dx, dy) screen pixels that arrived
// elapsed after the previous drag event.  The movement is scaled by the
// zoom-dependent sensitivity; the tracked velocity blends toward the
// instantaneous per-frame velocity and is clamped per component.  Drag on a
// state that is not dragging begins a drag first.
func Drag(s RotationState, dx, dy float64, elapsed time.Duration) RotationState {
	if s.Phase != PhaseDragging {
		s = BeginDrag(s)
	}
	d := DynamicsFor(s.Scale)

	dt := float64(elapsed) / float64(time.Millisecond)
	if dt < 1 {
		dt = 1
	}
	sdx := dx * d.Sensitivity
	sdy := dy * d.Sensitivity

	frameMs := float64(FrameDuration) / float64(time.Millisecond)
	instX := sdx / dt * frameMs
	instY := sdy / dt * frameMs

	s.Velocity = Vec2{
		X: clamp(s.Velocity.X*d.VelocityBlend+instX*(1-d.VelocityBlend), -d.MaxVelocity, d.MaxVelocity),
		Y: clamp(s.Velocity.Y*d.VelocityBlend+instY*(1-d.VelocityBlend), -d.MaxVelocity, d.MaxVelocity),
	}
	s.Rotation[0] += sdx
	s.Rotation[1] = clampLatitude(s.Rotation[1] - sdy)
	return s
}

// EndDrag releases the pointer.  Momentum starts when the tracked speed
// exceeds MinVelocity; otherwise the globe comes to rest.
func EndDrag(s RotationState) RotationState {
	if s.Velocity.Len() > MinVelocity {
		s.Phase = PhaseMomentum
		return s
	}
	s.Phase = PhaseIdle
	s.Velocity = Vec2{}
	return s
}

// Step integrates momentum over elapsed time.  One FrameDuration of elapsed
// time is exactly one damping step; other durations scale the decay to
// Damping^frames and advance the rotation by the matching geometric sum.
// Step on a non-momentum state, or with elapsed <= 0, returns s unchanged.
// Once speed falls below MinVelocity the state becomes Idle.
func Step(s RotationState, elapsed time.Duration) RotationState {
	if s.Phase != PhaseMomentum || elapsed <= 0 {
		return s
	}
	if s.Velocity.Len() < MinVelocity {
		s.Phase = PhaseIdle
		s.Velocity = Vec2{}
		return s
	}

	d := DynamicsFor(s.Scale)
	frames := float64(elapsed) / float64(FrameDuration)
	decay := math.Pow(d.Damping, frames)

	// Sum of damping^i for i in 1..frames, extended to fractional frames.
	travel := d.Damping * (1 - decay) / (1 - d.Damping)

	s.Rotation[0] += s.Velocity.X * travel
	s.Rotation[1] = clampLatitude(s.Rotation[1] - s.Velocity.Y*travel)
	s.Velocity = Vec2{X: s.Velocity.X * decay, Y: s.Velocity.Y * decay}
	return s
}

// ZoomIn multiplies the scale by ZoomFactor, clamped to MaxScale.
func ZoomIn(s RotationState) RotationState {
	return zoomTo(s, math.Min(MaxScale, s.Scale*ZoomFactor))
}

// ZoomOut divides the scale by ZoomFactor, clamped to MinScale.
func ZoomOut(s RotationState) RotationState {
	return zoomTo(s, math.Max(MinScale, s.Scale/ZoomFactor))
}

// zoomTo changes the scale.  A zoom while coasting stops the momentum, since
// the dynamics it was started with no longer apply.
func zoomTo(s RotationState, scale float64) RotationState {
	s.Scale = scale
	if s.Phase == PhaseMomentum {
		s.Phase = PhaseIdle
		s.Velocity = Vec2{}
	}
	return s
}

// NormalizeLongitude wraps lng into [-180, 180).
func NormalizeLongitude(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

//Personal.AI order the ending
