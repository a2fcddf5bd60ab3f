package interaction

import (
	"math"
	"time"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/domain/globe"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/infrastructure/geometry"
)

// Effect is what a controller asks of its session after handling input.
type Effect struct {
	// Redraw schedules a frame.
	Redraw bool
	// Animate starts the animation loop when it is not already running.
	Animate bool
	// Halt cancels the animation loop before anything else happens.
	Halt bool
	// Events are engagement events to publish.
	Events []engagement.Event
}

// Controller owns one view's interactive state.  Controllers are driven
// from a single goroutine and need no locking.
type Controller interface {
	View() string
	Gesture(g Gesture) Effect
	Command(in Input) Effect
	// Tick advances the animation by elapsed and reports whether it is
	// still running.
	Tick(elapsed time.Duration) bool
	Animating() bool
	Scene() *render.Scene
}

// markerSlop widens marker hit areas for touch input.
const markerSlop = 2.0

// GlobeController rotates and zooms the globe and tracks the hovered cluster
// and the selected company.
type GlobeController struct {
	state    globe.RotationState
	width    float64
	height   float64
	world    *geometry.World
	clusters []globe.LocationCluster
	hover    int
	selected *portfolio.Company
}

func NewGlobeController(clusters []globe.LocationCluster, world *geometry.World, width, height float64) *GlobeController {
	if width <= 0 {
		width = globe.ViewportWidth
	}
	if height <= 0 {
		height = globe.ViewportHeight
	}
	return &GlobeController{
		state:    globe.NewRotationState(),
		width:    width,
		height:   height,
		world:    world,
		clusters: clusters,
		hover:    -1,
	}
}

// SetCamera places the camera at rest.  scale is clamped to the zoom range.
func (c *GlobeController) SetCamera(rotation [2]float64, scale float64) {
	c.state = globe.NewRotationState()
	c.state.Rotation = rotation
	if scale > 0 {
		c.state.Scale = math.Min(globe.MaxScale, math.Max(globe.MinScale, scale))
	}
}

func (c *GlobeController) View() string { return render.ViewGlobe }

// State returns the camera.
func (c *GlobeController) State() globe.RotationState { return c.state }

// Selected returns the company whose detail card is open.
func (c *GlobeController) Selected() *portfolio.Company { return c.selected }

// Hover returns the hovered cluster index, or -1.
func (c *GlobeController) Hover() int { return c.hover }

func (c *GlobeController) projection() globe.Projection {
	return globe.NewProjection(c.state, c.width, c.height)
}

func (c *GlobeController) Gesture(g Gesture) Effect {
	switch g.Kind {
	case GestureDragStart:
		c.state = globe.BeginDrag(c.state)
		return Effect{Halt: true}

	case GestureDragMove:
		c.state = globe.Drag(c.state, g.DX, g.DY, g.Elapsed)
		return Effect{Redraw: true}

	case GestureDragEnd:
		c.state = globe.EndDrag(c.state)
		return Effect{Animate: c.state.Phase == globe.PhaseMomentum}

	case GestureClick:
		i := globe.HitTest(c.projection(), c.clusters, g.X, g.Y, markerSlop)
		if i < 0 {
			return Effect{}
		}
		lead := c.clusters[i].Lead()
		c.selected = &lead
		return Effect{Redraw: true, Events: []engagement.Event{{
			Type:        engagement.EventCompanySelected,
			View:        render.ViewGlobe,
			CompanyID:   lead.ID,
			CompanyName: lead.Name,
			Category:    lead.Primary,
		}}}

	case GestureHover:
		return c.setHover(globe.HitTest(c.projection(), c.clusters, g.X, g.Y, markerSlop))

	case GestureHoverEnd:
		return c.setHover(-1)

	case GestureZoom:
		switch {
		case g.DeltaY < 0:
			return c.zoom(globe.ZoomIn)
		case g.DeltaY > 0:
			return c.zoom(globe.ZoomOut)
		}
	}
	return Effect{}
}

func (c *GlobeController) setHover(i int) Effect {
	if i == c.hover {
		return Effect{}
	}
	c.hover = i
	return Effect{Redraw: true}
}

func (c *GlobeController) zoom(fn func(globe.RotationState) globe.RotationState) Effect {
	wasCoasting := c.state.Phase == globe.PhaseMomentum
	before := c.state.Scale
	c.state = fn(c.state)
	return Effect{Redraw: c.state.Scale != before || wasCoasting, Halt: wasCoasting}
}

func (c *GlobeController) Command(in Input) Effect {
	switch in.Type {
	case InputZoomIn:
		return c.zoom(globe.ZoomIn)
	case InputZoomOut:
		return c.zoom(globe.ZoomOut)
	case InputDismiss, InputClear:
		if c.selected == nil {
			return Effect{}
		}
		c.selected = nil
		return Effect{Redraw: true}
	case InputResize:
		c.width, c.height = in.Width, in.Height
		return Effect{Redraw: true}
	}
	return Effect{}
}

func (c *GlobeController) Tick(elapsed time.Duration) bool {
	c.state = globe.Step(c.state, elapsed)
	return c.Animating()
}

func (c *GlobeController) Animating() bool { return c.state.Phase == globe.PhaseMomentum }

func (c *GlobeController) Scene() *render.Scene {
	return render.Globe(render.GlobeInput{
		State:    c.state,
		Width:    c.width,
		Height:   c.height,
		World:    c.world,
		Clusters: c.clusters,
		Hover:    c.hover,
		Selected: c.selected,
	})
}

//Personal.AI order the ending
