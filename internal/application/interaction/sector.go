package interaction

import (
	"time"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/domain/sector"
)

// SectorController pans and zooms the sector diagram and tracks the
// highlighted category and the hovered company.  Any drag pans, wherever it
// starts.
type SectorController struct {
	layout     sector.Layout
	companies  []portfolio.Company
	screen     sector.Screen
	viewport   sector.Viewport
	selection  sector.Selection
	hover      int
	ownerLabel string
}

func NewSectorController(layout sector.Layout, width, height float64, ownerLabel string) *SectorController {
	if width <= 0 {
		width = sector.DefaultWidth
	}
	if height <= 0 {
		height = sector.DefaultHeight
	}
	companies := make([]portfolio.Company, len(layout.Companies))
	for i, cn := range layout.Companies {
		companies[i] = cn.Company
	}
	return &SectorController{
		layout:     layout,
		companies:  companies,
		screen:     layout.Screen(width, height),
		viewport:   sector.Identity(),
		hover:      -1,
		ownerLabel: ownerLabel,
	}
}

func (c *SectorController) View() string { return render.ViewSector }

// Selection returns the highlighted category.
func (c *SectorController) Selection() sector.Selection { return c.selection }

// Viewport returns the pan and zoom transform.
func (c *SectorController) Viewport() sector.Viewport { return c.viewport }

// Hover returns the hovered company node index, or -1.
func (c *SectorController) Hover() int { return c.hover }

func (c *SectorController) Gesture(g Gesture) Effect {
	switch g.Kind {
	case GestureDragMove:
		if g.DX == 0 && g.DY == 0 {
			return Effect{}
		}
		c.viewport = c.viewport.Pan(g.DX, g.DY)
		return Effect{Redraw: true}

	case GestureClick:
		return c.click(g.X, g.Y)

	case GestureHover:
		t := sector.HitTest(c.screen, c.viewport, g.X, g.Y)
		if t.Kind == sector.TargetCompany {
			return c.setHover(t.Index)
		}
		return c.setHover(-1)

	case GestureHoverEnd:
		return c.setHover(-1)

	case GestureZoom:
		if g.DeltaY == 0 {
			return Effect{}
		}
		c.viewport = c.viewport.ZoomAt(sector.WheelFactor(g.DeltaY), g.X, g.Y)
		return Effect{Redraw: true}
	}
	return Effect{}
}

func (c *SectorController) click(x, y float64) Effect {
	t := sector.HitTest(c.screen, c.viewport, x, y)
	switch t.Kind {
	case sector.TargetCategory:
		name := c.layout.Categories[t.Index].Name
		c.selection = c.selection.Toggle(c.companies, name)
		eff := Effect{Redraw: true}
		if c.selection.Active() {
			eff.Events = []engagement.Event{{
				Type:     engagement.EventCategorySelected,
				View:     render.ViewSector,
				Category: name,
			}}
		}
		return eff
	case sector.TargetBackground:
		return c.clear()
	}
	// Company and owner nodes do not react to clicks.
	return Effect{}
}

func (c *SectorController) clear() Effect {
	if !c.selection.Active() {
		return Effect{}
	}
	c.selection = c.selection.Clear()
	return Effect{Redraw: true}
}

func (c *SectorController) setHover(i int) Effect {
	if i == c.hover {
		return Effect{}
	}
	c.hover = i
	return Effect{Redraw: true}
}

func (c *SectorController) Command(in Input) Effect {
	switch in.Type {
	case InputClear, InputDismiss:
		return c.clear()
	case InputZoomIn:
		c.viewport = c.viewport.ZoomAt(ZoomStep, c.screen.Center.X, c.screen.Center.Y)
		return Effect{Redraw: true}
	case InputZoomOut:
		c.viewport = c.viewport.ZoomAt(1/ZoomStep, c.screen.Center.X, c.screen.Center.Y)
		return Effect{Redraw: true}
	case InputResize:
		// Only the radius and centre follow the viewport; rank order and
		// selection are untouched.
		c.screen = c.layout.Screen(in.Width, in.Height)
		return Effect{Redraw: true}
	}
	return Effect{}
}

// ZoomStep is the sector zoom factor for the explicit zoom buttons.
const ZoomStep = 1.3

func (c *SectorController) Tick(time.Duration) bool { return false }

func (c *SectorController) Animating() bool { return false }

func (c *SectorController) Scene() *render.Scene {
	return render.Sector(render.SectorInput{
		Layout:     c.layout,
		Screen:     c.screen,
		Viewport:   c.viewport,
		Selection:  c.selection,
		OwnerLabel: c.ownerLabel,
		Hover:      c.hover,
	})
}

//Personal.AI order the ending
