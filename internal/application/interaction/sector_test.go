package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/application/engagement"
	"github.com/ben-daghir/hercap/internal/domain/portfolio"
	"github.com/ben-daghir/hercap/internal/domain/sector"
)

func newSector(t *testing.T) (*SectorController, sector.Screen) {
	t.Helper()
	layout := sector.Compute(testCompanies())
	c := NewSectorController(layout, 0, 0, "HerCap")
	return c, layout.Screen(sector.DefaultWidth, sector.DefaultHeight)
}

func TestSectorController_ClickTogglesCategory(t *testing.T) {
	c, screen := newSector(t)
	cat := screen.Categories[0]
	name := sector.Compute(testCompanies()).Categories[0].Name

	eff := c.Gesture(Gesture{Kind: GestureClick, X: cat.X, Y: cat.Y})
	assert.True(t, eff.Redraw)
	require.True(t, c.Selection().Active())
	assert.Equal(t, name, c.Selection().Category)

	require.Len(t, eff.Events, 1)
	assert.Equal(t, engagement.EventCategorySelected, eff.Events[0].Type)
	assert.Equal(t, name, eff.Events[0].Category)
	assert.Equal(t, "sector", eff.Events[0].View)

	// Clicking the same category again clears without an event.
	eff = c.Gesture(Gesture{Kind: GestureClick, X: cat.X, Y: cat.Y})
	assert.True(t, eff.Redraw)
	assert.Empty(t, eff.Events)
	assert.False(t, c.Selection().Active())
}

func TestSectorController_SelectionConnections(t *testing.T) {
	c, screen := newSector(t)
	layout := sector.Compute(testCompanies())
	var fintech int
	for i, cat := range layout.Categories {
		if cat.Name == "Fintech" {
			fintech = i
		}
	}
	c.Gesture(Gesture{Kind: GestureClick, X: screen.Categories[fintech].X, Y: screen.Categories[fintech].Y})

	st, ok := c.Selection().Strength(1)
	require.True(t, ok)
	assert.Equal(t, portfolio.StrengthPrimary, st)
	st, ok = c.Selection().Strength(4)
	require.True(t, ok)
	assert.Equal(t, portfolio.StrengthTertiary, st)
	_, ok = c.Selection().Strength(2)
	assert.False(t, ok)
}

func TestSectorController_BackgroundClickClears(t *testing.T) {
	c, screen := newSector(t)
	c.Gesture(Gesture{Kind: GestureClick, X: screen.Categories[1].X, Y: screen.Categories[1].Y})
	require.True(t, c.Selection().Active())

	eff := c.Gesture(Gesture{Kind: GestureClick, X: 5, Y: 5})
	assert.True(t, eff.Redraw)
	assert.False(t, c.Selection().Active())

	assert.Equal(t, Effect{}, c.Gesture(Gesture{Kind: GestureClick, X: 5, Y: 5}), "nothing to clear")
}

func TestSectorController_OwnerIgnoresClicks(t *testing.T) {
	c, screen := newSector(t)
	c.Gesture(Gesture{Kind: GestureClick, X: screen.Categories[0].X, Y: screen.Categories[0].Y})

	eff := c.Gesture(Gesture{Kind: GestureClick, X: screen.Center.X, Y: screen.Center.Y})
	assert.Equal(t, Effect{}, eff)
	assert.True(t, c.Selection().Active(), "owner click keeps the selection")
}

func TestSectorController_PanAndZoom(t *testing.T) {
	c, _ := newSector(t)

	assert.Equal(t, Effect{}, c.Gesture(Gesture{Kind: GestureDragMove}))
	assert.True(t, c.Gesture(Gesture{Kind: GestureDragMove, DX: 15, DY: -5}).Redraw)
	assert.Equal(t, sector.Viewport{X: 15, Y: -5, K: 1}, c.Viewport())

	assert.True(t, c.Gesture(Gesture{Kind: GestureZoom, X: 100, Y: 100, DeltaY: -500}).Redraw)
	assert.InDelta(t, 2.0, c.Viewport().K, 1e-9)
	// The point under the cursor stays put.
	x, y := c.Viewport().Apply(85, 105)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)

	assert.Equal(t, Effect{}, c.Gesture(Gesture{Kind: GestureZoom}))

	c.Command(Input{Type: InputZoomOut})
	assert.InDelta(t, 2.0/ZoomStep, c.Viewport().K, 1e-9)
}

func TestSectorController_HoverShowsCard(t *testing.T) {
	c, screen := newSector(t)
	n := screen.Companies[0]

	assert.True(t, c.Gesture(Gesture{Kind: GestureHover, X: n.X, Y: n.Y}).Redraw)
	assert.Equal(t, 0, c.Hover())
	scene := c.Scene()
	require.NotNil(t, scene.Card)
	assert.Equal(t, "Aurelia", scene.Card.Title)

	assert.True(t, c.Gesture(Gesture{Kind: GestureHover, X: 5, Y: 5}).Redraw)
	assert.Equal(t, -1, c.Hover())
	assert.Nil(t, c.Scene().Card)
}

func TestSectorController_ResizeKeepsSelection(t *testing.T) {
	c, screen := newSector(t)
	c.Gesture(Gesture{Kind: GestureClick, X: screen.Categories[0].X, Y: screen.Categories[0].Y})
	selected := c.Selection().Category

	assert.True(t, c.Command(Input{Type: InputResize, Width: 500, Height: 400}).Redraw)
	assert.Equal(t, selected, c.Selection().Category)
	scene := c.Scene()
	assert.Equal(t, 500.0, scene.Width)
	assert.Equal(t, 400.0, scene.Height)

	assert.True(t, c.Command(Input{Type: InputClear}).Redraw)
	assert.False(t, c.Selection().Active())
}

func TestSectorController_NeverAnimates(t *testing.T) {
	c, _ := newSector(t)
	assert.False(t, c.Tick(0))
	assert.False(t, c.Animating())
	assert.Equal(t, "sector", c.View())
}

//Personal.AI order the ending
