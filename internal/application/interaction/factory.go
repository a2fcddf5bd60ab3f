package interaction

import (
	"context"

	portfolioapp "github.com/ben-daghir/hercap/internal/application/portfolio"
	"github.com/ben-daghir/hercap/internal/application/render"
	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/geometry"
	"github.com/ben-daghir/hercap/pkg/errors"
)

// NewControllerFactory builds globe and sector controllers from the loaded
// portfolio.  Creating a session before the feed has settled fails with the
// feed's not-ready or load error.
func NewControllerFactory(svc portfolioapp.Service, world *geometry.World, globeCfg config.GlobeConfig, sectorCfg config.SectorConfig) Factory {
	return func(ctx context.Context, view string, width, height float64) (Controller, error) {
		switch view {
		case render.ViewGlobe:
			clusters, err := svc.Clusters(ctx)
			if err != nil {
				return nil, err
			}
			if width <= 0 {
				width = globeCfg.Width
			}
			if height <= 0 {
				height = globeCfg.Height
			}
			c := NewGlobeController(clusters, world, width, height)
			c.SetCamera([2]float64{globeCfg.InitialLongitude, globeCfg.InitialLatitude}, globeCfg.InitialScale)
			return c, nil

		case render.ViewSector:
			layout, err := svc.Layout(ctx)
			if err != nil {
				return nil, err
			}
			if width <= 0 {
				width = sectorCfg.Width
			}
			if height <= 0 {
				height = sectorCfg.Height
			}
			return NewSectorController(layout, width, height, sectorCfg.OwnerLabel), nil
		}
		return nil, errors.New(errors.ErrCodeViewUnsupported, "unsupported view").WithDetail(view)
	}
}

//Personal.AI order the ending
